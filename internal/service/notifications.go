package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/notify"
	"github.com/octobees/rentroom/api/internal/repository"
)

// ErrInvalidSubject is returned when a token subject is not a user id.
var ErrInvalidSubject = errors.New("token subject is not a valid user id")

// NotificationService persists notifications and pushes them to clients.
type NotificationService struct {
	repo        repository.NotificationsRepository
	broadcaster notify.Broadcaster
	log         *zap.Logger
}

func NewNotificationService(repo repository.NotificationsRepository, broadcaster notify.Broadcaster, log *zap.Logger) *NotificationService {
	if broadcaster == nil {
		broadcaster = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{repo: repo, broadcaster: broadcaster, log: log}
}

// ActorID extracts the user id from an identity.
func ActorID(actor auth.Identity) (uuid.UUID, error) {
	id, err := uuid.Parse(actor.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// Send stores the notification and broadcasts it. Only the store can fail
// the call; delivery problems are logged.
func (s *NotificationService) Send(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		errs := apperror.FieldErrors{}
		errs.Add("message", "The message field is required.")
		return nil, errs
	}
	if !typ.Valid() {
		errs := apperror.FieldErrors{}
		errs.Add("type", "The selected type is invalid.")
		return nil, errs
	}

	n, err := s.repo.Create(ctx, userID, message, typ)
	if err != nil {
		return nil, err
	}
	if err := s.broadcaster.Broadcast(ctx, *n); err != nil {
		s.log.Warn("notification broadcast failed",
			zap.Int64("notification_id", n.ID),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return n, nil
}

// Notify implements Notifier for the acting user.
func (s *NotificationService) Notify(ctx context.Context, actor auth.Identity, message string, typ entity.NotificationType) {
	userID, err := ActorID(actor)
	if err != nil {
		s.log.Warn("notification skipped", zap.String("subject", actor.Subject), zap.Error(err))
		return
	}
	if _, err := s.Send(ctx, userID, message, typ); err != nil {
		s.log.Error("notification not stored",
			zap.String("user_id", userID.String()),
			zap.String("type", typ.String()),
			zap.Error(err))
	}
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, id int64) (*entity.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.repo.Delete(ctx, id, userID)
}

var _ Notifier = (*NotificationService)(nil)
