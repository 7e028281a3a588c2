package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/entity"
)

// NotificationsRepository stores per-user notifications. Every call is
// scoped to the owning user.
type NotificationsRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	Create(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error)
	MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id int64, userID uuid.UUID) error
}

const notificationColumns = `id, user_id, message, type, read_status, created_at, updated_at`

var errNotificationNotFound = apperror.NotFoundError{Resource: "Notification"}

// PGXNotificationsRepository implements NotificationsRepository using pgx.
type PGXNotificationsRepository struct {
	pool pgxPool
}

func NewPGXNotificationsRepository(pool *pgxpool.Pool) *PGXNotificationsRepository {
	return &PGXNotificationsRepository{pool: pool}
}

// ListByUser returns the user's notifications, newest first.
func (r *PGXNotificationsRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []any{userID}
	if unreadOnly {
		query += ` AND read_status = $2`
		args = append(args, int(entity.NotificationUnread))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

func (r *PGXNotificationsRepository) Create(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `
        INSERT INTO notifications (user_id, message, type, read_status)
        VALUES ($1, $2, $3, $4)
        RETURNING `+notificationColumns, userID, message, int(typ), int(entity.NotificationUnread)))
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read.
func (r *PGXNotificationsRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `
        UPDATE notifications SET read_status = $1, updated_at = NOW()
        WHERE id = $2 AND user_id = $3
        RETURNING `+notificationColumns, int(entity.NotificationRead), id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the user and reports how many changed.
func (r *PGXNotificationsRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE notifications SET read_status = $1, updated_at = NOW()
        WHERE user_id = $2 AND read_status = $3`, int(entity.NotificationRead), userID, int(entity.NotificationUnread))
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PGXNotificationsRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errNotificationNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var (
		n          entity.Notification
		typ, state int
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Message, &typ, &state, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Type = entity.NotificationType(typ)
	n.ReadStatus = entity.ReadStatus(state)
	return &n, nil
}
