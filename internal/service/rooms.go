package service

import (
	"context"
	"fmt"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/repository"
)

const (
	maxRoomNumberLength  = 10
	maxDescriptionLength = 500
)

// Notifier records a notification for the acting user. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, actor auth.Identity, message string, typ entity.NotificationType)
}

// RoomService implements the room use cases.
type RoomService struct {
	repo     repository.RoomsRepository
	lookup   repository.Lookup
	notifier Notifier
}

func NewRoomService(repo repository.RoomsRepository, lookup repository.Lookup, notifier Notifier) *RoomService {
	return &RoomService{repo: repo, lookup: lookup, notifier: notifier}
}

// List runs the listing pipeline over rooms.
func (s *RoomService) List(ctx context.Context, raw listquery.Request) (listquery.PageResult[entity.Room], error) {
	return listquery.Run[entity.Room](ctx, raw, RoomPolicy, RoomFields, s.repo)
}

func (s *RoomService) Find(ctx context.Context, id int64) (*entity.Room, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the payload and stores a new room.
func (s *RoomService) Create(ctx context.Context, actor auth.Identity, req dto.RoomRequest) (*entity.Room, error) {
	patch, err := s.check(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	room := entity.Room{
		RoomNumber:    *patch.RoomNumber,
		RoomTypeID:    *patch.RoomTypeID,
		PricePerMonth: *patch.PricePerMonth,
		Status:        *patch.Status,
	}
	if patch.Description != nil {
		room.Description = *patch.Description
	}

	created, err := s.repo.Create(ctx, room)
	if err != nil {
		return nil, err
	}
	if created.Status == entity.RoomBooked {
		s.notifyBooked(ctx, actor, created)
	}
	return created, nil
}

// Update changes the provided fields of room id.
func (s *RoomService) Update(ctx context.Context, actor auth.Identity, id int64, req dto.RoomRequest) (*entity.Room, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch, err := s.check(ctx, req, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated.Status == entity.RoomBooked && current.Status != entity.RoomBooked {
		s.notifyBooked(ctx, actor, updated)
	}
	return updated, nil
}

func (s *RoomService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// BulkDelete removes every listed room. All ids must exist.
func (s *RoomService) BulkDelete(ctx context.Context, raw []any) (int64, error) {
	ids, err := checkBulkIDs(ctx, s.lookup, "rooms", raw)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperror.ErrNothingDeleted
	}
	return n, nil
}

// check validates req. ignoreID > 0 marks an update: every field becomes
// optional and uniqueness skips the room itself.
func (s *RoomService) check(ctx context.Context, req dto.RoomRequest, ignoreID int64) (repository.RoomPatch, error) {
	creating := ignoreID == 0
	c := newFieldChecker()
	var patch repository.RoomPatch

	if number, ok := c.text("room_number", req.RoomNumber, creating, maxRoomNumberLength); ok {
		if err := c.unique(ctx, s.lookup, "rooms", "room_number", "room_number", number, ignoreID); err != nil {
			return patch, apperror.Storage("lookup", err)
		}
		patch.RoomNumber = &number
	}
	if typeID, ok := c.positiveID("room_type_id", req.RoomTypeID, creating); ok {
		if err := c.exists(ctx, s.lookup, "room_types", "room_type_id", typeID); err != nil {
			return patch, apperror.Storage("lookup", err)
		}
		patch.RoomTypeID = &typeID
	}
	if price, ok := c.between("price_per_month", req.PricePerMonth, creating, 0, listquery.MaxPrice); ok {
		patch.PricePerMonth = &price
	}
	if status, ok := c.oneOf("status", req.Status, creating, func(v int) bool { return entity.RoomStatus(v).Valid() }); ok {
		st := entity.RoomStatus(status)
		patch.Status = &st
	}
	if desc, ok := c.optionalText("description", req.Description, maxDescriptionLength); ok {
		patch.Description = &desc
	}

	return patch, c.err()
}

func (s *RoomService) notifyBooked(ctx context.Context, actor auth.Identity, room *entity.Room) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, actor, fmt.Sprintf("Room %s is now booked and unavailable", room.RoomNumber), entity.NotificationRoomUnavailable)
}
