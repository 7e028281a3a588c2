package service

import (
	"context"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/repository"
)

const (
	maxRoomTypeNameLength        = 255
	maxRoomTypeDescriptionLength = 65535
)

// RoomTypeService implements the room type use cases.
type RoomTypeService struct {
	repo   repository.RoomTypesRepository
	lookup repository.Lookup
}

func NewRoomTypeService(repo repository.RoomTypesRepository, lookup repository.Lookup) *RoomTypeService {
	return &RoomTypeService{repo: repo, lookup: lookup}
}

func (s *RoomTypeService) List(ctx context.Context, raw listquery.Request) (listquery.PageResult[entity.RoomType], error) {
	return listquery.Run[entity.RoomType](ctx, raw, RoomTypePolicy, RoomTypeFields, s.repo)
}

func (s *RoomTypeService) Find(ctx context.Context, id int64) (*entity.RoomType, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RoomTypeService) Create(ctx context.Context, req dto.RoomTypeRequest) (*entity.RoomType, error) {
	name, desc, err := s.check(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	description := ""
	if desc != nil {
		description = *desc
	}
	return s.repo.Create(ctx, *name, description)
}

func (s *RoomTypeService) Update(ctx context.Context, id int64, req dto.RoomTypeRequest) (*entity.RoomType, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	name, desc, err := s.check(ctx, req, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, name, desc)
}

// Delete removes the room type and, through the foreign key, its rooms.
func (s *RoomTypeService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *RoomTypeService) BulkDelete(ctx context.Context, raw []any) (int64, error) {
	ids, err := checkBulkIDs(ctx, s.lookup, "room_types", raw)
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

func (s *RoomTypeService) check(ctx context.Context, req dto.RoomTypeRequest, ignoreID int64) (*string, *string, error) {
	c := newFieldChecker()
	var name, desc *string

	if v, ok := c.text("name", req.Name, ignoreID == 0, maxRoomTypeNameLength); ok {
		if err := c.unique(ctx, s.lookup, "room_types", "name", "name", v, ignoreID); err != nil {
			return nil, nil, apperror.Storage("lookup", err)
		}
		name = &v
	}
	if v, ok := c.optionalText("description", req.Description, maxRoomTypeDescriptionLength); ok {
		desc = &v
	}
	return name, desc, c.err()
}
