package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
)

// RoomTypesRepository describes persistence operations for room types.
type RoomTypesRepository interface {
	listquery.Store[entity.RoomType]
	FindByID(ctx context.Context, id int64) (*entity.RoomType, error)
	Create(ctx context.Context, name, description string) (*entity.RoomType, error)
	Update(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

const roomTypeColumns = `id, name, description, created_at, updated_at`

var roomTypesSource = listSource{
	selectList: roomTypeColumns,
	from:       "room_types",
	cols: columnMap{
		"id":          "id",
		"name":        "name",
		"description": "description",
	},
}

// PGXRoomTypesRepository implements RoomTypesRepository using pgx.
type PGXRoomTypesRepository struct {
	pool pgxPool
}

// NewPGXRoomTypesRepository wires a pgx backed repository.
func NewPGXRoomTypesRepository(pool *pgxpool.Pool) *PGXRoomTypesRepository {
	return &PGXRoomTypesRepository{pool: pool}
}

func (r *PGXRoomTypesRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	return roomTypesSource.count(ctx, r.pool, plan)
}

func (r *PGXRoomTypesRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.RoomType, error) {
	rows, err := roomTypesSource.fetch(ctx, r.pool, plan, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []entity.RoomType
	for rows.Next() {
		var rt entity.RoomType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Description, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan room type row: %w", err)
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room types: %w", err)
	}
	return types, nil
}

func (r *PGXRoomTypesRepository) FindByID(ctx context.Context, id int64) (*entity.RoomType, error) {
	var rt entity.RoomType
	err := r.pool.QueryRow(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE id = $1`, id).
		Scan(&rt.ID, &rt.Name, &rt.Description, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Room type"}
		}
		return nil, fmt.Errorf("query room type by id: %w", err)
	}
	return &rt, nil
}

func (r *PGXRoomTypesRepository) Create(ctx context.Context, name, description string) (*entity.RoomType, error) {
	var rt entity.RoomType
	err := r.pool.QueryRow(ctx, `
        INSERT INTO room_types (name, description)
        VALUES ($1, $2)
        RETURNING `+roomTypeColumns, name, description).
		Scan(&rt.ID, &rt.Name, &rt.Description, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if _, ok := pgConstraint(err, pgUniqueViolation); ok {
			return nil, duplicateRoomTypeName()
		}
		return nil, fmt.Errorf("insert room type: %w", err)
	}
	return &rt, nil
}

func (r *PGXRoomTypesRepository) Update(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error) {
	setClauses := make([]string, 0, 3)
	args := make([]any, 0, 3)
	idx := 1

	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *name)
		idx++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", idx))
		args = append(args, *description)
		idx++
	}
	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE room_types SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, roomTypeColumns)

	var rt entity.RoomType
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rt.ID, &rt.Name, &rt.Description, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Room type"}
		}
		if _, ok := pgConstraint(err, pgUniqueViolation); ok {
			return nil, duplicateRoomTypeName()
		}
		return nil, fmt.Errorf("update room type: %w", err)
	}
	return &rt, nil
}

// Delete removes a room type; its rooms go with it.
func (r *PGXRoomTypesRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM room_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room type: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperror.NotFoundError{Resource: "Room type"}
	}
	return nil
}

func (r *PGXRoomTypesRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM room_types WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete room types: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func duplicateRoomTypeName() error {
	errs := apperror.FieldErrors{}
	errs.Add("name", "The name has already been taken.")
	return errs
}
