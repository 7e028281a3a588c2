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

// RoomsRepository describes persistence operations for rooms.
type RoomsRepository interface {
	listquery.Store[entity.Room]
	FindByID(ctx context.Context, id int64) (*entity.Room, error)
	Create(ctx context.Context, room entity.Room) (*entity.Room, error)
	Update(ctx context.Context, id int64, patch RoomPatch) (*entity.Room, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// RoomPatch lists the room attributes to change; nil fields are left alone.
type RoomPatch struct {
	RoomNumber    *string
	RoomTypeID    *int64
	PricePerMonth *float64
	Status        *entity.RoomStatus
	Description   *string
}

const roomSelect = `r.id, r.room_number, r.room_type_id, r.price_per_month, r.status, r.description, r.created_at, r.updated_at,
        rt.id, rt.name, rt.description, rt.created_at, rt.updated_at`

var roomsSource = listSource{
	selectList: roomSelect,
	from:       "rooms r JOIN room_types rt ON rt.id = r.room_type_id",
	cols: columnMap{
		"id":              "r.id",
		"room_number":     "r.room_number",
		"room_type_id":    "r.room_type_id",
		"status":          "r.status",
		"price_per_month": "r.price_per_month",
	},
}

// PGXRoomsRepository implements RoomsRepository using pgx.
type PGXRoomsRepository struct {
	pool pgxPool
}

// NewPGXRoomsRepository wires a pgx backed repository.
func NewPGXRoomsRepository(pool *pgxpool.Pool) *PGXRoomsRepository {
	return &PGXRoomsRepository{pool: pool}
}

// Count implements listquery.Store.
func (r *PGXRoomsRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	return roomsSource.count(ctx, r.pool, plan)
}

// Fetch implements listquery.Store.
func (r *PGXRoomsRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Room, error) {
	rows, err := roomsSource.fetch(ctx, r.pool, plan, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]entity.Room, 0, limit)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room together with its type.
func (r *PGXRoomsRepository) FindByID(ctx context.Context, id int64) (*entity.Room, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roomSelect+` FROM rooms r JOIN room_types rt ON rt.id = r.room_type_id WHERE r.id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Room"}
		}
		return nil, fmt.Errorf("query room by id: %w", err)
	}
	return room, nil
}

// Create inserts a room and returns it with its type loaded.
func (r *PGXRoomsRepository) Create(ctx context.Context, room entity.Room) (*entity.Room, error) {
	row := r.pool.QueryRow(ctx, `
        WITH r AS (
            INSERT INTO rooms (room_number, room_type_id, price_per_month, status, description)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING *
        )
        SELECT `+roomSelect+` FROM r JOIN room_types rt ON rt.id = r.room_type_id
    `, room.RoomNumber, room.RoomTypeID, room.PricePerMonth, int(room.Status), room.Description)

	created, err := scanRoom(row)
	if err != nil {
		if fe := roomConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return created, nil
}

// Update patches room attributes.
func (r *PGXRoomsRepository) Update(ctx context.Context, id int64, patch RoomPatch) (*entity.Room, error) {
	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)
	idx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if patch.RoomNumber != nil {
		set("room_number", *patch.RoomNumber)
	}
	if patch.RoomTypeID != nil {
		set("room_type_id", *patch.RoomTypeID)
	}
	if patch.PricePerMonth != nil {
		set("price_per_month", *patch.PricePerMonth)
	}
	if patch.Status != nil {
		set("status", int(*patch.Status))
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        WITH r AS (
            UPDATE rooms SET %s WHERE id = $%d RETURNING *
        )
        SELECT %s FROM r JOIN room_types rt ON rt.id = r.room_type_id
    `, strings.Join(setClauses, ", "), idx, roomSelect)

	updated, err := scanRoom(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Room"}
		}
		if fe := roomConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("update room: %w", err)
	}
	return updated, nil
}

// Delete removes a room by id.
func (r *PGXRoomsRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperror.NotFoundError{Resource: "Room"}
	}
	return nil
}

// DeleteMany removes every room whose id is listed and reports how many went.
func (r *PGXRoomsRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete rooms: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func scanRoom(row pgx.Row) (*entity.Room, error) {
	var (
		room   entity.Room
		rt     entity.RoomType
		status int
	)
	if err := row.Scan(
		&room.ID, &room.RoomNumber, &room.RoomTypeID, &room.PricePerMonth, &status, &room.Description, &room.CreatedAt, &room.UpdatedAt,
		&rt.ID, &rt.Name, &rt.Description, &rt.CreatedAt, &rt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	room.Status = entity.RoomStatus(status)
	room.RoomType = &rt
	return &room, nil
}

func roomConstraintError(err error) error {
	if _, ok := pgConstraint(err, pgUniqueViolation); ok {
		errs := apperror.FieldErrors{}
		errs.Add("room_number", "The room number has already been taken.")
		return errs
	}
	if _, ok := pgConstraint(err, pgForeignKeyViolation); ok {
		errs := apperror.FieldErrors{}
		errs.Add("room_type_id", "The selected room type id is invalid.")
		return errs
	}
	return nil
}
