package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Lookup answers existence questions asked while validating payloads.
type Lookup interface {
	// Exists reports whether a row in table has column = value, ignoring the
	// row whose id is excludeID when excludeID > 0.
	Exists(ctx context.Context, table, column string, value any, excludeID int64) (bool, error)
	// MissingIDs returns the ids that have no row in table.
	MissingIDs(ctx context.Context, table string, ids []int64) ([]int64, error)
}

var lookupColumns = map[string][]string{
	"rooms":      {"id", "room_number"},
	"room_types": {"id", "name"},
	"tenants":    {"id", "email", "phone_number"},
	"users":      {"email"},
}

// PGXLookup implements Lookup with pgx.
type PGXLookup struct {
	pool pgxPool
}

// NewPGXLookup builds a lookup over the pool.
func NewPGXLookup(pool *pgxpool.Pool) *PGXLookup {
	return &PGXLookup{pool: pool}
}

func checkLookup(table, column string) error {
	cols, ok := lookupColumns[table]
	if !ok || !slices.Contains(cols, column) {
		return fmt.Errorf("lookup on %s.%s is not allowed", table, column)
	}
	return nil
}

// Exists implements Lookup.
func (l *PGXLookup) Exists(ctx context.Context, table, column string, value any, excludeID int64) (bool, error) {
	if err := checkLookup(table, column); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1", table, column)
	args := []any{value}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += ")"

	var exists bool
	if err := l.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup %s.%s: %w", table, column, err)
	}
	return exists, nil
}

// MissingIDs implements Lookup.
func (l *PGXLookup) MissingIDs(ctx context.Context, table string, ids []int64) ([]int64, error) {
	if err := checkLookup(table, "id"); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := l.pool.Query(ctx, fmt.Sprintf("SELECT id FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return nil, fmt.Errorf("lookup %s ids: %w", table, err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", table, err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
