package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/rentroom/api/internal/listquery"
)

func TestCompileWhere(t *testing.T) {
	joined := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	plan := listquery.QueryPlan{
		Where: []listquery.Clause{
			{Any: []listquery.Predicate{
				{Column: "id", Type: listquery.Integer, Op: listquery.OpEq, Value: int64(7)},
				{Column: "email", Type: listquery.Text, Op: listquery.OpContains, Value: "50%_off"},
			}},
			{Any: []listquery.Predicate{{Column: "joined_at", Type: listquery.Date, Op: listquery.OpEq, Value: joined}}},
			{Any: []listquery.Predicate{{Column: "price", Type: listquery.Number, Op: listquery.OpGte, Value: 60.0}}},
		},
	}
	cols := columnMap{"id": "t.id", "email": "t.email", "joined_at": "t.joined_at", "price": "t.price"}

	where, args, err := compileWhere(plan, cols)
	require.NoError(t, err)
	assert.Equal(t, `(t.id = $1 OR t.email ILIKE $2) AND (t.joined_at)::date = $3::date AND t.price >= $4`, where)
	assert.Equal(t, []any{int64(7), `%50\%\_off%`, "2024-01-15", 60.0}, args)
}

func TestCompileWhere_EmptyClauseMatchesNothing(t *testing.T) {
	where, args, err := compileWhere(listquery.QueryPlan{Where: []listquery.Clause{{}}}, columnMap{})
	require.NoError(t, err)
	assert.Equal(t, "FALSE", where)
	assert.Empty(t, args)
}

func TestCompileWhere_UnknownColumn(t *testing.T) {
	plan := listquery.QueryPlan{Where: []listquery.Clause{{Any: []listquery.Predicate{{Column: "password_hash", Op: listquery.OpEq, Value: "x"}}}}}
	_, _, err := compileWhere(plan, columnMap{"id": "id"})
	assert.Error(t, err)
}

func TestListSource_FetchAppendsPaging(t *testing.T) {
	var (
		gotQuery string
		gotArgs  []any
	)
	pool := &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery, gotArgs = query, args
			return rowsOf(), nil
		},
	}
	plan := listquery.QueryPlan{
		Where: []listquery.Clause{{Any: []listquery.Predicate{{Column: "status", Type: listquery.Integer, Op: listquery.OpEq, Value: int64(1)}}}},
		Order: listquery.Order{Column: "room_number", Desc: false},
	}

	rows, err := roomsSource.fetch(context.Background(), pool, plan, 30, 15)
	require.NoError(t, err)
	rows.Close()

	assert.Contains(t, gotQuery, "WHERE r.status = $1 ORDER BY r.room_number ASC LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{int64(1), 15, 30}, gotArgs)
}

func TestListSource_CountIgnoresPaging(t *testing.T) {
	var gotQuery string
	pool := &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery = query
			return &stubRow{scan: fill(42)}
		},
	}

	total, err := tenantsSource.count(context.Background(), pool, listquery.QueryPlan{})
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.Equal(t, "SELECT COUNT(*) FROM tenants", gotQuery)
}
