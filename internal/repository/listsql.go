package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/octobees/rentroom/api/internal/listquery"
)

// columnMap resolves logical listing columns to SQL expressions.
type columnMap map[string]string

func (m columnMap) expr(col string) (string, error) {
	expr, ok := m[col]
	if !ok {
		return "", fmt.Errorf("column %q is not listable", col)
	}
	return expr, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compileWhere renders the plan's clauses as a WHERE body using $n
// placeholders starting at $1. An empty string means no restriction.
func compileWhere(plan listquery.QueryPlan, cols columnMap) (string, []any, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	for _, clause := range plan.Where {
		if len(clause.Any) == 0 {
			clauses = append(clauses, "FALSE")
			continue
		}
		parts := make([]string, 0, len(clause.Any))
		for _, pred := range clause.Any {
			expr, err := cols.expr(pred.Column)
			if err != nil {
				return "", nil, err
			}
			switch pred.Op {
			case listquery.OpContains:
				parts = append(parts, fmt.Sprintf("%s ILIKE $%d", expr, idx))
				args = append(args, "%"+likeEscaper.Replace(fmt.Sprint(pred.Value))+"%")
			case listquery.OpGte:
				parts = append(parts, fmt.Sprintf("%s >= $%d", expr, idx))
				args = append(args, pred.Value)
			case listquery.OpLte:
				parts = append(parts, fmt.Sprintf("%s <= $%d", expr, idx))
				args = append(args, pred.Value)
			default:
				if pred.Type == listquery.Date {
					parts = append(parts, fmt.Sprintf("(%s)::date = $%d::date", expr, idx))
					if t, ok := pred.Value.(time.Time); ok {
						args = append(args, t.Format(listquery.DateLayout))
					} else {
						args = append(args, pred.Value)
					}
				} else {
					parts = append(parts, fmt.Sprintf("%s = $%d", expr, idx))
					args = append(args, pred.Value)
				}
			}
			idx++
		}
		if len(parts) == 1 {
			clauses = append(clauses, parts[0])
		} else {
			clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

func compileOrder(order listquery.Order, cols columnMap) (string, error) {
	expr, err := cols.expr(order.Column)
	if err != nil {
		return "", err
	}
	if order.Desc {
		return expr + " DESC", nil
	}
	return expr + " ASC", nil
}

// listSource describes the rows a listing endpoint reads from.
type listSource struct {
	selectList string
	from       string
	cols       columnMap
}

func (s listSource) count(ctx context.Context, pool pgxPool, plan listquery.QueryPlan) (int, error) {
	where, args, err := compileWhere(plan, s.cols)
	if err != nil {
		return 0, err
	}
	query := "SELECT COUNT(*) FROM " + s.from
	if where != "" {
		query += " WHERE " + where
	}

	var total int
	if err := pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.from, err)
	}
	return total, nil
}

func (s listSource) fetch(ctx context.Context, pool pgxPool, plan listquery.QueryPlan, offset, limit int) (pgx.Rows, error) {
	where, args, err := compileWhere(plan, s.cols)
	if err != nil {
		return nil, err
	}
	orderBy, err := compileOrder(plan.Order, s.cols)
	if err != nil {
		return nil, err
	}

	query := strings.Builder{}
	query.WriteString("SELECT ")
	query.WriteString(s.selectList)
	query.WriteString(" FROM ")
	query.WriteString(s.from)
	if where != "" {
		query.WriteString(" WHERE ")
		query.WriteString(where)
	}
	query.WriteString(" ORDER BY ")
	query.WriteString(orderBy)
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.from, err)
	}
	return rows, nil
}
