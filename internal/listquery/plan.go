package listquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/rentroom/api/internal/apperror"
)

// ColumnType tells the planner how to re-type a filter value for a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Number
	Date
	// SmallInt is an Integer stored in 16 bits.
	SmallInt
)

func (t ColumnType) String() string {
	switch t {
	case Integer, SmallInt:
		return "integer"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// DateLayout is the accepted format for Date filter values.
const DateLayout = "2006-01-02"

// EntityFieldSet describes the columns of one listable entity.
type EntityFieldSet struct {
	// Identifier is matched exactly when the search text is an integer.
	Identifier string
	Columns    map[string]ColumnType
	// Searchable columns get a case-insensitive substring match.
	Searchable []string
	// RangeColumn receives price_min / price_max bounds. Empty disables them.
	RangeColumn string
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpGte
	OpLte
	OpContains
)

// Predicate compares one column to a typed value. Value is a string, int64,
// float64 or time.Time depending on Type.
type Predicate struct {
	Column string
	Type   ColumnType
	Op     Op
	Value  any
}

// Clause is a disjunction of predicates. A clause with no predicates matches nothing.
type Clause struct {
	Any []Predicate
}

// Order is the single sort key of a plan.
type Order struct {
	Column string
	Desc   bool
}

// QueryPlan is a conjunction of clauses plus ordering.
type QueryPlan struct {
	Where []Clause
	Order Order
}

// Plan translates a normalized query into a QueryPlan for fields.
func Plan(q NormalizedQuery, fields EntityFieldSet) (QueryPlan, error) {
	var plan QueryPlan

	if q.IsSearch {
		plan.Where = append(plan.Where, searchClause(q.Search, fields))
	}

	if q.IsFilter {
		typ, ok := fields.Columns[q.FilterCol]
		if !ok {
			return QueryPlan{}, fmt.Errorf("filter column %q is not mapped", q.FilterCol)
		}
		value, err := convertValue(typ, q.FilterVal)
		if err != nil {
			errs := apperror.FieldErrors{}
			if errors.Is(err, strconv.ErrRange) {
				errs.Add(ParamFilterVal, fmt.Sprintf("The filter val is out of range for %s.", q.FilterCol))
			} else {
				errs.Add(ParamFilterVal, fmt.Sprintf("The filter val must be a valid %s for %s.", typ, q.FilterCol))
			}
			return QueryPlan{}, errs
		}
		plan.Where = append(plan.Where, Clause{Any: []Predicate{{Column: q.FilterCol, Type: typ, Op: OpEq, Value: value}}})
	}

	if fields.RangeColumn != "" {
		if q.HasPriceMin() {
			plan.Where = append(plan.Where, Clause{Any: []Predicate{{Column: fields.RangeColumn, Type: Number, Op: OpGte, Value: q.PriceMin}}})
		}
		if q.HasPriceMax() {
			plan.Where = append(plan.Where, Clause{Any: []Predicate{{Column: fields.RangeColumn, Type: Number, Op: OpLte, Value: q.PriceMax}}})
		}
	}

	plan.Order = Order{Column: fields.Identifier, Desc: true}
	if q.IsSort {
		if _, ok := fields.Columns[q.SortCol]; !ok && q.SortCol != fields.Identifier {
			return QueryPlan{}, fmt.Errorf("sort column %q is not mapped", q.SortCol)
		}
		plan.Order = Order{Column: q.SortCol, Desc: q.SortDir == SortDesc}
	}

	return plan, nil
}

func searchClause(search string, fields EntityFieldSet) Clause {
	var clause Clause
	if id, err := strconv.ParseInt(search, 10, 64); err == nil && fields.Identifier != "" {
		clause.Any = append(clause.Any, Predicate{Column: fields.Identifier, Type: Integer, Op: OpEq, Value: id})
	}
	for _, col := range fields.Searchable {
		clause.Any = append(clause.Any, Predicate{Column: col, Type: Text, Op: OpContains, Value: search})
	}
	return clause
}

func convertValue(typ ColumnType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch typ {
	case Integer:
		return strconv.ParseInt(raw, 10, 64)
	case SmallInt:
		return strconv.ParseInt(raw, 10, 16)
	case Number:
		return strconv.ParseFloat(raw, 64)
	case Date:
		return time.Parse(DateLayout, raw)
	default:
		return raw, nil
	}
}
