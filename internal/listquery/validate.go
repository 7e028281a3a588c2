package listquery

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/octobees/rentroom/api/internal/apperror"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPage        = 1000000
	MaxPerPage     = 100
	MaxPrice       = 99999999.99
)

// ErrorKind enumerates the structural listing errors.
type ErrorKind int

const (
	EmptySortColumn ErrorKind = iota + 1
	SortColumnNotAllowed
	EmptySortDirection
	InvalidSortDirection
	EmptyFilterColumn
	FilterColumnNotAllowed
	FilterValueNotAllowed
)

var kindMessages = map[ErrorKind]string{
	EmptySortColumn:        "Sort column can not be empty.",
	SortColumnNotAllowed:   "Sort column not allowed.",
	EmptySortDirection:     "Sort direction can not be empty.",
	InvalidSortDirection:   "Sort direction is invalid.",
	EmptyFilterColumn:      "Filter column can not be empty.",
	FilterColumnNotAllowed: "Filter column not allowed.",
	FilterValueNotAllowed:  "Filter value not allowed.",
}

// ValidationError reports a sort or filter request the endpoint refuses.
type ValidationError struct {
	Kind   ErrorKind
	Column string
}

func (e *ValidationError) Error() string {
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return "Invalid query parameters."
}

// Validate checks raw against policy. Sort and filter problems are returned as
// *ValidationError before any numeric field is looked at; numeric problems are
// collected together into apperror.FieldErrors.
func Validate(raw Request, policy ColumnPolicy) (NormalizedQuery, error) {
	q := NormalizedQuery{
		PriceMin: Unset,
		PriceMax: Unset,
		Page:     DefaultPage,
		PerPage:  DefaultPerPage,
	}

	if raw.SortCol != nil && len(policy.SortColumns) > 0 {
		col := strings.TrimSpace(*raw.SortCol)
		dir := strings.TrimSpace(raw.SortDir)
		switch {
		case col == "":
			return q, &ValidationError{Kind: EmptySortColumn}
		case !policy.sortable(col):
			return q, &ValidationError{Kind: SortColumnNotAllowed, Column: col}
		case dir == "":
			return q, &ValidationError{Kind: EmptySortDirection, Column: col}
		case dir != SortAsc && dir != SortDesc:
			return q, &ValidationError{Kind: InvalidSortDirection, Column: col}
		}
		q.IsSort, q.SortCol, q.SortDir = true, col, dir
	}

	errs := apperror.FieldErrors{}

	if raw.FilterCol != nil {
		col := strings.TrimSpace(*raw.FilterCol)
		val := strings.TrimSpace(raw.FilterVal)
		if len(policy.FilterColumns) > 0 {
			switch {
			case col == "":
				return q, &ValidationError{Kind: EmptyFilterColumn}
			case !policy.filterable(col):
				return q, &ValidationError{Kind: FilterColumnNotAllowed, Column: col}
			}
		}
		// The value allow-list applies even when any column may be named.
		if len(policy.FilterValues) > 0 && !slices.Contains(policy.FilterValues, val) {
			return q, &ValidationError{Kind: FilterValueNotAllowed, Column: col}
		}
		if len(policy.FilterColumns) > 0 {
			if val == "" {
				errs.Add(ParamFilterVal, "The filter val field is required when filter col is present.")
			}
			q.IsFilter, q.FilterCol, q.FilterVal = true, col, val
		}
	}

	if search := strings.TrimSpace(raw.Search); search != "" {
		q.IsSearch, q.Search = true, search
	}

	if policy.PriceRange {
		if v, ok := parsePrice(errs, ParamPriceMin, raw.PriceMin); ok {
			q.PriceMin = v
		}
		if v, ok := parsePrice(errs, ParamPriceMax, raw.PriceMax); ok {
			q.PriceMax = v
		}
		if q.HasPriceMin() && q.HasPriceMax() && q.PriceMin > q.PriceMax {
			errs.Add(ParamPriceMax, "The price max field must be greater than or equal to price min.")
		}
	}

	if v, ok := parseBoundedInt(errs, ParamPage, raw.Page, 1, MaxPage); ok {
		q.Page = v
	}
	if v, ok := parseBoundedInt(errs, ParamPerPage, raw.PerPage, 1, MaxPerPage); ok {
		q.PerPage = v
	}

	if err := errs.Err(); err != nil {
		return q, err
	}
	return q, nil
}

func parsePrice(errs apperror.FieldErrors, field, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	label := fieldLabel(field)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(field, fmt.Sprintf("The %s field must be a number.", label))
		return 0, false
	}
	if v < 0 {
		errs.Add(field, fmt.Sprintf("The %s field must be at least 0.", label))
		return 0, false
	}
	if v > MaxPrice {
		errs.Add(field, fmt.Sprintf("The %s field must not be greater than %.2f.", label, MaxPrice))
		return 0, false
	}
	return v, true
}

func parseBoundedInt(errs apperror.FieldErrors, field, raw string, lo, hi int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	label := fieldLabel(field)
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, fmt.Sprintf("The %s field must be an integer.", label))
		return 0, false
	}
	if v < lo {
		errs.Add(field, fmt.Sprintf("The %s field must be at least %d.", label, lo))
		return 0, false
	}
	if v > hi {
		errs.Add(field, fmt.Sprintf("The %s field must not be greater than %d.", label, hi))
		return 0, false
	}
	return v, true
}

func fieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
