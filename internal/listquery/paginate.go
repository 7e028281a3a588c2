package listquery

import (
	"context"

	"github.com/octobees/rentroom/api/internal/apperror"
)

// Store is implemented by anything that can count and fetch rows for a plan.
type Store[T any] interface {
	Count(ctx context.Context, plan QueryPlan) (int, error)
	Fetch(ctx context.Context, plan QueryPlan, offset, limit int) ([]T, error)
}

// PageResult is one page of items together with its pagination metadata.
type PageResult[T any] struct {
	Items       []T
	Total       int
	PerPage     int
	CurrentPage int
	LastPage    int
	HasMore     bool
}

// FirstItem is the 1-based position of the first item on the page, or 0 when the page is empty.
func (p PageResult[T]) FirstItem() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PerPage + 1
}

// LastItem is the 1-based position of the last item on the page, or 0 when the page is empty.
func (p PageResult[T]) LastItem() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.FirstItem() + len(p.Items) - 1
}

// Paginate counts the rows matching plan and fetches the requested page.
// Count and fetch run as separate statements, so the total can drift from the
// page contents under concurrent writes. Pages past the end come back empty.
func Paginate[T any](ctx context.Context, store Store[T], plan QueryPlan, page, perPage int) (PageResult[T], error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	result := PageResult[T]{
		Items:       []T{},
		PerPage:     perPage,
		CurrentPage: page,
	}

	total, err := store.Count(ctx, plan)
	if err != nil {
		return result, apperror.Storage("count", err)
	}
	result.Total = total
	result.LastPage = (total + perPage - 1) / perPage
	result.HasMore = page < result.LastPage

	offset := (page - 1) * perPage
	if offset >= total {
		return result, nil
	}

	items, err := store.Fetch(ctx, plan, offset, perPage)
	if err != nil {
		return result, apperror.Storage("fetch", err)
	}
	if items != nil {
		result.Items = items
	}
	return result, nil
}

// Run validates raw, plans it for fields and paginates it through store.
func Run[T any](ctx context.Context, raw Request, policy ColumnPolicy, fields EntityFieldSet, store Store[T]) (PageResult[T], error) {
	q, err := Validate(raw, policy)
	if err != nil {
		return PageResult[T]{}, err
	}
	plan, err := Plan(q, fields)
	if err != nil {
		return PageResult[T]{}, err
	}
	return Paginate(ctx, store, plan, q.Page, q.PerPage)
}
