// Package listquery turns raw listing parameters into a validated, storage
// agnostic query plan and paginates the result through a Store.
package listquery

import (
	"net/url"
	"slices"
)

// Query parameter names understood by FromValues.
const (
	ParamSearch    = "search"
	ParamSortCol   = "sort_col"
	ParamSortDir   = "sort_dir"
	ParamFilterCol = "filter_col"
	ParamFilterVal = "filter_val"
	ParamPriceMin  = "price_min"
	ParamPriceMax  = "price_max"
	ParamPage      = "page"
	ParamPerPage   = "per_page"
)

// Request carries the raw listing parameters exactly as the client sent them.
// SortCol and FilterCol are nil when the key was absent, which is different
// from a key sent with an empty value.
type Request struct {
	Search    string
	SortCol   *string
	SortDir   string
	FilterCol *string
	FilterVal string
	PriceMin  string
	PriceMax  string
	Page      string
	PerPage   string
}

// FromValues builds a Request from decoded query string values.
func FromValues(values url.Values) Request {
	req := Request{
		Search:    values.Get(ParamSearch),
		SortDir:   values.Get(ParamSortDir),
		FilterVal: values.Get(ParamFilterVal),
		PriceMin:  values.Get(ParamPriceMin),
		PriceMax:  values.Get(ParamPriceMax),
		Page:      values.Get(ParamPage),
		PerPage:   values.Get(ParamPerPage),
	}
	if _, ok := values[ParamSortCol]; ok {
		col := values.Get(ParamSortCol)
		req.SortCol = &col
	}
	if _, ok := values[ParamFilterCol]; ok {
		col := values.Get(ParamFilterCol)
		req.FilterCol = &col
	}
	return req
}

// ColumnPolicy lists which columns an endpoint lets clients sort and filter on.
// An empty allow-list switches the matching check off.
type ColumnPolicy struct {
	SortColumns   []string
	FilterColumns []string
	FilterValues  []string
	PriceRange    bool
}

func (p ColumnPolicy) sortable(col string) bool {
	return slices.Contains(p.SortColumns, col)
}

func (p ColumnPolicy) filterable(col string) bool {
	return slices.Contains(p.FilterColumns, col)
}

// NormalizedQuery is the typed outcome of Validate.
type NormalizedQuery struct {
	IsSort    bool
	SortCol   string
	SortDir   string
	IsFilter  bool
	FilterCol string
	FilterVal string
	IsSearch  bool
	Search    string
	// PriceMin and PriceMax hold Unset when the bound was not supplied.
	PriceMin float64
	PriceMax float64
	Page     int
	PerPage  int
}

// Unset marks an absent price bound. Any negative bound counts as unset.
const Unset = -1

// HasPriceMin reports whether a lower price bound was supplied.
func (q NormalizedQuery) HasPriceMin() bool { return q.PriceMin >= 0 }

// HasPriceMax reports whether an upper price bound was supplied.
func (q NormalizedQuery) HasPriceMax() bool { return q.PriceMax >= 0 }
