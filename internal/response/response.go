// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/listquery"
)

// Code is the fixed status code carried by every envelope.
const Code = 1

// Messages shared across handlers and middleware.
const (
	MessageWentWrong    = "Something went wrong!"
	MessageQueryInvalid = "Query Parameters failed validation"
	MessageUnauthorized = "Unauthenticated."
	MessageForbidden    = "This action is unauthorized."
	MessageTooMany      = "Too Many Attempts."
)

// Envelope is the body of every API response.
type Envelope struct {
	Result   bool                `json:"result"`
	Code     int                 `json:"code"`
	Message  string              `json:"message"`
	Data     any                 `json:"data"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Paginate *Paginate           `json:"paginate,omitempty"`
}

// Paginate describes where a page sits inside the full result set.
// FirstItem and LastItem are null for an empty page.
type Paginate struct {
	HasPage      bool `json:"has_page"`
	OnFirstPage  bool `json:"on_first_page"`
	HasMorePages bool `json:"has_more_pages"`
	FirstItem    *int `json:"first_item"`
	LastItem     *int `json:"last_item"`
	Total        int  `json:"total"`
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
}

// NewPaginate derives the paginate block from a page result.
func NewPaginate[T any](page listquery.PageResult[T]) *Paginate {
	p := &Paginate{
		HasPage:      page.CurrentPage != 1 || page.HasMore,
		OnFirstPage:  page.CurrentPage <= 1,
		HasMorePages: page.HasMore,
		Total:        page.Total,
		CurrentPage:  page.CurrentPage,
		LastPage:     max(page.LastPage, 1),
	}
	if len(page.Items) > 0 {
		first, last := page.FirstItem(), page.LastItem()
		p.FirstItem = &first
		p.LastItem = &last
	}
	return p
}

// Success sends a successful envelope. A zero status means 200.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	if data == nil {
		data = []any{}
	}
	return c.JSON(status, Envelope{Result: true, Code: Code, Message: message, Data: data})
}

// Paginated sends one page of already mapped items with its paginate block.
func Paginated[T, V any](c echo.Context, message string, page listquery.PageResult[T], items []V) error {
	if items == nil {
		items = []V{}
	}
	return c.JSON(http.StatusOK, Envelope{
		Result:   true,
		Code:     Code,
		Message:  message,
		Data:     items,
		Paginate: NewPaginate(page),
	})
}

// Fail sends a failed envelope with empty data. A zero status means 400.
func Fail(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return c.JSON(status, Envelope{Result: false, Code: Code, Message: message, Data: []any{}})
}

// Invalid sends a 422 carrying per-field messages.
func Invalid(c echo.Context, message string, errs map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, Envelope{
		Result:  false,
		Code:    Code,
		Message: message,
		Data:    []any{},
		Errors:  errs,
	})
}

// WentWrong sends the generic 500 envelope.
func WentWrong(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, MessageWentWrong)
}
