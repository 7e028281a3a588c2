package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/auth"
)

// Context keys used to store request metadata.
const (
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

// IdentityFrom returns the authenticated caller stored by JWT.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(ContextKeyIdentity).(auth.Identity)
	return id, ok
}
