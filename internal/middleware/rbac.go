package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/response"
)

// RequirePermission enforces that the authenticated caller holds perm.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
			}
			if !id.Can(perm) {
				return response.Fail(c, http.StatusForbidden, response.MessageForbidden)
			}
			return next(c)
		}
	}
}
