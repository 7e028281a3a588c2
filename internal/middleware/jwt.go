package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/response"
)

// JWT validates bearer tokens and stores the caller identity in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
			}

			c.Set(ContextKeyIdentity, claims.Identity())
			return next(c)
		}
	}
}
