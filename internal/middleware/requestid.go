package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/notify"
)

// maxRequestIDLen bounds caller supplied ids before they reach logs and webhook headers.
const maxRequestIDLen = 128

// RequestID reuses the caller's X-Request-ID or mints a uuid. The id is echoed
// on the response and attached to the request context so notification
// webhooks forward it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := sanitizeRequestID(req.Header.Get(echo.HeaderXRequestID))
			if rid == "" {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			c.SetRequest(req.WithContext(notify.WithRequestID(req.Context(), rid)))
			return next(c)
		}
	}
}

func sanitizeRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return raw
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}
