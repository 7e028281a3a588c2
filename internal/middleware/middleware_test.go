package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/config"
	"github.com/octobees/rentroom/api/internal/notify"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(log)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	entries := logs.FilterField(zap.String("request_id", "rid-123")).All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected one info entry for rid-123, got %v", logs.All())
	}

	// errors are propagated and logged at error level
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(log)(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	entries = logs.FilterField(zap.String("request_id", "rid-456")).All()
	if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error entry for rid-456, got %v", logs.All())
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	mw := RateLimit(cfg, ByIP)

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	call := func(mw echo.MiddlewareFunc, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		_ = mw(next)(e.NewContext(req, rec))
		return rec
	}

	if rec := call(mw, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	rec := call(mw, "10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), "Too Many Attempts.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// a different client has its own bucket
	if rec := call(mw, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rec.Code)
	}

	// zero config behaves as passthrough
	disabled := RateLimit(config.RateLimitConfig{}, ByIP)
	for i := 0; i < 3; i++ {
		if rec := call(disabled, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("expected passthrough when limiter disabled")
		}
	}
	if nextCalls != 5 {
		t.Fatalf("expected 5 handler calls, got %d", nextCalls)
	}
}

func TestKeyedLimiter_SweepsIdleVisitors(t *testing.T) {
	l := newKeyedLimiter(config.RateLimitConfig{Requests: 1, Interval: time.Second})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if ok, _ := l.allow("a"); !ok {
		t.Fatalf("expected first request to pass")
	}
	now = now.Add(limiterIdleTTL + time.Minute)
	if ok, _ := l.allow("b"); !ok {
		t.Fatalf("expected request for new key to pass")
	}
	if _, ok := l.visitors["a"]; ok {
		t.Fatalf("expected idle visitor to be swept")
	}
}

func TestByIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:80"
	c := e.NewContext(req, httptest.NewRecorder())

	if key := ByIdentity(c); key != "ip:10.0.0.9" {
		t.Fatalf("expected ip fallback, got %s", key)
	}
	c.Set(ContextKeyIdentity, auth.Identity{Subject: "user-7"})
	if key := ByIdentity(c); key != "user:user-7" {
		t.Fatalf("expected identity key, got %s", key)
	}
}

func TestRequirePermission(t *testing.T) {
	e := echo.New()
	mw := RequirePermission("manage_rooms")

	t.Run("missing identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing permission", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyIdentity, auth.Identity{Subject: "u", Permissions: []string{"view_reports"}})

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyIdentity, auth.Identity{Subject: "u", Permissions: []string{"manage_rooms"}})

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			if notify.RequestIDFrom(c.Request().Context()) != "incoming" {
				t.Fatalf("expected request id on the request context")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})

	t.Run("replace unusable header", func(t *testing.T) {
		for _, incoming := range []string{"has space", strings.Repeat("a", maxRequestIDLen+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", incoming)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := handler(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := rec.Header().Get("X-Request-ID")
			if got == "" || got == incoming {
				t.Fatalf("expected a generated id for %q, got %q", incoming, got)
			}
		}
	})
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/rooms/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/api/rooms/1", "/api/rooms/2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `rentroom_http_requests_total{method="GET",route="/api/rooms/:id",status="200"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected exposition to contain %q, got:\n%s", want, rec.Body.String())
	}
}
