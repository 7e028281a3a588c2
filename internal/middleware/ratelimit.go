package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/rentroom/api/internal/config"
	"github.com/octobees/rentroom/api/internal/response"
)

// KeyFunc picks the bucket a request is charged against.
type KeyFunc func(c echo.Context) string

// ByIP charges requests against the client address.
func ByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// ByIdentity charges authenticated requests against the caller and falls back to ByIP.
func ByIdentity(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok && id.Subject != "" {
		return "user:" + id.Subject
	}
	return ByIP(c)
}

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type keyedLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiter(cfg config.RateLimitConfig) *keyedLimiter {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return &keyedLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(perRequest),
		burst:    cfg.Requests,
		now:      time.Now,
	}
}

func (l *keyedLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimit applies a token bucket per key. A zero config disables limiting.
func RateLimit(cfg config.RateLimitConfig, key KeyFunc) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	if key == nil {
		key = ByIP
	}

	limiter := newKeyedLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter := limiter.allow(key(c))
			if !allowed {
				seconds := int(retryAfter.Round(time.Second) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				return response.Fail(c, http.StatusTooManyRequests, response.MessageTooMany)
			}
			return next(c)
		}
	}
}
