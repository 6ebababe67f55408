package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// requestContext copies the client IP and User-Agent into the request
// context, where the engine reads them for throttling and audit.
func requestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			ctx := goAccount.WithClientIP(r.Context(), c.RealIP())
			ctx = goAccount.WithUserAgent(ctx, r.UserAgent())
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/healthz"
		},
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = logger.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter is a per-client token bucket. Idle entries are swept on
// access rather than by a background goroutine.
type ipRateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*ipEntry
	rate      rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		entries: make(map[string]*ipEntry),
		rate:    r,
		burst:   burst,
		idle:    5 * time.Minute,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	if e, ok := l.entries[ip]; ok {
		e.lastSeen = now
		return e.limiter
	}
	e := &ipEntry{limiter: rate.NewLimiter(l.rate, l.burst), lastSeen: now}
	l.entries[ip] = e
	return e.limiter
}

func (l *ipRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.get(c.RealIP()).Allow() {
				retryAfter := max(int(1.0/float64(l.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
