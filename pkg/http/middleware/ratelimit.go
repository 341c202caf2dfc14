package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower is satisfied by ratelimit.Limiter.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests with 429 once key(c) runs out of tokens.
// onLimited, when set, is called for every rejected request.
func RateLimit(a Allower, key func(echo.Context) string, onLimited func(echo.Context)) echo.MiddlewareFunc {
	if key == nil {
		key = func(c echo.Context) string { return c.RealIP() }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a == nil || a.Allow(key(c)) {
				return next(c)
			}
			if onLimited != nil {
				onLimited(c)
			}
			c.Response().Header().Set("Retry-After", "1")
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"status":  http.StatusTooManyRequests,
				"message": http.StatusText(http.StatusTooManyRequests),
			})
		}
	}
}
