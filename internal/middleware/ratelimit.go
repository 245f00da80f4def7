package middleware

import (
	"OracleAgent/internal/service/ratelimit"
	xhttp "OracleAgent/pkg/http"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects requests with 429 once the caller's IP bucket is empty.
func RateLimit(l *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l != nil && !l.Allow(c.RealIP()) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded, retry later"))
			}
			return next(c)
		}
	}
}
