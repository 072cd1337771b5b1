package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/facesense/internal/observability"
)

// RequestLogger attaches a request-scoped logging context (with a generated
// request ID) and logs request completion with duration and status.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := observability.NewRequestContext(logger, c.Request().Method+" "+c.Path())
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			attrs := []slog.Attr{
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
				slog.Int("status", c.Response().Status),
			}
			if err != nil {
				reqCtx.Error("request failed", err, attrs...)
			} else {
				reqCtx.Info("request completed", attrs...)
			}
			return err
		}
	}
}
