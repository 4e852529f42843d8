package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one line per request, "METHOD URL -> status (ms)",
// with the same facts as structured attributes.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		url := c.OriginalURL()

		err := c.Next()

		// Errors escaping the chain are rendered by the app error handler after
		// this returns, so derive the status they will get.
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		latency := time.Since(start)

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Int64("duration_ms", latency.Milliseconds()),
			slog.Int("bytes_out", len(c.Response().Body())),
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		msg := fmt.Sprintf("%s %s -> %d (%dms)", method, url, status, latency.Milliseconds())
		LoggerFromCtx(c.UserContext()).LogAttrs(c.UserContext(), level, msg, attrs...)

		return err
	}
}
