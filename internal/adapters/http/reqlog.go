package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	loggerKey    ctxKey = "logger"
)

// RequestIDLogMiddleware builds a per-request *slog.Logger carrying the Fiber
// request ID and stores it, with the ID, in the user context.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ridStr, _ := c.Locals("requestid").(string)
		if ridStr == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", ridStr)

		ctx := context.WithValue(c.UserContext(), requestIDKey, ridStr)
		ctx = context.WithValue(ctx, loggerKey, reqLogger)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// RequestIDFromCtx returns the request ID stored by RequestIDLogMiddleware, if any.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
