package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler is the liveness check.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// DBHealthHandler reports whether the station store answers.
func DBHealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		if deps.DB == nil {
			return newError(c, fiber.StatusInternalServerError, "database unavailable")
		}
		if err := deps.DB.Ping(ctx); err != nil {
			LoggerFromCtx(ctx).Error("database ping failed", "error", err)
			return newError(c, fiber.StatusInternalServerError, "database unavailable")
		}
		return c.JSON(fiber.Map{"db": "ok"})
	}
}

// ReadyHandler checks database, NATS and cache connectivity.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Database is required.
		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "not configured"
			allOK = false
		}

		// NATS and the cache are optional; only a configured but failing one is fatal.
		if deps.Alerts != nil {
			if deps.Alerts.Connected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
