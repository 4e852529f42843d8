package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses by endpoint unless the
// handler already did.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/next-metro":
		// Arrivals depend on the wall clock.
		return "no-store"

	case path == "/health" || path == "/ready" || path == "/db-health" || path == "/metrics":
		return "no-cache"

	case path == "/last-metro":
		return "public, max-age=300"

	case path == "/stations":
		return "public, max-age=300"

	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}
