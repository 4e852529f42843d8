package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

const requestTimeout = 5 * time.Second

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	// RateLimit is the number of requests per minute allowed per IP. Zero disables limiting.
	RateLimit int
}

// DefaultRouterConfig is used by the API server.
var DefaultRouterConfig = RouterConfig{RateLimit: 120}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes, then the 404 catch-all.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID, then a request-scoped logger, then the access log that uses it.
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness
	app.Get("/health", HealthHandler())
	app.Get("/db-health", DBHealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	app.Get("/next-metro", timeout.NewWithContext(NextMetroHandler(deps), requestTimeout))
	app.Get("/last-metro", timeout.NewWithContext(LastMetroHandler(deps), requestTimeout))
	app.Get("/stations", timeout.NewWithContext(ListStationsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	if deps.Alerts != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.Alerts)))
	}

	app.Use(NotFoundHandler)
}
