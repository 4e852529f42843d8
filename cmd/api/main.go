package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/derniermetro/internal/adapters/http"
	natsadapter "github.com/samirrijal/derniermetro/internal/adapters/nats"
	"github.com/samirrijal/derniermetro/internal/adapters/postgres"
	"github.com/samirrijal/derniermetro/internal/adapters/sqlite"
	"github.com/samirrijal/derniermetro/internal/adapters/valkey"
	"github.com/samirrijal/derniermetro/internal/core/ports"
	"github.com/samirrijal/derniermetro/internal/core/usecases"
	"github.com/samirrijal/derniermetro/internal/pkg/config"
	"github.com/samirrijal/derniermetro/internal/pkg/logging"
	"github.com/samirrijal/derniermetro/internal/pkg/telemetry"
)

const serviceName = "derniermetro-api"

// store is the subset of a database adapter the API needs.
type store struct {
	stations   ports.StationRepository
	departures ports.LastDepartureRepository
	db         http.Pinger
	close      func()
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{
			stations:   sqlite.NewStationRepo(db),
			departures: sqlite.NewLastDepartureRepo(db),
			db:         db,
			close:      func() { _ = db.Close() },
		}, nil
	default:
		db, err := postgres.New(ctx, cfg.DSN(), cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		go db.ReportPoolStats(ctx, 15*time.Second)
		return &store{
			stations:   postgres.NewStationRepo(db),
			departures: postgres.NewLastDepartureRepo(db),
			db:         db,
			close:      db.Close,
		}, nil
	}
}

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, serviceName)

	window, err := cfg.Window()
	if err != nil {
		log.Fatalf("service window: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	deps := &http.Dependencies{DB: st.db}

	// Cache
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, station cache disabled", "error", err)
	} else {
		defer c.Close()
		cache = c
		deps.Cache = c
	}

	// NATS
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, last-train alerts disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.Alerts = natsadapter.NewSubscriber(pub.Conn(), pub.JetStream())
	}

	// Use cases
	deps.Stations = usecases.NewStationService(st.stations, cache)
	deps.Metro = usecases.NewMetroService(deps.Stations, st.departures, publisher, window)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Dernier Metro API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps, http.DefaultRouterConfig)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting",
			"addr", addr,
			"driver", cfg.Database.Driver,
			"service_end", window.End.String(),
			"last_window_start", window.LastWindowStart.String(),
			"timezone", window.Timezone,
		)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
