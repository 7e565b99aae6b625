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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benfen/radarmap/internal/adapters/http"
	natsadapter "github.com/benfen/radarmap/internal/adapters/nats"
	"github.com/benfen/radarmap/internal/adapters/postgres"
	"github.com/benfen/radarmap/internal/adapters/valkey"
	"github.com/benfen/radarmap/internal/core/ports"
	"github.com/benfen/radarmap/internal/core/usecases"
	"github.com/benfen/radarmap/internal/pkg/config"
	"github.com/benfen/radarmap/internal/pkg/logging"
	"github.com/benfen/radarmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("radarmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

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
	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos and services. Interfaces stay nil when an optional backend
	// failed to connect.
	overlayRepo := postgres.NewOverlayRepo(db)

	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	overlaySvc := usecases.NewOverlayService(overlayRepo, cacheSvc, publisher)
	renderSvc := usecases.NewRenderService(overlaySvc, cacheSvc, cfg.Render.DefaultTolerance, cfg.Render.CacheTTL)

	// Durable consumer dropping cached overlays mutated by other instances.
	if cache != nil {
		subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer subscriber.Close()
			if err := overlaySvc.SubscribeInvalidations(ctx, subscriber); err != nil {
				slog.Warn("cache invalidation subscribe failed", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Overlays: overlaySvc,
		Renders:  renderSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "RadarMap API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
