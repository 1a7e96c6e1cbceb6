package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"walldecor-admin/internal/app"
	"walldecor-admin/internal/config"
	"walldecor-admin/internal/handler"
	"walldecor-admin/internal/repository"
	"walldecor-admin/internal/service"
	"walldecor-admin/internal/ws"
	"walldecor-admin/pkg/jwt"
	"walldecor-admin/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config & Logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup WebSocket Hub (+ Redis relay kalau multi-instance)
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	var notifier repository.Notifier = wsHub
	var relay *ws.RedisRelay
	if cfg.Redis.Enabled {
		relay, err = ws.NewRedisRelay(ctx, ws.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, wsHub, ws.WithRelayChannel(cfg.Redis.Channel), ws.WithRelayLogger(zlog))
		if err != nil {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("Redis relay stopped", zap.Error(err))
			}
		}()
		notifier = relay
	}

	// 3. Setup Storage Backend
	backend, err := app.OpenBackend(ctx, cfg, notifier, zlog)
	if err != nil {
		zlog.Fatal("Failed to open backend", zap.String("backend", cfg.Backend.Kind), zap.Error(err))
	}
	zlog.Info("Backend ready", zap.String("backend", cfg.Backend.Kind))

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	authService := service.NewAuthService(backend.Repo, backend.Credentials, tokens, zlog)
	services := handler.Services{
		Auth:      authService,
		Inventory: service.NewInventoryService(backend.Repo, zlog),
		Trading:   service.NewTradingService(backend.Repo, zlog),
		Staff:     service.NewStaffService(backend.Repo, zlog),
		Finance: service.NewFinanceService(backend.Repo, service.FinanceConfig{
			Location:          cfg.Location(),
			DefaultMonths:     cfg.Analytics.DefaultMonths,
			LowStockThreshold: decimal.NewFromInt(int64(cfg.Analytics.LowStockThreshold)),
		}, zlog),
	}

	// 5. Seed login untuk karyawan bawaan
	if backend.Seeded {
		if err := authService.SeedAccounts(ctx, service.DefaultAccounts); err != nil {
			zlog.Warn("Failed to seed default accounts", zap.Error(err))
		}
	}

	// 6. Setup Fiber
	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	// Middleware
	fiberApp.Use(requestid.New())
	fiberApp.Use(logger.FiberMiddleware(zlog)) // Logging request
	fiberApp.Use(recover.New())                // Panic recovery
	fiberApp.Use(cors.New())                   // CORS

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": cfg.Backend.Kind,
			"meta":    backend.Repo.Meta(),
			"clients": wsHub.ClientCount(),
		})
	})

	// 7. Routes
	handler.RegisterRoutes(fiberApp.Group("/api/v1"), services)

	// WebSocket Route
	fiberApp.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	fiberApp.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		if err := fiberApp.Listen(":" + cfg.App.Port); err != nil {
			zlog.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server...")

	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()
	if relay != nil {
		if err := relay.Close(); err != nil {
			zlog.Warn("Failed to close Redis relay", zap.Error(err))
		}
	}
	if err := backend.Close(); err != nil {
		zlog.Warn("Failed to close backend", zap.Error(err))
	}

	zlog.Info("Server exited")
}
