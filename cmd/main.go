package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"

	"github.com/narasimharaokandula8/qr-vehicle-docs/config"
	"github.com/narasimharaokandula8/qr-vehicle-docs/db"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/audit"
	authhandler "github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/handler"
	authrepo "github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/repository/postgres"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/service"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/middleware"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/obs"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/ratelimit"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/risk"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/scan"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/vault"
	vehiclehandler "github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/handler"
	vehiclerepo "github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/repository/postgres"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0750); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	fileVault, err := vault.New(cfg.VaultKey)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}
	if !fileVault.Enabled() {
		log.Printf("warn: running without file encryption")
	}

	// Audit sinks: postgres always, AMQP fan-out when a broker is configured.
	sinks := []audit.Sink{audit.NewPostgresStore(pool)}
	if cfg.AMQPURL != "" {
		amqpSink, err := audit.NewAMQPSink(cfg.AMQPURL)
		if err != nil {
			log.Printf("warn: AMQP sink unavailable, continuing without it: %v", err)
		} else {
			defer amqpSink.Close()
			sinks = append(sinks, amqpSink)
		}
	}
	pipeline := audit.NewPipeline(cfg.AuditBufferSize, sinks...)
	defer pipeline.Close()

	obs.Init()
	obs.RegisterAuditDropped(func() float64 { return float64(pipeline.Dropped()) })

	limiter := ratelimit.NewStore()
	limiter.Start(time.Minute)
	defer limiter.Stop()

	scanStore := scan.NewPostgresStore(pool)
	var velocity scan.VelocityCounter = scan.NewStoreVelocity(scanStore)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis unavailable, falling back to store-backed velocity: %v", err)
		} else {
			defer rdb.Close()
			velocity = scan.NewRedisVelocity(rdb)
		}
	}
	scanService := scan.NewService(scanStore, velocity, risk.NewScorer(cfg.Risk), cfg)

	userRepo := authrepo.NewPostgresRepository(pool)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AccessExpiryMin)
	userService := service.NewUserService(userRepo, tokenService, cfg)
	authHandler := authhandler.NewAuthHandler(userService)

	vehicleRepo := vehiclerepo.NewPostgresRepository(pool)
	documentHandler := vehiclehandler.NewDocumentHandler(vehicleRepo, userRepo, scanService, fileVault, cfg.UploadDir)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(cors.New())
	app.Use(middleware.SecurityHeaders(cfg.Env == "production"))
	app.Use(middleware.DeviceFingerprint())
	app.Use(obs.Instrument())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", obs.Handler())

	rateLimit := middleware.RateLimit(limiter, cfg.RateLimitMax, time.Duration(cfg.RateLimitWindowMs)*time.Millisecond)
	authAudit := func(action string) fiber.Handler {
		return middleware.Audit(pipeline, action, audit.CategoryAuth)
	}
	authhandler.RegisterRoutes(app, authHandler, rateLimit, authAudit)

	gate := middleware.AuthGate(tokenService, userRepo, cfg)
	vehiclehandler.RegisterRoutes(app, documentHandler, gate, pipeline)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
