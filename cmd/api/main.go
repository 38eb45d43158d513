package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/api/handlers"
	"github.com/study-agent/backend/internal/cache/redis"
	"github.com/study-agent/backend/internal/ingestion"
	"github.com/study-agent/backend/internal/llm"
	"github.com/study-agent/backend/internal/metrics"
	"github.com/study-agent/backend/internal/middleware/ratelimit"
	"github.com/study-agent/backend/internal/middleware/security"
	"github.com/study-agent/backend/internal/middleware/validation"
	"github.com/study-agent/backend/internal/session"
	"github.com/study-agent/backend/internal/storage/sqlite"
	"github.com/study-agent/backend/pkg/config"
	appLogger "github.com/study-agent/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Study Agent API Server")

	metrics.Init()

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache session.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cache = redisClient
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	processor := ingestion.NewProcessor(db)
	sessions := session.NewManager()
	controller := session.NewController(processor, db, llmClient, cache, sessions)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{
		MaxUploadSize: cfg.Upload.MaxFileSize,
		Logger:        appLogger.GetLogger(),
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Upload.RateLimitPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	sessionHandler := handlers.NewSessionHandler(controller)
	documentHandler := handlers.NewDocumentHandler(db)
	wsHandler := handlers.NewWebSocketHandler(controller)

	api := app.Group("/api/v1")

	api.Post("/sessions", limiter.Middleware(), sessionHandler.Open)
	api.Get("/sessions/:id", sessionHandler.Get)
	api.Post("/sessions/:id/summary", limiter.Middleware(), sessionHandler.GenerateSummary)
	api.Post("/sessions/:id/quiz", limiter.Middleware(), sessionHandler.GenerateQuiz)
	api.Post("/sessions/:id/answers", sessionHandler.RecordAnswer)
	api.Post("/sessions/:id/submit", sessionHandler.Submit)
	api.Post("/sessions/:id/reset", sessionHandler.Reset)

	api.Get("/documents", documentHandler.List)
	api.Get("/documents/:id", documentHandler.Get)
	api.Get("/documents/:id/attempts", documentHandler.Attempts)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/ws", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
