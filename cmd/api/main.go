// @title EzQuiz API
// @version 1.0
// @description Import plain-text exam documents and take them as quizzes.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ezquiz/internal/adapter"
	"ezquiz/internal/adapter/explainer"
	"ezquiz/internal/cache"
	"ezquiz/internal/config"
	"ezquiz/internal/database"
	"ezquiz/internal/domain"
	"ezquiz/internal/handler"
	"ezquiz/internal/logger"
	"ezquiz/internal/middleware"
	"ezquiz/internal/parser"
	"ezquiz/internal/repository"
	"ezquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	driver := database.Driver(cfg.DB.Driver)
	db, err := database.Open(ctx, driver, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(ctx, db, driver, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	quizRepository := repository.NewQuizDatabaseAdapter(db)

	quizParser, err := parser.NewFromConfig(cfg.Parser, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create parser", zap.Error(err))
	}

	// Without Redis, explanations are cached in process memory.
	var cacheAdapter domain.Cache
	switch {
	case cfg.Redis.Address != "":
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	case cfg.Redis.LocalCapacity > 0:
		memoryCache, err := adapter.NewMemoryCacheAdapter(cfg.Redis.LocalCapacity)
		if err != nil {
			appLogger.Fatal("Failed to create memory cache", zap.Error(err))
		}
		defer memoryCache.Close()
		cacheAdapter = memoryCache
		appLogger.Info("Using in-memory explanation cache", zap.Int("capacity", cfg.Redis.LocalCapacity))
	default:
		appLogger.Info("Explanation cache disabled")
	}

	var answerExplainer domain.AnswerExplainer
	model, err := explainer.NewModel(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	if model != nil {
		answerExplainer = explainer.NewLLMExplainer(model, cfg.LLM.Timeout, cfg.LLM.FallbackText, appLogger)
		appLogger.Info("Answer explainer initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	} else {
		appLogger.Info("No LLM provider configured, explanations disabled")
	}

	quizService := service.NewQuizService(quizRepository, quizParser, answerExplainer, cacheAdapter, cfg)
	quizHandler := handler.NewQuizHandler(quizService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	apiGroup := app.Group("/api")
	quizHandler.RegisterRoutes(apiGroup)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
