package main

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"articleapi/docs"
	"articleapi/internal/config"
	handlers "articleapi/internal/http/handler"
	"articleapi/internal/http/middleware"
	"articleapi/internal/notify"
	"articleapi/internal/otel"
	"articleapi/internal/repository/fsdb"
	"articleapi/internal/service"
	"articleapi/internal/storage"
)

// @title Article API
// @version 1.0
// @description Single-author article store with attachments and live change notifications.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}

	shutdownTracing, err := otel.Init(context.Background(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}
	defer shutdownTracing(context.Background())

	// Content store: local disk by default, S3-compatible object storage
	// when configured.
	var content storage.ContentStore
	switch cfg.Store.Backend {
	case "s3":
		content, err = storage.NewMinIO(cfg.MinIO)
	default:
		content, err = storage.NewFS(cfg.Store.ContentDir, log)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to initialize content store")
	}

	repo, err := fsdb.NewArticleFS(cfg.Store.DataDir, content, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize article repository")
	}

	hub := notify.NewHub(cfg.Events.BufferSize, log)
	store := service.NewStoreService(repo, content, hub)

	reg := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, store, reg, time.Duration(cfg.Events.KeepAliveSec)*time.Second)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
