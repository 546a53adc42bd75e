package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/handler"
	"sbir-marketplace/internal/middleware"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service"
	"sbir-marketplace/internal/service/auth"
	"sbir-marketplace/internal/service/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	appLogger := config.NewLogger(cfg)

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redis.Close()

	var objectStore storage.ObjectStore
	minioClient, err := config.NewMinIOClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn().Err(err).Msg("failed to connect to minio, photo upload disabled")
	} else {
		objectStore = minioClient
	}

	appLogger.Info().Bool("strict_audit", cfg.StrictAudit).Msg("moderation audit mode")

	validate := validator.New(validator.WithRequiredStructEnabled())

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, objectStore, validate, cfg, appLogger)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		AppName:      "sbir-marketplace",
		ErrorHandler: middleware.NewErrorHandler(appLogger),
		BodyLimit:    int(cfg.MaxPhotoSize) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(middleware.CorrelationID())
	app.Use(middleware.Observability(appLogger.With().Str("component", "http").Logger()))
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	go func() {
		appLogger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, appLogger)
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	listings := v1.Group("/listings")
	listings.Get("/", h.Listing.List)
	listings.Get("/mine", middleware.AuthRequired(authService), h.Listing.ListMine)
	listings.Get("/:listingId", middleware.OptionalAuth(authService), h.Listing.Get)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Post("/listings", middleware.RequirePermission(middleware.PermSubmitListing), h.Listing.Create)
	protected.Post("/listings/:listingId/photo", middleware.RequirePermission(middleware.PermSubmitListing), h.Listing.UploadPhoto)
	protected.Post("/listings/:listingId/change-requests", middleware.RequirePermission(middleware.PermRequestChange), h.ChangeRequest.Create)
	protected.Get("/change-requests/mine", h.ChangeRequest.ListMine)

	admin := protected.Group("/admin", middleware.RequireAdmin())

	adminListings := admin.Group("/listings", middleware.RequirePermission(middleware.PermModerateListings))
	adminListings.Get("/", h.Moderation.List)
	adminListings.Post("/:listingId/approve", h.Moderation.Approve)
	adminListings.Post("/:listingId/reject", h.Moderation.Reject)
	adminListings.Put("/:listingId/status", h.Moderation.ChangeStatus)
	adminListings.Patch("/:listingId", h.Moderation.Update)
	adminListings.Get("/:listingId/audit", middleware.RequirePermission(middleware.PermViewAuditLogs), h.Audit.History)

	admin.Get("/audit/recent", middleware.RequirePermission(middleware.PermViewAuditLogs), h.Audit.GetRecentActivities)

	changeRequests := admin.Group("/change-requests", middleware.RequirePermission(middleware.PermProcessChangeRequests))
	changeRequests.Get("/", h.ChangeRequest.List)
	changeRequests.Get("/:requestId", h.ChangeRequest.Get)
	changeRequests.Post("/:requestId/approve", h.ChangeRequest.Approve)
	changeRequests.Post("/:requestId/reject", h.ChangeRequest.Reject)

	admin.Get("/stats", middleware.RequirePermission(middleware.PermViewDashboard), h.Dashboard.GetStats)
}

func waitForShutdown(app *fiber.App, appLogger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}

	appLogger.Info().Msg("server stopped")
}
