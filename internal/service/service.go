package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/audit"
	"sbir-marketplace/internal/service/auth"
	"sbir-marketplace/internal/service/changerequest"
	"sbir-marketplace/internal/service/dashboard"
	"sbir-marketplace/internal/service/email"
	"sbir-marketplace/internal/service/listing"
	"sbir-marketplace/internal/service/moderation"
	"sbir-marketplace/internal/service/notification"
	"sbir-marketplace/internal/service/storage"
)

type Services struct {
	Auth          auth.Service
	Listing       listing.Service
	Moderation    moderation.Service
	Audit         audit.Service
	ChangeRequest changerequest.Service
	Dashboard     dashboard.Service
	Storage       storage.Service
	Email         email.Service
	Notification  notification.Service
}

func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	objectStore storage.ObjectStore,
	validate *validator.Validate,
	cfg *config.Config,
	logger zerolog.Logger,
) *Services {
	emailService := email.NewService(cfg, logger)
	notificationService := notification.NewService(repos.Profile, emailService, logger)
	authService := auth.NewService(repos.Profile, cfg)
	auditService := audit.NewService(repos.AuditLog)
	storageService := storage.NewService(objectStore, cfg, logger)
	dashboardService := dashboard.NewService(repos.Listing, repos.ChangeRequest, repos.AuditLog, redis, cfg.DashboardCacheTTL, logger)
	listingService := listing.NewService(repos.Listing, storageService, dashboardService, validate, logger)

	moderationService := moderation.NewService(
		repos.Listing,
		repos.AuditLog,
		repos.Tx,
		dashboardService,
		validate,
		logger,
		moderation.Options{StrictAudit: cfg.StrictAudit},
	)
	moderationService.SetNotificationService(notificationService)

	changeRequestService := changerequest.NewService(
		repos.ChangeRequest,
		repos.Listing,
		repos.Profile,
		moderationService,
		storageService,
		dashboardService,
		validate,
		logger,
	)
	changeRequestService.SetNotificationService(notificationService)

	return &Services{
		Auth:          authService,
		Listing:       listingService,
		Moderation:    moderationService,
		Audit:         auditService,
		ChangeRequest: changeRequestService,
		Dashboard:     dashboardService,
		Storage:       storageService,
		Email:         emailService,
		Notification:  notificationService,
	}
}
