package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

const cacheKey = "admin:stats"

type Stats struct {
	ListingsByStatus      map[domain.ListingStatus]int64 `json:"listings_by_status"`
	TotalListings         int64                          `json:"total_listings"`
	PendingListings       int64                          `json:"pending_listings"`
	PendingChangeRequests int64                          `json:"pending_change_requests"`
	LastModerationAt      *time.Time                     `json:"last_moderation_at"`
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
	// Invalidate drops the cached stats so the next read recomputes them.
	Invalidate(ctx context.Context)
}

type service struct {
	listingRepo repository.ListingRepository
	crRepo      repository.ChangeRequestRepository
	auditRepo   repository.AuditLogRepository
	redis       *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

func NewService(
	listingRepo repository.ListingRepository,
	crRepo repository.ChangeRequestRepository,
	auditRepo repository.AuditLogRepository,
	redis *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &service{
		listingRepo: listingRepo,
		crRepo:      crRepo,
		auditRepo:   auditRepo,
		redis:       redis,
		ttl:         ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	byStatus, err := s.listingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	pendingCRs, err := s.crRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	lastModeration, err := s.auditRepo.LastCreatedAt(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ListingsByStatus:      make(map[domain.ListingStatus]int64, len(byStatus)),
		PendingListings:       byStatus[domain.ListingPending],
		PendingChangeRequests: pendingCRs,
		LastModerationAt:      lastModeration,
	}
	for status, count := range byStatus {
		stats.ListingsByStatus[status] = count
		stats.TotalListings += count
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, statsJSON, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache dashboard stats")
			}
		}
	}

	return stats, nil
}

func (s *service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard stats")
	}
}
