package audit

import (
	"context"

	"github.com/google/uuid"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

type Service interface {
	// History returns every audit entry for a listing, newest first. A listing
	// without entries yields an empty slice.
	History(ctx context.Context, listingID uuid.UUID) ([]domain.AuditLogWithAdmin, error)
	GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLogWithAdmin, error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{
		auditRepo: auditRepo,
	}
}

func (s *service) History(ctx context.Context, listingID uuid.UUID) ([]domain.AuditLogWithAdmin, error) {
	logs, err := s.auditRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.AuditLogWithAdmin{}
	}
	return logs, nil
}

func (s *service) GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLogWithAdmin, error) {
	params := domain.PaginationParams{
		Page:     1,
		PageSize: limit,
	}

	logs, _, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.AuditLogWithAdmin{}
	}
	return logs, nil
}
