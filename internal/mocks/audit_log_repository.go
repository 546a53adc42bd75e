package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.AuditLogWithAdmin, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogWithAdmin), args.Error(1)
}

func (m *AuditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLogWithAdmin, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.AuditLogWithAdmin), args.Get(1).(int64), args.Error(2)
}

func (m *AuditLogRepository) LastCreatedAt(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *AuditLogRepository) WithTx(tx *sqlx.Tx) repository.AuditLogRepository {
	return m
}
