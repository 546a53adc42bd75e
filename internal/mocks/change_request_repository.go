package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

type ChangeRequestRepository struct {
	mock.Mock
}

func (m *ChangeRequestRepository) Create(ctx context.Context, req *domain.ChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *ChangeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeRequest), args.Error(1)
}

func (m *ChangeRequestRepository) List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]domain.ChangeRequest), args.Get(1).(int64), args.Error(2)
}

func (m *ChangeRequestRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).([]domain.ChangeRequest), args.Get(1).(int64), args.Error(2)
}

func (m *ChangeRequestRepository) UpdateStatus(ctx context.Context, req *domain.ChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *ChangeRequestRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ChangeRequestRepository) WithTx(tx *sqlx.Tx) repository.ChangeRequestRepository {
	return m
}
