package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
)

type ListingRepository struct {
	mock.Mock
}

func (m *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *ListingRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL *string) error {
	args := m.Called(ctx, id, photoURL)
	return args.Error(0)
}

func (m *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *ListingRepository) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ListingStatus]int64), args.Error(1)
}

// WithTx returns the mock itself so expectations hold inside transactions.
func (m *ListingRepository) WithTx(tx *sqlx.Tx) repository.ListingRepository {
	return m
}
