package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
)

type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *ProfileRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.Profile), args.Error(1)
}
