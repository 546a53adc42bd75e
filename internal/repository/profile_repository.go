package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sbir-marketplace/internal/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT id, email, full_name, role, created_at FROM profiles WHERE id = $1`

	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	var profiles []domain.Profile
	query := `SELECT id, email, full_name, role, created_at FROM profiles WHERE role = $1 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &profiles, query, role)
	return profiles, err
}
