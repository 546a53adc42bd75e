package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sbir-marketplace/internal/domain"
)

const changeRequestColumns = `id, listing_id, listing_title, listing_agency, user_id, request_type,
	requested_changes, reason, status, processed_by, processed_at, admin_notes, admin_notes_user,
	created_at, updated_at`

type ChangeRequestRepository interface {
	Create(ctx context.Context, req *domain.ChangeRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error)
	List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
	// UpdateStatus moves a pending request to a terminal status. It returns
	// domain.ErrChangeRequestProcessed when the row is no longer pending.
	UpdateStatus(ctx context.Context, req *domain.ChangeRequest) error
	CountPending(ctx context.Context) (int64, error)
	WithTx(tx *sqlx.Tx) ChangeRequestRepository
}

type changeRequestRepository struct {
	db DBTX
}

func NewChangeRequestRepository(db *sqlx.DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

func (r *changeRequestRepository) WithTx(tx *sqlx.Tx) ChangeRequestRepository {
	return &changeRequestRepository{db: tx}
}

func (r *changeRequestRepository) Create(ctx context.Context, req *domain.ChangeRequest) error {
	query := `
		INSERT INTO listing_change_requests (id, listing_id, listing_title, listing_agency, user_id,
			request_type, requested_changes, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.ListingID, req.ListingTitle, req.ListingAgency, req.UserID,
		req.RequestType, req.RequestedChanges, req.Reason, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error) {
	var req domain.ChangeRequest
	query := `SELECT ` + changeRequestColumns + ` FROM listing_change_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *changeRequestRepository) List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	params.Validate()

	var total int64
	var requests []domain.ChangeRequest

	if status != nil {
		countQuery := `SELECT COUNT(*) FROM listing_change_requests WHERE status = $1`
		if err := r.db.GetContext(ctx, &total, countQuery, *status); err != nil {
			return nil, 0, err
		}

		query := `SELECT ` + changeRequestColumns + ` FROM listing_change_requests
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &requests, query, *status, params.PageSize, params.Offset())
		return requests, total, err
	}

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listing_change_requests`); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + changeRequestColumns + ` FROM listing_change_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &requests, query, params.PageSize, params.Offset())
	return requests, total, err
}

func (r *changeRequestRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM listing_change_requests WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + changeRequestColumns + ` FROM listing_change_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var requests []domain.ChangeRequest
	err := r.db.SelectContext(ctx, &requests, query, userID, params.PageSize, params.Offset())
	return requests, total, err
}

func (r *changeRequestRepository) UpdateStatus(ctx context.Context, req *domain.ChangeRequest) error {
	query := `
		UPDATE listing_change_requests
		SET status = $2, processed_by = $3, processed_at = $4, admin_notes = $5,
			admin_notes_user = $6, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID, req.Status, req.ProcessedBy, req.ProcessedAt, req.AdminNotes, req.AdminNotesUser,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrChangeRequestProcessed
	}
	return err
}

func (r *changeRequestRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listing_change_requests WHERE status = 'pending'`)
	return count, err
}
