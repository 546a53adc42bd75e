package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sbir-marketplace/internal/domain"
)

// AuditLogRepository is append-only: there is no update or delete.
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.AuditLogWithAdmin, error)
	List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLogWithAdmin, int64, error)
	LastCreatedAt(ctx context.Context) (*time.Time, error)
	WithTx(tx *sqlx.Tx) AuditLogRepository
}

type auditLogRepository struct {
	db DBTX
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) WithTx(tx *sqlx.Tx) AuditLogRepository {
	return &auditLogRepository{db: tx}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO admin_audit_logs (id, listing_id, listing_title, listing_agency, admin_id,
			action_type, user_notes, internal_notes, notification_sent, changes_made)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.ListingID, log.ListingTitle, log.ListingAgency, log.AdminID,
		log.ActionType, log.UserNotes, log.InternalNotes, log.NotificationSent, log.ChangesMade,
	).Scan(&log.CreatedAt)
}

const auditWithAdminSelect = `
		SELECT
			al.id, al.listing_id, al.listing_title, al.listing_agency, al.admin_id,
			al.action_type, al.user_notes, al.internal_notes, al.notification_sent,
			al.changes_made, al.created_at,
			p.full_name AS admin_name,
			p.email AS admin_email
		FROM admin_audit_logs al
		LEFT JOIN profiles p ON al.admin_id = p.id`

func (r *auditLogRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.AuditLogWithAdmin, error) {
	query := auditWithAdminSelect + `
		WHERE al.listing_id = $1
		ORDER BY al.created_at DESC`

	logs := []domain.AuditLogWithAdmin{}
	if err := r.db.SelectContext(ctx, &logs, query, listingID); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLogWithAdmin, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_audit_logs`); err != nil {
		return nil, 0, err
	}

	query := auditWithAdminSelect + `
		ORDER BY al.created_at DESC
		LIMIT $1 OFFSET $2`

	var logs []domain.AuditLogWithAdmin
	err := r.db.SelectContext(ctx, &logs, query, params.PageSize, params.Offset())
	return logs, total, err
}

func (r *auditLogRepository) LastCreatedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := r.db.GetContext(ctx, &last, `SELECT MAX(created_at) FROM admin_audit_logs`)
	return last, err
}
