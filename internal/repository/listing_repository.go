package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sbir-marketplace/internal/domain"
)

const listingColumns = `id, user_id, title, description, agency, phase, value, deadline, category,
	status, approved_at, approved_by, photo_url, created_at, updated_at`

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	// GetForUpdate reads the row with a row lock; only meaningful inside a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error)
	CountByStatus(ctx context.Context) (map[domain.ListingStatus]int64, error)
	WithTx(tx *sqlx.Tx) ListingRepository
}

type listingRepository struct {
	db DBTX
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) WithTx(tx *sqlx.Tx) ListingRepository {
	return &listingRepository{db: tx}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO sbir_listings (id, user_id, title, description, agency, phase, value,
			deadline, category, status, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		listing.ID, listing.UserID, listing.Title, listing.Description, listing.Agency,
		listing.Phase, listing.Value, listing.Deadline, listing.Category, listing.Status,
		listing.PhotoURL,
	).Scan(&listing.CreatedAt, &listing.UpdatedAt)
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM sbir_listings WHERE id = $1`, id)
}

func (r *listingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM sbir_listings WHERE id = $1 FOR UPDATE`, id)
}

func (r *listingRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.GetContext(ctx, &listing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	query := `
		UPDATE sbir_listings
		SET title = $2, description = $3, agency = $4, phase = $5, value = $6,
			deadline = $7, category = $8, status = $9, approved_at = $10,
			approved_by = $11, photo_url = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Agency, listing.Phase,
		listing.Value, listing.Deadline, listing.Category, listing.Status,
		listing.ApprovedAt, listing.ApprovedBy, listing.PhotoURL,
	).Scan(&listing.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrListingNotFound
	}
	return err
}

func (r *listingRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL *string) error {
	query := `UPDATE sbir_listings SET photo_url = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, photoURL)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrListingNotFound)
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sbir_listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrListingNotFound)
}

// likeEscaper makes user search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *listingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	filter.Validate()

	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(*filter.Status))
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, "user_id = "+arg(*filter.OwnerID))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.Agency != "" {
		conditions = append(conditions, "agency = "+arg(filter.Agency))
	}
	if filter.Phase != "" {
		conditions = append(conditions, "phase = "+arg(filter.Phase))
	}
	if filter.Search != "" {
		p := arg("%" + likeEscaper.Replace(filter.Search) + "%")
		conditions = append(conditions, "(title ILIKE "+p+` ESCAPE '\' OR description ILIKE `+p+` ESCAPE '\')`)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sbir_listings`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + listingColumns + ` FROM sbir_listings` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(filter.PageSize) + ` OFFSET ` + arg(filter.Offset())

	var listings []domain.Listing
	err := r.db.SelectContext(ctx, &listings, query, args...)
	return listings, total, err
}

func (r *listingRepository) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int64, error) {
	var rows []struct {
		Status domain.ListingStatus `db:"status"`
		Count  int64                `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM sbir_listings GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[domain.ListingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
