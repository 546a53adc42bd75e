package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbir-marketplace/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestTxManager_WithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM sbir_listings`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewTxManager(db).WithTransaction(ctx, func(tx *sqlx.Tx) error {
			return NewListingRepository(db).WithTx(tx).Delete(ctx, uuid.New())
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := NewTxManager(db).WithTransaction(ctx, func(tx *sqlx.Tx) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on panic", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = NewTxManager(db).WithTransaction(ctx, func(tx *sqlx.Tx) error {
				panic("unexpected")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTxManager_WithSavepoint(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^SAVEPOINT audit_entry$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO admin_audit_logs`).WillReturnError(errors.New("violates check constraint"))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT audit_entry$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	manager := NewTxManager(db)
	var savepointErr error
	err := manager.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		savepointErr = manager.WithSavepoint(ctx, tx, "audit_entry", func() error {
			entry := domain.NewAuditLog(&domain.Listing{ID: uuid.New(), Title: "t"}, uuid.New(), domain.AuditEdit)
			return NewAuditLogRepository(db).WithTx(tx).Create(ctx, entry)
		})
		return nil
	})

	require.NoError(t, err)
	assert.ErrorContains(t, savepointErr, "violates check constraint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	now := time.Now()

	newRequest := func() *domain.ChangeRequest {
		return &domain.ChangeRequest{
			ID:          uuid.New(),
			Status:      domain.RequestApproved,
			ProcessedBy: &adminID,
			ProcessedAt: &now,
		}
	}

	t.Run("Pending row updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		req := newRequest()
		mock.ExpectQuery(`UPDATE listing_change_requests .* WHERE id = \$1 AND status = 'pending'`).
			WithArgs(req.ID, req.Status, req.ProcessedBy, req.ProcessedAt, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		err := NewChangeRequestRepository(db).UpdateStatus(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, now, req.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already decided", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`UPDATE listing_change_requests`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := NewChangeRequestRepository(db).UpdateStatus(ctx, newRequest())

		assert.ErrorIs(t, err, domain.ErrChangeRequestProcessed)
	})
}

func TestAuditLogRepository_ListByListing(t *testing.T) {
	ctx := context.Background()
	listingID := uuid.New()
	columns := []string{
		"id", "listing_id", "listing_title", "listing_agency", "admin_id",
		"action_type", "user_notes", "internal_notes", "notification_sent",
		"changes_made", "created_at", "admin_name", "admin_email",
	}

	t.Run("Empty history", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM admin_audit_logs al\s+LEFT JOIN profiles p`).
			WithArgs(listingID).
			WillReturnRows(sqlmock.NewRows(columns))

		logs, err := NewAuditLogRepository(db).ListByListing(ctx, listingID)

		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})

	t.Run("Entries decode changes", func(t *testing.T) {
		db, mock := newMockDB(t)
		adminID := uuid.New()
		created := time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`ORDER BY al.created_at DESC`).
			WithArgs(listingID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New().String(), listingID.String(), "Edge AI Radar", "Army", adminID.String(),
					"edit", nil, "typo", false,
					[]byte(`{"title":{"from":"Edge Al Radar","to":"Edge AI Radar"}}`), created, "Reviewer", "admin@example.com"))

		logs, err := NewAuditLogRepository(db).ListByListing(ctx, listingID)

		require.NoError(t, err)
		require.Len(t, logs, 1)
		entry := logs[0]
		assert.Equal(t, domain.AuditEdit, entry.ActionType)
		assert.Equal(t, listingID, *entry.ListingID)
		assert.Equal(t, "Edge AI Radar", entry.ChangesMade[domain.FieldTitle].To)
		assert.Equal(t, "Reviewer", *entry.AdminName)
		assert.Nil(t, entry.UserNotes)
	})
}

func TestListingRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("GetByID returns nil", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM sbir_listings WHERE id = \$1`).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		listing, err := NewListingRepository(db).GetByID(ctx, id)

		require.NoError(t, err)
		assert.Nil(t, listing)
	})

	t.Run("GetForUpdate locks the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FOR UPDATE$`).WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewListingRepository(db).GetForUpdate(ctx, id)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM sbir_listings`).WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewListingRepository(db).Delete(ctx, id)

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})

	t.Run("Update missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`UPDATE sbir_listings`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := NewListingRepository(db).Update(ctx, &domain.Listing{ID: id, Status: domain.ListingHidden})

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})
}

func TestListingRepository_CountByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Pending", 3).
			AddRow("Active", 12))

	counts, err := NewListingRepository(db).CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[domain.ListingPending])
	assert.Equal(t, int64(12), counts[domain.ListingActive])
}

func TestListingRepository_ListSearchIsLiteral(t *testing.T) {
	db, mock := newMockDB(t)
	pattern := `%50\%\_off\\%`

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sbir_listings WHERE \(title ILIKE \$1 ESCAPE '\\' OR description ILIKE \$1 ESCAPE '\\'\)`).
		WithArgs(pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM sbir_listings WHERE .* ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(pattern, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	filter := domain.ListingFilter{Search: `50%_off\`, PaginationParams: domain.PaginationParams{Page: 1, PageSize: 20}}
	listings, total, err := NewListingRepository(db).List(context.Background(), filter)

	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
