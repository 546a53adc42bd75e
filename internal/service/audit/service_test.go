package audit_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/mocks"
	"sbir-marketplace/internal/service/audit"
)

func TestAuditService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("No entries yields empty slice", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		listingID := uuid.New()
		repo.On("ListByListing", ctx, listingID).Return(nil, nil).Once()

		logs, err := audit.NewService(repo).History(ctx, listingID)

		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})

	t.Run("Entries returned as stored", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		listingID := uuid.New()
		entries := []domain.AuditLogWithAdmin{
			{AuditLog: domain.AuditLog{ID: uuid.New(), ActionType: domain.AuditEdit}},
			{AuditLog: domain.AuditLog{ID: uuid.New(), ActionType: domain.AuditApproval}},
		}
		repo.On("ListByListing", ctx, listingID).Return(entries, nil).Once()

		logs, err := audit.NewService(repo).History(ctx, listingID)

		require.NoError(t, err)
		assert.Equal(t, entries, logs)
	})
}

func TestAuditService_GetRecentActivities(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.AuditLogRepository)
	repo.On("List", ctx, domain.PaginationParams{Page: 1, PageSize: 5}).Return(nil, int64(0), nil).Once()

	logs, err := audit.NewService(repo).GetRecentActivities(ctx, 5)

	require.NoError(t, err)
	assert.Empty(t, logs)
	repo.AssertExpectations(t)
}
