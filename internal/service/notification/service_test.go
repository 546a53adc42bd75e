package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/mocks"
	"sbir-marketplace/internal/service/email"
	"sbir-marketplace/internal/service/notification"
)

func strPtr(s string) *string { return &s }

func TestNotificationService_NotifyListingModerated(t *testing.T) {
	ctx := context.Background()
	owner := &domain.Profile{ID: uuid.New(), Email: "founder@example.com", FullName: strPtr("Dana Reyes")}
	listing := &domain.Listing{ID: uuid.New(), UserID: owner.ID, Title: "Edge AI Radar"}

	t.Run("Sends to owner", func(t *testing.T) {
		profiles := new(mocks.ProfileRepository)
		mailer := new(mocks.EmailService)
		mailer.On("Enabled").Return(true)
		profiles.On("GetByID", mock.Anything, owner.ID).Return(owner, nil).Once()
		mailer.On("SendListingModerated", mock.Anything, "founder@example.com", email.ListingModeratedData{
			Name:         "Dana Reyes",
			ListingTitle: "Edge AI Radar",
			Outcome:      "rejected",
			Notes:        "Missing phase details",
		}).Return(nil).Once()

		svc := notification.NewSynchronousService(profiles, mailer)
		sent := svc.NotifyListingModerated(ctx, listing, domain.AuditDenial, "Missing phase details")

		assert.True(t, sent)
		mailer.AssertExpectations(t)
	})

	t.Run("Blank notes send nothing", func(t *testing.T) {
		profiles := new(mocks.ProfileRepository)
		mailer := new(mocks.EmailService)
		mailer.On("Enabled").Return(true)

		svc := notification.NewSynchronousService(profiles, mailer)

		assert.False(t, svc.NotifyListingModerated(ctx, listing, domain.AuditApproval, "   "))
		mailer.AssertNotCalled(t, "SendListingModerated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Disabled mailer", func(t *testing.T) {
		profiles := new(mocks.ProfileRepository)
		mailer := new(mocks.EmailService)
		mailer.On("Enabled").Return(false)

		svc := notification.NewSynchronousService(profiles, mailer)

		assert.False(t, svc.Enabled())
		assert.False(t, svc.NotifyListingModerated(ctx, listing, domain.AuditApproval, "Welcome"))
	})

	t.Run("Delivery failure is not reported to caller", func(t *testing.T) {
		profiles := new(mocks.ProfileRepository)
		mailer := new(mocks.EmailService)
		mailer.On("Enabled").Return(true)
		profiles.On("GetByID", mock.Anything, owner.ID).Return(owner, nil).Once()
		mailer.On("SendListingModerated", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("rate limited")).Once()

		svc := notification.NewSynchronousService(profiles, mailer)

		assert.True(t, svc.NotifyListingModerated(ctx, listing, domain.AuditEdit, "Title shortened"))
	})
}

func TestNotificationService_NotifyChangeRequestSubmitted(t *testing.T) {
	ctx := context.Background()
	requester := domain.Profile{ID: uuid.New(), Email: "owner@example.com", FullName: strPtr("Sam Ortiz")}
	reviewer := domain.Profile{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}
	req := &domain.ChangeRequest{
		ID:           uuid.New(),
		UserID:       requester.ID,
		ListingTitle: "Edge AI Radar",
		RequestType:  domain.RequestDeletion,
		Reason:       "Contract awarded",
	}

	profiles := new(mocks.ProfileRepository)
	mailer := new(mocks.EmailService)
	mailer.On("Enabled").Return(true)
	profiles.On("ListByRole", mock.Anything, domain.RoleAdmin).Return([]domain.Profile{reviewer}, nil).Once()
	profiles.On("GetByID", mock.Anything, requester.ID).Return(&requester, nil).Once()
	mailer.On("SendChangeRequestSubmitted", mock.Anything, "admin@example.com", mock.MatchedBy(func(d email.ChangeRequestSubmittedData) bool {
		return d.RequesterName == "Sam Ortiz" && d.RequestType == "deletion" && d.Reason == "Contract awarded"
	})).Return(nil).Once()

	notification.NewSynchronousService(profiles, mailer).NotifyChangeRequestSubmitted(ctx, req)

	mailer.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestNotificationService_NotifyChangeRequestProcessed(t *testing.T) {
	ctx := context.Background()
	requester := &domain.Profile{ID: uuid.New(), Email: "owner@example.com"}
	req := &domain.ChangeRequest{
		ID:           uuid.New(),
		UserID:       requester.ID,
		ListingTitle: "Edge AI Radar",
		RequestType:  domain.RequestChange,
		Status:       domain.RequestApproved,
	}

	profiles := new(mocks.ProfileRepository)
	mailer := new(mocks.EmailService)
	mailer.On("Enabled").Return(true)
	svc := notification.NewSynchronousService(profiles, mailer)

	assert.False(t, svc.NotifyChangeRequestProcessed(ctx, req))

	req.AdminNotesUser = strPtr("Applied your new budget")
	profiles.On("GetByID", mock.Anything, requester.ID).Return(requester, nil).Once()
	mailer.On("SendChangeRequestProcessed", mock.Anything, "owner@example.com", mock.MatchedBy(func(d email.ChangeRequestProcessedData) bool {
		return d.Status == "approved" && d.Notes == "Applied your new budget"
	})).Return(nil).Once()

	assert.True(t, svc.NotifyChangeRequestProcessed(ctx, req))
	mailer.AssertExpectations(t)
}
