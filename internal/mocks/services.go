package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/service/auth"
	"sbir-marketplace/internal/service/dashboard"
	"sbir-marketplace/internal/service/email"
	"sbir-marketplace/internal/service/notification"
)

type ModerationService struct {
	mock.Mock
}

func (m *ModerationService) Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) ChangeStatus(ctx context.Context, actor domain.Actor, listingID uuid.UUID, status domain.ListingStatus, notes domain.ModerationNotes) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) UpdateWithAudit(ctx context.Context, actor domain.Actor, listingID uuid.UUID, update domain.ListingUpdate, internalNotes *string) (*domain.Listing, domain.ChangeSet, error) {
	args := m.Called(ctx, actor, listingID, update, internalNotes)
	var listing *domain.Listing
	if args.Get(0) != nil {
		listing = args.Get(0).(*domain.Listing)
	}
	var changes domain.ChangeSet
	if args.Get(1) != nil {
		changes = args.Get(1).(domain.ChangeSet)
	}
	return listing, changes, args.Error(2)
}

func (m *ModerationService) Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) SetNotificationService(notifSvc notification.Service) {}

type DashboardService struct {
	mock.Mock
}

func (m *DashboardService) GetStats(ctx context.Context) (*dashboard.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Stats), args.Error(1)
}

func (m *DashboardService) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *NotificationService) NotifyListingModerated(ctx context.Context, listing *domain.Listing, action domain.AuditAction, userNotes string) bool {
	args := m.Called(ctx, listing, action, userNotes)
	return args.Bool(0)
}

func (m *NotificationService) NotifyChangeRequestProcessed(ctx context.Context, req *domain.ChangeRequest) bool {
	args := m.Called(ctx, req)
	return args.Bool(0)
}

func (m *NotificationService) NotifyChangeRequestSubmitted(ctx context.Context, req *domain.ChangeRequest) {
	m.Called(ctx, req)
}

type StorageService struct {
	mock.Mock
}

func (m *StorageService) UploadListingPhoto(ctx context.Context, listingID uuid.UUID, reader io.Reader) (string, error) {
	args := m.Called(ctx, listingID, reader)
	return args.String(0), args.Error(1)
}

func (m *StorageService) RemoveByURL(ctx context.Context, photoURL string) error {
	args := m.Called(ctx, photoURL)
	return args.Error(0)
}

type EmailService struct {
	mock.Mock
}

func (m *EmailService) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *EmailService) SendListingModerated(ctx context.Context, toEmail string, data email.ListingModeratedData) error {
	args := m.Called(ctx, toEmail, data)
	return args.Error(0)
}

func (m *EmailService) SendChangeRequestProcessed(ctx context.Context, toEmail string, data email.ChangeRequestProcessedData) error {
	args := m.Called(ctx, toEmail, data)
	return args.Error(0)
}

func (m *EmailService) SendChangeRequestSubmitted(ctx context.Context, toEmail string, data email.ChangeRequestSubmittedData) error {
	args := m.Called(ctx, toEmail, data)
	return args.Error(0)
}

type AuthService struct {
	mock.Mock
}

func (m *AuthService) ValidateAccessToken(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
