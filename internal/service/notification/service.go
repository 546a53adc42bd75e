package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/email"
)

// Service emails listing owners and admins about moderation outcomes. Every
// Notify method returns immediately; delivery happens on a goroutine so a
// slow mail provider never holds up the request that triggered it.
type Service interface {
	// Enabled reports whether notifications are actually delivered.
	Enabled() bool
	NotifyListingModerated(ctx context.Context, listing *domain.Listing, action domain.AuditAction, userNotes string) bool
	NotifyChangeRequestProcessed(ctx context.Context, req *domain.ChangeRequest) bool
	NotifyChangeRequestSubmitted(ctx context.Context, req *domain.ChangeRequest)
}

type service struct {
	profileRepo repository.ProfileRepository
	emailSvc    email.Service
	logger      zerolog.Logger
	// dispatch runs a delivery; swapped for a synchronous call in tests.
	dispatch func(func())
}

func NewService(profileRepo repository.ProfileRepository, emailSvc email.Service, logger zerolog.Logger) Service {
	return &service{
		profileRepo: profileRepo,
		emailSvc:    emailSvc,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		dispatch:    func(fn func()) { go fn() },
	}
}

func (s *service) Enabled() bool {
	return s.emailSvc != nil && s.emailSvc.Enabled()
}

// NotifyListingModerated queues an email to the listing owner. It returns
// true when a message was queued, which is what audit entries record as
// notification_sent.
func (s *service) NotifyListingModerated(ctx context.Context, listing *domain.Listing, action domain.AuditAction, userNotes string) bool {
	if !s.Enabled() || strings.TrimSpace(userNotes) == "" {
		return false
	}

	snapshot := *listing
	s.dispatch(func() {
		ctx := context.Background()
		owner, ok := s.recipient(ctx, snapshot.UserID)
		if !ok {
			return
		}

		err := s.emailSvc.SendListingModerated(ctx, owner.Email, email.ListingModeratedData{
			Name:         owner.DisplayName(),
			ListingTitle: snapshot.Title,
			Outcome:      outcome(action),
			Notes:        userNotes,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("listing_id", snapshot.ID.String()).Msg("failed to send moderation email")
		}
	})
	return true
}

func (s *service) NotifyChangeRequestProcessed(ctx context.Context, req *domain.ChangeRequest) bool {
	if !s.Enabled() || req.AdminNotesUser == nil || strings.TrimSpace(*req.AdminNotesUser) == "" {
		return false
	}

	snapshot := *req
	s.dispatch(func() {
		ctx := context.Background()
		requester, ok := s.recipient(ctx, snapshot.UserID)
		if !ok {
			return
		}

		err := s.emailSvc.SendChangeRequestProcessed(ctx, requester.Email, email.ChangeRequestProcessedData{
			Name:         requester.DisplayName(),
			ListingTitle: snapshot.ListingTitle,
			RequestType:  string(snapshot.RequestType),
			Status:       string(snapshot.Status),
			Notes:        *snapshot.AdminNotesUser,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("change_request_id", snapshot.ID.String()).Msg("failed to send change request email")
		}
	})
	return true
}

func (s *service) NotifyChangeRequestSubmitted(ctx context.Context, req *domain.ChangeRequest) {
	if !s.Enabled() {
		return
	}

	snapshot := *req
	s.dispatch(func() {
		ctx := context.Background()
		admins, err := s.profileRepo.ListByRole(ctx, domain.RoleAdmin)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load admins for change request email")
			return
		}

		requesterName := "A listing owner"
		if requester, ok := s.recipient(ctx, snapshot.UserID); ok {
			requesterName = requester.DisplayName()
		}

		for _, admin := range admins {
			if admin.ID == snapshot.UserID {
				continue
			}
			err := s.emailSvc.SendChangeRequestSubmitted(ctx, admin.Email, email.ChangeRequestSubmittedData{
				Name:          admin.DisplayName(),
				RequesterName: requesterName,
				ListingTitle:  snapshot.ListingTitle,
				RequestType:   string(snapshot.RequestType),
				Reason:        snapshot.Reason,
			})
			if err != nil {
				s.logger.Error().Err(err).Str("admin_id", admin.ID.String()).Msg("failed to send change request email")
			}
		}
	})
}

func (s *service) recipient(ctx context.Context, id uuid.UUID) (*domain.Profile, bool) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("profile_id", id.String()).Msg("failed to load notification recipient")
		return nil, false
	}
	if profile == nil || profile.Email == "" {
		return nil, false
	}
	return profile, true
}

func outcome(action domain.AuditAction) string {
	switch action {
	case domain.AuditApproval:
		return "approved"
	case domain.AuditDenial:
		return "rejected"
	case domain.AuditDeletion:
		return "deleted"
	default:
		return "updated"
	}
}
