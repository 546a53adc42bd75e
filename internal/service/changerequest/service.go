package changerequest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/dashboard"
	"sbir-marketplace/internal/service/moderation"
	"sbir-marketplace/internal/service/notification"
	"sbir-marketplace/internal/service/storage"
)

type Service interface {
	Create(ctx context.Context, requester domain.Actor, listingID uuid.UUID, input domain.CreateChangeRequestInput) (*domain.ChangeRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error)
	List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRequest], error)
	ListMine(ctx context.Context, requester domain.Actor, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRequest], error)
	// UpdateStatus records an admin decision on a pending request. It does not
	// touch the listing; see Process.
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ChangeRequestStatus, input domain.ReviewChangeRequestInput) (*domain.ChangeRequest, error)
	// Process records the decision and, for approvals, applies the request to
	// the listing through moderation.
	Process(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ChangeRequestStatus, input domain.ReviewChangeRequestInput) (*ProcessResult, error)
	SetNotificationService(notifSvc notification.Service)
}

type ProcessResult struct {
	Request *domain.ChangeRequest `json:"request"`
	Listing *domain.Listing       `json:"listing,omitempty"`
	Changes domain.ChangeSet      `json:"changes,omitempty"`
	Deleted bool                  `json:"deleted"`
}

type service struct {
	crRepo        repository.ChangeRequestRepository
	listingRepo   repository.ListingRepository
	profileRepo   repository.ProfileRepository
	moderationSvc moderation.Service
	storageSvc    storage.Service
	dashboardSvc  dashboard.Service
	notifSvc      notification.Service
	validate      *validator.Validate
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(
	crRepo repository.ChangeRequestRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	moderationSvc moderation.Service,
	storageSvc storage.Service,
	dashboardSvc dashboard.Service,
	validate *validator.Validate,
	logger zerolog.Logger,
) Service {
	return &service{
		crRepo:        crRepo,
		listingRepo:   listingRepo,
		profileRepo:   profileRepo,
		moderationSvc: moderationSvc,
		storageSvc:    storageSvc,
		dashboardSvc:  dashboardSvc,
		validate:      validate,
		logger:        logger.With().Str("component", "change_request_service").Logger(),
		now:           time.Now,
	}
}

func (s *service) SetNotificationService(notifSvc notification.Service) {
	s.notifSvc = notifSvc
}

func (s *service) Create(ctx context.Context, requester domain.Actor, listingID uuid.UUID, input domain.CreateChangeRequestInput) (*domain.ChangeRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if err := validatePayload(input); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.UserID != requester.ID && !requester.IsAdmin() {
		return nil, domain.ErrNotListingOwner
	}

	cr := &domain.ChangeRequest{
		ID:               uuid.New(),
		ListingID:        &listing.ID,
		ListingTitle:     listing.Title,
		ListingAgency:    listing.Agency,
		UserID:           requester.ID,
		RequestType:      input.RequestType,
		RequestedChanges: input.RequestedChanges,
		Reason:           input.Reason,
		Status:           domain.RequestPending,
	}

	if err := s.crRepo.Create(ctx, cr); err != nil {
		return nil, err
	}

	if s.dashboardSvc != nil {
		s.dashboardSvc.Invalidate(ctx)
	}
	if s.notifSvc != nil {
		s.notifSvc.NotifyChangeRequestSubmitted(ctx, cr)
	}

	return cr, nil
}

func validatePayload(input domain.CreateChangeRequestInput) error {
	switch input.RequestType {
	case domain.RequestChange:
		if input.RequestedChanges == nil || input.RequestedChanges.IsEmpty() {
			return fmt.Errorf("%w: requested_changes is required for change requests", domain.ErrValidation)
		}
		return input.RequestedChanges.Validate()
	case domain.RequestDeletion:
		if input.RequestedChanges != nil {
			return fmt.Errorf("%w: requested_changes is not allowed for deletion requests", domain.ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown request type %q", domain.ErrValidation, input.RequestType)
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error) {
	cr, err := s.crRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, domain.ErrChangeRequestNotFound
	}
	s.attachProfiles(ctx, cr)
	return cr, nil
}

func (s *service) List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRequest], error) {
	params.Validate()
	if status != nil && !status.IsValid() {
		return domain.PaginatedResponse[domain.ChangeRequest]{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *status)
	}

	requests, total, err := s.crRepo.List(ctx, status, params)
	if err != nil {
		return domain.PaginatedResponse[domain.ChangeRequest]{}, err
	}

	for i := range requests {
		s.attachProfiles(ctx, &requests[i])
	}

	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) ListMine(ctx context.Context, requester domain.Actor, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRequest], error) {
	params.Validate()

	requests, total, err := s.crRepo.ListByUser(ctx, requester.ID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.ChangeRequest]{}, err
	}

	// Internal admin notes never reach the requester.
	for i := range requests {
		requests[i].AdminNotes = nil
	}

	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) attachProfiles(ctx context.Context, cr *domain.ChangeRequest) {
	if requester, err := s.profileRepo.GetByID(ctx, cr.UserID); err == nil {
		cr.Requester = requester
	}
	if cr.ProcessedBy != nil {
		if processor, err := s.profileRepo.GetByID(ctx, *cr.ProcessedBy); err == nil {
			cr.Processor = processor
		}
	}
}

func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ChangeRequestStatus, input domain.ReviewChangeRequestInput) (*domain.ChangeRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: change request can only be approved or rejected", domain.ErrInvalidStatus)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	cr, err := s.crRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, domain.ErrChangeRequestNotFound
	}
	if cr.Status.IsTerminal() {
		return nil, domain.ErrChangeRequestProcessed
	}

	now := s.now()
	adminID := actor.ID
	cr.Status = status
	cr.ProcessedAt = &now
	cr.ProcessedBy = &adminID
	cr.AdminNotes = input.AdminNotes
	cr.AdminNotesUser = input.AdminNotesUser

	// Conditional on the row still being pending, so a concurrent decision loses.
	if err := s.crRepo.UpdateStatus(ctx, cr); err != nil {
		return nil, err
	}

	if s.dashboardSvc != nil {
		s.dashboardSvc.Invalidate(ctx)
	}

	s.logger.Info().
		Str("change_request_id", cr.ID.String()).
		Str("admin_id", adminID.String()).
		Str("status", string(status)).
		Msg("change request processed")

	return cr, nil
}

func (s *service) Process(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ChangeRequestStatus, input domain.ReviewChangeRequestInput) (*ProcessResult, error) {
	cr, err := s.UpdateStatus(ctx, actor, id, status, input)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{Request: cr}
	if status == domain.RequestApproved {
		if err := s.apply(ctx, actor, cr, result); err != nil {
			s.logger.Error().
				Err(err).
				Str("change_request_id", cr.ID.String()).
				Msg("change request approved but could not be applied to the listing")
			return result, fmt.Errorf("apply approved change request: %w", err)
		}
	}

	if s.notifSvc != nil {
		s.notifSvc.NotifyChangeRequestProcessed(ctx, cr)
	}

	return result, nil
}

func (s *service) apply(ctx context.Context, actor domain.Actor, cr *domain.ChangeRequest, result *ProcessResult) error {
	if cr.ListingID == nil {
		s.logger.Warn().Str("change_request_id", cr.ID.String()).Msg("listing no longer exists, nothing to apply")
		return nil
	}

	switch cr.RequestType {
	case domain.RequestChange:
		if cr.RequestedChanges == nil {
			return fmt.Errorf("%w: change request has no requested changes", domain.ErrValidation)
		}
		listing, changes, err := s.moderationSvc.UpdateWithAudit(ctx, actor, *cr.ListingID, *cr.RequestedChanges, cr.AdminNotes)
		if err != nil {
			return err
		}
		result.Listing = listing
		result.Changes = changes
		if photo, ok := changes[domain.FieldPhotoURL]; ok {
			if previous, ok := photo.From.(string); ok {
				s.removePhoto(ctx, listing.ID, previous)
			}
		}
		return nil

	case domain.RequestDeletion:
		listing, err := s.moderationSvc.Delete(ctx, actor, *cr.ListingID, domain.ModerationNotes{InternalNotes: cr.AdminNotes})
		if err != nil {
			return err
		}
		result.Listing = listing
		result.Deleted = true
		if listing.PhotoURL != nil {
			s.removePhoto(ctx, listing.ID, *listing.PhotoURL)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown request type %q", domain.ErrValidation, cr.RequestType)
	}
}

// removePhoto deletes a photo the listing no longer references.
func (s *service) removePhoto(ctx context.Context, listingID uuid.UUID, photoURL string) {
	if s.storageSvc == nil || photoURL == "" {
		return
	}
	if err := s.storageSvc.RemoveByURL(ctx, photoURL); err != nil {
		s.logger.Warn().Err(err).Str("listing_id", listingID.String()).Msg("failed to remove unreferenced listing photo")
	}
}
