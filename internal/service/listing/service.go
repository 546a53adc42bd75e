package listing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/dashboard"
	"sbir-marketplace/internal/service/storage"
)

type Service interface {
	// Create submits a listing for review. New listings always start Pending.
	Create(ctx context.Context, owner domain.Actor, input domain.CreateListingInput) (*domain.Listing, error)
	// GetByID returns a listing visible to viewer: Active listings to everyone,
	// anything else only to its owner or an admin. viewer may be nil.
	GetByID(ctx context.Context, viewer *domain.Actor, id uuid.UUID) (*domain.Listing, error)
	ListActive(ctx context.Context, filter domain.ListingFilter) (domain.PaginatedResponse[domain.Listing], error)
	ListByOwner(ctx context.Context, owner domain.Actor, params domain.PaginationParams) (domain.PaginatedResponse[domain.Listing], error)
	ListByStatus(ctx context.Context, actor domain.Actor, status *domain.ListingStatus, filter domain.ListingFilter) (domain.PaginatedResponse[domain.Listing], error)
	// UploadPhoto attaches a photo while the listing is still Pending. Later
	// photo changes go through a change request.
	UploadPhoto(ctx context.Context, owner domain.Actor, id uuid.UUID, reader io.Reader) (*domain.Listing, error)
}

type service struct {
	listingRepo  repository.ListingRepository
	storageSvc   storage.Service
	dashboardSvc dashboard.Service
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewService(
	listingRepo repository.ListingRepository,
	storageSvc storage.Service,
	dashboardSvc dashboard.Service,
	validate *validator.Validate,
	logger zerolog.Logger,
) Service {
	return &service{
		listingRepo:  listingRepo,
		storageSvc:   storageSvc,
		dashboardSvc: dashboardSvc,
		validate:     validate,
		logger:       logger.With().Str("component", "listing_service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, owner domain.Actor, input domain.CreateListingInput) (*domain.Listing, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Phase.IsValid() {
		return nil, fmt.Errorf("%w: unknown phase %q", domain.ErrValidation, input.Phase)
	}

	listing := &domain.Listing{
		ID:          uuid.New(),
		UserID:      owner.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Agency:      strings.TrimSpace(input.Agency),
		Phase:       input.Phase,
		Value:       input.Value,
		Deadline:    input.Deadline,
		Category:    strings.TrimSpace(input.Category),
		Status:      domain.ListingPending,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	if s.dashboardSvc != nil {
		s.dashboardSvc.Invalidate(ctx)
	}

	s.logger.Info().Str("listing_id", listing.ID.String()).Str("owner_id", owner.ID.String()).Msg("listing submitted")
	return listing, nil
}

func (s *service) GetByID(ctx context.Context, viewer *domain.Actor, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	if listing.Status == domain.ListingActive {
		return listing, nil
	}
	if viewer != nil && (viewer.IsAdmin() || viewer.ID == listing.UserID) {
		return listing, nil
	}
	return nil, domain.ErrListingNotFound
}

func (s *service) ListActive(ctx context.Context, filter domain.ListingFilter) (domain.PaginatedResponse[domain.Listing], error) {
	active := domain.ListingActive
	filter.Status = &active
	filter.OwnerID = nil
	return s.list(ctx, filter)
}

func (s *service) ListByOwner(ctx context.Context, owner domain.Actor, params domain.PaginationParams) (domain.PaginatedResponse[domain.Listing], error) {
	ownerID := owner.ID
	return s.list(ctx, domain.ListingFilter{OwnerID: &ownerID, PaginationParams: params})
}

func (s *service) ListByStatus(ctx context.Context, actor domain.Actor, status *domain.ListingStatus, filter domain.ListingFilter) (domain.PaginatedResponse[domain.Listing], error) {
	if !actor.IsAdmin() {
		return domain.PaginatedResponse[domain.Listing]{}, domain.ErrForbidden
	}
	if status != nil && !status.IsValid() {
		return domain.PaginatedResponse[domain.Listing]{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *status)
	}
	filter.Status = status
	return s.list(ctx, filter)
}

func (s *service) list(ctx context.Context, filter domain.ListingFilter) (domain.PaginatedResponse[domain.Listing], error) {
	filter.Validate()

	listings, total, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		return domain.PaginatedResponse[domain.Listing]{}, err
	}

	return domain.NewPaginatedResponse(listings, filter.Page, filter.PageSize, total), nil
}

func (s *service) UploadPhoto(ctx context.Context, owner domain.Actor, id uuid.UUID, reader io.Reader) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.UserID != owner.ID {
		return nil, domain.ErrNotListingOwner
	}
	if listing.Status != domain.ListingPending {
		return nil, fmt.Errorf("%w: photos can only be changed while the listing is pending", domain.ErrValidation)
	}

	url, err := s.storageSvc.UploadListingPhoto(ctx, listing.ID, reader)
	if err != nil {
		return nil, err
	}

	previous := listing.PhotoURL
	if err := s.listingRepo.UpdatePhoto(ctx, listing.ID, &url); err != nil {
		if rmErr := s.storageSvc.RemoveByURL(ctx, url); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("url", url).Msg("failed to clean up orphaned photo")
		}
		return nil, err
	}
	listing.PhotoURL = &url

	if previous != nil && *previous != "" {
		if err := s.storageSvc.RemoveByURL(ctx, *previous); err != nil {
			s.logger.Warn().Err(err).Str("url", *previous).Msg("failed to remove replaced photo")
		}
	}

	return listing, nil
}
