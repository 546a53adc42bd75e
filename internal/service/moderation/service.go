package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
	"sbir-marketplace/internal/observability"
	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/dashboard"
	"sbir-marketplace/internal/service/notification"
)

// Service applies admin moderation actions to listings. Every action that
// changes a listing appends an audit entry describing the change.
type Service interface {
	Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error)
	Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error)
	ChangeStatus(ctx context.Context, actor domain.Actor, listingID uuid.UUID, status domain.ListingStatus, notes domain.ModerationNotes) (*domain.Listing, error)
	// UpdateWithAudit applies a partial update and returns the fields that
	// actually changed. An update that changes nothing writes nothing.
	UpdateWithAudit(ctx context.Context, actor domain.Actor, listingID uuid.UUID, update domain.ListingUpdate, internalNotes *string) (*domain.Listing, domain.ChangeSet, error)
	// Delete records a deletion entry and removes the listing row. It returns
	// the listing as it was before removal.
	Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error)
	SetNotificationService(notifSvc notification.Service)
}

type Options struct {
	// StrictAudit makes an audit insert failure abort the whole action.
	// Otherwise the failure is logged and counted and the listing write stands.
	StrictAudit bool
	Now         func() time.Time
}

type service struct {
	listingRepo  repository.ListingRepository
	auditRepo    repository.AuditLogRepository
	txManager    repository.TxManager
	dashboardSvc dashboard.Service
	notifSvc     notification.Service
	validate     *validator.Validate
	logger       zerolog.Logger
	opts         Options
}

func NewService(
	listingRepo repository.ListingRepository,
	auditRepo repository.AuditLogRepository,
	txManager repository.TxManager,
	dashboardSvc dashboard.Service,
	validate *validator.Validate,
	logger zerolog.Logger,
	opts Options,
) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		listingRepo:  listingRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		dashboardSvc: dashboardSvc,
		validate:     validate,
		logger:       logger.With().Str("component", "moderation_service").Logger(),
		opts:         opts,
	}
}

func (s *service) SetNotificationService(notifSvc notification.Service) {
	s.notifSvc = notifSvc
}

// action describes one moderation step. mutate edits the locked listing in
// place and returns the delta to audit; a nil delta means nothing changed and
// nothing is written.
type action struct {
	kind   func(after *domain.Listing) domain.AuditAction
	notes  domain.ModerationNotes
	mutate func(l *domain.Listing, now time.Time, adminID uuid.UUID) domain.ChangeSet
	remove bool
}

func statusChange(status domain.ListingStatus) func(*domain.Listing, time.Time, uuid.UUID) domain.ChangeSet {
	return func(l *domain.Listing, now time.Time, adminID uuid.UUID) domain.ChangeSet {
		changes := domain.ChangeSet{
			domain.FieldStatus: {From: l.Status, To: status},
		}
		if status == domain.ListingActive {
			l.MarkApproved(adminID, now)
		} else {
			l.Status = status
		}
		return changes
	}
}

func fixed(kind domain.AuditAction) func(*domain.Listing) domain.AuditAction {
	return func(*domain.Listing) domain.AuditAction { return kind }
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	listing, _, err := s.run(ctx, actor, listingID, action{
		kind:   fixed(domain.AuditApproval),
		notes:  notes,
		mutate: statusChange(domain.ListingActive),
	})
	return listing, err
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	listing, _, err := s.run(ctx, actor, listingID, action{
		kind:   fixed(domain.AuditDenial),
		notes:  notes,
		mutate: statusChange(domain.ListingRejected),
	})
	return listing, err
}

func (s *service) ChangeStatus(ctx context.Context, actor domain.Actor, listingID uuid.UUID, status domain.ListingStatus, notes domain.ModerationNotes) (*domain.Listing, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	listing, _, err := s.run(ctx, actor, listingID, action{
		kind:   fixed(domain.AuditActionForStatus(status)),
		notes:  notes,
		mutate: statusChange(status),
	})
	return listing, err
}

func (s *service) UpdateWithAudit(ctx context.Context, actor domain.Actor, listingID uuid.UUID, update domain.ListingUpdate, internalNotes *string) (*domain.Listing, domain.ChangeSet, error) {
	if err := update.Validate(); err != nil {
		return nil, nil, err
	}

	return s.run(ctx, actor, listingID, action{
		kind:  fixed(domain.AuditEdit),
		notes: domain.ModerationNotes{InternalNotes: internalNotes},
		mutate: func(l *domain.Listing, now time.Time, adminID uuid.UUID) domain.ChangeSet {
			changes := update.Diff(l)
			if changes == nil {
				return nil
			}
			update.Apply(l)
			if change, ok := changes[domain.FieldStatus]; ok && change.To == domain.ListingActive {
				l.MarkApproved(adminID, now)
			}
			return changes
		},
	})
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, notes domain.ModerationNotes) (*domain.Listing, error) {
	listing, _, err := s.run(ctx, actor, listingID, action{
		kind:   fixed(domain.AuditDeletion),
		notes:  notes,
		remove: true,
	})
	return listing, err
}

func (s *service) run(ctx context.Context, actor domain.Actor, listingID uuid.UUID, act action) (*domain.Listing, domain.ChangeSet, error) {
	if !actor.IsAdmin() {
		return nil, nil, domain.ErrForbidden
	}
	if err := s.validate.Struct(act.notes); err != nil {
		return nil, nil, err
	}

	var (
		listing *domain.Listing
		changes domain.ChangeSet
		entry   *domain.AuditLog
	)

	notify := act.notes.HasUserNotes() && s.notifSvc != nil && s.notifSvc.Enabled()

	err := s.txManager.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		listings := s.listingRepo.WithTx(tx)

		current, err := listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrListingNotFound
		}
		listing = current

		before := *current
		if !act.remove {
			changes = act.mutate(current, s.opts.Now(), actor.ID)
			if changes == nil {
				return nil
			}
		}

		entry = domain.NewAuditLog(&before, actor.ID, act.kind(current))
		entry.UserNotes = act.notes.UserNotes
		entry.InternalNotes = act.notes.InternalNotes
		entry.NotificationSent = notify
		entry.ChangesMade = changes

		if act.remove {
			// The entry goes in first; the FK is nulled when the row is deleted.
			if err := s.writeAudit(ctx, tx, entry); err != nil {
				return err
			}
			if err := listings.Delete(ctx, listingID); err != nil {
				return listingWriteError(err)
			}
			return nil
		}

		if err := listings.Update(ctx, current); err != nil {
			return listingWriteError(err)
		}
		return s.writeAudit(ctx, tx, entry)
	})
	if err != nil {
		return nil, nil, err
	}

	if entry == nil {
		s.logger.Debug().Str("listing_id", listingID.String()).Msg("listing update changed nothing, skipped")
		return listing, nil, nil
	}

	s.afterCommit(ctx, actor, listing, entry, act.notes, notify)
	return listing, changes, nil
}

// writeAudit inserts entry inside tx. In legacy mode the insert runs in a
// savepoint so its failure leaves the listing write intact.
func (s *service) writeAudit(ctx context.Context, tx *sqlx.Tx, entry *domain.AuditLog) error {
	audits := s.auditRepo.WithTx(tx)

	if s.opts.StrictAudit {
		if err := audits.Create(ctx, entry); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrAuditWrite, err)
		}
		return nil
	}

	err := s.txManager.WithSavepoint(ctx, tx, "audit_entry", func() error {
		return audits.Create(ctx, entry)
	})
	if err != nil {
		observability.AuditWriteFailures().Inc()
		s.logger.Error().
			Err(err).
			Str("listing_title", entry.ListingTitle).
			Str("admin_id", entry.AdminID.String()).
			Str("action", string(entry.ActionType)).
			Msg("audit log write failed, keeping moderation change")
	}
	return nil
}

func (s *service) afterCommit(ctx context.Context, actor domain.Actor, listing *domain.Listing, entry *domain.AuditLog, notes domain.ModerationNotes, notify bool) {
	observability.ModerationActions().WithLabelValues(string(entry.ActionType)).Inc()

	if s.dashboardSvc != nil {
		s.dashboardSvc.Invalidate(ctx)
	}

	if notify {
		s.notifSvc.NotifyListingModerated(ctx, listing, entry.ActionType, *notes.UserNotes)
	}

	s.logger.Info().
		Str("listing_id", listing.ID.String()).
		Str("admin_id", actor.ID.String()).
		Str("action", string(entry.ActionType)).
		Int("fields_changed", len(entry.ChangesMade)).
		Msg("moderation action applied")
}

func listingWriteError(err error) error {
	if errors.Is(err, domain.ErrListingNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrListingWrite, err)
}
