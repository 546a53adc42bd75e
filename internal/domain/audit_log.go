package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one administrative action taken against a listing. Rows are
// append-only; the listing title and agency are copied in so the history
// survives later edits or deletion of the listing.
type AuditLog struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	ListingID        *uuid.UUID  `json:"listing_id,omitempty" db:"listing_id"`
	ListingTitle     string      `json:"listing_title" db:"listing_title"`
	ListingAgency    string      `json:"listing_agency" db:"listing_agency"`
	AdminID          uuid.UUID   `json:"admin_id" db:"admin_id"`
	ActionType       AuditAction `json:"action_type" db:"action_type"`
	UserNotes        *string     `json:"user_notes,omitempty" db:"user_notes"`
	InternalNotes    *string     `json:"internal_notes,omitempty" db:"internal_notes"`
	NotificationSent bool        `json:"notification_sent" db:"notification_sent"`
	ChangesMade      ChangeSet   `json:"changes_made,omitempty" db:"changes_made"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// AuditLogWithAdmin is an audit entry with the acting admin's identity joined in.
type AuditLogWithAdmin struct {
	AuditLog
	AdminName  *string `json:"admin_name,omitempty" db:"admin_name"`
	AdminEmail *string `json:"admin_email,omitempty" db:"admin_email"`
}

type AuditAction string

const (
	AuditApproval AuditAction = "approval"
	AuditDenial   AuditAction = "denial"
	AuditEdit     AuditAction = "edit"
	AuditDeletion AuditAction = "deletion"
)

// AuditActionForStatus maps a target listing status to the audit action it is recorded as.
func AuditActionForStatus(status ListingStatus) AuditAction {
	switch status {
	case ListingActive:
		return AuditApproval
	case ListingRejected:
		return AuditDenial
	default:
		return AuditEdit
	}
}

// NewAuditLog snapshots the listing identity onto a fresh entry.
func NewAuditLog(listing *Listing, adminID uuid.UUID, action AuditAction) *AuditLog {
	listingID := listing.ID
	return &AuditLog{
		ID:            uuid.New(),
		ListingID:     &listingID,
		ListingTitle:  listing.Title,
		ListingAgency: listing.Agency,
		AdminID:       adminID,
		ActionType:    action,
	}
}

// ModerationNotes carries the optional notes attached to an admin action.
// UserNotes are shown to the listing owner, InternalNotes only to admins.
type ModerationNotes struct {
	UserNotes     *string `json:"user_notes,omitempty" validate:"omitempty,max=2000"`
	InternalNotes *string `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

// HasUserNotes reports whether the notes carry anything worth emailing to the
// listing owner. Whitespace-only notes do not count.
func (n ModerationNotes) HasUserNotes() bool {
	return n.UserNotes != nil && strings.TrimSpace(*n.UserNotes) != ""
}

type ChangeStatusInput struct {
	Status ListingStatus `json:"status" validate:"required"`
	ModerationNotes
}

type AdminEditInput struct {
	Changes       ListingUpdate `json:"changes"`
	InternalNotes *string       `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}
