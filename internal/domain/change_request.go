package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChangeRequest struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	ListingID        *uuid.UUID          `json:"listing_id,omitempty" db:"listing_id"`
	ListingTitle     string              `json:"listing_title" db:"listing_title"`
	ListingAgency    string              `json:"listing_agency" db:"listing_agency"`
	UserID           uuid.UUID           `json:"user_id" db:"user_id"`
	RequestType      ChangeRequestType   `json:"request_type" db:"request_type"`
	RequestedChanges *ListingUpdate      `json:"requested_changes,omitempty" db:"requested_changes"`
	Reason           string              `json:"reason" db:"reason"`
	Status           ChangeRequestStatus `json:"status" db:"status"`
	ProcessedBy      *uuid.UUID          `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt      *time.Time          `json:"processed_at,omitempty" db:"processed_at"`
	AdminNotes       *string             `json:"admin_notes,omitempty" db:"admin_notes"`
	AdminNotesUser   *string             `json:"admin_notes_user,omitempty" db:"admin_notes_user"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`

	Requester *Profile `json:"requester,omitempty" db:"-"`
	Processor *Profile `json:"processor,omitempty" db:"-"`
}

type ChangeRequestType string

const (
	RequestChange   ChangeRequestType = "change"
	RequestDeletion ChangeRequestType = "deletion"
)

type ChangeRequestStatus string

const (
	RequestPending  ChangeRequestStatus = "pending"
	RequestApproved ChangeRequestStatus = "approved"
	RequestRejected ChangeRequestStatus = "rejected"
)

func (s ChangeRequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

func (s ChangeRequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

type CreateChangeRequestInput struct {
	RequestType      ChangeRequestType `json:"request_type" validate:"required,oneof=change deletion"`
	RequestedChanges *ListingUpdate    `json:"requested_changes,omitempty"`
	Reason           string            `json:"reason" validate:"required,min=3,max=2000"`
}

// ReviewChangeRequestInput carries an admin's notes on a decision. AdminNotes
// stay internal; AdminNotesUser is shown to the requester.
type ReviewChangeRequestInput struct {
	AdminNotes     *string `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
	AdminNotesUser *string `json:"admin_notes_user,omitempty" validate:"omitempty,max=2000"`
}
