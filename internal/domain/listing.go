package domain

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Agency      string        `json:"agency" db:"agency"`
	Phase       Phase         `json:"phase" db:"phase"`
	Value       float64       `json:"value" db:"value"`
	Deadline    *time.Time    `json:"deadline,omitempty" db:"deadline"`
	Category    string        `json:"category" db:"category"`
	Status      ListingStatus `json:"status" db:"status"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy  *uuid.UUID    `json:"approved_by,omitempty" db:"approved_by"`
	PhotoURL    *string       `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

type ListingStatus string

const (
	ListingPending  ListingStatus = "Pending"
	ListingActive   ListingStatus = "Active"
	ListingRejected ListingStatus = "Rejected"
	ListingHidden   ListingStatus = "Hidden"
	ListingSold     ListingStatus = "Sold"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingPending, ListingActive, ListingRejected, ListingHidden, ListingSold:
		return true
	}
	return false
}

type Phase string

const (
	PhaseI   Phase = "Phase I"
	PhaseII  Phase = "Phase II"
	PhaseIII Phase = "Phase III"
)

func (p Phase) IsValid() bool {
	switch p {
	case PhaseI, PhaseII, PhaseIII:
		return true
	}
	return false
}

// MarkApproved records the approval bookkeeping that accompanies a move to Active.
func (l *Listing) MarkApproved(adminID uuid.UUID, at time.Time) {
	l.Status = ListingActive
	l.ApprovedAt = &at
	l.ApprovedBy = &adminID
}

type CreateListingInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"required,max=5000"`
	Agency      string     `json:"agency" validate:"required,max=200"`
	Phase       Phase      `json:"phase" validate:"required"`
	Value       float64    `json:"value" validate:"gte=0"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Category    string     `json:"category" validate:"required,max=100"`
}

// ListingFilter narrows listing queries. Zero values are ignored.
type ListingFilter struct {
	Status   *ListingStatus
	OwnerID  *uuid.UUID
	Category string
	Agency   string
	Phase    Phase
	Search   string
	PaginationParams
}
