package domain

import "errors"

var (
	ErrListingNotFound       = errors.New("listing not found")
	ErrChangeRequestNotFound = errors.New("change request not found")
	ErrProfileNotFound       = errors.New("profile not found")

	// ErrListingWrite means the store rejected the primary listing mutation.
	ErrListingWrite = errors.New("listing write failed")
	// ErrAuditWrite means the audit insert failed after the listing mutation.
	ErrAuditWrite = errors.New("audit log write failed")

	ErrChangeRequestProcessed = errors.New("change request has already been processed")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidField           = errors.New("unknown listing field")
	ErrNotListingOwner        = errors.New("only the listing owner can do this")
	ErrForbidden              = errors.New("insufficient permissions")
	ErrValidation             = errors.New("validation failed")
	ErrStorageUnavailable     = errors.New("photo storage is not configured")
)

var (
	ErrPhotoTooLarge    = errors.New("photo exceeds the maximum upload size")
	ErrPhotoTypeInvalid = errors.New("photo must be a JPEG, PNG or WebP image")
)
