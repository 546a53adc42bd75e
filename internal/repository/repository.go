package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBTX is the query surface shared by *sqlx.DB and *sqlx.Tx, so a repository
// can run either standalone or inside a caller's transaction.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type Repositories struct {
	Listing       ListingRepository
	AuditLog      AuditLogRepository
	ChangeRequest ChangeRequestRepository
	Profile       ProfileRepository
	Tx            TxManager
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Listing:       NewListingRepository(db),
		AuditLog:      NewAuditLogRepository(db),
		ChangeRequest: NewChangeRequestRepository(db),
		Profile:       NewProfileRepository(db),
		Tx:            NewTxManager(db),
	}
}
