package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TxManager runs callbacks inline with a nil transaction and counts outcomes.
// Repository mocks ignore the transaction, so writes are observed through
// their expectations while the counters show what would have been committed.
type TxManager struct {
	Commits            int
	Rollbacks          int
	Savepoints         int
	SavepointRollbacks int
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := fn(nil); err != nil {
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

func (m *TxManager) WithSavepoint(ctx context.Context, tx *sqlx.Tx, name string, fn func() error) error {
	m.Savepoints++
	if err := fn(); err != nil {
		m.SavepointRollbacks++
		return err
	}
	return nil
}
