package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager opens the single transaction a mutation runs in.
// Repository methods suffixed InTx take the returned pgx.Tx.
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction; rolling back a finished transaction is a no-op
	Rollback(ctx context.Context, tx pgx.Tx) error
}
