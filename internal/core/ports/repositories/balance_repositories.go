package repositories

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BalanceReader defines read operations for cached balances
type BalanceReader interface {
	// ListBalancesByGroupID retrieves the balances of every member of a group.
	ListBalancesByGroupID(ctx context.Context, groupID string) ([]domain.Balance, error)
}

// BalanceWriter defines reconciliation-side balance operations
type BalanceWriter interface {
	// UpsertBalanceInTx creates the (member, currency) row if missing and sets its value.
	UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.Balance) error

	// ListCurrenciesByGroupIDInTx returns every currency used by the group's records or balances.
	ListCurrenciesByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]string, error)
}

// BalanceRepositoryFacade combines all balance-related repository interfaces
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
}

// BalanceRepositoryWithTx extends BalanceRepositoryFacade with transaction capabilities
type BalanceRepositoryWithTx interface {
	BalanceRepositoryFacade
	TransactionManager
}
