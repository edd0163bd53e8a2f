package pgsql

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	"github.com/SscSPs/easysplit_backend/internal/models"
	"github.com/SscSPs/easysplit_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for cached balances.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryWithTx {
	return &PgxBalanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BalanceRepositoryWithTx = (*PgxBalanceRepository)(nil)

func (r *PgxBalanceRepository) ListBalancesByGroupID(ctx context.Context, groupID string) ([]domain.Balance, error) {
	query := `
		SELECT b.member_id, b.currency, b.balance, b.last_updated_at
		FROM balances b
		JOIN members m ON m.member_id = b.member_id
		WHERE m.group_id = $1
		ORDER BY b.member_id, b.currency;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, mapReadError(err, "failed to query balances of group "+groupID)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Balance])
	if err != nil {
		return nil, mapReadError(err, "failed to collect balance rows")
	}
	balances := make([]domain.Balance, len(ms))
	for i, m := range ms {
		balances[i] = mapping.ToDomainBalance(m)
	}
	return balances, nil
}

// UpsertBalanceInTx lazily creates the (member, currency) row and sets its value.
func (r *PgxBalanceRepository) UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.Balance) error {
	m := mapping.ToModelBalance(balance)
	query := `
		INSERT INTO balances (member_id, currency, balance, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id, currency)
		DO UPDATE SET balance = EXCLUDED.balance, last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := tx.Exec(ctx, query, m.MemberID, m.Currency, m.Balance, m.LastUpdatedAt); err != nil {
		return mapWriteError(err, "failed to upsert balance of member "+m.MemberID+" in "+m.Currency)
	}
	return nil
}

func (r *PgxBalanceRepository) ListCurrenciesByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]string, error) {
	query := `
		SELECT currency FROM records WHERE group_id = $1
		UNION
		SELECT b.currency FROM balances b JOIN members m ON m.member_id = b.member_id WHERE m.group_id = $1
		ORDER BY currency;
	`
	rows, err := tx.Query(ctx, query, groupID)
	if err != nil {
		return nil, mapReadError(err, "failed to query currencies of group "+groupID)
	}
	currencies, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapReadError(err, "failed to collect currencies")
	}
	return currencies, nil
}
