package pgsql

import (
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:   NewTransactionManager(dbPool),
		GroupRepo:   newPgxGroupRepository(dbPool),
		MemberRepo:  newPgxMemberRepository(dbPool),
		RecordRepo:  newPgxRecordRepository(dbPool),
		BalanceRepo: newPgxBalanceRepository(dbPool),
	}
}
