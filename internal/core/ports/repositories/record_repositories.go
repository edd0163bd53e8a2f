package repositories

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RecordReader defines read operations for records and their allocations
type RecordReader interface {
	// FindRecordByID retrieves a record of groupID with its from and to allocations.
	FindRecordByID(ctx context.Context, groupID, recordID string) (*domain.Record, error)

	// ListRecordsByGroupID retrieves records newest first, with allocations attached.
	// The returned token is nil when there are no more pages.
	ListRecordsByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Record, *string, error)
}

// RecordWriter defines write operations for records and allocations. All writes run inside tx.
type RecordWriter interface {
	InsertRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error
	UpdateRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error
	DeleteRecordInTx(ctx context.Context, tx pgx.Tx, recordID string) error

	InsertAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.Allocation) error

	// DeleteAllocationsInTx removes the record's allocations of the given kinds, or all of them when none are given.
	DeleteAllocationsInTx(ctx context.Context, tx pgx.Tx, recordID string, kinds ...domain.AllocationKind) error
}

// AllocationSummer aggregates allocation history for reconciliation.
type AllocationSummer interface {
	// SumAllocationsInTx sums a member's allocations of one kind over the group's records in currency.
	// An empty sum is zero.
	SumAllocationsInTx(ctx context.Context, tx pgx.Tx, groupID, memberID, currency string, kind domain.AllocationKind) (decimal.Decimal, error)
}

// RecordRepositoryFacade combines all record-related repository interfaces
type RecordRepositoryFacade interface {
	RecordReader
	RecordWriter
	AllocationSummer
}

// RecordRepositoryWithTx extends RecordRepositoryFacade with transaction capabilities
type RecordRepositoryWithTx interface {
	RecordRepositoryFacade
	TransactionManager
}
