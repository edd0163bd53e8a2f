package services

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/jackc/pgx/v5"
)

// RecordReaderSvc defines read operations for records
type RecordReaderSvc interface {
	GetRecordByID(ctx context.Context, groupID, recordID, userID string) (*domain.Record, error)
	ListRecords(ctx context.Context, groupID, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error)
}

// RecordWriterSvc defines the record mutation transactions. Each one reconciles
// the affected currency before committing.
type RecordWriterSvc interface {
	CreateRecord(ctx context.Context, groupID string, req dto.CreateRecordRequest, userID string) (*domain.Record, error)
	UpdateRecord(ctx context.Context, groupID, recordID string, req dto.UpdateRecordRequest, userID string) (*domain.Record, error)
	DeleteRecord(ctx context.Context, groupID, recordID, userID string) error
}

// RecordSvcFacade combines all record-related service interfaces
type RecordSvcFacade interface {
	RecordReaderSvc
	RecordWriterSvc
}

// BalanceReconciler recomputes cached balances from allocation history.
type BalanceReconciler interface {
	// Reconcile rewrites the balance in currency of every member of groupID inside tx.
	Reconcile(ctx context.Context, tx pgx.Tx, groupID, currency string) ([]domain.Balance, error)
}

// BalanceSvc exposes reconciliation outside record mutations.
type BalanceSvc interface {
	BalanceReconciler

	// ReconcileGroup reconciles every currency the group uses in its own transaction.
	ReconcileGroup(ctx context.Context, groupID, userID string) ([]domain.Balance, error)
}
