package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/platform/telemetry"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// BalanceService recomputes cached balances from the full allocation history.
type BalanceService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	memberRepo  portsrepo.MemberTxReader
	recordRepo  portsrepo.AllocationSummer
	balanceRepo portsrepo.BalanceWriter
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(
	txm portsrepo.TransactionManager,
	memberRepo portsrepo.MemberTxReader,
	recordRepo portsrepo.AllocationSummer,
	balanceRepo portsrepo.BalanceWriter,
	opts ...ServiceOption,
) *BalanceService {
	return &BalanceService{
		BaseService: newBaseService(opts...),
		txManager:   txm,
		memberRepo:  memberRepo,
		recordRepo:  recordRepo,
		balanceRepo: balanceRepo,
	}
}

var _ portssvc.BalanceSvc = (*BalanceService)(nil)

// Reconcile rewrites the balance in currency of every member of groupID.
// Members without a balance row get one; the value is always a full recompute.
func (s *BalanceService) Reconcile(ctx context.Context, tx pgx.Tx, groupID, currency string) (balances []domain.Balance, err error) {
	ctx, span := s.startSpan(ctx, "balance.reconcile",
		attribute.String("group_id", groupID),
		attribute.String("currency", currency))
	start := time.Now()
	defer func() {
		telemetry.HandleSpanError(span, "failed to reconcile balances", err)
		span.End()
		s.Metrics.ObserveReconciliation(len(balances), time.Since(start), err)
	}()

	members, err := s.memberRepo.ListMembersByGroupIDInTx(ctx, tx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members for reconciliation", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list members of group %s: %w", groupID, err)
	}

	now := s.now()
	out := make([]domain.Balance, 0, len(members))
	for _, m := range members {
		totalFrom, err := s.recordRepo.SumAllocationsInTx(ctx, tx, groupID, m.MemberID, currency, domain.AllocationFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to sum from allocations of member %s: %w", m.MemberID, err)
		}
		totalTo, err := s.recordRepo.SumAllocationsInTx(ctx, tx, groupID, m.MemberID, currency, domain.AllocationTo)
		if err != nil {
			return nil, fmt.Errorf("failed to sum to allocations of member %s: %w", m.MemberID, err)
		}

		b := domain.Balance{
			MemberID:      m.MemberID,
			Currency:      currency,
			Balance:       domain.ComputeBalance(totalFrom, totalTo),
			LastUpdatedAt: now,
		}
		if err := s.balanceRepo.UpsertBalanceInTx(ctx, tx, b); err != nil {
			s.LogError(ctx, err, "Failed to persist balance", slog.String("member_id", m.MemberID), slog.String("currency", currency))
			return nil, fmt.Errorf("failed to persist balance of member %s: %w", m.MemberID, err)
		}
		out = append(out, b)
	}

	s.LogDebug(ctx, "Balances reconciled", slog.String("group_id", groupID), slog.String("currency", currency), slog.Int("members", len(out)))
	return out, nil
}

// ReconcileGroup reconciles every currency used by the group in a transaction of its own.
func (s *BalanceService) ReconcileGroup(ctx context.Context, groupID, userID string) ([]domain.Balance, error) {
	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionEdit); err != nil {
		return nil, err
	}

	var all []domain.Balance
	err := s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		currencies, err := s.balanceRepo.ListCurrenciesByGroupIDInTx(ctx, tx, groupID)
		if err != nil {
			return fmt.Errorf("failed to list currencies of group %s: %w", groupID, err)
		}
		for _, currency := range currencies {
			balances, err := s.Reconcile(ctx, tx, groupID, currency)
			if err != nil {
				return err
			}
			all = append(all, balances...)
		}
		return nil
	})
	s.Metrics.ObserveMutation("group_reconcile", err)
	if err != nil {
		return nil, err
	}

	if all == nil {
		all = []domain.Balance{}
	}
	s.LogInfo(ctx, "Group balances reconciled", slog.String("group_id", groupID), slog.Int("balances", len(all)))
	return all, nil
}
