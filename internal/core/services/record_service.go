package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/platform/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRecordPageSize = 20

// fieldValidator checks partial-update values that bypass request binding.
var fieldValidator = validator.New()

// RecordService runs record reads and the record mutation transactions.
type RecordService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	recordRepo portsrepo.RecordRepositoryFacade
	memberRepo portsrepo.MemberTxReader
	reconciler portssvc.BalanceReconciler
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	txm portsrepo.TransactionManager,
	recordRepo portsrepo.RecordRepositoryFacade,
	memberRepo portsrepo.MemberTxReader,
	reconciler portssvc.BalanceReconciler,
	opts ...ServiceOption,
) *RecordService {
	return &RecordService{
		BaseService: newBaseService(opts...),
		txManager:   txm,
		recordRepo:  recordRepo,
		memberRepo:  memberRepo,
		reconciler:  reconciler,
	}
}

var _ portssvc.RecordSvcFacade = (*RecordService)(nil)

// GetRecordByID retrieves a record with its allocations.
func (s *RecordService) GetRecordByID(ctx context.Context, groupID, recordID, userID string) (*domain.Record, error) {
	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionView); err != nil {
		return nil, err
	}
	record, err := s.recordRepo.FindRecordByID(ctx, groupID, recordID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find record", slog.String("record_id", recordID))
		}
		return nil, err
	}
	return record, nil
}

// ListRecords returns one page of the group's records, newest first.
func (s *RecordService) ListRecords(ctx context.Context, groupID, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error) {
	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionView); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultRecordPageSize
	}

	records, nextToken, err := s.recordRepo.ListRecordsByGroupID(ctx, groupID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list records", slog.String("group_id", groupID))
		return nil, err
	}
	s.LogDebug(ctx, "Records listed", slog.String("group_id", groupID), slog.Int("count", len(records)))
	return dto.ToListRecordsResponse(records, nextToken), nil
}

// CreateRecord inserts a record and its allocations, then reconciles the record's currency.
func (s *RecordService) CreateRecord(ctx context.Context, groupID string, req dto.CreateRecordRequest, userID string) (record *domain.Record, err error) {
	ctx, span := s.startSpan(ctx, "record.create", attribute.String("group_id", groupID))
	defer func() {
		telemetry.HandleSpanError(span, "failed to create record", err)
		span.End()
		s.Metrics.ObserveMutation("record_create", err)
	}()

	group, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionEdit)
	if err != nil {
		return nil, err
	}

	recordID := uuid.NewString()
	newRecord := domain.Record{
		RecordID:     recordID,
		GroupID:      groupID,
		What:         strings.TrimSpace(req.What),
		Amount:       req.Amount,
		Type:         req.Type,
		Currency:     normalizeCurrency(req.Currency, group.PrimaryCurrency),
		ExchangeRate: decimal.NewFromInt(1),
		Note:         req.Note,
		IsEqualSplit: true,
		From:         domain.NewAllocations(recordID, domain.AllocationFrom, dto.ToAllocations(req.FromMembers), uuid.NewString),
		To:           domain.NewAllocations(recordID, domain.AllocationTo, dto.ToAllocations(req.ToMembers), uuid.NewString),
		AuditFields:  domain.NewAuditFields(userID, s.now()),
	}
	if req.ExchangeRate != nil {
		newRecord.ExchangeRate = *req.ExchangeRate
	}
	if req.IsEqualSplit != nil {
		newRecord.IsEqualSplit = *req.IsEqualSplit
	}

	if err := newRecord.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := validateMemberIDs(newRecord.MemberIDs()); err != nil {
		return nil, err
	}

	err = s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.ensureGroupMembers(ctx, tx, groupID, newRecord.MemberIDs()); err != nil {
			return err
		}
		if err := s.recordRepo.InsertRecordInTx(ctx, tx, newRecord); err != nil {
			return err
		}
		if err := s.recordRepo.InsertAllocationsInTx(ctx, tx, newRecord.Allocations()); err != nil {
			return err
		}
		_, err := s.reconciler.Reconcile(ctx, tx, groupID, newRecord.Currency)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create record", slog.String("group_id", groupID))
		return nil, err
	}

	s.LogInfo(ctx, "Record created", slog.String("record_id", recordID), slog.String("group_id", groupID), slog.String("currency", newRecord.Currency))
	return &newRecord, nil
}

// UpdateRecord applies a partial update. A supplied from_members or to_members
// list replaces every allocation of that kind.
func (s *RecordService) UpdateRecord(ctx context.Context, groupID, recordID string, req dto.UpdateRecordRequest, userID string) (record *domain.Record, err error) {
	ctx, span := s.startSpan(ctx, "record.update",
		attribute.String("group_id", groupID),
		attribute.String("record_id", recordID))
	defer func() {
		telemetry.HandleSpanError(span, "failed to update record", err)
		span.End()
		s.Metrics.ObserveMutation("record_update", err)
	}()

	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionEdit); err != nil {
		return nil, err
	}
	existing, err := s.recordRepo.FindRecordByID(ctx, groupID, recordID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	oldCurrency := existing.Currency

	if what, ok := req.What.Get(); ok {
		updated.What = strings.TrimSpace(what)
	}
	req.Amount.ApplyTo(&updated.Amount)
	req.Type.ApplyTo(&updated.Type)
	req.ExchangeRate.ApplyTo(&updated.ExchangeRate)
	req.Note.ApplyTo(&updated.Note)
	req.IsEqualSplit.ApplyTo(&updated.IsEqualSplit)
	if currency, ok := req.Currency.Get(); ok {
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if err := fieldValidator.Var(currency, "required,iso4217"); err != nil {
			return nil, fmt.Errorf("%w: currency %q is not an ISO 4217 code", apperrors.ErrValidation, currency)
		}
		updated.Currency = currency
	}

	var replacedKinds []domain.AllocationKind
	if entries, ok := req.FromMembers.Get(); ok {
		updated.From = domain.NewAllocations(recordID, domain.AllocationFrom, dto.ToAllocations(entries), uuid.NewString)
		replacedKinds = append(replacedKinds, domain.AllocationFrom)
	}
	if entries, ok := req.ToMembers.Get(); ok {
		updated.To = domain.NewAllocations(recordID, domain.AllocationTo, dto.ToAllocations(entries), uuid.NewString)
		replacedKinds = append(replacedKinds, domain.AllocationTo)
	}

	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if len(replacedKinds) > 0 {
		if err := validateMemberIDs(updated.MemberIDs()); err != nil {
			return nil, err
		}
	}
	updated.Touch(userID, s.now())

	err = s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if len(replacedKinds) > 0 {
			if err := s.ensureGroupMembers(ctx, tx, groupID, updated.MemberIDs()); err != nil {
				return err
			}
		}
		if err := s.recordRepo.UpdateRecordInTx(ctx, tx, updated); err != nil {
			return err
		}
		if len(replacedKinds) > 0 {
			if err := s.recordRepo.DeleteAllocationsInTx(ctx, tx, recordID, replacedKinds...); err != nil {
				return err
			}
			var fresh []domain.Allocation
			for _, kind := range replacedKinds {
				if kind == domain.AllocationFrom {
					fresh = append(fresh, updated.From...)
				} else {
					fresh = append(fresh, updated.To...)
				}
			}
			if err := s.recordRepo.InsertAllocationsInTx(ctx, tx, fresh); err != nil {
				return err
			}
		}

		if _, err := s.reconciler.Reconcile(ctx, tx, groupID, updated.Currency); err != nil {
			return err
		}
		if oldCurrency != updated.Currency {
			if _, err := s.reconciler.Reconcile(ctx, tx, groupID, oldCurrency); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update record", slog.String("record_id", recordID))
		return nil, err
	}

	s.LogInfo(ctx, "Record updated", slog.String("record_id", recordID), slog.String("group_id", groupID))
	return &updated, nil
}

// DeleteRecord removes a record and its allocations, then reconciles its currency.
func (s *RecordService) DeleteRecord(ctx context.Context, groupID, recordID, userID string) (err error) {
	ctx, span := s.startSpan(ctx, "record.delete",
		attribute.String("group_id", groupID),
		attribute.String("record_id", recordID))
	defer func() {
		telemetry.HandleSpanError(span, "failed to delete record", err)
		span.End()
		s.Metrics.ObserveMutation("record_delete", err)
	}()

	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionEdit); err != nil {
		return err
	}
	existing, err := s.recordRepo.FindRecordByID(ctx, groupID, recordID)
	if err != nil {
		return err
	}

	err = s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.recordRepo.DeleteAllocationsInTx(ctx, tx, recordID); err != nil {
			return err
		}
		if err := s.recordRepo.DeleteRecordInTx(ctx, tx, recordID); err != nil {
			return err
		}
		_, err := s.reconciler.Reconcile(ctx, tx, groupID, existing.Currency)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete record", slog.String("record_id", recordID))
		return err
	}

	s.LogInfo(ctx, "Record deleted", slog.String("record_id", recordID), slog.String("group_id", groupID))
	return nil
}

// validateMemberIDs rejects allocation member ids that are not UUIDs.
func validateMemberIDs(memberIDs []string) error {
	for _, id := range memberIDs {
		if err := fieldValidator.Var(id, "required,uuid"); err != nil {
			return fmt.Errorf("%w: member_id %q is not a valid UUID", apperrors.ErrValidation, id)
		}
	}
	return nil
}

// ensureGroupMembers fails with ErrIntegrity when any id is not a member of groupID.
func (s *RecordService) ensureGroupMembers(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	found, err := s.memberRepo.FindMembersByIDsInTx(ctx, tx, groupID, memberIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load allocation members", slog.String("group_id", groupID))
		return fmt.Errorf("failed to load allocation members: %w", err)
	}
	for _, id := range memberIDs {
		if _, ok := found[id]; !ok {
			s.GetLogger(ctx).Warn("Allocation member outside group", slog.String("member_id", id), slog.String("group_id", groupID))
			return fmt.Errorf("%w: member %s does not belong to group %s", apperrors.ErrIntegrity, id, groupID)
		}
	}
	return nil
}

func normalizeCurrency(currency, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c != "" {
		return c
	}
	if fallback != "" {
		return fallback
	}
	return domain.DefaultCurrency
}
