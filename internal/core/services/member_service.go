package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/platform/telemetry"
	"github.com/SscSPs/easysplit_backend/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Messages returned when a batch touches the owner-member.
const (
	msgCantUpdateOwner = "Can't update group owner"
	msgCantDeleteOwner = "Can't delete group owner"
)

// MemberService lists members and applies member batches.
type MemberService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	memberRepo  portsrepo.MemberRepositoryFacade
	balanceRepo portsrepo.BalanceReader
}

// NewMemberService creates a new MemberService.
func NewMemberService(
	txm portsrepo.TransactionManager,
	memberRepo portsrepo.MemberRepositoryFacade,
	balanceRepo portsrepo.BalanceReader,
	opts ...ServiceOption,
) *MemberService {
	return &MemberService{
		BaseService: newBaseService(opts...),
		txManager:   txm,
		memberRepo:  memberRepo,
		balanceRepo: balanceRepo,
	}
}

var _ portssvc.MemberSvcFacade = (*MemberService)(nil)

// ListMembers returns the group's members with their cached balances.
func (s *MemberService) ListMembers(ctx context.Context, groupID, userID string) ([]domain.MemberWithBalances, error) {
	if _, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionView); err != nil {
		return nil, err
	}
	return s.listWithBalances(ctx, groupID)
}

// ApplyMemberBatch creates, then updates, then deletes members in one transaction.
// The owner-member may be neither updated nor deleted, and every id named for
// update or delete must already belong to the group.
func (s *MemberService) ApplyMemberBatch(ctx context.Context, groupID string, req dto.MemberBatchRequest, userID string) (members []domain.MemberWithBalances, err error) {
	ctx, span := s.startSpan(ctx, "member.batch",
		attribute.String("group_id", groupID),
		attribute.Int("create", len(req.Create)),
		attribute.Int("update", len(req.Update)),
		attribute.Int("delete", len(req.Delete)))
	defer func() {
		telemetry.HandleSpanError(span, "failed to apply member batch", err)
		span.End()
		s.Metrics.ObserveMutation("member_batch", err)
	}()

	group, err := s.AuthorizeUser(ctx, userID, groupID, domain.PermissionEdit)
	if err != nil {
		return nil, err
	}

	updateIDs := req.UpdateIDs()
	if dup := firstDuplicate(updateIDs); dup != "" {
		return nil, fmt.Errorf("%w: member %s listed more than once for update", apperrors.ErrValidation, dup)
	}
	deleteIDs := uniqueStrings(req.DeleteIDs())

	existing, err := s.memberRepo.FindMembersByIDs(ctx, groupID, append(append([]string{}, updateIDs...), deleteIDs...))
	if err != nil {
		s.LogError(ctx, err, "Failed to load batch members", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to load members of group %s: %w", groupID, err)
	}

	// owner protection comes before any existence check or mutation
	for _, id := range updateIDs {
		if m, ok := existing[id]; ok && group.IsOwnerMember(m) {
			s.GetLogger(ctx).Warn("Rejected update of owner-member", slog.String("group_id", groupID), slog.String("member_id", id))
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, msgCantUpdateOwner)
		}
	}
	for _, id := range deleteIDs {
		if m, ok := existing[id]; ok && group.IsOwnerMember(m) {
			s.GetLogger(ctx).Warn("Rejected delete of owner-member", slog.String("group_id", groupID), slog.String("member_id", id))
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, msgCantDeleteOwner)
		}
	}
	for _, id := range append(append([]string{}, updateIDs...), deleteIDs...) {
		if _, ok := existing[id]; !ok {
			return nil, fmt.Errorf("%w: member %s in group %s", apperrors.ErrNotFound, id, groupID)
		}
	}

	now := s.now()
	creates := make([]domain.Member, 0, len(req.Create))
	for _, c := range req.Create {
		creates = append(creates, domain.Member{
			MemberID:    uuid.NewString(),
			GroupID:     groupID,
			UserID:      normalizeUserID(c.UserID),
			Name:        strings.TrimSpace(c.Name),
			Permission:  c.Permission,
			AuditFields: domain.NewAuditFields(userID, now),
		})
	}
	updates := make([]domain.Member, 0, len(req.Update))
	for _, u := range req.Update {
		m := existing[u.ID]
		m.UserID = normalizeUserID(u.UserID)
		m.Name = strings.TrimSpace(u.Name)
		m.Permission = u.Permission
		m.Touch(userID, now)
		updates = append(updates, m)
	}
	for _, m := range append(append([]domain.Member{}, creates...), updates...) {
		if m.Name == "" || !m.Permission.IsValid() {
			return nil, fmt.Errorf("%w: member name and a valid permission are required", apperrors.ErrValidation)
		}
	}

	err = s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if len(creates) > 0 {
			if err := s.memberRepo.InsertMembersInTx(ctx, tx, creates); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := s.memberRepo.UpdateMembersInTx(ctx, tx, updates); err != nil {
				return err
			}
		}
		if len(deleteIDs) > 0 {
			if err := s.memberRepo.DeleteMembersInTx(ctx, tx, groupID, deleteIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply member batch", slog.String("group_id", groupID))
		return nil, err
	}

	s.LogInfo(ctx, "Member batch applied",
		slog.String("group_id", groupID),
		slog.Int("created", len(creates)),
		slog.Int("updated", len(updates)),
		slog.Int("deleted", len(deleteIDs)))
	return s.listWithBalances(ctx, groupID)
}

func (s *MemberService) listWithBalances(ctx context.Context, groupID string) ([]domain.MemberWithBalances, error) {
	members, err := s.memberRepo.ListMembersByGroupID(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list members of group %s: %w", groupID, err)
	}
	balances, err := s.balanceRepo.ListBalancesByGroupID(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list balances", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list balances of group %s: %w", groupID, err)
	}

	byMember := mapping.GroupBalancesByMember(balances)
	out := make([]domain.MemberWithBalances, len(members))
	for i, m := range members {
		bs := byMember[m.MemberID]
		if bs == nil {
			bs = []domain.Balance{}
		}
		out[i] = domain.MemberWithBalances{Member: m, Balances: bs}
	}
	return out, nil
}

func normalizeUserID(userID *string) *string {
	if userID == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*userID)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstDuplicate(in []string) string {
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			return s
		}
		seen[s] = struct{}{}
	}
	return ""
}
