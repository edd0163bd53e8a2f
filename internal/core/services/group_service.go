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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultOwnerName = "Owner"
	maxGroupName     = 50
)

// GroupService handles group lifecycle and group-level authorization.
type GroupService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	groupRepo  portsrepo.GroupRepositoryFacade
	memberRepo portsrepo.MemberRepositoryFacade
}

// NewGroupService creates a new GroupService. It is its own authorizer.
func NewGroupService(
	txm portsrepo.TransactionManager,
	groupRepo portsrepo.GroupRepositoryFacade,
	memberRepo portsrepo.MemberRepositoryFacade,
	opts ...ServiceOption,
) *GroupService {
	s := &GroupService{
		BaseService: newBaseService(opts...),
		txManager:   txm,
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
	}
	s.GroupAuthorizer = s
	return s
}

var _ portssvc.GroupSvcFacade = (*GroupService)(nil)

// AuthorizeGroupAction checks that userID holds at least required on groupID.
// Returns apperrors.ErrNotFound if the group doesn't exist or the user can't see it.
// Returns apperrors.ErrForbidden if the user can see the group but lacks the permission.
func (s *GroupService) AuthorizeGroupAction(ctx context.Context, userID, groupID string, required domain.MemberPermission) (*domain.Group, error) {
	logger := s.GetLogger(ctx)

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find group for authorization", slog.String("error", err.Error()), slog.String("group_id", groupID))
		}
		return nil, err
	}

	// the owner is always authorized
	if group.OwnerID == userID {
		return group, nil
	}

	publicRead := required == domain.PermissionView && group.PublicPermission == domain.VisibilityPublic

	member, err := s.memberRepo.FindMemberByUserID(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if publicRead {
				return group, nil
			}
			logger.Warn("Authorization failed: user is not a member of the group", slog.String("user_id", userID), slog.String("group_id", groupID))
			return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		logger.Error("Failed to check group membership", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	if member.Permission == domain.PermissionDeactivated {
		logger.Warn("Authorization failed: member is deactivated", slog.String("user_id", userID), slog.String("group_id", groupID))
		return nil, fmt.Errorf("%w: member is deactivated", apperrors.ErrForbidden)
	}
	if member.Permission.Allows(required) || publicRead {
		return group, nil
	}

	logger.Warn("Authorization failed: member lacks required permission",
		slog.String("user_id", userID),
		slog.String("group_id", groupID),
		slog.String("member_permission", string(member.Permission)),
		slog.String("required_permission", string(required)))
	return nil, fmt.Errorf("%w: %s permission required", apperrors.ErrForbidden, required)
}

// GetGroupByID retrieves a group the user may view.
func (s *GroupService) GetGroupByID(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	return s.AuthorizeGroupAction(ctx, userID, groupID, domain.PermissionView)
}

// ListUserGroups retrieves groups the user owns or is a bound member of.
func (s *GroupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroupsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups for user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list groups for user %s: %w", userID, err)
	}
	if groups == nil {
		return []domain.Group{}, nil
	}
	s.LogDebug(ctx, "Groups listed for user", slog.String("user_id", userID), slog.Int("count", len(groups)))
	return groups, nil
}

// CreateGroup persists a new group and its owner-member in one transaction.
func (s *GroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error) {
	now := s.now()
	group := domain.Group{
		GroupID:          uuid.NewString(),
		OwnerID:          userID,
		Name:             strings.TrimSpace(req.Name),
		Note:             req.Note,
		PublicPermission: req.PublicPermission,
		PrimaryCurrency:  normalizeCurrency(req.PrimaryCurrency, domain.DefaultCurrency),
		AuditFields:      domain.NewAuditFields(userID, now),
	}
	if group.PublicPermission == "" {
		group.PublicPermission = domain.VisibilityLimited
	}
	if err := validateGroup(group); err != nil {
		return nil, err
	}

	ownerName := strings.TrimSpace(req.OwnerName)
	if ownerName == "" {
		ownerName = defaultOwnerName
	}
	ownerUserID := userID
	owner := domain.Member{
		MemberID:    uuid.NewString(),
		GroupID:     group.GroupID,
		UserID:      &ownerUserID,
		Name:        ownerName,
		Permission:  domain.PermissionEdit,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	err := s.runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.groupRepo.SaveGroupInTx(ctx, tx, group); err != nil {
			return err
		}
		return s.memberRepo.InsertMembersInTx(ctx, tx, []domain.Member{owner})
	})
	s.Metrics.ObserveMutation("group_create", err)
	if err != nil {
		s.LogError(ctx, err, "Failed to create group", slog.String("group_name", group.Name))
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.LogInfo(ctx, "Group created", slog.String("group_id", group.GroupID), slog.String("owner_id", userID))
	return &group, nil
}

// UpdateGroup applies a partial update to the group's descriptive fields.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, userID string) (*domain.Group, error) {
	group, err := s.AuthorizeGroupAction(ctx, userID, groupID, domain.PermissionEdit)
	if err != nil {
		return nil, err
	}

	updated := *group
	if name, ok := req.Name.Get(); ok {
		updated.Name = strings.TrimSpace(name)
	}
	req.Note.ApplyTo(&updated.Note)
	req.PublicPermission.ApplyTo(&updated.PublicPermission)
	if currency, ok := req.PrimaryCurrency.Get(); ok {
		updated.PrimaryCurrency = strings.ToUpper(strings.TrimSpace(currency))
	}
	if err := validateGroup(updated); err != nil {
		return nil, err
	}
	updated.Touch(userID, s.now())

	if err := s.groupRepo.UpdateGroup(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update group", slog.String("group_id", groupID))
		return nil, err
	}
	s.Metrics.ObserveMutation("group_update", nil)
	s.LogInfo(ctx, "Group updated", slog.String("group_id", groupID))
	return &updated, nil
}

// DeleteGroup removes the group and everything under it. Only the owner may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.AuthorizeGroupAction(ctx, userID, groupID, domain.PermissionView)
	if err != nil {
		return err
	}
	if group.OwnerID != userID {
		s.GetLogger(ctx).Warn("Rejected group delete by non-owner", slog.String("group_id", groupID), slog.String("user_id", userID))
		return fmt.Errorf("%w: only the group owner can delete the group", apperrors.ErrForbidden)
	}

	if err := s.groupRepo.DeleteGroup(ctx, groupID); err != nil {
		s.LogError(ctx, err, "Failed to delete group", slog.String("group_id", groupID))
		return err
	}
	s.Metrics.ObserveMutation("group_delete", nil)
	s.LogInfo(ctx, "Group deleted", slog.String("group_id", groupID))
	return nil
}

func validateGroup(g domain.Group) error {
	if g.Name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if len([]rune(g.Name)) > maxGroupName {
		return fmt.Errorf("%w: name must be at most %d characters", apperrors.ErrValidation, maxGroupName)
	}
	if !g.PublicPermission.IsValid() {
		return fmt.Errorf("%w: public_permission must be one of limited, public, private", apperrors.ErrValidation)
	}
	if err := fieldValidator.Var(g.PrimaryCurrency, "required,iso4217"); err != nil {
		return fmt.Errorf("%w: primary_currency %q is not an ISO 4217 code", apperrors.ErrValidation, g.PrimaryCurrency)
	}
	return nil
}
