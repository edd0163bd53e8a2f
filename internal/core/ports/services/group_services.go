package services

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/dto"
)

// GroupReaderSvc defines read operations for group data
type GroupReaderSvc interface {
	// GetGroupByID retrieves a group the user may view.
	GetGroupByID(ctx context.Context, groupID, userID string) (*domain.Group, error)

	// ListUserGroups retrieves groups the user owns or is a bound member of.
	ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error)
}

// GroupWriterSvc defines write operations for group data
type GroupWriterSvc interface {
	// CreateGroup persists a new group together with its owner-member.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error)

	// UpdateGroup applies a partial update; only members with edit permission may do so.
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, userID string) (*domain.Group, error)

	// DeleteGroup removes the group and everything under it. Owner only.
	DeleteGroup(ctx context.Context, groupID, userID string) error
}

// GroupAuthorizerSvc resolves whether a user may act on a group.
type GroupAuthorizerSvc interface {
	// AuthorizeGroupAction returns the group when userID holds at least required on it.
	// Unknown groups and non-members yield ErrNotFound, insufficient permission ErrForbidden.
	AuthorizeGroupAction(ctx context.Context, userID, groupID string, required domain.MemberPermission) (*domain.Group, error)
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
	GroupAuthorizerSvc
}
