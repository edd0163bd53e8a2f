package services

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/dto"
)

// MemberSvcFacade defines member list and batch mutation operations
type MemberSvcFacade interface {
	// ListMembers returns the group's members with their balances.
	ListMembers(ctx context.Context, groupID, userID string) ([]domain.MemberWithBalances, error)

	// ApplyMemberBatch atomically creates, updates and deletes members, refusing
	// any change to the owner-member, then returns the fresh member list.
	ApplyMemberBatch(ctx context.Context, groupID string, req dto.MemberBatchRequest, userID string) ([]domain.MemberWithBalances, error)
}
