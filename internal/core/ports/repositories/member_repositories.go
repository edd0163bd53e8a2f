package repositories

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// MemberReader defines read operations for member data
type MemberReader interface {
	// ListMembersByGroupID retrieves every member of a group ordered by creation.
	ListMembersByGroupID(ctx context.Context, groupID string) ([]domain.Member, error)

	// FindMembersByIDs retrieves the members of groupID among memberIDs, keyed by member ID.
	// Missing ids are simply absent from the map.
	FindMembersByIDs(ctx context.Context, groupID string, memberIDs []string) (map[string]domain.Member, error)

	// FindMemberByUserID retrieves the member of groupID bound to userID.
	FindMemberByUserID(ctx context.Context, groupID, userID string) (*domain.Member, error)
}

// MemberTxReader reads members inside an open transaction.
type MemberTxReader interface {
	ListMembersByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]domain.Member, error)

	// FindMembersByIDsInTx is FindMembersByIDs on tx, so a concurrent member
	// delete cannot slip between the lookup and the writes that depend on it.
	FindMembersByIDsInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) (map[string]domain.Member, error)
}

// MemberWriter defines write operations for member data. All writes run inside tx.
type MemberWriter interface {
	InsertMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error

	// UpdateMembersInTx overwrites user, name and permission of existing members.
	UpdateMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error

	DeleteMembersInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) error
}

// MemberRepositoryFacade combines all member-related repository interfaces
type MemberRepositoryFacade interface {
	MemberReader
	MemberTxReader
	MemberWriter
}

// MemberRepositoryWithTx extends MemberRepositoryFacade with transaction capabilities
type MemberRepositoryWithTx interface {
	MemberRepositoryFacade
	TransactionManager
}
