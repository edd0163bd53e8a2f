package repositories

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// GroupReader defines read operations for group data
type GroupReader interface {
	// FindGroupByID retrieves a specific group by its ID.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroupsByUserID retrieves groups the user owns or is a bound member of.
	ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error)
}

// GroupWriter defines write operations for group data
type GroupWriter interface {
	// SaveGroupInTx persists a new group within tx.
	SaveGroupInTx(ctx context.Context, tx pgx.Tx, group domain.Group) error

	// UpdateGroup overwrites the mutable fields of an existing group.
	UpdateGroup(ctx context.Context, group domain.Group) error

	// DeleteGroup removes a group; members, records, allocations and balances cascade.
	DeleteGroup(ctx context.Context, groupID string) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}

// GroupRepositoryWithTx extends GroupRepositoryFacade with transaction capabilities
type GroupRepositoryWithTx interface {
	GroupRepositoryFacade
	TransactionManager
}
