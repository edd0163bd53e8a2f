package pgsql

import (
	"context"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	"github.com/SscSPs/easysplit_backend/internal/models"
	"github.com/SscSPs/easysplit_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for group data.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryWithTx {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryWithTx
var _ portsrepo.GroupRepositoryWithTx = (*PgxGroupRepository)(nil)

const groupSelectQuery = `
SELECT
	g.group_id, g.owner_id, g.name, g.note, g.public_permission, g.primary_currency,
	g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
FROM groups g
`

func (r *PgxGroupRepository) getGroups(ctx context.Context, filterQuery string, args ...any) ([]domain.Group, error) {
	rows, err := r.Pool.Query(ctx, groupSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, mapReadError(err, "failed to query groups")
	}
	defer rows.Close()

	groups, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Group])
	if err != nil {
		return nil, mapReadError(err, "failed to collect group rows")
	}
	return mapping.ToDomainGroupSlice(groups), nil
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	groups, err := r.getGroups(ctx, `WHERE g.group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.NewNotFoundError("group " + groupID)
	}
	return &groups[0], nil
}

func (r *PgxGroupRepository) ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error) {
	query := `
		WHERE g.owner_id = $1
		   OR EXISTS (SELECT 1 FROM members m WHERE m.group_id = g.group_id AND m.user_id = $1)
		ORDER BY g.created_at DESC, g.group_id;
	`
	return r.getGroups(ctx, query, userID)
}

func (r *PgxGroupRepository) SaveGroupInTx(ctx context.Context, tx pgx.Tx, group domain.Group) error {
	m := mapping.ToModelGroup(group)
	query := `
		INSERT INTO groups (
			group_id, owner_id, name, note, public_permission, primary_currency,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.GroupID,
		m.OwnerID,
		m.Name,
		m.Note,
		m.PublicPermission,
		m.PrimaryCurrency,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to save group "+m.GroupID)
	}
	return nil
}

func (r *PgxGroupRepository) UpdateGroup(ctx context.Context, group domain.Group) error {
	m := mapping.ToModelGroup(group)
	query := `
		UPDATE groups
		SET name = $2, note = $3, public_permission = $4, primary_currency = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE group_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.GroupID,
		m.Name,
		m.Note,
		m.PublicPermission,
		m.PrimaryCurrency,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to update group "+m.GroupID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("group " + m.GroupID)
	}
	return nil
}

func (r *PgxGroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM groups WHERE group_id = $1;`, groupID)
	if err != nil {
		return mapWriteError(err, "failed to delete group "+groupID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("group " + groupID)
	}
	return nil
}
