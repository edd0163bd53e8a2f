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

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member data.
func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberRepositoryWithTx {
	return &PgxMemberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MemberRepositoryWithTx = (*PgxMemberRepository)(nil)

const memberSelectQuery = `
SELECT
	m.member_id, m.group_id, m.user_id, m.name, m.permission,
	m.created_at, m.created_by, m.last_updated_at, m.last_updated_by
FROM members m
`

func getMembers(ctx context.Context, q querier, filterQuery string, args ...any) ([]domain.Member, error) {
	rows, err := q.Query(ctx, memberSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, mapReadError(err, "failed to query members")
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Member])
	if err != nil {
		return nil, mapReadError(err, "failed to collect member rows")
	}
	return mapping.ToDomainMemberSlice(members), nil
}

const membersByGroupFilter = `WHERE m.group_id = $1 ORDER BY m.created_at, m.member_id;`

func (r *PgxMemberRepository) ListMembersByGroupID(ctx context.Context, groupID string) ([]domain.Member, error) {
	return getMembers(ctx, r.Pool, membersByGroupFilter, groupID)
}

func (r *PgxMemberRepository) ListMembersByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]domain.Member, error) {
	return getMembers(ctx, tx, membersByGroupFilter, groupID)
}

const membersByIDsFilter = `WHERE m.group_id = $1 AND m.member_id = ANY($2::uuid[]);`

func (r *PgxMemberRepository) FindMembersByIDs(ctx context.Context, groupID string, memberIDs []string) (map[string]domain.Member, error) {
	return findMembersByIDs(ctx, r.Pool, groupID, memberIDs)
}

func (r *PgxMemberRepository) FindMembersByIDsInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) (map[string]domain.Member, error) {
	return findMembersByIDs(ctx, tx, groupID, memberIDs)
}

func findMembersByIDs(ctx context.Context, q querier, groupID string, memberIDs []string) (map[string]domain.Member, error) {
	result := make(map[string]domain.Member, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}
	members, err := getMembers(ctx, q, membersByIDsFilter, groupID, memberIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		result[m.MemberID] = m
	}
	return result, nil
}

func (r *PgxMemberRepository) FindMemberByUserID(ctx context.Context, groupID, userID string) (*domain.Member, error) {
	members, err := getMembers(ctx, r.Pool, `WHERE m.group_id = $1 AND m.user_id = $2;`, groupID, userID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, apperrors.NewNotFoundError("member for user " + userID + " in group " + groupID)
	}
	return &members[0], nil
}

func (r *PgxMemberRepository) InsertMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error {
	if len(members) == 0 {
		return nil
	}
	query := `
		INSERT INTO members (
			member_id, group_id, user_id, name, permission,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, member := range members {
		m := mapping.ToModelMember(member)
		batch.Queue(query,
			m.MemberID,
			m.GroupID,
			m.UserID,
			m.Name,
			m.Permission,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapWriteError(err, "failed to insert members")
	}
	return nil
}

func (r *PgxMemberRepository) UpdateMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error {
	if len(members) == 0 {
		return nil
	}
	query := `
		UPDATE members
		SET user_id = $3, name = $4, permission = $5, last_updated_at = $6, last_updated_by = $7
		WHERE member_id = $1 AND group_id = $2;
	`
	batch := &pgx.Batch{}
	for _, member := range members {
		m := mapping.ToModelMember(member)
		batch.Queue(query, m.MemberID, m.GroupID, m.UserID, m.Name, m.Permission, m.LastUpdatedAt, m.LastUpdatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	for _, member := range members {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return mapWriteError(err, "failed to update member "+member.MemberID)
		}
		if tag.RowsAffected() == 0 {
			_ = br.Close()
			return apperrors.NewNotFoundError("member " + member.MemberID)
		}
	}
	if err := br.Close(); err != nil {
		return mapWriteError(err, "failed to update members")
	}
	return nil
}

func (r *PgxMemberRepository) DeleteMembersInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM members WHERE group_id = $1 AND member_id = ANY($2::uuid[]);`, groupID, memberIDs)
	if err != nil {
		return mapWriteError(err, "failed to delete members of group "+groupID)
	}
	if tag.RowsAffected() != int64(len(memberIDs)) {
		return apperrors.NewNotFoundError("one or more members of group " + groupID)
	}
	return nil
}
