package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	"github.com/SscSPs/easysplit_backend/internal/models"
	"github.com/SscSPs/easysplit_backend/internal/utils/mapping"
	"github.com/SscSPs/easysplit_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxRecordRepository struct {
	BaseRepository
}

// newPgxRecordRepository creates a new repository for records and their allocations.
func newPgxRecordRepository(pool *pgxpool.Pool) portsrepo.RecordRepositoryWithTx {
	return &PgxRecordRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RecordRepositoryWithTx = (*PgxRecordRepository)(nil)

const recordSelectQuery = `
SELECT
	r.record_id, r.group_id, r.what, r.amount, r.type, r.currency, r.exchange_rate,
	r.note, r.is_equal_split,
	r.created_at, r.created_by, r.last_updated_at, r.last_updated_by
FROM records r
`

func (r *PgxRecordRepository) getRecords(ctx context.Context, filterQuery string, args ...any) ([]domain.Record, error) {
	rows, err := r.Pool.Query(ctx, recordSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, mapReadError(err, "failed to query records")
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Record])
	if err != nil {
		return nil, mapReadError(err, "failed to collect record rows")
	}
	records := make([]domain.Record, len(ms))
	for i, m := range ms {
		records[i] = mapping.ToDomainRecord(m)
	}
	return records, nil
}

// attachAllocations loads allocations for all records in one query.
func (r *PgxRecordRepository) attachAllocations(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.RecordID
	}

	query := `
		SELECT allocation_id, record_id, member_id, kind, amount, position
		FROM allocations
		WHERE record_id = ANY($1::uuid[])
		ORDER BY record_id, kind, position;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return mapReadError(err, "failed to query allocations")
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Allocation])
	if err != nil {
		return mapReadError(err, "failed to collect allocation rows")
	}
	byRecord := make(map[string][]domain.Allocation, len(records))
	for _, m := range ms {
		byRecord[m.RecordID] = append(byRecord[m.RecordID], mapping.ToDomainAllocation(m))
	}
	for i := range records {
		mapping.AttachAllocations(&records[i], byRecord[records[i].RecordID])
	}
	return nil
}

func (r *PgxRecordRepository) FindRecordByID(ctx context.Context, groupID, recordID string) (*domain.Record, error) {
	records, err := r.getRecords(ctx, `WHERE r.record_id = $1 AND r.group_id = $2;`, recordID, groupID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError("record " + recordID)
	}
	if err := r.attachAllocations(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (r *PgxRecordRepository) ListRecordsByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Record, *string, error) {
	args := []any{groupID}
	filter := `WHERE r.group_id = $1`
	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter += ` AND (r.created_at, r.record_id) < ($2, $3::uuid)`
		args = append(args, createdAt, lastID)
	}
	// one extra row tells whether another page exists
	filter += fmt.Sprintf(` ORDER BY r.created_at DESC, r.record_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	records, err := r.getRecords(ctx, filter, args...)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.RecordID)
		token = &t
	}
	if err := r.attachAllocations(ctx, records); err != nil {
		return nil, nil, err
	}
	return records, token, nil
}

func (r *PgxRecordRepository) InsertRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error {
	m := mapping.ToModelRecord(record)
	query := `
		INSERT INTO records (
			record_id, group_id, what, amount, type, currency, exchange_rate, note, is_equal_split,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, query,
		m.RecordID,
		m.GroupID,
		m.What,
		m.Amount,
		m.Type,
		m.Currency,
		m.ExchangeRate,
		m.Note,
		m.IsEqualSplit,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to insert record "+m.RecordID)
	}
	return nil
}

func (r *PgxRecordRepository) UpdateRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error {
	m := mapping.ToModelRecord(record)
	query := `
		UPDATE records
		SET what = $2, amount = $3, type = $4, currency = $5, exchange_rate = $6, note = $7,
		    is_equal_split = $8, last_updated_at = $9, last_updated_by = $10
		WHERE record_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.RecordID,
		m.What,
		m.Amount,
		m.Type,
		m.Currency,
		m.ExchangeRate,
		m.Note,
		m.IsEqualSplit,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to update record "+m.RecordID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("record " + m.RecordID)
	}
	return nil
}

func (r *PgxRecordRepository) DeleteRecordInTx(ctx context.Context, tx pgx.Tx, recordID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM records WHERE record_id = $1;`, recordID)
	if err != nil {
		return mapWriteError(err, "failed to delete record "+recordID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("record " + recordID)
	}
	return nil
}

func (r *PgxRecordRepository) InsertAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}
	query := `
		INSERT INTO allocations (allocation_id, record_id, member_id, kind, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	batch := &pgx.Batch{}
	for _, a := range allocations {
		m := mapping.ToModelAllocation(a)
		batch.Queue(query, m.AllocationID, m.RecordID, m.MemberID, m.Kind, m.Amount, m.Position)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapWriteError(err, "failed to insert allocations")
	}
	return nil
}

func (r *PgxRecordRepository) DeleteAllocationsInTx(ctx context.Context, tx pgx.Tx, recordID string, kinds ...domain.AllocationKind) error {
	query := `DELETE FROM allocations WHERE record_id = $1`
	args := []any{recordID}
	if len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		query += ` AND kind = ANY($2::text[])`
		args = append(args, names)
	}
	if _, err := tx.Exec(ctx, query+";", args...); err != nil {
		return mapWriteError(err, "failed to delete allocations of record "+recordID)
	}
	return nil
}

func (r *PgxRecordRepository) SumAllocationsInTx(ctx context.Context, tx pgx.Tx, groupID, memberID, currency string, kind domain.AllocationKind) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(a.amount), 0)
		FROM allocations a
		JOIN records r ON r.record_id = a.record_id
		WHERE a.member_id = $1 AND a.kind = $2 AND r.currency = $3 AND r.group_id = $4;
	`
	var total decimal.Decimal
	if err := tx.QueryRow(ctx, query, memberID, string(kind), currency, groupID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum "+string(kind)+" allocations of member "+memberID, err)
	}
	return total, nil
}
