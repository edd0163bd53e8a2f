package models

import "github.com/shopspring/decimal"

// Record is the persisted row of the records table.
type Record struct {
	RecordID     string          `db:"record_id"`
	GroupID      string          `db:"group_id"`
	What         string          `db:"what"`
	Amount       decimal.Decimal `db:"amount"`
	Type         string          `db:"type"`
	Currency     string          `db:"currency"`
	ExchangeRate decimal.Decimal `db:"exchange_rate"`
	Note         string          `db:"note"`
	IsEqualSplit bool            `db:"is_equal_split"`
	AuditFields
}

// Allocation is the persisted row of the allocations table.
type Allocation struct {
	AllocationID string          `db:"allocation_id"`
	RecordID     string          `db:"record_id"`
	MemberID     string          `db:"member_id"`
	Kind         string          `db:"kind"`
	Amount       decimal.Decimal `db:"amount"`
	Position     int             `db:"position"`
}
