package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the persisted row of the balances table.
type Balance struct {
	MemberID      string          `db:"member_id"`
	Currency      string          `db:"currency"`
	Balance       decimal.Decimal `db:"balance"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
