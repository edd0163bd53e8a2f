package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the cached sum of a member's signed allocation amounts in one
// currency. It is derived state written only by reconciliation.
type Balance struct {
	MemberID      string          `json:"memberID"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ComputeBalance returns the balance implied by a member's from and to totals.
// Both kinds carry signed amounts, so the result is their plain sum.
func ComputeBalance(totalFrom, totalTo decimal.Decimal) decimal.Decimal {
	return totalFrom.Add(totalTo)
}
