package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecordType classifies a record.
type RecordType string

const (
	RecordExpense  RecordType = "expense"
	RecordIncome   RecordType = "income"
	RecordTransfer RecordType = "transfer"
)

// IsValid reports whether t is one of the known record types.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordExpense, RecordIncome, RecordTransfer:
		return true
	}
	return false
}

// AllocationKind tells whether an allocation contributes to or receives from a record.
type AllocationKind string

const (
	AllocationFrom AllocationKind = "from"
	AllocationTo   AllocationKind = "to"
)

// Allocation links a member to a record with a signed amount.
type Allocation struct {
	AllocationID string          `json:"allocationID"`
	RecordID     string          `json:"recordID"`
	MemberID     string          `json:"memberID"`
	Kind         AllocationKind  `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Position     int             `json:"position"`
}

// Record is a single money movement inside a group.
type Record struct {
	RecordID     string          `json:"recordID"`
	GroupID      string          `json:"groupID"`
	What         string          `json:"what"`
	Amount       decimal.Decimal `json:"amount"`
	Type         RecordType      `json:"type"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Note         string          `json:"note"`
	IsEqualSplit bool            `json:"isEqualSplit"`
	From         []Allocation    `json:"from"`
	To           []Allocation    `json:"to"`
	AuditFields
}

const maxWhatLength = 100

// Column limits: amounts are NUMERIC(20, 4), exchange rates NUMERIC(20, 8).
const (
	amountScale       = 4
	exchangeRateScale = 8
)

var (
	amountLimit       = decimal.New(1, 20-amountScale)
	exchangeRateLimit = decimal.New(1, 20-exchangeRateScale)
)

var (
	ErrRecordWhatRequired       = errors.New("what is required")
	ErrRecordWhatTooLong        = fmt.Errorf("what must be at most %d characters", maxWhatLength)
	ErrRecordInvalidType        = errors.New("type must be one of expense, income, transfer")
	ErrRecordCurrencyRequired   = errors.New("currency is required")
	ErrRecordInvalidExchange    = errors.New("exchange_rate must be greater than zero")
	ErrAllocationMemberRequired = errors.New("allocation member_id is required")
	ErrAmountOutOfRange         = fmt.Errorf("amounts must be below 10^%d with at most %d decimal places", 20-amountScale, amountScale)
	ErrExchangeRateOutOfRange   = fmt.Errorf("exchange_rate must be below 10^%d with at most %d decimal places", 20-exchangeRateScale, exchangeRateScale)
)

// Validate checks the scalar fields and the allocation shapes of r.
// It does not require from and to amounts to balance.
func (r Record) Validate() error {
	what := strings.TrimSpace(r.What)
	if what == "" {
		return ErrRecordWhatRequired
	}
	if len([]rune(what)) > maxWhatLength {
		return ErrRecordWhatTooLong
	}
	if !r.Type.IsValid() {
		return ErrRecordInvalidType
	}
	if strings.TrimSpace(r.Currency) == "" {
		return ErrRecordCurrencyRequired
	}
	if !r.ExchangeRate.IsPositive() {
		return ErrRecordInvalidExchange
	}
	if !fitsNumeric(r.ExchangeRate, exchangeRateScale, exchangeRateLimit) {
		return ErrExchangeRateOutOfRange
	}
	if !fitsNumeric(r.Amount, amountScale, amountLimit) {
		return ErrAmountOutOfRange
	}
	for _, a := range r.Allocations() {
		if a.MemberID == "" {
			return ErrAllocationMemberRequired
		}
		if !fitsNumeric(a.Amount, amountScale, amountLimit) {
			return ErrAmountOutOfRange
		}
	}
	return nil
}

// fitsNumeric reports whether d is stored without rounding in a column of the
// given scale whose absolute values stay below limit.
func fitsNumeric(d decimal.Decimal, scale int32, limit decimal.Decimal) bool {
	return d.Equal(d.Truncate(scale)) && d.Abs().LessThan(limit)
}

// Allocations returns the from entries followed by the to entries.
func (r Record) Allocations() []Allocation {
	all := make([]Allocation, 0, len(r.From)+len(r.To))
	all = append(all, r.From...)
	all = append(all, r.To...)
	return all
}

// MemberIDs returns the distinct member ids referenced by r's allocations, in first-seen order.
func (r Record) MemberIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, a := range r.Allocations() {
		if _, ok := seen[a.MemberID]; ok {
			continue
		}
		seen[a.MemberID] = struct{}{}
		ids = append(ids, a.MemberID)
	}
	return ids
}

// NewAllocations builds allocations of one kind for recordID, keeping input order.
func NewAllocations(recordID string, kind AllocationKind, entries []Allocation, newID func() string) []Allocation {
	out := make([]Allocation, 0, len(entries))
	for i, e := range entries {
		out = append(out, Allocation{
			AllocationID: newID(),
			RecordID:     recordID,
			MemberID:     e.MemberID,
			Kind:         kind,
			Amount:       e.Amount,
			Position:     i,
		})
	}
	return out
}
