package dto

import (
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Record DTOs ---

// AllocationRequest is one (member, signed amount) entry of a from or to list.
type AllocationRequest struct {
	MemberID string          `json:"member_id" binding:"required,uuid"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateRecordRequest defines data for creating a record with its allocations.
type CreateRecordRequest struct {
	What         string              `json:"what" binding:"required,max=100"`
	Amount       decimal.Decimal     `json:"amount"`
	Type         domain.RecordType   `json:"type" binding:"required,oneof=expense income transfer"`
	Currency     string              `json:"currency" binding:"omitempty,iso4217"`
	ExchangeRate *decimal.Decimal    `json:"exchange_rate" binding:"omitempty,decimal_gt0"`
	Note         string              `json:"note"`
	IsEqualSplit *bool               `json:"is_equal_split"`
	FromMembers  []AllocationRequest `json:"from_members" binding:"required,dive"`
	ToMembers    []AllocationRequest `json:"to_members" binding:"required,dive"`
}

// UpdateRecordRequest defines a partial update. Supplying from_members or
// to_members replaces that allocation list wholesale.
type UpdateRecordRequest struct {
	What         Optional[string]              `json:"what"`
	Amount       Optional[decimal.Decimal]     `json:"amount"`
	Type         Optional[domain.RecordType]   `json:"type"`
	Currency     Optional[string]              `json:"currency"`
	ExchangeRate Optional[decimal.Decimal]     `json:"exchange_rate"`
	Note         Optional[string]              `json:"note"`
	IsEqualSplit Optional[bool]                `json:"is_equal_split"`
	FromMembers  Optional[[]AllocationRequest] `json:"from_members"`
	ToMembers    Optional[[]AllocationRequest] `json:"to_members"`
}

// ListRecordsParams defines query parameters for listing records.
type ListRecordsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ToAllocations converts request entries into domain allocations without ids.
func ToAllocations(entries []AllocationRequest) []domain.Allocation {
	out := make([]domain.Allocation, len(entries))
	for i, e := range entries {
		out[i] = domain.Allocation{MemberID: e.MemberID, Amount: e.Amount}
	}
	return out
}

// AllocationResponse is one allocation entry of a record.
type AllocationResponse struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// RecordResponse defines data returned for a record.
type RecordResponse struct {
	ID            string               `json:"id"`
	GroupID       string               `json:"group_id"`
	What          string               `json:"what"`
	Amount        decimal.Decimal      `json:"amount"`
	Type          domain.RecordType    `json:"type"`
	Currency      string               `json:"currency"`
	ExchangeRate  decimal.Decimal      `json:"exchange_rate"`
	Note          string               `json:"note"`
	IsEqualSplit  bool                 `json:"is_equal_split"`
	FromMembers   []AllocationResponse `json:"from_members"`
	ToMembers     []AllocationResponse `json:"to_members"`
	CreatedAt     time.Time            `json:"created_at"`
	CreatedBy     string               `json:"created_by"`
	LastUpdatedAt time.Time            `json:"last_updated_at"`
	LastUpdatedBy string               `json:"last_updated_by"`
}

func toAllocationResponses(as []domain.Allocation) []AllocationResponse {
	out := make([]AllocationResponse, len(as))
	for i, a := range as {
		out[i] = AllocationResponse{MemberID: a.MemberID, Amount: a.Amount}
	}
	return out
}

// ToRecordResponse converts domain.Record to DTO.
func ToRecordResponse(r *domain.Record) RecordResponse {
	return RecordResponse{
		ID:            r.RecordID,
		GroupID:       r.GroupID,
		What:          r.What,
		Amount:        r.Amount,
		Type:          r.Type,
		Currency:      r.Currency,
		ExchangeRate:  r.ExchangeRate,
		Note:          r.Note,
		IsEqualSplit:  r.IsEqualSplit,
		FromMembers:   toAllocationResponses(r.From),
		ToMembers:     toAllocationResponses(r.To),
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
		LastUpdatedAt: r.LastUpdatedAt,
		LastUpdatedBy: r.LastUpdatedBy,
	}
}

// ListRecordsResponse wraps a page of records.
type ListRecordsResponse struct {
	Records   []RecordResponse `json:"records"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ToListRecordsResponse converts a page of domain.Record to DTO.
func ToListRecordsResponse(rs []domain.Record, nextToken *string) *ListRecordsResponse {
	list := make([]RecordResponse, len(rs))
	for i := range rs {
		list[i] = ToRecordResponse(&rs[i])
	}
	return &ListRecordsResponse{Records: list, NextToken: nextToken}
}

// ReconcileResponse lists the balances rewritten by a group reconciliation.
type ReconcileResponse struct {
	Balances []MemberBalanceResponse `json:"balances"`
}

// MemberBalanceResponse is a balance tagged with its member.
type MemberBalanceResponse struct {
	MemberID string          `json:"member_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// ToReconcileResponse converts balances to DTO.
func ToReconcileResponse(bs []domain.Balance) ReconcileResponse {
	list := make([]MemberBalanceResponse, len(bs))
	for i, b := range bs {
		list[i] = MemberBalanceResponse{MemberID: b.MemberID, Currency: b.Currency, Balance: b.Balance}
	}
	return ReconcileResponse{Balances: list}
}
