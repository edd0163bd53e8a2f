package dto

import (
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Member batch DTOs ---

// CreateMemberRequest describes a member to insert.
type CreateMemberRequest struct {
	UserID     *string                 `json:"user_id"`
	Name       string                  `json:"name" binding:"required,max=50"`
	Permission domain.MemberPermission `json:"permission" binding:"required,oneof=edit view deactivated"`
}

// UpdateMemberRequest overwrites the user binding, name and permission of an existing member.
type UpdateMemberRequest struct {
	ID         string                  `json:"id" binding:"required,uuid"`
	UserID     *string                 `json:"user_id"`
	Name       string                  `json:"name" binding:"required,max=50"`
	Permission domain.MemberPermission `json:"permission" binding:"required,oneof=edit view deactivated"`
}

// DeleteMemberRequest names a member to delete.
type DeleteMemberRequest struct {
	ID string `json:"id" binding:"required,uuid"`
}

// MemberBatchRequest applies creates, then updates, then deletes in one transaction.
// All three lists are required, empty lists are fine.
type MemberBatchRequest struct {
	Create []CreateMemberRequest `json:"create" binding:"required,dive"`
	Update []UpdateMemberRequest `json:"update" binding:"required,dive"`
	Delete []DeleteMemberRequest `json:"delete" binding:"required,dive"`
}

// UpdateIDs returns the ids listed for update.
func (r MemberBatchRequest) UpdateIDs() []string {
	ids := make([]string, len(r.Update))
	for i, u := range r.Update {
		ids[i] = u.ID
	}
	return ids
}

// DeleteIDs returns the ids listed for delete.
func (r MemberBatchRequest) DeleteIDs() []string {
	ids := make([]string, len(r.Delete))
	for i, d := range r.Delete {
		ids[i] = d.ID
	}
	return ids
}

// BalanceResponse is one cached balance of a member.
type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// MemberResponse defines data returned for a member.
type MemberResponse struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Permission domain.MemberPermission `json:"permission"`
	UserID     *string                 `json:"user_id"`
	GroupID    string                  `json:"group_id"`
	Balances   []BalanceResponse       `json:"balances"`
}

// ToMemberResponse converts domain.MemberWithBalances to DTO.
func ToMemberResponse(m domain.MemberWithBalances) MemberResponse {
	balances := make([]BalanceResponse, len(m.Balances))
	for i, b := range m.Balances {
		balances[i] = BalanceResponse{Balance: b.Balance, Currency: b.Currency}
	}
	return MemberResponse{
		ID:         m.MemberID,
		Name:       m.Name,
		Permission: m.Permission,
		UserID:     m.UserID,
		GroupID:    m.GroupID,
		Balances:   balances,
	}
}

// ToMemberListResponse converts members with balances to DTOs.
func ToMemberListResponse(ms []domain.MemberWithBalances) []MemberResponse {
	list := make([]MemberResponse, len(ms))
	for i, m := range ms {
		list[i] = ToMemberResponse(m)
	}
	return list
}
