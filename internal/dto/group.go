package dto

import (
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
)

// --- Group DTOs ---

// CreateGroupRequest defines data for creating a new group.
type CreateGroupRequest struct {
	Name             string                 `json:"name" binding:"required,max=50"`
	Note             string                 `json:"note"`
	PublicPermission domain.GroupVisibility `json:"public_permission" binding:"omitempty,oneof=limited public private"`
	PrimaryCurrency  string                 `json:"primary_currency" binding:"omitempty,iso4217"`
	OwnerName        string                 `json:"owner_name" binding:"omitempty,max=50"` // display name of the owner-member
}

// UpdateGroupRequest defines a partial update of a group.
type UpdateGroupRequest struct {
	Name             Optional[string]                 `json:"name"`
	Note             Optional[string]                 `json:"note"`
	PublicPermission Optional[domain.GroupVisibility] `json:"public_permission"`
	PrimaryCurrency  Optional[string]                 `json:"primary_currency"`
}

// GroupResponse defines data returned for a group.
type GroupResponse struct {
	ID               string                 `json:"id"`
	Owner            string                 `json:"owner"`
	Name             string                 `json:"name"`
	Note             string                 `json:"note"`
	PublicPermission domain.GroupVisibility `json:"public_permission"`
	PrimaryCurrency  string                 `json:"primary_currency"`
	CreatedAt        time.Time              `json:"created_at"`
	LastUpdatedAt    time.Time              `json:"last_updated_at"`
}

// ToGroupResponse converts domain.Group to DTO.
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:               g.GroupID,
		Owner:            g.OwnerID,
		Name:             g.Name,
		Note:             g.Note,
		PublicPermission: g.PublicPermission,
		PrimaryCurrency:  g.PrimaryCurrency,
		CreatedAt:        g.CreatedAt,
		LastUpdatedAt:    g.LastUpdatedAt,
	}
}

// ListGroupsResponse wraps a list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToListGroupsResponse converts a slice of domain.Group to DTO.
func ToListGroupsResponse(gs []domain.Group) ListGroupsResponse {
	list := make([]GroupResponse, len(gs))
	for i := range gs {
		list[i] = ToGroupResponse(&gs[i])
	}
	return ListGroupsResponse{Groups: list}
}
