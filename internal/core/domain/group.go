package domain

// GroupVisibility controls who outside the member list may read a group.
type GroupVisibility string

const (
	VisibilityLimited GroupVisibility = "limited"
	VisibilityPublic  GroupVisibility = "public"
	VisibilityPrivate GroupVisibility = "private"
)

// IsValid reports whether v is one of the known visibility values.
func (v GroupVisibility) IsValid() bool {
	switch v {
	case VisibilityLimited, VisibilityPublic, VisibilityPrivate:
		return true
	}
	return false
}

// Group is a set of members sharing expenses.
type Group struct {
	GroupID          string          `json:"groupID"`
	OwnerID          string          `json:"ownerID"` // user that may never be removed through member batches
	Name             string          `json:"name"`
	Note             string          `json:"note"`
	PublicPermission GroupVisibility `json:"publicPermission"`
	PrimaryCurrency  string          `json:"primaryCurrency"`
	AuditFields
}

// IsOwnerMember reports whether m is the member bound to the group's owner.
func (g Group) IsOwnerMember(m Member) bool {
	return m.GroupID == g.GroupID && m.UserID != nil && *m.UserID == g.OwnerID
}
