package domain

// MemberPermission is the access level of a member within its group.
type MemberPermission string

const (
	PermissionEdit        MemberPermission = "edit"
	PermissionView        MemberPermission = "view"
	PermissionDeactivated MemberPermission = "deactivated"
)

// IsValid reports whether p is one of the known permission values.
func (p MemberPermission) IsValid() bool {
	switch p {
	case PermissionEdit, PermissionView, PermissionDeactivated:
		return true
	}
	return false
}

// Allows reports whether a member holding p may perform an action requiring required.
func (p MemberPermission) Allows(required MemberPermission) bool {
	switch required {
	case PermissionEdit:
		return p == PermissionEdit
	case PermissionView:
		return p == PermissionEdit || p == PermissionView
	}
	return false
}

// Member is a participant of a group. UserID is nil for members that are not
// bound to a registered account.
type Member struct {
	MemberID   string           `json:"memberID"`
	GroupID    string           `json:"groupID"`
	UserID     *string          `json:"userID"`
	Name       string           `json:"name"`
	Permission MemberPermission `json:"permission"`
	AuditFields
}

// MemberWithBalances is a member together with its cached per-currency balances.
type MemberWithBalances struct {
	Member
	Balances []Balance `json:"balances"`
}

// MemberBatch groups the three member mutation lists applied in one transaction.
type MemberBatch struct {
	Create []Member
	Update []Member
	Delete []string
}

// IsEmpty reports whether the batch carries no mutation at all.
func (b MemberBatch) IsEmpty() bool {
	return len(b.Create) == 0 && len(b.Update) == 0 && len(b.Delete) == 0
}
