package models

// Member is the persisted row of the members table. UserID is NULL for unbound members.
type Member struct {
	MemberID   string  `db:"member_id"`
	GroupID    string  `db:"group_id"`
	UserID     *string `db:"user_id"`
	Name       string  `db:"name"`
	Permission string  `db:"permission"`
	AuditFields
}
