package models

// Group is the persisted row of the groups table.
type Group struct {
	GroupID          string `db:"group_id"`
	OwnerID          string `db:"owner_id"`
	Name             string `db:"name"`
	Note             string `db:"note"`
	PublicPermission string `db:"public_permission"`
	PrimaryCurrency  string `db:"primary_currency"`
	AuditFields
}
