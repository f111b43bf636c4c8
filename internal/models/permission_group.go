package models

// PermissionGroup is a row of permission_groups. Grants is the JSONB document
// {"module": ["action", ...]}.
type PermissionGroup struct {
	GroupID        string `db:"group_id"`
	Name           string `db:"name"`
	IsAdmin        bool   `db:"is_admin"`
	Grants         []byte `db:"grants"`
	CatalogVersion int    `db:"catalog_version"`
	AuditFields
}
