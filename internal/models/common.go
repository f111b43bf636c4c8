package models

import "time"

// AuditFields are the audit columns shared by every table.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// SystemState is the singleton bootstrap row.
type SystemState struct {
	ID            int       `db:"id"`
	InitializedAt time.Time `db:"initialized_at"`
	InitializedBy string    `db:"initialized_by"`
}
