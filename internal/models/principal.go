package models

import "time"

// Principal is a row of principals.
type Principal struct {
	PrincipalID       string `db:"principal_id"`
	Name              string `db:"name"`
	Email             string `db:"email"`
	PermissionGroupID string `db:"permission_group_id"`
	IsActive          bool   `db:"is_active"`
	IdentityID        string `db:"identity_id"`
	AuditFields
}

// Credential is a row of credentials.
type Credential struct {
	CredentialID string    `db:"credential_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
