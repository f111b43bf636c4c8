package domain

import (
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
)

// Principal is an employee identity that initiates operations.
// Principals are deactivated, never hard deleted.
type Principal struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PermissionGroupID string `json:"permissionGroupId"`
	Active            bool   `json:"active"`
	IdentityID        string `json:"-"` // credential id at the identity provider
	AuditFields
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the principal is storable.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.Validationf("missing employee name")
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return apperrors.Validationf("invalid email address")
	}
	if p.PermissionGroupID == "" {
		return apperrors.Validationf("missing permission group")
	}
	return nil
}
