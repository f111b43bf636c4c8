package mapping

import (
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/models"
)

// ToModelPrincipal converts a domain Principal to a model Principal
func ToModelPrincipal(d domain.Principal) models.Principal {
	return models.Principal{
		PrincipalID:       d.ID,
		Name:              d.Name,
		Email:             d.Email,
		PermissionGroupID: d.PermissionGroupID,
		IsActive:          d.Active,
		IdentityID:        d.IdentityID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPrincipal converts a model Principal to a domain Principal
func ToDomainPrincipal(m models.Principal) domain.Principal {
	return domain.Principal{
		ID:                m.PrincipalID,
		Name:              m.Name,
		Email:             m.Email,
		PermissionGroupID: m.PermissionGroupID,
		Active:            m.IsActive,
		IdentityID:        m.IdentityID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPrincipals converts a slice of model Principals to domain Principals
func ToDomainPrincipals(ms []models.Principal) []domain.Principal {
	ds := make([]domain.Principal, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPrincipal(m)
	}
	return ds
}

// ToModelCredential converts a domain Credential to a model Credential
func ToModelCredential(d domain.Credential) models.Credential {
	return models.Credential{
		CredentialID: d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainCredential converts a model Credential to a domain Credential
func ToDomainCredential(m models.Credential) domain.Credential {
	return domain.Credential{
		ID:           m.CredentialID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}
