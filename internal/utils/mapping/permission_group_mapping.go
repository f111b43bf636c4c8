package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/models"
)

// ToModelPermissionGroup converts a domain PermissionGroup to a model PermissionGroup
func ToModelPermissionGroup(d domain.PermissionGroup) (models.PermissionGroup, error) {
	grants := d.Grants
	if grants == nil {
		grants = domain.Grants{}
	}
	raw, err := json.Marshal(grants)
	if err != nil {
		return models.PermissionGroup{}, fmt.Errorf("marshal grants: %w", err)
	}
	return models.PermissionGroup{
		GroupID:        d.ID,
		Name:           d.Name,
		IsAdmin:        d.IsAdmin,
		Grants:         raw,
		CatalogVersion: d.CatalogVersion,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainPermissionGroup converts a model PermissionGroup to a domain PermissionGroup.
// Stored grants that no longer match the catalog are dropped rather than failing the read.
func ToDomainPermissionGroup(m models.PermissionGroup) (domain.PermissionGroup, error) {
	var raw map[string][]string
	if len(m.Grants) > 0 {
		if err := json.Unmarshal(m.Grants, &raw); err != nil {
			return domain.PermissionGroup{}, fmt.Errorf("unmarshal grants of group %s: %w", m.GroupID, err)
		}
	}
	grants := make(domain.Grants, len(raw))
	for module, actions := range raw {
		for _, action := range actions {
			if domain.IsKnownAction(domain.Module(module), domain.Action(action)) {
				grants[domain.Module(module)] = append(grants[domain.Module(module)], domain.Action(action))
			}
		}
	}
	return domain.PermissionGroup{
		ID:             m.GroupID,
		Name:           m.Name,
		IsAdmin:        m.IsAdmin,
		Grants:         grants.Normalize(),
		CatalogVersion: m.CatalogVersion,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}, nil
}
