package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// CreatePermissionGroupRequest defines the payload for creating a permission group.
// Grants maps module names to action names and is validated against the catalog.
type CreatePermissionGroupRequest struct {
	Name    string              `json:"name" binding:"required,max=100"`
	IsAdmin bool                `json:"isAdmin"`
	Grants  map[string][]string `json:"grants"`
}

// UpdatePermissionGroupRequest replaces the fields that are present.
type UpdatePermissionGroupRequest struct {
	Name    *string              `json:"name" binding:"omitempty,max=100"`
	IsAdmin *bool                `json:"isAdmin"`
	Grants  *map[string][]string `json:"grants"`
}

// PermissionGroupResponse defines the data returned for a permission group.
type PermissionGroupResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	IsAdmin        bool                `json:"isAdmin"`
	Grants         map[string][]string `json:"grants"`
	CatalogVersion int                 `json:"catalogVersion"`
	CreatedAt      time.Time           `json:"createdAt"`
	CreatedBy      string              `json:"createdBy"`
	LastUpdatedAt  time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy  string              `json:"lastUpdatedBy"`
}

// GrantsToMap renders grants as a plain string map for the wire.
func GrantsToMap(g domain.Grants) map[string][]string {
	out := make(map[string][]string, len(g))
	for _, m := range g.Modules() {
		actions := make([]string, len(g[m]))
		for i, a := range g[m] {
			actions[i] = string(a)
		}
		out[string(m)] = actions
	}
	return out
}

// ToPermissionGroupResponse converts a domain.PermissionGroup to its response DTO.
func ToPermissionGroupResponse(g *domain.PermissionGroup) PermissionGroupResponse {
	return PermissionGroupResponse{
		ID:             g.ID,
		Name:           g.Name,
		IsAdmin:        g.IsAdmin,
		Grants:         GrantsToMap(g.Grants),
		CatalogVersion: g.CatalogVersion,
		CreatedAt:      g.CreatedAt,
		CreatedBy:      g.CreatedBy,
		LastUpdatedAt:  g.LastUpdatedAt,
		LastUpdatedBy:  g.LastUpdatedBy,
	}
}

// ToListPermissionGroupResponse converts a slice of groups.
func ToListPermissionGroupResponse(groups []domain.PermissionGroup) []PermissionGroupResponse {
	out := make([]PermissionGroupResponse, len(groups))
	for i := range groups {
		out[i] = ToPermissionGroupResponse(&groups[i])
	}
	return out
}

// CatalogResponse lists every module with its actions.
type CatalogResponse struct {
	Version int                    `json:"version"`
	Modules []domain.CatalogModule `json:"modules"`
}

// CheckPermissionRequest asks whether the caller may perform action on module.
type CheckPermissionRequest struct {
	Module string `json:"module" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// EffectivePermissionsResponse is the flattened permission set of a principal.
type EffectivePermissionsResponse struct {
	PrincipalID string              `json:"principalId"`
	GroupID     string              `json:"groupId"`
	GroupName   string              `json:"groupName"`
	IsAdmin     bool                `json:"isAdmin"`
	Grants      map[string][]string `json:"grants"`
}

// ToEffectivePermissionsResponse converts domain.EffectivePermissions to its response DTO.
func ToEffectivePermissionsResponse(ep *domain.EffectivePermissions) EffectivePermissionsResponse {
	return EffectivePermissionsResponse{
		PrincipalID: ep.PrincipalID,
		GroupID:     ep.GroupID,
		GroupName:   ep.GroupName,
		IsAdmin:     ep.IsAdmin,
		Grants:      GrantsToMap(ep.Grants),
	}
}
