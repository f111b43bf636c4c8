package domain

import "fmt"

// Decision is the outcome of an authorization check: Allow, or Deny with a reason.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow grants the request.
func Allow() Decision { return Decision{Allowed: true} }

// Deny refuses the request with a human readable reason.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// PermissionName renders module.action, e.g. "tickets.delete".
func PermissionName(m Module, a Action) string {
	return fmt.Sprintf("%s.%s", m, a)
}

// Evaluate decides whether principal may perform action on module given its
// resolved group. It fails closed: a nil or mismatched group, an inactive
// principal, or an unknown module/action all deny. IsAdmin is checked before the
// catalog so admins are allowed everything.
func Evaluate(principal *Principal, group *PermissionGroup, module Module, action Action) Decision {
	if principal == nil {
		return Deny("unknown principal")
	}
	if !principal.Active {
		return Deny("principal is inactive")
	}
	if group == nil || group.ID == "" || group.ID != principal.PermissionGroupID {
		return Deny("permission group not found")
	}
	if group.IsAdmin {
		return Allow()
	}
	if !IsKnownModule(module) {
		return Deny(fmt.Sprintf("unknown module: %s", module))
	}
	if !IsKnownAction(module, action) {
		return Deny(fmt.Sprintf("unknown action: %s", PermissionName(module, action)))
	}
	if group.Grants.Has(module, action) {
		return Allow()
	}
	return Deny("insufficient permission: " + PermissionName(module, action))
}

// EffectivePermissions is the flattened permission set of a principal with
// IsAdmin resolved to the full catalog.
type EffectivePermissions struct {
	PrincipalID string `json:"principalId"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
	IsAdmin     bool   `json:"isAdmin"`
	Grants      Grants `json:"grants"`
}

// Effective flattens the grants of group for principal. Inactive principals
// have no effective permissions.
func Effective(principal Principal, group PermissionGroup) EffectivePermissions {
	ep := EffectivePermissions{
		PrincipalID: principal.ID,
		GroupID:     group.ID,
		GroupName:   group.Name,
		IsAdmin:     group.IsAdmin,
		Grants:      Grants{},
	}
	if !principal.Active {
		ep.IsAdmin = false
		return ep
	}
	if group.IsAdmin {
		ep.Grants = FullGrants()
		return ep
	}
	for m, actions := range group.Grants.Normalize() {
		for _, a := range actions {
			if IsKnownAction(m, a) {
				ep.Grants[m] = append(ep.Grants[m], a)
			}
		}
	}
	return ep
}
