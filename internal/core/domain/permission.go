package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
)

// Module identifies an area of the back-office that permissions are granted on.
type Module string

const (
	ModuleAccounts  Module = "accounts"
	ModuleCompanies Module = "companies"
	ModuleEmployees Module = "employees"
	ModuleSafes     Module = "safes"
	ModuleTickets   Module = "tickets"
	ModuleAudit     Module = "audit"
	ModuleSettings  Module = "settings"
	ModuleDashboard Module = "dashboard"
	ModuleReports   Module = "reports"
	ModuleBranches  Module = "branches"
	ModuleLeaves    Module = "leaves"
)

// Action is a verb a module supports.
type Action string

const (
	ActionView       Action = "view"
	ActionAdd        Action = "add"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionConfirm    Action = "confirm"
	ActionSettlement Action = "settlement"
	ActionCurrency   Action = "currency"
	ActionApprove    Action = "approve"
	ActionExport     Action = "export"
)

// CatalogVersion is bumped whenever the catalog below changes. Groups record the
// version their grants were validated against.
const CatalogVersion = 1

// CatalogModule is one module of the permission catalog with its ordered actions.
type CatalogModule struct {
	Module  Module   `json:"module"`
	Actions []Action `json:"actions"`
}

var crud = []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}

// permissionCatalog is fixed at build time and never mutated.
var permissionCatalog = []CatalogModule{
	{Module: ModuleAccounts, Actions: []Action{ActionView, ActionAdd, ActionEdit, ActionDelete, ActionConfirm, ActionSettlement, ActionCurrency}},
	{Module: ModuleCompanies, Actions: crud},
	{Module: ModuleEmployees, Actions: crud},
	{Module: ModuleSafes, Actions: crud},
	{Module: ModuleTickets, Actions: []Action{ActionView, ActionAdd, ActionEdit, ActionDelete, ActionExport}},
	{Module: ModuleAudit, Actions: []Action{ActionView}},
	{Module: ModuleSettings, Actions: []Action{ActionView, ActionEdit}},
	{Module: ModuleDashboard, Actions: []Action{ActionView}},
	{Module: ModuleReports, Actions: []Action{ActionView, ActionExport}},
	{Module: ModuleBranches, Actions: crud},
	{Module: ModuleLeaves, Actions: []Action{ActionView, ActionAdd, ActionEdit, ActionDelete, ActionApprove}},
}

// catalogIndex maps module -> action -> position, used for lookups and stable ordering.
var catalogIndex = func() map[Module]map[Action]int {
	idx := make(map[Module]map[Action]int, len(permissionCatalog))
	for _, m := range permissionCatalog {
		actions := make(map[Action]int, len(m.Actions))
		for i, a := range m.Actions {
			actions[a] = i
		}
		idx[m.Module] = actions
	}
	return idx
}()

var moduleOrder = func() map[Module]int {
	order := make(map[Module]int, len(permissionCatalog))
	for i, m := range permissionCatalog {
		order[m.Module] = i
	}
	return order
}()

// Catalog returns a copy of the permission catalog.
func Catalog() []CatalogModule {
	out := make([]CatalogModule, len(permissionCatalog))
	for i, m := range permissionCatalog {
		out[i] = CatalogModule{Module: m.Module, Actions: append([]Action(nil), m.Actions...)}
	}
	return out
}

// IsKnownModule reports whether m is part of the catalog.
func IsKnownModule(m Module) bool {
	_, ok := catalogIndex[m]
	return ok
}

// IsKnownAction reports whether the catalog lists a for module m.
func IsKnownAction(m Module, a Action) bool {
	actions, ok := catalogIndex[m]
	if !ok {
		return false
	}
	_, ok = actions[a]
	return ok
}

// Grants maps each module to the actions granted on it.
type Grants map[Module][]Action

// FullGrants returns every action of every module.
func FullGrants() Grants {
	g := make(Grants, len(permissionCatalog))
	for _, m := range permissionCatalog {
		g[m.Module] = append([]Action(nil), m.Actions...)
	}
	return g
}

// ParseGrants converts a loosely typed grants map (as received on the wire) into
// validated, normalized Grants.
func ParseGrants(raw map[string][]string) (Grants, error) {
	g := make(Grants, len(raw))
	for m, actions := range raw {
		module := Module(strings.ToLower(strings.TrimSpace(m)))
		for _, a := range actions {
			g[module] = append(g[module], Action(strings.ToLower(strings.TrimSpace(a))))
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g.Normalize(), nil
}

// Validate checks every module and action against the catalog.
func (g Grants) Validate() error {
	modules := make([]Module, 0, len(g))
	for m := range g {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i] < modules[j] })

	for _, m := range modules {
		if !IsKnownModule(m) {
			return apperrors.Validationf("unknown module %q", m)
		}
		for _, a := range g[m] {
			if !IsKnownAction(m, a) {
				return apperrors.Validationf("unknown action %q for module %q", a, m)
			}
		}
	}
	return nil
}

// Normalize removes duplicates and empty modules and orders actions by catalog order.
func (g Grants) Normalize() Grants {
	out := make(Grants, len(g))
	for m, actions := range g {
		seen := make(map[Action]struct{}, len(actions))
		var uniq []Action
		for _, a := range actions {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			uniq = append(uniq, a)
		}
		if len(uniq) == 0 {
			continue
		}
		order := catalogIndex[m]
		sort.SliceStable(uniq, func(i, j int) bool { return order[uniq[i]] < order[uniq[j]] })
		out[m] = uniq
	}
	return out
}

// Has reports whether action a is granted on module m.
func (g Grants) Has(m Module, a Action) bool {
	for _, granted := range g[m] {
		if granted == a {
			return true
		}
	}
	return false
}

// Modules returns the granted modules in catalog order.
func (g Grants) Modules() []Module {
	out := make([]Module, 0, len(g))
	for m := range g {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return moduleOrder[out[i]] < moduleOrder[out[j]] })
	return out
}

// Clone returns a deep copy.
func (g Grants) Clone() Grants {
	if g == nil {
		return nil
	}
	out := make(Grants, len(g))
	for m, actions := range g {
		out[m] = append([]Action(nil), actions...)
	}
	return out
}

// SuperAdminGroupName is the name of the group created during bootstrap.
const SuperAdminGroupName = "super_admin"

// PermissionGroup is a named bundle of grants. IsAdmin overrides Grants entirely.
type PermissionGroup struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsAdmin        bool   `json:"isAdmin"`
	Grants         Grants `json:"grants"`
	CatalogVersion int    `json:"catalogVersion"`
	AuditFields
}

// Validate checks the group is storable.
func (g PermissionGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return apperrors.Validationf("missing permission group name")
	}
	return g.Grants.Validate()
}

// Clone returns a deep copy of the group.
func (g PermissionGroup) Clone() PermissionGroup {
	g.Grants = g.Grants.Clone()
	return g
}

// NewSuperAdminGroup builds the bootstrap group. Grants lists the full catalog for
// documentation only; IsAdmin is what authorizes.
func NewSuperAdminGroup(id, createdBy string, now time.Time) PermissionGroup {
	return PermissionGroup{
		ID:             id,
		Name:           SuperAdminGroupName,
		IsAdmin:        true,
		Grants:         FullGrants(),
		CatalogVersion: CatalogVersion,
		AuditFields:    NewAuditFields(createdBy, now),
	}
}
