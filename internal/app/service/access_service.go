package service

import (
	"fmt"

	"sales_system/internal/domain/model"
)

// AccessService answers permission and module checks against the static
// role tables. The tables are fixed at compile time; the constructor only
// validates them and builds membership sets.
type AccessService struct {
	permissions map[string]map[string]struct{}
	modules     map[string]map[string]struct{}
}

// NewAccessService validates the static tables against the role enumeration.
// An unknown role key or a role missing from either table is a programming
// error and refuses startup rather than silently yielding empty sets.
func NewAccessService() (*AccessService, error) {
	for role := range model.RolePermissions {
		if !model.IsValidRole(role) {
			return nil, fmt.Errorf("permission table references unknown role %q", role)
		}
	}
	for role := range model.RoleModules {
		if !model.IsValidRole(role) {
			return nil, fmt.Errorf("module table references unknown role %q", role)
		}
	}
	for _, role := range model.Roles {
		if _, ok := model.RolePermissions[role]; !ok {
			return nil, fmt.Errorf("role %q has no permission set", role)
		}
		if _, ok := model.RoleModules[role]; !ok {
			return nil, fmt.Errorf("role %q has no module set", role)
		}
	}

	return &AccessService{
		permissions: buildSets(model.RolePermissions),
		modules:     buildSets(model.RoleModules),
	}, nil
}

// HasPermission reports whether the session's role grants the permission.
// A nil session (no one logged in) never has any permission.
func (s *AccessService) HasPermission(sess *model.Session, permission string) bool {
	if sess == nil {
		return false
	}
	_, ok := s.permissions[sess.Role][permission]
	return ok
}

// CanAccessModule reports whether the session's role may enter the module.
func (s *AccessService) CanAccessModule(sess *model.Session, module string) bool {
	if sess == nil {
		return false
	}
	_, ok := s.modules[sess.Role][module]
	return ok
}

// AccessibleModules returns the modules for the session's role in table order.
func (s *AccessService) AccessibleModules(sess *model.Session) []string {
	if sess == nil {
		return nil
	}
	return append([]string(nil), model.RoleModules[sess.Role]...)
}

// PermissionsFor returns the permissions for the session's role in table order.
func (s *AccessService) PermissionsFor(sess *model.Session) []string {
	if sess == nil {
		return nil
	}
	return append([]string(nil), model.RolePermissions[sess.Role]...)
}

func buildSets(table map[string][]string) map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(table))
	for role, entries := range table {
		set := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			set[entry] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}
