// Package auth decides whether a requester may use the catalog commands.
package auth

import (
	"strings"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

// Authorizer checks role names against a fixed allow-list.
type Authorizer struct {
	allowed map[string]struct{}
}

// New builds an Authorizer. Blank entries are ignored; names match exactly.
func New(allowList []string) *Authorizer {
	a := &Authorizer{allowed: make(map[string]struct{}, len(allowList))}
	for _, name := range allowList {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		a.allowed[name] = struct{}{}
	}
	return a
}

// IsAuthorized reports whether any of roles is on the allow-list.
func (a *Authorizer) IsAuthorized(roles []string) bool {
	for _, r := range roles {
		if _, ok := a.allowed[r]; ok {
			return true
		}
	}
	return false
}

// Allowed returns the subset of roles that are on the allow-list, in input order.
func (a *Authorizer) Allowed(roles []model.Role) []model.Role {
	var out []model.Role
	for _, r := range roles {
		if _, ok := a.allowed[r.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RoleNames extracts the names of roles.
func RoleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}
