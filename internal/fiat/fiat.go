// Package fiat provides the client for the permission service.
package fiat

import "context"

// Permission is the resolved permission view for a user or service account.
type Permission struct {
	Admin bool
	Roles []string
}

// HasAllRoles reports whether the permission includes every role in want.
func (p *Permission) HasAllRoles(want []string) bool {
	granted := make(map[string]struct{}, len(p.Roles))
	for _, role := range p.Roles {
		granted[role] = struct{}{}
	}
	for _, role := range want {
		if _, ok := granted[role]; !ok {
			return false
		}
	}
	return true
}

// Status reports whether the permission service is wired into this process.
// An unconfigured service is a capability that is simply not present, not a
// transient failure.
type Status interface {
	IsEnabled() bool
}

// EnabledStatus is a fixed capability flag.
type EnabledStatus bool

// IsEnabled implements Status.
func (s EnabledStatus) IsEnabled() bool { return bool(s) }

// PermissionEvaluator resolves granted permissions. A nil Permission with a
// nil error means the identity is unknown to the permission service.
type PermissionEvaluator interface {
	GetPermission(ctx context.Context, id string) (*Permission, error)
}
