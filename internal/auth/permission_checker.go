package auth

import "github.com/frahmantamala/crm-auth/internal/position"

// criticalPermissions are granted to every authenticated user whatever the
// position document says, so incomplete permission data cannot lock anyone
// out of baseline screens.
var criticalPermissions = map[string]map[string]bool{
	"dashboard": {"view": true},
	"book":      {"view": true, "edit": true},
	"post-deal": {"view": true, "edit": true, "create": true},
	"settings":  {"view": true, "edit": true},
}

// IsCriticalPermission reports whether section.action is in the baseline set.
func IsCriticalPermission(section, action string) bool {
	return criticalPermissions[section][action]
}

type PermissionChecker interface {
	HasPermission(u *User, section, action string) bool
	IsAdmin(u *User) bool
	IsManager(u *User) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() *DefaultPermissionChecker {
	return &DefaultPermissionChecker{}
}

// ResolvePosition returns the stored position, or the role-derived synthetic
// one when position_id is null or points nowhere.
func ResolvePosition(u *User) *position.Position {
	if u == nil {
		return nil
	}
	if u.Position != nil {
		return u.Position
	}
	return position.Synthetic(u.Role)
}

// IsAdmin uses the resolved position's is_admin flag as the only signal.
func (c *DefaultPermissionChecker) IsAdmin(u *User) bool {
	p := ResolvePosition(u)
	return p != nil && p.IsAdmin
}

func (c *DefaultPermissionChecker) IsManager(u *User) bool {
	return ResolvePosition(u).IsManagerOrAbove()
}

func (c *DefaultPermissionChecker) HasPermission(u *User, section, action string) bool {
	if u == nil {
		return false
	}
	p := ResolvePosition(u)
	if p.IsAdmin {
		return true
	}
	if p.Permissions.Granted(section, action) {
		return true
	}
	return IsCriticalPermission(section, action)
}
