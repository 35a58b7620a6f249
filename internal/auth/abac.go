package auth

import (
	"errors"

	"github.com/frahmantamala/crm-auth/internal/position"
)

var ErrSelfAction = errors.New("action not allowed on own account")

// ABACPolicy layers attribute rules about the target user on top of the
// section/action permissions.
type ABACPolicy struct {
	checker PermissionChecker
}

func NewABACPolicy(checker PermissionChecker) *ABACPolicy {
	return &ABACPolicy{checker: checker}
}

// CanViewUser lets anyone read their own profile. Reading others needs
// users.view.
func (p *ABACPolicy) CanViewUser(actor *User, targetID string) bool {
	if actor == nil {
		return false
	}
	if actor.ID == targetID {
		return true
	}
	return p.checker.HasPermission(actor, "users", "view")
}

// CanModifyUser guards position changes and deactivation, which are never
// allowed on the actor's own account.
func (p *ABACPolicy) CanModifyUser(actor *User, targetID, action string) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.ID == targetID {
		return ErrSelfAction
	}
	if !p.checker.HasPermission(actor, "users", action) {
		return ErrForbidden
	}
	return nil
}

// CanGrantPosition decides whether actor may place a user in target. Only
// admins may hand out an admin position or one ranked above their own.
func (p *ABACPolicy) CanGrantPosition(actor *User, target *position.Position) error {
	if actor == nil || target == nil {
		return ErrForbidden
	}
	if p.checker.IsAdmin(actor) {
		return nil
	}
	if target.IsAdmin {
		return ErrOutranked
	}
	if own := ResolvePosition(actor); own == nil || target.Level > own.Level {
		return ErrOutranked
	}
	return nil
}

var (
	ErrForbidden = errors.New("forbidden")
	ErrOutranked = errors.New("position outranks the actor")
)
