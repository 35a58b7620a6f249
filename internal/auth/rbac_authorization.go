package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/pkg/logger"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	checker PermissionChecker
}

func NewRBACAuthorization(checker PermissionChecker, lg *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(lg),
		checker:     checker,
	}
}

func (ra *RBACAuthorization) guard(name string, allowed func(u *User) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				logger.FromOr(r.Context(), ra.Logger).Warn("authorization check failed: user not found in context")
				ra.WriteAppError(w, r, internal.ErrAuthRequired)
				return
			}

			if !allowed(user) {
				logger.FromOr(r.Context(), ra.Logger).Warn("access denied",
					"user_id", user.ID,
					"required", name,
					"position", ResolvePosition(user).Name)
				ra.WriteAppError(w, r, internal.ErrInsufficientPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits users for whom HasPermission(section, action) holds.
func (ra *RBACAuthorization) RequirePermission(section, action string) func(http.Handler) http.Handler {
	return ra.guard(section+"."+action, func(u *User) bool {
		return ra.checker.HasPermission(u, section, action)
	})
}

func (ra *RBACAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.guard("manager", ra.checker.IsManager)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.guard("admin", ra.checker.IsAdmin)
}
