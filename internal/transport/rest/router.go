package rest

import (
	"net/http"

	"github.com/frahmantamala/crm-auth/internal/auth"
	"github.com/frahmantamala/crm-auth/internal/position"
	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/internal/transport/middleware"
	"github.com/frahmantamala/crm-auth/internal/transport/swagger"
	"github.com/frahmantamala/crm-auth/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes is everything RegisterAllRoutes mounts. Nil handlers skip their
// route group.
type Routes struct {
	Base         *transport.BaseHandler
	Health       *HealthHandler
	Auth         *auth.Handler
	Users        *user.Handler
	Positions    *position.Handler
	RBAC         *auth.RBACAuthorization
	LoginLimiter *middleware.RateLimiter
	Metrics      *middleware.Metrics

	AllowedOrigins []string
	MetricsPath    string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, rt Routes) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(rt.Base))
	router.Use(middleware.CORS(rt.AllowedOrigins))
	if rt.Metrics != nil {
		router.Use(rt.Metrics.Instrument)
	}

	if rt.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, rt.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}
	if rt.Metrics != nil && rt.MetricsPath != "" {
		router.Handle(rt.MetricsPath, rt.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if rt.Health != nil {
			r.Get("/ping", rt.Health.Ping)
			r.Get("/health", rt.Health.Health)
		}

		if rt.Auth == nil {
			return
		}

		r.Group(func(lr chi.Router) {
			lr.Use(middleware.Logging)

			lr.Route("/auth", func(ar chi.Router) {
				login := http.Handler(http.HandlerFunc(rt.Auth.Login))
				if rt.LoginLimiter != nil {
					login = rt.LoginLimiter.Middleware(login)
				}
				ar.Method(http.MethodPost, "/login", login)
				ar.Post("/refresh", rt.Auth.RefreshToken)
				ar.Post("/logout", rt.Auth.Logout)
			})

			lr.Group(func(pr chi.Router) {
				pr.Use(rt.Auth.AuthMiddleware)

				pr.Get("/auth/me", rt.Auth.Me)
				pr.Post("/auth/change-password", rt.Auth.ChangePassword)

				if rt.Positions != nil {
					pr.Get("/positions", rt.Positions.GetPositions)
				}

				if rt.Users != nil && rt.RBAC != nil {
					pr.Route("/users", func(ur chi.Router) {
						ur.With(rt.RBAC.RequireManager()).Get("/", rt.Users.ListUsers)
						ur.With(rt.RBAC.RequirePermission("users", "create")).Post("/", rt.Users.CreateUser)
						ur.Get("/{id}", rt.Users.GetUser)
						ur.With(rt.RBAC.RequirePermission("users", "edit")).Patch("/{id}/position", rt.Users.AssignPosition)
						ur.With(rt.RBAC.RequirePermission("users", "delete")).Patch("/{id}/deactivate", rt.Users.DeactivateUser)
					})
				}
			})
		})
	})
}
