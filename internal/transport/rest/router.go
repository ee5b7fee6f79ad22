package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/authz"
	"github.com/frahmantamala/rbac-admin/internal/permission"
	"github.com/frahmantamala/rbac-admin/internal/role"
	"github.com/frahmantamala/rbac-admin/internal/transport/middleware"
	"github.com/frahmantamala/rbac-admin/internal/transport/swagger"
	"github.com/frahmantamala/rbac-admin/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Role       *role.Handler
	Permission *permission.Handler
}

// RegisterAllRoutes wires every endpoint. Admin routes sit behind the auth
// middleware and a per-route permission gate, so the gate rejects a request
// before any handler runs.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, gate *authz.Gate, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/ping", healthHandler.Ping)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)

			sr.Group(func(ar chi.Router) {
				ar.Use(handlers.Auth.AuthMiddleware)
				ar.Get("/me", handlers.Auth.Me)
			})
		})

		r.Route("/admin", func(ar chi.Router) {
			ar.Use(handlers.Auth.AuthMiddleware)

			ar.Route("/users", func(ur chi.Router) {
				ur.With(gate.Require(authz.PermUserList)).Get("/", handlers.User.Index)
				ur.With(gate.Require(authz.PermUserList)).Get("/stats", handlers.User.Stats)
				ur.With(gate.Require(authz.PermUserList)).Get("/{id}", handlers.User.Show)
				ur.With(gate.Require(authz.PermUserCreate)).Post("/", handlers.User.Store)
				ur.With(gate.Require(authz.PermUserEdit)).Patch("/{id}", handlers.User.Update)
				ur.With(gate.Require(authz.PermUserDelete)).Delete("/{id}", handlers.User.Destroy)
			})

			ar.Route("/roles", func(rr chi.Router) {
				rr.With(gate.Require(authz.PermRoleList)).Get("/", handlers.Role.Index)
				rr.With(gate.RequireAny(authz.PermRoleList, authz.PermUserCreate, authz.PermUserEdit)).
					Get("/all", handlers.Role.All)
				rr.With(gate.Require(authz.PermRoleList)).Get("/stats", handlers.Role.Stats)
				rr.With(gate.Require(authz.PermRoleList)).Get("/{id}", handlers.Role.Show)
				rr.With(gate.Require(authz.PermRoleCreate)).Post("/", handlers.Role.Store)
				rr.With(gate.Require(authz.PermRoleEdit)).Patch("/{id}", handlers.Role.Update)
				rr.With(gate.Require(authz.PermRoleDelete)).Delete("/{id}", handlers.Role.Destroy)
			})

			ar.Route("/permissions", func(pr chi.Router) {
				pr.With(gate.Require(authz.PermPermissionList)).Get("/", handlers.Permission.Index)
				pr.With(gate.RequireAny(authz.PermPermissionList, authz.PermRoleCreate, authz.PermRoleEdit)).
					Get("/groups", handlers.Permission.Groups)
				pr.With(gate.RequireAny(authz.PermPermissionList, authz.PermRoleCreate, authz.PermRoleEdit)).
					Get("/groups/{group}", handlers.Permission.ByGroup)
				pr.With(gate.Require(authz.PermPermissionList)).Get("/stats", handlers.Permission.Stats)
				pr.With(gate.Require(authz.PermPermissionList)).Get("/{id}", handlers.Permission.Show)
				pr.With(gate.Require(authz.PermPermissionCreate)).Post("/", handlers.Permission.Store)
				pr.With(gate.Require(authz.PermPermissionEdit)).Patch("/{id}", handlers.Permission.Update)
				pr.With(gate.Require(authz.PermPermissionDelete)).Delete("/{id}", handlers.Permission.Destroy)
			})
		})
	})
}
