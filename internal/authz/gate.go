package authz

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/transport"
)

// Gate enforces permission checks in front of admin handlers. It runs before
// the wrapped handler, so a denied request never reaches handler code.
type Gate struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewGate(logger *slog.Logger) *Gate {
	return &Gate{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// Require returns middleware that rejects requests lacking the permission.
// No authenticated user yields 401, an authenticated user without the
// permission yields 403.
func (g *Gate) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.logger.Warn("authorization check failed: no user in context", "path", r.URL.Path)
				g.WriteAppError(w, internal.ErrAuthRequired)
				return
			}

			if !HasPermission(user.Permissions, permission) {
				g.logger.Warn("access denied",
					"user_id", user.ID,
					"required_permission", permission,
					"path", r.URL.Path)
				g.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny passes requests holding at least one of the given permissions.
// Used for lookup endpoints that feed forms of more than one resource.
func (g *Gate) RequireAny(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.logger.Warn("authorization check failed: no user in context", "path", r.URL.Path)
				g.WriteAppError(w, internal.ErrAuthRequired)
				return
			}

			if !HasAnyPermission(user.Permissions, permissions) {
				g.logger.Warn("access denied",
					"user_id", user.ID,
					"required_permissions", permissions,
					"path", r.URL.Path)
				g.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
