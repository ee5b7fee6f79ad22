package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/authz"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/frahmantamala/rbac-admin/pkg/logger"
)

type ServiceAPI interface {
	GetPaginated(query internal.ListQuery) ([]*User, internal.ListQuery, int64, error)
	GetByID(id int64) (*User, error)
	Create(dto CreateUserDTO) (*User, error)
	Update(id int64, dto UpdateUserDTO) (*User, error)
	Delete(id int64) error
	GetStats() (Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Index handles GET /admin/users
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	query := h.ParseListQuery(r)

	users, query, total, err := h.Service.GetPaginated(query)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	principal, _ := authz.UserFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":   internal.NewPage(users, query, total, r.URL.Path),
		"filters": query,
		"can": authz.Capabilities(principal, map[string]string{
			"create": authz.PermUserCreate,
			"edit":   authz.PermUserEdit,
			"delete": authz.PermUserDelete,
		}),
	})
}

// Stats handles GET /admin/users/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStats()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// Show handles GET /admin/users/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if u == nil {
		h.WriteAppError(w, internal.ErrUserNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// Store handles POST /admin/users
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully.",
		"user":    u,
	})
}

// Update handles PATCH /admin/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Update(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully.",
		"user":    u,
	})
}

// Destroy handles DELETE /admin/users/{id}
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully.",
	})
}
