package role

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
	GetPaginated(query internal.ListQuery) ([]*Role, internal.ListQuery, int64, error)
	GetAll() ([]*Role, error)
	GetByID(id int64) (*Role, error)
	Create(dto CreateRoleDTO) (*Role, error)
	Update(id int64, dto UpdateRoleDTO) (*Role, error)
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

// Index handles GET /admin/roles
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	query := h.ParseListQuery(r)

	roles, query, total, err := h.Service.GetPaginated(query)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	principal, _ := authz.UserFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"roles":   internal.NewPage(roles, query, total, r.URL.Path),
		"filters": query,
		"can": authz.Capabilities(principal, map[string]string{
			"create": authz.PermRoleCreate,
			"edit":   authz.PermRoleEdit,
			"delete": authz.PermRoleDelete,
		}),
	})
}

// All handles GET /admin/roles/all, used by the user form role picker.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.GetAll()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

// Stats handles GET /admin/roles/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStats()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// Show handles GET /admin/roles/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if role == nil {
		h.WriteAppError(w, internal.ErrRoleNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"role": role})
}

// Store handles POST /admin/roles
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Role created successfully.",
		"role":    role,
	})
}

// Update handles PATCH /admin/roles/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.Update(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Role updated successfully.",
		"role":    role,
	})
}

// Destroy handles DELETE /admin/roles/{id}
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Role deleted successfully.",
	})
}
