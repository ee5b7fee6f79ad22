package permission

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
	GetPaginated(query internal.ListQuery) ([]*Permission, internal.ListQuery, int64, error)
	GetByID(id int64) (*Permission, error)
	Create(dto CreatePermissionDTO) (*Permission, error)
	Update(id int64, dto UpdatePermissionDTO) (*Permission, error)
	Delete(id int64) error
	Groups() ([]string, error)
	GetByGroup(group string) ([]*Permission, error)
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

// Index handles GET /admin/permissions
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	query := h.ParseListQuery(r)

	permissions, query, total, err := h.Service.GetPaginated(query)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	principal, _ := authz.UserFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"permissions": internal.NewPage(permissions, query, total, r.URL.Path),
		"filters":     query,
		"can": authz.Capabilities(principal, map[string]string{
			"create": authz.PermPermissionCreate,
			"edit":   authz.PermPermissionEdit,
			"delete": authz.PermPermissionDelete,
		}),
	})
}

// Groups handles GET /admin/permissions/groups
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.Groups()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// ByGroup handles GET /admin/permissions/groups/{group}, used by the role
// form to render one checkbox section per group.
func (h *Handler) ByGroup(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if group == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid permission group")
		return
	}

	permissions, err := h.Service.GetByGroup(group)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// Stats handles GET /admin/permissions/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStats()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// Show handles GET /admin/permissions/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	p, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if p == nil {
		h.WriteAppError(w, internal.ErrPermissionNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permission": p})
}

// Store handles POST /admin/permissions
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var dto CreatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Permission created successfully.",
		"permission": p,
	})
}

// Update handles PATCH /admin/permissions/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var dto UpdatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Update(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Permission updated successfully.",
		"permission": p,
	})
}

// Destroy handles DELETE /admin/permissions/{id}
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(chi.URLParam(r, "id"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Permission deleted successfully.",
	})
}
