package role

import (
	"time"

	roleDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/rbac-admin/internal/permission"
)

// DefaultGuard matches the permission store's guard scope.
const DefaultGuard = permission.DefaultGuard

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	GuardName   string    `json:"guard_name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		GuardName:   r.GuardName,
		Permissions: []string{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModelWithPermissions(r *roleDatamodel.Role, permissions []string) *Role {
	domainRole := FromDataModel(r)
	if permissions != nil {
		domainRole.Permissions = permissions
	}
	return domainRole
}
