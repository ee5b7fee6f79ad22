package role

import (
	errors "github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/common/validation"
)

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	GuardName   string   `json:"guard_name,omitempty"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleDTO struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (d *CreateRoleDTO) Validate() *errors.AppError {
	if d.GuardName == "" {
		d.GuardName = DefaultGuard
	}
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	return v.Validate()
}

func (d UpdateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	return v.Validate()
}

// Stats mirrors the counters on the role index page.
type Stats struct {
	TotalRoles           int64 `json:"total_roles"`
	RolesWithPermissions int64 `json:"roles_with_permissions"`
}
