package permission

import (
	errors "github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/common/validation"
)

type CreatePermissionDTO struct {
	Name      string `json:"name"`
	GuardName string `json:"guard_name,omitempty"`
}

type UpdatePermissionDTO struct {
	Name string `json:"name"`
}

func (d *CreatePermissionDTO) Validate() *errors.AppError {
	if d.GuardName == "" {
		d.GuardName = DefaultGuard
	}
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	return v.Validate()
}

func (d UpdatePermissionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	return v.Validate()
}

// Stats mirrors the dashboard counters shown on the permission index page.
type Stats struct {
	TotalPermissions int64 `json:"total_permissions"`
	PermissionGroups int   `json:"permission_groups"`
}
