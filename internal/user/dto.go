package user

import (
	errors "github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type UpdateUserDTO struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("roles", d.Roles).Required()
	return v.Validate()
}

// Validate allows an empty password, which means keep the current one.
func (d UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	if d.Password != "" {
		v.Field("password", d.Password).MinLength(8)
	}
	v.Field("roles", d.Roles).Required()
	return v.Validate()
}

// Stats mirrors the counters on the user index page.
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	UsersWithRoles int64 `json:"users_with_roles"`
}
