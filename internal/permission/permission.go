package permission

import (
	"strings"
	"time"

	permissionDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
)

// DefaultGuard is the guard scope used when a request does not name one.
const DefaultGuard = "web"

// groupSeparators are the characters that split a permission name into
// group prefix and action, e.g. "user-create" belongs to group "user".
const groupSeparators = "-._"

type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group derives the grouping prefix from the permission name. Names without
// a separator form their own group.
func (p *Permission) Group() string {
	return GroupOf(p.Name)
}

func GroupOf(name string) string {
	if i := strings.IndexAny(name, groupSeparators); i >= 0 {
		return name[:i]
	}
	return name
}

func FromDataModel(p *permissionDatamodel.Permission) *Permission {
	return &Permission{
		ID:        p.ID,
		Name:      p.Name,
		GuardName: p.GuardName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToDataModel(p *Permission) *permissionDatamodel.Permission {
	return &permissionDatamodel.Permission{
		ID:        p.ID,
		Name:      p.Name,
		GuardName: p.GuardName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
