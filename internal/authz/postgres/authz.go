package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/rbac-admin/internal/authz"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
)

type AuthzRepository struct {
	db *gorm.DB
}

func NewAuthzRepository(db *gorm.DB) authz.RepositoryAPI {
	return &AuthzRepository{db: db}
}

func (r *AuthzRepository) RoleNames(userID int64) ([]string, error) {
	var names []string
	err := r.db.Model(&role.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error
	return names, err
}

// GrantsByRole returns the permission names attached to each of the user's
// roles, keyed by role name. Roles without permissions map to an empty slice.
func (r *AuthzRepository) GrantsByRole(userID int64) (map[string][]string, error) {
	type grantRow struct {
		RoleName       string
		PermissionName string
	}

	names, err := r.RoleNames(userID)
	if err != nil {
		return nil, err
	}

	grants := make(map[string][]string, len(names))
	for _, name := range names {
		grants[name] = []string{}
	}

	var rows []grantRow
	err = r.db.Table("roles").
		Select("roles.name AS role_name, permissions.name AS permission_name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_roles.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		grants[row.RoleName] = append(grants[row.RoleName], row.PermissionName)
	}
	return grants, nil
}
