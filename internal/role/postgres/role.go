package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	roleDomain "github.com/frahmantamala/rbac-admin/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) roleDomain.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(query internal.ListQuery) ([]*role.Role, int64, error) {
	tx := r.db.Model(&role.Role{})
	if query.Search != "" {
		tx = tx.Where("LOWER(name) LIKE LOWER(?)", "%"+query.Search+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*role.Role
	err := tx.Order(fmt.Sprintf("%s %s", query.SortBy, query.SortDirection)).
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *RoleRepository) GetAll() ([]*role.Role, error) {
	var rows []*role.Role
	err := r.db.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *RoleRepository) GetByID(id int64) (*role.Role, error) {
	var row role.Role
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) GetByName(name, guard string) (*role.Role, error) {
	var row role.Role
	err := r.db.Where("name = ? AND guard_name = ?", name, guard).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create inserts the role and its permission attachments in one transaction.
func (r *RoleRepository) Create(row *role.Role, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			rp := role.RolePermission{RoleID: row.ID, PermissionID: pid}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RoleRepository) Update(row *role.Role) error {
	return r.db.Save(row).Error
}

// Delete removes the role, its permission attachments and its user
// assignments in one transaction.
func (r *RoleRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&role.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&user.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&role.Role{}).Error
	})
}

func (r *RoleRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&role.Role{}).Count(&count).Error
	return count, err
}

func (r *RoleRepository) CountWithPermissions() (int64, error) {
	var count int64
	err := r.db.Model(&role.RolePermission{}).
		Distinct("role_id").
		Count(&count).Error
	return count, err
}

func (r *RoleRepository) PermissionNames(roleID int64) ([]string, error) {
	var names []string
	err := r.db.Model(&permission.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Pluck("permissions.name", &names).Error
	return names, err
}

func (r *RoleRepository) PermissionIDsByNames(names []string, guard string) (map[string]int64, error) {
	var rows []*permission.Permission
	err := r.db.Where("name IN ? AND guard_name = ?", names, guard).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(rows))
	for _, row := range rows {
		byName[row.Name] = row.ID
	}
	return byName, nil
}

// SyncPermissions replaces the role's permission set with the given ids.
// The diff against the current set is computed first and only the additions
// and removals are applied, inside one transaction.
func (r *RoleRepository) SyncPermissions(roleID int64, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current []int64
		if err := tx.Model(&role.RolePermission{}).
			Where("role_id = ?", roleID).
			Pluck("permission_id", &current).Error; err != nil {
			return err
		}

		wanted := make(map[int64]struct{}, len(permissionIDs))
		for _, id := range permissionIDs {
			wanted[id] = struct{}{}
		}
		have := make(map[int64]struct{}, len(current))
		for _, id := range current {
			have[id] = struct{}{}
		}

		for _, id := range permissionIDs {
			if _, ok := have[id]; ok {
				continue
			}
			rp := role.RolePermission{RoleID: roleID, PermissionID: id}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}

		var removed []int64
		for _, id := range current {
			if _, ok := wanted[id]; !ok {
				removed = append(removed, id)
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("role_id = ? AND permission_id IN ?", roleID, removed).
				Delete(&role.RolePermission{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
