package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	permissionDomain "github.com/frahmantamala/rbac-admin/internal/permission"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permissionDomain.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) List(query internal.ListQuery) ([]*permission.Permission, int64, error) {
	tx := r.db.Model(&permission.Permission{})
	if query.Search != "" {
		tx = tx.Where("LOWER(name) LIKE LOWER(?)", "%"+query.Search+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*permission.Permission
	err := tx.Order(fmt.Sprintf("%s %s", query.SortBy, query.SortDirection)).
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *PermissionRepository) GetAll() ([]*permission.Permission, error) {
	var rows []*permission.Permission
	err := r.db.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *PermissionRepository) GetByID(id int64) (*permission.Permission, error) {
	var row permission.Permission
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PermissionRepository) GetByName(name, guard string) (*permission.Permission, error) {
	var row permission.Permission
	err := r.db.Where("name = ? AND guard_name = ?", name, guard).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByGroup filters on the derived group after the guard scan; the group is
// computed from the name, never stored.
func (r *PermissionRepository) GetByGroup(group, guard string) ([]*permission.Permission, error) {
	var rows []*permission.Permission
	err := r.db.Where("guard_name = ?", guard).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	matched := make([]*permission.Permission, 0, len(rows))
	for _, row := range rows {
		if permissionDomain.GroupOf(row.Name) == group {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (r *PermissionRepository) Create(p *permission.Permission) error {
	return r.db.Create(p).Error
}

func (r *PermissionRepository) Update(p *permission.Permission) error {
	return r.db.Save(p).Error
}

// Delete removes the permission and its role attachments in one transaction
// so a concurrent reader never sees a half-detached permission.
func (r *PermissionRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&role.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&permission.Permission{}).Error
	})
}

func (r *PermissionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&permission.Permission{}).Count(&count).Error
	return count, err
}
