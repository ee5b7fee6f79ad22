package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	userDomain "github.com/frahmantamala/rbac-admin/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) userDomain.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(query internal.ListQuery) ([]*user.User, int64, error) {
	tx := r.db.Model(&user.User{})
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		tx = tx.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*user.User
	err := tx.Order(fmt.Sprintf("%s %s", query.SortBy, query.SortDirection)).
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var row user.User
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var row user.User
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create inserts the user and their role assignments in one transaction.
func (r *UserRepository) Create(row *user.User, roleIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for _, rid := range roleIDs {
			ur := user.UserRole{UserID: row.ID, RoleID: rid}
			if err := tx.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) Update(row *user.User) error {
	return r.db.Save(row).Error
}

// Delete removes the user and their role assignments in one transaction.
func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&user.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&user.User{}).Error
	})
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountWithRoles() (int64, error) {
	var count int64
	err := r.db.Model(&user.UserRole{}).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *UserRepository) RoleNames(userID int64) ([]string, error) {
	var names []string
	err := r.db.Model(&role.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *UserRepository) RoleIDsByNames(names []string, guard string) (map[string]int64, error) {
	var rows []*role.Role
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

// SyncRoles replaces the user's role set with the given ids. Only the diff
// against the current set is applied, inside one transaction.
func (r *UserRepository) SyncRoles(userID int64, roleIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current []int64
		if err := tx.Model(&user.UserRole{}).
			Where("user_id = ?", userID).
			Pluck("role_id", &current).Error; err != nil {
			return err
		}

		wanted := make(map[int64]struct{}, len(roleIDs))
		for _, id := range roleIDs {
			wanted[id] = struct{}{}
		}
		have := make(map[int64]struct{}, len(current))
		for _, id := range current {
			have[id] = struct{}{}
		}

		for _, id := range roleIDs {
			if _, ok := have[id]; ok {
				continue
			}
			ur := user.UserRole{UserID: userID, RoleID: id}
			if err := tx.Create(&ur).Error; err != nil {
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
			if err := tx.Where("user_id = ? AND role_id IN ?", userID, removed).
				Delete(&user.UserRole{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
