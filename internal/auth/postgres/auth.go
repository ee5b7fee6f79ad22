package postgres

import (
	"gorm.io/gorm"

	authDomain "github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) authDomain.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetUserByEmail(email string) (*user.User, error) {
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

func (r *Repository) GetUserByID(id int64) (*user.User, error) {
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
