package permission

import "time"

type Permission struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_permissions_name_guard"`
	GuardName string    `gorm:"column:guard_name;not null;default:web;uniqueIndex:idx_permissions_name_guard"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}
