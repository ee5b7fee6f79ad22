package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/rbac-admin/internal/authz"
	permissionDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/rbac-admin/internal/permission"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the base permissions, roles and admin account",
	Long:  `Provision the base permission set, an admin role holding every permission, a bare user role and an initial admin account. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			if err := clearAll(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		permissionIDs := make(map[string]int64)
		for _, name := range authz.BasePermissions() {
			var row permissionDatamodel.Permission
			err := db.Where("name = ? AND guard_name = ?", name, permission.DefaultGuard).First(&row).Error
			if err == gorm.ErrRecordNotFound {
				row = permissionDatamodel.Permission{Name: name, GuardName: permission.DefaultGuard}
				if err := db.Create(&row).Error; err != nil {
					log.Fatalf("failed to seed permission %s: %v", name, err)
				}
				fmt.Println("Seeded permission:", name)
			} else if err != nil {
				log.Fatalf("failed to look up permission %s: %v", name, err)
			}
			permissionIDs[name] = row.ID
		}

		adminRoleID := seedRole(db, "admin")
		seedRole(db, "user")

		for name, pid := range permissionIDs {
			var rp roleDatamodel.RolePermission
			err := db.Where("role_id = ? AND permission_id = ?", adminRoleID, pid).First(&rp).Error
			if err == gorm.ErrRecordNotFound {
				rp = roleDatamodel.RolePermission{RoleID: adminRoleID, PermissionID: pid}
				if err := db.Create(&rp).Error; err != nil {
					log.Fatalf("failed to grant %s to admin role: %v", name, err)
				}
			} else if err != nil {
				log.Fatalf("failed to check admin grant %s: %v", name, err)
			}
		}
		fmt.Println("Granted all permissions to admin role")

		adminEmail := "admin@example.com"
		var admin userDatamodel.User
		err = db.Where("email = ?", adminEmail).First(&admin).Error
		if err == gorm.ErrRecordNotFound {
			hash, herr := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
			if herr != nil {
				log.Fatalf("failed to hash admin password: %v", herr)
			}
			admin = userDatamodel.User{
				Name:         "Admin",
				Email:        adminEmail,
				PasswordHash: string(hash),
			}
			if err := db.Create(&admin).Error; err != nil {
				log.Fatalf("failed to seed admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		} else if err != nil {
			log.Fatalf("failed to look up admin user: %v", err)
		}

		var ur userDatamodel.UserRole
		err = db.Where("user_id = ? AND role_id = ?", admin.ID, adminRoleID).First(&ur).Error
		if err == gorm.ErrRecordNotFound {
			ur = userDatamodel.UserRole{UserID: admin.ID, RoleID: adminRoleID}
			if err := db.Create(&ur).Error; err != nil {
				log.Fatalf("failed to assign admin role: %v", err)
			}
		} else if err != nil {
			log.Fatalf("failed to check admin role assignment: %v", err)
		}

		fmt.Println("Assigned admin role to:", adminEmail)
	},
}

func seedRole(db *gorm.DB, name string) int64 {
	var row roleDatamodel.Role
	err := db.Where("name = ? AND guard_name = ?", name, permission.DefaultGuard).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = roleDatamodel.Role{Name: name, GuardName: permission.DefaultGuard}
		if err := db.Create(&row).Error; err != nil {
			log.Fatalf("failed to seed role %s: %v", name, err)
		}
		fmt.Println("Seeded role:", name)
	} else if err != nil {
		log.Fatalf("failed to look up role %s: %v", name, err)
	}
	return row.ID
}

func clearAll(db *gorm.DB) error {
	tables := []string{"user_roles", "role_permissions", "users", "roles", "permissions"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
