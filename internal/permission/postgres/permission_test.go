package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/rbac-admin/internal"
	permissionDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	permissionDomain "github.com/frahmantamala/rbac-admin/internal/permission"
	permissionPostgres "github.com/frahmantamala/rbac-admin/internal/permission/postgres"
)

func TestPermissionPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Postgres Suite")
}

var _ = Describe("Permission Repository", func() {
	var (
		db   *gorm.DB
		repo permissionDomain.RepositoryAPI
	)

	seed := func(names ...string) []*permissionDatamodel.Permission {
		rows := make([]*permissionDatamodel.Permission, 0, len(names))
		for _, name := range names {
			row := &permissionDatamodel.Permission{Name: name, GuardName: "web"}
			Expect(db.Create(row).Error).To(Succeed())
			rows = append(rows, row)
		}
		return rows
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&permissionDatamodel.Permission{}, &roleDatamodel.Role{}, &roleDatamodel.RolePermission{})
		Expect(err).NotTo(HaveOccurred())

		repo = permissionPostgres.NewPermissionRepository(db)
	})

	Describe("Create and lookup", func() {
		It("assigns an id and finds by name within the guard", func() {
			row := &permissionDatamodel.Permission{Name: "user-list", GuardName: "web"}
			Expect(repo.Create(row)).To(Succeed())
			Expect(row.ID).To(BeNumerically(">", 0))

			found, err := repo.GetByName("user-list", "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(row.ID))

			missing, err := repo.GetByName("user-list", "api")
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(BeNil())
		})

		It("returns nil, nil for a missing id", func() {
			found, err := repo.GetByID(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("enforces name uniqueness per guard", func() {
			Expect(repo.Create(&permissionDatamodel.Permission{Name: "user-list", GuardName: "web"})).To(Succeed())
			err := repo.Create(&permissionDatamodel.Permission{Name: "user-list", GuardName: "web"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			seed("user-list", "user-create", "role-list")
		})

		It("pages and counts the full result set", func() {
			query := internal.ListQuery{Page: 1, PerPage: 2, SortBy: "name", SortDirection: internal.SortAsc}

			rows, total, err := repo.List(query)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Name).To(Equal("role-list"))
		})

		It("searches case-insensitively on name", func() {
			query := internal.ListQuery{Page: 1, PerPage: 10, Search: "USER", SortBy: "name", SortDirection: internal.SortAsc}

			rows, total, err := repo.List(query)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(rows[0].Name).To(Equal("user-create"))
			Expect(rows[1].Name).To(Equal("user-list"))
		})
	})

	Describe("GetByGroup", func() {
		It("matches on the derived group prefix", func() {
			seed("user-list", "user-create", "role-list")

			rows, err := repo.GetByGroup("user", "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})

		It("handles every separator and standalone names", func() {
			seed("report.export", "report_share", "audit")

			rows, err := repo.GetByGroup("report", "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			rows, err = repo.GetByGroup("audit", "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})

	Describe("Delete", func() {
		It("detaches the permission from roles in the same transaction", func() {
			perms := seed("user-list")
			role := &roleDatamodel.Role{Name: "editor", GuardName: "web"}
			Expect(db.Create(role).Error).To(Succeed())
			Expect(db.Create(&roleDatamodel.RolePermission{RoleID: role.ID, PermissionID: perms[0].ID}).Error).To(Succeed())

			Expect(repo.Delete(perms[0].ID)).To(Succeed())

			var attachments int64
			Expect(db.Model(&roleDatamodel.RolePermission{}).Count(&attachments).Error).To(Succeed())
			Expect(attachments).To(BeZero())

			found, err := repo.GetByID(perms[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("Count", func() {
		It("counts all permissions", func() {
			seed("user-list", "role-list")

			count, err := repo.Count()
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})
})
