package role_test

import (
	"log/slog"
	"os"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/rbac-admin/internal"
	roleDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/rbac-admin/internal/role"
)

func TestRoleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Service Suite")
}

// MockRepository implements role.RepositoryAPI for testing
type MockRepository struct {
	roles           map[int64]*roleDatamodel.Role
	permissionNames map[string]int64
	attachments     map[int64][]int64
	nextID          int64
	shouldFail      bool
	failError       error
	syncCalls       int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		roles:           make(map[int64]*roleDatamodel.Role),
		permissionNames: make(map[string]int64),
		attachments:     make(map[int64][]int64),
		nextID:          1,
	}
}

func (m *MockRepository) List(query internal.ListQuery) ([]*roleDatamodel.Role, int64, error) {
	if m.shouldFail {
		return nil, 0, m.failError
	}
	rows, _ := m.GetAll()
	return rows, int64(len(rows)), nil
}

func (m *MockRepository) GetAll() ([]*roleDatamodel.Role, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	rows := make([]*roleDatamodel.Role, 0, len(m.roles))
	for _, r := range m.roles {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (m *MockRepository) GetByID(id int64) (*roleDatamodel.Role, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.roles[id], nil
}

func (m *MockRepository) GetByName(name, guard string) (*roleDatamodel.Role, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, r := range m.roles {
		if r.Name == name && r.GuardName == guard {
			return r, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(r *roleDatamodel.Role, permissionIDs []int64) error {
	if m.shouldFail {
		return m.failError
	}
	r.ID = m.nextID
	m.nextID++
	m.roles[r.ID] = r
	m.attachments[r.ID] = append([]int64(nil), permissionIDs...)
	return nil
}

func (m *MockRepository) Update(r *roleDatamodel.Role) error {
	if m.shouldFail {
		return m.failError
	}
	m.roles[r.ID] = r
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.roles, id)
	delete(m.attachments, id)
	return nil
}

func (m *MockRepository) Count() (int64, error) {
	return int64(len(m.roles)), nil
}

func (m *MockRepository) CountWithPermissions() (int64, error) {
	var count int64
	for _, ids := range m.attachments {
		if len(ids) > 0 {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) PermissionNames(roleID int64) ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	byID := make(map[int64]string, len(m.permissionNames))
	for name, id := range m.permissionNames {
		byID[id] = name
	}
	names := make([]string, 0, len(m.attachments[roleID]))
	for _, id := range m.attachments[roleID] {
		names = append(names, byID[id])
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockRepository) PermissionIDsByNames(names []string, guard string) (map[string]int64, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	byName := make(map[string]int64)
	for _, name := range names {
		if id, ok := m.permissionNames[name]; ok {
			byName[name] = id
		}
	}
	return byName, nil
}

func (m *MockRepository) SyncPermissions(roleID int64, permissionIDs []int64) error {
	if m.shouldFail {
		return m.failError
	}
	m.syncCalls++
	m.attachments[roleID] = append([]int64(nil), permissionIDs...)
	return nil
}

func (m *MockRepository) AddPermission(name string) {
	m.permissionNames[name] = m.nextID
	m.nextID++
}

var _ = Describe("Role Service", func() {
	var (
		mockRepo *MockRepository
		service  *role.Service
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(mockRepo, logger)
	})

	Describe("Create", func() {
		It("creates a role with resolved permission attachments", func() {
			mockRepo.AddPermission("user-list")
			mockRepo.AddPermission("user-create")

			r, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list", "user-create"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.GuardName).To(Equal(role.DefaultGuard))
			Expect(mockRepo.attachments[r.ID]).To(HaveLen(2))
		})

		It("rejects unknown permission names instead of dropping them", func() {
			mockRepo.AddPermission("user-list")

			_, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list", "no-such", "also-missing"},
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(len(mockRepo.roles)).To(BeZero())
		})

		It("allows a role without permissions", func() {
			r, err := service.Create(role.CreateRoleDTO{Name: "viewer"})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.attachments[r.ID]).To(BeEmpty())
		})

		It("rejects a duplicate role name", func() {
			_, err := service.Create(role.CreateRoleDTO{Name: "editor"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(role.CreateRoleDTO{Name: "editor"})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNameTaken))
		})

		It("collapses duplicate permission names in the request", func() {
			mockRepo.AddPermission("user-list")

			r, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list", "user-list"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.attachments[r.ID]).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		It("renames and replaces the permission set", func() {
			mockRepo.AddPermission("user-list")
			mockRepo.AddPermission("role-list")

			r, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list"},
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(r.ID, role.UpdateRoleDTO{
				Name:        "moderator",
				Permissions: []string{"role-list"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("moderator"))
			Expect(mockRepo.syncCalls).To(Equal(1))

			names, _ := mockRepo.PermissionNames(r.ID)
			Expect(names).To(Equal([]string{"role-list"}))
		})

		It("syncing to an empty set detaches everything", func() {
			mockRepo.AddPermission("user-list")

			r, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(r.ID, role.UpdateRoleDTO{Name: "editor"})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.attachments[r.ID]).To(BeEmpty())
		})

		It("returns not found for a missing role", func() {
			_, err := service.Update(42, role.UpdateRoleDTO{Name: "ghost"})
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the role and its attachments", func() {
			mockRepo.AddPermission("user-list")
			r, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(r.ID)).To(Succeed())
			Expect(mockRepo.roles).NotTo(HaveKey(r.ID))
			Expect(mockRepo.attachments).NotTo(HaveKey(r.ID))
		})

		It("returns not found for a missing role", func() {
			Expect(service.Delete(42)).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("GetByID", func() {
		It("loads the role with its permission names", func() {
			mockRepo.AddPermission("user-list")
			mockRepo.AddPermission("user-create")
			created, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-create", "user-list"},
			})
			Expect(err).NotTo(HaveOccurred())

			r, err := service.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Permissions).To(Equal([]string{"user-create", "user-list"}))
		})

		It("returns nil for a missing role", func() {
			r, err := service.GetByID(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(BeNil())
		})
	})

	Describe("GetStats", func() {
		It("counts roles with and without permissions", func() {
			mockRepo.AddPermission("user-list")
			_, err := service.Create(role.CreateRoleDTO{
				Name:        "editor",
				Permissions: []string{"user-list"},
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(role.CreateRoleDTO{Name: "viewer"})
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.GetStats()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRoles).To(Equal(int64(2)))
			Expect(stats.RolesWithPermissions).To(Equal(int64(1)))
		})
	})
})
