package user_test

import (
	"sort"
	"testing"

	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/rbac-admin/internal"
	userDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/rbac-admin/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users       map[int64]*userDatamodel.User
	roleNames   map[string]int64
	assignments map[int64][]int64
	nextID      int64
	shouldFail  bool
	failError   error
	syncCalls   int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:       make(map[int64]*userDatamodel.User),
		roleNames:   make(map[string]int64),
		assignments: make(map[int64][]int64),
		nextID:      1,
	}
}

func (m *MockRepository) List(query internal.ListQuery) ([]*userDatamodel.User, int64, error) {
	if m.shouldFail {
		return nil, 0, m.failError
	}
	rows := make([]*userDatamodel.User, 0, len(m.users))
	for _, u := range m.users {
		rows = append(rows, u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, int64(len(rows)), nil
}

func (m *MockRepository) GetByID(id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users[id], nil
}

func (m *MockRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(u *userDatamodel.User, roleIDs []int64) error {
	if m.shouldFail {
		return m.failError
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	m.assignments[u.ID] = append([]int64(nil), roleIDs...)
	return nil
}

func (m *MockRepository) Update(u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.users, id)
	delete(m.assignments, id)
	return nil
}

func (m *MockRepository) Count() (int64, error) {
	return int64(len(m.users)), nil
}

func (m *MockRepository) CountWithRoles() (int64, error) {
	var count int64
	for _, ids := range m.assignments {
		if len(ids) > 0 {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) RoleNames(userID int64) ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	byID := make(map[int64]string, len(m.roleNames))
	for name, id := range m.roleNames {
		byID[id] = name
	}
	names := make([]string, 0, len(m.assignments[userID]))
	for _, id := range m.assignments[userID] {
		names = append(names, byID[id])
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockRepository) RoleIDsByNames(names []string, guard string) (map[string]int64, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	byName := make(map[string]int64)
	for _, name := range names {
		if id, ok := m.roleNames[name]; ok {
			byName[name] = id
		}
	}
	return byName, nil
}

func (m *MockRepository) SyncRoles(userID int64, roleIDs []int64) error {
	if m.shouldFail {
		return m.failError
	}
	m.syncCalls++
	m.assignments[userID] = append([]int64(nil), roleIDs...)
	return nil
}

func (m *MockRepository) AddRole(name string) {
	m.roleNames[name] = m.nextID
	m.nextID++
}

var _ = Describe("User Service", func() {
	var (
		mockRepo *MockRepository
		service  *user.Service
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockRepo.AddRole("admin")
		mockRepo.AddRole("user")
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, logger, bcrypt.MinCost)
	})

	Describe("Create", func() {
		It("stores a bcrypt hash, never the plaintext password", func() {
			u, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			stored := mockRepo.users[u.ID]
			Expect(stored.PasswordHash).NotTo(Equal("supersecret"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret"))).To(Succeed())
		})

		It("rejects a password shorter than 8 characters", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "short",
				Roles:    []string{"user"},
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate email", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(user.CreateUserDTO{
				Name:     "Another Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})

		It("rejects unknown role names", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user", "superhero"},
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(len(mockRepo.users)).To(BeZero())
		})

		It("requires at least one role", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		var created *user.User

		BeforeEach(func() {
			var err error
			created, err = service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the stored hash when the password is empty", func() {
			before := mockRepo.users[created.ID].PasswordHash

			_, err := service.Update(created.ID, user.UpdateUserDTO{
				Name:  "Alice Renamed",
				Email: "alice@example.com",
				Roles: []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.users[created.ID].PasswordHash).To(Equal(before))
		})

		It("rehashes when a new password is given", func() {
			before := mockRepo.users[created.ID].PasswordHash

			_, err := service.Update(created.ID, user.UpdateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "evenmoresecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			after := mockRepo.users[created.ID].PasswordHash
			Expect(after).NotTo(Equal(before))
			Expect(bcrypt.CompareHashAndPassword([]byte(after), []byte("evenmoresecret"))).To(Succeed())
		})

		It("allows keeping the own email", func() {
			_, err := service.Update(created.ID, user.UpdateUserDTO{
				Name:  "Alice",
				Email: "alice@example.com",
				Roles: []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects taking another user's email", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Bob",
				Email:    "bob@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(created.ID, user.UpdateUserDTO{
				Name:  "Alice",
				Email: "bob@example.com",
				Roles: []string{"user"},
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})

		It("replaces the role set via sync", func() {
			updated, err := service.Update(created.ID, user.UpdateUserDTO{
				Name:  "Alice",
				Email: "alice@example.com",
				Roles: []string{"admin"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Roles).To(Equal([]string{"admin"}))
			Expect(mockRepo.syncCalls).To(Equal(1))
		})

		It("returns not found for a missing user", func() {
			_, err := service.Update(999, user.UpdateUserDTO{
				Name:  "Ghost",
				Email: "ghost@example.com",
				Roles: []string{"user"},
			})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the user and their assignments", func() {
			created, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(created.ID)).To(Succeed())
			Expect(mockRepo.users).NotTo(HaveKey(created.ID))
		})

		It("returns not found for a missing user", func() {
			Expect(service.Delete(999)).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("GetStats", func() {
		It("counts users with roles", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "supersecret",
				Roles:    []string{"user"},
			})
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.GetStats()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalUsers).To(Equal(int64(1)))
			Expect(stats.UsersWithRoles).To(Equal(int64(1)))
		})
	})
})
