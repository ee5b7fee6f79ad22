package user

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/rbac-admin/internal"
	userDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"github.com/frahmantamala/rbac-admin/internal/role"
)

var allowedSortFields = []string{"id", "name", "email", "created_at", "updated_at"}

type RepositoryAPI interface {
	List(query internal.ListQuery) ([]*userDatamodel.User, int64, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	Create(u *userDatamodel.User, roleIDs []int64) error
	Update(u *userDatamodel.User) error
	Delete(id int64) error
	Count() (int64, error)
	CountWithRoles() (int64, error)
	RoleNames(userID int64) ([]string, error)
	RoleIDsByNames(names []string, guard string) (map[string]int64, error)
	SyncRoles(userID int64, roleIDs []int64) error
}

type Service struct {
	repo       RepositoryAPI
	logger     *slog.Logger
	bcryptCost int
	events     *events.Bus
}

func NewService(repo RepositoryAPI, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// WithEvents attaches the bus that mutations publish to.
func (s *Service) WithEvents(bus *events.Bus) *Service {
	s.events = bus
	return s
}

func (s *Service) publish(action string, resourceID int64, name string) {
	if s.events == nil {
		return
	}
	s.events.Publish(context.Background(), events.NewEvent(action, events.ResourceUser, resourceID, name))
}

func (s *Service) GetPaginated(query internal.ListQuery) ([]*User, internal.ListQuery, int64, error) {
	query = query.Normalize(allowedSortFields, "created_at", internal.SortDesc)

	rows, total, err := s.repo.List(query)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, query, 0, err
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		roles, err := s.repo.RoleNames(row.ID)
		if err != nil {
			return nil, query, 0, err
		}
		users = append(users, FromDataModelWithRoles(row, roles))
	}
	return users, query, total, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	roles, err := s.repo.RoleNames(id)
	if err != nil {
		return nil, err
	}
	return FromDataModelWithRoles(row, roles), nil
}

func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewValidationFieldError("email", "This email is already registered.", internal.ErrCodeEmailTaken)
	}

	roleIDs, err := s.resolveRoleIDs(dto.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to process password", err)
	}

	row := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(row, roleIDs); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "email", row.Email, "roles", len(roleIDs))
	s.publish(events.ActionUserCreated, row.ID, row.Name)
	return FromDataModelWithRoles(row, dto.Roles), nil
}

// Update edits the user's profile and replaces the role set. An empty
// password keeps the stored hash untouched.
func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, internal.NewValidationFieldError("email", "This email is already registered.", internal.ErrCodeEmailTaken)
	}

	roleIDs, err := s.resolveRoleIDs(dto.Roles)
	if err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Email = dto.Email
	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, internal.NewInternalError("failed to process password", err)
		}
		row.PasswordHash = string(hash)
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	if err := s.repo.SyncRoles(id, roleIDs); err != nil {
		s.logger.Error("failed to sync user roles", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "roles", len(roleIDs))
	s.publish(events.ActionUserUpdated, id, row.Name)
	return FromDataModelWithRoles(row, dto.Roles), nil
}

// Delete removes the user and their role assignments. Role definitions
// themselves are untouched.
func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	s.publish(events.ActionUserDeleted, id, row.Name)
	return nil
}

func (s *Service) RolesForUser(id int64) ([]string, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return s.repo.RoleNames(id)
}

func (s *Service) GetStats() (Stats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return Stats{}, err
	}
	withRoles, err := s.repo.CountWithRoles()
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalUsers: total, UsersWithRoles: withRoles}, nil
}

// resolveRoleIDs maps role names to ids, rejecting unknown names rather than
// silently dropping them.
func (s *Service) resolveRoleIDs(names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	byName, err := s.repo.RoleIDsByNames(names, role.DefaultGuard)
	if err != nil {
		return nil, err
	}

	var unknown []string
	seen := make(map[int64]struct{}, len(names))
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, internal.NewValidationFieldError("roles",
			"Unknown roles: "+strings.Join(unknown, ", "), internal.ErrCodeUnknownRole)
	}
	return ids, nil
}
