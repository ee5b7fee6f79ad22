package role

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/frahmantamala/rbac-admin/internal"
	roleDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
)

var allowedSortFields = []string{"id", "name", "created_at", "updated_at"}

type RepositoryAPI interface {
	List(query internal.ListQuery) ([]*roleDatamodel.Role, int64, error)
	GetAll() ([]*roleDatamodel.Role, error)
	GetByID(id int64) (*roleDatamodel.Role, error)
	GetByName(name, guard string) (*roleDatamodel.Role, error)
	Create(r *roleDatamodel.Role, permissionIDs []int64) error
	Update(r *roleDatamodel.Role) error
	Delete(id int64) error
	Count() (int64, error)
	CountWithPermissions() (int64, error)
	PermissionNames(roleID int64) ([]string, error)
	PermissionIDsByNames(names []string, guard string) (map[string]int64, error)
	SyncPermissions(roleID int64, permissionIDs []int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	events *events.Bus
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
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
	s.events.Publish(context.Background(), events.NewEvent(action, events.ResourceRole, resourceID, name))
}

func (s *Service) GetPaginated(query internal.ListQuery) ([]*Role, internal.ListQuery, int64, error) {
	query = query.Normalize(allowedSortFields, "name", internal.SortAsc)

	rows, total, err := s.repo.List(query)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, query, 0, err
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		perms, err := s.repo.PermissionNames(row.ID)
		if err != nil {
			return nil, query, 0, err
		}
		roles = append(roles, FromDataModelWithPermissions(row, perms))
	}
	return roles, query, total, nil
}

func (s *Service) GetAll() ([]*Role, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, FromDataModel(row))
	}
	return roles, nil
}

func (s *Service) GetByID(id int64) (*Role, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	perms, err := s.repo.PermissionNames(id)
	if err != nil {
		return nil, err
	}
	return FromDataModelWithPermissions(row, perms), nil
}

func (s *Service) GetByName(name string) (*Role, error) {
	row, err := s.repo.GetByName(name, DefaultGuard)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	perms, err := s.repo.PermissionNames(row.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModelWithPermissions(row, perms), nil
}

func (s *Service) Create(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(dto.Name, dto.GuardName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewValidationFieldError("name", "This role name already exists.", internal.ErrCodeNameTaken)
	}

	permissionIDs, err := s.resolvePermissionIDs(dto.Permissions, dto.GuardName)
	if err != nil {
		return nil, err
	}

	row := &roleDatamodel.Role{
		Name:      dto.Name,
		GuardName: dto.GuardName,
	}
	if err := s.repo.Create(row, permissionIDs); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("role created", "role_id", row.ID, "name", row.Name, "permissions", len(permissionIDs))
	s.publish(events.ActionRoleCreated, row.ID, row.Name)
	return FromDataModelWithPermissions(row, dto.Permissions), nil
}

// Update renames the role and replaces its permission set. The replacement
// is a diff-and-apply sync inside one transaction, so readers never observe
// an empty set mid-update.
func (s *Service) Update(id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}

	existing, err := s.repo.GetByName(dto.Name, row.GuardName)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, internal.NewValidationFieldError("name", "This role name already exists.", internal.ErrCodeNameTaken)
	}

	permissionIDs, err := s.resolvePermissionIDs(dto.Permissions, row.GuardName)
	if err != nil {
		return nil, err
	}

	row.Name = dto.Name
	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, err
	}

	if err := s.repo.SyncPermissions(id, permissionIDs); err != nil {
		s.logger.Error("failed to sync role permissions", "error", err, "role_id", id)
		return nil, err
	}

	s.logger.Info("role updated", "role_id", id, "name", row.Name, "permissions", len(permissionIDs))
	s.publish(events.ActionRoleUpdated, id, row.Name)
	return FromDataModelWithPermissions(row, dto.Permissions), nil
}

// Delete removes the role, its permission attachments and every user
// assignment, so no user keeps a dangling reference.
func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrRoleNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return err
	}

	s.logger.Info("role deleted", "role_id", id, "name", row.Name)
	s.publish(events.ActionRoleDeleted, id, row.Name)
	return nil
}

func (s *Service) PermissionsForRole(id int64) ([]string, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return s.repo.PermissionNames(id)
}

func (s *Service) Count() (int64, error) {
	return s.repo.Count()
}

func (s *Service) GetStats() (Stats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return Stats{}, err
	}
	withPerms, err := s.repo.CountWithPermissions()
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalRoles: total, RolesWithPermissions: withPerms}, nil
}

// resolvePermissionIDs maps permission names to ids, rejecting unknown names
// rather than silently dropping them.
func (s *Service) resolvePermissionIDs(names []string, guard string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	byName, err := s.repo.PermissionIDsByNames(names, guard)
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
		return nil, internal.NewValidationFieldError("permissions",
			"Unknown permissions: "+strings.Join(unknown, ", "), internal.ErrCodeUnknownPermission)
	}
	return ids, nil
}

