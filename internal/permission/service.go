package permission

import (
	"context"
	"log/slog"
	"sort"

	"github.com/frahmantamala/rbac-admin/internal"
	permissionDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
)

// sortable fields for permission listings; anything else falls back to the
// default of name ascending.
var allowedSortFields = []string{"id", "name", "created_at", "updated_at"}

type RepositoryAPI interface {
	List(query internal.ListQuery) ([]*permissionDatamodel.Permission, int64, error)
	GetAll() ([]*permissionDatamodel.Permission, error)
	GetByID(id int64) (*permissionDatamodel.Permission, error)
	GetByName(name, guard string) (*permissionDatamodel.Permission, error)
	GetByGroup(group, guard string) ([]*permissionDatamodel.Permission, error)
	Create(p *permissionDatamodel.Permission) error
	Update(p *permissionDatamodel.Permission) error
	Delete(id int64) error
	Count() (int64, error)
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
	s.events.Publish(context.Background(), events.NewEvent(action, events.ResourcePermission, resourceID, name))
}

// GetPaginated returns one page of permissions filtered by a case-insensitive
// substring search on name.
func (s *Service) GetPaginated(query internal.ListQuery) ([]*Permission, internal.ListQuery, int64, error) {
	query = query.Normalize(allowedSortFields, "name", internal.SortAsc)

	rows, total, err := s.repo.List(query)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, query, 0, err
	}

	permissions := make([]*Permission, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, FromDataModel(row))
	}
	return permissions, query, total, nil
}

func (s *Service) GetByID(id int64) (*Permission, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByName(name string) (*Permission, error) {
	row, err := s.repo.GetByName(name, DefaultGuard)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(dto.Name, dto.GuardName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewValidationFieldError("name", "This permission name already exists.", internal.ErrCodeNameTaken)
	}

	row := &permissionDatamodel.Permission{
		Name:      dto.Name,
		GuardName: dto.GuardName,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create permission", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("permission created", "permission_id", row.ID, "name", row.Name)
	s.publish(events.ActionPermissionCreated, row.ID, row.Name)
	return FromDataModel(row), nil
}

func (s *Service) Update(id int64, dto UpdatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrPermissionNotFound
	}

	// Name collision check must exclude the permission being renamed.
	existing, err := s.repo.GetByName(dto.Name, row.GuardName)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, internal.NewValidationFieldError("name", "This permission name already exists.", internal.ErrCodeNameTaken)
	}

	row.Name = dto.Name
	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update permission", "error", err, "permission_id", id)
		return nil, err
	}

	s.logger.Info("permission updated", "permission_id", id, "name", row.Name)
	s.publish(events.ActionPermissionUpdated, id, row.Name)
	return FromDataModel(row), nil
}

// Delete removes a permission and detaches it from every role holding it.
func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrPermissionNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete permission", "error", err, "permission_id", id)
		return err
	}

	s.logger.Info("permission deleted", "permission_id", id, "name", row.Name)
	s.publish(events.ActionPermissionDeleted, id, row.Name)
	return nil
}

// Groups returns the distinct group prefixes derived from all permission
// names, sorted ascending. Grouping is computed, never stored.
func (s *Service) Groups() ([]string, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	groups := make([]string, 0, len(rows))
	for _, row := range rows {
		group := GroupOf(row.Name)
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups, nil
}

func (s *Service) GetByGroup(group string) ([]*Permission, error) {
	rows, err := s.repo.GetByGroup(group, DefaultGuard)
	if err != nil {
		return nil, err
	}
	permissions := make([]*Permission, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, FromDataModel(row))
	}
	return permissions, nil
}

func (s *Service) Count() (int64, error) {
	return s.repo.Count()
}

func (s *Service) GetStats() (Stats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return Stats{}, err
	}
	groups, err := s.Groups()
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalPermissions: total, PermissionGroups: len(groups)}, nil
}
