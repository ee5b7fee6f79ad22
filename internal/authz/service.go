package authz

import (
	"log/slog"
)

// RepositoryAPI loads the per-role grants backing a user's effective set.
type RepositoryAPI interface {
	RoleNames(userID int64) ([]string, error)
	GrantsByRole(userID int64) (map[string][]string, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// PermissionsFor resolves the user's effective permission set, the union of
// all grants across their roles.
func (s *Service) PermissionsFor(userID int64) ([]string, error) {
	grantsByRole, err := s.repo.GrantsByRole(userID)
	if err != nil {
		s.logger.Error("failed to load role grants", "error", err, "user_id", userID)
		return nil, err
	}

	grants := make([][]string, 0, len(grantsByRole))
	for _, g := range grantsByRole {
		grants = append(grants, g)
	}
	return EffectivePermissions(grants...), nil
}

// Can reports whether the user holds the permission through any role.
func (s *Service) Can(userID int64, permission string) (bool, error) {
	perms, err := s.PermissionsFor(userID)
	if err != nil {
		return false, err
	}
	return HasPermission(perms, permission), nil
}

func (s *Service) RolesFor(userID int64) ([]string, error) {
	return s.repo.RoleNames(userID)
}
