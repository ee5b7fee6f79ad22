package auth

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/authz"
	userDatamodel "github.com/frahmantamala/rbac-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetAuthenticatedUser(userID int64) (*authz.User, error)
}

type RepositoryAPI interface {
	GetUserByEmail(email string) (*userDatamodel.User, error)
	GetUserByID(id int64) (*userDatamodel.User, error)
}

// AuthorizerAPI resolves role and permission sets for a principal.
type AuthorizerAPI interface {
	RolesFor(userID int64) ([]string, error)
	PermissionsFor(userID int64) ([]string, error)
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	authorizer     AuthorizerAPI
	logger         *slog.Logger
	events         *events.Bus
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, authorizer AuthorizerAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		authorizer:     authorizer,
		logger:         logger,
	}
}

// WithEvents attaches the bus that logins publish to.
func (s *Service) WithEvents(bus *events.Bus) *Service {
	s.events = bus
	return s
}

// Authenticate verifies credentials and issues a token pair. Lookup misses
// and password mismatches return the same error.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	row, err := s.repo.GetUserByEmail(dto.Email)
	if err != nil {
		s.logger.Error("failed to look up user for login", "error", err)
		return AuthTokens{}, err
	}
	if row == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if s.events != nil {
		s.events.Publish(context.Background(),
			events.NewEvent(events.ActionUserLoggedIn, events.ResourceUser, row.ID, row.Name))
	}

	return s.issueTokens(row)
}

// RefreshTokens rotates the token pair when given a valid refresh token.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	row, err := s.repo.GetUserByID(userID)
	if err != nil {
		return AuthTokens{}, err
	}
	if row == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	return s.issueTokens(row)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// GetAuthenticatedUser loads the principal with roles and effective
// permissions resolved, for stashing in the request context.
func (s *Service) GetAuthenticatedUser(userID int64) (*authz.User, error) {
	row, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}

	roles, err := s.authorizer.RolesFor(userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.authorizer.PermissionsFor(userID)
	if err != nil {
		return nil, err
	}

	return &authz.User{
		ID:          row.ID,
		Name:        row.Name,
		Email:       row.Email,
		Roles:       roles,
		Permissions: perms,
	}, nil
}

func (s *Service) issueTokens(row *userDatamodel.User) (AuthTokens, error) {
	uid := strconv.FormatInt(row.ID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(uid, row.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err, "user_id", row.ID)
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(uid, row.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", "error", err, "user_id", row.ID)
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
