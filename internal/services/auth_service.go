package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskledger/internal/audit"
	"github.com/yukikurage/taskledger/internal/authz"
	"github.com/yukikurage/taskledger/internal/constants"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
	"github.com/yukikurage/taskledger/internal/repository"
	"go.uber.org/zap"
)

var ErrFailedToHashPassword = errors.New("failed to hash password")

// AuthService handles registration, login and the admin-only account
// operations.
type AuthService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	hasher      PasswordHasher
	audit       audit.Sink
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	hasher PasswordHasher,
	sink audit.Sink,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		hasher:      hasher,
		audit:       sink,
		logger:      logger.Named("auth"),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// CreateAdminInput holds the credentials of a new admin. Admins have no email.
type CreateAdminInput struct {
	Username string
	Password string
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", apierrors.ErrValidation)
	}
	if len(username) > constants.MaxUsernameLength {
		return "", fmt.Errorf("%w: username is longer than %d characters", apierrors.ErrValidation, constants.MaxUsernameLength)
	}
	if len(password) < constants.MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", apierrors.ErrValidation, constants.MinPasswordLength)
	}
	return username, nil
}

// Register creates an active ordinary user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username, err := validateCredentials(input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    strings.TrimSpace(input.Email),
		Password: hashed,
		Role:     models.RoleUser,
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, wrap("register user", err)
	}

	s.record("User registered with username: %s", username)
	return user, nil
}

// CreateAdmin adds an admin. With no actor it only succeeds while no admin
// exists yet, which is how the first admin of a fresh store is made.
func (s *AuthService) CreateAdmin(ctx context.Context, actor *models.User, input CreateAdminInput) (*models.User, error) {
	if actor != nil {
		if err := authz.RequireAdmin(actor); err != nil {
			return nil, err
		}
	} else {
		admins, err := s.userRepo.List(ctx, models.RoleAdmin)
		if err != nil {
			return nil, wrap("list admins", err)
		}
		if len(admins) > 0 {
			return nil, fmt.Errorf("%w: an admin must create further admins", apierrors.ErrUnauthorized)
		}
	}

	username, err := validateCredentials(input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username: username,
		Password: hashed,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, wrap("create admin", err)
	}

	s.record("Admin registered with username: %s", username)
	return admin, nil
}

// Authenticate verifies credentials against users, then admins. Every
// outcome is written to the audit log.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apierrors.ErrUserNotFound) {
			s.record("Failed login attempt with non-existent username: %s", username)
			return nil, fmt.Errorf("%w: invalid username or password", apierrors.ErrUnauthorized)
		}
		return nil, wrap("find user", err)
	}

	if !s.hasher.Verify(user.Password, password) {
		s.record("Failed login attempt for username: %s with incorrect password", username)
		return nil, fmt.Errorf("%w: invalid username or password", apierrors.ErrUnauthorized)
	}

	if !user.Active {
		s.record("Failed login attempt for inactive user: %s", username)
		return nil, fmt.Errorf("%w: %s", apierrors.ErrAccountInactive, username)
	}

	s.record("User %s logged in successfully with role: %s", username, user.Role)
	return user, nil
}

// SetActive activates or deactivates an ordinary user. Admin only. Setting
// the flag a user already has is a no-op and is not audited.
func (s *AuthService) SetActive(ctx context.Context, actor *models.User, username string, active bool) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	changed, err := s.userRepo.SetActive(ctx, username, active)
	if err != nil {
		return wrap("update user", err)
	}
	if !changed {
		return nil
	}

	if active {
		s.record("User %s activated by admin %s", username, actor.Username)
	} else {
		s.record("User %s deactivated by admin %s", username, actor.Username)
	}
	return nil
}

// Purge drops every collection and truncates the audit log. Admin only. The
// purge itself is the first line of the new log.
func (s *AuthService) Purge(ctx context.Context, actor *models.User) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.userRepo.Purge(ctx); err != nil {
		return wrap("purge users", err)
	}
	if err := s.projectRepo.Purge(ctx); err != nil {
		return wrap("purge projects", err)
	}
	if err := s.audit.Reset(); err != nil {
		return wrap("reset audit log", err)
	}

	s.logger.Warn("all data purged", zap.String("admin", actor.Username))
	s.record("All data purged by admin %s", actor.Username)
	return nil
}

func (s *AuthService) record(format string, args ...any) {
	if err := audit.Recordf(s.audit, format, args...); err != nil {
		s.logger.Error("failed to write audit log", zap.Error(err))
	}
}

// wrap keeps classified errors as they are and adds context to the rest.
func wrap(action string, err error) error {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
