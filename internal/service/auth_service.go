package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/config"
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// AuthService handles login and administrative account management. Every
// privileged operation takes the caller's Session explicitly.
type AuthService struct {
	users        repository.UserRepository
	tokenManager *auth.TokenManager
	bcryptCost   int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:        users,
		tokenManager: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:   cfg.BcryptCost,
	}
}

// TokenManager exposes the JWT manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenManager
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, apperrors.NewValidationError("username and password required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, apperrors.NewPersistenceFailed("load user", username, err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	return s.tokenManager.GenerateToken(user.Username, user.IsAdmin())
}

// CreateUser registers a new account. Admin only.
func (s *AuthService) CreateUser(ctx context.Context, session domain.Session, username, password string, isAdmin bool) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewPersistenceFailed("check username", username, err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	role := domain.RoleUser
	if isAdmin {
		role = domain.RoleAdmin
	}
	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return apperrors.NewPersistenceFailed("create user", username, err)
	}
	return nil
}

// ListUsers returns all accounts without password hashes. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, session domain.Session) ([]domain.User, error) {
	if !session.IsAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list users", nil, err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateRole switches an account between user and admin. Admin only.
func (s *AuthService) UpdateRole(ctx context.Context, session domain.Session, username string, role domain.UserRole) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if err := s.users.UpdateRole(ctx, username, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return apperrors.NewPersistenceFailed("update role", username, err)
	}
	return nil
}

// ForceSetPassword lets an admin replace any account's password without
// knowing the old one.
func (s *AuthService) ForceSetPassword(ctx context.Context, session domain.Session, username, newPassword string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if newPassword == "" {
		return apperrors.NewValidationError("password required", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return apperrors.NewPersistenceFailed("set password", username, err)
	}
	return nil
}

// RemoveUser deletes an account. Admin only; admins cannot remove
// themselves.
func (s *AuthService) RemoveUser(ctx context.Context, session domain.Session, username string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if username == session.Username {
		return apperrors.NewValidationError("cannot remove own account", nil)
	}
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return apperrors.NewPersistenceFailed("remove user", username, err)
	}
	return nil
}
