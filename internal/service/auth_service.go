package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/config"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// AuthService coordinates registration, login and account management.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new account. New accounts always start with the
// bare "user" role; further roles are granted by an admin.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, errorutil.NewConflict("user with this email already exists", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Roles:        domain.Roles{domain.RoleUser},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates an account and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid email or password")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	return user, token, exp, nil
}

// Profile returns the account behind an id.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, errorutil.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes name and/or email of the calling account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, name, email *string) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name == nil && email == nil {
		return nil, errorutil.NewValidationError("no fields to update", nil)
	}
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		next := strings.ToLower(strings.TrimSpace(*email))
		existing, err := s.users.GetByEmail(ctx, next)
		if err == nil && existing.ID != userID {
			return nil, errorutil.NewConflict("email already in use", map[string]any{"email": next})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.MapError(err)
		}
		user.Email = next
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, errorutil.MapError(err)
	}
	return user, nil
}

// ListUsers returns accounts for administrative views.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return users, nil
}

// UpdateRoles replaces a user's role set with values from the fixed
// vocabulary. The set must not be empty.
func (s *AuthService) UpdateRoles(ctx context.Context, targetID string, rawRoles []string) (*domain.User, error) {
	if len(rawRoles) == 0 {
		return nil, errorutil.NewValidationError("at least one role is required", nil)
	}
	roles := make(domain.Roles, 0, len(rawRoles))
	for _, raw := range rawRoles {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, errorutil.NewValidationError("unknown role", map[string]any{"role": raw})
		}
		if !roles.Has(role) {
			roles = append(roles, role)
		}
	}

	if err := s.users.UpdateRoles(ctx, targetID, roles); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("user", map[string]any{"user_id": targetID})
		}
		return nil, errorutil.MapError(err)
	}
	return s.Profile(ctx, targetID)
}
