package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fotolume/fotolume-api/internal/domain/user"
	"github.com/fotolume/fotolume-api/internal/pkg/password"
	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

// Service handles admin authentication
type Service struct {
	users  user.Repository
	tokens *token.Service
}

// NewService creates a new auth service
func NewService(users user.Repository, tokens *token.Service) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies admin credentials and issues a token pair
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, *UserInfo, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return pair, toUserInfo(u), nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateAdminRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(u)
}

// Me returns the authenticated admin's profile
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(u), nil
}

// EnsureAdmin creates the bootstrap admin account when no users exist yet.
// Called once at startup with credentials from the environment.
func (s *Service) EnsureAdmin(ctx context.Context, email, plainPassword string) error {
	if email == "" || plainPassword == "" {
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         user.RoleAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("bootstrap admin account created")
	return nil
}

func (s *Service) issuePair(u *user.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAdminAccess(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateAdminRefresh(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
