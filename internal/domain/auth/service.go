// internal/domain/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stayrewards/stayrewards-api/internal/domain/user"
	"github.com/stayrewards/stayrewards-api/internal/pkg/jwt"
	"github.com/stayrewards/stayrewards-api/internal/pkg/logger"
	"github.com/stayrewards/stayrewards-api/internal/pkg/password"
)

// TokenIssuer is satisfied by *jwt.Service
type TokenIssuer interface {
	IssueTokens(subjectID uuid.UUID, email, role string) (*jwt.TokenPair, error)
	ValidateRefreshToken(tokenString string) (*jwt.Claims, error)
}

// Service handles authentication business logic
type Service struct {
	userRepo user.Repository
	tokens   TokenIssuer
	throttle LoginThrottle // nil if Redis disabled
}

// NewService creates auth service
func NewService(userRepo user.Repository, tokens TokenIssuer, throttle LoginThrottle) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		throttle: throttle,
	}
}

// Register creates new guest account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. Check if email exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	// 2. Hash password
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register hash password: %w", err)
	}

	// 3. Create user
	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    normalizeName(req.FirstName),
		LastName:     normalizeName(req.LastName),
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("register create user: %w", err)
	}

	logger.FromContext(ctx).Info().Str("user_id", u.ID.String()).Msg("User registered")

	// 4. Issue tokens
	return s.issue(u)
}

// Login authenticates user by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Login throttle unavailable")
		}
		if !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login lookup email: %w", err)
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Failed to reset login attempts")
		}
	}

	return s.issue(u)
}

// Refresh issues a new token pair from a valid refresh token.
// The subject must still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrSubjectNotFound
	}

	return s.issue(u)
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	resp := NewUserResponse(u)
	return &resp, nil
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	pair, err := s.tokens.IssueTokens(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &AuthResponse{
		User:   NewUserResponse(u),
		Tokens: newTokensResponse(pair),
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to record login failure")
	}
}
