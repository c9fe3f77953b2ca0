package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
	"github.com/vncsmyrnk/auth-service/internal/core/ports"
	"go.uber.org/zap"
)

var _ ports.AuthService = (*AuthService)(nil)

type TokenLifetimes struct {
	Access  time.Duration
	Refresh time.Duration
}

type AuthService struct {
	userRepo  ports.UserRepository
	tokens    ports.TokenService
	hasher    ports.PasswordHasher
	lifetimes TokenLifetimes
	logger    *zap.Logger
}

func NewAuthService(userRepo ports.UserRepository, tokens ports.TokenService, hasher ports.PasswordHasher, lifetimes TokenLifetimes, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		hasher:    hasher,
		lifetimes: lifetimes,
		logger:    logger.Named("auth"),
	}
}

func (s *AuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error) {
	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: digest,
		IsAdult:      input.IsAdult,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.Stringer("user_id", user.ID))
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	online := true
	updated, err := s.userRepo.Update(ctx, user.ID, domain.UserPatch{
		IsOnline:        &online,
		SetRefreshToken: true,
		RefreshToken:    &pair.RefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info("user signed in", zap.Stringer("user_id", user.ID))
	return &ports.SignInResult{
		User:   updated.Public(),
		Tokens: *pair,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The stored refresh token
// is replaced, the online flag is left as is.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	user, err := s.resolve(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.Update(ctx, user.ID, domain.UserPatch{
		SetRefreshToken: true,
		RefreshToken:    &pair.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info("tokens refreshed", zap.Stringer("user_id", user.ID))
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	offline := false
	if _, err := s.userRepo.Update(ctx, userID, domain.UserPatch{
		IsOnline:        &offline,
		SetRefreshToken: true,
		RefreshToken:    nil,
	}); err != nil {
		return fmt.Errorf("failed to logout user: %w", err)
	}

	s.logger.Info("user logged out", zap.Stringer("user_id", userID))
	return nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.resolve(ctx, accessToken)
}

// resolve verifies a token and loads its subject. Unknown subjects are
// reported as invalid tokens.
func (s *AuthService) resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issuePair(userID uuid.UUID) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.Issue(userID.String(), s.lifetimes.Access)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokens.Issue(userID.String(), s.lifetimes.Refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
