package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
)

type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
	IsAdult  bool
}

type SignInResult struct {
	User   domain.PublicUser
	Tokens domain.TokenPair
}

type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// Authenticate resolves the owner of an access token.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type SessionSweeper interface {
	// SweepExpired clears stored refresh tokens that no longer verify and
	// marks their owners offline. It returns the number of users swept.
	SweepExpired(ctx context.Context) (int, error)
}
