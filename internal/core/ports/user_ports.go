package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error)
	ListWithRefreshToken(ctx context.Context) ([]*domain.User, error)
	// ClearRefreshTokenIf clears the stored refresh token and marks the user
	// offline only while the stored token still equals expected. It reports
	// whether a row was changed.
	ClearRefreshTokenIf(ctx context.Context, id uuid.UUID, expected string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}
