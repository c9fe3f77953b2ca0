package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
	"github.com/vncsmyrnk/auth-service/internal/core/ports"
)

var testLifetimes = TokenLifetimes{
	Access:  5 * time.Minute,
	Refresh: 7 * 24 * time.Hour,
}

type authFixture struct {
	repo    *MockUserRepository
	hasher  *MockPasswordHasher
	tokens  *TokenService
	service *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := NewTokenService([]byte("test-secret"))
	require.NoError(t, err)

	f := &authFixture{
		repo:   new(MockUserRepository),
		hasher: new(MockPasswordHasher),
		tokens: tokens,
	}
	f.service = NewAuthService(f.repo, f.tokens, f.hasher, testLifetimes, nil)
	return f
}

func newStoredUser() *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "digest",
	}
}

func TestAuthService_SignUp(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.hasher.On("Hash", "password1").Return("digest", nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@x.com" && u.PasswordHash == "digest" && u.IsAdult
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = uuid.New()
	}).Return(nil)

	user, err := f.service.SignUp(ctx, ports.SignUpInput{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "password1",
		IsAdult:  true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, domain.PublicUser{ID: user.ID, Name: "Alice", Email: "a@x.com"}, user.Public())
	f.repo.AssertExpectations(t)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.hasher.On("Hash", "password1").Return("digest", nil)
	f.repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := f.service.SignUp(ctx, ports.SignUpInput{Name: "Alice", Email: "a@x.com", Password: "password1", IsAdult: true})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthService_SignUp_HashFailure(t *testing.T) {
	f := newAuthFixture(t)

	f.hasher.On("Hash", "password1").Return("", errors.New("boom"))

	_, err := f.service.SignUp(context.Background(), ports.SignUpInput{Name: "Alice", Email: "a@x.com", Password: "password1"})
	require.Error(t, err)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := newStoredUser()

	f.repo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	f.hasher.On("Verify", "password1", "digest").Return(true)

	var stored *string
	f.repo.On("Update", ctx, user.ID, mock.MatchedBy(func(p domain.UserPatch) bool {
		return p.IsOnline != nil && *p.IsOnline && p.SetRefreshToken && p.RefreshToken != nil
	})).Run(func(args mock.Arguments) {
		stored = args.Get(2).(domain.UserPatch).RefreshToken
	}).Return(user, nil)

	result, err := f.service.SignIn(ctx, user.Email, "password1")
	require.NoError(t, err)

	assert.Equal(t, user.Public(), result.User)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.NotEqual(t, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	require.NotNil(t, stored)
	assert.Equal(t, result.Tokens.RefreshToken, *stored)

	access, err := f.tokens.Verify(result.Tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.tokens.Verify(result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), access.Subject)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
}

func TestAuthService_SignIn_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := newStoredUser()

	f.repo.On("GetByEmail", ctx, "missing@x.com").Return(nil, domain.ErrUserNotFound)
	f.repo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	f.hasher.On("Verify", "wrong-password", "digest").Return(false)

	_, errUnknown := f.service.SignIn(ctx, "missing@x.com", "password1")
	_, errWrong := f.service.SignIn(ctx, user.Email, "wrong-password")

	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_SignIn_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.repo.On("GetByEmail", ctx, "a@x.com").Return(nil, errors.New("connection refused"))

	_, err := f.service.SignIn(ctx, "a@x.com", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := newStoredUser()

	old, err := f.tokens.Issue(user.ID.String(), testLifetimes.Refresh)
	require.NoError(t, err)

	f.repo.On("GetByID", ctx, user.ID.String()).Return(user, nil)
	var patch domain.UserPatch
	f.repo.On("Update", ctx, user.ID, mock.Anything).Run(func(args mock.Arguments) {
		patch = args.Get(2).(domain.UserPatch)
	}).Return(user, nil)

	pair, err := f.service.Refresh(ctx, old)
	require.NoError(t, err)

	assert.NotEqual(t, old, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Nil(t, patch.IsOnline, "refresh must not touch the online flag")
	assert.True(t, patch.SetRefreshToken)
	require.NotNil(t, patch.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *patch.RefreshToken)
}

func TestAuthService_Refresh_Failures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	ghost, err := f.tokens.Issue(uuid.NewString(), time.Minute)
	require.NoError(t, err)
	f.repo.On("GetByID", ctx, mock.Anything).Return(nil, domain.ErrUserNotFound)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing", "", domain.ErrMissingToken},
		{"garbage", "garbage", domain.ErrInvalidToken},
		{"unknown subject", ghost, domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := newStoredUser()

	f.repo.On("Update", ctx, user.ID, mock.MatchedBy(func(p domain.UserPatch) bool {
		return p.IsOnline != nil && !*p.IsOnline && p.SetRefreshToken && p.RefreshToken == nil
	})).Return(user, nil)

	require.NoError(t, f.service.Logout(ctx, user.ID))
	f.repo.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := newStoredUser()

	token, err := f.tokens.Issue(user.ID.String(), time.Minute)
	require.NoError(t, err)
	f.repo.On("GetByID", ctx, user.ID.String()).Return(user, nil)

	got, err := f.service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.service.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingToken)
}

func TestAuthService_Authenticate_StoreFailureIsNotInvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(uuid.NewString(), time.Minute)
	require.NoError(t, err)
	f.repo.On("GetByID", ctx, mock.Anything).Return(nil, errors.New("db down"))

	_, err = f.service.Authenticate(ctx, token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidToken)
}
