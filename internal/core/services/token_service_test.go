package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService([]byte("test-secret"), WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(nil)
	assert.Error(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 250_000_000)}
	s := newTestTokenService(t, clock)

	token, err := s.Issue("user-1", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, int64(1_700_000_000+15*60), claims.ExpiresAt.Unix())
	assert.Equal(t, int64(1_700_000_000), claims.IssuedAt.Unix())
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: issuedAt}
	s := newTestTokenService(t, clock)

	const d = 60 * time.Second
	token, err := s.Issue("user-1", d)
	require.NoError(t, err)

	clock.now = issuedAt.Add(d - time.Second)
	_, err = s.Verify(token)
	assert.NoError(t, err, "token must be valid one second before expiry")

	clock.now = issuedAt.Add(d)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "token is expired at exactly exp")

	clock.now = issuedAt.Add(d + time.Second)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_IssueProducesDistinctTokens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := newTestTokenService(t, clock)

	a, err := s.Issue("user-1", time.Minute)
	require.NoError(t, err)
	b, err := s.Issue("user-1", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenService_IssueRejectsNonPositiveLifetime(t *testing.T) {
	s := newTestTokenService(t, &fakeClock{now: time.Now()})

	_, err := s.Issue("user-1", 0)
	assert.Error(t, err)

	_, err = s.Issue("", time.Minute)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestTokenService(t, clock)

	other, err := NewTokenService([]byte("other-secret"), WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue("user-1", time.Minute)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"missing exp", noExp},
		{"missing sub", noSub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
