package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15*time.Minute)
	userID := uuid.New().String()

	token, err := tm.Generate(userID, "rider@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "rider@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate(uuid.New().String(), "rider@example.com", "user")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	signer := auth.NewTokenManager("secret-one", 15*time.Minute)
	verifier := auth.NewTokenManager("secret-two", 15*time.Minute)

	token, err := signer.Generate(uuid.New().String(), "rider@example.com", "user")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

// A refresh token must never verify as an access token, and vice versa. The
// two managers hold independent secrets, so cross-class validation fails
// even though both tokens are well-formed JWTs.
func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	accessTokens := auth.NewTokenManager("access-secret", 15*time.Minute)
	refreshTokens := auth.NewTokenManager("refresh-secret", 7*24*time.Hour)
	userID := uuid.New().String()

	accessToken, err := accessTokens.Generate(userID, "rider@example.com", "user")
	require.NoError(t, err)
	refreshToken, err := refreshTokens.Generate(userID, "rider@example.com", "user")
	require.NoError(t, err)

	_, err = refreshTokens.Validate(accessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = accessTokens.Validate(refreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenGarbageInput(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15*time.Minute)

	_, err := tm.Validate("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
