package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/pkg/auth"
)

func newManager(t *testing.T, secret string, accessTTL time.Duration) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(secret, "HS256", accessTTL, 7*24*time.Hour, nil)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := newManager(t, "test-secret", 30*time.Minute)

	token, err := m.IssueAccess(42)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.TypeAccess, claims.Type)
	assert.Equal(t, "42", claims.Subject)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestRefreshTokenCarriesRefreshType(t *testing.T) {
	m := newManager(t, "test-secret", 30*time.Minute)

	token, err := m.IssueRefresh(7)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.TypeRefresh, claims.Type)
}

func TestRejectsForeignSecret(t *testing.T) {
	issuer := newManager(t, "secret-a", 30*time.Minute)
	verifier := newManager(t, "secret-b", 30*time.Minute)

	token, err := issuer.IssueAccess(1)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRejectsExpiredToken(t *testing.T) {
	m := newManager(t, "test-secret", -time.Minute)

	token, err := m.IssueAccess(1)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRejectsTamperedPayload(t *testing.T) {
	m := newManager(t, "test-secret", 30*time.Minute)

	token, err := m.IssueAccess(1)
	require.NoError(t, err)

	// Flip a character inside the payload segment.
	mid := len(token) / 2
	tampered := token[:mid] + "x" + token[mid+1:]

	_, err = m.Verify(tampered)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRejectsMalformedToken(t *testing.T) {
	m := newManager(t, "test-secret", 30*time.Minute)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRejectsAlgorithmNone(t *testing.T) {
	m := newManager(t, "test-secret", 30*time.Minute)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, auth.CheckPassword(hash, "hunter22"))
	assert.False(t, auth.CheckPassword(hash, "hunter23"))
}
