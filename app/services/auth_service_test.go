package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.Manager, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	tokens, err := auth.NewManager("test-secret", "HS256", 30*time.Minute, 7*24*time.Hour, logger.L)
	require.NoError(t, err)
	return NewAuthService(repositories.NewUserRepository(db), tokens), tokens, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens, _ := newAuthFixture(t)

	user, err := svc.Register(context.Background(), "new@example.com", "password123", "New User")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "password123", user.PasswordHash)

	pair, err := svc.Login(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	claims, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.TypeAccess, claims.Type)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), "dup@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dup@example.com", "different456", "")
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _, db := newAuthFixture(t)
	createTestUser(t, db, "known@example.com")

	inactive := createTestUser(t, db, "inactive@example.com")
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	cases := map[string]struct{ email, password string }{
		"unknown email":    {"nobody@example.com", "password123"},
		"wrong password":   {"known@example.com", "not-the-password"},
		"inactive account": {"inactive@example.com", "password123"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
			assert.Equal(t, "Incorrect email or password", apperr.ClientMessage(err))
		})
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, tokens, db := newAuthFixture(t)
	user := createTestUser(t, db, "refresh@example.com")

	refresh, err := tokens.IssueRefresh(user.ID)
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.TypeAccess, claims.Type)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, tokens, db := newAuthFixture(t)
	user := createTestUser(t, db, "refresh@example.com")

	access, err := tokens.IssueAccess(user.ID)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, tokens, db := newAuthFixture(t)
	user := createTestUser(t, db, "gone@example.com")

	refresh, err := tokens.IssueRefresh(user.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("is_active", false).Error)

	_, err = svc.Refresh(context.Background(), refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}
