package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
)

func newGuardFixture(t *testing.T) (*Guard, *auth.Manager, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	tokens, err := auth.NewManager("test-secret", "HS256", time.Minute, time.Hour, logger.L)
	require.NoError(t, err)

	return NewGuard(tokens, repositories.NewUserRepository(db)), tokens, db
}

func seedUser(t *testing.T, db *gorm.DB, active, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "user@example.com",
		PasswordHash: "irrelevant",
		IsActive:     active,
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doGuarded(guard func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, *models.User) {
	var seen *models.User
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuthAcceptsAccessToken(t *testing.T) {
	g, tokens, db := newGuardFixture(t)
	user := seedUser(t, db, true, false)

	token, err := tokens.IssueAccess(user.ID)
	require.NoError(t, err)

	rec, seen := doGuarded(g.RequireAuth, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestRequireAuthRejections(t *testing.T) {
	g, tokens, db := newGuardFixture(t)
	active := seedUser(t, db, true, false)

	inactive := &models.User{Email: "off@example.com", PasswordHash: "x", IsActive: false}
	require.NoError(t, db.Create(inactive).Error)

	refresh, err := tokens.IssueRefresh(active.ID)
	require.NoError(t, err)
	inactiveToken, err := tokens.IssueAccess(inactive.ID)
	require.NoError(t, err)
	ghostToken, err := tokens.IssueAccess(99999)
	require.NoError(t, err)

	cases := map[string]string{
		"no token":            "",
		"garbage token":       "not.a.jwt",
		"refresh as access":   refresh,
		"inactive account":    inactiveToken,
		"nonexistent account": ghostToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec, seen := doGuarded(g.RequireAuth, token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Nil(t, seen)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	g, tokens, db := newGuardFixture(t)

	regular := seedUser(t, db, true, false)
	admin := &models.User{Email: "admin@example.com", PasswordHash: "x", IsActive: true, IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)

	regularToken, err := tokens.IssueAccess(regular.ID)
	require.NoError(t, err)
	adminToken, err := tokens.IssueAccess(admin.ID)
	require.NoError(t, err)

	rec, _ := doGuarded(g.RequireAdmin, regularToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, seen := doGuarded(g.RequireAdmin, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.IsAdmin)
}
