// Package middleware holds the domain-aware middleware: the authorization
// guard that resolves bearer tokens to user accounts.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

// userKey is the unexported context key carrying the authenticated user.
type userKey struct{}

// Guard authenticates requests: it extracts the bearer token, verifies it,
// checks the claim type is "access", resolves the subject to an active user
// and stores that user in the request context. Every failure is a uniform
// 401 so callers cannot distinguish why a credential was rejected. The
// guard reads but never writes the credential store.
type Guard struct {
	tokens *auth.Manager
	users  *repositories.UserRepository
}

func NewGuard(tokens *auth.Manager, users *repositories.UserRepository) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// RequireAuth rejects requests without a valid access token for an active
// account. On success the resolved user rides the request context.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := g.resolve(r)
		if !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin composes on top of RequireAuth: the authenticated user must
// also carry the admin flag, otherwise the request fails 403 rather than
// the guard's 401.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.IsAdmin {
			response.Forbidden(w, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (g *Guard) resolve(r *http.Request) (*models.User, bool) {
	log := logger.WithCtx(r.Context())

	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, false
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, false
	}
	if claims.Type != auth.TypeAccess {
		log.Debug("token rejected", "reason", "wrong token type", "type", claims.Type)
		return nil, false
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, false
	}

	user, err := g.users.FindByID(r.Context(), userID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			log.Error("guard: user lookup failed", "error", err.Error())
		}
		return nil, false
	}
	if !user.IsActive {
		return nil, false
	}

	return user, true
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// CurrentUser returns the authenticated user stored by RequireAuth, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}
