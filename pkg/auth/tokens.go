// Package auth implements the token lifecycle: short-lived access tokens,
// longer-lived refresh tokens, and password hashing.
//
// The access/refresh split limits the blast radius of a leaked long-lived
// token; the `type` claim stops a refresh token from being replayed as an
// access token at the authorization guard.
package auth

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claims.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken is the single sentinel returned for every verification
// failure — malformed, expired, bad signature, wrong algorithm. Callers
// never learn which; the reason goes to logs only.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the typed JWT payload. Subject carries the user id.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Manager issues and verifies signed tokens. Construct once from config and
// inject wherever tokens are handled.
type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *slog.Logger
}

// NewManager builds a Manager. algorithm must be one of HS256, HS384, HS512.
func NewManager(secret, algorithm string, accessTTL, refreshTTL time.Duration, log *slog.Logger) (*Manager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, errors.New("auth: unsupported signing algorithm " + algorithm)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}, nil
}

// IssueAccess creates a signed access token for the given user.
func (m *Manager) IssueAccess(userID uint) (string, error) {
	return m.issue(userID, TypeAccess, m.accessTTL)
}

// IssueRefresh creates a signed refresh token for the given user.
func (m *Manager) IssueRefresh(userID uint) (string, error) {
	return m.issue(userID, TypeRefresh, m.refreshTTL)
}

func (m *Manager) issue(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
// Any failure returns ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
	)
	if err != nil {
		m.log.Debug("token rejected", "reason", err.Error())
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		m.log.Debug("token rejected", "reason", "invalid claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}
