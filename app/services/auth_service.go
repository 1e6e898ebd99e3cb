// Package services holds the business logic layer. Services sit between
// controllers and repositories: they own the rules, return typed errors
// from pkg/apperr, and never touch the HTTP layer.
package services

import (
	"context"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
)

// TokenPair is the response body for login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService implements registration, login and token refresh.
type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.Manager
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account. Duplicate emails are rejected before the
// insert; the unique index is the backstop for concurrent registrations.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("Email already registered")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email,
// wrong password and deactivated account all collapse to the same 401 so
// the endpoint cannot be used to probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.Unauthorized("Incorrect email or password")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	return s.issuePair(user.ID)
}

// Refresh exchanges a valid refresh token for a new token pair. Access
// tokens are rejected here: only the `type: refresh` claim may mint new
// credentials.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("")
	}
	if claims.Type != auth.TypeRefresh {
		return nil, apperr.Unauthorized("")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.Unauthorized("")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("")
	}

	return s.issuePair(user.ID)
}

func (s *AuthService) issuePair(userID uint) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
