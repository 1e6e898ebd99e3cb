// Package controllers holds the HTTP layer: decode the request, call the
// service, write the envelope. No business rules live here.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type AuthController struct {
	auth         *services.AuthService
	maxBodyBytes int64
}

func NewAuthController(auth *services.AuthService, maxBodyBytes int64) *AuthController {
	return &AuthController{auth: auth, maxBodyBytes: maxBodyBytes}
}

// Register handles POST /auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		FullName string `json:"full_name" validate:"nullable,max=255"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.Register(r.Context(), body.Email, body.Password, body.FullName)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, user)
}

// Login handles POST /auth/login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	pair, err := c.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, pair)
}

// Refresh handles POST /auth/refresh.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	pair, err := c.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, pair)
}

// Me handles GET /auth/me. The guard has already resolved the user.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	response.Success(w, middleware.CurrentUser(r.Context()))
}
