package controllers

import (
	"context"
	"time"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

type AuthControllerI interface {
	Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.UserResponse, error)
	Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error)
	GoogleLogin(ctx context.Context, req *schemas.GoogleLoginRequest) (*schemas.TokenResponse, error)
}

type AuthController struct {
	AuthService services.AuthServiceI
	TokenTTL    time.Duration
}

func NewAuthController(authService services.AuthServiceI, tokenTTL time.Duration) *AuthController {
	return &AuthController{AuthService: authService, TokenTTL: tokenTTL}
}

func (c *AuthController) Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.UserResponse, error) {
	user, err := c.AuthService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

func (c *AuthController) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	user, token, err := c.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return c.tokenResponse(user, token), nil
}

func (c *AuthController) GoogleLogin(ctx context.Context, req *schemas.GoogleLoginRequest) (*schemas.TokenResponse, error) {
	user, token, err := c.AuthService.LoginWithGoogle(ctx, req.Credential)
	if err != nil {
		return nil, err
	}
	return c.tokenResponse(user, token), nil
}

func (c *AuthController) tokenResponse(user *models.User, token string) *schemas.TokenResponse {
	return &schemas.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(c.TokenTTL.Seconds()),
		User:        *userResponse(user),
	}
}

func userResponse(user *models.User) *schemas.UserResponse {
	return &schemas.UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	}
}
