package api

import (
	"context"
	"net/http"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type AuthService struct {
	client *Client
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterRequest struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Phone    string      `json:"phone" validate:"required,bd_phone"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=user mechanic"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := s.client.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	out.User.Token = out.Token
	return &out, nil
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := s.client.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	out.User.Token = out.Token
	return &out, nil
}

// Me resolves the principal behind the current token.
func (s *AuthService) Me(ctx context.Context) (*models.Principal, error) {
	var out models.Principal
	if _, err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
