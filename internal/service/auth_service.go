package service

import (
	"context"
	"fmt"
	"strings"

	"taskhub/internal/core/auth"
	"taskhub/internal/domain"
	"taskhub/pkg/utils"
)

type AuthService struct {
	users *UserService
	jwt   *auth.JWTer
}

func NewAuthService(users *UserService, j *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwt: j}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup always creates a plain user; admins are made through /api/users.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	email := domain.NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, domain.ErrSignupFieldsRequired
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < domain.MinPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}
	return s.users.create(ctx, name, email, req.Password, domain.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, *domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return "", nil, domain.ErrLoginFieldsRequired
	}
	u, err := s.users.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrEmailNotRegistered
	}
	if !utils.CheckPassword(req.Password, u.PasswordHash) {
		return "", nil, ErrIncorrectPassword
	}
	tok, err := s.jwt.Issue(u.ID, string(u.Role))
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, u, nil
}

// Verify resolves a raw token to its user id.
func (s *AuthService) Verify(token string) (string, error) {
	c, err := s.jwt.Parse(token)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
