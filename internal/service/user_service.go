package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskhub/internal/core/cache"
	"taskhub/internal/domain"
	"taskhub/pkg/utils"
)

type UserService struct {
	users    domain.UserRepository
	tasks    domain.TaskRepository
	cache    *cache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewUserService accepts a nil cache; principal lookups then always hit the store.
func NewUserService(users domain.UserRepository, tasks domain.TaskRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *UserService {
	return &UserService{users: users, tasks: tasks, cache: c, cacheTTL: ttl, log: l}
}

// UserInput is the admin create payload.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserPatch is the admin update payload; empty fields are left unchanged.
type UserPatch struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func principalKey(id string) string { return "principal:" + id }

// Principal loads the user behind a token. Returns (nil, nil) when the user
// no longer exists.
func (s *UserService) Principal(ctx context.Context, id string) (*domain.User, error) {
	if !utils.IsValidID(id) {
		return nil, nil
	}
	return cache.GetOrLoadJSON(s.cache, ctx, principalKey(id), s.cacheTTL, func(ctx context.Context) (*domain.User, error) {
		return s.users.FindByID(ctx, id)
	})
}

func (s *UserService) forget(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, principalKey(id)); err != nil {
		s.log.Warn("principal cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if !utils.IsValidID(id) {
		return nil, ErrUserNotFound
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrUserFieldsRequired
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	role := domain.RoleUser
	if in.Role != "" {
		role = domain.Role(in.Role)
		if !role.Valid() {
			return nil, domain.ErrInvalidRole
		}
	}
	return s.create(ctx, name, email, in.Password, role)
}

func (s *UserService) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{ID: utils.NewID(), Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, p UserPatch) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		u.Name = name
	}
	if email := domain.NormalizeEmail(p.Email); email != "" && email != u.Email {
		if !domain.ValidEmail(email) {
			return nil, domain.ErrInvalidEmail
		}
		other, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != u.ID {
			return nil, ErrEmailTaken
		}
		u.Email = email
	}
	if p.Role != "" {
		role := domain.Role(p.Role)
		if !role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		u.Role = role
	}
	if p.Password != "" {
		hash, err := utils.HashPassword(p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.forget(ctx, u.ID)
	return u, nil
}

// Delete removes the user and every task they own.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if !utils.IsValidID(id) {
		return ErrUserNotFound
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	s.forget(ctx, id)
	n, err := s.tasks.DeleteByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete tasks of %s: %w", id, err)
	}
	s.log.Info("user deleted", zap.String("user_id", id), zap.Int64("tasks_removed", n))
	return nil
}

// EnsureAdmin creates an admin account, or promotes the existing account with
// that email. The password of an existing account is left alone.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	email = domain.NormalizeEmail(email)
	if !domain.ValidEmail(email) {
		return nil, false, domain.ErrInvalidEmail
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if u != nil {
		if u.Role == domain.RoleAdmin {
			return u, false, nil
		}
		u.Role = domain.RoleAdmin
		if err := s.users.Update(ctx, u); err != nil {
			return nil, false, err
		}
		s.forget(ctx, u.ID)
		return u, false, nil
	}
	if len(password) < domain.MinPasswordLen {
		return nil, false, domain.ErrPasswordTooShort
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	u, err = s.create(ctx, strings.TrimSpace(name), email, password, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
