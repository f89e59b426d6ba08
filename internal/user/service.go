// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/apptnu/portal/internal/auth"
	"github.com/apptnu/portal/internal/core"
)

type Service struct {
	repo   Repository
	hasher *core.PasswordHasher
}

func NewService(repo Repository, hasher *core.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) Create(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	role := req.Role
	if role == "" {
		role = RoleMember
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// EnsureAdmin creates the bootstrap administrator unless an account with
// that email already exists. An existing account is left untouched.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	email, password string,
) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	_, err = s.Create(ctx, CreateUserRequest{
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	return true, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
