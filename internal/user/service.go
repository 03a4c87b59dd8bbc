package user

import (
	"context"
	"fmt"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/go-playground/validator/v10"
)

// Repository returns (nil, nil) for unknown users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type PasswordHasher func(password string) (string, error)

type Service struct {
	repo     Repository
	hash     PasswordHasher
	validate *validator.Validate
}

func NewService(repo Repository, hash PasswordHasher) *Service {
	return &Service{
		repo:     repo,
		hash:     hash,
		validate: validator.New(),
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, internal.NewNotFoundError("User not found", "USER_NOT_FOUND")
	}
	return u, nil
}

// EnsureUser creates the user unless the username is already taken.
// It reports whether a row was created.
func (s *Service) EnsureUser(ctx context.Context, dto CreateUserDTO) (bool, error) {
	if err := s.validate.Struct(dto); err != nil {
		return false, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := s.hash(dto.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:     dto.Username,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         identity.ParseRole(dto.Role),
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return true, nil
}
