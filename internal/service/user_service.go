package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"polisave/internal/domain"
	"polisave/internal/port"
)

// CreateUserInput is the DTO for admin user creation.
type CreateUserInput struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	FullName string          `json:"full_name" binding:"required"`
	Role     domain.UserRole `json:"role"`
}

// UserService manages user accounts.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
}

type userService struct {
	users port.UserRepository
}

// NewUserService creates a new UserService implementation.
func NewUserService(users port.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("userService.Create: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *userService) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	return s.users.List(ctx, offset, limit)
}
