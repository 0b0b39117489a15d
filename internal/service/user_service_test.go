package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"polisave/internal/domain"
	"polisave/internal/service"
	"polisave/mocks"
)

func TestUserService_Create(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewUserService(userRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "new@test.com",
		Password: "password123",
		FullName: "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@test.com", user.Email)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	userRepo.AssertExpectations(t)
}

func TestUserService_Create_ExplicitRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewUserService(userRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "admin@test.com",
		Password: "password123",
		FullName: "Admin",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewUserService(userRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "dup@test.com",
		Password: "password123",
		FullName: "Dup",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}
