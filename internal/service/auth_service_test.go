package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"polisave/internal/config"
	"polisave/internal/domain"
	"polisave/internal/service"
	"polisave/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "polisave-test",
	}
}

func hashPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(hash)
}

func activeUser(password string) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Email:        "user@test.com",
		PasswordHash: hashPassword(password),
		FullName:     "Test User",
		Role:         domain.RoleMember,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("password123")
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("correct-password")
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	userRepo.On("GetByEmail", mock.Anything, "nobody@test.com").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@test.com",
		Password: "whatever123",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("password123")
	user.IsActive = false
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthService_ValidateToken_RoundTrip(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("password123")
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.RoleMember, claims.Role)
}

func TestAuthService_ValidateToken_RejectsRefreshToken(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("password123")
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// The refresh token carries the refresh audience and must not pass as an
	// access token.
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_RefreshToken(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, testJWTConfig())

	user := activeUser("password123")
	userRepo.On("GetByEmail", mock.Anything, "user@test.com").Return(user, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token must not be accepted for refresh.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
