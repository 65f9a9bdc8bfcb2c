package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"animalsquad/internal/auth"
	apperrors "animalsquad/internal/errors"
	"animalsquad/internal/model"
)

func newAuthFixture() (*MockPetRepository, *MockTokenStore, *auth.JWTService, AuthService) {
	pets := new(MockPetRepository)
	tokens := new(MockTokenStore)
	jwtService := auth.NewJWTService("test-secret", 15*time.Minute, refreshTTL)
	return pets, tokens, jwtService, NewAuthService(pets, jwtService, tokens, zap.NewNop())
}

func petWithPassword(t *testing.T, password string) *model.Pet {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	pet := storedPet()
	pet.Password = string(hashed)
	return pet
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		loginID       string
		password      string
		setupMock     func(pets *MockPetRepository, tokens *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			loginID:  "fido1",
			password: "password123",
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				pets.On("FindByLoginID", mock.Anything, "fido1").Return(petWithPassword(t, "password123"), nil)
				tokens.On("StoreRefreshToken", mock.Anything, "fido1", mock.AnythingOfType("string"), refreshTTL).Return(nil)
			},
		},
		{
			name:     "unknown login id",
			loginID:  "ghost",
			password: "password123",
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				pets.On("FindByLoginID", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			loginID:  "fido1",
			password: "wrongpassword",
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				pets.On("FindByLoginID", mock.Anything, "fido1").Return(petWithPassword(t, "password123"), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pets, tokens, jwtService, svc := newAuthFixture()
			tt.setupMock(pets, tokens)

			info, pet, err := svc.Login(context.Background(), tt.loginID, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, info)
				assert.Nil(t, pet)
				tokens.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Bearer", info.GrantType)
				assert.Equal(t, refreshTTL.Milliseconds(), info.RefreshTokenExpirationTime)
				claims, err := jwtService.ValidateToken(info.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, pet.ID, claims.PetID)
				assert.Equal(t, []string{"ROLE_USER"}, claims.Auth)
			}

			pets.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Reissue(t *testing.T) {
	_, _, issuer, _ := newAuthFixture()
	issued, err := issuer.DelegateToken(storedPet())
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(pets *MockPetRepository, tokens *MockTokenStore)
		expectedError error
	}{
		{
			name:  "matching refresh token",
			token: issued.RefreshToken,
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				tokens.On("GetRefreshToken", mock.Anything, "fido1").Return(issued.RefreshToken, nil)
				pets.On("FindByLoginID", mock.Anything, "fido1").Return(storedPet(), nil)
				tokens.On("StoreRefreshToken", mock.Anything, "fido1", mock.AnythingOfType("string"), refreshTTL).Return(nil)
			},
		},
		{
			name:          "malformed token",
			token:         "not-a-jwt",
			setupMock:     func(pets *MockPetRepository, tokens *MockTokenStore) {},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:  "nothing cached",
			token: issued.RefreshToken,
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				tokens.On("GetRefreshToken", mock.Anything, "fido1").Return("", nil)
			},
			expectedError: apperrors.ErrRefreshTokenNotFound,
		},
		{
			name:  "superseded token",
			token: issued.RefreshToken,
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				tokens.On("GetRefreshToken", mock.Anything, "fido1").Return("newer-token", nil)
			},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:  "account deleted",
			token: issued.RefreshToken,
			setupMock: func(pets *MockPetRepository, tokens *MockTokenStore) {
				tokens.On("GetRefreshToken", mock.Anything, "fido1").Return(issued.RefreshToken, nil)
				pets.On("FindByLoginID", mock.Anything, "fido1").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrPetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pets, tokens, _, svc := newAuthFixture()
			tt.setupMock(pets, tokens)

			info, err := svc.Reissue(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, info)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, issued.RefreshToken, info.RefreshToken)
			}

			pets.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes both tokens", func(t *testing.T) {
		_, tokens, jwtService, svc := newAuthFixture()
		info, err := jwtService.DelegateToken(storedPet())
		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(info.AccessToken)
		require.NoError(t, err)

		tokens.On("DeleteRefreshToken", mock.Anything, "fido1").Return(nil).Once()
		tokens.On("BlacklistAccessToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= 15*time.Minute
		})).Return(nil).Once()

		require.NoError(t, svc.Logout(context.Background(), info.AccessToken))
		tokens.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, tokens, _, svc := newAuthFixture()

		err := svc.Logout(context.Background(), "garbage")

		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		tokens.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("cache failure", func(t *testing.T) {
		_, tokens, jwtService, svc := newAuthFixture()
		info, err := jwtService.DelegateToken(storedPet())
		require.NoError(t, err)
		tokens.On("DeleteRefreshToken", mock.Anything, "fido1").Return(errors.New("redis down"))

		err = svc.Logout(context.Background(), info.AccessToken)

		require.Error(t, err)
		tokens.AssertNotCalled(t, "BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})
}
