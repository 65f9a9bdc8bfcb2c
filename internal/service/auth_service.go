package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"animalsquad/internal/auth"
	apperrors "animalsquad/internal/errors"
	"animalsquad/internal/model"
	"animalsquad/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, loginID, password string) (*auth.TokenInfo, *model.Pet, error)
	Reissue(ctx context.Context, refreshToken string) (*auth.TokenInfo, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	pets       repository.PetRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(pets repository.PetRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	return &authService{
		pets:       pets,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
	}
}

// Login authenticates a pet and returns a fresh token pair.
func (s *authService) Login(ctx context.Context, loginID, password string) (*auth.TokenInfo, *model.Pet, error) {
	pet, err := s.pets.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find pet: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(pet.Password), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	info, err := s.issue(ctx, pet)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("pet logged in", zap.Uint("pet_id", pet.ID))
	return info, pet, nil
}

// Reissue exchanges a refresh token that matches the cached one for a new pair.
func (s *authService) Reissue(ctx context.Context, refreshToken string) (*auth.TokenInfo, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if stored == "" {
		return nil, apperrors.ErrRefreshTokenNotFound
	}
	if stored != refreshToken {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	pet, err := s.pets.FindByLoginID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet: %w", err)
	}

	return s.issue(ctx, pet)
}

// Logout drops the refresh token and blacklists the access token until it expires.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.Subject); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, pet *model.Pet) (*auth.TokenInfo, error) {
	info, err := s.jwtService.DelegateToken(pet)
	if err != nil {
		return nil, fmt.Errorf("delegate token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, pet.LoginID, info.RefreshToken, info.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return info, nil
}
