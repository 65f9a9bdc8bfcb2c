package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"animalsquad/internal/model"
)

const grantType = "Bearer"

// Claims represents JWT claims. Subject carries the login id.
type Claims struct {
	PetID uint     `json:"petId"`
	Auth  []string `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is the pair handed to a client after authentication.
type TokenInfo struct {
	GrantType                  string `json:"grantType"`
	AccessToken                string `json:"accessToken"`
	RefreshToken               string `json:"refreshToken"`
	RefreshTokenExpirationTime int64  `json:"refreshTokenExpirationTime"` // milliseconds
}

// RefreshTokenTTL is the refresh token validity as a duration.
func (t *TokenInfo) RefreshTokenTTL() time.Duration {
	return time.Duration(t.RefreshTokenExpirationTime) * time.Millisecond
}

// TokenIssuer mints token pairs for a pet.
type TokenIssuer interface {
	DelegateToken(pet *model.Pet) (*TokenInfo, error)
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ TokenIssuer = (*JWTService)(nil)

// NewJWTService creates a new JWT service with the given secret and lifetimes.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// DelegateToken issues an access token carrying the pet's roles and a refresh token.
func (s *JWTService) DelegateToken(pet *model.Pet) (*TokenInfo, error) {
	accessToken, err := s.sign(pet, pet.Roles.Authorities(), s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(pet, nil, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenInfo{
		GrantType:                  grantType,
		AccessToken:                accessToken,
		RefreshToken:               refreshToken,
		RefreshTokenExpirationTime: s.refreshTTL.Milliseconds(),
	}, nil
}

func (s *JWTService) sign(pet *model.Pet, authorities []string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		PetID: pet.ID,
		Auth:  authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   pet.LoginID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RemainingTTL is how long the token stays valid from now.
func (s *JWTService) RemainingTTL(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	if left := claims.ExpiresAt.Time.Sub(s.now()); left > 0 {
		return left
	}
	return 0
}
