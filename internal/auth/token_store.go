package auth

import (
	"context"
	"time"

	"animalsquad/internal/cache"
)

const (
	refreshTokenKeyPrefix = "RT:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, loginID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, loginID string) (string, error)
	DeleteRefreshToken(ctx context.Context, loginID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps refresh tokens and the access token blacklist in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RefreshTokenKey is the cache key of a login id's refresh token.
func RefreshTokenKey(loginID string) string {
	return refreshTokenKeyPrefix + loginID
}

// StoreRefreshToken stores a refresh token under RT:<loginID> with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, loginID, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, RefreshTokenKey(loginID), []byte(token), ttl)
}

// GetRefreshToken returns the stored refresh token, or "" when none is cached.
func (s *TokenStore) GetRefreshToken(ctx context.Context, loginID string) (string, error) {
	data, err := s.cache.Get(ctx, RefreshTokenKey(loginID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, loginID string) error {
	return s.cache.Delete(ctx, RefreshTokenKey(loginID))
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := accessTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, []byte("logout"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
