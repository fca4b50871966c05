package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"makazi/constants"
	"makazi/errors"
	"makazi/services/logger"
	"makazi/types"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type UserInfo struct {
	UserId uint       `json:"userid"`
	Role   types.Role `json:"role"`
}

type Claims struct {
	UserInfo UserInfo `json:"userinfo"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	cache  Cache
	logger logger.Logger
}

func NewTokenService(secret string, ttl time.Duration, cache Cache, log logger.Logger) *TokenService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		cache:  cache,
		logger: log,
	}
}

func (s *TokenService) GenerateToken(info UserInfo) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserInfo: info,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   fmt.Sprint(info.UserId),
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.NewAppError(errors.ErrCodeInternal, "Could not sign token", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature, expiry and revocation of tokenString.
func (s *TokenService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, errors.NewAppError(errors.ErrCodeMissingToken, "Missing access token", nil)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Invalid access token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserInfo.UserId == 0 {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Invalid access token", nil)
	}

	revoked, err := s.cache.Exists(ctx, constants.CacheKeyRevokedToken+claims.Id)
	if err != nil {
		s.logger.Warn("token revocation lookup failed: %v", err)
	}
	if revoked {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Session has ended", errors.ErrTokenRevoked)
	}
	return claims, nil
}

// RevokeToken blacklists the token id until the token would expire anyway.
func (s *TokenService) RevokeToken(ctx context.Context, claims *Claims) error {
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, constants.CacheKeyRevokedToken+claims.Id, true, ttl); err != nil {
		return errors.NewAppError(errors.ErrCodeInternal, "Could not end session", err)
	}
	return nil
}
