package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storehub/auth-service/config"
	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
)

// TokenPayload is the minimal identity claim carried by both token kinds.
type TokenPayload struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens with distinct
// secrets and lifetimes. It performs no I/O and holds no mutable state, so
// it is safe for concurrent use across requests.
type TokenService struct {
	accessSecret     []byte
	refreshSecret    []byte
	accessExpiresIn  time.Duration
	refreshExpiresIn time.Duration
}

// NewTokenService fails on misconfiguration so a missing secret is caught
// at startup, not on the first request.
func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("access token secret is not configured")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("refresh token secret is not configured")
	}

	return &TokenService{
		accessSecret:     []byte(cfg.AccessSecret),
		refreshSecret:    []byte(cfg.RefreshSecret),
		accessExpiresIn:  cfg.AccessExpiresIn,
		refreshExpiresIn: cfg.RefreshExpiresIn,
	}, nil
}

// AccessExpiresIn reports the configured access token lifetime.
func (s *TokenService) AccessExpiresIn() time.Duration {
	return s.accessExpiresIn
}

// RefreshExpiresIn reports the configured refresh token lifetime.
func (s *TokenService) RefreshExpiresIn() time.Duration {
	return s.refreshExpiresIn
}

// SignAccessToken creates a short-lived HS256 access token for the user.
func (s *TokenService) SignAccessToken(userID uint) (string, error) {
	return s.sign(userID, s.accessSecret, s.accessExpiresIn)
}

// SignRefreshToken creates a long-lived HS256 refresh token for the user.
func (s *TokenService) SignRefreshToken(userID uint) (string, error) {
	return s.sign(userID, s.refreshSecret, s.refreshExpiresIn)
}

func (s *TokenService) sign(userID uint, secret []byte, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := TokenPayload{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps two tokens for the same user distinct even
			// when signed within the same second.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		// Only reachable on misconfiguration or a library fault
		logger.GetLogger().Error("Failed to sign token", zap.Error(err))
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return signed, nil
}

// VerifyAccessToken validates signature and expiry against the access
// secret and returns the payload.
func (s *TokenService) VerifyAccessToken(tokenString string) (*TokenPayload, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefreshToken validates signature and expiry against the refresh
// secret and returns the payload.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*TokenPayload, error) {
	return s.verify(tokenString, s.refreshSecret)
}

// verify collapses every parse, signature, and expiry failure into the one
// generic invalid-token error so callers cannot distinguish why a token
// was rejected.
func (s *TokenService) verify(tokenString string, secret []byte) (*TokenPayload, error) {
	var payload TokenPayload

	token, err := jwt.ParseWithClaims(tokenString, &payload, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		logger.GetLogger().Debug("Token verification failed", zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return &payload, nil
}
