package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/storehub/auth-service/config"
	"github.com/storehub/auth-service/internal/constants"
	"github.com/storehub/auth-service/internal/dto"
	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type verificationCodeStore interface {
	Upsert(ctx context.Context, code *model.VerificationCode) error
	GetByEmail(ctx context.Context, email string) (*model.VerificationCode, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type refreshTokenStore interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

// otpThrottle limits how often a single email can request a code. The
// redis client implements it.
type otpThrottle interface {
	AllowOTPSend(ctx context.Context, email string, interval time.Duration) (bool, error)
}

// AuthService implements registration, OTP issuance, login, refresh-token
// rotation, and logout.
type AuthService struct {
	users    userStore
	codes    verificationCodeStore
	sessions refreshTokenStore
	roles    *RoleService
	tokens   *TokenService
	throttle otpThrottle
	cfg      config.AuthConfig
}

func NewAuthService(
	users userStore,
	codes verificationCodeStore,
	sessions refreshTokenStore,
	roles *RoleService,
	tokens *TokenService,
	throttle otpThrottle,
	cfg config.AuthConfig,
) *AuthService {
	return &AuthService{
		users:    users,
		codes:    codes,
		sessions: sessions,
		roles:    roles,
		tokens:   tokens,
		throttle: throttle,
		cfg:      cfg,
	}
}

// Register verifies the outstanding REGISTER code for the email, hashes
// the password, and creates the user under the Client role. The code is
// consumed on success.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := s.verifyCode(ctx, req.Email, req.Code, model.VerificationCodeRegister); err != nil {
		return nil, err
	}

	roleID, err := s.roles.ClientRoleID(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.GetLogger().Error("Failed to hash password", zap.Error(err))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Email:       req.Email,
		Name:        req.Name,
		Password:    string(hash),
		PhoneNumber: req.PhoneNumber,
		Status:      model.UserStatusActive,
		RoleID:      roleID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.codes.DeleteByEmail(ctx, req.Email); err != nil {
		// The user exists; a stale code row only lingers until pruning.
		logger.GetLogger().Warn("Failed to consume verification code",
			zap.String("email", req.Email),
			zap.Error(err))
	}

	logger.LogAuth(strconv.FormatUint(uint64(user.ID), 10), "register", true)

	return &dto.RegisterResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Avatar:      user.Avatar,
		Status:      user.Status,
		RoleID:      user.RoleID,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}, nil
}

// SendOTP issues a fresh 6-digit code for the email, overwriting any
// outstanding one. Registration codes are refused for already-registered
// emails, and a redis throttle bounds the resend rate per email.
func (s *AuthService) SendOTP(ctx context.Context, req *dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
	_, err := s.users.GetByEmail(ctx, req.Email)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if req.Type == model.VerificationCodeRegister && exists {
		return nil, apperrors.ErrEmailExists
	}
	if req.Type == model.VerificationCodeForgotPassword && !exists {
		return nil, apperrors.ErrUserNotFound
	}

	allowed, err := s.throttle.AllowOTPSend(ctx, req.Email, s.cfg.OTPResendInterval)
	if err != nil {
		// Fail open on cache trouble; the throttle is rate protection,
		// not a correctness requirement.
		logger.GetLogger().Warn("OTP throttle check failed",
			zap.String("email", req.Email),
			zap.Error(err))
	} else if !allowed {
		return nil, apperrors.ErrOTPResendTooSoon
	}

	code, err := generateOTPCode()
	if err != nil {
		logger.GetLogger().Error("Failed to generate verification code", zap.Error(err))
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	record := &model.VerificationCode{
		Email:     req.Email,
		Code:      code,
		Type:      req.Type,
		ExpiresAt: time.Now().Add(s.cfg.OTPExpiresIn),
	}

	if err := s.codes.Upsert(ctx, record); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// TODO: deliver the code by email once the mail provider account is set
	// up; until then it is only written to the store.
	logger.GetLogger().Info("Verification code issued",
		zap.String("email", req.Email),
		zap.String("type", req.Type),
		zap.Time("expires_at", record.ExpiresAt))

	return &dto.SendOTPResponse{
		Email:     req.Email,
		Type:      req.Type,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Login checks the password and issues an access/refresh token pair,
// recording the refresh token server-side for later rotation.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.LogAuth(strconv.FormatUint(uint64(user.ID), 10), "login", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status == model.UserStatusBlocked {
		return nil, apperrors.ErrUserBlocked
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(strconv.FormatUint(uint64(user.ID), 10), "login", true)

	return &dto.LoginResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// RefreshToken rotates a refresh token: the presented token must verify
// and its row must still exist. A verified token whose row is gone was
// already rotated once, so reuse is denied.
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	payload, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if err := s.sessions.Delete(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.GetLogger().Warn("Refresh token reuse detected",
				zap.Uint("user_id", payload.UserID))
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pair, err := s.issueTokenPair(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout revokes the presented refresh token. Revoking an unknown or
// already-revoked token reports the same invalid-token error as refresh.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	if _, err := s.tokens.VerifyRefreshToken(req.RefreshToken); err != nil {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.sessions.Delete(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidRefreshToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

type tokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func (s *AuthService) issueTokenPair(ctx context.Context, userID uint) (*tokenPair, error) {
	accessToken, err := s.tokens.SignAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.SignRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	record := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshExpiresIn()),
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &tokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessExpiresIn().Seconds()),
	}, nil
}

func (s *AuthService) verifyCode(ctx context.Context, email, code, codeType string) error {
	record, err := s.codes.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOTPInvalid
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if record.Code != code || record.Type != codeType {
		return apperrors.ErrOTPInvalid
	}

	if record.Expired(time.Now()) {
		return apperrors.ErrOTPExpired
	}

	return nil
}

// generateOTPCode draws a uniform 6-digit code from crypto/rand.
func generateOTPCode() (string, error) {
	span := big.NewInt(int64(constants.OTPMax - constants.OTPMin + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+int64(constants.OTPMin)), nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Avatar:      user.Avatar,
		Status:      user.Status,
		RoleID:      user.RoleID,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
