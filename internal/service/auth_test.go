package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/storehub/auth-service/config"
	"github.com/storehub/auth-service/internal/dto"
	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserStore struct {
	usersByEmail map[string]*model.User
	usersByID    map[uint]*model.User
	createErr    error
	created      *model.User
	nextID       uint
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		usersByEmail: make(map[string]*model.User),
		usersByID:    make(map[uint]*model.User),
		nextID:       1,
	}
}

func (s *stubUserStore) add(user *model.User) *model.User {
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
	return user
}

func (s *stubUserStore) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if user, ok := s.usersByID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := s.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) Create(ctx context.Context, user *model.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.usersByEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.created = s.add(user)
	return nil
}

type stubCodeStore struct {
	codes map[string]*model.VerificationCode
}

func newStubCodeStore() *stubCodeStore {
	return &stubCodeStore{codes: make(map[string]*model.VerificationCode)}
}

func (s *stubCodeStore) Upsert(ctx context.Context, code *model.VerificationCode) error {
	s.codes[code.Email] = code
	return nil
}

func (s *stubCodeStore) GetByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	if code, ok := s.codes[email]; ok {
		return code, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCodeStore) DeleteByEmail(ctx context.Context, email string) error {
	delete(s.codes, email)
	return nil
}

type stubSessionStore struct {
	rows map[string]*model.RefreshToken
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{rows: make(map[string]*model.RefreshToken)}
}

func (s *stubSessionStore) Create(ctx context.Context, token *model.RefreshToken) error {
	s.rows[token.Token] = token
	return nil
}

func (s *stubSessionStore) Delete(ctx context.Context, token string) error {
	if _, ok := s.rows[token]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rows, token)
	return nil
}

func (s *stubSessionStore) DeleteByUser(ctx context.Context, userID uint) error {
	for token, row := range s.rows {
		if row.UserID == userID {
			delete(s.rows, token)
		}
	}
	return nil
}

type stubThrottle struct {
	allow bool
	err   error
}

func (s *stubThrottle) AllowOTPSend(ctx context.Context, email string, interval time.Duration) (bool, error) {
	return s.allow, s.err
}

type authFixture struct {
	svc      *AuthService
	users    *stubUserStore
	codes    *stubCodeStore
	sessions *stubSessionStore
	throttle *stubThrottle
	tokens   *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := NewTokenService(testJWTConfig())
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	users := newStubUserStore()
	codes := newStubCodeStore()
	sessions := newStubSessionStore()
	throttle := &stubThrottle{allow: true}

	finder := &stubRoleFinder{role: &model.Role{Name: model.RoleClient}}
	finder.role.ID = 3

	svc := NewAuthService(users, codes, sessions, NewRoleService(finder), tokens, throttle, config.AuthConfig{
		OTPExpiresIn:      5 * time.Minute,
		OTPResendInterval: time.Minute,
	})

	return &authFixture{
		svc:      svc,
		users:    users,
		codes:    codes,
		sessions: sessions,
		throttle: throttle,
		tokens:   tokens,
	}
}

func (f *authFixture) storeCode(email, code, codeType string, expiresAt time.Time) {
	f.codes.codes[email] = &model.VerificationCode{
		Email:     email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: expiresAt,
	}
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:           "new@example.com",
		Name:            "New User",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Code:            "123456",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture(t)
		f.storeCode("new@example.com", "123456", model.VerificationCodeRegister, time.Now().Add(time.Minute))

		resp, err := f.svc.Register(context.Background(), registerRequest())
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if resp.Email != "new@example.com" {
			t.Errorf("Expected email in response, got %s", resp.Email)
		}
		if resp.RoleID != 3 {
			t.Errorf("Expected Client role id 3, got %d", resp.RoleID)
		}

		created := f.users.created
		if created == nil {
			t.Fatal("Expected user to be created")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")); err != nil {
			t.Error("Stored password is not a hash of the request password")
		}
		if created.Status != model.UserStatusActive {
			t.Errorf("Expected ACTIVE status, got %s", created.Status)
		}

		if _, ok := f.codes.codes["new@example.com"]; ok {
			t.Error("Expected verification code to be consumed")
		}
	})

	t.Run("Wrong code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.storeCode("new@example.com", "654321", model.VerificationCodeRegister, time.Now().Add(time.Minute))

		if _, err := f.svc.Register(context.Background(), registerRequest()); !errors.Is(err, apperrors.ErrOTPInvalid) {
			t.Errorf("Expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("No outstanding code", func(t *testing.T) {
		f := newAuthFixture(t)

		if _, err := f.svc.Register(context.Background(), registerRequest()); !errors.Is(err, apperrors.ErrOTPInvalid) {
			t.Errorf("Expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("Wrong code type", func(t *testing.T) {
		f := newAuthFixture(t)
		f.storeCode("new@example.com", "123456", model.VerificationCodeForgotPassword, time.Now().Add(time.Minute))

		if _, err := f.svc.Register(context.Background(), registerRequest()); !errors.Is(err, apperrors.ErrOTPInvalid) {
			t.Errorf("Expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("Expired code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.storeCode("new@example.com", "123456", model.VerificationCodeRegister, time.Now().Add(-time.Minute))

		if _, err := f.svc.Register(context.Background(), registerRequest()); !errors.Is(err, apperrors.ErrOTPExpired) {
			t.Errorf("Expected ErrOTPExpired, got %v", err)
		}
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.storeCode("new@example.com", "123456", model.VerificationCodeRegister, time.Now().Add(time.Minute))
		f.users.createErr = gorm.ErrDuplicatedKey

		if _, err := f.svc.Register(context.Background(), registerRequest()); !errors.Is(err, apperrors.ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})
}

func TestSendOTP(t *testing.T) {
	t.Run("Register code issued", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.svc.SendOTP(context.Background(), &dto.SendOTPRequest{
			Email: "new@example.com",
			Type:  model.VerificationCodeRegister,
		})
		if err != nil {
			t.Fatalf("SendOTP() error = %v", err)
		}

		stored, ok := f.codes.codes["new@example.com"]
		if !ok {
			t.Fatal("Expected code to be stored")
		}
		if len(stored.Code) != 6 {
			t.Errorf("Expected 6-digit code, got %q", stored.Code)
		}
		if _, err := strconv.Atoi(stored.Code); err != nil {
			t.Errorf("Expected numeric code, got %q", stored.Code)
		}
		if !resp.ExpiresAt.Equal(stored.ExpiresAt) {
			t.Error("Response expiry does not match stored expiry")
		}
	})

	t.Run("Register code denied for existing email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.add(&model.User{Email: "taken@example.com"})

		_, err := f.svc.SendOTP(context.Background(), &dto.SendOTPRequest{
			Email: "taken@example.com",
			Type:  model.VerificationCodeRegister,
		})
		if !errors.Is(err, apperrors.ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("Forgot password requires existing email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.SendOTP(context.Background(), &dto.SendOTPRequest{
			Email: "ghost@example.com",
			Type:  model.VerificationCodeForgotPassword,
		})
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Resend throttled", func(t *testing.T) {
		f := newAuthFixture(t)
		f.throttle.allow = false

		_, err := f.svc.SendOTP(context.Background(), &dto.SendOTPRequest{
			Email: "new@example.com",
			Type:  model.VerificationCodeRegister,
		})
		if !errors.Is(err, apperrors.ErrOTPResendTooSoon) {
			t.Errorf("Expected ErrOTPResendTooSoon, got %v", err)
		}
	})

	t.Run("Throttle failure fails open", func(t *testing.T) {
		f := newAuthFixture(t)
		f.throttle.allow = false
		f.throttle.err = errors.New("redis down")

		if _, err := f.svc.SendOTP(context.Background(), &dto.SendOTPRequest{
			Email: "new@example.com",
			Type:  model.VerificationCodeRegister,
		}); err != nil {
			t.Errorf("Expected success when throttle is unavailable, got %v", err)
		}
	})
}

func addLoginUser(t *testing.T, f *authFixture, password, status string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error = %v", err)
	}

	return f.users.add(&model.User{
		Email:    "user@example.com",
		Name:     "User",
		Password: string(hash),
		Status:   status,
		RoleID:   3,
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture(t)
		user := addLoginUser(t, f, "secret123", model.UserStatusActive)

		resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "user@example.com",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("Expected both tokens in response")
		}
		if resp.User.ID != user.ID {
			t.Errorf("Expected user id %d, got %d", user.ID, resp.User.ID)
		}

		row, ok := f.sessions.rows[resp.RefreshToken]
		if !ok {
			t.Fatal("Expected refresh token row to be stored")
		}
		if row.UserID != user.ID {
			t.Errorf("Expected row for user %d, got %d", user.ID, row.UserID)
		}

		payload, err := f.tokens.VerifyAccessToken(resp.AccessToken)
		if err != nil {
			t.Fatalf("Issued access token does not verify: %v", err)
		}
		if payload.UserID != user.ID {
			t.Errorf("Expected access token for user %d, got %d", user.ID, payload.UserID)
		}
	})

	t.Run("Wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		addLoginUser(t, f, "secret123", model.UserStatusActive)

		_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "user@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "ghost@example.com",
			Password: "secret123",
		})
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Blocked user", func(t *testing.T) {
		f := newAuthFixture(t)
		addLoginUser(t, f, "secret123", model.UserStatusBlocked)

		_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "user@example.com",
			Password: "secret123",
		})
		if !errors.Is(err, apperrors.ErrUserBlocked) {
			t.Errorf("Expected ErrUserBlocked, got %v", err)
		}
	})
}

func TestRefreshToken(t *testing.T) {
	login := func(t *testing.T, f *authFixture) *dto.LoginResponse {
		t.Helper()
		addLoginUser(t, f, "secret123", model.UserStatusActive)
		resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "user@example.com",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		return resp
	}

	t.Run("Rotation", func(t *testing.T) {
		f := newAuthFixture(t)
		loginResp := login(t, f)

		resp, err := f.svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: loginResp.RefreshToken,
		})
		if err != nil {
			t.Fatalf("RefreshToken() error = %v", err)
		}

		if _, ok := f.sessions.rows[loginResp.RefreshToken]; ok {
			t.Error("Expected old refresh token row to be deleted")
		}
		if _, ok := f.sessions.rows[resp.RefreshToken]; !ok {
			t.Error("Expected new refresh token row to be stored")
		}
	})

	t.Run("Reuse denied", func(t *testing.T) {
		f := newAuthFixture(t)
		loginResp := login(t, f)

		if _, err := f.svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: loginResp.RefreshToken,
		}); err != nil {
			t.Fatalf("First refresh failed: %v", err)
		}

		_, err := f.svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: loginResp.RefreshToken,
		})
		if !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
			t.Errorf("Expected ErrInvalidRefreshToken on reuse, got %v", err)
		}
	})

	t.Run("Garbage token denied", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: "not-a-token",
		})
		if !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
			t.Errorf("Expected ErrInvalidRefreshToken, got %v", err)
		}
	})

	t.Run("Access token denied", func(t *testing.T) {
		f := newAuthFixture(t)
		loginResp := login(t, f)

		_, err := f.svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: loginResp.AccessToken,
		})
		if !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
			t.Errorf("Expected ErrInvalidRefreshToken, got %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	addLoginUser(t, f, "secret123", model.UserStatusActive)

	loginResp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := f.svc.Logout(context.Background(), &dto.LogoutRequest{
		RefreshToken: loginResp.RefreshToken,
	}); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if len(f.sessions.rows) != 0 {
		t.Error("Expected refresh token row to be deleted")
	}

	if err := f.svc.Logout(context.Background(), &dto.LogoutRequest{
		RefreshToken: loginResp.RefreshToken,
	}); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Expected ErrInvalidRefreshToken on second logout, got %v", err)
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		if err != nil {
			t.Fatalf("generateOTPCode() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("Expected numeric code, got %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("Code out of range: %d", n)
		}
	}
}
