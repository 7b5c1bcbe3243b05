package service

import (
	"context"
	"errors"

	"github.com/storehub/auth-service/internal/dto"
	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/internal/model"
	"gorm.io/gorm"
)

type userProfileStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error
}

// UserService serves profile reads and updates for the authenticated user.
type UserService struct {
	users userProfileStore
}

func NewUserService(users userProfileStore) *UserService {
	return &UserService{users: users}
}

// GetProfile returns the public view of the user.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies the provided mutable fields and returns the
// updated record. Empty fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		fields["phone_number"] = req.PhoneNumber
	}
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return s.GetProfile(ctx, userID)
}
