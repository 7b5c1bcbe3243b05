package service

import (
	"context"
	"sync"

	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/internal/model"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
)

type roleFinder interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

// RoleService resolves seeded role ids. The Client role id is looked up
// lazily on first use and cached for the life of the process; roles are
// immutable after bootstrap so the id never changes. Lookup failures are
// not cached, so registration recovers once the seed has run.
type RoleService struct {
	roles roleFinder

	mu           sync.Mutex
	clientRoleID uint
}

func NewRoleService(roles roleFinder) *RoleService {
	return &RoleService{roles: roles}
}

// ClientRoleID returns the id of the Client role, querying the database
// at most once after a successful lookup.
func (s *RoleService) ClientRoleID(ctx context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clientRoleID != 0 {
		return s.clientRoleID, nil
	}

	role, err := s.roles.GetByName(ctx, model.RoleClient)
	if err != nil {
		logger.GetLogger().Error("Client role is not seeded",
			zap.Error(err))
		return 0, apperrors.WrapError(apperrors.ErrRoleNotSeeded, err)
	}

	s.clientRoleID = role.ID
	logger.GetLogger().Info("Client role id cached",
		zap.Uint("role_id", role.ID))

	return s.clientRoleID, nil
}
