package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storehub/auth-service/internal/constants"
	"github.com/storehub/auth-service/internal/dto"
	apperrors "github.com/storehub/auth-service/internal/errors"
	"github.com/storehub/auth-service/internal/middleware"
	"github.com/storehub/auth-service/internal/service"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		// Only reachable if the route was registered without the Bearer
		// strategy.
		logger.GetLogger().Error("Profile route reached without token payload",
			zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	response, err := h.userService.GetProfile(c.Request.Context(), payload.UserID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to load profile", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateMe updates the authenticated user's mutable profile fields.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	response, err := h.userService.UpdateProfile(c.Request.Context(), payload.UserID, &req)
	if err != nil {
		logger.GetLogger().Warn("Profile update failed",
			zap.Uint("user_id", payload.UserID),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Profile update failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, response)
}
