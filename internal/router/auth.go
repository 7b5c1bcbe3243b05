package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storehub/auth-service/internal/dto"
	"github.com/storehub/auth-service/internal/middleware"
)

// authRoutes declares the auth endpoints with their credential
// requirements. OTP issuance and registration sit behind the service API
// key; login and the refresh-token operations carry their credential in
// the body, so they only need the key as well.
func (r *Router) authRoutes(version *gin.RouterGroup) {
	apiKey := middleware.Requirement{
		Strategies: []middleware.StrategyName{middleware.StrategyAPIKey},
		Condition:  middleware.ConditionAnd,
	}

	auth := version.Group("/auth")
	{
		auth.POST("/otp",
			r.authMw.Require(apiKey),
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.SendOTPRequest{} }),
			r.authHandler.SendOTP)

		auth.POST("/register",
			r.authMw.Require(apiKey),
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.RegisterRequest{} }),
			r.authHandler.Register)

		auth.POST("/login",
			r.authMw.Require(apiKey),
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.LoginRequest{} }),
			r.authHandler.Login)

		auth.POST("/refresh",
			r.authMw.Require(middleware.DefaultRequirement()),
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.RefreshTokenRequest{} }),
			r.authHandler.RefreshToken)

		// Logout accepts either a valid access token or the service key,
		// so an expired session can still be revoked.
		auth.POST("/logout",
			r.authMw.Require(middleware.Requirement{
				Strategies: []middleware.StrategyName{middleware.StrategyBearer, middleware.StrategyAPIKey},
				Condition:  middleware.ConditionOr,
			}),
			r.validMw.ValidateRequestBody(func() interface{} { return &dto.LogoutRequest{} }),
			r.authHandler.Logout)
	}
}
