package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storehub/auth-service/internal/dto"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// All user routes require a bearer token.
		users.Use(r.authMw.RequireAuth())
		{
			users.GET("/me", r.userHandler.Me)

			users.PUT("/me",
				r.validMw.ValidateRequestBody(func() interface{} { return &dto.UpdateProfileRequest{} }),
				r.userHandler.UpdateMe)
		}
	}
}
