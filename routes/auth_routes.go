package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
)

// SetupAuthRoutes registers the phone login endpoints under /api/auth.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/otp", auth.SendOTP(d.OTP))
		authGroup.POST("/verify", auth.VerifyOTP(d.DB, d.OTP, d.JWTSecret))
	}
}
