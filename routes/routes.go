package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/otp"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by the route groups.
type Deps struct {
	DB          *gorm.DB
	OTP         *otp.Service
	JWTSecret   string
	AdminAPIKey string
	Orders      *orderControllers.Hub
}

// SetupRoutes is the single entry-point that wires up Auth, Shop, User, and Admin route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	if d.Orders == nil {
		d.Orders = orderControllers.NewHub()
	}

	api := r.Group("/api")

	// 1️⃣ Public routes (no middleware)
	SetupAuthRoutes(api, d)
	SetupProductRoutes(api, d)

	// 2️⃣ User routes (JWT-protected)
	SetupUserRoutes(api, d)

	// 3️⃣ Admin routes (API-Key-protected)
	SetupAdminRoutes(r, d)
}
