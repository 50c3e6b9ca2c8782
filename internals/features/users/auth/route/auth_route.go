// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/users/auth/controller"
	rateLimiter "okrku_backend/internals/middlewares"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/auth
func AuthRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	auth := r.Group("/auth")

	// 🔓 Public
	auth.Get("/csrf", ctrl.CSRF)
	auth.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	auth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)
	auth.Post("/refresh-token", ctrl.RefreshToken)

	// 🔐 Protected (tanpa org scope)
	mustLogin := authMiddleware.AuthMiddleware(db)
	auth.Post("/logout", mustLogin, ctrl.Logout)
	auth.Post("/change-password", mustLogin, ctrl.ChangePassword)
	auth.Get("/me", mustLogin, ctrl.Me)
}
