package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/dashboard/controller"
)

// Base: /api/u
func DashboardUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewDashboardController(db)
	r.Get("/dashboard/summary", ctrl.Summary)
}
