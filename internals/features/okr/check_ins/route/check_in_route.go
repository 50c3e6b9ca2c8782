package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/okr/check_ins/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u
func CheckInUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewCheckInController(db)
	g := r.Group("/key-results/:id/check-ins")
	g.Get("/", ctrl.History)
	g.Post("/", authMiddleware.OnlyRolesSlice(constants.RoleErrorMember("check-in"), constants.MemberAndAbove), ctrl.Create)
}
