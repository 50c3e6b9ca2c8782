package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/okr/key_results/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u
func KeyResultUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewKeyResultController(db)
	writer := authMiddleware.OnlyRolesSlice(constants.RoleErrorMember("key result"), constants.MemberAndAbove)

	r.Get("/objectives/:id/key-results", ctrl.ListByObjective)
	r.Post("/objectives/:id/key-results", writer, ctrl.Create)

	g := r.Group("/key-results")
	g.Get("/:id", ctrl.Get)
	g.Patch("/:id", writer, ctrl.Update)
	g.Delete("/:id", writer, ctrl.Delete)
}
