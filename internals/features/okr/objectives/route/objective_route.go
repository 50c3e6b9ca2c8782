package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/okr/objectives/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u (viewer hanya baca)
func ObjectiveUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewObjectiveController(db)
	writer := authMiddleware.OnlyRolesSlice(constants.RoleErrorMember("objective"), constants.MemberAndAbove)

	g := r.Group("/objectives")
	g.Get("/", ctrl.List)
	g.Get("/tree", ctrl.Tree)
	g.Get("/:id", ctrl.Get)
	g.Post("/", writer, ctrl.Create)
	g.Patch("/:id", writer, ctrl.Update)
	g.Delete("/:id", writer, ctrl.Delete)
	g.Post("/:id/recompute", writer, ctrl.Recompute)
}
