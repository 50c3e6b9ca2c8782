package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/initiatives/tasks/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u
func TaskUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTaskController(db)
	writer := authMiddleware.OnlyRolesSlice(constants.RoleErrorMember("task"), constants.MemberAndAbove)

	r.Get("/initiatives/:id/tasks", ctrl.ListByInitiative)
	r.Post("/initiatives/:id/tasks", writer, ctrl.Create)

	g := r.Group("/tasks")
	g.Get("/mine", ctrl.Mine)
	g.Get("/:id", ctrl.Get)
	g.Patch("/:id", writer, ctrl.Update)
	g.Patch("/:id/status", writer, ctrl.UpdateStatus)
	g.Delete("/:id", writer, ctrl.Delete)
}
