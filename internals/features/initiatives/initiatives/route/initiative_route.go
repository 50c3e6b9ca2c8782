package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/initiatives/initiatives/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u
func InitiativeUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewInitiativeController(db)
	writer := authMiddleware.OnlyRolesSlice(constants.RoleErrorMember("initiative"), constants.MemberAndAbove)

	g := r.Group("/initiatives")
	g.Get("/", ctrl.List)
	g.Post("/", writer, ctrl.Create)
	g.Get("/:id", ctrl.Get)
	g.Patch("/:id", writer, ctrl.Update)
	g.Delete("/:id", writer, ctrl.Delete)
	g.Post("/:id/complete", writer, ctrl.Complete)
	g.Post("/:id/cancel", writer, ctrl.Cancel)

	g.Get("/:id/success-metrics", ctrl.ListMetrics)
	g.Post("/:id/success-metrics", writer, ctrl.CreateMetric)
	g.Patch("/:id/success-metrics/:metric_id", writer, ctrl.UpdateMetric)
	g.Delete("/:id/success-metrics/:metric_id", writer, ctrl.DeleteMetric)
}
