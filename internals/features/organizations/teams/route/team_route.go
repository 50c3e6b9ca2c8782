package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/organizations/teams/controller"
)

// Base: /api/u
func TeamUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTeamController(db)
	g := r.Group("/teams")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
}

// Base: /api/a
func TeamAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTeamController(db)
	g := r.Group("/teams")
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
	g.Post("/:id/members", ctrl.AddMember)
	g.Delete("/:id/members/:user_id", ctrl.RemoveMember)
}
