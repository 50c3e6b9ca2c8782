package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/okr/cycles/controller"
)

// Base: /api/u
func CycleUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewCycleController(db)
	g := r.Group("/cycles")
	g.Get("/", ctrl.List)
	g.Get("/active", ctrl.Active)
	g.Get("/:id", ctrl.Get)
}

// Base: /api/a
func CycleAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewCycleController(db)
	g := r.Group("/cycles")
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
