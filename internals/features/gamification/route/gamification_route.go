package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u
func GamificationUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewGamificationController(db)
	g := r.Group("/gamification")
	g.Get("/me", ctrl.Me)
	g.Get("/leaderboard", ctrl.Leaderboard)
	g.Get("/achievements", ctrl.Achievements)
	g.Get("/activities", ctrl.Activities)
}

// Base: /api/a: definisi achievement global, khusus admin platform.
func GamificationAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewGamificationController(db)
	g := r.Group("/gamification/achievements", authMiddleware.PlatformAdmin())
	g.Get("/", ctrl.AdminList)
	g.Post("/", ctrl.AdminCreate)
	g.Patch("/:id", ctrl.AdminUpdate)
	g.Delete("/:id", ctrl.AdminDelete)
}
