package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/users/users/controller"
)

// Base: /api/u (cukup login, belum perlu organisasi)
func UserUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	me := r.Group("/users/me")
	me.Get("/", ctrl.GetMe)
	me.Patch("/", ctrl.UpdateMe)
	me.Post("/avatar", ctrl.UploadAvatar)
	me.Delete("/avatar", ctrl.DeleteAvatar)
}
