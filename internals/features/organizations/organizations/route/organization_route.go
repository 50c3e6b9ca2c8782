package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/organizations/organizations/controller"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

// Base: /api/u (login saja, belum tentu punya organisasi)
func OrganizationLooseRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewOrganizationController(db)
	r.Post("/organizations", ctrl.Create)
	r.Get("/organizations/mine", ctrl.Mine)
}

// Base: /api/u (org scope)
func OrganizationUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewOrganizationController(db)
	g := r.Group("/organizations/current")
	g.Get("/", ctrl.GetCurrent)
	g.Get("/members", ctrl.ListMembers)
}

// Base: /api/a (org scope + admin)
func OrganizationAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewOrganizationController(db)
	g := r.Group("/organizations/current")
	g.Patch("/", authMiddleware.OnlyRolesSlice(constants.RoleErrorOwner("pengaturan organisasi"), constants.OwnerOnly), ctrl.UpdateCurrent)
	g.Post("/logo", ctrl.UploadLogo)
	g.Post("/members", ctrl.AddMember)
	g.Patch("/members/:id", ctrl.UpdateMember)
	g.Delete("/members/:id", ctrl.RemoveMember)
}
