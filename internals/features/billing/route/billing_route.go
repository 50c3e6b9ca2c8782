package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/constants"
	"okrku_backend/internals/features/billing/controller"
	rateLimiter "okrku_backend/internals/middlewares"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

func newController(db *gorm.DB) *controller.BillingController {
	return controller.NewBillingController(db, configs.MidtransServerKey, configs.MidtransUseProd)
}

// Base: /api/public
func BillingPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := newController(db)
	g := r.Group("/billing")
	g.Get("/plans", ctrl.Plans)
	g.Post("/midtrans/notification", rateLimiter.WebhookRateLimiter(), ctrl.MidtransNotification)
}

// Base: /api/u
func BillingUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := newController(db)
	r.Get("/billing/subscription", ctrl.Subscription)
}

// Base: /api/a: checkout hanya owner.
func BillingAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := newController(db)
	g := r.Group("/billing")
	g.Get("/invoices", ctrl.Invoices)
	g.Post("/checkout", authMiddleware.OnlyRolesSlice(constants.RoleErrorOwner("billing"), constants.OwnerOnly), ctrl.Checkout)
}
