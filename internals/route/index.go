// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/constants"
	billingRoute "okrku_backend/internals/features/billing/route"
	dashboardRoute "okrku_backend/internals/features/dashboard/route"
	gamificationRoute "okrku_backend/internals/features/gamification/route"
	initiativeRoute "okrku_backend/internals/features/initiatives/initiatives/route"
	taskRoute "okrku_backend/internals/features/initiatives/tasks/route"
	checkInRoute "okrku_backend/internals/features/okr/check_ins/route"
	cycleRoute "okrku_backend/internals/features/okr/cycles/route"
	keyResultRoute "okrku_backend/internals/features/okr/key_results/route"
	objectiveRoute "okrku_backend/internals/features/okr/objectives/route"
	organizationRoute "okrku_backend/internals/features/organizations/organizations/route"
	teamRoute "okrku_backend/internals/features/organizations/teams/route"
	authRoute "okrku_backend/internals/features/users/auth/route"
	userRoute "okrku_backend/internals/features/users/users/route"
	authMiddleware "okrku_backend/internals/middlewares/auth"
)

var startTime time.Time

// SetupRoutes memasang semua group. Urutan mount penting: route yang didaftarkan
// sebelum Use() sebuah group tidak ikut melewati middleware group tersebut.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()
	BaseRoutes(app, db)

	api := app.Group("/api")

	// ===================== AUTH =====================
	configs.L().Info("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(api, db)

	// ===================== PUBLIC =====================
	configs.L().Info("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")
	billingRoute.BillingPublicRoutes(public, db)

	// ===================== PRIVATE (loose: login saja) =====================
	configs.L().Info("[INFO] Setting up PRIVATE (loose) group...")
	privateLoose := app.Group("/api/u", authMiddleware.AuthMiddleware(db))
	userRoute.UserUserRoutes(privateLoose, db)
	organizationRoute.OrganizationLooseRoutes(privateLoose, db)

	// ===================== PRIVATE (scoped: + organisasi aktif) =====================
	configs.L().Info("[INFO] Setting up PRIVATE (scoped) group...")
	privateScoped := app.Group("/api/u", authMiddleware.OrgScope(db))

	organizationRoute.OrganizationUserRoutes(privateScoped, db)
	teamRoute.TeamUserRoutes(privateScoped, db)
	cycleRoute.CycleUserRoutes(privateScoped, db)
	objectiveRoute.ObjectiveUserRoutes(privateScoped, db)
	keyResultRoute.KeyResultUserRoutes(privateScoped, db)
	checkInRoute.CheckInUserRoutes(privateScoped, db)
	initiativeRoute.InitiativeUserRoutes(privateScoped, db)
	taskRoute.TaskUserRoutes(privateScoped, db)
	gamificationRoute.GamificationUserRoutes(privateScoped, db)
	billingRoute.BillingUserRoutes(privateScoped, db)
	dashboardRoute.DashboardUserRoutes(privateScoped, db)

	// ===================== PLATFORM ADMIN (global, tanpa org scope) =====================
	configs.L().Info("[INFO] Setting up PLATFORM ADMIN routes...")
	platform := app.Group("/api/a", authMiddleware.AuthMiddleware(db))
	gamificationRoute.GamificationAdminRoutes(platform, db)

	// ===================== ADMIN (per organisasi) =====================
	configs.L().Info("[INFO] Setting up ADMIN group (Auth + Scope + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.OrgScope(db),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("admin"), constants.AdminAndAbove),
	)
	organizationRoute.OrganizationAdminRoutes(admin, db)
	teamRoute.TeamAdminRoutes(admin, db)
	cycleRoute.CycleAdminRoutes(admin, db)
	billingRoute.BillingAdminRoutes(admin, db)
}
