package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/dto"
	"okrku_backend/internals/features/gamification/service"
	helper "okrku_backend/internals/helpers"
)

type GamificationController struct {
	DB *gorm.DB
}

func NewGamificationController(db *gorm.DB) *GamificationController {
	return &GamificationController{DB: db}
}

func userAndOrg(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	orgID, err := helper.GetOrganizationID(c)
	return userID, orgID, err
}

// GET /api/u/gamification/me
func (gc *GamificationController) Me(c *fiber.Ctx) error {
	userID, orgID, err := userAndOrg(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := service.MyStats(c.UserContext(), gc.DB, userID, orgID)
	if err != nil {
		return helper.ServiceError(c, err, "Statistik tidak ditemukan", "Gagal mengambil statistik")
	}
	return helper.JsonOK(c, "ok", resp)
}

// GET /api/u/gamification/leaderboard
func (gc *GamificationController) Leaderboard(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 10, 100)
	rows, total, err := service.Leaderboard(c.UserContext(), gc.DB, orgID, p)
	if err != nil {
		return helper.ServiceError(c, err, "Leaderboard kosong", "Gagal mengambil leaderboard")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/u/gamification/achievements
func (gc *GamificationController) Achievements(c *fiber.Ctx) error {
	userID, orgID, err := userAndOrg(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := service.AchievementsFor(c.UserContext(), gc.DB, userID, orgID)
	if err != nil {
		return helper.ServiceError(c, err, "Achievement tidak ditemukan", "Gagal mengambil achievement")
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/u/gamification/activities
func (gc *GamificationController) Activities(c *fiber.Ctx) error {
	userID, orgID, err := userAndOrg(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.Activities(c.UserContext(), gc.DB, userID, orgID, p)
	if err != nil {
		return helper.ServiceError(c, err, "Aktivitas tidak ditemukan", "Gagal mengambil aktivitas")
	}
	out := make([]dto.ActivityResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.ActivityFromModel(&rows[i]))
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", out, &pg)
}

/* ===============================
   Admin
=================================*/

const msgAchievementNotFound = "Achievement tidak ditemukan"

// GET /api/a/gamification/achievements (termasuk yang non-aktif)
func (gc *GamificationController) AdminList(c *fiber.Ctx) error {
	rows, err := service.ListAllAchievements(c.UserContext(), gc.DB)
	if err != nil {
		return helper.ServiceError(c, err, msgAchievementNotFound, "Gagal mengambil achievement")
	}
	out := make([]dto.AchievementResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.AchievementFromModel(&rows[i]))
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /api/a/gamification/achievements
func (gc *GamificationController) AdminCreate(c *fiber.Ctx) error {
	var req dto.CreateAchievementRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.CreateAchievement(c.UserContext(), gc.DB, req)
	if err != nil {
		return helper.ServiceError(c, err, msgAchievementNotFound, "Gagal membuat achievement")
	}
	return helper.JsonCreated(c, "Achievement dibuat", dto.AchievementFromModel(m))
}

// PATCH /api/a/gamification/achievements/:id
func (gc *GamificationController) AdminUpdate(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateAchievementRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.UpdateAchievement(c.UserContext(), gc.DB, id, req)
	if err != nil {
		return helper.ServiceError(c, err, msgAchievementNotFound, "Gagal memperbarui achievement")
	}
	return helper.JsonUpdated(c, "Achievement diperbarui", dto.AchievementFromModel(m))
}

// DELETE /api/a/gamification/achievements/:id
func (gc *GamificationController) AdminDelete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteAchievement(c.UserContext(), gc.DB, id); err != nil {
		return helper.ServiceError(c, err, msgAchievementNotFound, "Gagal menghapus achievement")
	}
	return helper.JsonDeleted(c, "Achievement dihapus", fiber.Map{"achievement_id": id})
}
