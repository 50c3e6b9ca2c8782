package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/okr/check_ins/dto"
	"okrku_backend/internals/features/okr/check_ins/service"
	krDTO "okrku_backend/internals/features/okr/key_results/dto"
	helper "okrku_backend/internals/helpers"
)

type CheckInController struct {
	DB   *gorm.DB
	Gami gamService.Awarder
	Now  func() time.Time
}

func NewCheckInController(db *gorm.DB) *CheckInController {
	return &CheckInController{DB: db, Gami: gamService.New(db), Now: time.Now}
}

const msgKRNotFound = "Key result tidak ditemukan"

// POST /api/u/key-results/:id/check-ins
func (cc *CheckInController) Create(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	krID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateCheckInRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	ci, kr, err := service.CreateCheckIn(c.UserContext(), cc.DB, orgID, krID, userID, req, cc.Now(), cc.Gami)
	if err != nil && ci == nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal menyimpan check-in")
	}
	if err != nil {
		// check-in sudah tersimpan; hanya recompute yang gagal
		configs.L().Warnf("[WARN] Recompute setelah check-in %s gagal: %v", ci.CheckInID, err)
	}
	return helper.JsonCreated(c, "Check-in dicatat", fiber.Map{
		"check_in":   dto.FromModel(ci),
		"key_result": krDTO.FromModel(kr),
	})
}

// GET /api/u/key-results/:id/check-ins
func (cc *CheckInController) History(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	krID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	hist, total, err := service.History(c.UserContext(), cc.DB, orgID, krID, p)
	if err != nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal mengambil riwayat check-in")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "ok",
		"data":       hist.Items,
		"trend":      hist.Trend,
		"pagination": pg,
	})
}
