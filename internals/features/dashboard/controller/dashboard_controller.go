package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/dashboard/service"
	helper "okrku_backend/internals/helpers"
)

type DashboardController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db, Now: time.Now}
}

// GET /api/u/dashboard/summary?cycle_id=
func (dc *DashboardController) Summary(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var cycleID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("cycle_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "cycle_id tidak valid")
		}
		cycleID = &id
	}

	resp, err := service.Summary(c.UserContext(), dc.DB, orgID, userID, cycleID, dc.Now().UTC())
	if err != nil {
		return helper.ServiceError(c, err, "Cycle tidak ditemukan", "Gagal memuat dashboard")
	}
	return helper.JsonOK(c, "ok", resp)
}
