package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/okr/cycles/dto"
	"okrku_backend/internals/features/okr/cycles/service"
	helper "okrku_backend/internals/helpers"
)

type CycleController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCycleController(db *gorm.DB) *CycleController {
	return &CycleController{DB: db, Now: time.Now}
}

const msgCycleNotFound = "Cycle tidak ditemukan"

func (cc *CycleController) orgAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return orgID, id, nil
}

// objectiveCount hanya pelengkap response; gagal hitung → 0 dan dicatat.
func (cc *CycleController) objectiveCount(c *fiber.Ctx, cycleID uuid.UUID) int64 {
	n, err := service.CountObjectives(c.UserContext(), cc.DB, cycleID)
	if err != nil {
		configs.L().Warnf("[WARN] Gagal menghitung objective cycle %s: %v", cycleID, err)
		return 0
	}
	return n
}

// GET /api/u/cycles?status=&q=
func (cc *CycleController) List(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListCycles(c.UserContext(), cc.DB, orgID, c.Query("status"), c.Query("q"), p, cc.Now())
	if err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal mengambil cycle")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/u/cycles/active
func (cc *CycleController) Active(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	now := cc.Now()
	cy, err := service.ActiveCycle(c.UserContext(), cc.DB, orgID, now)
	if err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal mengambil cycle aktif")
	}
	return helper.JsonOK(c, "ok", service.ToResponse(cy, now, cc.objectiveCount(c, cy.CycleID)))
}

// GET /api/u/cycles/:id
func (cc *CycleController) Get(c *fiber.Ctx) error {
	orgID, id, err := cc.orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	cy, err := service.FindCycle(c.UserContext(), cc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal mengambil cycle")
	}
	return helper.JsonOK(c, "ok", service.ToResponse(cy, cc.Now(), cc.objectiveCount(c, cy.CycleID)))
}

// POST /api/a/cycles
func (cc *CycleController) Create(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateCycleRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	cy, err := service.CreateCycle(c.UserContext(), cc.DB, orgID, req)
	if err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal membuat cycle")
	}
	return helper.JsonCreated(c, "Cycle dibuat", service.ToResponse(cy, cc.Now(), 0))
}

// PATCH /api/a/cycles/:id
func (cc *CycleController) Update(c *fiber.Ctx) error {
	orgID, id, err := cc.orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateCycleRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	now := cc.Now()
	cy, err := service.UpdateCycle(c.UserContext(), cc.DB, orgID, id, req, now)
	if err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal memperbarui cycle")
	}
	return helper.JsonUpdated(c, "Cycle diperbarui", service.ToResponse(cy, now, cc.objectiveCount(c, cy.CycleID)))
}

// DELETE /api/a/cycles/:id
func (cc *CycleController) Delete(c *fiber.Ctx) error {
	orgID, id, err := cc.orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteCycle(c.UserContext(), cc.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgCycleNotFound, "Gagal menghapus cycle")
	}
	return helper.JsonDeleted(c, "Cycle dihapus", fiber.Map{"cycle_id": id})
}
