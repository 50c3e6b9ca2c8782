package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/okr/key_results/dto"
	"okrku_backend/internals/features/okr/key_results/service"
	helper "okrku_backend/internals/helpers"
)

type KeyResultController struct {
	DB   *gorm.DB
	Gami gamService.Awarder
	Now  func() time.Time
}

func NewKeyResultController(db *gorm.DB) *KeyResultController {
	return &KeyResultController{DB: db, Gami: gamService.New(db), Now: time.Now}
}

const msgKRNotFound = "Key result tidak ditemukan"

func ids(c *fiber.Ctx) (orgID, userID, id uuid.UUID, err error) {
	if orgID, err = helper.GetOrganizationID(c); err != nil {
		return
	}
	if userID, err = helper.GetUserIDFromToken(c); err != nil {
		return
	}
	id, err = helper.ParseUUIDParam(c, "id")
	return
}

// GET /api/u/objectives/:id/key-results
func (kc *KeyResultController) ListByObjective(c *fiber.Ctx) error {
	orgID, _, objectiveID, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := service.ListByObjective(c.UserContext(), kc.DB, orgID, objectiveID)
	if err != nil {
		return helper.ServiceError(c, err, "Objective tidak ditemukan", "Gagal mengambil key result")
	}
	out := make([]dto.KeyResultResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i]))
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /api/u/objectives/:id/key-results
func (kc *KeyResultController) Create(c *fiber.Ctx) error {
	orgID, userID, objectiveID, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateKeyResultRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	kr, err := service.CreateKeyResult(c.UserContext(), kc.DB, orgID, objectiveID, userID, req, kc.Now(), kc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, "Objective tidak ditemukan", "Gagal membuat key result")
	}
	return helper.JsonCreated(c, "Key result dibuat", dto.FromModel(kr))
}

// GET /api/u/key-results/:id (progress, status, time progress, check-in terakhir)
func (kc *KeyResultController) Get(c *fiber.Ctx) error {
	orgID, _, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	kr, err := service.FindKeyResult(c.UserContext(), kc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal mengambil key result")
	}
	last, err := service.LastCheckIn(c.UserContext(), kc.DB, kr.KeyResultID)
	if err != nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal mengambil check-in terakhir")
	}
	resp := dto.FromModel(kr)
	resp.LastCheckIn = dto.CheckInBriefFrom(last)
	return helper.JsonOK(c, "ok", resp)
}

// PATCH /api/u/key-results/:id
func (kc *KeyResultController) Update(c *fiber.Ctx) error {
	orgID, userID, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateKeyResultRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	kr, err := service.UpdateKeyResult(c.UserContext(), kc.DB, orgID, id, userID, req, kc.Now(), kc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal memperbarui key result")
	}
	return helper.JsonUpdated(c, "Key result diperbarui", dto.FromModel(kr))
}

// DELETE /api/u/key-results/:id
func (kc *KeyResultController) Delete(c *fiber.Ctx) error {
	orgID, _, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteKeyResult(c.UserContext(), kc.DB, orgID, id, kc.Now()); err != nil {
		return helper.ServiceError(c, err, msgKRNotFound, "Gagal menghapus key result")
	}
	return helper.JsonDeleted(c, "Key result dihapus", fiber.Map{"key_result_id": id})
}
