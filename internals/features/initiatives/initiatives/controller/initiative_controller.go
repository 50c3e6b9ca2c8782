package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/initiatives/initiatives/dto"
	"okrku_backend/internals/features/initiatives/initiatives/model"
	"okrku_backend/internals/features/initiatives/initiatives/service"
	helper "okrku_backend/internals/helpers"
)

type InitiativeController struct {
	DB   *gorm.DB
	Gami gamService.Awarder
	Now  func() time.Time
}

func NewInitiativeController(db *gorm.DB) *InitiativeController {
	return &InitiativeController{DB: db, Gami: gamService.New(db), Now: time.Now}
}

const msgNotFound = "Initiative tidak ditemukan"

func orgAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	return orgID, id, err
}

func optionalUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

// GET /api/u/initiatives?status=&key_result_id=&objective_id=&pic_id=&q=&mine=1
func (ic *InitiativeController) List(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	f := dto.InitiativeFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Q:      c.Query("q"),
	}
	if f.Status != "" && !isStatus(f.Status) {
		return helper.JsonError(c, fiber.StatusBadRequest, "status tidak valid")
	}
	if f.KeyResultID, err = optionalUUID(c, "key_result_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if f.ObjectiveID, err = optionalUUID(c, "objective_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if f.PICID, err = optionalUUID(c, "pic_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if c.Query("mine") == "1" {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		f.PICID = &uid
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListInitiatives(c.UserContext(), ic.DB, orgID, f, p)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal mengambil initiative")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

func isStatus(s string) bool {
	for _, v := range model.InitiativeStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// GET /api/u/initiatives/:id
func (ic *InitiativeController) Get(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := service.Detail(c.UserContext(), ic.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal mengambil initiative")
	}
	return helper.JsonOK(c, "ok", resp)
}

// POST /api/u/initiatives
func (ic *InitiativeController) Create(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateInitiativeRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.CreateInitiative(c.UserContext(), ic.DB, orgID, userID, req, ic.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal membuat initiative")
	}
	return helper.JsonCreated(c, "Initiative dibuat", dto.FromModel(m))
}

// PATCH /api/u/initiatives/:id
func (ic *InitiativeController) Update(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateInitiativeRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.UpdateInitiative(c.UserContext(), ic.DB, orgID, id, req)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal memperbarui initiative")
	}
	return helper.JsonUpdated(c, "Initiative diperbarui", dto.FromModel(m))
}

// DELETE /api/u/initiatives/:id
func (ic *InitiativeController) Delete(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteInitiative(c.UserContext(), ic.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal menghapus initiative")
	}
	return helper.JsonDeleted(c, "Initiative dihapus", fiber.Map{"initiative_id": id})
}

func (ic *InitiativeController) close(c *fiber.Ctx, status, okMsg string) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CloseInitiativeRequest
	if len(c.Body()) > 0 {
		if ok, err := helper.BindAndValidate(c, &req); !ok {
			return err
		}
	}
	m, err := service.Close(c.UserContext(), ic.DB, orgID, id, status, req.Notes, ic.Now())
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal menutup initiative")
	}
	return helper.JsonUpdated(c, okMsg, dto.FromModel(m))
}

// POST /api/u/initiatives/:id/complete
func (ic *InitiativeController) Complete(c *fiber.Ctx) error {
	return ic.close(c, model.InitiativeStatusDone, "Initiative selesai")
}

// POST /api/u/initiatives/:id/cancel
func (ic *InitiativeController) Cancel(c *fiber.Ctx) error {
	return ic.close(c, model.InitiativeStatusCancelled, "Initiative dibatalkan")
}
