package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gamService "okrku_backend/internals/features/gamification/service"
	krDTO "okrku_backend/internals/features/okr/key_results/dto"
	krService "okrku_backend/internals/features/okr/key_results/service"
	"okrku_backend/internals/features/okr/objectives/dto"
	"okrku_backend/internals/features/okr/objectives/service"
	helper "okrku_backend/internals/helpers"
)

type ObjectiveController struct {
	DB   *gorm.DB
	Gami gamService.Awarder
	Now  func() time.Time
}

func NewObjectiveController(db *gorm.DB) *ObjectiveController {
	return &ObjectiveController{DB: db, Gami: gamService.New(db), Now: time.Now}
}

const msgObjectiveNotFound = "Objective tidak ditemukan"

func orgAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
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

// GET /api/u/objectives?cycle_id=&owner_type=&owner_id=&status=&parent_id=&root=1&tag=&q=&sort=
func (oc *ObjectiveController) List(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	f := dto.ObjectiveFilter{
		OwnerType: c.Query("owner_type"),
		Status:    c.Query("status"),
		RootOnly:  c.QueryBool("root", false),
		Tag:       c.Query("tag"),
		Q:         c.Query("q"),
		Sort:      c.Query("sort"),
	}
	for key, dst := range map[string]**uuid.UUID{"cycle_id": &f.CycleID, "owner_id": &f.OwnerID, "parent_id": &f.ParentID} {
		v, err := optionalUUID(c, key)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		*dst = v
	}
	if c.QueryBool("mine", false) {
		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		f.OwnerType = "user"
		f.OwnerID = &userID
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListObjectives(c.UserContext(), oc.DB, orgID, f, p)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal mengambil objective")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/u/objectives/tree?cycle_id=
func (oc *ObjectiveController) Tree(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	cycleID, err := optionalUUID(c, "cycle_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if cycleID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cycle_id wajib diisi")
	}
	tree, err := service.Tree(c.UserContext(), oc.DB, orgID, *cycleID)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal menyusun tree objective")
	}
	return helper.JsonOK(c, "ok", tree)
}

// GET /api/u/objectives/:id (termasuk key results)
func (oc *ObjectiveController) Get(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	o, err := service.FindObjective(c.UserContext(), oc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal mengambil objective")
	}
	krs, err := krService.ListByObjective(c.UserContext(), oc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal mengambil key result")
	}
	items := make([]krDTO.KeyResultResponse, 0, len(krs))
	for i := range krs {
		items = append(items, krDTO.FromModel(&krs[i]))
	}
	resp := dto.FromModel(o)
	resp.KeyResultCount = int64(len(items))
	return helper.JsonOK(c, "ok", fiber.Map{
		"objective":   resp,
		"key_results": items,
	})
}

// POST /api/u/objectives
func (oc *ObjectiveController) Create(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateObjectiveRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	o, err := service.CreateObjective(c.UserContext(), oc.DB, orgID, userID, req, oc.Now())
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal membuat objective")
	}
	return helper.JsonCreated(c, "Objective dibuat", dto.FromModel(o))
}

// PATCH /api/u/objectives/:id
func (oc *ObjectiveController) Update(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateObjectiveRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	o, err := service.UpdateObjective(c.UserContext(), oc.DB, orgID, id, req, oc.Now(), oc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal memperbarui objective")
	}
	return helper.JsonUpdated(c, "Objective diperbarui", dto.FromModel(o))
}

// DELETE /api/u/objectives/:id
func (oc *ObjectiveController) Delete(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteObjective(c.UserContext(), oc.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal menghapus objective")
	}
	return helper.JsonDeleted(c, "Objective dihapus", fiber.Map{"objective_id": id})
}

// POST /api/u/objectives/:id/recompute
func (oc *ObjectiveController) Recompute(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := service.FindObjective(c.UserContext(), oc.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal mengambil objective")
	}
	o, err := service.RecomputeObjective(c.UserContext(), oc.DB, id, oc.Now(), oc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgObjectiveNotFound, "Gagal menghitung ulang objective")
	}
	return helper.JsonOK(c, "Progress objective dihitung ulang", dto.FromModel(o))
}
