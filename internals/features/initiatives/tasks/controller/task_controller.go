package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/initiatives/tasks/dto"
	"okrku_backend/internals/features/initiatives/tasks/model"
	"okrku_backend/internals/features/initiatives/tasks/service"
	helper "okrku_backend/internals/helpers"
)

type TaskController struct {
	DB   *gorm.DB
	Gami gamService.Awarder
	Now  func() time.Time
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db, Gami: gamService.New(db), Now: time.Now}
}

const msgNotFound = "Task tidak ditemukan"

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

func (tc *TaskController) list(c *fiber.Ctx, f dto.TaskFilter) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	f.Status = strings.TrimSpace(c.Query("status"))
	f.Q = c.Query("q")
	f.OverdueOnly = c.Query("overdue") == "1"
	if f.Status != "" && !validStatus(f.Status) {
		return helper.JsonError(c, fiber.StatusBadRequest, "status tidak valid")
	}

	now := tc.Now()
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListTasks(c.UserContext(), tc.DB, orgID, f, now, p)
	if err != nil {
		return helper.ServiceError(c, err, "Initiative tidak ditemukan", "Gagal mengambil task")
	}
	out := make([]dto.TaskResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], now))
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", out, &pg)
}

func validStatus(s string) bool {
	for _, v := range model.TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// GET /api/u/initiatives/:id/tasks
func (tc *TaskController) ListByInitiative(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return tc.list(c, dto.TaskFilter{InitiativeID: &id})
}

// GET /api/u/tasks/mine?status=&overdue=1
func (tc *TaskController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return tc.list(c, dto.TaskFilter{AssigneeID: &userID})
}

// POST /api/u/initiatives/:id/tasks
func (tc *TaskController) Create(c *fiber.Ctx) error {
	orgID, userID, initiativeID, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateTaskRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	now := tc.Now()
	t, err := service.CreateTask(c.UserContext(), tc.DB, orgID, initiativeID, userID, req, now, tc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, "Initiative tidak ditemukan", "Gagal membuat task")
	}
	return helper.JsonCreated(c, "Task dibuat", dto.FromModel(t, now))
}

// GET /api/u/tasks/:id
func (tc *TaskController) Get(c *fiber.Ctx) error {
	orgID, _, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := service.FindTask(c.UserContext(), tc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal mengambil task")
	}
	return helper.JsonOK(c, "ok", dto.FromModel(t, tc.Now()))
}

// PATCH /api/u/tasks/:id
func (tc *TaskController) Update(c *fiber.Ctx) error {
	orgID, userID, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateTaskRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	now := tc.Now()
	t, err := service.UpdateTask(c.UserContext(), tc.DB, orgID, id, userID, req, now, tc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal memperbarui task")
	}
	return helper.JsonUpdated(c, "Task diperbarui", dto.FromModel(t, now))
}

// PATCH /api/u/tasks/:id/status
func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	orgID, userID, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateTaskStatusRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	now := tc.Now()
	t, err := service.UpdateTaskStatus(c.UserContext(), tc.DB, orgID, id, userID, req.Status, now, tc.Gami)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal mengubah status task")
	}
	return helper.JsonUpdated(c, "Status task diperbarui", dto.FromModel(t, now))
}

// DELETE /api/u/tasks/:id
func (tc *TaskController) Delete(c *fiber.Ctx) error {
	orgID, _, id, err := ids(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteTask(c.UserContext(), tc.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal menghapus task")
	}
	return helper.JsonDeleted(c, "Task dihapus", fiber.Map{"task_id": id})
}
