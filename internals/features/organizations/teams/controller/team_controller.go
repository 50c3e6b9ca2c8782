package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/organizations/teams/dto"
	"okrku_backend/internals/features/organizations/teams/service"
	helper "okrku_backend/internals/helpers"
)

type TeamController struct {
	DB *gorm.DB
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{DB: db}
}

const msgTeamNotFound = "Tim tidak ditemukan"

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

// GET /api/u/teams?q=
func (tc *TeamController) List(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListTeams(c.UserContext(), tc.DB, orgID, c.Query("q"), p)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal mengambil tim")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/u/teams/:id
func (tc *TeamController) Get(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := service.FindTeam(c.UserContext(), tc.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal mengambil tim")
	}
	members, err := service.ListTeamMembers(c.UserContext(), tc.DB, t.TeamID)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal mengambil anggota tim")
	}
	resp := dto.FromModel(t)
	resp.Members = members
	resp.MemberCount = int64(len(members))
	return helper.JsonOK(c, "ok", resp)
}

// POST /api/a/teams
func (tc *TeamController) Create(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateTeamRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	t, err := service.CreateTeam(c.UserContext(), tc.DB, orgID, req)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal membuat tim")
	}
	return helper.JsonCreated(c, "Tim dibuat", dto.FromModel(t))
}

// PATCH /api/a/teams/:id
func (tc *TeamController) Update(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateTeamRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	t, err := service.UpdateTeam(c.UserContext(), tc.DB, orgID, id, req)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal memperbarui tim")
	}
	return helper.JsonUpdated(c, "Tim diperbarui", dto.FromModel(t))
}

// DELETE /api/a/teams/:id
func (tc *TeamController) Delete(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteTeam(c.UserContext(), tc.DB, orgID, id); err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal menghapus tim")
	}
	return helper.JsonDeleted(c, "Tim dihapus", fiber.Map{"team_id": id})
}

// POST /api/a/teams/:id/members
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.AddTeamMemberRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if err := service.AddTeamMember(c.UserContext(), tc.DB, orgID, id, req); err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal menambah anggota tim")
	}
	members, err := service.ListTeamMembers(c.UserContext(), tc.DB, id)
	if err != nil {
		return helper.ServiceError(c, err, msgTeamNotFound, "Gagal mengambil anggota tim")
	}
	return helper.JsonCreated(c, "Anggota tim ditambahkan", members)
}

// DELETE /api/a/teams/:id/members/:user_id
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseUUIDParam(c, "user_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.RemoveTeamMember(c.UserContext(), tc.DB, orgID, id, userID); err != nil {
		return helper.ServiceError(c, err, "Anggota tim tidak ditemukan", "Gagal menghapus anggota tim")
	}
	return helper.JsonDeleted(c, "Anggota tim dihapus", fiber.Map{"team_id": id, "user_id": userID})
}
