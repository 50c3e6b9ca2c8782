package controller

import (
	"github.com/gofiber/fiber/v2"

	"okrku_backend/internals/features/organizations/organizations/dto"
	"okrku_backend/internals/features/organizations/organizations/service"
	helper "okrku_backend/internals/helpers"
)

const msgMemberNotFound = "Anggota tidak ditemukan"

// GET /api/u/organizations/current/members?q=&role=&include_inactive=
func (oc *OrganizationController) ListMembers(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	filter := service.MemberFilter{
		Q:          c.Query("q"),
		Role:       c.Query("role"),
		OnlyActive: !c.QueryBool("include_inactive", false),
	}
	rows, total, err := service.ListMembers(c.UserContext(), oc.DB, orgID, filter, p)
	if err != nil {
		return helper.ServiceError(c, err, msgMemberNotFound, "Gagal mengambil anggota")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// POST /api/a/organizations/current/members
func (oc *OrganizationController) AddMember(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	inviter, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.AddMemberRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.AddMember(c.UserContext(), oc.DB, orgID, inviter, req, oc.Now())
	if err != nil {
		return helper.ServiceError(c, err, msgMemberNotFound, "Gagal menambah anggota")
	}
	return helper.JsonCreated(c, "Anggota ditambahkan", dto.MemberFromModel(m))
}

// PATCH /api/a/organizations/current/members/:id
func (oc *OrganizationController) UpdateMember(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	memberID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateMemberRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, err := service.UpdateMember(c.UserContext(), oc.DB, orgID, memberID, req)
	if err != nil {
		return helper.ServiceError(c, err, msgMemberNotFound, "Gagal memperbarui anggota")
	}
	return helper.JsonUpdated(c, "Anggota diperbarui", dto.MemberFromModel(m))
}

// DELETE /api/a/organizations/current/members/:id
func (oc *OrganizationController) RemoveMember(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	memberID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.RemoveMember(c.UserContext(), oc.DB, orgID, memberID); err != nil {
		return helper.ServiceError(c, err, msgMemberNotFound, "Gagal menghapus anggota")
	}
	return helper.JsonDeleted(c, "Anggota dinonaktifkan", fiber.Map{"organization_member_id": memberID})
}
