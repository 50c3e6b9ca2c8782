package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/organizations/organizations/dto"
	"okrku_backend/internals/features/organizations/organizations/model"
	"okrku_backend/internals/features/organizations/organizations/service"
	authRepo "okrku_backend/internals/features/users/auth/repository"
	helper "okrku_backend/internals/helpers"
)

type OrganizationController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewOrganizationController(db *gorm.DB) *OrganizationController {
	return &OrganizationController{DB: db, Now: time.Now}
}

const (
	msgOrgNotFound = "Organisasi tidak ditemukan"
)

func (oc *OrganizationController) current(c *fiber.Ctx) (*model.OrganizationModel, error) {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return nil, err
	}
	var org model.OrganizationModel
	if err := oc.DB.WithContext(c.UserContext()).First(&org, "organization_id = ?", orgID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// POST /api/u/organizations
func (oc *OrganizationController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateOrganizationRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	org, err := service.CreateOrganization(c.UserContext(), oc.DB, userID, req, oc.Now())
	if err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal membuat organisasi")
	}
	resp := dto.FromModel(org)
	resp.MyRole = "owner"
	return helper.JsonCreated(c, "Organisasi berhasil dibuat", resp)
}

// GET /api/u/organizations/mine
func (oc *OrganizationController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := authRepo.ListMemberships(c.UserContext(), oc.DB, userID)
	if err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal mengambil organisasi")
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/u/organizations/current
func (oc *OrganizationController) GetCurrent(c *fiber.Ctx) error {
	org, err := oc.current(c)
	if err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal mengambil organisasi")
	}
	resp := dto.FromModel(org)
	resp.MyRole = helper.GetOrgRole(c)
	return helper.JsonOK(c, "ok", resp)
}

// PATCH /api/a/organizations/current
func (oc *OrganizationController) UpdateCurrent(c *fiber.Ctx) error {
	org, err := oc.current(c)
	if err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal mengambil organisasi")
	}
	var req dto.UpdateOrganizationRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	updates := req.ToUpdates()
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}
	if err := oc.DB.WithContext(c.UserContext()).Model(org).Updates(updates).Error; err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal memperbarui organisasi")
	}
	if err := oc.DB.WithContext(c.UserContext()).First(org, "organization_id = ?", org.OrganizationID).Error; err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal mengambil organisasi")
	}
	return helper.JsonUpdated(c, "Organisasi diperbarui", dto.FromModel(org))
}

// POST /api/a/organizations/current/logo (multipart: file)
func (oc *OrganizationController) UploadLogo(c *fiber.Ctx) error {
	org, err := oc.current(c)
	if err != nil {
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal mengambil organisasi")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File logo wajib diunggah (field: file)")
	}
	url, err := helper.SaveImageAsWebP(c.UserContext(), "logos/"+org.OrganizationID.String(), fh)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	old := org.OrganizationLogoURL
	if err := oc.DB.WithContext(c.UserContext()).Model(org).Update("organization_logo_url", url).Error; err != nil {
		_ = helper.DeleteUploadedFile(c.UserContext(), url)
		return helper.ServiceError(c, err, msgOrgNotFound, "Gagal menyimpan logo")
	}
	if old != nil {
		if err := helper.DeleteUploadedFile(c.UserContext(), *old); err != nil {
			configs.L().Warnf("[WARN] Gagal hapus logo lama: %v", err)
		}
	}
	org.OrganizationLogoURL = &url
	return helper.JsonUpdated(c, "Logo diperbarui", dto.FromModel(org))
}
