package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/users/users/dto"
	"okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

func (uc *UserController) loadMe(c *fiber.Ctx) (*model.UserModel, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	var user model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GET /api/u/users/me
func (uc *UserController) GetMe(c *fiber.Ctx) error {
	user, err := uc.loadMe(c)
	if err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal mengambil profil")
	}
	return helper.JsonOK(c, "ok", dto.FromModel(user))
}

// PATCH /api/u/users/me
func (uc *UserController) UpdateMe(c *fiber.Ctx) error {
	user, err := uc.loadMe(c)
	if err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal mengambil profil")
	}

	var req dto.UpdateMeRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	updates := req.ToUpdates()
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	if err := uc.DB.WithContext(c.UserContext()).Model(user).Updates(updates).Error; err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal memperbarui profil")
	}
	if err := uc.DB.WithContext(c.UserContext()).First(user, "id = ?", user.ID).Error; err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal mengambil profil")
	}
	return helper.JsonUpdated(c, "Profil diperbarui", dto.FromModel(user))
}

// POST /api/u/users/me/avatar (multipart: file)
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	user, err := uc.loadMe(c)
	if err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal mengambil profil")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File avatar wajib diunggah (field: file)")
	}

	url, err := helper.SaveImageAsWebP(c.UserContext(), "avatars", fh)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	old := user.AvatarURL
	if err := uc.DB.WithContext(c.UserContext()).Model(user).
		Updates(map[string]any{"avatar_url": url, "updated_at": time.Now()}).Error; err != nil {
		_ = helper.DeleteUploadedFile(c.UserContext(), url)
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal menyimpan avatar")
	}
	if old != nil && *old != "" {
		if err := helper.DeleteUploadedFile(c.UserContext(), *old); err != nil {
			configs.L().Warnf("[WARN] Gagal hapus avatar lama %s: %v", *old, err)
		}
	}
	user.AvatarURL = &url
	return helper.JsonUpdated(c, "Avatar diperbarui", dto.FromModel(user))
}

// DELETE /api/u/users/me/avatar
func (uc *UserController) DeleteAvatar(c *fiber.Ctx) error {
	user, err := uc.loadMe(c)
	if err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal mengambil profil")
	}
	if user.AvatarURL == nil {
		return helper.JsonDeleted(c, "Avatar sudah kosong", dto.FromModel(user))
	}
	if err := uc.DB.WithContext(c.UserContext()).Model(user).Update("avatar_url", nil).Error; err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal menghapus avatar")
	}
	_ = helper.DeleteUploadedFile(c.UserContext(), *user.AvatarURL)
	user.AvatarURL = nil
	return helper.JsonDeleted(c, "Avatar dihapus", dto.FromModel(user))
}
