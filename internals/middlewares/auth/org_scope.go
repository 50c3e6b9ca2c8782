package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	helper "okrku_backend/internals/helpers"
	"okrku_backend/internals/helpers/dbtime"
)

const (
	HeaderOrganizationID = "X-Organization-ID"
	locTokenOrgID        = "token_organization_id"
)

type membershipRow struct {
	OrganizationID uuid.UUID
	Role           string
	Timezone       string
}

func loadMembership(db *gorm.DB, userID uuid.UUID, orgID *uuid.UUID) ([]membershipRow, error) {
	q := db.Table("organization_members m").
		Select("m.organization_member_organization_id AS organization_id, m.organization_member_role AS role, o.organization_timezone AS timezone").
		Joins("JOIN organizations o ON o.organization_id = m.organization_member_organization_id AND o.organization_deleted_at IS NULL").
		Where("m.organization_member_user_id = ? AND m.organization_member_is_active = ? AND o.organization_is_active = ?", userID, true, true)
	if orgID != nil {
		q = q.Where("m.organization_member_organization_id = ?", *orgID)
	}

	var rows []membershipRow
	if err := q.Limit(2).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// resolveRequestedOrg: header X-Organization-ID → klaim token → nil (auto).
func resolveRequestedOrg(c *fiber.Ctx) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Get(HeaderOrganizationID))
	if raw == "" {
		raw, _ = c.Locals(locTokenOrgID).(string)
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New("organization id tidak valid")
	}
	return &id, nil
}

// OrgScope menentukan organisasi aktif & role user di dalamnya.
// Harus dipasang setelah AuthMiddleware.
func OrgScope(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.FromFiberError(c, err)
		}

		orgID, err := resolveRequestedOrg(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}

		rows, err := loadMembership(db.WithContext(c.UserContext()), userID, orgID)
		if err != nil {
			configs.L().Errorf("[ERROR] Gagal resolve organisasi user %s: %v", userID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat organisasi")
		}

		switch {
		case len(rows) == 0 && orgID != nil:
			return helper.JsonError(c, fiber.StatusForbidden, "Anda bukan anggota organisasi ini")
		case len(rows) == 0:
			return helper.JsonError(c, fiber.StatusForbidden, "Anda belum tergabung di organisasi mana pun")
		case len(rows) > 1:
			return helper.JsonError(c, fiber.StatusBadRequest, "Pilih organisasi lewat header "+HeaderOrganizationID)
		}

		m := rows[0]
		c.Locals(helper.LocOrganizationID, m.OrganizationID.String())
		c.Locals(helper.LocOrgRole, m.Role)
		c.Locals(dbtime.LocOrgTimezone, m.Timezone)
		return c.Next()
	}
}

// Dipakai oleh handler yang butuh model organisasi penuh.
func CurrentOrganization(c *fiber.Ctx, db *gorm.DB) (*orgModel.OrganizationModel, error) {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return nil, err
	}
	var org orgModel.OrganizationModel
	if err := db.WithContext(c.UserContext()).First(&org, "organization_id = ?", orgID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
