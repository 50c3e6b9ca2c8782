package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocUserID         = "user_id"
	LocOrganizationID = "organization_id"
	LocOrgRole        = "userRole"
)

func uuidFromLocals(v any, emptyStatus int, emptyMsg, badMsg string) (uuid.UUID, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return uuid.Nil, fiber.NewError(emptyStatus, emptyMsg)
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(emptyStatus, emptyMsg)
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, badMsg)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(emptyStatus, emptyMsg)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, badMsg)
	}
	return id, nil
}

// Ambil user_id dari c.Locals("user_id")
// Return 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c.Locals(LocUserID), fiber.StatusUnauthorized, "User belum login", "User ID pada token tidak valid")
}

// GetOrganizationID: organisasi aktif yang di-resolve middleware OrgScope.
func GetOrganizationID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c.Locals(LocOrganizationID), fiber.StatusForbidden, "Organisasi aktif tidak ditemukan", "Organization ID tidak valid")
}

// GetOrgRole: role user pada organisasi aktif ("" kalau belum di-resolve).
func GetOrgRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocOrgRole).(string)
	return strings.ToLower(strings.TrimSpace(r))
}

// ParseUUIDParam parse :param sebagai UUID; error sudah berupa *fiber.Error 400.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" tidak valid")
	}
	return id, nil
}
