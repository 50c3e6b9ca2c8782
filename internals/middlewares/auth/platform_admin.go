package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"okrku_backend/internals/configs"
	helper "okrku_backend/internals/helpers"
)

// PlatformAdmin: hanya user yang terdaftar di PLATFORM_ADMIN_USER_IDS.
// Dipakai untuk data global lintas organisasi.
func PlatformAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		for _, id := range configs.PlatformAdminIDs {
			if strings.EqualFold(id, userID.String()) {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, "Akses khusus admin platform")
	}
}
