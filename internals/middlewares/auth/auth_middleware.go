// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	authModel "okrku_backend/internals/features/users/auth/model"
	helper "okrku_backend/internals/helpers"
)

const expirySkew = 30 * time.Second

// Public path yang di-skip auth (webhook dsb.)
var skipPaths = map[string]struct{}{
	"/api/public/billing/midtrans/notification": {},
}

// authenticate: ambil token, cek blacklist, parse, validasi exp & user aktif.
func authenticate(c *fiber.Ctx, db *gorm.DB) (jwt.MapClaims, error) {
	tokenString, err := extractBearerToken(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	// Cek blacklist (sekali per request)
	if c.Locals("token_checked") == nil {
		var existing authModel.TokenBlacklistModel
		err := db.WithContext(c.UserContext()).
			Select("id").
			Where("token = ?", tokenString).
			First(&existing).Error
		switch {
		case err == nil:
			configs.L().Warn("[WARN] Token ditemukan di blacklist")
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			configs.L().Errorf("[ERROR] DB error saat cek blacklist: %v", err)
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		c.Locals("token_checked", true)
	}

	secretKey := configs.JWTSecret
	if secretKey == "" {
		configs.L().Error("[ERROR] JWT_SECRET kosong")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		configs.L().Debugf("[AUTH] Gagal parse token: %v", err)
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
	}

	if typ, _ := claims["typ"].(string); typ != "" && typ != "access" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Bukan access token")
	}
	if err := validateTokenExpiry(claims, expirySkew); err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
	}

	userID, err := extractUserID(claims)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
	}
	if err := ensureUserActive(db.WithContext(c.UserContext()), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
		}
		return nil, fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
	}

	c.Locals(helper.LocUserID, userID.String())
	helper.SetRawAccessToken(c, tokenString)
	storeBasicClaimsToLocals(c, claims)
	return claims, nil
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}
		if _, err := authenticate(c, db); err != nil {
			return helper.FromFiberError(c, err)
		}
		return c.Next()
	}
}

// OptionalAuthMiddleware: kalau ada token valid, isi Locals; kalau tidak, lanjut anonim.
func OptionalAuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" && c.Cookies("access_token") == "" {
			return c.Next()
		}
		if _, err := authenticate(c, db); err != nil {
			configs.L().Debugf("[AUTH] Token opsional diabaikan: %v", err)
		}
		return c.Next()
	}
}
