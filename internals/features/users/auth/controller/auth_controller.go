package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/users/auth/dto"
	authRepo "okrku_backend/internals/features/users/auth/repository"
	"okrku_backend/internals/features/users/auth/service"
	userDTO "okrku_backend/internals/features/users/users/dto"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

type AuthController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Now: time.Now}
}

func clientMeta(c *fiber.Ctx) service.ClientMeta {
	return service.ClientMeta{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

func respondError(c *fiber.Ctx, err error, failMsg string) error {
	return helper.ServiceError(c, err, "User tidak ditemukan", failMsg)
}

func (ac *AuthController) loginResponse(c *fiber.Ctx, status int, msg string, user *userModel.UserModel, pair *service.TokenPair) error {
	orgs, err := authRepo.ListMemberships(c.UserContext(), ac.DB, user.ID)
	if err != nil {
		configs.L().Warnf("[WARN] Gagal ambil organisasi user %s: %v", user.ID, err)
	}
	helper.SetAuthCookies(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)

	body := dto.LoginResponse{
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		TokenType:     "Bearer",
		ExpiresIn:     int64(time.Until(pair.AccessExpiresAt).Seconds()),
		User:          userDTO.FromModel(user),
		Organizations: orgs,
	}
	if status == fiber.StatusCreated {
		return helper.JsonCreated(c, msg, body)
	}
	return helper.JsonOK(c, msg, body)
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	user, err := service.Register(c.UserContext(), ac.DB, req)
	if err != nil {
		return respondError(c, err, "Gagal mendaftarkan user")
	}
	pair, err := service.IssueTokens(c.UserContext(), ac.DB, *user, nil, clientMeta(c), ac.Now())
	if err != nil {
		return respondError(c, err, "Gagal membuat token")
	}
	return ac.loginResponse(c, fiber.StatusCreated, "Registrasi berhasil", user, pair)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	user, pair, err := service.Login(c.UserContext(), ac.DB, req, clientMeta(c), ac.Now())
	if err != nil {
		return respondError(c, err, "Gagal login")
	}
	return ac.loginResponse(c, fiber.StatusOK, "Login berhasil", user, pair)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	user, pair, err := service.LoginGoogle(c.UserContext(), ac.DB, req, clientMeta(c), ac.Now())
	if err != nil {
		return respondError(c, err, "Gagal login Google")
	}
	return ac.loginResponse(c, fiber.StatusOK, "Login Google berhasil", user, pair)
}

// POST /api/auth/refresh-token
// Body {refresh_token} atau cookie refresh_token (wajib CSRF).
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	raw := req.RefreshToken
	if raw == "" {
		if err := helper.CheckCSRFCookieHeader(c); err != nil {
			return helper.FromFiberError(c, err)
		}
		raw = helper.GetRefreshTokenFromCookie(c)
	}

	pair, user, err := service.RotateRefreshToken(c.UserContext(), ac.DB, raw, clientMeta(c), ac.Now())
	if err != nil {
		return respondError(c, err, "Gagal memperbarui token")
	}
	return ac.loginResponse(c, fiber.StatusOK, "Token diperbarui", user, pair)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if helper.UsesCookieAuth(c) {
		if err := helper.CheckCSRFCookieHeader(c); err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	refresh := helper.GetRefreshTokenFromCookie(c)
	if refresh == "" {
		var req dto.RefreshRequest
		_ = c.BodyParser(&req)
		refresh = req.RefreshToken
	}
	if err := service.Logout(c.UserContext(), ac.DB, helper.GetRawAccessToken(c), refresh, ac.Now()); err != nil {
		return respondError(c, err, "Gagal logout")
	}
	helper.ClearAuthCookies(c)
	return helper.JsonOK(c, "Logout berhasil", nil)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ChangePasswordRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	if err := service.ChangePassword(c.UserContext(), ac.DB, userID, req, ac.Now()); err != nil {
		return respondError(c, err, "Gagal mengganti password")
	}
	return helper.JsonUpdated(c, "Password berhasil diganti", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	user, err := authRepo.FindUserByID(c.UserContext(), ac.DB, userID)
	if err != nil {
		return respondError(c, err, "Gagal mengambil user")
	}
	orgs, err := authRepo.ListMemberships(c.UserContext(), ac.DB, userID)
	if err != nil {
		return respondError(c, err, "Gagal mengambil organisasi")
	}
	return helper.JsonOK(c, "ok", dto.MeResponse{User: userDTO.FromModel(user), Organizations: orgs})
}

// GET /api/auth/csrf
func (ac *AuthController) CSRF(c *fiber.Ctx) error {
	tok := helper.IssueCSRFCookie(c, ac.Now().Add(24*time.Hour))
	return helper.JsonOK(c, "ok", fiber.Map{"csrf_token": tok})
}
