package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/users/auth/dto"
	authRepo "okrku_backend/internals/features/users/auth/repository"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

var (
	ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "Email/username atau password salah")
	ErrAccountInactive    = fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	ErrDuplicateUser      = fiber.NewError(fiber.StatusConflict, "Email atau username sudah terdaftar")
	ErrNotMember          = fiber.NewError(fiber.StatusForbidden, "Anda bukan anggota organisasi ini")
	ErrWrongPassword      = fiber.NewError(fiber.StatusUnauthorized, "Password lama salah")
)

// BcryptCost bisa diturunkan di test.
var BcryptCost = bcrypt.DefaultCost

// dipakai saat user tidak ditemukan supaya waktu respon login tetap mirip
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("okrku-dummy-password"), bcrypt.MinCost)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPasswordHash(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

/* ==========================
   REGISTER
========================== */

func Register(ctx context.Context, db *gorm.DB, req dto.RegisterRequest) (*userModel.UserModel, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &userModel.UserModel{
		UserName: strings.TrimSpace(req.UserName),
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
		IsActive: true,
	}
	if err := authRepo.CreateUser(ctx, db, user); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	configs.L().Infof("[INFO] User baru terdaftar: %s", user.ID)
	return user, nil
}

/* ==========================
   LOGIN
========================== */

func parseOrgID(s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "organization_id tidak valid")
	}
	return &id, nil
}

// finishLogin: cek organisasi pilihan, catat last_login_at, terbitkan token.
func finishLogin(ctx context.Context, db *gorm.DB, user *userModel.UserModel, orgRaw *string, meta ClientMeta, now time.Time) (*TokenPair, error) {
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	orgID, err := parseOrgID(orgRaw)
	if err != nil {
		return nil, err
	}
	if orgID != nil {
		ok, err := authRepo.IsActiveMember(ctx, db, user.ID, *orgID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotMember
		}
	}

	if err := authRepo.TouchLastLogin(ctx, db, user.ID, now.UTC()); err != nil {
		configs.L().Warnf("[WARN] Gagal update last_login_at user %s: %v", user.ID, err)
	}
	return IssueTokens(ctx, db, *user, orgID, meta, now)
}

func Login(ctx context.Context, db *gorm.DB, req dto.LoginRequest, meta ClientMeta, now time.Time) (*userModel.UserModel, *TokenPair, error) {
	user, err := authRepo.FindUserByEmailOrUsername(ctx, db, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := CheckPasswordHash(user.Password, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := finishLogin(ctx, db, user, req.OrganizationID, meta, now)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

/* ==========================
   LOGIN GOOGLE
========================== */

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

// VerifyGoogleIDToken bisa diganti di test.
var VerifyGoogleIDToken = func(idToken, clientID string) (*GoogleIdentity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{clientID}); err != nil {
		return nil, err
	}
	cs, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Sub: cs.Sub, Email: cs.Email, Name: cs.Name}, nil
}

func LoginGoogle(ctx context.Context, db *gorm.DB, req dto.GoogleLoginRequest, meta ClientMeta, now time.Time) (*userModel.UserModel, *TokenPair, error) {
	if strings.TrimSpace(configs.GoogleClientID) == "" {
		return nil, nil, fiber.NewError(fiber.StatusServiceUnavailable, "Login Google belum dikonfigurasi")
	}
	gid, err := VerifyGoogleIDToken(req.IDToken, configs.GoogleClientID)
	if err != nil {
		configs.L().Debugf("[AUTH] Google ID token ditolak: %v", err)
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Google ID Token")
	}
	if gid.Sub == "" || gid.Email == "" {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Google ID Token tidak lengkap")
	}

	user, err := findOrCreateGoogleUser(ctx, db, gid)
	if err != nil {
		return nil, nil, err
	}
	pair, err := finishLogin(ctx, db, user, req.OrganizationID, meta, now)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// google_id → email (lalu ditautkan) → user baru.
func findOrCreateGoogleUser(ctx context.Context, db *gorm.DB, gid *GoogleIdentity) (*userModel.UserModel, error) {
	user, err := authRepo.FindUserByGoogleID(ctx, db, gid.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = authRepo.FindUserByEmail(ctx, db, gid.Email)
	switch {
	case err == nil:
		if err := authRepo.LinkGoogleID(ctx, db, user.ID, gid.Sub); err != nil {
			return nil, fmt.Errorf("link google id: %w", err)
		}
		user.GoogleID = &gid.Sub
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	local := gid.Email
	if at := strings.IndexByte(local, '@'); at > 0 {
		local = local[:at]
	}
	userName, err := helper.EnsureUniqueSlugCI(ctx, db, "users", "user_name",
		strings.ReplaceAll(helper.Slugify(local, 40, "user"), "-", ""), nil, 50)
	if err != nil {
		return nil, err
	}
	randomPw, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	sub := gid.Sub
	newUser := &userModel.UserModel{
		UserName: userName,
		FullName: strptr(gid.Name),
		Email:    gid.Email,
		Password: randomPw,
		GoogleID: &sub,
		IsActive: true,
	}
	if err := authRepo.CreateUser(ctx, db, newUser); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create google user: %w", err)
	}
	configs.L().Infof("[INFO] User Google baru: %s", newUser.ID)
	return newUser, nil
}

/* ==========================
   LOGOUT
========================== */

// Logout mem-blacklist access token dan me-revoke refresh token. Idempotent.
func Logout(ctx context.Context, db *gorm.DB, accessRaw, refreshRaw string, now time.Time) error {
	now = now.UTC()
	if accessRaw != "" {
		if err := authRepo.BlacklistToken(ctx, db, accessRaw, accessExpiry(accessRaw, now)); err != nil {
			return fmt.Errorf("blacklist token: %w", err)
		}
	}
	if refreshRaw != "" {
		if secret, err := getRefreshSecret(); err == nil {
			if err := authRepo.RevokeRefreshTokenByHash(ctx, db, computeRefreshHash(refreshRaw, secret), now); err != nil {
				configs.L().Warnf("[WARN] Gagal revoke refresh token: %v", err)
			}
		}
	}
	return nil
}

/* ==========================
   CHANGE PASSWORD
========================== */

// ChangePassword juga me-revoke semua refresh token user (sesi lain harus login ulang).
func ChangePassword(ctx context.Context, db *gorm.DB, userID uuid.UUID, req dto.ChangePasswordRequest, now time.Time) error {
	user, err := authRepo.FindUserByID(ctx, db, userID)
	if err != nil {
		return err
	}
	if err := CheckPasswordHash(user.Password, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := authRepo.UpdateUserPassword(ctx, db, userID, hash); err != nil {
		return err
	}
	if err := authRepo.RevokeAllRefreshTokens(ctx, db, userID, now.UTC()); err != nil {
		configs.L().Warnf("[WARN] Gagal revoke refresh token user %s: %v", userID, err)
	}
	return nil
}
