package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/users/auth/dto"
	authModel "okrku_backend/internals/features/users/auth/model"
	authRepo "okrku_backend/internals/features/users/auth/repository"
	userModel "okrku_backend/internals/features/users/users/model"
)

func setup(t *testing.T) (*gorm.DB, context.Context) {
	t.Helper()
	configs.JWTSecret = "access-secret"
	configs.JWTRefreshSecret = "refresh-secret"
	BcryptCost = bcrypt.MinCost
	return dbtest.Open(t), context.Background()
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func registerUser(t *testing.T, db *gorm.DB, ctx context.Context) *userModel.UserModel {
	t.Helper()
	u, err := Register(ctx, db, dto.RegisterRequest{UserName: "budi", Email: "Budi@Example.com", Password: "rahasia123"})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	db, ctx := setup(t)
	u := registerUser(t, db, ctx)
	assert.Equal(t, "budi@example.com", u.Email)
	assert.NotEqual(t, "rahasia123", u.Password)

	_, err := Register(ctx, db, dto.RegisterRequest{UserName: "budi2", Email: "budi@example.com", Password: "rahasia123"})
	assert.Equal(t, fiber.StatusConflict, statusOf(err))

	now := time.Now()
	got, pair, err := Login(ctx, db, dto.LoginRequest{Identifier: "BUDI@example.com", Password: "rahasia123"}, ClientMeta{IP: "127.0.0.1"}, now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(pair.AccessToken, claims, func(*jwt.Token) (any, error) { return []byte("access-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "access", claims["typ"])
	assert.Equal(t, u.ID.String(), claims["sub"])

	_, _, err = Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "salah"}, ClientMeta{}, now)
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(err))
	_, _, err = Login(ctx, db, dto.LoginRequest{Identifier: "siapa", Password: "salah"}, ClientMeta{}, now)
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(err))
}

func TestLoginRejectsForeignOrganization(t *testing.T) {
	db, ctx := setup(t)
	registerUser(t, db, ctx)

	org := "7b0c2b7e-4a59-4f0e-9a53-7c8f0f5d0a11"
	_, _, err := Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "rahasia123", OrganizationID: &org}, ClientMeta{}, time.Now())
	assert.Equal(t, fiber.StatusForbidden, statusOf(err))
}

func TestRotateRefreshTokenIsSingleUse(t *testing.T) {
	db, ctx := setup(t)
	registerUser(t, db, ctx)
	now := time.Now()

	_, pair, err := Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "rahasia123"}, ClientMeta{}, now)
	require.NoError(t, err)

	next, user, err := RotateRefreshToken(ctx, db, pair.RefreshToken, ClientMeta{}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "budi", user.UserName)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, _, err = RotateRefreshToken(ctx, db, pair.RefreshToken, ClientMeta{}, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrRefreshUnknown)

	_, _, err = RotateRefreshToken(ctx, db, pair.AccessToken, ClientMeta{}, now)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestLogoutBlacklistsAndRevokes(t *testing.T) {
	db, ctx := setup(t)
	registerUser(t, db, ctx)
	now := time.Now()
	_, pair, err := Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "rahasia123"}, ClientMeta{}, now)
	require.NoError(t, err)

	require.NoError(t, Logout(ctx, db, pair.AccessToken, pair.RefreshToken, now))
	require.NoError(t, Logout(ctx, db, pair.AccessToken, pair.RefreshToken, now), "logout harus idempotent")

	black, err := authRepo.IsBlacklisted(ctx, db, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, black)

	_, _, err = RotateRefreshToken(ctx, db, pair.RefreshToken, ClientMeta{}, now)
	assert.ErrorIs(t, err, ErrRefreshUnknown)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	db, ctx := setup(t)
	u := registerUser(t, db, ctx)
	now := time.Now()
	_, pair, err := Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "rahasia123"}, ClientMeta{}, now)
	require.NoError(t, err)

	err = ChangePassword(ctx, db, u.ID, dto.ChangePasswordRequest{CurrentPassword: "keliru", NewPassword: "barubaru123"}, now)
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, ChangePassword(ctx, db, u.ID, dto.ChangePasswordRequest{CurrentPassword: "rahasia123", NewPassword: "barubaru123"}, now))
	_, _, err = Login(ctx, db, dto.LoginRequest{Identifier: "budi", Password: "barubaru123"}, ClientMeta{}, now)
	require.NoError(t, err)

	_, _, err = RotateRefreshToken(ctx, db, pair.RefreshToken, ClientMeta{}, now)
	assert.ErrorIs(t, err, ErrRefreshUnknown)
}

func TestLoginGoogleLinksExistingEmail(t *testing.T) {
	db, ctx := setup(t)
	u := registerUser(t, db, ctx)
	configs.GoogleClientID = "client-id"
	orig := VerifyGoogleIDToken
	t.Cleanup(func() { VerifyGoogleIDToken = orig })

	VerifyGoogleIDToken = func(string, string) (*GoogleIdentity, error) {
		return &GoogleIdentity{Sub: "g-1", Email: "budi@example.com", Name: "Budi"}, nil
	}
	got, _, err := LoginGoogle(ctx, db, dto.GoogleLoginRequest{IDToken: "x"}, ClientMeta{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	VerifyGoogleIDToken = func(string, string) (*GoogleIdentity, error) {
		return &GoogleIdentity{Sub: "g-2", Email: "budi@gmail.com", Name: "Budi G"}, nil
	}
	created, _, err := LoginGoogle(ctx, db, dto.GoogleLoginRequest{IDToken: "y"}, ClientMeta{}, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, created.ID)
	assert.Equal(t, "budi-2", created.UserName)
}

func TestCleanupExpiredTokens(t *testing.T) {
	db, ctx := setup(t)
	now := time.Now().UTC()
	require.NoError(t, authRepo.BlacklistToken(ctx, db, "old", now.Add(-10*24*time.Hour)))
	require.NoError(t, authRepo.BlacklistToken(ctx, db, "fresh", now.Add(time.Hour)))

	bl, _, err := CleanupExpiredTokens(ctx, db, now, 7*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, bl)

	var left int64
	require.NoError(t, db.Unscoped().Model(&authModel.TokenBlacklistModel{}).Count(&left).Error)
	assert.EqualValues(t, 1, left)
}
