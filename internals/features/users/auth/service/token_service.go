// internals/features/users/auth/service/token_service.go
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	authModel "okrku_backend/internals/features/users/auth/model"
	authRepo "okrku_backend/internals/features/users/auth/repository"
	userModel "okrku_backend/internals/features/users/users/model"
)

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
)

var (
	ErrRefreshInvalid = fiber.NewError(fiber.StatusUnauthorized, "Refresh token invalid")
	ErrRefreshUnknown = fiber.NewError(fiber.StatusUnauthorized, "Refresh token tidak dikenal")
)

// Info client yang ikut disimpan bersama refresh token.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

func accessTTL() time.Duration {
	if m := configs.GetEnvInt("ACCESS_TTL_MINUTES", 0); m > 0 {
		return time.Duration(m) * time.Minute
	}
	return accessTTLDefault
}

func getJWTSecret() (string, error) {
	if s := strings.TrimSpace(configs.JWTSecret); s != "" {
		return s, nil
	}
	return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET belum diset")
}

func getRefreshSecret() (string, error) {
	if s := strings.TrimSpace(configs.JWTRefreshSecret); s != "" {
		return s, nil
	}
	return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_REFRESH_SECRET belum diset")
}

func strptr(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// Hash refresh token sebelum disimpan (DB tidak pernah menyimpan plaintext).
func computeRefreshHash(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

func buildAccessClaims(user userModel.UserModel, orgID *uuid.UUID, now time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"typ":       "access",
		"sub":       user.ID.String(),
		"id":        user.ID.String(),
		"user_name": user.UserName,
		"full_name": user.DisplayName(),
		"iat":       now.Unix(),
		"exp":       now.Add(accessTTL()).Unix(),
	}
	if orgID != nil && *orgID != uuid.Nil {
		claims["organization_id"] = orgID.String()
	}
	return claims
}

func buildRefreshClaims(userID uuid.UUID, orgID *uuid.UUID, now time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"typ": "refresh",
		"sub": userID.String(),
		"id":  userID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
	if orgID != nil && *orgID != uuid.Nil {
		claims["organization_id"] = orgID.String()
	}
	return claims
}

// IssueTokens menandatangani access + refresh dan menyimpan hash refresh.
func IssueTokens(ctx context.Context, db *gorm.DB, user userModel.UserModel, orgID *uuid.UUID, meta ClientMeta, now time.Time) (*TokenPair, error) {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, err
	}
	now = now.UTC()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, orgID, now)).SignedString([]byte(jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(user.ID, orgID, now)).SignedString([]byte(refreshSecret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	pair := &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(accessTTL()),
		RefreshExpiresAt: now.Add(refreshTTLDefault),
	}
	if err := authRepo.CreateRefreshToken(ctx, db, &authModel.RefreshTokenModel{
		UserID:    user.ID,
		Token:     computeRefreshHash(refresh, refreshSecret),
		ExpiresAt: pair.RefreshExpiresAt,
		UserAgent: strptr(meta.UserAgent),
		IP:        strptr(meta.IP),
	}); err != nil {
		return nil, fmt.Errorf("simpan refresh token: %w", err)
	}
	return pair, nil
}

func parseRefresh(raw, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrRefreshInvalid
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, ErrRefreshInvalid
	}
	return claims, nil
}

// RotateRefreshToken: refresh lama di-revoke (sekali pakai), lalu terbit pasangan baru.
// Token yang sudah pernah dipakai dianggap tidak dikenal.
func RotateRefreshToken(ctx context.Context, db *gorm.DB, raw string, meta ClientMeta, now time.Time) (*TokenPair, *userModel.UserModel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Refresh token tidak ada")
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, nil, err
	}
	claims, err := parseRefresh(raw, refreshSecret)
	if err != nil {
		return nil, nil, err
	}
	now = now.UTC()

	rt, err := authRepo.FindActiveRefreshToken(ctx, db, computeRefreshHash(raw, refreshSecret), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRefreshUnknown
		}
		return nil, nil, err
	}
	if sub, _ := claims["sub"].(string); sub != rt.UserID.String() {
		return nil, nil, ErrRefreshInvalid
	}

	n, err := authRepo.RevokeRefreshToken(ctx, db, rt.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		// balapan dengan request lain yang memakai token yang sama
		return nil, nil, ErrRefreshUnknown
	}

	user, err := authRepo.FindUserByID(ctx, db, rt.UserID)
	if err != nil {
		return nil, nil, ErrRefreshUnknown
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	var orgID *uuid.UUID
	if s, ok := claims["organization_id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			orgID = &id
		}
	}
	pair, err := IssueTokens(ctx, db, *user, orgID, meta, now)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// accessExpiry membaca exp tanpa validasi (token bisa saja sudah expired).
func accessExpiry(raw string, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			if t := time.Unix(int64(exp), 0).UTC(); t.After(now) {
				return t
			}
		}
	}
	return now.Add(accessTTL())
}

// CleanupExpiredTokens menghapus blacklist yang sudah lewat masa berlakunya (ditambah ttl)
// dan refresh token yang expired/revoked.
func CleanupExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time, ttl time.Duration) (int64, int64, error) {
	cutoff := now.UTC().Add(-ttl)
	bl, err := authRepo.PurgeBlacklist(ctx, db, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("purge blacklist: %w", err)
	}
	rt, err := authRepo.DeleteStaleRefreshTokens(ctx, db, cutoff)
	if err != nil {
		return bl, 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return bl, rt, nil
}
