// file: internals/helpers/token.go
package helper

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"okrku_backend/internals/configs"
)

const (
	LocRawToken = "raw_token"

	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
	CookieCSRF         = "csrf_token"
	HeaderCSRF         = "X-CSRF-Token"
)

// GetRawAccessToken urutan: Locals (diisi AuthMiddleware) → Authorization → cookie.
func GetRawAccessToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if f := strings.Fields(c.Get(fiber.HeaderAuthorization)); len(f) == 2 && strings.EqualFold(f[0], "Bearer") {
		return f[1]
	}
	return strings.TrimSpace(c.Cookies(CookieAccessToken))
}

func GetRefreshTokenFromCookie(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies(CookieRefreshToken))
}

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if raw = strings.TrimSpace(raw); raw != "" {
		c.Locals(LocRawToken, raw)
	}
}

// UsesCookieAuth: request membawa access cookie tapi tanpa Bearer header.
func UsesCookieAuth(c *fiber.Ctx) bool {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	return c.Cookies(CookieAccessToken) != "" && !strings.HasPrefix(strings.ToLower(auth), "bearer ")
}

// CheckCSRFCookieHeader: double-submit, header X-CSRF-Token harus sama dengan cookie csrf_token.
func CheckCSRFCookieHeader(c *fiber.Ctx) error {
	cookie := strings.TrimSpace(c.Cookies(CookieCSRF))
	header := strings.TrimSpace(c.Get(HeaderCSRF))
	switch {
	case cookie == "":
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (cookie)")
	case header == "":
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (header)")
	case subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1:
		return fiber.NewError(fiber.StatusForbidden, "CSRF token mismatch")
	}
	return nil
}

func authCookie(name, value string, httpOnly bool, expires time.Time) *fiber.Cookie {
	secure := configs.GetEnvBool("COOKIE_SECURE", true)
	sameSite := fiber.CookieSameSiteNoneMode
	if !secure {
		sameSite = fiber.CookieSameSiteLaxMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: httpOnly,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
		Expires:  expires,
	}
}

// IssueCSRFCookie membuat csrf_token baru (bisa dibaca JS) dan mengembalikannya.
func IssueCSRFCookie(c *fiber.Ctx, expires time.Time) string {
	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	c.Cookie(authCookie(CookieCSRF, tok, false, expires))
	return tok
}

// SetAuthCookies: access + refresh (httpOnly) + csrf.
func SetAuthCookies(c *fiber.Ctx, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.Cookie(authCookie(CookieAccessToken, access, true, accessExp))
	c.Cookie(authCookie(CookieRefreshToken, refresh, true, refreshExp))
	IssueCSRFCookie(c, refreshExp)
}

func ClearAuthCookies(c *fiber.Ctx) {
	past := time.Now().Add(-time.Hour)
	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieCSRF} {
		ck := authCookie(name, "", name != CookieCSRF, past)
		ck.MaxAge = -1
		c.Cookie(ck)
	}
}
