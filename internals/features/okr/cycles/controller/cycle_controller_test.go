package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/okr/cycles/dto"
	"okrku_backend/internals/features/okr/cycles/service"
	helper "okrku_backend/internals/helpers"
)

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	prev := configs.L()
	configs.SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { configs.SetLogger(prev) })
	return logs
}

func TestGet_ObjectiveCountFailureIsLogged(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	cy, err := service.CreateCycle(context.Background(), db, org.ID, dto.CreateCycleRequest{Name: "Q1", StartDate: "2026-01-01", EndDate: "2026-03-31"})
	require.NoError(t, err)

	ctrl := NewCycleController(db)
	ctrl.Now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helper.LocOrganizationID, org.ID.String())
		return c.Next()
	})
	app.Get("/cycles/:id", ctrl.Get)

	get := func() (int, int64) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/cycles/"+cy.CycleID.String(), nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body struct {
			Data dto.CycleResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body.Data.ObjectiveCount
	}

	logs := observeWarnings(t)
	status, _ := get()
	assert.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, logs.Len())

	// tabel objectives hilang → count gagal, response tetap 200 dengan 0
	require.NoError(t, db.Migrator().DropTable("objectives"))
	status, n := get()
	assert.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, n)
	require.Equal(t, 1, logs.FilterMessageSnippet("Gagal menghitung objective cycle").Len())
}
