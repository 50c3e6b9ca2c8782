package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.IncRecompute("key_result")
	m.IncRecompute("key_result")
	m.IncInitiativeTransition("draft", "sedang_berjalan")
	m.AddPoints("check_in_created", 10)
	m.AddPoints("check_in_created", 0)
	m.IncLevelUp()
	m.IncAchievement("first_check_in")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.progressRecompute.WithLabelValues("key_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.initiativeTransition.WithLabelValues("draft", "sedang_berjalan")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.gamificationPoints.WithLabelValues("check_in_created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.levelUps))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievementsUnlocked.WithLabelValues("first_check_in")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRecompute("x")
		m.IncInitiativeTransition("a", "b")
		m.AddPoints("x", 1)
		m.IncLevelUp()
		m.IncAchievement("x")
	})
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/items/:id", "200")))
}
