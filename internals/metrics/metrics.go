// Package metrics berisi collector Prometheus untuk domain OKR.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "okrku"

type Metrics struct {
	progressRecompute    *prometheus.CounterVec
	initiativeTransition *prometheus.CounterVec
	gamificationPoints   *prometheus.CounterVec
	levelUps             prometheus.Counter
	achievementsUnlocked *prometheus.CounterVec
	jobRuns              *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default: instance global yang terdaftar di prometheus.DefaultRegisterer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew membuat collector baru; test memakai registry sendiri.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		progressRecompute: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_recompute_total",
			Help:      "Jumlah recompute cache progress per jenis entitas.",
		}, []string{"kind"}),
		initiativeTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "initiative_transitions_total",
			Help:      "Transisi status initiative otomatis.",
		}, []string{"from", "to"}),
		gamificationPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gamification_points_total",
			Help:      "Total poin yang diberikan per event.",
		}, []string{"event"}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gamification_level_ups_total",
			Help:      "Jumlah kenaikan level user.",
		}),
		achievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievement yang terbuka per kode.",
		}, []string{"code"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Eksekusi job terjadwal per hasil.",
		}, []string{"job", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Jumlah request HTTP.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Durasi request HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		m.progressRecompute, m.initiativeTransition, m.gamificationPoints,
		m.levelUps, m.achievementsUnlocked, m.jobRuns, m.httpRequests, m.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			panic(err)
		}
	}
	return m
}

func (m *Metrics) IncRecompute(kind string) {
	if m == nil {
		return
	}
	m.progressRecompute.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncInitiativeTransition(from, to string) {
	if m == nil {
		return
	}
	m.initiativeTransition.WithLabelValues(from, to).Inc()
}

func (m *Metrics) AddPoints(event string, points int) {
	if m == nil || points <= 0 {
		return
	}
	m.gamificationPoints.WithLabelValues(event).Add(float64(points))
}

func (m *Metrics) IncLevelUp() {
	if m == nil {
		return
	}
	m.levelUps.Inc()
}

func (m *Metrics) IncAchievement(code string) {
	if m == nil {
		return
	}
	m.achievementsUnlocked.WithLabelValues(code).Inc()
}

func (m *Metrics) IncJob(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

// Middleware mencatat jumlah & durasi request per route template.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unknown"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler: GET /metrics
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
