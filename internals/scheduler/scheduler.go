// Package scheduler menjalankan job periodik (robfig/cron) di proses server.
package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/metrics"
)

type Config struct {
	Enabled bool

	TokenCleanupSpec      string
	SubscriptionSweepSpec string
	KeyResultRefreshSpec  string
	ReaperSpec            string

	TokenTTL     time.Duration
	Retention    time.Duration
	JobTimeout   time.Duration
	ReaperDryRun bool
}

// ConfigFromEnv membaca CRON_* dan TTL dari env.
func ConfigFromEnv() Config {
	return Config{
		Enabled:               configs.GetEnvBool("CRON_ENABLED", true),
		TokenCleanupSpec:      configs.GetEnv("CRON_TOKEN_CLEANUP", "10 2 * * *"),
		SubscriptionSweepSpec: configs.GetEnv("CRON_SUBSCRIPTION_SWEEP", "5 * * * *"),
		KeyResultRefreshSpec:  configs.GetEnv("CRON_KR_REFRESH", "30 0 * * *"),
		ReaperSpec:            configs.GetEnv("CRON_TRASH_REAPER", "15 3 * * *"),
		TokenTTL:              time.Duration(configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 1)) * 24 * time.Hour,
		Retention:             time.Duration(configs.GetEnvInt("RETENTION_DAYS", 30)) * 24 * time.Hour,
		JobTimeout:            4 * time.Minute,
		ReaperDryRun:          configs.GetEnvBool("DRY_RUN", false),
	}
}

type Scheduler struct {
	cron    *cron.Cron
	db      *gorm.DB
	cfg     Config
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(db *gorm.DB, cfg Config, m *metrics.Metrics) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		db:      db,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

// Start mendaftarkan job lalu menjalankan cron. Spec kosong = job dimatikan.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		configs.L().Info("[INFO] scheduler dimatikan (CRON_ENABLED=false)")
		return nil
	}
	jobs := []struct {
		name string
		spec string
		fn   func(context.Context) error
	}{
		{"token_cleanup", s.cfg.TokenCleanupSpec, s.CleanupTokens},
		{"subscription_sweep", s.cfg.SubscriptionSweepSpec, s.SweepSubscriptions},
		{"key_result_refresh", s.cfg.KeyResultRefreshSpec, s.RefreshKeyResults},
		{"trash_reaper", s.cfg.ReaperSpec, s.ReapSoftDeleted},
	}
	for _, j := range jobs {
		if strings.TrimSpace(j.spec) == "" {
			configs.L().Infof("[INFO] job %s dimatikan", j.name)
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.fn)); err != nil {
			return err
		}
		configs.L().Infof("[INFO] job %s terjadwal schedule=%q", j.name, j.spec)
	}
	s.cron.Start()
	return nil
}

// Stop menunggu job yang sedang jalan.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		configs.L().Warn("[WARN] scheduler stop timeout, job masih berjalan")
	}
}

func (s *Scheduler) wrap(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()
		start := time.Now()
		err := fn(ctx)
		s.metrics.IncJob(name, err)
		if err != nil {
			configs.L().Errorf("[ERROR] job %s gagal: %v", name, err)
			return
		}
		configs.L().Debugw("[JOB]", "name", name, "elapsed", time.Since(start))
	}
}
