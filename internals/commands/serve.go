package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	database "okrku_backend/internals/databases"
	helper "okrku_backend/internals/helpers"
	"okrku_backend/internals/metrics"
	middlewares "okrku_backend/internals/middlewares"
	"okrku_backend/internals/middlewares/logger"
	routes "okrku_backend/internals/route"
	"okrku_backend/internals/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Jalankan HTTP API + scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// requestTimeout selaras dengan statement_timeout di DSN.
const requestTimeout = 5 * time.Second

// NewApp menyusun fiber app lengkap (middleware + routes) di atas db.
func NewApp(db *gorm.DB, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          configs.GetEnvList("TRUSTED_PROXIES"),
		BodyLimit:               configs.GetEnvInt("BODY_LIMIT_MB", 6) * 1024 * 1024,
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             90 * time.Second,
	})

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(requestid.New(requestid.Config{Generator: utils.UUID}))
	app.Use(logger.LoggerMiddleware())
	app.Use(m.Middleware())

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.CorsMiddleware())
	app.Use(middlewares.GlobalRateLimiter())

	// HTTP timeout guard
	app.Use(func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	routes.SetupRoutes(app, db)
	return app
}

func runServe(ctx context.Context) error {
	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	defer database.Close(database.DB)

	// 🗂 object storage opsional untuk avatar & logo
	store, err := helper.NewOSSStoreFromEnv()
	switch {
	case err != nil:
		configs.L().Warnf("[WARN] OSS tidak dipakai, upload ke disk lokal: %v", err)
	case store != nil:
		helper.UseObjectStore(store)
		configs.L().Infof("[INFO] Upload gambar ke OSS bucket=%s", store.BucketName)
	}

	m := metrics.Default()
	app := NewApp(database.DB, m)

	// ⏱ scheduler setelah DB siap
	sched := scheduler.New(database.DB, scheduler.ConfigFromEnv(), m)
	if err := sched.Start(); err != nil {
		return err
	}

	port := configs.GetEnv("PORT", "3000")
	errCh := make(chan error, 1)
	go func() {
		configs.L().Infof("✅ Listening on :%s", port)
		errCh <- app.Listen("0.0.0.0:" + port)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		configs.L().Warnf("[WARN] shutdown: %v", err)
	}
	configs.L().Info("👋 Server berhenti")
	return nil
}
