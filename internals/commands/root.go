// Package commands berisi CLI okrku (cobra): serve, migrate, seed, recompute.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "okrku",
		Short:         "OKRku backend: API OKR, initiative, dan gamifikasi",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitLogger(); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			configs.LoadEnv()
			// ulang setelah .env dimuat (APP_ENV / LOG_LEVEL)
			return configs.InitLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			configs.SyncLogger()
		},
		// tanpa subcommand = serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newRecomputeCmd())
	return root
}

// Execute dipanggil dari main.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		configs.L().Errorf("[ERROR] %v", err)
		configs.SyncLogger()
		os.Exit(1)
	}
}

// openDB: koneksi tanpa pool tuning untuk command sekali jalan.
func openDB() (*gorm.DB, func(), error) {
	db, err := configs.InitSeederDB()
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
