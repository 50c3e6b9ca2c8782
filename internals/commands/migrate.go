package commands

import (
	"github.com/spf13/cobra"

	"okrku_backend/internals/configs"
	database "okrku_backend/internals/databases"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Buat/ubah tabel lewat AutoMigrate",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.AutoMigrate(db.WithContext(cmd.Context())); err != nil {
				return err
			}
			configs.L().Infof("✅ Migrasi selesai (%d tabel)", len(database.Models()))
			return nil
		},
	}
}
