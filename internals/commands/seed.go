package commands

import (
	"time"

	"github.com/spf13/cobra"

	"okrku_backend/internals/seeds"
)

func newSeedCmd() *cobra.Command {
	var (
		withDemo bool
		members  int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Isi paket langganan & achievement (opsional: data demo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			return seeds.RunAllSeeds(cmd.Context(), db, seeds.Options{
				Demo:        withDemo,
				DemoMembers: members,
				Now:         time.Now(),
			})
		},
	}
	cmd.Flags().BoolVar(&withDemo, "demo", false, "buat organisasi demo dengan anggota acak")
	cmd.Flags().IntVar(&members, "members", 4, "jumlah anggota demo (selain owner)")
	return cmd
}
