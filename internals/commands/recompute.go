package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krService "okrku_backend/internals/features/okr/key_results/service"
	objService "okrku_backend/internals/features/okr/objectives/service"
)

func newRecomputeCmd() *cobra.Command {
	var (
		orgRaw         string
		objectivesOnly bool
	)
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Hitung ulang cache progress KR & objective",
		Long: "Menghitung ulang progress, time progress, dan status yang di-cache.\n" +
			"Tanpa --org semua organisasi diproses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var orgID *uuid.UUID
			if orgRaw != "" {
				id, err := uuid.Parse(orgRaw)
				if err != nil {
					return fmt.Errorf("--org tidak valid: %w", err)
				}
				orgID = &id
			}

			db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := Recompute(cmd.Context(), db, orgID, objectivesOnly, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recompute selesai: %d entitas\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&orgRaw, "org", "", "organization id (uuid)")
	cmd.Flags().BoolVar(&objectivesOnly, "objectives-only", false, "hanya objective (progress dari nilai KR), cache KR tidak disentuh")
	return cmd
}

// Recompute: default per cycle (KR lalu objective); objectivesOnly hanya menghitung ulang objective.
func Recompute(ctx context.Context, db *gorm.DB, orgID *uuid.UUID, objectivesOnly bool, now time.Time) (int, error) {
	if objectivesOnly {
		return objService.RecomputeOrganization(ctx, db, orgID, now)
	}

	q := db.WithContext(ctx).Model(&cycleModel.CycleModel{})
	if orgID != nil {
		q = q.Where("cycle_organization_id = ?", *orgID)
	}
	var cycleIDs []uuid.UUID
	if err := q.Pluck("cycle_id", &cycleIDs).Error; err != nil {
		return 0, err
	}

	total := 0
	for _, id := range cycleIDs {
		n, err := krService.RefreshCycle(ctx, db, id, now)
		if err != nil {
			configs.L().Warnf("[WARN] recompute cycle %s gagal: %v", id, err)
			continue
		}
		total += n
	}
	return total, nil
}
