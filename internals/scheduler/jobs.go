package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"okrku_backend/internals/configs"
	billingService "okrku_backend/internals/features/billing/service"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krService "okrku_backend/internals/features/okr/key_results/service"
	authService "okrku_backend/internals/features/users/auth/service"
)

func (s *Scheduler) CleanupTokens(ctx context.Context) error {
	bl, rt, err := authService.CleanupExpiredTokens(ctx, s.db, s.now(), s.cfg.TokenTTL)
	if err != nil {
		return err
	}
	if bl+rt > 0 {
		configs.L().Infof("[INFO] token cleanup: blacklist=%d refresh=%d", bl, rt)
	}
	return nil
}

func (s *Scheduler) SweepSubscriptions(ctx context.Context) error {
	subs, inv, err := billingService.ExpireSubscriptions(ctx, s.db, s.now())
	if err != nil {
		return err
	}
	if subs+inv > 0 {
		configs.L().Infof("[INFO] subscription sweep: subscription=%d invoice=%d expired", subs, inv)
	}
	return nil
}

// RefreshKeyResults memperbarui time progress & status cache untuk semua cycle
// yang sedang berjalan (status apa pun selain completed).
func (s *Scheduler) RefreshKeyResults(ctx context.Context) error {
	now := s.now().UTC()
	var cycles []cycleModel.CycleModel
	if err := s.db.WithContext(ctx).
		Where("cycle_status <> ?", cycleModel.CycleStatusCompleted).
		Find(&cycles).Error; err != nil {
		return fmt.Errorf("load cycles: %w", err)
	}

	total := 0
	for _, cy := range cycles {
		if !cy.Contains(now) {
			continue
		}
		n, err := krService.RefreshCycle(ctx, s.db, cy.CycleID, now)
		if err != nil {
			configs.L().Warnf("[WARN] refresh cycle %s gagal: %v", cy.CycleID, err)
			continue
		}
		total += n
	}
	configs.L().Infof("[INFO] key result refresh: %d KR diperbarui", total)
	return nil
}

type reapTarget struct{ Table, Col string }

var reapTargets = []reapTarget{
	{Table: "tasks", Col: "task_deleted_at"},
	{Table: "initiatives", Col: "initiative_deleted_at"},
	{Table: "key_results", Col: "key_result_deleted_at"},
	{Table: "objectives", Col: "objective_deleted_at"},
	{Table: "cycles", Col: "cycle_deleted_at"},
	{Table: "teams", Col: "team_deleted_at"},
}

// ReapSoftDeleted: hard-delete row soft-deleted yang lebih tua dari Retention.
func (s *Scheduler) ReapSoftDeleted(ctx context.Context) error {
	_, err := s.reap(ctx)
	return err
}

// reap mengembalikan jumlah row yang dihapus (atau, saat dry-run, yang akan dihapus).
// Error per tabel dicatat lalu digabung supaya job tetap terhitung gagal.
func (s *Scheduler) reap(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cfg.Retention)
	var (
		total int64
		errs  []error
	)
	for _, t := range reapTargets {
		col := pq.QuoteIdentifier(t.Col)
		where := col + ` IS NOT NULL AND ` + col + ` < ?`
		if s.cfg.ReaperDryRun {
			var n int64
			if err := s.db.WithContext(ctx).Table(t.Table).Where(where, cutoff).Count(&n).Error; err != nil {
				configs.L().Warnf("[WARN] reaper %s: %v", t.Table, err)
				errs = append(errs, fmt.Errorf("reaper %s: %w", t.Table, err))
				continue
			}
			configs.L().Infof("[INFO] reaper DRY-RUN %s: %d row", t.Table, n)
			total += n
			continue
		}
		res := s.db.WithContext(ctx).Exec(`DELETE FROM `+pq.QuoteIdentifier(t.Table)+` WHERE `+where, cutoff)
		if res.Error != nil {
			configs.L().Warnf("[WARN] reaper %s: delete error: %v", t.Table, res.Error)
			errs = append(errs, fmt.Errorf("reaper %s: %w", t.Table, res.Error))
			continue
		}
		if res.RowsAffected > 0 {
			configs.L().Infof("[INFO] reaper %s: hard-deleted %d row (cutoff=%s)", t.Table, res.RowsAffected, cutoff.Format(time.RFC3339))
		}
		total += res.RowsAffected
	}
	if total == 0 && !s.cfg.ReaperDryRun {
		configs.L().Debugf("[DEBUG] reaper: tidak ada yang dihapus (cutoff=%s)", cutoff.Format(time.RFC3339))
	}
	return total, errors.Join(errs...)
}
