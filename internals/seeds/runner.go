package seeds

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/seeds/achievements"
	"okrku_backend/internals/seeds/demo"
	"okrku_backend/internals/seeds/plans"
)

type Options struct {
	Demo        bool
	DemoMembers int
	Now         time.Time
}

// RunAllSeeds: paket langganan & achievement selalu, data demo opsional.
// Aman dijalankan berulang.
func RunAllSeeds(ctx context.Context, db *gorm.DB, opt Options) error {
	//* Billing
	if _, err := plans.SeedPlans(ctx, db); err != nil {
		return err
	}

	//* Gamification
	if _, err := achievements.SeedAchievements(ctx, db); err != nil {
		return err
	}

	//* Demo
	if !opt.Demo {
		return nil
	}
	_, err := demo.SeedDemo(ctx, db, demo.Options{
		Members: opt.DemoMembers,
		Now:     opt.Now,
		Awarder: gamService.New(db),
	})
	if errors.Is(err, demo.ErrDemoExists) {
		configs.L().Info("ℹ️ Organisasi demo sudah ada, lewati...")
		return nil
	}
	return err
}
