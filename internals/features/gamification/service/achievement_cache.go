package service

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/model"
)

const (
	achievementCacheKey = "active"
	achievementCacheTTL = 5 * time.Minute
)

type achievementEntry struct {
	defs     []model.AchievementModel
	loadedAt time.Time
}

// TTL dicek saat Get, tanpa goroutine pembersih.
var (
	achievementCache = mustLRU(8)
	cacheNow         = time.Now
)

func mustLRU(size int) *lru.Cache[string, achievementEntry] {
	c, err := lru.New[string, achievementEntry](size)
	if err != nil {
		panic(err)
	}
	return c
}

func cachedAchievements() ([]model.AchievementModel, bool) {
	e, ok := achievementCache.Get(achievementCacheKey)
	if !ok {
		return nil, false
	}
	if cacheNow().Sub(e.loadedAt) >= achievementCacheTTL {
		achievementCache.Remove(achievementCacheKey)
		return nil, false
	}
	return e.defs, true
}

func storeAchievements(defs []model.AchievementModel) {
	achievementCache.Add(achievementCacheKey, achievementEntry{defs: defs, loadedAt: cacheNow()})
}

// ActiveAchievements membaca definisi achievement aktif (cache 5 menit).
func ActiveAchievements(ctx context.Context, db *gorm.DB) ([]model.AchievementModel, error) {
	if defs, ok := cachedAchievements(); ok {
		return defs, nil
	}

	var defs []model.AchievementModel
	if err := db.WithContext(ctx).
		Where("achievement_is_active = ?", true).
		Order("achievement_category ASC, achievement_threshold ASC").
		Find(&defs).Error; err != nil {
		return nil, err
	}
	storeAchievements(defs)
	return defs, nil
}

// InvalidateAchievementCache dipanggil setelah admin create/update/delete.
func InvalidateAchievementCache() {
	achievementCache.Purge()
}
