package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"okrku_backend/internals/features/gamification/model"
)

func TestAchievementCache_TTLWithoutJanitor(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	prev := cacheNow
	cacheNow = func() time.Time { return now }
	t.Cleanup(func() {
		cacheNow = prev
		InvalidateAchievementCache()
	})
	InvalidateAchievementCache()

	_, ok := cachedAchievements()
	assert.False(t, ok)

	storeAchievements([]model.AchievementModel{{AchievementCode: "first_check_in"}})
	defs, ok := cachedAchievements()
	require.True(t, ok)
	require.Len(t, defs, 1)
	assert.Equal(t, "first_check_in", defs[0].AchievementCode)

	now = now.Add(achievementCacheTTL - time.Second)
	_, ok = cachedAchievements()
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = cachedAchievements()
	assert.False(t, ok)

	storeAchievements(nil)
	InvalidateAchievementCache()
	_, ok = cachedAchievements()
	assert.False(t, ok)
}
