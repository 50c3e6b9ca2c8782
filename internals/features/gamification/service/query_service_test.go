package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/gamification/dto"
	"okrku_backend/internals/features/gamification/engine"
	helper "okrku_backend/internals/helpers"
	"okrku_backend/internals/metrics"
)

func TestLeaderboardAndMyStats(t *testing.T) {
	InvalidateAchievementCache()
	t.Cleanup(InvalidateAchievementCache)

	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	ani := dbtest.SeedUser(t, db, "ani")
	budi := dbtest.SeedUser(t, db, "budi")
	dbtest.AddMember(t, db, org.ID, ani.ID, constants.RoleMember)
	dbtest.AddMember(t, db, org.ID, budi.ID, constants.RoleMember)

	now := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	svc := &Service{DB: db, Metrics: metrics.MustNew(prometheus.NewRegistry()), Now: func() time.Time { return now }}
	ctx := context.Background()

	svc.AwardBestEffort(ctx, ani.ID, org.ID, engine.EventObjectiveCompleted, nil)
	svc.AwardBestEffort(ctx, ani.ID, org.ID, engine.EventCheckInCreated, nil)
	svc.AwardBestEffort(ctx, budi.ID, org.ID, engine.EventKeyResultCompleted, nil)

	page := helper.Paging{Page: 1, PerPage: 10, Limit: 10}
	rows, total, err := Leaderboard(ctx, db, org.ID, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, dto.LeaderboardEntry{Rank: 1, UserID: ani.ID, UserName: "ani", TotalPoints: 110, Level: 2, CurrentStreak: 1}, rows[0])
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, budi.ID, rows[1].UserID)

	// halaman kedua melanjutkan nomor rank
	rows, _, err = Leaderboard(ctx, db, org.ID, helper.Paging{Page: 2, PerPage: 1, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Rank)

	me, err := MyStats(ctx, db, ani.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 110, me.TotalPoints)
	assert.Equal(t, 150, me.NextLevelPoints)
	assert.Equal(t, 40, me.PointsToNextLevel)

	// user tanpa aktivitas tetap dapat level 1, tanpa baris baru
	owner, err := MyStats(ctx, db, org.OwnerID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.Level)
	assert.Equal(t, 100, owner.PointsToNextLevel)

	acts, total, err := Activities(ctx, db, ani.ID, org.ID, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, acts, 2)
}

func TestAchievementAdminAndFlags(t *testing.T) {
	InvalidateAchievementCache()
	t.Cleanup(InvalidateAchievementCache)

	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	ctx := context.Background()
	svc := &Service{DB: db, Metrics: metrics.MustNew(prometheus.NewRegistry()), Now: time.Now}

	first, err := CreateAchievement(ctx, db, dto.CreateAchievementRequest{
		Code: "First Check In", Name: "Check-in Pertama", Category: engine.CategoryCheckInsCreated, Threshold: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "first_check_in", first.AchievementCode)

	hidden, err := CreateAchievement(ctx, db, dto.CreateAchievementRequest{
		Code: "secret", Name: "Rahasia", Category: engine.CategoryLevel, Threshold: 1, IsActive: new(bool),
	})
	require.NoError(t, err)
	assert.False(t, hidden.AchievementIsActive)

	list, err := AchievementsFor(ctx, db, org.OwnerID, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "inactive definitions are hidden")
	assert.False(t, list[0].Unlocked)

	svc.AwardBestEffort(ctx, org.OwnerID, org.ID, engine.EventCheckInCreated, nil)
	list, err = AchievementsFor(ctx, db, org.OwnerID, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Unlocked)
	assert.NotNil(t, list[0].UnlockedAt)

	// update harus langsung terlihat (cache dikosongkan)
	on := true
	_, err = UpdateAchievement(ctx, db, hidden.AchievementID, dto.UpdateAchievementRequest{IsActive: &on})
	require.NoError(t, err)
	list, err = AchievementsFor(ctx, db, org.OwnerID, org.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, DeleteAchievement(ctx, db, hidden.AchievementID))
	list, err = AchievementsFor(ctx, db, org.OwnerID, org.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	all, err := ListAllAchievements(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
