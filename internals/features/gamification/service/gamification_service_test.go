package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/gamification/engine"
	"okrku_backend/internals/features/gamification/model"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	"okrku_backend/internals/metrics"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	userID uuid.UUID
	orgID  uuid.UUID
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	InvalidateAchievementCache()
	t.Cleanup(InvalidateAchievementCache)

	db := dbtest.Open(t)
	userID := uuid.New()
	org := orgModel.OrganizationModel{
		OrganizationName:        "Acme",
		OrganizationSlug:        "acme",
		OrganizationTimezone:    "Asia/Jakarta",
		OrganizationOwnerUserID: userID,
	}
	require.NoError(t, db.Create(&org).Error)

	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	f := &fixture{
		db:     db,
		userID: userID,
		orgID:  org.OrganizationID,
		now:    time.Date(2025, 5, 12, 9, 0, 0, 0, loc),
	}
	f.svc = &Service{
		DB:      db,
		Metrics: metrics.MustNew(prometheus.NewRegistry()),
		Now:     func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) award(t *testing.T, ev engine.Event) *AwardResult {
	t.Helper()
	res, err := f.svc.Award(context.Background(), f.userID, f.orgID, ev, nil)
	require.NoError(t, err)
	return res
}

func TestAward_CreatesStatsAndLogsActivity(t *testing.T) {
	f := newFixture(t)

	res := f.award(t, engine.EventCheckInCreated)

	assert.Equal(t, 10, res.PointsAwarded)
	assert.Equal(t, 10, res.Stats.UserStatsTotalPoints)
	assert.Equal(t, 1, res.Stats.UserStatsLevel)
	assert.Equal(t, 1, res.Stats.UserStatsCheckInsCreated)
	assert.Equal(t, 1, res.Stats.UserStatsCurrentStreak)

	var rows int64
	require.NoError(t, f.db.Model(&model.UserStatsModel{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	var logs []model.ActivityLogModel
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, string(engine.EventCheckInCreated), logs[0].ActivityLogEvent)
	assert.Equal(t, 10, logs[0].ActivityLogPoints)
}

func TestAward_StreakAcrossDays(t *testing.T) {
	f := newFixture(t)

	f.award(t, engine.EventCheckInCreated)
	f.now = f.now.Add(3 * time.Hour)
	res := f.award(t, engine.EventCheckInCreated)
	assert.Equal(t, 1, res.Stats.UserStatsCurrentStreak, "same day keeps streak")

	f.now = f.now.AddDate(0, 0, 1)
	res = f.award(t, engine.EventTaskCompleted)
	assert.Equal(t, 2, res.Stats.UserStatsCurrentStreak, "next day increments")

	f.now = f.now.AddDate(0, 0, 2)
	res = f.award(t, engine.EventTaskCompleted)
	assert.Equal(t, 1, res.Stats.UserStatsCurrentStreak, "gap resets")
	assert.Equal(t, 2, res.Stats.UserStatsLongestStreak)
}

func TestAward_LevelUp(t *testing.T) {
	f := newFixture(t)

	res := f.award(t, engine.EventObjectiveCompleted)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Stats.UserStatsLevel)

	res = f.award(t, engine.EventKeyResultCompleted)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 150, res.Stats.UserStatsTotalPoints)
	assert.Equal(t, 3, res.Stats.UserStatsLevel)

	res = f.award(t, engine.EventTaskCompleted)
	assert.False(t, res.LeveledUp)
}

func TestAward_UnlocksAchievementsOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&[]model.AchievementModel{
		{AchievementCode: "first_check_in", AchievementName: "Check-in Pertama", AchievementCategory: engine.CategoryCheckInsCreated, AchievementThreshold: 1, AchievementPointsReward: 95, AchievementIsActive: true},
		{AchievementCode: "level_2", AchievementName: "Naik Level", AchievementCategory: engine.CategoryLevel, AchievementThreshold: 2, AchievementPointsReward: 0, AchievementIsActive: true},
		{AchievementCode: "five_tasks", AchievementName: "Lima Task", AchievementCategory: engine.CategoryTasksCompleted, AchievementThreshold: 5, AchievementPointsReward: 10, AchievementIsActive: true},
	}).Error)

	res := f.award(t, engine.EventCheckInCreated)

	// reward 95 pushes total to 105 → level 2 → level_2 unlocks in the same award
	assert.ElementsMatch(t, []string{"first_check_in", "level_2"}, res.Unlocked)
	assert.Equal(t, 105, res.Stats.UserStatsTotalPoints)
	assert.Equal(t, 2, res.Stats.UserStatsLevel)
	assert.Equal(t, 105, res.PointsAwarded)

	res = f.award(t, engine.EventCheckInCreated)
	assert.Empty(t, res.Unlocked)
	assert.Equal(t, 115, res.Stats.UserStatsTotalPoints)

	var count int64
	require.NoError(t, f.db.Model(&model.UserAchievementModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var stored model.UserStatsModel
	require.NoError(t, f.db.First(&stored).Error)
	assert.Equal(t, 115, stored.UserStatsTotalPoints)
}

func TestAward_RejectsUnknownEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Award(context.Background(), f.userID, f.orgID, "bogus", nil)
	require.Error(t, err)

	assert.Nil(t, f.svc.AwardBestEffort(context.Background(), f.userID, f.orgID, "bogus", nil))
}

func TestAward_StatsArePerOrganization(t *testing.T) {
	f := newFixture(t)
	other := orgModel.OrganizationModel{
		OrganizationName:        "Other",
		OrganizationSlug:        "other",
		OrganizationOwnerUserID: f.userID,
	}
	require.NoError(t, f.db.Create(&other).Error)

	f.award(t, engine.EventCheckInCreated)
	res, err := f.svc.Award(context.Background(), f.userID, other.OrganizationID, engine.EventTaskCompleted, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.UserStatsTotalPoints)
	assert.Equal(t, 0, res.Stats.UserStatsCheckInsCreated)
}

func TestAwardOnce_SkipsRepeatedSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := uuid.New()

	first := f.svc.AwardOnce(ctx, f.userID, f.orgID, engine.EventObjectiveCompleted, src)
	require.NotNil(t, first)
	assert.Equal(t, 100, first.Stats.UserStatsTotalPoints)

	again := f.svc.AwardOnce(ctx, f.userID, f.orgID, engine.EventObjectiveCompleted, src)
	assert.Nil(t, again)

	var st model.UserStatsModel
	require.NoError(t, f.db.Where("user_stats_user_id = ?", f.userID).First(&st).Error)
	assert.Equal(t, 100, st.UserStatsTotalPoints)
	assert.Equal(t, 1, st.UserStatsObjectivesCompleted)
}
