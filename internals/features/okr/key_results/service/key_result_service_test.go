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
	gamModel "okrku_backend/internals/features/gamification/model"
	gamService "okrku_backend/internals/features/gamification/service"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	"okrku_backend/internals/features/okr/key_results/dto"
	"okrku_backend/internals/features/okr/key_results/model"
	objDTO "okrku_backend/internals/features/okr/objectives/dto"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	objService "okrku_backend/internals/features/okr/objectives/service"
	"okrku_backend/internals/features/okr/progress"
	"okrku_backend/internals/metrics"
)

type env struct {
	db    *gorm.DB
	org   dbtest.Org
	cycle cycleModel.CycleModel
	gami  *gamService.Service
	now   time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gamService.InvalidateAchievementCache()
	t.Cleanup(gamService.InvalidateAchievementCache)

	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	cy := cycleModel.CycleModel{
		CycleOrganizationID: org.ID,
		CycleName:           "Q1 2026",
		CycleType:           cycleModel.CycleTypeQuarterly,
		CycleStartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CycleStatus:         cycleModel.CycleStatusActive,
	}
	require.NoError(t, db.Create(&cy).Error)

	e := &env{db: db, org: org, cycle: cy}
	// 45 dari 90 hari → time progress 50%
	e.now = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	e.gami = &gamService.Service{
		DB:      db,
		Metrics: metrics.MustNew(prometheus.NewRegistry()),
		Now:     func() time.Time { return e.now },
	}
	return e
}

func (e *env) objective(t *testing.T) *objModel.ObjectiveModel {
	t.Helper()
	o, err := objService.CreateObjective(context.Background(), e.db, e.org.ID, e.org.OwnerID,
		objDTO.CreateObjectiveRequest{CycleID: e.cycle.CycleID, Title: "Tumbuh 2x"}, e.now)
	require.NoError(t, err)
	return o
}

func ptr[T any](v T) *T { return &v }

func (e *env) reloadObjective(t *testing.T, id uuid.UUID) objModel.ObjectiveModel {
	t.Helper()
	var o objModel.ObjectiveModel
	require.NoError(t, e.db.Where("objective_id = ?", id).First(&o).Error)
	return o
}

func (e *env) activityCount(t *testing.T, ev engine.Event) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&gamModel.ActivityLogModel{}).
		Where("activity_log_event = ?", string(ev)).Count(&n).Error)
	return n
}

func TestApplyComputed(t *testing.T) {
	cy := &cycleModel.CycleModel{
		CycleStartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	kr := &model.KeyResultModel{KeyResultType: progress.IncreaseTo, KeyResultTargetValue: 100, KeyResultCurrentValue: 40}
	assert.False(t, ApplyComputed(kr, cy, now))
	assert.Equal(t, 40.0, kr.KeyResultProgress)
	assert.Equal(t, 50.0, kr.KeyResultTimeProgressPercentage)
	assert.Equal(t, string(progress.StatusAtRisk), kr.KeyResultStatus)

	kr.KeyResultCurrentValue = 120
	assert.True(t, ApplyComputed(kr, cy, now))
	assert.Equal(t, 100.0, kr.KeyResultProgress)
	require.NotNil(t, kr.KeyResultCompletedAt)

	// sudah completed → bukan "baru" lagi
	assert.False(t, ApplyComputed(kr, cy, now))

	kr.KeyResultCurrentValue = 10
	assert.False(t, ApplyComputed(kr, cy, now))
	assert.Nil(t, kr.KeyResultCompletedAt)
	assert.Equal(t, string(progress.StatusBehind), kr.KeyResultStatus)

	// tanpa cycle: time progress 0
	noCycle := &model.KeyResultModel{KeyResultType: progress.AchieveOrNot, KeyResultTargetValue: 1}
	ApplyComputed(noCycle, nil, now)
	assert.Equal(t, string(progress.StatusNotStarted), noCycle.KeyResultStatus)
}

func TestKeyResultLifecycle_RecomputesObjectiveAndAwards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.objective(t)
	assert.Equal(t, objModel.ObjectiveStatusNotStarted, o.ObjectiveStatus)

	kr1, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "Revenue", Type: "increase_to", TargetValue: 100, CurrentValue: ptr(60.0),
	}, e.now, e.gami)
	require.NoError(t, err)
	assert.Equal(t, 60.0, kr1.KeyResultProgress)
	assert.Equal(t, string(progress.StatusOnTrack), kr1.KeyResultStatus)

	got := e.reloadObjective(t, o.ObjectiveID)
	assert.Equal(t, 60.0, got.ObjectiveProgress)
	assert.Equal(t, objModel.ObjectiveStatusOnTrack, got.ObjectiveStatus)

	kr2, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "Churn", Type: "decrease_to", BaseValue: ptr(200.0), TargetValue: 100,
	}, e.now, e.gami)
	require.NoError(t, err)
	assert.Equal(t, 200.0, kr2.KeyResultCurrentValue, "current default = base")
	assert.Equal(t, 0.0, kr2.KeyResultProgress)

	got = e.reloadObjective(t, o.ObjectiveID)
	assert.Equal(t, 30.0, got.ObjectiveProgress)
	assert.Equal(t, objModel.ObjectiveStatusBehind, got.ObjectiveStatus)

	_, err = UpdateKeyResult(ctx, e.db, e.org.ID, kr2.KeyResultID, e.org.OwnerID,
		dto.UpdateKeyResultRequest{CurrentValue: ptr(100.0)}, e.now, e.gami)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.activityCount(t, engine.EventKeyResultCompleted))

	_, err = UpdateKeyResult(ctx, e.db, e.org.ID, kr1.KeyResultID, e.org.OwnerID,
		dto.UpdateKeyResultRequest{CurrentValue: ptr(100.0)}, e.now, e.gami)
	require.NoError(t, err)

	got = e.reloadObjective(t, o.ObjectiveID)
	assert.Equal(t, 100.0, got.ObjectiveProgress)
	assert.Equal(t, objModel.ObjectiveStatusCompleted, got.ObjectiveStatus)
	require.NotNil(t, got.ObjectiveCompletedAt)
	assert.Equal(t, int64(1), e.activityCount(t, engine.EventObjectiveCompleted))

	// turun lalu selesai lagi: poin tidak diberikan dua kali
	_, err = UpdateKeyResult(ctx, e.db, e.org.ID, kr1.KeyResultID, e.org.OwnerID,
		dto.UpdateKeyResultRequest{CurrentValue: ptr(90.0)}, e.now, e.gami)
	require.NoError(t, err)
	got = e.reloadObjective(t, o.ObjectiveID)
	assert.Equal(t, objModel.ObjectiveStatusOnTrack, got.ObjectiveStatus)
	assert.Nil(t, got.ObjectiveCompletedAt)

	_, err = UpdateKeyResult(ctx, e.db, e.org.ID, kr1.KeyResultID, e.org.OwnerID,
		dto.UpdateKeyResultRequest{CurrentValue: ptr(100.0)}, e.now, e.gami)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.activityCount(t, engine.EventObjectiveCompleted))
	assert.Equal(t, int64(2), e.activityCount(t, engine.EventKeyResultCompleted))

	var st gamModel.UserStatsModel
	require.NoError(t, e.db.Where("user_stats_user_id = ?", e.org.OwnerID).First(&st).Error)
	assert.Equal(t, 200, st.UserStatsTotalPoints) // 50 + 50 + 100
}

func TestUpdateKeyResult_TypeChangeRecomputes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.objective(t)

	kr, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "Error rate", Type: "increase_to", TargetValue: 5, CurrentValue: ptr(3.0),
	}, e.now, nil)
	require.NoError(t, err)
	assert.Equal(t, 60.0, kr.KeyResultProgress)

	kr, err = UpdateKeyResult(ctx, e.db, e.org.ID, kr.KeyResultID, e.org.OwnerID,
		dto.UpdateKeyResultRequest{Type: ptr("should_stay_below")}, e.now, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, kr.KeyResultProgress)

	var stored model.KeyResultModel
	require.NoError(t, e.db.Where("key_result_id = ?", kr.KeyResultID).First(&stored).Error)
	assert.Equal(t, progress.ShouldStayBelow, stored.KeyResultType)
	assert.Equal(t, 100.0, stored.KeyResultProgress)
	assert.Equal(t, string(progress.StatusCompleted), stored.KeyResultStatus)
}

func TestCreateKeyResult_Guards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.objective(t)

	_, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "X", TargetValue: 1, AssigneeID: ptr(uuid.New()),
	}, e.now, nil)
	require.Error(t, err)

	other := dbtest.SeedOrg(t, e.db, "other")
	_, err = CreateKeyResult(ctx, e.db, other.ID, o.ObjectiveID, other.OwnerID, dto.CreateKeyResultRequest{
		Title: "Bocor", TargetValue: 1,
	}, e.now, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteKeyResult_RecomputesObjective(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.objective(t)

	keep, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "A", TargetValue: 100, CurrentValue: ptr(80.0),
	}, e.now, nil)
	require.NoError(t, err)
	drop, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "B", TargetValue: 100,
	}, e.now, nil)
	require.NoError(t, err)
	assert.Equal(t, 40.0, e.reloadObjective(t, o.ObjectiveID).ObjectiveProgress)

	require.NoError(t, DeleteKeyResult(ctx, e.db, e.org.ID, drop.KeyResultID, e.now))
	assert.Equal(t, 80.0, e.reloadObjective(t, o.ObjectiveID).ObjectiveProgress)

	rows, err := ListByObjective(ctx, e.db, e.org.ID, o.ObjectiveID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, keep.KeyResultID, rows[0].KeyResultID)
}

func TestRefreshCycle_UpdatesTimeProgress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.objective(t)
	kr, err := CreateKeyResult(ctx, e.db, e.org.ID, o.ObjectiveID, e.org.OwnerID, dto.CreateKeyResultRequest{
		Title: "A", TargetValue: 100, CurrentValue: ptr(10.0),
	}, e.now, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, kr.KeyResultTimeProgressPercentage)

	later := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	n, err := RefreshCycle(ctx, e.db, e.cycle.CycleID, later)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored model.KeyResultModel
	require.NoError(t, e.db.Where("key_result_id = ?", kr.KeyResultID).First(&stored).Error)
	assert.Equal(t, 100.0, stored.KeyResultTimeProgressPercentage)
	assert.Equal(t, string(progress.StatusBehind), stored.KeyResultStatus)
}
