package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrku_backend/internals/databases/dbtest"
	gamService "okrku_backend/internals/features/gamification/service"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/seeds"
)

func TestRecompute_RestoresCaches(t *testing.T) {
	gamService.InvalidateAchievementCache()
	t.Cleanup(gamService.InvalidateAchievementCache)

	db := dbtest.Open(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 2, 0, 0, 0, time.UTC)
	require.NoError(t, seeds.RunAllSeeds(ctx, db, seeds.Options{Demo: true, DemoMembers: 2, Now: now}))

	// rusak cache secara sengaja
	require.NoError(t, db.Model(&krModel.KeyResultModel{}).Where("1 = 1").
		Updates(map[string]any{"key_result_progress": 0, "key_result_time_progress_percentage": 0}).Error)
	require.NoError(t, db.Model(&objModel.ObjectiveModel{}).Where("1 = 1").
		Update("objective_progress", 0).Error)

	// objective dihitung dari nilai mentah KR, bukan dari cache progress KR
	n, err := Recompute(ctx, db, nil, true, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	var objs []objModel.ObjectiveModel
	require.NoError(t, db.Find(&objs).Error)
	for _, o := range objs {
		assert.Greater(t, o.ObjectiveProgress, 0.0)
	}
	var krs []krModel.KeyResultModel
	require.NoError(t, db.Find(&krs).Error)
	for _, kr := range krs {
		assert.Zero(t, kr.KeyResultProgress)
	}

	n, err = Recompute(ctx, db, nil, false, now)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, db.Find(&krs).Error)
	for _, kr := range krs {
		assert.Greater(t, kr.KeyResultProgress, 0.0)
		assert.Greater(t, kr.KeyResultTimeProgressPercentage, 0.0)
	}
	require.NoError(t, db.Find(&objs).Error)
	for _, o := range objs {
		assert.Greater(t, o.ObjectiveProgress, 0.0)
	}

	other := uuid.New()
	n, err = Recompute(ctx, db, &other, false, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
