package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	"okrku_backend/internals/databases/dbtest"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
	authModel "okrku_backend/internals/features/users/auth/model"
	"okrku_backend/internals/metrics"
)

func newTestScheduler(t *testing.T, db *gorm.DB, now time.Time) *Scheduler {
	t.Helper()
	s := New(db, Config{
		Enabled:    true,
		TokenTTL:   24 * time.Hour,
		Retention:  30 * 24 * time.Hour,
		JobTimeout: time.Minute,
	}, metrics.MustNew(prometheus.NewRegistry()))
	s.now = func() time.Time { return now }
	return s
}

func TestStartStop_NoLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := New(nil, Config{
		Enabled:               true,
		TokenCleanupSpec:      "10 2 * * *",
		SubscriptionSweepSpec: "5 * * * *",
		KeyResultRefreshSpec:  "",
		ReaperSpec:            "15 3 * * *",
		JobTimeout:            time.Second,
	}, nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(nil, Config{Enabled: true, TokenCleanupSpec: "bukan cron"}, nil)
	assert.Error(t, s.Start())
}

func TestRefreshKeyResults(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	now := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	cy := cycleModel.CycleModel{
		CycleOrganizationID: org.ID,
		CycleName:           "Q1 2026",
		CycleStartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CycleStatus:         cycleModel.CycleStatusActive,
	}
	require.NoError(t, db.Create(&cy).Error)
	obj := objModel.ObjectiveModel{
		ObjectiveOrganizationID: org.ID,
		ObjectiveCycleID:        cy.CycleID,
		ObjectiveTitle:          "Tumbuh",
		ObjectiveOwnerType:      "user",
		ObjectiveOwnerID:        org.OwnerID,
	}
	require.NoError(t, db.Create(&obj).Error)
	kr := krModel.KeyResultModel{
		KeyResultObjectiveID:    obj.ObjectiveID,
		KeyResultOrganizationID: org.ID,
		KeyResultTitle:          "Pelanggan baru",
		KeyResultType:           progress.IncreaseTo,
		KeyResultTargetValue:    100,
		KeyResultCurrentValue:   50,
	}
	require.NoError(t, db.Create(&kr).Error)

	s := newTestScheduler(t, db, now)
	require.NoError(t, s.RefreshKeyResults(context.Background()))

	var got krModel.KeyResultModel
	require.NoError(t, db.First(&got, "key_result_id = ?", kr.KeyResultID).Error)
	assert.InDelta(t, 50, got.KeyResultProgress, 0.001)
	assert.InDelta(t, 50, got.KeyResultTimeProgressPercentage, 0.001)
	assert.Equal(t, string(progress.StatusOnTrack), got.KeyResultStatus)

	var o objModel.ObjectiveModel
	require.NoError(t, db.First(&o, "objective_id = ?", obj.ObjectiveID).Error)
	assert.InDelta(t, 50, o.ObjectiveProgress, 0.001)
}

func TestReapSoftDeleted(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	old := cycleModel.CycleModel{CycleOrganizationID: org.ID, CycleName: "lama",
		CycleStartDate: now.AddDate(-1, 0, 0), CycleEndDate: now.AddDate(0, -9, 0)}
	recent := cycleModel.CycleModel{CycleOrganizationID: org.ID, CycleName: "baru",
		CycleStartDate: now.AddDate(0, -3, 0), CycleEndDate: now}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	require.NoError(t, db.Model(&cycleModel.CycleModel{}).Where("cycle_id = ?", old.CycleID).
		Update("cycle_deleted_at", now.AddDate(0, 0, -60)).Error)
	require.NoError(t, db.Model(&cycleModel.CycleModel{}).Where("cycle_id = ?", recent.CycleID).
		Update("cycle_deleted_at", now.AddDate(0, 0, -2)).Error)

	s := newTestScheduler(t, db, now)

	// dry-run hanya menghitung kandidat di setiap tabel, tanpa menghapus
	s.cfg.ReaperDryRun = true
	candidates, err := s.reap(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, candidates)
	var n int64
	require.NoError(t, db.Unscoped().Model(&cycleModel.CycleModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	s.cfg.ReaperDryRun = false
	deleted, err := s.reap(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	require.NoError(t, db.Unscoped().Model(&cycleModel.CycleModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.ReapSoftDeleted(context.Background()))
}

func TestCleanupTokens(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&authModel.TokenBlacklistModel{Token: "lama", ExpiredAt: now.Add(-72 * time.Hour)}).Error)
	require.NoError(t, db.Create(&authModel.TokenBlacklistModel{Token: "baru", ExpiredAt: now.Add(time.Hour)}).Error)

	s := newTestScheduler(t, db, now)
	require.NoError(t, s.CleanupTokens(context.Background()))

	var tokens []string
	require.NoError(t, db.Unscoped().Model(&authModel.TokenBlacklistModel{}).Pluck("token", &tokens).Error)
	assert.Equal(t, []string{"baru"}, tokens)
}
