package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/databases/dbtest"
	initiativeModel "okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
)

func TestNextStatus(t *testing.T) {
	const (
		draft   = initiativeModel.InitiativeStatusDraft
		running = initiativeModel.InitiativeStatusInProgress
		done    = initiativeModel.InitiativeStatusDone
		cancel  = initiativeModel.InitiativeStatusCancelled
	)

	tests := []struct {
		name    string
		current string
		tasks   []TaskSignal
		metrics []MetricSignal
		want    string
	}{
		{"no tasks no metrics stays draft", draft, nil, nil, draft},
		{"empty status defaults to draft", "", nil, nil, draft},
		{"not started tasks stay draft", draft, []TaskSignal{{"not_started"}, {"cancelled"}}, nil, draft},
		{"in progress task moves", draft, []TaskSignal{{"not_started"}, {"in_progress"}}, nil, running},
		{"completed task moves", draft, []TaskSignal{{"completed"}}, nil, running},
		{"default metric stays draft", draft, nil, []MetricSignal{{"0"}, {""}, {"  "}, {"0.0"}, {"0%"}}, draft},
		{"numeric metric moves", draft, nil, []MetricSignal{{"12"}}, running},
		{"text metric moves", draft, nil, []MetricSignal{{"sebagian"}}, running},
		{"already running stays", running, nil, nil, running},
		{"done is terminal", done, []TaskSignal{{"in_progress"}}, nil, done},
		{"cancelled is terminal", cancel, nil, []MetricSignal{{"5"}}, cancel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.tasks, tt.metrics))
		})
	}
}

func seedInitiative(t *testing.T, db *gorm.DB, status string) initiativeModel.InitiativeModel {
	t.Helper()
	ini := initiativeModel.InitiativeModel{
		InitiativeOrganizationID: uuid.New(),
		InitiativeTitle:          "Kampanye onboarding",
		InitiativeStatus:         status,
	}
	require.NoError(t, db.Create(&ini).Error)
	return ini
}

func addTask(t *testing.T, db *gorm.DB, ini initiativeModel.InitiativeModel, status string) taskModel.TaskModel {
	t.Helper()
	task := taskModel.TaskModel{
		TaskOrganizationID: ini.InitiativeOrganizationID,
		TaskInitiativeID:   ini.InitiativeID,
		TaskTitle:          "Siapkan materi",
		TaskStatus:         status,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	t.Helper()
	var ini initiativeModel.InitiativeModel
	require.NoError(t, db.First(&ini, "initiative_id = ?", id).Error)
	return ini.InitiativeStatus
}

func TestSyncInitiativeStatus_NoActivityStaysDraft(t *testing.T) {
	db := dbtest.Open(t)
	ini := seedInitiative(t, db, initiativeModel.InitiativeStatusDraft)

	changed, status, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, initiativeModel.InitiativeStatusDraft, status)
}

func TestSyncInitiativeStatus_TaskInProgressIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	ini := seedInitiative(t, db, initiativeModel.InitiativeStatusDraft)
	addTask(t, db, ini, taskModel.TaskStatusInProgress)

	changed, status, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, initiativeModel.InitiativeStatusInProgress, status)
	assert.Equal(t, initiativeModel.InitiativeStatusInProgress, reload(t, db, ini.InitiativeID))

	changed, status, err = SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, initiativeModel.InitiativeStatusInProgress, status)
}

func TestSyncInitiativeStatus_MetricAchievement(t *testing.T) {
	db := dbtest.Open(t)
	ini := seedInitiative(t, db, initiativeModel.InitiativeStatusDraft)
	metric := initiativeModel.SuccessMetricModel{
		SuccessMetricInitiativeID: ini.InitiativeID,
		SuccessMetricName:         "Peserta",
		SuccessMetricTarget:       "100",
	}
	require.NoError(t, db.Create(&metric).Error)

	changed, _, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.False(t, changed, "default achievement does not count")

	require.NoError(t, db.Model(&metric).Update("success_metric_achievement", "40").Error)
	changed, status, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, initiativeModel.InitiativeStatusInProgress, status)
}

func TestSyncInitiativeStatus_TerminalUntouched(t *testing.T) {
	db := dbtest.Open(t)
	ini := seedInitiative(t, db, initiativeModel.InitiativeStatusCancelled)
	addTask(t, db, ini, taskModel.TaskStatusCompleted)

	changed, status, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, initiativeModel.InitiativeStatusCancelled, status)
}

func TestSyncInitiativeStatus_IgnoresDeletedTasks(t *testing.T) {
	db := dbtest.Open(t)
	ini := seedInitiative(t, db, initiativeModel.InitiativeStatusDraft)
	task := addTask(t, db, ini, taskModel.TaskStatusInProgress)
	require.NoError(t, db.Delete(&task).Error)

	changed, _, err := SyncInitiativeStatus(context.Background(), db, ini.InitiativeID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSyncInitiativeStatus_NotFound(t *testing.T) {
	db := dbtest.Open(t)
	_, _, err := SyncInitiativeStatus(context.Background(), db, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
