package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/databases/dbtest"
	iniModel "okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
)

func seedObjective(t *testing.T, db *gorm.DB, orgID, cycleID, ownerID uuid.UUID, title, status string, prog float64) objModel.ObjectiveModel {
	t.Helper()
	o := objModel.ObjectiveModel{
		ObjectiveOrganizationID: orgID,
		ObjectiveCycleID:        cycleID,
		ObjectiveTitle:          title,
		ObjectiveOwnerType:      "user",
		ObjectiveOwnerID:        ownerID,
		ObjectiveStatus:         status,
		ObjectiveProgress:       prog,
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func seedKR(t *testing.T, db *gorm.DB, o objModel.ObjectiveModel, title string, status progress.Status, prog float64) {
	t.Helper()
	require.NoError(t, db.Create(&krModel.KeyResultModel{
		KeyResultObjectiveID:    o.ObjectiveID,
		KeyResultOrganizationID: o.ObjectiveOrganizationID,
		KeyResultTitle:          title,
		KeyResultType:           progress.IncreaseTo,
		KeyResultTargetValue:    100,
		KeyResultStatus:         string(status),
		KeyResultProgress:       prog,
	}).Error)
}

func TestSummary(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	ctx := context.Background()
	now := time.Date(2026, 2, 15, 4, 0, 0, 0, time.UTC)

	cy := cycleModel.CycleModel{
		CycleOrganizationID: org.ID,
		CycleName:           "Q1 2026",
		CycleType:           cycleModel.CycleTypeQuarterly,
		CycleStartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CycleStatus:         cycleModel.CycleStatusActive,
	}
	require.NoError(t, db.Create(&cy).Error)

	a := seedObjective(t, db, org.ID, cy.CycleID, org.OwnerID, "Tumbuh", objModel.ObjectiveStatusOnTrack, 60)
	b := seedObjective(t, db, org.ID, cy.CycleID, org.OwnerID, "Efisien", objModel.ObjectiveStatusBehind, 20)
	seedObjective(t, db, org.ID, cy.CycleID, org.OwnerID, "Batal", objModel.ObjectiveStatusCancelled, 90)

	seedKR(t, db, a, "Revenue", progress.StatusOnTrack, 60)
	seedKR(t, db, b, "Biaya", progress.StatusBehind, 10)
	seedKR(t, db, b, "Waktu proses", progress.StatusAtRisk, 30)

	ini := iniModel.InitiativeModel{InitiativeOrganizationID: org.ID, InitiativeTitle: "Kampanye"}
	require.NoError(t, db.Create(&ini).Error)
	past := now.Add(-48 * time.Hour)
	require.NoError(t, db.Create(&taskModel.TaskModel{
		TaskOrganizationID: org.ID, TaskInitiativeID: ini.InitiativeID,
		TaskTitle: "Brief", TaskDueDate: &past, TaskAssigneeID: &org.OwnerID,
	}).Error)
	require.NoError(t, db.Create(&taskModel.TaskModel{
		TaskOrganizationID: org.ID, TaskInitiativeID: ini.InitiativeID,
		TaskTitle: "Desain", TaskDueDate: &past,
	}).Error)

	got, err := Summary(ctx, db, org.ID, org.OwnerID, nil, now)
	require.NoError(t, err)

	require.NotNil(t, got.Cycle)
	assert.Equal(t, cy.CycleID, got.Cycle.ID)
	assert.EqualValues(t, 3, got.Objectives.Total)
	assert.EqualValues(t, 1, got.Objectives.ByStatus[objModel.ObjectiveStatusBehind])
	// objective cancelled tidak ikut rata-rata
	assert.InDelta(t, 40, got.Objectives.AverageProgress, 0.001)

	assert.EqualValues(t, 2, got.KeyResultsAtRisk)
	require.Len(t, got.AtRisk, 2)
	assert.Equal(t, "Biaya", got.AtRisk[0].Title)
	assert.Equal(t, "Efisien", got.AtRisk[0].ObjectiveTitle)

	assert.EqualValues(t, 1, got.Initiatives[iniModel.InitiativeStatusDraft])
	assert.EqualValues(t, 0, got.Initiatives[iniModel.InitiativeStatusDone])
	assert.EqualValues(t, 2, got.OverdueTasks)
	assert.EqualValues(t, 1, got.MyOverdueTasks)
	assert.Equal(t, 1, got.Me.Level)
}

func TestSummary_NoActiveCycle(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "kosong")

	got, err := Summary(context.Background(), db, org.ID, org.OwnerID, nil, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, got.Cycle)
	assert.Zero(t, got.Objectives.Total)
	assert.Empty(t, got.AtRisk)

	missing := uuid.New()
	_, err = Summary(context.Background(), db, org.ID, org.OwnerID, &missing, time.Now().UTC())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
