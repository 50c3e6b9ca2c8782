package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/initiatives/initiatives/dto"
	"okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	helper "okrku_backend/internals/helpers"
)

type award struct {
	user   uuid.UUID
	ev     engine.Event
	source uuid.UUID
}

type fakeAwarder struct{ got []award }

func (f *fakeAwarder) AwardBestEffort(_ context.Context, userID, _ uuid.UUID, ev engine.Event, src *uuid.UUID) *gamService.AwardResult {
	a := award{user: userID, ev: ev}
	if src != nil {
		a.source = *src
	}
	f.got = append(f.got, a)
	return &gamService.AwardResult{}
}

func (f *fakeAwarder) AwardOnce(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, src uuid.UUID) *gamService.AwardResult {
	return f.AwardBestEffort(ctx, userID, orgID, ev, &src)
}

func ptr[T any](v T) *T { return &v }

func TestCreateInitiative_DraftAndAward(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	gami := &fakeAwarder{}
	ctx := context.Background()

	m, err := CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{
		Title:   "  Webinar bulanan ",
		PICID:   &org.OwnerID,
		DueDate: ptr("2026-03-31"),
	}, gami)
	require.NoError(t, err)
	assert.Equal(t, "Webinar bulanan", m.InitiativeTitle)
	assert.Equal(t, model.InitiativeStatusDraft, m.InitiativeStatus)
	require.Len(t, gami.got, 1)
	assert.Equal(t, award{user: org.OwnerID, ev: engine.EventInitiativeCreated, source: m.InitiativeID}, gami.got[0])
}

func TestCreateInitiative_Guards(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	outsider := dbtest.SeedUser(t, db, "outsider")
	ctx := context.Background()

	_, err := CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{
		Title: "PIC luar", PICID: &outsider.ID,
	}, nil)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)

	_, err = CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{
		Title: "KR tidak ada", KeyResultID: ptr(uuid.New()),
	}, nil)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)

	_, err = CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{
		Title: "Tanggal terbalik", StartDate: ptr("2026-03-01"), DueDate: ptr("2026-02-01"),
	}, nil)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestSuccessMetric_DrivesStatus(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	ctx := context.Background()

	ini, err := CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{Title: "Program referral"}, nil)
	require.NoError(t, err)

	metric, status, err := CreateMetric(ctx, db, org.ID, ini.InitiativeID, dto.CreateSuccessMetricRequest{
		Name: "Referral masuk", Target: "50",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SuccessMetricDefaultAchievement, metric.SuccessMetricAchievement)
	assert.Equal(t, model.InitiativeStatusDraft, status)

	metric, status, err = UpdateMetric(ctx, db, org.ID, ini.InitiativeID, metric.SuccessMetricID, dto.UpdateSuccessMetricRequest{
		Achievement: ptr("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12", metric.SuccessMetricAchievement)
	assert.Equal(t, model.InitiativeStatusInProgress, status)

	// hapus metric tidak membuat status mundur
	require.NoError(t, DeleteMetric(ctx, db, org.ID, ini.InitiativeID, metric.SuccessMetricID))
	got, err := FindInitiative(ctx, db, org.ID, ini.InitiativeID)
	require.NoError(t, err)
	assert.Equal(t, model.InitiativeStatusInProgress, got.InitiativeStatus)
}

func TestClose(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	ini, err := CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{Title: "Audit proses"}, nil)
	require.NoError(t, err)

	done, err := Close(ctx, db, org.ID, ini.InitiativeID, model.InitiativeStatusDone, ptr(" target tercapai "), now)
	require.NoError(t, err)
	assert.Equal(t, model.InitiativeStatusDone, done.InitiativeStatus)
	require.NotNil(t, done.InitiativeCompletedAt)
	assert.True(t, now.Equal(*done.InitiativeCompletedAt))
	assert.Equal(t, "target tercapai", *done.InitiativeClosureNotes)

	_, err = Close(ctx, db, org.ID, ini.InitiativeID, model.InitiativeStatusCancelled, nil, now)
	assert.ErrorIs(t, err, ErrInitiativeClosed)

	// task baru di initiative yang sudah selesai tidak mengubah status
	require.NoError(t, db.Create(&taskModel.TaskModel{
		TaskOrganizationID: org.ID, TaskInitiativeID: ini.InitiativeID,
		TaskTitle: "Tambahan", TaskStatus: taskModel.TaskStatusInProgress,
	}).Error)
	assert.Equal(t, model.InitiativeStatusDone, SyncBestEffort(ctx, db, ini.InitiativeID))
}

func TestListInitiatives_TaskCounts(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	member := dbtest.SeedUser(t, db, "budi")
	dbtest.AddMember(t, db, org.ID, member.ID, constants.RoleMember)
	ctx := context.Background()

	a, err := CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{Title: "Kampanye A", PICID: &member.ID, PriorityScore: ptr(80.0)}, nil)
	require.NoError(t, err)
	_, err = CreateInitiative(ctx, db, org.ID, org.OwnerID, dto.CreateInitiativeRequest{Title: "Kampanye B", PriorityScore: ptr(20.0)}, nil)
	require.NoError(t, err)

	for _, st := range []string{taskModel.TaskStatusCompleted, taskModel.TaskStatusNotStarted, taskModel.TaskStatusCompleted, taskModel.TaskStatusInProgress} {
		require.NoError(t, db.Create(&taskModel.TaskModel{
			TaskOrganizationID: org.ID, TaskInitiativeID: a.InitiativeID, TaskTitle: "t", TaskStatus: st,
		}).Error)
	}

	rows, total, err := ListInitiatives(ctx, db, org.ID, dto.InitiativeFilter{}, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kampanye A", rows[0].Title)
	assert.EqualValues(t, 4, rows[0].TaskTotal)
	assert.EqualValues(t, 2, rows[0].TaskCompleted)
	assert.Equal(t, 50.0, rows[0].TaskProgress)
	assert.Zero(t, rows[1].TaskTotal)

	rows, total, err = ListInitiatives(ctx, db, org.ID, dto.InitiativeFilter{PICID: &member.ID}, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.InitiativeID, rows[0].ID)

	require.NoError(t, DeleteInitiative(ctx, db, org.ID, a.InitiativeID))
	var left int64
	require.NoError(t, db.Model(&taskModel.TaskModel{}).Where("task_initiative_id = ?", a.InitiativeID).Count(&left).Error)
	assert.Zero(t, left)
}
