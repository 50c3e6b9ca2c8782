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
	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	"okrku_backend/internals/features/okr/objectives/dto"
	"okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
	teamModel "okrku_backend/internals/features/organizations/teams/model"
	helper "okrku_backend/internals/helpers"
)

type awardCall struct {
	UserID uuid.UUID
	Event  engine.Event
	Source uuid.UUID
}

type fakeAwarder struct{ calls []awardCall }

func (f *fakeAwarder) AwardBestEffort(_ context.Context, userID, _ uuid.UUID, ev engine.Event, src *uuid.UUID) *gamService.AwardResult {
	c := awardCall{UserID: userID, Event: ev}
	if src != nil {
		c.Source = *src
	}
	f.calls = append(f.calls, c)
	return &gamService.AwardResult{}
}

func (f *fakeAwarder) AwardOnce(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, src uuid.UUID) *gamService.AwardResult {
	return f.AwardBestEffort(ctx, userID, orgID, ev, &src)
}

var now = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*gorm.DB, dbtest.Org, cycleModel.CycleModel) {
	t.Helper()
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	cy := cycleModel.CycleModel{
		CycleOrganizationID: org.ID,
		CycleName:           "Q1",
		CycleStartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CycleStatus:         cycleModel.CycleStatusActive,
	}
	require.NoError(t, db.Create(&cy).Error)
	return db, org, cy
}

func create(t *testing.T, db *gorm.DB, org dbtest.Org, cycleID uuid.UUID, title string, parent *uuid.UUID) *model.ObjectiveModel {
	t.Helper()
	o, err := CreateObjective(context.Background(), db, org.ID, org.OwnerID, dto.CreateObjectiveRequest{
		CycleID: cycleID, Title: title, ParentID: parent, Tags: []string{" Growth ", "growth", "Q1"},
	}, now)
	require.NoError(t, err)
	return o
}

func addKR(t *testing.T, db *gorm.DB, o *model.ObjectiveModel, current float64) {
	t.Helper()
	require.NoError(t, db.Create(&krModel.KeyResultModel{
		KeyResultObjectiveID:    o.ObjectiveID,
		KeyResultOrganizationID: o.ObjectiveOrganizationID,
		KeyResultTitle:          "kr",
		KeyResultType:           progress.IncreaseTo,
		KeyResultTargetValue:    100,
		KeyResultCurrentValue:   current,
	}).Error)
}

func TestCreateObjective_Defaults(t *testing.T) {
	db, org, cy := setup(t)
	o := create(t, db, org, cy.CycleID, "Jadi market leader", nil)

	assert.Equal(t, model.OwnerTypeUser, o.ObjectiveOwnerType)
	assert.Equal(t, org.OwnerID, o.ObjectiveOwnerID)
	assert.Equal(t, model.ObjectiveStatusNotStarted, o.ObjectiveStatus)
	assert.Equal(t, []string{"growth", "q1"}, []string(o.ObjectiveTags))

	_, err := CreateObjective(context.Background(), db, org.ID, org.OwnerID, dto.CreateObjectiveRequest{
		CycleID: uuid.New(), Title: "Tanpa cycle",
	}, now)
	assert.ErrorIs(t, err, ErrCycleNotFound)

	_, err = CreateObjective(context.Background(), db, org.ID, org.OwnerID, dto.CreateObjectiveRequest{
		CycleID: cy.CycleID, Title: "Tim hantu", OwnerType: model.OwnerTypeTeam, OwnerID: ptr(uuid.New()),
	}, now)
	assert.ErrorIs(t, err, ErrOwnerTeam)
}

func ptr[T any](v T) *T { return &v }

func TestParentGuard(t *testing.T) {
	db, org, cy := setup(t)
	ctx := context.Background()

	root := create(t, db, org, cy.CycleID, "Root", nil)
	child := create(t, db, org, cy.CycleID, "Child", &root.ObjectiveID)
	grand := create(t, db, org, cy.CycleID, "Grandchild", &child.ObjectiveID)

	_, err := UpdateObjective(ctx, db, org.ID, root.ObjectiveID, dto.UpdateObjectiveRequest{ParentID: &root.ObjectiveID}, now, nil)
	assert.ErrorIs(t, err, ErrParentSelf)

	_, err = UpdateObjective(ctx, db, org.ID, root.ObjectiveID, dto.UpdateObjectiveRequest{ParentID: &grand.ObjectiveID}, now, nil)
	assert.ErrorIs(t, err, ErrParentCycleLoop)

	other := cycleModel.CycleModel{
		CycleOrganizationID: org.ID, CycleName: "Q2",
		CycleStartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CycleEndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&other).Error)
	_, err = CreateObjective(ctx, db, org.ID, org.OwnerID, dto.CreateObjectiveRequest{
		CycleID: other.CycleID, Title: "Beda cycle", ParentID: &root.ObjectiveID,
	}, now)
	assert.ErrorIs(t, err, ErrParentCycle)

	// lepas parent lalu pasang ke root: valid
	got, err := UpdateObjective(ctx, db, org.ID, grand.ObjectiveID, dto.UpdateObjectiveRequest{ParentID: ptr(uuid.Nil)}, now, nil)
	require.NoError(t, err)
	assert.Nil(t, got.ObjectiveParentID)
	got, err = UpdateObjective(ctx, db, org.ID, grand.ObjectiveID, dto.UpdateObjectiveRequest{ParentID: &root.ObjectiveID}, now, nil)
	require.NoError(t, err)
	require.NotNil(t, got.ObjectiveParentID)
	assert.Equal(t, root.ObjectiveID, *got.ObjectiveParentID)
}

func TestTree(t *testing.T) {
	db, org, cy := setup(t)
	root := create(t, db, org, cy.CycleID, "Root", nil)
	a := create(t, db, org, cy.CycleID, "A", &root.ObjectiveID)
	create(t, db, org, cy.CycleID, "A1", &a.ObjectiveID)
	create(t, db, org, cy.CycleID, "Lone", nil)

	tree, err := Tree(context.Background(), db, org.ID, cy.CycleID)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	byTitle := map[string]*dto.ObjectiveNode{}
	for _, n := range tree {
		byTitle[n.Title] = n
	}
	require.Contains(t, byTitle, "Root")
	require.Len(t, byTitle["Root"].Children, 1)
	assert.Equal(t, "A", byTitle["Root"].Children[0].Title)
	require.Len(t, byTitle["Root"].Children[0].Children, 1)
	assert.Equal(t, "A1", byTitle["Root"].Children[0].Children[0].Title)
	assert.Empty(t, byTitle["Lone"].Children)
}

func TestRecompute_ManualStatusKept(t *testing.T) {
	db, org, cy := setup(t)
	ctx := context.Background()
	o := create(t, db, org, cy.CycleID, "Draft dulu", nil)
	addKR(t, db, o, 100)

	_, err := UpdateObjective(ctx, db, org.ID, o.ObjectiveID, dto.UpdateObjectiveRequest{Status: ptr(model.ObjectiveStatusCancelled)}, now, nil)
	require.NoError(t, err)

	fa := &fakeAwarder{}
	got, err := RecomputeObjective(ctx, db, o.ObjectiveID, now, fa)
	require.NoError(t, err)
	assert.Equal(t, model.ObjectiveStatusCancelled, got.ObjectiveStatus)
	assert.Equal(t, 100.0, got.ObjectiveProgress)
	assert.Empty(t, fa.calls)

	// kembali otomatis
	got, err = UpdateObjective(ctx, db, org.ID, o.ObjectiveID, dto.UpdateObjectiveRequest{Status: ptr(model.ObjectiveStatusNotStarted)}, now, fa)
	require.NoError(t, err)
	assert.Equal(t, model.ObjectiveStatusCompleted, got.ObjectiveStatus)
	require.Len(t, fa.calls, 1)
	assert.Equal(t, engine.EventObjectiveCompleted, fa.calls[0].Event)
	assert.Equal(t, org.OwnerID, fa.calls[0].UserID)
}

func TestRecompute_TeamObjectiveAwardsLead(t *testing.T) {
	db, org, cy := setup(t)
	ctx := context.Background()
	lead := dbtest.SeedUser(t, db, "lead")
	team := teamModel.TeamModel{TeamOrganizationID: org.ID, TeamName: "Sales", TeamSlug: "sales", TeamLeadUserID: &lead.ID}
	require.NoError(t, db.Create(&team).Error)

	o, err := CreateObjective(ctx, db, org.ID, org.OwnerID, dto.CreateObjectiveRequest{
		CycleID: cy.CycleID, Title: "Target tim", OwnerType: model.OwnerTypeTeam, OwnerID: &team.TeamID,
	}, now)
	require.NoError(t, err)
	addKR(t, db, o, 100)

	fa := &fakeAwarder{}
	_, err = RecomputeObjective(ctx, db, o.ObjectiveID, now, fa)
	require.NoError(t, err)
	require.Len(t, fa.calls, 1)
	assert.Equal(t, lead.ID, fa.calls[0].UserID)
	assert.Equal(t, o.ObjectiveID, fa.calls[0].Source)
}

func TestListObjectives_Filters(t *testing.T) {
	db, org, cy := setup(t)
	ctx := context.Background()
	root := create(t, db, org, cy.CycleID, "Naikkan NPS", nil)
	create(t, db, org, cy.CycleID, "Turunkan churn", &root.ObjectiveID)
	addKR(t, db, root, 10)

	p := helper.Paging{Page: 1, PerPage: 20, Limit: 20}

	rows, total, err := ListObjectives(ctx, db, org.ID, dto.ObjectiveFilter{RootOnly: true}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].KeyResultCount)

	rows, _, err = ListObjectives(ctx, db, org.ID, dto.ObjectiveFilter{ParentID: &root.ObjectiveID}, p)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Turunkan churn", rows[0].Title)

	_, total, err = ListObjectives(ctx, db, org.ID, dto.ObjectiveFilter{Q: "nps", Tag: "GROWTH"}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = ListObjectives(ctx, db, org.ID, dto.ObjectiveFilter{Tag: "marketing"}, p)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteObjective_DetachesChildren(t *testing.T) {
	db, org, cy := setup(t)
	ctx := context.Background()
	root := create(t, db, org, cy.CycleID, "Root", nil)
	child := create(t, db, org, cy.CycleID, "Child", &root.ObjectiveID)
	addKR(t, db, root, 50)

	require.NoError(t, DeleteObjective(ctx, db, org.ID, root.ObjectiveID))

	got, err := FindObjective(ctx, db, org.ID, child.ObjectiveID)
	require.NoError(t, err)
	assert.Nil(t, got.ObjectiveParentID)

	var n int64
	require.NoError(t, db.Model(&krModel.KeyResultModel{}).Where("key_result_objective_id = ?", root.ObjectiveID).Count(&n).Error)
	assert.Zero(t, n)
}
