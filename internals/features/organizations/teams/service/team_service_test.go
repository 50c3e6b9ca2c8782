package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/databases/dbtest"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	"okrku_backend/internals/features/organizations/teams/dto"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

func member(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string) uuid.UUID {
	u := userModel.UserModel{UserName: name, Email: name + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&orgModel.OrganizationMemberModel{
		OrganizationMemberOrganizationID: orgID,
		OrganizationMemberUserID:         u.ID,
		OrganizationMemberRole:           constants.RoleMember,
		OrganizationMemberIsActive:       true,
	}).Error)
	return u.ID
}

func TestTeamLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	orgID := uuid.New()
	lead := member(t, db, orgID, "lead")
	dev := member(t, db, orgID, "dev")

	team, err := CreateTeam(ctx, db, orgID, dto.CreateTeamRequest{Name: "Tim Produk", LeadUserID: &lead})
	require.NoError(t, err)
	assert.Equal(t, "tim-produk", team.TeamSlug)

	other, err := CreateTeam(ctx, db, uuid.New(), dto.CreateTeamRequest{Name: "Tim Produk"})
	require.NoError(t, err)
	assert.Equal(t, "tim-produk", other.TeamSlug, "slug unik per organisasi")

	require.NoError(t, AddTeamMember(ctx, db, orgID, team.TeamID, dto.AddTeamMemberRequest{UserID: dev}))
	assert.ErrorIs(t, AddTeamMember(ctx, db, orgID, team.TeamID, dto.AddTeamMemberRequest{UserID: dev}), ErrTeamMemberExists)

	stranger := uuid.New()
	assert.Error(t, AddTeamMember(ctx, db, orgID, team.TeamID, dto.AddTeamMemberRequest{UserID: stranger}))

	members, err := ListTeamMembers(ctx, db, team.TeamID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "lead", members[0].Role)

	rows, total, err := ListTeams(ctx, db, orgID, "", helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 2, rows[0].MemberCount)

	require.NoError(t, RemoveTeamMember(ctx, db, orgID, team.TeamID, lead))
	reloaded, err := FindTeam(ctx, db, orgID, team.TeamID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.TeamLeadUserID)

	require.NoError(t, DeleteTeam(ctx, db, orgID, team.TeamID))
	_, err = FindTeam(ctx, db, orgID, team.TeamID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
