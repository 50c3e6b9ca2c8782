package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	"okrku_backend/internals/databases/dbtest"
	billingModel "okrku_backend/internals/features/billing/model"
	"okrku_backend/internals/features/organizations/organizations/dto"
	"okrku_backend/internals/features/organizations/organizations/model"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

func mkUser(t *testing.T, db *gorm.DB, name string) userModel.UserModel {
	u := userModel.UserModel{UserName: name, Email: name + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedFreePlan(t *testing.T, db *gorm.DB, maxUsers int) {
	require.NoError(t, db.Create(&billingModel.SubscriptionPlanModel{
		SubscriptionPlanCode:     "free",
		SubscriptionPlanName:     "Free",
		SubscriptionPlanMaxUsers: &maxUsers,
		SubscriptionPlanIsActive: true,
	}).Error)
}

func TestCreateOrganization(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	seedFreePlan(t, db, 3)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	org, err := CreateOrganization(ctx, db, owner.ID, dto.CreateOrganizationRequest{Name: "PT Maju Jaya"}, now)
	require.NoError(t, err)
	assert.Equal(t, "pt-maju-jaya", org.OrganizationSlug)
	assert.Equal(t, "Asia/Jakarta", org.OrganizationTimezone)

	again, err := CreateOrganization(ctx, db, owner.ID, dto.CreateOrganizationRequest{Name: "PT  Maju  Jaya"}, now)
	require.NoError(t, err)
	assert.Equal(t, "pt-maju-jaya-2", again.OrganizationSlug)

	var m model.OrganizationMemberModel
	require.NoError(t, db.Where("organization_member_organization_id = ?", org.OrganizationID).First(&m).Error)
	assert.Equal(t, constants.RoleOwner, m.OrganizationMemberRole)
	assert.Equal(t, owner.ID, m.OrganizationMemberUserID)

	var sub billingModel.OrganizationSubscriptionModel
	require.NoError(t, db.Where("org_subscription_organization_id = ?", org.OrganizationID).First(&sub).Error)
	assert.Equal(t, billingModel.SubscriptionStatusTrial, sub.OrgSubscriptionStatus)
	assert.True(t, sub.IsUsable(now.Add(24*time.Hour)))
}

func TestMembershipLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	ani := mkUser(t, db, "ani")
	budi := mkUser(t, db, "budi")
	mkUser(t, db, "cici")
	seedFreePlan(t, db, 3)
	now := time.Now()

	org, err := CreateOrganization(ctx, db, owner.ID, dto.CreateOrganizationRequest{Name: "Acme"}, now)
	require.NoError(t, err)
	orgID := org.OrganizationID

	m, err := AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "ANI@example.com", Role: constants.RoleMember}, now)
	require.NoError(t, err)
	assert.Equal(t, ani.ID, m.OrganizationMemberUserID)

	_, err = AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "ani@example.com", Role: constants.RoleMember}, now)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "budi@example.com", Role: constants.RoleViewer}, now)
	require.NoError(t, err)

	// kuota 3 sudah penuh (owner, ani, budi)
	_, err = AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "cici@example.com", Role: constants.RoleMember}, now)
	assert.ErrorIs(t, err, ErrSeatLimit)

	_, err = AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "nobody@example.com", Role: constants.RoleMember}, now)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, RemoveMember(ctx, db, orgID, m.OrganizationMemberID))
	ok, err := IsActiveMember(ctx, db, orgID, ani.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// slot kosong → cici bisa masuk
	_, err = AddMember(ctx, db, orgID, owner.ID, dto.AddMemberRequest{Email: "cici@example.com", Role: constants.RoleMember}, now)
	require.NoError(t, err)

	var ownerRow model.OrganizationMemberModel
	require.NoError(t, db.Where("organization_member_user_id = ?", owner.ID).First(&ownerRow).Error)
	assert.ErrorIs(t, RemoveMember(ctx, db, orgID, ownerRow.OrganizationMemberID), ErrOwnerImmutable)

	admin := constants.RoleAdministrator
	var budiRow model.OrganizationMemberModel
	require.NoError(t, db.Where("organization_member_user_id = ?", budi.ID).First(&budiRow).Error)
	updated, err := UpdateMember(ctx, db, orgID, budiRow.OrganizationMemberID, dto.UpdateMemberRequest{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdministrator, updated.OrganizationMemberRole)

	rows, total, err := ListMembers(ctx, db, orgID, MemberFilter{OnlyActive: true}, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 3)

	assert.NoError(t, EnsureMember(ctx, db, orgID, nil, "assignee"))
	stranger := uuid.New()
	assert.Error(t, EnsureMember(ctx, db, orgID, &stranger, "assignee"))
}
