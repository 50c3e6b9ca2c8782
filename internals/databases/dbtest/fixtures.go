package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"okrku_backend/internals/constants"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	userModel "okrku_backend/internals/features/users/users/model"
)

// Org: organisasi + owner untuk test service.
type Org struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// SeedUser membuat user aktif dengan password dummy.
func SeedUser(t testing.TB, db *gorm.DB, name string) userModel.UserModel {
	t.Helper()
	u := userModel.UserModel{UserName: name, Email: name + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedOrg membuat organisasi dengan owner sebagai anggota aktif.
func SeedOrg(t testing.TB, db *gorm.DB, slug string) Org {
	t.Helper()
	owner := SeedUser(t, db, slug+"owner")
	org := orgModel.OrganizationModel{
		OrganizationName:        slug,
		OrganizationSlug:        slug,
		OrganizationTimezone:    "Asia/Jakarta",
		OrganizationOwnerUserID: owner.ID,
		OrganizationIsActive:    true,
	}
	require.NoError(t, db.Create(&org).Error)
	AddMember(t, db, org.OrganizationID, owner.ID, constants.RoleOwner)
	return Org{ID: org.OrganizationID, OwnerID: owner.ID}
}

func AddMember(t testing.TB, db *gorm.DB, orgID, userID uuid.UUID, role string) {
	t.Helper()
	require.NoError(t, db.Create(&orgModel.OrganizationMemberModel{
		OrganizationMemberOrganizationID: orgID,
		OrganizationMemberUserID:         userID,
		OrganizationMemberRole:           role,
		OrganizationMemberIsActive:       true,
		OrganizationMemberJoinedAt:       time.Now().UTC(),
	}).Error)
}
