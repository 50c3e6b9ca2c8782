package constants

import "fmt"

// Role anggota di dalam organisasi
const (
	RoleOwner         = "owner"
	RoleAdministrator = "administrator"
	RoleMember        = "member"
	RoleViewer        = "viewer"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess  = "❌ Hanya owner atau administrator yang boleh mengakses fitur %s."
	ErrOnlyMembersCanAccess = "❌ Viewer tidak boleh mengakses fitur %s."
	ErrOnlyOwnersCanAccess  = "❌ Hanya owner yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorMember(feature string) string {
	return fmt.Sprintf(ErrOnlyMembersCanAccess, feature)
}

func RoleErrorOwner(feature string) string {
	return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleOwner,
		RoleAdministrator,
		RoleMember,
		RoleViewer,
	}

	// boleh menulis data OKR
	MemberAndAbove = []string{
		RoleOwner,
		RoleAdministrator,
		RoleMember,
	}

	AdminAndAbove = []string{
		RoleOwner,
		RoleAdministrator,
	}

	OwnerOnly = []string{
		RoleOwner,
	}
)

// IsValidRole cek role organisasi yang dikenal.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
