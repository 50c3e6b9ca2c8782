// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"strings"
	"time"
	_ "time/tzdata"

	"okrku_backend/internals/configs"
)

// Nama locals yang di-set middleware OrgScope
const LocOrgTimezone = "org_timezone" // string, misal "Asia/Jakarta"

// LoadLocation: nama timezone → *time.Location, fallback DefaultTimezone lalu UTC.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(configs.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
