package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CycleTypeMonthly   = "monthly"
	CycleTypeQuarterly = "quarterly"
	CycleTypeAnnual    = "annual"
	CycleTypeCustom    = "custom"

	CycleStatusPlanning  = "planning"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
)

type CycleModel struct {
	CycleID             uuid.UUID `gorm:"type:uuid;primaryKey;column:cycle_id" json:"cycle_id"`
	CycleOrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:cycle_organization_id" json:"cycle_organization_id"`

	// Contoh: "Q1 2025"
	CycleName        string    `gorm:"type:varchar(100);not null;column:cycle_name" json:"cycle_name"`
	CycleType        string    `gorm:"type:varchar(20);not null;default:'quarterly';column:cycle_type" json:"cycle_type"`
	CycleStartDate   time.Time `gorm:"not null;column:cycle_start_date" json:"cycle_start_date"`
	CycleEndDate     time.Time `gorm:"not null;column:cycle_end_date" json:"cycle_end_date"`
	CycleStatus      string    `gorm:"type:varchar(20);not null;default:'planning';column:cycle_status" json:"cycle_status"`
	CycleDescription *string   `gorm:"type:text;column:cycle_description" json:"cycle_description,omitempty"`

	CycleCreatedAt time.Time      `gorm:"autoCreateTime;column:cycle_created_at" json:"cycle_created_at"`
	CycleUpdatedAt time.Time      `gorm:"autoUpdateTime;column:cycle_updated_at" json:"cycle_updated_at"`
	CycleDeletedAt gorm.DeletedAt `gorm:"index;column:cycle_deleted_at" json:"cycle_deleted_at,omitempty"`
}

func (CycleModel) TableName() string { return "cycles" }

func (m *CycleModel) BeforeCreate(tx *gorm.DB) error {
	if m.CycleID == uuid.Nil {
		m.CycleID = uuid.New()
	}
	return m.validate()
}

func (m *CycleModel) BeforeUpdate(tx *gorm.DB) error {
	if m.CycleID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *CycleModel) validate() error {
	m.CycleName = strings.TrimSpace(m.CycleName)
	if m.CycleEndDate.Before(m.CycleStartDate) {
		return errors.New("cycle_end_date harus >= cycle_start_date")
	}
	return nil
}

// Window: tanggal akhir bersifat inklusif, jadi batas atas = awal hari berikutnya.
func (m CycleModel) Window() (time.Time, time.Time) {
	return m.CycleStartDate, m.CycleEndDate.AddDate(0, 0, 1)
}

// Contains true kalau t berada di jendela siklus.
func (m CycleModel) Contains(t time.Time) bool {
	start, end := m.Window()
	return !t.Before(start) && t.Before(end)
}

func IsValidType(t string) bool {
	switch t {
	case CycleTypeMonthly, CycleTypeQuarterly, CycleTypeAnnual, CycleTypeCustom:
		return true
	}
	return false
}
