package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckInModel append-only: tidak ada UpdatedAt / DeletedAt.
type CheckInModel struct {
	CheckInID             uuid.UUID `gorm:"type:uuid;primaryKey;column:check_in_id" json:"check_in_id"`
	CheckInKeyResultID    uuid.UUID `gorm:"type:uuid;not null;index:idx_check_in_kr_created,priority:1;column:check_in_key_result_id" json:"check_in_key_result_id"`
	CheckInOrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:check_in_organization_id" json:"check_in_organization_id"`

	CheckInValue         float64   `gorm:"not null;column:check_in_value" json:"check_in_value"`
	CheckInPreviousValue float64   `gorm:"not null;default:0;column:check_in_previous_value" json:"check_in_previous_value"`
	CheckInProgress      float64   `gorm:"not null;default:0;column:check_in_progress" json:"check_in_progress"`
	CheckInConfidence    int       `gorm:"not null;default:5;column:check_in_confidence" json:"check_in_confidence"`
	CheckInNotes         *string   `gorm:"type:text;column:check_in_notes" json:"check_in_notes,omitempty"`
	CheckInCreatedBy     uuid.UUID `gorm:"type:uuid;not null;column:check_in_created_by" json:"check_in_created_by"`

	CheckInCreatedAt time.Time `gorm:"autoCreateTime;index:idx_check_in_kr_created,priority:2;column:check_in_created_at" json:"check_in_created_at"`
}

func (CheckInModel) TableName() string { return "check_ins" }

func (m *CheckInModel) BeforeCreate(tx *gorm.DB) error {
	if m.CheckInID == uuid.Nil {
		m.CheckInID = uuid.New()
	}
	if m.CheckInConfidence < 1 || m.CheckInConfidence > 10 {
		return errors.New("check_in_confidence harus 1..10")
	}
	if m.CheckInNotes != nil {
		n := strings.TrimSpace(*m.CheckInNotes)
		if n == "" {
			m.CheckInNotes = nil
		} else {
			m.CheckInNotes = &n
		}
	}
	return nil
}

func (m *CheckInModel) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("check-in tidak bisa diubah")
}
