package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OwnerTypeUser = "user"
	OwnerTypeTeam = "team"
)

// Status objective mengikuti progress.Status + draft/cancelled yang di-set manual.
const (
	ObjectiveStatusDraft      = "draft"
	ObjectiveStatusNotStarted = "not_started"
	ObjectiveStatusOnTrack    = "on_track"
	ObjectiveStatusAtRisk     = "at_risk"
	ObjectiveStatusBehind     = "behind"
	ObjectiveStatusCompleted  = "completed"
	ObjectiveStatusCancelled  = "cancelled"
)

type ObjectiveModel struct {
	ObjectiveID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:objective_id" json:"objective_id"`
	ObjectiveOrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:objective_organization_id" json:"objective_organization_id"`
	ObjectiveCycleID        uuid.UUID  `gorm:"type:uuid;not null;index;column:objective_cycle_id" json:"objective_cycle_id"`
	ObjectiveParentID       *uuid.UUID `gorm:"type:uuid;index;column:objective_parent_id" json:"objective_parent_id,omitempty"`

	ObjectiveTitle       string  `gorm:"type:varchar(255);not null;column:objective_title" json:"objective_title"`
	ObjectiveDescription *string `gorm:"type:text;column:objective_description" json:"objective_description,omitempty"`

	// owner: user atau team
	ObjectiveOwnerType string    `gorm:"type:varchar(10);not null;default:'user';column:objective_owner_type" json:"objective_owner_type"`
	ObjectiveOwnerID   uuid.UUID `gorm:"type:uuid;not null;index;column:objective_owner_id" json:"objective_owner_id"`

	ObjectiveStatus string `gorm:"type:varchar(20);not null;default:'not_started';column:objective_status" json:"objective_status"`
	// cache; sumber kebenaran = rata-rata progress KR
	ObjectiveProgress    float64                     `gorm:"not null;default:0;column:objective_progress" json:"objective_progress"`
	ObjectiveTags        datatypes.JSONSlice[string] `gorm:"column:objective_tags" json:"objective_tags,omitempty"`
	ObjectiveCompletedAt *time.Time                  `gorm:"column:objective_completed_at" json:"objective_completed_at,omitempty"`
	ObjectiveCreatedBy   *uuid.UUID                  `gorm:"type:uuid;column:objective_created_by" json:"objective_created_by,omitempty"`

	ObjectiveCreatedAt time.Time      `gorm:"autoCreateTime;column:objective_created_at" json:"objective_created_at"`
	ObjectiveUpdatedAt time.Time      `gorm:"autoUpdateTime;column:objective_updated_at" json:"objective_updated_at"`
	ObjectiveDeletedAt gorm.DeletedAt `gorm:"index;column:objective_deleted_at" json:"objective_deleted_at,omitempty"`
}

func (ObjectiveModel) TableName() string { return "objectives" }

func (m *ObjectiveModel) BeforeCreate(tx *gorm.DB) error {
	if m.ObjectiveID == uuid.Nil {
		m.ObjectiveID = uuid.New()
	}
	return m.validate()
}

// nil ID = update parsial via Model(&ObjectiveModel{}).
func (m *ObjectiveModel) BeforeUpdate(tx *gorm.DB) error {
	if m.ObjectiveID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *ObjectiveModel) validate() error {
	m.ObjectiveTitle = strings.TrimSpace(m.ObjectiveTitle)
	if m.ObjectiveTitle == "" {
		return errors.New("objective_title wajib diisi")
	}
	if m.ObjectiveParentID != nil && *m.ObjectiveParentID == m.ObjectiveID {
		return errors.New("objective tidak boleh menjadi parent dirinya sendiri")
	}
	return nil
}

// IsManualStatus: status yang tidak ditimpa oleh recompute.
func IsManualStatus(s string) bool {
	return s == ObjectiveStatusDraft || s == ObjectiveStatusCancelled
}
