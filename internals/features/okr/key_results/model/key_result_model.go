package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/okr/progress"
)

const (
	UnitNumber     = "number"
	UnitPercentage = "percentage"
	UnitCurrency   = "currency"
)

type KeyResultModel struct {
	KeyResultID             uuid.UUID `gorm:"type:uuid;primaryKey;column:key_result_id" json:"key_result_id"`
	KeyResultObjectiveID    uuid.UUID `gorm:"type:uuid;not null;index;column:key_result_objective_id" json:"key_result_objective_id"`
	KeyResultOrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:key_result_organization_id" json:"key_result_organization_id"`

	KeyResultTitle       string  `gorm:"type:varchar(255);not null;column:key_result_title" json:"key_result_title"`
	KeyResultDescription *string `gorm:"type:text;column:key_result_description" json:"key_result_description,omitempty"`

	KeyResultType         progress.KeyResultType `gorm:"type:varchar(30);not null;default:'increase_to';column:key_result_type" json:"key_result_type"`
	KeyResultBaseValue    *float64               `gorm:"column:key_result_base_value" json:"key_result_base_value,omitempty"`
	KeyResultTargetValue  float64                `gorm:"not null;column:key_result_target_value" json:"key_result_target_value"`
	KeyResultCurrentValue float64                `gorm:"not null;default:0;column:key_result_current_value" json:"key_result_current_value"`
	KeyResultUnit         string                 `gorm:"type:varchar(20);not null;default:'number';column:key_result_unit" json:"key_result_unit"`

	KeyResultAssigneeID *uuid.UUID `gorm:"type:uuid;index;column:key_result_assignee_id" json:"key_result_assignee_id,omitempty"`
	KeyResultConfidence *int       `gorm:"column:key_result_confidence" json:"key_result_confidence,omitempty"`

	// cache (dihitung ulang di setiap write path)
	KeyResultProgress               float64    `gorm:"not null;default:0;column:key_result_progress" json:"key_result_progress"`
	KeyResultStatus                 string     `gorm:"type:varchar(20);not null;default:'not_started';column:key_result_status" json:"key_result_status"`
	KeyResultTimeProgressPercentage float64    `gorm:"not null;default:0;column:key_result_time_progress_percentage" json:"key_result_time_progress_percentage"`
	KeyResultLastCheckInAt          *time.Time `gorm:"column:key_result_last_check_in_at" json:"key_result_last_check_in_at,omitempty"`
	KeyResultCompletedAt            *time.Time `gorm:"column:key_result_completed_at" json:"key_result_completed_at,omitempty"`

	KeyResultCreatedAt time.Time      `gorm:"autoCreateTime;column:key_result_created_at" json:"key_result_created_at"`
	KeyResultUpdatedAt time.Time      `gorm:"autoUpdateTime;column:key_result_updated_at" json:"key_result_updated_at"`
	KeyResultDeletedAt gorm.DeletedAt `gorm:"index;column:key_result_deleted_at" json:"key_result_deleted_at,omitempty"`
}

func (KeyResultModel) TableName() string { return "key_results" }

func (m *KeyResultModel) BeforeCreate(tx *gorm.DB) error {
	if m.KeyResultID == uuid.Nil {
		m.KeyResultID = uuid.New()
	}
	return m.validate()
}

func (m *KeyResultModel) BeforeUpdate(tx *gorm.DB) error {
	if m.KeyResultID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *KeyResultModel) validate() error {
	m.KeyResultTitle = strings.TrimSpace(m.KeyResultTitle)
	if m.KeyResultTitle == "" {
		return errors.New("key_result_title wajib diisi")
	}
	if !m.KeyResultType.Valid() {
		return errors.New("key_result_type tidak dikenal")
	}
	if m.KeyResultConfidence != nil && (*m.KeyResultConfidence < 1 || *m.KeyResultConfidence > 10) {
		return errors.New("key_result_confidence harus 1..10")
	}
	return nil
}

// Progress dihitung dari nilai mentah, bukan dari kolom cache.
func (m KeyResultModel) Progress() float64 {
	return progress.Calculate(m.KeyResultCurrentValue, m.KeyResultTargetValue, m.KeyResultBaseValue, m.KeyResultType)
}
