package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InitiativeStatusDraft      = "draft"
	InitiativeStatusInProgress = "sedang_berjalan"
	InitiativeStatusDone       = "selesai"
	InitiativeStatusCancelled  = "dibatalkan"
)

var InitiativeStatuses = []string{
	InitiativeStatusDraft,
	InitiativeStatusInProgress,
	InitiativeStatusDone,
	InitiativeStatusCancelled,
}

// IsTerminal: status akhir tidak pernah berubah otomatis.
func IsTerminal(status string) bool {
	return status == InitiativeStatusDone || status == InitiativeStatusCancelled
}

type InitiativeModel struct {
	InitiativeID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:initiative_id" json:"initiative_id"`
	InitiativeOrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:initiative_organization_id" json:"initiative_organization_id"`
	InitiativeKeyResultID    *uuid.UUID `gorm:"type:uuid;index;column:initiative_key_result_id" json:"initiative_key_result_id,omitempty"`
	InitiativeObjectiveID    *uuid.UUID `gorm:"type:uuid;index;column:initiative_objective_id" json:"initiative_objective_id,omitempty"`

	InitiativeTitle       string  `gorm:"type:varchar(255);not null;column:initiative_title" json:"initiative_title"`
	InitiativeDescription *string `gorm:"type:text;column:initiative_description" json:"initiative_description,omitempty"`
	InitiativeStatus      string  `gorm:"type:varchar(20);not null;default:'draft';index;column:initiative_status" json:"initiative_status"`

	InitiativeBudget        *float64   `gorm:"column:initiative_budget" json:"initiative_budget,omitempty"`
	InitiativeBudgetUsed    *float64   `gorm:"column:initiative_budget_used" json:"initiative_budget_used,omitempty"`
	InitiativePriorityScore *float64   `gorm:"column:initiative_priority_score" json:"initiative_priority_score,omitempty"`
	InitiativePICID         *uuid.UUID `gorm:"type:uuid;index;column:initiative_pic_id" json:"initiative_pic_id,omitempty"`
	InitiativeStartDate     *time.Time `gorm:"column:initiative_start_date" json:"initiative_start_date,omitempty"`
	InitiativeDueDate       *time.Time `gorm:"column:initiative_due_date" json:"initiative_due_date,omitempty"`
	InitiativeCompletedAt   *time.Time `gorm:"column:initiative_completed_at" json:"initiative_completed_at,omitempty"`
	InitiativeClosureNotes  *string    `gorm:"type:text;column:initiative_closure_notes" json:"initiative_closure_notes,omitempty"`
	InitiativeCreatedBy     *uuid.UUID `gorm:"type:uuid;column:initiative_created_by" json:"initiative_created_by,omitempty"`

	InitiativeCreatedAt time.Time      `gorm:"autoCreateTime;column:initiative_created_at" json:"initiative_created_at"`
	InitiativeUpdatedAt time.Time      `gorm:"autoUpdateTime;column:initiative_updated_at" json:"initiative_updated_at"`
	InitiativeDeletedAt gorm.DeletedAt `gorm:"index;column:initiative_deleted_at" json:"initiative_deleted_at,omitempty"`
}

func (InitiativeModel) TableName() string { return "initiatives" }

func (m *InitiativeModel) BeforeCreate(tx *gorm.DB) error {
	if m.InitiativeID == uuid.Nil {
		m.InitiativeID = uuid.New()
	}
	if strings.TrimSpace(m.InitiativeStatus) == "" {
		m.InitiativeStatus = InitiativeStatusDraft
	}
	return m.validate()
}

func (m *InitiativeModel) BeforeUpdate(tx *gorm.DB) error {
	if m.InitiativeID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *InitiativeModel) validate() error {
	m.InitiativeTitle = strings.TrimSpace(m.InitiativeTitle)
	if m.InitiativeTitle == "" {
		return errors.New("initiative_title wajib diisi")
	}
	if m.InitiativeStartDate != nil && m.InitiativeDueDate != nil && m.InitiativeDueDate.Before(*m.InitiativeStartDate) {
		return errors.New("initiative_due_date harus >= initiative_start_date")
	}
	return nil
}

const SuccessMetricDefaultAchievement = "0"

type SuccessMetricModel struct {
	SuccessMetricID           uuid.UUID `gorm:"type:uuid;primaryKey;column:success_metric_id" json:"success_metric_id"`
	SuccessMetricInitiativeID uuid.UUID `gorm:"type:uuid;not null;index;column:success_metric_initiative_id" json:"success_metric_initiative_id"`
	SuccessMetricName         string    `gorm:"type:varchar(255);not null;column:success_metric_name" json:"success_metric_name"`
	SuccessMetricTarget       string    `gorm:"type:varchar(100);not null;column:success_metric_target" json:"success_metric_target"`
	// teks bebas ("12", "80%", "selesai"); default "0"
	SuccessMetricAchievement string `gorm:"type:varchar(100);not null;default:'0';column:success_metric_achievement" json:"success_metric_achievement"`

	SuccessMetricCreatedAt time.Time `gorm:"autoCreateTime;column:success_metric_created_at" json:"success_metric_created_at"`
	SuccessMetricUpdatedAt time.Time `gorm:"autoUpdateTime;column:success_metric_updated_at" json:"success_metric_updated_at"`
}

func (SuccessMetricModel) TableName() string { return "success_metrics" }

func (m *SuccessMetricModel) BeforeCreate(tx *gorm.DB) error {
	if m.SuccessMetricID == uuid.Nil {
		m.SuccessMetricID = uuid.New()
	}
	if strings.TrimSpace(m.SuccessMetricAchievement) == "" {
		m.SuccessMetricAchievement = SuccessMetricDefaultAchievement
	}
	return nil
}
