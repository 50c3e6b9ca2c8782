package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"

	TaskPriorityLow      = "low"
	TaskPriorityMedium   = "medium"
	TaskPriorityHigh     = "high"
	TaskPriorityCritical = "critical"
)

var TaskStatuses = []string{TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled}

type TaskModel struct {
	TaskID             uuid.UUID `gorm:"type:uuid;primaryKey;column:task_id" json:"task_id"`
	TaskOrganizationID uuid.UUID `gorm:"type:uuid;not null;index;column:task_organization_id" json:"task_organization_id"`
	TaskInitiativeID   uuid.UUID `gorm:"type:uuid;not null;index;column:task_initiative_id" json:"task_initiative_id"`

	TaskTitle       string  `gorm:"type:varchar(255);not null;column:task_title" json:"task_title"`
	TaskDescription *string `gorm:"type:text;column:task_description" json:"task_description,omitempty"`
	TaskStatus      string  `gorm:"type:varchar(20);not null;default:'not_started';index;column:task_status" json:"task_status"`
	TaskPriority    string  `gorm:"type:varchar(20);not null;default:'medium';column:task_priority" json:"task_priority"`

	TaskAssigneeID  *uuid.UUID `gorm:"type:uuid;index;column:task_assignee_id" json:"task_assignee_id,omitempty"`
	TaskDueDate     *time.Time `gorm:"column:task_due_date" json:"task_due_date,omitempty"`
	TaskCompletedAt *time.Time `gorm:"column:task_completed_at" json:"task_completed_at,omitempty"`
	TaskCreatedBy   *uuid.UUID `gorm:"type:uuid;column:task_created_by" json:"task_created_by,omitempty"`

	TaskCreatedAt time.Time      `gorm:"autoCreateTime;column:task_created_at" json:"task_created_at"`
	TaskUpdatedAt time.Time      `gorm:"autoUpdateTime;column:task_updated_at" json:"task_updated_at"`
	TaskDeletedAt gorm.DeletedAt `gorm:"index;column:task_deleted_at" json:"task_deleted_at,omitempty"`
}

func (TaskModel) TableName() string { return "tasks" }

func (m *TaskModel) BeforeCreate(tx *gorm.DB) error {
	if m.TaskID == uuid.Nil {
		m.TaskID = uuid.New()
	}
	if m.TaskStatus == "" {
		m.TaskStatus = TaskStatusNotStarted
	}
	if m.TaskPriority == "" {
		m.TaskPriority = TaskPriorityMedium
	}
	return m.validate()
}

func (m *TaskModel) BeforeUpdate(tx *gorm.DB) error {
	if m.TaskID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *TaskModel) validate() error {
	m.TaskTitle = strings.TrimSpace(m.TaskTitle)
	if m.TaskTitle == "" {
		return errors.New("task_title wajib diisi")
	}
	return nil
}

// IsOverdue: due date lewat dan belum selesai/dibatalkan.
func (m TaskModel) IsOverdue(now time.Time) bool {
	if m.TaskDueDate == nil {
		return false
	}
	if m.TaskStatus == TaskStatusCompleted || m.TaskStatus == TaskStatusCancelled {
		return false
	}
	return m.TaskDueDate.Before(now)
}
