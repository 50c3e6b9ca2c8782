package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"okrku_backend/internals/features/initiatives/tasks/model"
)

const DateLayout = "2006-01-02"

type CreateTaskRequest struct {
	Title       string     `json:"task_title"       validate:"required,min=2,max=255"`
	Description *string    `json:"task_description"`
	Status      string     `json:"task_status"      validate:"omitempty,oneof=not_started in_progress completed cancelled"`
	Priority    string     `json:"task_priority"    validate:"omitempty,oneof=low medium high critical"`
	AssigneeID  *uuid.UUID `json:"task_assignee_id"`
	DueDate     *string    `json:"task_due_date"    validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateTaskRequest) ToModel(orgID, initiativeID, actorID uuid.UUID) (*model.TaskModel, error) {
	due, err := parseDate(r.DueDate)
	if err != nil {
		return nil, err
	}
	m := &model.TaskModel{
		TaskOrganizationID: orgID,
		TaskInitiativeID:   initiativeID,
		TaskTitle:          strings.TrimSpace(r.Title),
		TaskDescription:    trimPtr(r.Description),
		TaskStatus:         r.Status,
		TaskPriority:       r.Priority,
		TaskAssigneeID:     nilIfZero(r.AssigneeID),
		TaskDueDate:        due,
		TaskCreatedBy:      &actorID,
	}
	return m, nil
}

type UpdateTaskRequest struct {
	Title       *string    `json:"task_title"       validate:"omitempty,min=2,max=255"`
	Description *string    `json:"task_description"`
	Status      *string    `json:"task_status"      validate:"omitempty,oneof=not_started in_progress completed cancelled"`
	Priority    *string    `json:"task_priority"    validate:"omitempty,oneof=low medium high critical"`
	AssigneeID  *uuid.UUID `json:"task_assignee_id"` // uuid.Nil = lepas
	DueDate     *string    `json:"task_due_date"    validate:"omitempty,datetime=2006-01-02"`
	ClearDue    bool       `json:"clear_due_date"`
}

// Apply tidak menyentuh status; status ditangani service supaya completed_at konsisten.
func (r UpdateTaskRequest) Apply(m *model.TaskModel) error {
	if r.Title != nil {
		m.TaskTitle = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m.TaskDescription = trimPtr(r.Description)
	}
	if r.Priority != nil {
		m.TaskPriority = *r.Priority
	}
	if r.AssigneeID != nil {
		m.TaskAssigneeID = nilIfZero(r.AssigneeID)
	}
	if r.ClearDue {
		m.TaskDueDate = nil
	} else if r.DueDate != nil {
		due, err := parseDate(r.DueDate)
		if err != nil {
			return err
		}
		m.TaskDueDate = due
	}
	return nil
}

type UpdateTaskStatusRequest struct {
	Status string `json:"task_status" validate:"required,oneof=not_started in_progress completed cancelled"`
}

type TaskFilter struct {
	InitiativeID *uuid.UUID
	AssigneeID   *uuid.UUID
	Status       string
	OverdueOnly  bool
	Q            string
}

type TaskResponse struct {
	ID           uuid.UUID  `json:"task_id"`
	InitiativeID uuid.UUID  `json:"task_initiative_id"`
	Title        string     `json:"task_title"`
	Description  *string    `json:"task_description,omitempty"`
	Status       string     `json:"task_status"`
	Priority     string     `json:"task_priority"`
	AssigneeID   *uuid.UUID `json:"task_assignee_id,omitempty"`
	DueDate      *string    `json:"task_due_date,omitempty"`
	CompletedAt  *time.Time `json:"task_completed_at,omitempty"`
	IsOverdue    bool       `json:"is_overdue"`
	CreatedAt    time.Time  `json:"task_created_at"`
	UpdatedAt    time.Time  `json:"task_updated_at"`
}

func FromModel(m *model.TaskModel, now time.Time) TaskResponse {
	var due *string
	if m.TaskDueDate != nil {
		s := m.TaskDueDate.Format(DateLayout)
		due = &s
	}
	return TaskResponse{
		ID:           m.TaskID,
		InitiativeID: m.TaskInitiativeID,
		Title:        m.TaskTitle,
		Description:  m.TaskDescription,
		Status:       m.TaskStatus,
		Priority:     m.TaskPriority,
		AssigneeID:   m.TaskAssigneeID,
		DueDate:      due,
		CompletedAt:  m.TaskCompletedAt,
		IsOverdue:    m.IsOverdue(now),
		CreatedAt:    m.TaskCreatedAt,
		UpdatedAt:    m.TaskUpdatedAt,
	}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(*s), time.UTC)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "task_due_date harus format YYYY-MM-DD")
	}
	return &t, nil
}

func nilIfZero(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
