package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"okrku_backend/internals/features/initiatives/initiatives/model"
)

const DateLayout = "2006-01-02"

func parseDatePtr(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(*s), time.UTC)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, field+" harus format YYYY-MM-DD")
	}
	return &t, nil
}

type CreateInitiativeRequest struct {
	KeyResultID   *uuid.UUID `json:"initiative_key_result_id"`
	ObjectiveID   *uuid.UUID `json:"initiative_objective_id"`
	Title         string     `json:"initiative_title"          validate:"required,min=3,max=255"`
	Description   *string    `json:"initiative_description"`
	Budget        *float64   `json:"initiative_budget"         validate:"omitempty,gte=0"`
	PriorityScore *float64   `json:"initiative_priority_score" validate:"omitempty,gte=0,lte=100"`
	PICID         *uuid.UUID `json:"initiative_pic_id"`
	StartDate     *string    `json:"initiative_start_date"     validate:"omitempty,datetime=2006-01-02"`
	DueDate       *string    `json:"initiative_due_date"       validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateInitiativeRequest) ToModel(orgID, actorID uuid.UUID) (*model.InitiativeModel, error) {
	start, err := parseDatePtr("initiative_start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDatePtr("initiative_due_date", r.DueDate)
	if err != nil {
		return nil, err
	}
	if start != nil && due != nil && due.Before(*start) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "initiative_due_date harus >= initiative_start_date")
	}
	return &model.InitiativeModel{
		InitiativeOrganizationID: orgID,
		InitiativeKeyResultID:    nilIfZero(r.KeyResultID),
		InitiativeObjectiveID:    nilIfZero(r.ObjectiveID),
		InitiativeTitle:          strings.TrimSpace(r.Title),
		InitiativeDescription:    trimPtr(r.Description),
		InitiativeStatus:         model.InitiativeStatusDraft,
		InitiativeBudget:         r.Budget,
		InitiativePriorityScore:  r.PriorityScore,
		InitiativePICID:          nilIfZero(r.PICID),
		InitiativeStartDate:      start,
		InitiativeDueDate:        due,
		InitiativeCreatedBy:      &actorID,
	}, nil
}

type UpdateInitiativeRequest struct {
	KeyResultID   *uuid.UUID `json:"initiative_key_result_id"` // uuid.Nil = lepas
	ObjectiveID   *uuid.UUID `json:"initiative_objective_id"`  // uuid.Nil = lepas
	Title         *string    `json:"initiative_title"          validate:"omitempty,min=3,max=255"`
	Description   *string    `json:"initiative_description"`
	Budget        *float64   `json:"initiative_budget"         validate:"omitempty,gte=0"`
	BudgetUsed    *float64   `json:"initiative_budget_used"    validate:"omitempty,gte=0"`
	PriorityScore *float64   `json:"initiative_priority_score" validate:"omitempty,gte=0,lte=100"`
	PICID         *uuid.UUID `json:"initiative_pic_id"` // uuid.Nil = lepas
	StartDate     *string    `json:"initiative_start_date"     validate:"omitempty,datetime=2006-01-02"`
	DueDate       *string    `json:"initiative_due_date"       validate:"omitempty,datetime=2006-01-02"`
}

// Apply mengubah model in-place; status tidak bisa diubah lewat sini.
func (r UpdateInitiativeRequest) Apply(m *model.InitiativeModel) error {
	if r.KeyResultID != nil {
		m.InitiativeKeyResultID = nilIfZero(r.KeyResultID)
	}
	if r.ObjectiveID != nil {
		m.InitiativeObjectiveID = nilIfZero(r.ObjectiveID)
	}
	if r.Title != nil {
		m.InitiativeTitle = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m.InitiativeDescription = trimPtr(r.Description)
	}
	if r.Budget != nil {
		m.InitiativeBudget = r.Budget
	}
	if r.BudgetUsed != nil {
		m.InitiativeBudgetUsed = r.BudgetUsed
	}
	if r.PriorityScore != nil {
		m.InitiativePriorityScore = r.PriorityScore
	}
	if r.PICID != nil {
		m.InitiativePICID = nilIfZero(r.PICID)
	}
	if r.StartDate != nil {
		t, err := parseDatePtr("initiative_start_date", r.StartDate)
		if err != nil {
			return err
		}
		m.InitiativeStartDate = t
	}
	if r.DueDate != nil {
		t, err := parseDatePtr("initiative_due_date", r.DueDate)
		if err != nil {
			return err
		}
		m.InitiativeDueDate = t
	}
	if m.InitiativeStartDate != nil && m.InitiativeDueDate != nil && m.InitiativeDueDate.Before(*m.InitiativeStartDate) {
		return fiber.NewError(fiber.StatusBadRequest, "initiative_due_date harus >= initiative_start_date")
	}
	return nil
}

type CloseInitiativeRequest struct {
	Notes *string `json:"initiative_closure_notes" validate:"omitempty,max=2000"`
}

type InitiativeFilter struct {
	Status      string
	KeyResultID *uuid.UUID
	ObjectiveID *uuid.UUID
	PICID       *uuid.UUID
	Q           string
}

type InitiativeResponse struct {
	ID             uuid.UUID               `json:"initiative_id"`
	KeyResultID    *uuid.UUID              `json:"initiative_key_result_id,omitempty"`
	ObjectiveID    *uuid.UUID              `json:"initiative_objective_id,omitempty"`
	Title          string                  `json:"initiative_title"`
	Description    *string                 `json:"initiative_description,omitempty"`
	Status         string                  `json:"initiative_status"`
	Budget         *float64                `json:"initiative_budget,omitempty"`
	BudgetUsed     *float64                `json:"initiative_budget_used,omitempty"`
	PriorityScore  *float64                `json:"initiative_priority_score,omitempty"`
	PICID          *uuid.UUID              `json:"initiative_pic_id,omitempty"`
	StartDate      *string                 `json:"initiative_start_date,omitempty"`
	DueDate        *string                 `json:"initiative_due_date,omitempty"`
	CompletedAt    *time.Time              `json:"initiative_completed_at,omitempty"`
	ClosureNotes   *string                 `json:"initiative_closure_notes,omitempty"`
	TaskTotal      int64                   `json:"task_total"`
	TaskCompleted  int64                   `json:"task_completed"`
	TaskProgress   float64                 `json:"task_progress"`
	SuccessMetrics []SuccessMetricResponse `json:"success_metrics,omitempty"`
	CreatedAt      time.Time               `json:"initiative_created_at"`
	UpdatedAt      time.Time               `json:"initiative_updated_at"`
}

func FromModel(m *model.InitiativeModel) InitiativeResponse {
	return InitiativeResponse{
		ID:            m.InitiativeID,
		KeyResultID:   m.InitiativeKeyResultID,
		ObjectiveID:   m.InitiativeObjectiveID,
		Title:         m.InitiativeTitle,
		Description:   m.InitiativeDescription,
		Status:        m.InitiativeStatus,
		Budget:        m.InitiativeBudget,
		BudgetUsed:    m.InitiativeBudgetUsed,
		PriorityScore: m.InitiativePriorityScore,
		PICID:         m.InitiativePICID,
		StartDate:     fmtDate(m.InitiativeStartDate),
		DueDate:       fmtDate(m.InitiativeDueDate),
		CompletedAt:   m.InitiativeCompletedAt,
		ClosureNotes:  m.InitiativeClosureNotes,
		CreatedAt:     m.InitiativeCreatedAt,
		UpdatedAt:     m.InitiativeUpdatedAt,
	}
}

/* ===============================
   Success metrics
=================================*/

type CreateSuccessMetricRequest struct {
	Name        string  `json:"success_metric_name"        validate:"required,min=2,max=255"`
	Target      string  `json:"success_metric_target"      validate:"required,max=100"`
	Achievement *string `json:"success_metric_achievement" validate:"omitempty,max=100"`
}

type UpdateSuccessMetricRequest struct {
	Name        *string `json:"success_metric_name"        validate:"omitempty,min=2,max=255"`
	Target      *string `json:"success_metric_target"      validate:"omitempty,max=100"`
	Achievement *string `json:"success_metric_achievement" validate:"omitempty,max=100"`
}

func (r UpdateSuccessMetricRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["success_metric_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Target != nil {
		m["success_metric_target"] = strings.TrimSpace(*r.Target)
	}
	if r.Achievement != nil {
		a := strings.TrimSpace(*r.Achievement)
		if a == "" {
			a = model.SuccessMetricDefaultAchievement
		}
		m["success_metric_achievement"] = a
	}
	return m
}

type SuccessMetricResponse struct {
	ID          uuid.UUID `json:"success_metric_id"`
	Name        string    `json:"success_metric_name"`
	Target      string    `json:"success_metric_target"`
	Achievement string    `json:"success_metric_achievement"`
	UpdatedAt   time.Time `json:"success_metric_updated_at"`
}

func MetricFromModel(m *model.SuccessMetricModel) SuccessMetricResponse {
	return SuccessMetricResponse{
		ID:          m.SuccessMetricID,
		Name:        m.SuccessMetricName,
		Target:      m.SuccessMetricTarget,
		Achievement: m.SuccessMetricAchievement,
		UpdatedAt:   m.SuccessMetricUpdatedAt,
	}
}

func fmtDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
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
