package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	checkInModel "okrku_backend/internals/features/okr/check_ins/model"
	"okrku_backend/internals/features/okr/key_results/model"
	"okrku_backend/internals/features/okr/progress"
)

type CreateKeyResultRequest struct {
	Title        string     `json:"key_result_title"         validate:"required,min=3,max=255"`
	Description  *string    `json:"key_result_description"`
	Type         string     `json:"key_result_type"          validate:"omitempty,oneof=increase_to decrease_to achieve_or_not should_stay_above should_stay_below"`
	BaseValue    *float64   `json:"key_result_base_value"`
	TargetValue  float64    `json:"key_result_target_value"`
	CurrentValue *float64   `json:"key_result_current_value"`
	Unit         string     `json:"key_result_unit"          validate:"omitempty,oneof=number percentage currency"`
	AssigneeID   *uuid.UUID `json:"key_result_assignee_id"`
	Confidence   *int       `json:"key_result_confidence"    validate:"omitempty,min=1,max=10"`
}

// ToModel: current default = base (atau 0).
func (r CreateKeyResultRequest) ToModel(orgID, objectiveID uuid.UUID) *model.KeyResultModel {
	typ := progress.KeyResultType(r.Type)
	if typ == "" {
		typ = progress.IncreaseTo
	}
	unit := r.Unit
	if unit == "" {
		unit = model.UnitNumber
	}
	current := 0.0
	switch {
	case r.CurrentValue != nil:
		current = *r.CurrentValue
	case r.BaseValue != nil:
		current = *r.BaseValue
	}
	assignee := r.AssigneeID
	if assignee != nil && *assignee == uuid.Nil {
		assignee = nil
	}
	return &model.KeyResultModel{
		KeyResultObjectiveID:    objectiveID,
		KeyResultOrganizationID: orgID,
		KeyResultTitle:          strings.TrimSpace(r.Title),
		KeyResultDescription:    trimPtr(r.Description),
		KeyResultType:           typ,
		KeyResultBaseValue:      r.BaseValue,
		KeyResultTargetValue:    r.TargetValue,
		KeyResultCurrentValue:   current,
		KeyResultUnit:           unit,
		KeyResultAssigneeID:     assignee,
		KeyResultConfidence:     r.Confidence,
	}
}

type UpdateKeyResultRequest struct {
	Title        *string    `json:"key_result_title"         validate:"omitempty,min=3,max=255"`
	Description  *string    `json:"key_result_description"`
	Type         *string    `json:"key_result_type"          validate:"omitempty,oneof=increase_to decrease_to achieve_or_not should_stay_above should_stay_below"`
	BaseValue    *float64   `json:"key_result_base_value"`
	ClearBase    bool       `json:"clear_base_value"`
	TargetValue  *float64   `json:"key_result_target_value"`
	CurrentValue *float64   `json:"key_result_current_value"`
	Unit         *string    `json:"key_result_unit"          validate:"omitempty,oneof=number percentage currency"`
	AssigneeID   *uuid.UUID `json:"key_result_assignee_id"` // uuid.Nil = lepas assignee
	Confidence   *int       `json:"key_result_confidence"    validate:"omitempty,min=1,max=10"`
}

// Apply ke model in-place. Return true kalau ada perubahan yang memengaruhi progress.
func (r UpdateKeyResultRequest) Apply(m *model.KeyResultModel) bool {
	valuesChanged := false
	if r.Title != nil {
		m.KeyResultTitle = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m.KeyResultDescription = trimPtr(r.Description)
	}
	if r.Type != nil && progress.KeyResultType(*r.Type) != m.KeyResultType {
		m.KeyResultType = progress.KeyResultType(*r.Type)
		valuesChanged = true
	}
	if r.ClearBase {
		m.KeyResultBaseValue = nil
		valuesChanged = true
	} else if r.BaseValue != nil {
		v := *r.BaseValue
		m.KeyResultBaseValue = &v
		valuesChanged = true
	}
	if r.TargetValue != nil {
		m.KeyResultTargetValue = *r.TargetValue
		valuesChanged = true
	}
	if r.CurrentValue != nil {
		m.KeyResultCurrentValue = *r.CurrentValue
		valuesChanged = true
	}
	if r.Unit != nil {
		m.KeyResultUnit = *r.Unit
	}
	if r.AssigneeID != nil {
		if *r.AssigneeID == uuid.Nil {
			m.KeyResultAssigneeID = nil
		} else {
			a := *r.AssigneeID
			m.KeyResultAssigneeID = &a
		}
	}
	if r.Confidence != nil {
		c := *r.Confidence
		m.KeyResultConfidence = &c
	}
	return valuesChanged
}

type CheckInBrief struct {
	ID         uuid.UUID `json:"check_in_id"`
	Value      float64   `json:"check_in_value"`
	Progress   float64   `json:"check_in_progress"`
	Confidence int       `json:"check_in_confidence"`
	Notes      *string   `json:"check_in_notes,omitempty"`
	CreatedBy  uuid.UUID `json:"check_in_created_by"`
	CreatedAt  time.Time `json:"check_in_created_at"`
}

func CheckInBriefFrom(m *checkInModel.CheckInModel) *CheckInBrief {
	if m == nil {
		return nil
	}
	return &CheckInBrief{
		ID:         m.CheckInID,
		Value:      m.CheckInValue,
		Progress:   m.CheckInProgress,
		Confidence: m.CheckInConfidence,
		Notes:      m.CheckInNotes,
		CreatedBy:  m.CheckInCreatedBy,
		CreatedAt:  m.CheckInCreatedAt,
	}
}

type KeyResultResponse struct {
	ID            uuid.UUID              `json:"key_result_id"`
	ObjectiveID   uuid.UUID              `json:"key_result_objective_id"`
	Title         string                 `json:"key_result_title"`
	Description   *string                `json:"key_result_description,omitempty"`
	Type          progress.KeyResultType `json:"key_result_type"`
	BaseValue     *float64               `json:"key_result_base_value,omitempty"`
	TargetValue   float64                `json:"key_result_target_value"`
	CurrentValue  float64                `json:"key_result_current_value"`
	Unit          string                 `json:"key_result_unit"`
	AssigneeID    *uuid.UUID             `json:"key_result_assignee_id,omitempty"`
	Confidence    *int                   `json:"key_result_confidence,omitempty"`
	Progress      float64                `json:"key_result_progress"`
	Status        string                 `json:"key_result_status"`
	TimeProgress  float64                `json:"key_result_time_progress_percentage"`
	LastCheckInAt *time.Time             `json:"key_result_last_check_in_at,omitempty"`
	CompletedAt   *time.Time             `json:"key_result_completed_at,omitempty"`
	LastCheckIn   *CheckInBrief          `json:"last_check_in,omitempty"`
	CreatedAt     time.Time              `json:"key_result_created_at"`
	UpdatedAt     time.Time              `json:"key_result_updated_at"`
}

func FromModel(m *model.KeyResultModel) KeyResultResponse {
	return KeyResultResponse{
		ID:            m.KeyResultID,
		ObjectiveID:   m.KeyResultObjectiveID,
		Title:         m.KeyResultTitle,
		Description:   m.KeyResultDescription,
		Type:          m.KeyResultType,
		BaseValue:     m.KeyResultBaseValue,
		TargetValue:   m.KeyResultTargetValue,
		CurrentValue:  m.KeyResultCurrentValue,
		Unit:          m.KeyResultUnit,
		AssigneeID:    m.KeyResultAssigneeID,
		Confidence:    m.KeyResultConfidence,
		Progress:      m.KeyResultProgress,
		Status:        m.KeyResultStatus,
		TimeProgress:  m.KeyResultTimeProgressPercentage,
		LastCheckInAt: m.KeyResultLastCheckInAt,
		CompletedAt:   m.KeyResultCompletedAt,
		CreatedAt:     m.KeyResultCreatedAt,
		UpdatedAt:     m.KeyResultUpdatedAt,
	}
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
