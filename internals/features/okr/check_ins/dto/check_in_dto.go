package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"okrku_backend/internals/features/okr/check_ins/model"
	"okrku_backend/internals/features/okr/progress"
)

type CreateCheckInRequest struct {
	Value *float64 `json:"check_in_value"`
	// input bebas dari form ("1.250,5", "80%"); dipakai kalau check_in_value kosong
	ValueText  *string `json:"check_in_value_text" validate:"omitempty,max=40"`
	Confidence int     `json:"check_in_confidence" validate:"omitempty,min=1,max=10"`
	Notes      *string `json:"check_in_notes"      validate:"omitempty,max=2000"`
}

// ResolveValue: ok=false kalau dua-duanya kosong.
func (r CreateCheckInRequest) ResolveValue() (float64, bool) {
	if r.Value != nil {
		return *r.Value, true
	}
	if r.ValueText != nil && strings.TrimSpace(*r.ValueText) != "" {
		return progress.ParseNumber(*r.ValueText), true
	}
	return 0, false
}

type CheckInResponse struct {
	ID            uuid.UUID `json:"check_in_id"`
	KeyResultID   uuid.UUID `json:"check_in_key_result_id"`
	Value         float64   `json:"check_in_value"`
	PreviousValue float64   `json:"check_in_previous_value"`
	Progress      float64   `json:"check_in_progress"`
	Confidence    int       `json:"check_in_confidence"`
	Notes         *string   `json:"check_in_notes,omitempty"`
	CreatedBy     uuid.UUID `json:"check_in_created_by"`
	CreatedAt     time.Time `json:"check_in_created_at"`
}

func FromModel(m *model.CheckInModel) CheckInResponse {
	return CheckInResponse{
		ID:            m.CheckInID,
		KeyResultID:   m.CheckInKeyResultID,
		Value:         m.CheckInValue,
		PreviousValue: m.CheckInPreviousValue,
		Progress:      m.CheckInProgress,
		Confidence:    m.CheckInConfidence,
		Notes:         m.CheckInNotes,
		CreatedBy:     m.CheckInCreatedBy,
		CreatedAt:     m.CheckInCreatedAt,
	}
}

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

type Trend struct {
	Direction         string     `json:"direction"`
	ProgressDelta     float64    `json:"progress_delta"`
	AverageConfidence float64    `json:"average_confidence"`
	Count             int        `json:"count"`
	FirstAt           *time.Time `json:"first_at,omitempty"`
	LastAt            *time.Time `json:"last_at,omitempty"`
}

type HistoryResponse struct {
	Items []CheckInResponse `json:"items"`
	Trend Trend             `json:"trend"`
}
