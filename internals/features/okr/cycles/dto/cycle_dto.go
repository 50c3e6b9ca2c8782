package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"okrku_backend/internals/features/okr/cycles/model"
)

const DateLayout = "2006-01-02"

// ParseDate: "YYYY-MM-DD" → tengah malam UTC.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, field+" harus format YYYY-MM-DD")
	}
	return t, nil
}

type CreateCycleRequest struct {
	Name        string  `json:"cycle_name"        validate:"required,min=2,max=100"`
	Type        string  `json:"cycle_type"        validate:"omitempty,oneof=monthly quarterly annual custom"`
	StartDate   string  `json:"cycle_start_date"  validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"cycle_end_date"    validate:"required,datetime=2006-01-02"`
	Status      string  `json:"cycle_status"      validate:"omitempty,oneof=planning active completed"`
	Description *string `json:"cycle_description"`
}

func (r CreateCycleRequest) ToModel(orgID uuid.UUID) (*model.CycleModel, error) {
	start, err := ParseDate("cycle_start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate("cycle_end_date", r.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cycle_end_date harus >= cycle_start_date")
	}
	typ := r.Type
	if typ == "" {
		typ = model.CycleTypeQuarterly
	}
	status := r.Status
	if status == "" {
		status = model.CycleStatusPlanning
	}
	return &model.CycleModel{
		CycleOrganizationID: orgID,
		CycleName:           strings.TrimSpace(r.Name),
		CycleType:           typ,
		CycleStartDate:      start,
		CycleEndDate:        end,
		CycleStatus:         status,
		CycleDescription:    trimPtr(r.Description),
	}, nil
}

type UpdateCycleRequest struct {
	Name        *string `json:"cycle_name"        validate:"omitempty,min=2,max=100"`
	Type        *string `json:"cycle_type"        validate:"omitempty,oneof=monthly quarterly annual custom"`
	StartDate   *string `json:"cycle_start_date"  validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"cycle_end_date"    validate:"omitempty,datetime=2006-01-02"`
	Status      *string `json:"cycle_status"      validate:"omitempty,oneof=planning active completed"`
	Description *string `json:"cycle_description"`
}

// Apply mengubah model in-place. Return true kalau tanggal berubah (cache waktu KR perlu dihitung ulang).
func (r UpdateCycleRequest) Apply(m *model.CycleModel) (bool, error) {
	datesChanged := false
	if r.Name != nil {
		m.CycleName = strings.TrimSpace(*r.Name)
	}
	if r.Type != nil {
		m.CycleType = *r.Type
	}
	if r.Status != nil {
		m.CycleStatus = *r.Status
	}
	if r.Description != nil {
		m.CycleDescription = trimPtr(r.Description)
	}
	if r.StartDate != nil {
		t, err := ParseDate("cycle_start_date", *r.StartDate)
		if err != nil {
			return false, err
		}
		datesChanged = datesChanged || !t.Equal(m.CycleStartDate)
		m.CycleStartDate = t
	}
	if r.EndDate != nil {
		t, err := ParseDate("cycle_end_date", *r.EndDate)
		if err != nil {
			return false, err
		}
		datesChanged = datesChanged || !t.Equal(m.CycleEndDate)
		m.CycleEndDate = t
	}
	if m.CycleEndDate.Before(m.CycleStartDate) {
		return false, fiber.NewError(fiber.StatusBadRequest, "cycle_end_date harus >= cycle_start_date")
	}
	return datesChanged, nil
}

type CycleResponse struct {
	ID             uuid.UUID `json:"cycle_id"`
	Name           string    `json:"cycle_name"`
	Type           string    `json:"cycle_type"`
	StartDate      string    `json:"cycle_start_date"`
	EndDate        string    `json:"cycle_end_date"`
	Status         string    `json:"cycle_status"`
	Description    *string   `json:"cycle_description,omitempty"`
	TimeProgress   float64   `json:"time_progress_percentage"`
	ObjectiveCount int64     `json:"objective_count"`
	CreatedAt      time.Time `json:"cycle_created_at"`
	UpdatedAt      time.Time `json:"cycle_updated_at"`
}

func FromModel(m *model.CycleModel) CycleResponse {
	return CycleResponse{
		ID:          m.CycleID,
		Name:        m.CycleName,
		Type:        m.CycleType,
		StartDate:   m.CycleStartDate.Format(DateLayout),
		EndDate:     m.CycleEndDate.Format(DateLayout),
		Status:      m.CycleStatus,
		Description: m.CycleDescription,
		CreatedAt:   m.CycleCreatedAt,
		UpdatedAt:   m.CycleUpdatedAt,
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
