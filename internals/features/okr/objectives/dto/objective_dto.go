package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"okrku_backend/internals/features/okr/objectives/model"
)

type CreateObjectiveRequest struct {
	CycleID     uuid.UUID  `json:"objective_cycle_id"    validate:"required"`
	ParentID    *uuid.UUID `json:"objective_parent_id"`
	Title       string     `json:"objective_title"       validate:"required,min=3,max=255"`
	Description *string    `json:"objective_description"`
	OwnerType   string     `json:"objective_owner_type"  validate:"omitempty,oneof=user team"`
	OwnerID     *uuid.UUID `json:"objective_owner_id"`
	Status      string     `json:"objective_status"      validate:"omitempty,oneof=draft not_started"`
	Tags        []string   `json:"objective_tags"        validate:"omitempty,max=20,dive,min=1,max=40"`
}

// ToModel: owner default = pembuat.
func (r CreateObjectiveRequest) ToModel(orgID, actorID uuid.UUID) *model.ObjectiveModel {
	ownerType := r.OwnerType
	if ownerType == "" {
		ownerType = model.OwnerTypeUser
	}
	ownerID := actorID
	if r.OwnerID != nil && *r.OwnerID != uuid.Nil {
		ownerID = *r.OwnerID
	}
	status := r.Status
	if status == "" {
		status = model.ObjectiveStatusNotStarted
	}
	parent := r.ParentID
	if parent != nil && *parent == uuid.Nil {
		parent = nil
	}
	return &model.ObjectiveModel{
		ObjectiveOrganizationID: orgID,
		ObjectiveCycleID:        r.CycleID,
		ObjectiveParentID:       parent,
		ObjectiveTitle:          strings.TrimSpace(r.Title),
		ObjectiveDescription:    trimPtr(r.Description),
		ObjectiveOwnerType:      ownerType,
		ObjectiveOwnerID:        ownerID,
		ObjectiveStatus:         status,
		ObjectiveTags:           datatypes.JSONSlice[string](NormalizeTags(r.Tags)),
		ObjectiveCreatedBy:      &actorID,
	}
}

type UpdateObjectiveRequest struct {
	CycleID     *uuid.UUID `json:"objective_cycle_id"`
	ParentID    *uuid.UUID `json:"objective_parent_id"` // uuid.Nil = lepas parent
	Title       *string    `json:"objective_title"       validate:"omitempty,min=3,max=255"`
	Description *string    `json:"objective_description"`
	OwnerType   *string    `json:"objective_owner_type"  validate:"omitempty,oneof=user team"`
	OwnerID     *uuid.UUID `json:"objective_owner_id"`
	// draft/cancelled dikunci manual; not_started mengembalikan ke status otomatis
	Status *string  `json:"objective_status" validate:"omitempty,oneof=draft cancelled not_started"`
	Tags   []string `json:"objective_tags"   validate:"omitempty,max=20,dive,min=1,max=40"`
}

type ObjectiveFilter struct {
	CycleID   *uuid.UUID
	OwnerType string
	OwnerID   *uuid.UUID
	Status    string
	ParentID  *uuid.UUID
	RootOnly  bool
	Tag       string
	Q         string
	Sort      string
}

type ObjectiveResponse struct {
	ID             uuid.UUID  `json:"objective_id"`
	CycleID        uuid.UUID  `json:"objective_cycle_id"`
	ParentID       *uuid.UUID `json:"objective_parent_id,omitempty"`
	Title          string     `json:"objective_title"`
	Description    *string    `json:"objective_description,omitempty"`
	OwnerType      string     `json:"objective_owner_type"`
	OwnerID        uuid.UUID  `json:"objective_owner_id"`
	Status         string     `json:"objective_status"`
	Progress       float64    `json:"objective_progress"`
	Tags           []string   `json:"objective_tags"`
	CompletedAt    *time.Time `json:"objective_completed_at,omitempty"`
	KeyResultCount int64      `json:"key_result_count"`
	CreatedAt      time.Time  `json:"objective_created_at"`
	UpdatedAt      time.Time  `json:"objective_updated_at"`
}

func FromModel(m *model.ObjectiveModel) ObjectiveResponse {
	tags := []string(m.ObjectiveTags)
	if tags == nil {
		tags = []string{}
	}
	return ObjectiveResponse{
		ID:          m.ObjectiveID,
		CycleID:     m.ObjectiveCycleID,
		ParentID:    m.ObjectiveParentID,
		Title:       m.ObjectiveTitle,
		Description: m.ObjectiveDescription,
		OwnerType:   m.ObjectiveOwnerType,
		OwnerID:     m.ObjectiveOwnerID,
		Status:      m.ObjectiveStatus,
		Progress:    m.ObjectiveProgress,
		Tags:        tags,
		CompletedAt: m.ObjectiveCompletedAt,
		CreatedAt:   m.ObjectiveCreatedAt,
		UpdatedAt:   m.ObjectiveUpdatedAt,
	}
}

// ObjectiveNode untuk endpoint tree (alignment parent → child).
type ObjectiveNode struct {
	ObjectiveResponse
	Children []*ObjectiveNode `json:"children"`
}

func NormalizeTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
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
