package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"okrku_backend/internals/features/organizations/teams/model"
)

type CreateTeamRequest struct {
	Name        string     `json:"team_name"         validate:"required,min=2,max=120"`
	Description *string    `json:"team_description"`
	LeadUserID  *uuid.UUID `json:"team_lead_user_id"`
}

type UpdateTeamRequest struct {
	Name        *string    `json:"team_name"         validate:"omitempty,min=2,max=120"`
	Description *string    `json:"team_description"`
	LeadUserID  *uuid.UUID `json:"team_lead_user_id"`
}

func (r UpdateTeamRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["team_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		if d := strings.TrimSpace(*r.Description); d == "" {
			m["team_description"] = nil
		} else {
			m["team_description"] = d
		}
	}
	if r.LeadUserID != nil {
		if *r.LeadUserID == uuid.Nil {
			m["team_lead_user_id"] = nil
		} else {
			m["team_lead_user_id"] = *r.LeadUserID
		}
	}
	return m
}

type AddTeamMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role"    validate:"omitempty,oneof=lead member"`
}

type TeamResponse struct {
	ID          uuid.UUID            `json:"team_id"`
	Name        string               `json:"team_name"`
	Slug        string               `json:"team_slug"`
	Description *string              `json:"team_description,omitempty"`
	LeadUserID  *uuid.UUID           `json:"team_lead_user_id,omitempty"`
	MemberCount int64                `json:"member_count"`
	Members     []TeamMemberResponse `json:"members,omitempty"`
	CreatedAt   time.Time            `json:"team_created_at"`
	UpdatedAt   time.Time            `json:"team_updated_at"`
}

func FromModel(m *model.TeamModel) TeamResponse {
	return TeamResponse{
		ID:          m.TeamID,
		Name:        m.TeamName,
		Slug:        m.TeamSlug,
		Description: m.TeamDescription,
		LeadUserID:  m.TeamLeadUserID,
		CreatedAt:   m.TeamCreatedAt,
		UpdatedAt:   m.TeamUpdatedAt,
	}
}

type TeamMemberResponse struct {
	TeamMemberID uuid.UUID `json:"team_member_id" gorm:"column:team_member_id"`
	UserID       uuid.UUID `json:"user_id"        gorm:"column:user_id"`
	UserName     string    `json:"user_name"      gorm:"column:user_name"`
	FullName     *string   `json:"full_name,omitempty" gorm:"column:full_name"`
	AvatarURL    *string   `json:"avatar_url,omitempty" gorm:"column:avatar_url"`
	Role         string    `json:"role"           gorm:"column:role"`
}
