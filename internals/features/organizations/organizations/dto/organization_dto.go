package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"okrku_backend/internals/features/organizations/organizations/model"
)

/* =========================================================
   ORGANIZATION
========================================================= */

type CreateOrganizationRequest struct {
	Name        string  `json:"organization_name"        validate:"required,min=2,max=150"`
	Slug        *string `json:"organization_slug"        validate:"omitempty,max=100"`
	Description *string `json:"organization_description" validate:"omitempty"`
	Timezone    *string `json:"organization_timezone"    validate:"omitempty,timezone"`
	Industry    *string `json:"organization_industry"    validate:"omitempty,max=100"`
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"organization_name"        validate:"omitempty,min=2,max=150"`
	Description *string `json:"organization_description" validate:"omitempty"`
	Timezone    *string `json:"organization_timezone"    validate:"omitempty,timezone"`
	Industry    *string `json:"organization_industry"    validate:"omitempty,max=100"`
}

func (r UpdateOrganizationRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["organization_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m["organization_description"] = nilIfBlank(*r.Description)
	}
	if r.Timezone != nil {
		m["organization_timezone"] = strings.TrimSpace(*r.Timezone)
	}
	if r.Industry != nil {
		m["organization_industry"] = nilIfBlank(*r.Industry)
	}
	return m
}

func nilIfBlank(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

type OrganizationResponse struct {
	ID          uuid.UUID  `json:"organization_id"`
	Name        string     `json:"organization_name"`
	Slug        string     `json:"organization_slug"`
	Description *string    `json:"organization_description,omitempty"`
	LogoURL     *string    `json:"organization_logo_url,omitempty"`
	Timezone    string     `json:"organization_timezone"`
	Industry    *string    `json:"organization_industry,omitempty"`
	OwnerUserID uuid.UUID  `json:"organization_owner_user_id"`
	IsActive    bool       `json:"organization_is_active"`
	TrialEndsAt *time.Time `json:"organization_trial_ends_at,omitempty"`
	CreatedAt   time.Time  `json:"organization_created_at"`
	UpdatedAt   time.Time  `json:"organization_updated_at"`

	// role user yang sedang login (kalau diketahui)
	MyRole string `json:"my_role,omitempty"`
}

func FromModel(m *model.OrganizationModel) OrganizationResponse {
	return OrganizationResponse{
		ID:          m.OrganizationID,
		Name:        m.OrganizationName,
		Slug:        m.OrganizationSlug,
		Description: m.OrganizationDescription,
		LogoURL:     m.OrganizationLogoURL,
		Timezone:    m.OrganizationTimezone,
		Industry:    m.OrganizationIndustry,
		OwnerUserID: m.OrganizationOwnerUserID,
		IsActive:    m.OrganizationIsActive,
		TrialEndsAt: m.OrganizationTrialEndsAt,
		CreatedAt:   m.OrganizationCreatedAt,
		UpdatedAt:   m.OrganizationUpdatedAt,
	}
}

/* =========================================================
   MEMBER
========================================================= */

type AddMemberRequest struct {
	Email    string  `json:"email"     validate:"required,email"`
	Role     string  `json:"role"      validate:"required,oneof=administrator member viewer"`
	JobTitle *string `json:"job_title" validate:"omitempty,max=100"`
}

type UpdateMemberRequest struct {
	Role     *string `json:"role"      validate:"omitempty,oneof=administrator member viewer"`
	JobTitle *string `json:"job_title" validate:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateMemberRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Role != nil {
		m["organization_member_role"] = *r.Role
	}
	if r.JobTitle != nil {
		m["organization_member_job_title"] = nilIfBlank(*r.JobTitle)
	}
	if r.IsActive != nil {
		m["organization_member_is_active"] = *r.IsActive
	}
	return m
}

// Baris hasil join organization_members + users.
type MemberResponse struct {
	MemberID  uuid.UUID  `json:"organization_member_id"        gorm:"column:organization_member_id"`
	UserID    uuid.UUID  `json:"user_id"                       gorm:"column:user_id"`
	UserName  string     `json:"user_name"                     gorm:"column:user_name"`
	FullName  *string    `json:"full_name,omitempty"           gorm:"column:full_name"`
	Email     string     `json:"email"                         gorm:"column:email"`
	AvatarURL *string    `json:"avatar_url,omitempty"          gorm:"column:avatar_url"`
	Role      string     `json:"role"                          gorm:"column:role"`
	JobTitle  *string    `json:"job_title,omitempty"           gorm:"column:job_title"`
	IsActive  bool       `json:"is_active"                     gorm:"column:is_active"`
	JoinedAt  time.Time  `json:"joined_at"                     gorm:"column:joined_at"`
	InvitedBy *uuid.UUID `json:"invited_by,omitempty"          gorm:"column:invited_by"`
}

func MemberFromModel(m *model.OrganizationMemberModel) MemberResponse {
	return MemberResponse{
		MemberID:  m.OrganizationMemberID,
		UserID:    m.OrganizationMemberUserID,
		Role:      m.OrganizationMemberRole,
		JobTitle:  m.OrganizationMemberJobTitle,
		IsActive:  m.OrganizationMemberIsActive,
		JoinedAt:  m.OrganizationMemberJoinedAt,
		InvitedBy: m.OrganizationMemberInvitedBy,
	}
}
