package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationModel struct {
	OrganizationID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:organization_id" json:"organization_id"`
	OrganizationName        string     `gorm:"type:varchar(150);not null;column:organization_name" json:"organization_name"`
	OrganizationSlug        string     `gorm:"type:varchar(100);not null;uniqueIndex;column:organization_slug" json:"organization_slug"`
	OrganizationDescription *string    `gorm:"type:text;column:organization_description" json:"organization_description,omitempty"`
	OrganizationLogoURL     *string    `gorm:"type:text;column:organization_logo_url" json:"organization_logo_url,omitempty"`
	OrganizationTimezone    string     `gorm:"type:varchar(64);not null;default:'Asia/Jakarta';column:organization_timezone" json:"organization_timezone"`
	OrganizationIndustry    *string    `gorm:"type:varchar(100);column:organization_industry" json:"organization_industry,omitempty"`
	OrganizationOwnerUserID uuid.UUID  `gorm:"type:uuid;not null;index;column:organization_owner_user_id" json:"organization_owner_user_id"`
	OrganizationIsActive    bool       `gorm:"not null;default:true;column:organization_is_active" json:"organization_is_active"`
	OrganizationTrialEndsAt *time.Time `gorm:"column:organization_trial_ends_at" json:"organization_trial_ends_at,omitempty"`

	OrganizationCreatedAt time.Time      `gorm:"autoCreateTime;column:organization_created_at" json:"organization_created_at"`
	OrganizationUpdatedAt time.Time      `gorm:"autoUpdateTime;column:organization_updated_at" json:"organization_updated_at"`
	OrganizationDeletedAt gorm.DeletedAt `gorm:"index;column:organization_deleted_at" json:"organization_deleted_at,omitempty"`
}

func (OrganizationModel) TableName() string { return "organizations" }

func (m *OrganizationModel) BeforeCreate(tx *gorm.DB) error {
	if m.OrganizationID == uuid.Nil {
		m.OrganizationID = uuid.New()
	}
	if strings.TrimSpace(m.OrganizationTimezone) == "" {
		m.OrganizationTimezone = "Asia/Jakarta"
	}
	return m.validate()
}

func (m *OrganizationModel) BeforeUpdate(tx *gorm.DB) error {
	if m.OrganizationID == uuid.Nil {
		return nil
	}
	return m.validate()
}

func (m *OrganizationModel) validate() error {
	m.OrganizationName = strings.TrimSpace(m.OrganizationName)
	if m.OrganizationName == "" {
		return errors.New("organization_name wajib diisi")
	}
	if _, err := time.LoadLocation(m.OrganizationTimezone); err != nil {
		return errors.New("organization_timezone tidak dikenal")
	}
	return nil
}

type OrganizationMemberModel struct {
	OrganizationMemberID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:organization_member_id" json:"organization_member_id"`
	OrganizationMemberOrganizationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_org_member_user;column:organization_member_organization_id" json:"organization_member_organization_id"`
	OrganizationMemberUserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_org_member_user;index;column:organization_member_user_id" json:"organization_member_user_id"`
	OrganizationMemberRole           string     `gorm:"type:varchar(20);not null;default:'member';column:organization_member_role" json:"organization_member_role"`
	OrganizationMemberJobTitle       *string    `gorm:"type:varchar(100);column:organization_member_job_title" json:"organization_member_job_title,omitempty"`
	OrganizationMemberIsActive       bool       `gorm:"not null;default:true;column:organization_member_is_active" json:"organization_member_is_active"`
	OrganizationMemberJoinedAt       time.Time  `gorm:"not null;column:organization_member_joined_at" json:"organization_member_joined_at"`
	OrganizationMemberInvitedBy      *uuid.UUID `gorm:"type:uuid;column:organization_member_invited_by" json:"organization_member_invited_by,omitempty"`

	OrganizationMemberCreatedAt time.Time `gorm:"autoCreateTime;column:organization_member_created_at" json:"organization_member_created_at"`
	OrganizationMemberUpdatedAt time.Time `gorm:"autoUpdateTime;column:organization_member_updated_at" json:"organization_member_updated_at"`
}

func (OrganizationMemberModel) TableName() string { return "organization_members" }

func (m *OrganizationMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.OrganizationMemberID == uuid.Nil {
		m.OrganizationMemberID = uuid.New()
	}
	if m.OrganizationMemberJoinedAt.IsZero() {
		m.OrganizationMemberJoinedAt = time.Now().UTC()
	}
	return nil
}
