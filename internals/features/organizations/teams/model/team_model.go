package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TeamRoleLead   = "lead"
	TeamRoleMember = "member"
)

type TeamModel struct {
	TeamID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:team_id" json:"team_id"`
	TeamOrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:team_organization_id" json:"team_organization_id"`
	TeamName           string     `gorm:"type:varchar(120);not null;column:team_name" json:"team_name"`
	TeamSlug           string     `gorm:"type:varchar(120);not null;index;column:team_slug" json:"team_slug"`
	TeamDescription    *string    `gorm:"type:text;column:team_description" json:"team_description,omitempty"`
	TeamLeadUserID     *uuid.UUID `gorm:"type:uuid;column:team_lead_user_id" json:"team_lead_user_id,omitempty"`

	TeamCreatedAt time.Time      `gorm:"autoCreateTime;column:team_created_at" json:"team_created_at"`
	TeamUpdatedAt time.Time      `gorm:"autoUpdateTime;column:team_updated_at" json:"team_updated_at"`
	TeamDeletedAt gorm.DeletedAt `gorm:"index;column:team_deleted_at" json:"team_deleted_at,omitempty"`
}

func (TeamModel) TableName() string { return "teams" }

func (m *TeamModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeamID == uuid.Nil {
		m.TeamID = uuid.New()
	}
	return nil
}

type TeamMemberModel struct {
	TeamMemberID     uuid.UUID `gorm:"type:uuid;primaryKey;column:team_member_id" json:"team_member_id"`
	TeamMemberTeamID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_team_member_user;column:team_member_team_id" json:"team_member_team_id"`
	TeamMemberUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_team_member_user;column:team_member_user_id" json:"team_member_user_id"`
	TeamMemberRole   string    `gorm:"type:varchar(20);not null;default:'member';column:team_member_role" json:"team_member_role"`

	TeamMemberCreatedAt time.Time `gorm:"autoCreateTime;column:team_member_created_at" json:"team_member_created_at"`
}

func (TeamMemberModel) TableName() string { return "team_members" }

func (m *TeamMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeamMemberID == uuid.Nil {
		m.TeamMemberID = uuid.New()
	}
	return nil
}
