package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStatsModel: satu baris per (user, organisasi).
type UserStatsModel struct {
	UserStatsID             uuid.UUID `gorm:"type:uuid;primaryKey;column:user_stats_id" json:"user_stats_id"`
	UserStatsUserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_stats_user_org;column:user_stats_user_id" json:"user_stats_user_id"`
	UserStatsOrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_stats_user_org;index;column:user_stats_organization_id" json:"user_stats_organization_id"`

	UserStatsTotalPoints      int        `gorm:"not null;default:0;column:user_stats_total_points" json:"user_stats_total_points"`
	UserStatsLevel            int        `gorm:"not null;default:1;column:user_stats_level" json:"user_stats_level"`
	UserStatsCurrentStreak    int        `gorm:"not null;default:0;column:user_stats_current_streak" json:"user_stats_current_streak"`
	UserStatsLongestStreak    int        `gorm:"not null;default:0;column:user_stats_longest_streak" json:"user_stats_longest_streak"`
	UserStatsLastActivityDate *time.Time `gorm:"column:user_stats_last_activity_date" json:"user_stats_last_activity_date,omitempty"`

	UserStatsObjectivesCompleted int `gorm:"not null;default:0;column:user_stats_objectives_completed" json:"user_stats_objectives_completed"`
	UserStatsKeyResultsCompleted int `gorm:"not null;default:0;column:user_stats_key_results_completed" json:"user_stats_key_results_completed"`
	UserStatsCheckInsCreated     int `gorm:"not null;default:0;column:user_stats_check_ins_created" json:"user_stats_check_ins_created"`
	UserStatsInitiativesCreated  int `gorm:"not null;default:0;column:user_stats_initiatives_created" json:"user_stats_initiatives_created"`
	UserStatsTasksCompleted      int `gorm:"not null;default:0;column:user_stats_tasks_completed" json:"user_stats_tasks_completed"`

	UserStatsCreatedAt time.Time `gorm:"autoCreateTime;column:user_stats_created_at" json:"user_stats_created_at"`
	UserStatsUpdatedAt time.Time `gorm:"autoUpdateTime;column:user_stats_updated_at" json:"user_stats_updated_at"`
}

func (UserStatsModel) TableName() string { return "user_stats" }

func (m *UserStatsModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserStatsID == uuid.Nil {
		m.UserStatsID = uuid.New()
	}
	if m.UserStatsLevel == 0 {
		m.UserStatsLevel = 1
	}
	return nil
}

type AchievementModel struct {
	AchievementID          uuid.UUID `gorm:"type:uuid;primaryKey;column:achievement_id" json:"achievement_id"`
	AchievementCode        string    `gorm:"type:varchar(60);not null;uniqueIndex;column:achievement_code" json:"achievement_code"`
	AchievementName        string    `gorm:"type:varchar(120);not null;column:achievement_name" json:"achievement_name"`
	AchievementDescription *string   `gorm:"type:text;column:achievement_description" json:"achievement_description,omitempty"`
	// nama counter di user_stats: objectives_completed, check_ins_created, total_points, level, current_streak, ...
	AchievementCategory     string  `gorm:"type:varchar(40);not null;column:achievement_category" json:"achievement_category"`
	AchievementThreshold    int     `gorm:"not null;column:achievement_threshold" json:"achievement_threshold"`
	AchievementPointsReward int     `gorm:"not null;default:0;column:achievement_points_reward" json:"achievement_points_reward"`
	AchievementBadgeIcon    *string `gorm:"type:varchar(100);column:achievement_badge_icon" json:"achievement_badge_icon,omitempty"`
	AchievementIsActive     bool    `gorm:"not null;default:true;column:achievement_is_active" json:"achievement_is_active"`

	AchievementCreatedAt time.Time      `gorm:"autoCreateTime;column:achievement_created_at" json:"achievement_created_at"`
	AchievementUpdatedAt time.Time      `gorm:"autoUpdateTime;column:achievement_updated_at" json:"achievement_updated_at"`
	AchievementDeletedAt gorm.DeletedAt `gorm:"index;column:achievement_deleted_at" json:"achievement_deleted_at,omitempty"`
}

func (AchievementModel) TableName() string { return "achievements" }

func (m *AchievementModel) BeforeCreate(tx *gorm.DB) error {
	if m.AchievementID == uuid.Nil {
		m.AchievementID = uuid.New()
	}
	return nil
}

type UserAchievementModel struct {
	UserAchievementID             uuid.UUID `gorm:"type:uuid;primaryKey;column:user_achievement_id" json:"user_achievement_id"`
	UserAchievementUserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_achievement;column:user_achievement_user_id" json:"user_achievement_user_id"`
	UserAchievementOrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_achievement;column:user_achievement_organization_id" json:"user_achievement_organization_id"`
	UserAchievementAchievementID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_achievement;column:user_achievement_achievement_id" json:"user_achievement_achievement_id"`
	UserAchievementUnlockedAt     time.Time `gorm:"not null;column:user_achievement_unlocked_at" json:"user_achievement_unlocked_at"`
}

func (UserAchievementModel) TableName() string { return "user_achievements" }

func (m *UserAchievementModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserAchievementID == uuid.Nil {
		m.UserAchievementID = uuid.New()
	}
	if m.UserAchievementUnlockedAt.IsZero() {
		m.UserAchievementUnlockedAt = time.Now().UTC()
	}
	return nil
}

type ActivityLogModel struct {
	ActivityLogID             uuid.UUID      `gorm:"type:uuid;primaryKey;column:activity_log_id" json:"activity_log_id"`
	ActivityLogUserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_user_org,priority:1;column:activity_log_user_id" json:"activity_log_user_id"`
	ActivityLogOrganizationID uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_user_org,priority:2;column:activity_log_organization_id" json:"activity_log_organization_id"`
	ActivityLogEvent          string         `gorm:"type:varchar(40);not null;column:activity_log_event" json:"activity_log_event"`
	ActivityLogPoints         int            `gorm:"not null;default:0;column:activity_log_points" json:"activity_log_points"`
	ActivityLogSourceID       *uuid.UUID     `gorm:"type:uuid;column:activity_log_source_id" json:"activity_log_source_id,omitempty"`
	ActivityLogMetadata       datatypes.JSON `gorm:"column:activity_log_metadata" json:"activity_log_metadata,omitempty"`
	ActivityLogCreatedAt      time.Time      `gorm:"autoCreateTime;column:activity_log_created_at" json:"activity_log_created_at"`
}

func (ActivityLogModel) TableName() string { return "activity_logs" }

func (m *ActivityLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.ActivityLogID == uuid.Nil {
		m.ActivityLogID = uuid.New()
	}
	return nil
}
