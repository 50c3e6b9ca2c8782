package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"okrku_backend/internals/features/gamification/engine"
	"okrku_backend/internals/features/gamification/model"
)

type StatsResponse struct {
	UserID              uuid.UUID  `json:"user_id"`
	TotalPoints         int        `json:"total_points"`
	Level               int        `json:"level"`
	NextLevelPoints     int        `json:"next_level_points"`
	PointsToNextLevel   int        `json:"points_to_next_level"`
	CurrentStreak       int        `json:"current_streak"`
	LongestStreak       int        `json:"longest_streak"`
	LastActivityDate    *time.Time `json:"last_activity_date,omitempty"`
	ObjectivesCompleted int        `json:"objectives_completed"`
	KeyResultsCompleted int        `json:"key_results_completed"`
	CheckInsCreated     int        `json:"check_ins_created"`
	InitiativesCreated  int        `json:"initiatives_created"`
	TasksCompleted      int        `json:"tasks_completed"`
	AchievementsCount   int64      `json:"achievements_count"`
}

func StatsFromModel(m model.UserStatsModel) StatsResponse {
	next := engine.PointsForLevel(m.UserStatsLevel + 1)
	toNext := next - m.UserStatsTotalPoints
	if toNext < 0 {
		toNext = 0
	}
	return StatsResponse{
		UserID:              m.UserStatsUserID,
		TotalPoints:         m.UserStatsTotalPoints,
		Level:               m.UserStatsLevel,
		NextLevelPoints:     next,
		PointsToNextLevel:   toNext,
		CurrentStreak:       m.UserStatsCurrentStreak,
		LongestStreak:       m.UserStatsLongestStreak,
		LastActivityDate:    m.UserStatsLastActivityDate,
		ObjectivesCompleted: m.UserStatsObjectivesCompleted,
		KeyResultsCompleted: m.UserStatsKeyResultsCompleted,
		CheckInsCreated:     m.UserStatsCheckInsCreated,
		InitiativesCreated:  m.UserStatsInitiativesCreated,
		TasksCompleted:      m.UserStatsTasksCompleted,
	}
}

type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	FullName      *string   `json:"full_name,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	TotalPoints   int       `json:"total_points"`
	Level         int       `json:"level"`
	CurrentStreak int       `json:"current_streak"`
}

type AchievementResponse struct {
	ID           uuid.UUID  `json:"achievement_id"`
	Code         string     `json:"achievement_code"`
	Name         string     `json:"achievement_name"`
	Description  *string    `json:"achievement_description,omitempty"`
	Category     string     `json:"achievement_category"`
	Threshold    int        `json:"achievement_threshold"`
	PointsReward int        `json:"achievement_points_reward"`
	BadgeIcon    *string    `json:"achievement_badge_icon,omitempty"`
	IsActive     bool       `json:"achievement_is_active"`
	Unlocked     bool       `json:"unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
}

func AchievementFromModel(m *model.AchievementModel) AchievementResponse {
	return AchievementResponse{
		ID:           m.AchievementID,
		Code:         m.AchievementCode,
		Name:         m.AchievementName,
		Description:  m.AchievementDescription,
		Category:     m.AchievementCategory,
		Threshold:    m.AchievementThreshold,
		PointsReward: m.AchievementPointsReward,
		BadgeIcon:    m.AchievementBadgeIcon,
		IsActive:     m.AchievementIsActive,
	}
}

type ActivityResponse struct {
	ID        uuid.UUID  `json:"activity_log_id"`
	Event     string     `json:"activity_log_event"`
	Points    int        `json:"activity_log_points"`
	SourceID  *uuid.UUID `json:"activity_log_source_id,omitempty"`
	CreatedAt time.Time  `json:"activity_log_created_at"`
}

func ActivityFromModel(m *model.ActivityLogModel) ActivityResponse {
	return ActivityResponse{
		ID:        m.ActivityLogID,
		Event:     m.ActivityLogEvent,
		Points:    m.ActivityLogPoints,
		SourceID:  m.ActivityLogSourceID,
		CreatedAt: m.ActivityLogCreatedAt,
	}
}

/* ===============================
   Admin: definisi achievement
=================================*/

type CreateAchievementRequest struct {
	Code         string  `json:"achievement_code"          validate:"required,min=3,max=60"`
	Name         string  `json:"achievement_name"          validate:"required,min=3,max=120"`
	Description  *string `json:"achievement_description"`
	Category     string  `json:"achievement_category"      validate:"required,oneof=objectives_completed key_results_completed check_ins_created initiatives_created tasks_completed total_points level current_streak longest_streak"`
	Threshold    int     `json:"achievement_threshold"     validate:"required,gte=1"`
	PointsReward int     `json:"achievement_points_reward" validate:"gte=0"`
	BadgeIcon    *string `json:"achievement_badge_icon"    validate:"omitempty,max=100"`
	IsActive     *bool   `json:"achievement_is_active"`
}

func (r CreateAchievementRequest) ToModel() *model.AchievementModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.AchievementModel{
		AchievementCode:         NormalizeCode(r.Code),
		AchievementName:         strings.TrimSpace(r.Name),
		AchievementDescription:  r.Description,
		AchievementCategory:     r.Category,
		AchievementThreshold:    r.Threshold,
		AchievementPointsReward: r.PointsReward,
		AchievementBadgeIcon:    r.BadgeIcon,
		AchievementIsActive:     active,
	}
}

type UpdateAchievementRequest struct {
	Name         *string `json:"achievement_name"          validate:"omitempty,min=3,max=120"`
	Description  *string `json:"achievement_description"`
	Category     *string `json:"achievement_category"      validate:"omitempty,oneof=objectives_completed key_results_completed check_ins_created initiatives_created tasks_completed total_points level current_streak longest_streak"`
	Threshold    *int    `json:"achievement_threshold"     validate:"omitempty,gte=1"`
	PointsReward *int    `json:"achievement_points_reward" validate:"omitempty,gte=0"`
	BadgeIcon    *string `json:"achievement_badge_icon"    validate:"omitempty,max=100"`
	IsActive     *bool   `json:"achievement_is_active"`
}

func (r UpdateAchievementRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["achievement_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m["achievement_description"] = *r.Description
	}
	if r.Category != nil {
		m["achievement_category"] = *r.Category
	}
	if r.Threshold != nil {
		m["achievement_threshold"] = *r.Threshold
	}
	if r.PointsReward != nil {
		m["achievement_points_reward"] = *r.PointsReward
	}
	if r.BadgeIcon != nil {
		m["achievement_badge_icon"] = *r.BadgeIcon
	}
	if r.IsActive != nil {
		m["achievement_is_active"] = *r.IsActive
	}
	return m
}

// NormalizeCode: "First Check In" → "first_check_in".
func NormalizeCode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}
