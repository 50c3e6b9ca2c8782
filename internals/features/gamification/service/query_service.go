package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/dto"
	"okrku_backend/internals/features/gamification/model"
	helper "okrku_backend/internals/helpers"
)

// MyStats: statistik user di organisasi aktif. Baris kosong tidak dibuat di sini.
func MyStats(ctx context.Context, db *gorm.DB, userID, orgID uuid.UUID) (dto.StatsResponse, error) {
	var st model.UserStatsModel
	err := db.WithContext(ctx).
		Where("user_stats_user_id = ? AND user_stats_organization_id = ?", userID, orgID).
		Limit(1).Find(&st).Error
	if err != nil {
		return dto.StatsResponse{}, err
	}
	if st.UserStatsID == uuid.Nil {
		st = model.UserStatsModel{UserStatsUserID: userID, UserStatsOrganizationID: orgID, UserStatsLevel: 1}
	}
	resp := dto.StatsFromModel(st)
	if err := db.WithContext(ctx).Model(&model.UserAchievementModel{}).
		Where("user_achievement_user_id = ? AND user_achievement_organization_id = ?", userID, orgID).
		Count(&resp.AchievementsCount).Error; err != nil {
		return resp, err
	}
	return resp, nil
}

// Leaderboard: urut poin, lalu level, lalu streak. Rank mengikuti offset halaman.
func Leaderboard(ctx context.Context, db *gorm.DB, orgID uuid.UUID, p helper.Paging) ([]dto.LeaderboardEntry, int64, error) {
	base := db.WithContext(ctx).
		Table("user_stats s").
		Joins("JOIN users u ON u.id = s.user_stats_user_id AND u.deleted_at IS NULL").
		Where("s.user_stats_organization_id = ?", orgID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []dto.LeaderboardEntry
	err := base.
		Select(`s.user_stats_user_id AS user_id, u.user_name, u.full_name, u.avatar_url,
			s.user_stats_total_points AS total_points, s.user_stats_level AS level,
			s.user_stats_current_streak AS current_streak`).
		Order("s.user_stats_total_points DESC").
		Order("s.user_stats_level DESC").
		Order("s.user_stats_current_streak DESC").
		Order("u.user_name ASC").
		Offset(p.Offset).Limit(p.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].Rank = p.Offset + i + 1
	}
	return rows, total, nil
}

// AchievementsFor: semua achievement aktif + penanda sudah dibuka oleh user.
func AchievementsFor(ctx context.Context, db *gorm.DB, userID, orgID uuid.UUID) ([]dto.AchievementResponse, error) {
	defs, err := ActiveAchievements(ctx, db)
	if err != nil {
		return nil, err
	}
	var owned []model.UserAchievementModel
	if err := db.WithContext(ctx).
		Where("user_achievement_user_id = ? AND user_achievement_organization_id = ?", userID, orgID).
		Find(&owned).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[uuid.UUID]time.Time, len(owned))
	for _, o := range owned {
		unlockedAt[o.UserAchievementAchievementID] = o.UserAchievementUnlockedAt
	}

	out := make([]dto.AchievementResponse, 0, len(defs))
	for i := range defs {
		r := dto.AchievementFromModel(&defs[i])
		if t, ok := unlockedAt[defs[i].AchievementID]; ok {
			r.Unlocked = true
			r.UnlockedAt = &t
		}
		out = append(out, r)
	}
	return out, nil
}

func Activities(ctx context.Context, db *gorm.DB, userID, orgID uuid.UUID, p helper.Paging) ([]model.ActivityLogModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.ActivityLogModel{}).
		Where("activity_log_user_id = ? AND activity_log_organization_id = ?", userID, orgID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ActivityLogModel
	err := q.Order("activity_log_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}
