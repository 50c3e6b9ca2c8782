package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/gamification/dto"
	"okrku_backend/internals/features/gamification/model"
)

// Definisi achievement bersifat global (bukan per organisasi); setiap perubahan mengosongkan cache.

func ListAllAchievements(ctx context.Context, db *gorm.DB) ([]model.AchievementModel, error) {
	var rows []model.AchievementModel
	err := db.WithContext(ctx).
		Order("achievement_category ASC, achievement_threshold ASC").
		Find(&rows).Error
	return rows, err
}

func CreateAchievement(ctx context.Context, db *gorm.DB, req dto.CreateAchievementRequest) (*model.AchievementModel, error) {
	m := req.ToModel()
	active := m.AchievementIsActive
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	// kolom ber-default true: nilai false tidak ikut INSERT
	if !active {
		if err := db.WithContext(ctx).Model(m).Update("achievement_is_active", false).Error; err != nil {
			return nil, err
		}
		m.AchievementIsActive = false
	}
	InvalidateAchievementCache()
	configs.L().Infof("[INFO] Achievement %s dibuat", m.AchievementCode)
	return m, nil
}

func UpdateAchievement(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateAchievementRequest) (*model.AchievementModel, error) {
	var m model.AchievementModel
	if err := db.WithContext(ctx).Where("achievement_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	if updates := req.ToUpdates(); len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&m).Updates(updates).Error; err != nil {
			return nil, err
		}
		InvalidateAchievementCache()
	}
	if err := db.WithContext(ctx).Where("achievement_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteAchievement: soft delete; user_achievements yang sudah ada tetap tersimpan.
func DeleteAchievement(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("achievement_id = ?", id).Delete(&model.AchievementModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	InvalidateAchievementCache()
	return nil
}
