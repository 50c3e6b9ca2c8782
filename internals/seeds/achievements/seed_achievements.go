package achievements

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/gamification/engine"
	"okrku_backend/internals/features/gamification/model"
	gamService "okrku_backend/internals/features/gamification/service"
)

//go:embed data_achievements.json
var dataAchievements []byte

type AchievementSeed struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Category     string  `json:"category"`
	Threshold    int     `json:"threshold"`
	PointsReward int     `json:"points_reward"`
	BadgeIcon    *string `json:"badge_icon"`
}

func Load() ([]AchievementSeed, error) {
	var data []AchievementSeed
	if err := sonic.Unmarshal(dataAchievements, &data); err != nil {
		return nil, fmt.Errorf("decode data_achievements.json: %w", err)
	}
	for _, a := range data {
		if _, ok := (engine.Stats{}).Metric(a.Category); !ok {
			return nil, fmt.Errorf("achievement %s: kategori %q tidak dikenal", a.Code, a.Category)
		}
	}
	return data, nil
}

// SeedAchievements insert definisi yang belum ada (termasuk yang soft-deleted dianggap ada).
func SeedAchievements(ctx context.Context, db *gorm.DB) (int, error) {
	data, err := Load()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, item := range data {
		var existing model.AchievementModel
		err := db.WithContext(ctx).Unscoped().Where("achievement_code = ?", item.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return inserted, err
		}
		record := model.AchievementModel{
			AchievementCode:         item.Code,
			AchievementName:         item.Name,
			AchievementDescription:  item.Description,
			AchievementCategory:     item.Category,
			AchievementThreshold:    item.Threshold,
			AchievementPointsReward: item.PointsReward,
			AchievementBadgeIcon:    item.BadgeIcon,
			AchievementIsActive:     true,
		}
		if err := db.WithContext(ctx).Create(&record).Error; err != nil {
			return inserted, fmt.Errorf("insert achievement %s: %w", item.Code, err)
		}
		inserted++
	}
	if inserted > 0 {
		gamService.InvalidateAchievementCache()
	}
	configs.L().Infof("✅ Achievement: %d baru dari %d definisi", inserted, len(data))
	return inserted, nil
}
