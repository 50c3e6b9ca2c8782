package plans

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/billing/model"
)

//go:embed data_plans.json
var dataPlans []byte

type PlanSeed struct {
	Code                string   `json:"code"`
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	PriceIDR            int64    `json:"price_idr"`
	BillingPeriodMonths int      `json:"billing_period_months"`
	MaxUsers            *int     `json:"max_users"`
	MaxObjectives       *int     `json:"max_objectives"`
	Features            []string `json:"features"`
	SortOrder           int      `json:"sort_order"`
}

func Load() ([]PlanSeed, error) {
	var data []PlanSeed
	if err := sonic.Unmarshal(dataPlans, &data); err != nil {
		return nil, fmt.Errorf("decode data_plans.json: %w", err)
	}
	return data, nil
}

// SeedPlans insert paket yang belum ada (berdasarkan code). Return jumlah yang baru.
func SeedPlans(ctx context.Context, db *gorm.DB) (int, error) {
	data, err := Load()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, item := range data {
		var existing model.SubscriptionPlanModel
		err := db.WithContext(ctx).Where("subscription_plan_code = ?", item.Code).First(&existing).Error
		if err == nil {
			configs.L().Infof("ℹ️ Paket %s sudah ada, lewati...", item.Code)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return inserted, err
		}

		features, err := sonic.Marshal(item.Features)
		if err != nil {
			return inserted, err
		}
		record := model.SubscriptionPlanModel{
			SubscriptionPlanCode:                item.Code,
			SubscriptionPlanName:                item.Name,
			SubscriptionPlanDescription:         item.Description,
			SubscriptionPlanPriceIDR:            item.PriceIDR,
			SubscriptionPlanBillingPeriodMonths: item.BillingPeriodMonths,
			SubscriptionPlanMaxUsers:            item.MaxUsers,
			SubscriptionPlanMaxObjectives:       item.MaxObjectives,
			SubscriptionPlanFeatures:            datatypes.JSON(features),
			SubscriptionPlanIsActive:            true,
			SubscriptionPlanSortOrder:           item.SortOrder,
		}
		if err := db.WithContext(ctx).Create(&record).Error; err != nil {
			return inserted, fmt.Errorf("insert paket %s: %w", item.Code, err)
		}
		configs.L().Infof("✅ Berhasil insert paket %s", item.Code)
		inserted++
	}
	return inserted, nil
}
