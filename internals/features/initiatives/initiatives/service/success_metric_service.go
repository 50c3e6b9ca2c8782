package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/initiatives/initiatives/dto"
	"okrku_backend/internals/features/initiatives/initiatives/model"
)

func listMetrics(ctx context.Context, db *gorm.DB, initiativeID uuid.UUID) ([]model.SuccessMetricModel, error) {
	var rows []model.SuccessMetricModel
	err := db.WithContext(ctx).
		Where("success_metric_initiative_id = ?", initiativeID).
		Order("success_metric_created_at ASC").
		Find(&rows).Error
	return rows, err
}

func ListMetrics(ctx context.Context, db *gorm.DB, orgID, initiativeID uuid.UUID) ([]model.SuccessMetricModel, error) {
	if _, err := FindInitiative(ctx, db, orgID, initiativeID); err != nil {
		return nil, err
	}
	return listMetrics(ctx, db, initiativeID)
}

// CreateMetric lalu sinkron status initiative (achievement terisi → sedang_berjalan).
func CreateMetric(ctx context.Context, db *gorm.DB, orgID, initiativeID uuid.UUID, req dto.CreateSuccessMetricRequest) (*model.SuccessMetricModel, string, error) {
	ini, err := FindInitiative(ctx, db, orgID, initiativeID)
	if err != nil {
		return nil, "", err
	}
	m := &model.SuccessMetricModel{
		SuccessMetricInitiativeID: ini.InitiativeID,
		SuccessMetricName:         strings.TrimSpace(req.Name),
		SuccessMetricTarget:       strings.TrimSpace(req.Target),
	}
	if req.Achievement != nil {
		m.SuccessMetricAchievement = strings.TrimSpace(*req.Achievement)
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, "", err
	}
	return m, SyncBestEffort(ctx, db, ini.InitiativeID), nil
}

func findMetric(ctx context.Context, db *gorm.DB, initiativeID, metricID uuid.UUID) (*model.SuccessMetricModel, error) {
	var m model.SuccessMetricModel
	if err := db.WithContext(ctx).
		Where("success_metric_id = ? AND success_metric_initiative_id = ?", metricID, initiativeID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func UpdateMetric(ctx context.Context, db *gorm.DB, orgID, initiativeID, metricID uuid.UUID, req dto.UpdateSuccessMetricRequest) (*model.SuccessMetricModel, string, error) {
	if _, err := FindInitiative(ctx, db, orgID, initiativeID); err != nil {
		return nil, "", err
	}
	m, err := findMetric(ctx, db, initiativeID, metricID)
	if err != nil {
		return nil, "", err
	}
	if updates := req.ToUpdates(); len(updates) > 0 {
		if err := db.WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
			return nil, "", err
		}
	}
	if m, err = findMetric(ctx, db, initiativeID, metricID); err != nil {
		return nil, "", err
	}
	return m, SyncBestEffort(ctx, db, initiativeID), nil
}

// DeleteMetric tidak memicu sinkron: status tidak pernah mundur ke draft.
func DeleteMetric(ctx context.Context, db *gorm.DB, orgID, initiativeID, metricID uuid.UUID) error {
	if _, err := FindInitiative(ctx, db, orgID, initiativeID); err != nil {
		return err
	}
	m, err := findMetric(ctx, db, initiativeID, metricID)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(m).Error
}
