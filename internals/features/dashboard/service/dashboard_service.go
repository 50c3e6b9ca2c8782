package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/dashboard/dto"
	gamService "okrku_backend/internals/features/gamification/service"
	iniModel "okrku_backend/internals/features/initiatives/initiatives/model"
	taskService "okrku_backend/internals/features/initiatives/tasks/service"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	cycleService "okrku_backend/internals/features/okr/cycles/service"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
)

// AtRiskLimit: jumlah KR bermasalah yang ikut di response.
const AtRiskLimit = 5

var atRiskStatuses = []string{string(progress.StatusAtRisk), string(progress.StatusBehind)}

/* =========================================================
   SUMMARY
========================================================= */

// Summary merangkum cycle aktif (atau cycleID bila diberikan). Tanpa cycle aktif,
// bagian OKR kosong tapi task & statistik user tetap diisi.
func Summary(ctx context.Context, db *gorm.DB, orgID, userID uuid.UUID, cycleID *uuid.UUID, now time.Time) (*dto.SummaryResponse, error) {
	resp := &dto.SummaryResponse{
		Objectives:  dto.ObjectiveSummary{ByStatus: map[string]int64{}},
		AtRisk:      []dto.KeyResultBrief{},
		Initiatives: map[string]int64{},
	}

	cy, err := resolveCycle(ctx, db, orgID, cycleID, now)
	if err != nil {
		return nil, err
	}
	if cy != nil {
		if err := fillOKR(ctx, db, resp, orgID, cy, now); err != nil {
			return nil, err
		}
	}

	if err := fillInitiatives(ctx, db, resp, orgID); err != nil {
		return nil, err
	}
	if resp.OverdueTasks, err = taskService.CountOverdue(ctx, db, orgID, nil, now); err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}
	if resp.MyOverdueTasks, err = taskService.CountOverdue(ctx, db, orgID, &userID, now); err != nil {
		return nil, fmt.Errorf("count my overdue: %w", err)
	}
	if resp.Me, err = gamService.MyStats(ctx, db, userID, orgID); err != nil {
		return nil, err
	}
	return resp, nil
}

func resolveCycle(ctx context.Context, db *gorm.DB, orgID uuid.UUID, cycleID *uuid.UUID, now time.Time) (*cycleModel.CycleModel, error) {
	if cycleID != nil {
		return cycleService.FindCycle(ctx, db, orgID, *cycleID)
	}
	cy, err := cycleService.ActiveCycle(ctx, db, orgID, now)
	if cycleService.IsNoActiveCycle(err) {
		return nil, nil
	}
	return cy, err
}

func fillOKR(ctx context.Context, db *gorm.DB, resp *dto.SummaryResponse, orgID uuid.UUID, cy *cycleModel.CycleModel, now time.Time) error {
	var objs []struct {
		ObjectiveStatus   string
		ObjectiveProgress float64
	}
	if err := db.WithContext(ctx).Model(&objModel.ObjectiveModel{}).
		Select("objective_status, objective_progress").
		Where("objective_organization_id = ? AND objective_cycle_id = ?", orgID, cy.CycleID).
		Scan(&objs).Error; err != nil {
		return fmt.Errorf("load objectives: %w", err)
	}

	var values []float64
	for _, o := range objs {
		resp.Objectives.Total++
		resp.Objectives.ByStatus[o.ObjectiveStatus]++
		if o.ObjectiveStatus == objModel.ObjectiveStatusCancelled || o.ObjectiveStatus == objModel.ObjectiveStatusDraft {
			continue
		}
		values = append(values, o.ObjectiveProgress)
	}
	resp.Objectives.AverageProgress = progress.Round2(progress.ObjectiveProgress(values))

	base := db.WithContext(ctx).Model(&krModel.KeyResultModel{}).
		Joins("JOIN objectives o ON o.objective_id = key_results.key_result_objective_id AND o.objective_deleted_at IS NULL").
		Where("key_results.key_result_organization_id = ? AND o.objective_cycle_id = ?", orgID, cy.CycleID).
		Where("key_results.key_result_status IN ?", atRiskStatuses)

	if err := base.Session(&gorm.Session{}).Count(&resp.KeyResultsAtRisk).Error; err != nil {
		return fmt.Errorf("count at-risk: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Select(`key_results.key_result_id AS id,
			key_results.key_result_objective_id AS objective_id,
			o.objective_title AS objective_title,
			key_results.key_result_title AS title,
			key_results.key_result_progress AS progress,
			key_results.key_result_status AS status,
			key_results.key_result_time_progress_percentage AS time_progress`).
		Order("key_results.key_result_progress ASC").
		Limit(AtRiskLimit).
		Scan(&resp.AtRisk).Error; err != nil {
		return fmt.Errorf("list at-risk: %w", err)
	}

	c := cycleService.ToResponse(cy, now, resp.Objectives.Total)
	resp.Cycle = &c
	return nil
}

func fillInitiatives(ctx context.Context, db *gorm.DB, resp *dto.SummaryResponse, orgID uuid.UUID) error {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := db.WithContext(ctx).Model(&iniModel.InitiativeModel{}).
		Select("initiative_status AS status, COUNT(*) AS total").
		Where("initiative_organization_id = ?", orgID).
		Group("initiative_status").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("count initiatives: %w", err)
	}
	for _, st := range iniModel.InitiativeStatuses {
		resp.Initiatives[st] = 0
	}
	for _, r := range rows {
		resp.Initiatives[r.Status] = r.Total
	}
	return nil
}
