package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	checkInModel "okrku_backend/internals/features/okr/check_ins/model"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	"okrku_backend/internals/features/okr/key_results/dto"
	"okrku_backend/internals/features/okr/key_results/model"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	objService "okrku_backend/internals/features/okr/objectives/service"
	"okrku_backend/internals/features/okr/progress"
	orgService "okrku_backend/internals/features/organizations/organizations/service"
	"okrku_backend/internals/metrics"
)

func FindKeyResult(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*model.KeyResultModel, error) {
	var kr model.KeyResultModel
	if err := db.WithContext(ctx).
		Where("key_result_id = ? AND key_result_organization_id = ?", id, orgID).
		First(&kr).Error; err != nil {
		return nil, err
	}
	return &kr, nil
}

func cycleOfObjective(ctx context.Context, db *gorm.DB, objectiveID uuid.UUID) (*cycleModel.CycleModel, error) {
	var cy cycleModel.CycleModel
	err := db.WithContext(ctx).
		Table("cycles c").
		Select("c.*").
		Joins("JOIN objectives o ON o.objective_cycle_id = c.cycle_id").
		Where("o.objective_id = ? AND c.cycle_deleted_at IS NULL", objectiveID).
		Take(&cy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cy, nil
}

// ApplyComputed mengisi kolom cache dari nilai mentah. Return true kalau KR baru saja mencapai 100%.
func ApplyComputed(kr *model.KeyResultModel, cy *cycleModel.CycleModel, now time.Time) bool {
	p := progress.Round2(kr.Progress())
	tp := 0.0
	if cy != nil {
		start, end := cy.Window()
		tp = progress.TimeProgress(start, end, now)
	}
	kr.KeyResultProgress = p
	kr.KeyResultTimeProgressPercentage = progress.Round2(tp)
	kr.KeyResultStatus = string(progress.DeriveStatus(p, tp))

	if kr.KeyResultStatus == string(progress.StatusCompleted) {
		if kr.KeyResultCompletedAt == nil {
			t := now.UTC()
			kr.KeyResultCompletedAt = &t
			return true
		}
		return false
	}
	kr.KeyResultCompletedAt = nil
	return false
}

func cacheColumns(kr *model.KeyResultModel) map[string]any {
	return map[string]any{
		"key_result_progress":                 kr.KeyResultProgress,
		"key_result_status":                   kr.KeyResultStatus,
		"key_result_time_progress_percentage": kr.KeyResultTimeProgressPercentage,
		"key_result_completed_at":             kr.KeyResultCompletedAt,
	}
}

// Recompute menghitung ulang cache satu KR (single-row update).
func Recompute(ctx context.Context, db *gorm.DB, kr *model.KeyResultModel, now time.Time) (bool, error) {
	cy, err := cycleOfObjective(ctx, db, kr.KeyResultObjectiveID)
	if err != nil {
		return false, fmt.Errorf("load cycle: %w", err)
	}
	newly := ApplyComputed(kr, cy, now)
	if err := db.WithContext(ctx).Model(&model.KeyResultModel{}).
		Where("key_result_id = ?", kr.KeyResultID).
		Updates(cacheColumns(kr)).Error; err != nil {
		return false, fmt.Errorf("update key result cache: %w", err)
	}
	metrics.Default().IncRecompute("key_result")
	return newly, nil
}

// AfterValueChange: recompute KR + objective induk, lalu poin key_result_completed
// (sekali per KR) untuk user yang membuatnya tercapai.
func AfterValueChange(ctx context.Context, db *gorm.DB, kr *model.KeyResultModel, actorID uuid.UUID, now time.Time, awarder gamService.Awarder) error {
	newly, err := Recompute(ctx, db, kr, now)
	if err != nil {
		return err
	}
	if newly && awarder != nil && actorID != uuid.Nil {
		awarder.AwardOnce(ctx, actorID, kr.KeyResultOrganizationID, engine.EventKeyResultCompleted, kr.KeyResultID)
	}
	if _, err := objService.RecomputeObjective(ctx, db, kr.KeyResultObjectiveID, now, awarder); err != nil {
		return fmt.Errorf("recompute objective: %w", err)
	}
	return nil
}

/* ===============================
   CRUD
=================================*/

func CreateKeyResult(ctx context.Context, db *gorm.DB, orgID, objectiveID, actorID uuid.UUID, req dto.CreateKeyResultRequest, now time.Time, awarder gamService.Awarder) (*model.KeyResultModel, error) {
	if _, err := objService.FindObjective(ctx, db, orgID, objectiveID); err != nil {
		return nil, err
	}
	if req.AssigneeID != nil && *req.AssigneeID != uuid.Nil {
		if err := orgService.EnsureMember(ctx, db, orgID, req.AssigneeID, "key_result_assignee_id"); err != nil {
			return nil, err
		}
	}
	kr := req.ToModel(orgID, objectiveID)
	cy, err := cycleOfObjective(ctx, db, objectiveID)
	if err != nil {
		return nil, err
	}
	newly := ApplyComputed(kr, cy, now)
	if err := db.WithContext(ctx).Create(kr).Error; err != nil {
		return nil, err
	}
	metrics.Default().IncRecompute("key_result")
	if newly && awarder != nil {
		awarder.AwardOnce(ctx, actorID, orgID, engine.EventKeyResultCompleted, kr.KeyResultID)
	}
	if _, err := objService.RecomputeObjective(ctx, db, objectiveID, now, awarder); err != nil {
		return nil, err
	}
	return kr, nil
}

func UpdateKeyResult(ctx context.Context, db *gorm.DB, orgID, id, actorID uuid.UUID, req dto.UpdateKeyResultRequest, now time.Time, awarder gamService.Awarder) (*model.KeyResultModel, error) {
	kr, err := FindKeyResult(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != nil && *req.AssigneeID != uuid.Nil {
		if err := orgService.EnsureMember(ctx, db, orgID, req.AssigneeID, "key_result_assignee_id"); err != nil {
			return nil, err
		}
	}
	req.Apply(kr)
	if err := db.WithContext(ctx).Save(kr).Error; err != nil {
		return nil, err
	}
	if err := AfterValueChange(ctx, db, kr, actorID, now, awarder); err != nil {
		return nil, err
	}
	return kr, nil
}

func DeleteKeyResult(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID, now time.Time) error {
	kr, err := FindKeyResult(ctx, db, orgID, id)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(kr).Error; err != nil {
		return err
	}
	if _, err := objService.RecomputeObjective(ctx, db, kr.KeyResultObjectiveID, now, nil); err != nil {
		configs.L().Warnf("[WARN] Recompute objective %s setelah hapus KR gagal: %v", kr.KeyResultObjectiveID, err)
	}
	return nil
}

func ListByObjective(ctx context.Context, db *gorm.DB, orgID, objectiveID uuid.UUID) ([]model.KeyResultModel, error) {
	if _, err := objService.FindObjective(ctx, db, orgID, objectiveID); err != nil {
		return nil, err
	}
	var rows []model.KeyResultModel
	err := db.WithContext(ctx).
		Where("key_result_objective_id = ?", objectiveID).
		Order("key_result_created_at ASC").
		Find(&rows).Error
	return rows, err
}

// LastCheckIn: nil kalau belum pernah check-in.
func LastCheckIn(ctx context.Context, db *gorm.DB, krID uuid.UUID) (*checkInModel.CheckInModel, error) {
	var ci checkInModel.CheckInModel
	err := db.WithContext(ctx).
		Where("check_in_key_result_id = ?", krID).
		Order("check_in_created_at DESC").
		Take(&ci).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

/* ===============================
   Batch refresh (cycle / scheduler)
=================================*/

// RefreshCycle menghitung ulang cache semua KR dalam satu cycle lalu objective-nya.
// Dipanggil saat tanggal cycle berubah.
func RefreshCycle(ctx context.Context, db *gorm.DB, cycleID uuid.UUID, now time.Time) (int, error) {
	var objIDs []uuid.UUID
	if err := db.WithContext(ctx).Model(&objModel.ObjectiveModel{}).
		Where("objective_cycle_id = ?", cycleID).
		Pluck("objective_id", &objIDs).Error; err != nil {
		return 0, err
	}
	n := 0
	for _, oid := range objIDs {
		var krs []model.KeyResultModel
		if err := db.WithContext(ctx).Where("key_result_objective_id = ?", oid).Find(&krs).Error; err != nil {
			return n, err
		}
		for i := range krs {
			if _, err := Recompute(ctx, db, &krs[i], now); err != nil {
				configs.L().Warnf("[WARN] Recompute KR %s gagal: %v", krs[i].KeyResultID, err)
				continue
			}
			n++
		}
		if _, err := objService.RecomputeObjective(ctx, db, oid, now, nil); err != nil {
			configs.L().Warnf("[WARN] Recompute objective %s gagal: %v", oid, err)
		}
	}
	return n, nil
}
