package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	"okrku_backend/internals/features/okr/objectives/dto"
	"okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
	orgService "okrku_backend/internals/features/organizations/organizations/service"
	teamModel "okrku_backend/internals/features/organizations/teams/model"
	helper "okrku_backend/internals/helpers"
	"okrku_backend/internals/metrics"
)

var (
	ErrParentSelf      = fiber.NewError(fiber.StatusUnprocessableEntity, "Objective tidak boleh menjadi parent dirinya sendiri")
	ErrParentCycle     = fiber.NewError(fiber.StatusUnprocessableEntity, "Parent objective harus berada di cycle yang sama")
	ErrParentCycleLoop = fiber.NewError(fiber.StatusUnprocessableEntity, "Parent objective tidak boleh turunan dari objective ini")
	ErrCycleNotFound   = fiber.NewError(fiber.StatusUnprocessableEntity, "Cycle tidak ditemukan di organisasi ini")
	ErrOwnerTeam       = fiber.NewError(fiber.StatusUnprocessableEntity, "Tim owner tidak ditemukan di organisasi ini")
)

// batas kedalaman saat menelusuri rantai parent
const maxParentDepth = 64

func FindObjective(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*model.ObjectiveModel, error) {
	var o model.ObjectiveModel
	if err := db.WithContext(ctx).
		Where("objective_id = ? AND objective_organization_id = ?", id, orgID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func FindCycle(ctx context.Context, db *gorm.DB, orgID, cycleID uuid.UUID) (*cycleModel.CycleModel, error) {
	var c cycleModel.CycleModel
	err := db.WithContext(ctx).
		Where("cycle_id = ? AND cycle_organization_id = ?", cycleID, orgID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCycleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

/* ===============================
   Guards
=================================*/

func ensureOwner(ctx context.Context, db *gorm.DB, orgID uuid.UUID, ownerType string, ownerID uuid.UUID) error {
	if ownerType == model.OwnerTypeTeam {
		var n int64
		if err := db.WithContext(ctx).Model(&teamModel.TeamModel{}).
			Where("team_id = ? AND team_organization_id = ?", ownerID, orgID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrOwnerTeam
		}
		return nil
	}
	return orgService.EnsureMember(ctx, db, orgID, &ownerID, "objective_owner_id")
}

// ensureParent: parent harus ada di org yang sama, cycle yang sama, dan bukan
// objective itu sendiri atau turunannya.
func ensureParent(ctx context.Context, db *gorm.DB, orgID uuid.UUID, selfID *uuid.UUID, cycleID, parentID uuid.UUID) error {
	if selfID != nil && *selfID == parentID {
		return ErrParentSelf
	}
	parent, err := FindObjective(ctx, db, orgID, parentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Parent objective tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if parent.ObjectiveCycleID != cycleID {
		return ErrParentCycle
	}
	if selfID == nil {
		return nil
	}

	// telusuri ke atas dari parent; kalau ketemu diri sendiri berarti siklus
	cur := parent.ObjectiveParentID
	for depth := 0; cur != nil && depth < maxParentDepth; depth++ {
		if *cur == *selfID {
			return ErrParentCycleLoop
		}
		var next model.ObjectiveModel
		if err := db.WithContext(ctx).
			Select("objective_id", "objective_parent_id").
			Where("objective_id = ?", *cur).
			First(&next).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		cur = next.ObjectiveParentID
	}
	if cur != nil {
		return ErrParentCycleLoop
	}
	return nil
}

/* ===============================
   CRUD
=================================*/

func CreateObjective(ctx context.Context, db *gorm.DB, orgID, actorID uuid.UUID, req dto.CreateObjectiveRequest, now time.Time) (*model.ObjectiveModel, error) {
	if _, err := FindCycle(ctx, db, orgID, req.CycleID); err != nil {
		return nil, err
	}
	o := req.ToModel(orgID, actorID)
	if err := ensureOwner(ctx, db, orgID, o.ObjectiveOwnerType, o.ObjectiveOwnerID); err != nil {
		return nil, err
	}
	if o.ObjectiveParentID != nil {
		if err := ensureParent(ctx, db, orgID, nil, o.ObjectiveCycleID, *o.ObjectiveParentID); err != nil {
			return nil, err
		}
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	if o.ObjectiveStatus == model.ObjectiveStatusNotStarted {
		// status awal mengikuti waktu siklus (bisa langsung behind kalau siklus sudah jalan)
		return RecomputeObjective(ctx, db, o.ObjectiveID, now, nil)
	}
	return o, nil
}

func UpdateObjective(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID, req dto.UpdateObjectiveRequest, now time.Time, awarder gamService.Awarder) (*model.ObjectiveModel, error) {
	o, err := FindObjective(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	cycleID := o.ObjectiveCycleID
	if req.CycleID != nil && *req.CycleID != o.ObjectiveCycleID {
		if _, err := FindCycle(ctx, db, orgID, *req.CycleID); err != nil {
			return nil, err
		}
		cycleID = *req.CycleID
		updates["objective_cycle_id"] = cycleID
	}

	parentID := o.ObjectiveParentID
	if req.ParentID != nil {
		if *req.ParentID == uuid.Nil {
			parentID = nil
			updates["objective_parent_id"] = nil
		} else {
			p := *req.ParentID
			parentID = &p
			updates["objective_parent_id"] = p
		}
	}
	if parentID != nil && (req.ParentID != nil || req.CycleID != nil) {
		if err := ensureParent(ctx, db, orgID, &o.ObjectiveID, cycleID, *parentID); err != nil {
			return nil, err
		}
	}

	ownerType, ownerID := o.ObjectiveOwnerType, o.ObjectiveOwnerID
	if req.OwnerType != nil {
		ownerType = *req.OwnerType
	}
	if req.OwnerID != nil && *req.OwnerID != uuid.Nil {
		ownerID = *req.OwnerID
	}
	if ownerType != o.ObjectiveOwnerType || ownerID != o.ObjectiveOwnerID {
		if err := ensureOwner(ctx, db, orgID, ownerType, ownerID); err != nil {
			return nil, err
		}
		updates["objective_owner_type"] = ownerType
		updates["objective_owner_id"] = ownerID
	}

	if req.Title != nil {
		updates["objective_title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d == "" {
			updates["objective_description"] = nil
		} else {
			updates["objective_description"] = d
		}
	}
	if req.Tags != nil {
		updates["objective_tags"] = datatypes.JSONSlice[string](dto.NormalizeTags(req.Tags))
	}
	if req.Status != nil {
		updates["objective_status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(o).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	// cycle/status bisa mengubah status turunan
	return RecomputeObjective(ctx, db, id, now, awarder)
}

// DeleteObjective: soft delete objective + KR-nya; child dilepas dari parent.
func DeleteObjective(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) error {
	o, err := FindObjective(ctx, db, orgID, id)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ObjectiveModel{}).
			Where("objective_parent_id = ?", o.ObjectiveID).
			Update("objective_parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("key_result_objective_id = ?", o.ObjectiveID).
			Delete(&krModel.KeyResultModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(o).Error
	})
}

func applyFilter(q *gorm.DB, f dto.ObjectiveFilter) *gorm.DB {
	if f.CycleID != nil {
		q = q.Where("objective_cycle_id = ?", *f.CycleID)
	}
	if f.OwnerType != "" {
		q = q.Where("objective_owner_type = ?", f.OwnerType)
	}
	if f.OwnerID != nil {
		q = q.Where("objective_owner_id = ?", *f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("objective_status = ?", f.Status)
	}
	if f.ParentID != nil {
		q = q.Where("objective_parent_id = ?", *f.ParentID)
	} else if f.RootOnly {
		q = q.Where("objective_parent_id IS NULL")
	}
	if s := strings.ToLower(strings.TrimSpace(f.Q)); s != "" {
		q = q.Where("LOWER(objective_title) LIKE ?", "%"+s+"%")
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		if q.Dialector.Name() == "postgres" {
			b, _ := sonic.MarshalString([]string{tag})
			q = q.Where("objective_tags @> ?::jsonb", b)
		} else {
			b, _ := sonic.MarshalString(tag)
			q = q.Where("objective_tags LIKE ?", "%"+b+"%")
		}
	}
	return q
}

func orderBy(sort string) string {
	switch sort {
	case "progress_asc":
		return "objective_progress ASC"
	case "progress_desc":
		return "objective_progress DESC"
	case "title":
		return "objective_title ASC"
	case "oldest":
		return "objective_created_at ASC"
	default:
		return "objective_created_at DESC"
	}
}

func ListObjectives(ctx context.Context, db *gorm.DB, orgID uuid.UUID, f dto.ObjectiveFilter, p helper.Paging) ([]dto.ObjectiveResponse, int64, error) {
	q := applyFilter(db.WithContext(ctx).Model(&model.ObjectiveModel{}).
		Where("objective_organization_id = ?", orgID), f)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ObjectiveModel
	if err := q.Order(orderBy(f.Sort)).Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	counts, err := countKeyResults(ctx, db, rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ObjectiveResponse, 0, len(rows))
	for i := range rows {
		r := dto.FromModel(&rows[i])
		r.KeyResultCount = counts[rows[i].ObjectiveID]
		out = append(out, r)
	}
	return out, total, nil
}

func countKeyResults(ctx context.Context, db *gorm.DB, rows []model.ObjectiveModel) (map[uuid.UUID]int64, error) {
	counts := map[uuid.UUID]int64{}
	if len(rows) == 0 {
		return counts, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ObjectiveID)
	}
	var agg []struct {
		ObjectiveID uuid.UUID `gorm:"column:objective_id"`
		N           int64     `gorm:"column:n"`
	}
	if err := db.WithContext(ctx).Model(&krModel.KeyResultModel{}).
		Select("key_result_objective_id AS objective_id, COUNT(*) AS n").
		Where("key_result_objective_id IN ?", ids).
		Group("key_result_objective_id").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	for _, a := range agg {
		counts[a.ObjectiveID] = a.N
	}
	return counts, nil
}

// Tree menyusun objective dalam satu cycle menjadi pohon parent → child.
func Tree(ctx context.Context, db *gorm.DB, orgID, cycleID uuid.UUID) ([]*dto.ObjectiveNode, error) {
	var rows []model.ObjectiveModel
	if err := db.WithContext(ctx).
		Where("objective_organization_id = ? AND objective_cycle_id = ?", orgID, cycleID).
		Order("objective_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return BuildTree(rows), nil
}

// BuildTree: node yang parent-nya tidak ada di daftar dijadikan root.
func BuildTree(rows []model.ObjectiveModel) []*dto.ObjectiveNode {
	nodes := make(map[uuid.UUID]*dto.ObjectiveNode, len(rows))
	for i := range rows {
		nodes[rows[i].ObjectiveID] = &dto.ObjectiveNode{
			ObjectiveResponse: dto.FromModel(&rows[i]),
			Children:          []*dto.ObjectiveNode{},
		}
	}
	roots := make([]*dto.ObjectiveNode, 0)
	for i := range rows {
		n := nodes[rows[i].ObjectiveID]
		if pid := rows[i].ObjectiveParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

/* ===============================
   Recompute (cache progress + status)
=================================*/

// RecomputeObjective menghitung ulang progress (rata-rata KR) dan status turunan.
// Status manual (draft/cancelled) tidak ditimpa. Saat pertama kali completed,
// owner (atau lead tim) mendapat poin objective_completed.
func RecomputeObjective(ctx context.Context, db *gorm.DB, objectiveID uuid.UUID, now time.Time, awarder gamService.Awarder) (*model.ObjectiveModel, error) {
	var o model.ObjectiveModel
	if err := db.WithContext(ctx).Where("objective_id = ?", objectiveID).First(&o).Error; err != nil {
		return nil, err
	}

	var krs []krModel.KeyResultModel
	if err := db.WithContext(ctx).
		Select("key_result_id", "key_result_type", "key_result_base_value", "key_result_target_value", "key_result_current_value").
		Where("key_result_objective_id = ?", objectiveID).
		Find(&krs).Error; err != nil {
		return nil, fmt.Errorf("load key results: %w", err)
	}
	values := make([]float64, 0, len(krs))
	for _, kr := range krs {
		values = append(values, kr.Progress())
	}
	p := progress.Round2(progress.ObjectiveProgress(values))

	status := o.ObjectiveStatus
	if !model.IsManualStatus(status) {
		if len(krs) == 0 {
			status = model.ObjectiveStatusNotStarted
		} else {
			tp := 0.0
			var cy cycleModel.CycleModel
			if err := db.WithContext(ctx).Where("cycle_id = ?", o.ObjectiveCycleID).First(&cy).Error; err == nil {
				start, end := cy.Window()
				tp = progress.TimeProgress(start, end, now)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load cycle: %w", err)
			}
			status = string(progress.DeriveStatus(p, tp))
		}
	}

	completedAt := o.ObjectiveCompletedAt
	newlyCompleted := false
	if status == model.ObjectiveStatusCompleted {
		if completedAt == nil {
			t := now.UTC()
			completedAt = &t
			newlyCompleted = true
		}
	} else {
		completedAt = nil
	}

	if err := db.WithContext(ctx).Model(&model.ObjectiveModel{}).
		Where("objective_id = ?", objectiveID).
		Updates(map[string]any{
			"objective_progress":     p,
			"objective_status":       status,
			"objective_completed_at": completedAt,
		}).Error; err != nil {
		return nil, fmt.Errorf("update objective cache: %w", err)
	}
	metrics.Default().IncRecompute("objective")

	o.ObjectiveProgress = p
	o.ObjectiveStatus = status
	o.ObjectiveCompletedAt = completedAt

	if newlyCompleted && awarder != nil {
		if recipient := completionRecipient(ctx, db, &o); recipient != uuid.Nil {
			awarder.AwardOnce(ctx, recipient, o.ObjectiveOrganizationID, engine.EventObjectiveCompleted, o.ObjectiveID)
		}
		configs.L().Infof("[INFO] Objective %s selesai (%.2f%%)", o.ObjectiveID, p)
	}
	return &o, nil
}

// completionRecipient: owner user, atau lead tim; fallback ke pembuat objective.
func completionRecipient(ctx context.Context, db *gorm.DB, o *model.ObjectiveModel) uuid.UUID {
	if o.ObjectiveOwnerType != model.OwnerTypeTeam {
		return o.ObjectiveOwnerID
	}
	var t teamModel.TeamModel
	if err := db.WithContext(ctx).Select("team_id", "team_lead_user_id").
		Where("team_id = ?", o.ObjectiveOwnerID).First(&t).Error; err == nil && t.TeamLeadUserID != nil {
		return *t.TeamLeadUserID
	}
	if o.ObjectiveCreatedBy != nil {
		return *o.ObjectiveCreatedBy
	}
	return uuid.Nil
}

// RecomputeOrganization dipakai command recompute; orgID nil = semua organisasi.
func RecomputeOrganization(ctx context.Context, db *gorm.DB, orgID *uuid.UUID, now time.Time) (int, error) {
	q := db.WithContext(ctx).Model(&model.ObjectiveModel{})
	if orgID != nil {
		q = q.Where("objective_organization_id = ?", *orgID)
	}
	var ids []uuid.UUID
	if err := q.Pluck("objective_id", &ids).Error; err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if _, err := RecomputeObjective(ctx, db, id, now, nil); err != nil {
			configs.L().Warnf("[WARN] Recompute objective %s gagal: %v", id, err)
			continue
		}
		n++
	}
	return n, nil
}
