package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/initiatives/initiatives/dto"
	"okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	krService "okrku_backend/internals/features/okr/key_results/service"
	objService "okrku_backend/internals/features/okr/objectives/service"
	"okrku_backend/internals/features/okr/progress"
	orgService "okrku_backend/internals/features/organizations/organizations/service"
	helper "okrku_backend/internals/helpers"
)

var (
	ErrInitiativeClosed = fiber.NewError(fiber.StatusConflict, "Initiative sudah selesai atau dibatalkan")
	ErrLinkMismatch     = fiber.NewError(fiber.StatusUnprocessableEntity, "initiative_key_result_id bukan milik initiative_objective_id")
)

func FindInitiative(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*model.InitiativeModel, error) {
	var m model.InitiativeModel
	if err := db.WithContext(ctx).
		Where("initiative_id = ? AND initiative_organization_id = ?", id, orgID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ensureLinks: KR/objective harus ada di organisasi yang sama; kalau dua-duanya diisi, KR wajib anak objective.
func ensureLinks(ctx context.Context, db *gorm.DB, orgID uuid.UUID, m *model.InitiativeModel) error {
	if m.InitiativeKeyResultID != nil {
		kr, err := krService.FindKeyResult(ctx, db, orgID, *m.InitiativeKeyResultID)
		if err != nil {
			return notFoundAs422(err, "initiative_key_result_id tidak ditemukan")
		}
		if m.InitiativeObjectiveID != nil && kr.KeyResultObjectiveID != *m.InitiativeObjectiveID {
			return ErrLinkMismatch
		}
	}
	if m.InitiativeObjectiveID != nil {
		if _, err := objService.FindObjective(ctx, db, orgID, *m.InitiativeObjectiveID); err != nil {
			return notFoundAs422(err, "initiative_objective_id tidak ditemukan")
		}
	}
	return orgService.EnsureMember(ctx, db, orgID, m.InitiativePICID, "initiative_pic_id")
}

func notFoundAs422(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}
	return err
}

// CreateInitiative selalu mulai dari draft; pembuat dapat poin initiative_created.
func CreateInitiative(ctx context.Context, db *gorm.DB, orgID, actorID uuid.UUID, req dto.CreateInitiativeRequest, awarder gamService.Awarder) (*model.InitiativeModel, error) {
	m, err := req.ToModel(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureLinks(ctx, db, orgID, m); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	if awarder != nil {
		awarder.AwardOnce(ctx, actorID, orgID, engine.EventInitiativeCreated, m.InitiativeID)
	}
	return m, nil
}

func UpdateInitiative(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID, req dto.UpdateInitiativeRequest) (*model.InitiativeModel, error) {
	m, err := FindInitiative(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(m); err != nil {
		return nil, err
	}
	if err := ensureLinks(ctx, db, orgID, m); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteInitiative: soft delete initiative + task, success metric dihapus permanen.
func DeleteInitiative(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) error {
	m, err := FindInitiative(ctx, db, orgID, id)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_initiative_id = ?", m.InitiativeID).Delete(&taskModel.TaskModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("success_metric_initiative_id = ?", m.InitiativeID).Delete(&model.SuccessMetricModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
}

// Close menutup initiative secara manual (selesai/dibatalkan). Status akhir tidak bisa ditutup ulang.
func Close(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID, status string, notes *string, now time.Time) (*model.InitiativeModel, error) {
	m, err := FindInitiative(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	if model.IsTerminal(m.InitiativeStatus) {
		return nil, ErrInitiativeClosed
	}
	updates := map[string]any{"initiative_status": status}
	if notes != nil {
		if v := strings.TrimSpace(*notes); v != "" {
			updates["initiative_closure_notes"] = v
			m.InitiativeClosureNotes = &v
		}
	}
	if status == model.InitiativeStatusDone {
		t := now.UTC()
		updates["initiative_completed_at"] = t
		m.InitiativeCompletedAt = &t
	}
	res := db.WithContext(ctx).Model(&model.InitiativeModel{}).
		Where("initiative_id = ? AND initiative_status = ?", m.InitiativeID, m.InitiativeStatus).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInitiativeClosed
	}
	m.InitiativeStatus = status
	return m, nil
}

/* ===============================
   Listing
=================================*/

type taskCount struct {
	InitiativeID uuid.UUID
	Total        int64
	Completed    int64
}

func taskCounts(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]taskCount, error) {
	out := make(map[uuid.UUID]taskCount, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []taskCount
	err := db.WithContext(ctx).Model(&taskModel.TaskModel{}).
		Select("task_initiative_id AS initiative_id, COUNT(*) AS total, SUM(CASE WHEN task_status = ? THEN 1 ELSE 0 END) AS completed", taskModel.TaskStatusCompleted).
		Where("task_initiative_id IN ?", ids).
		Group("task_initiative_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.InitiativeID] = r
	}
	return out, nil
}

func withTaskCounts(resp *dto.InitiativeResponse, tc taskCount) {
	resp.TaskTotal = tc.Total
	resp.TaskCompleted = tc.Completed
	if tc.Total > 0 {
		resp.TaskProgress = progress.Round2(float64(tc.Completed) / float64(tc.Total) * 100)
	}
}

func ListInitiatives(ctx context.Context, db *gorm.DB, orgID uuid.UUID, f dto.InitiativeFilter, p helper.Paging) ([]dto.InitiativeResponse, int64, error) {
	q := db.WithContext(ctx).Model(&model.InitiativeModel{}).
		Where("initiative_organization_id = ?", orgID)
	if f.Status != "" {
		q = q.Where("initiative_status = ?", f.Status)
	}
	if f.KeyResultID != nil {
		q = q.Where("initiative_key_result_id = ?", *f.KeyResultID)
	}
	if f.ObjectiveID != nil {
		q = q.Where("initiative_objective_id = ?", *f.ObjectiveID)
	}
	if f.PICID != nil {
		q = q.Where("initiative_pic_id = ?", *f.PICID)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("LOWER(initiative_title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.InitiativeModel
	if err := q.Order("initiative_priority_score DESC NULLS LAST").
		Order("initiative_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].InitiativeID
	}
	counts, err := taskCounts(ctx, db, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.InitiativeResponse, 0, len(rows))
	for i := range rows {
		r := dto.FromModel(&rows[i])
		withTaskCounts(&r, counts[rows[i].InitiativeID])
		out = append(out, r)
	}
	return out, total, nil
}

// Detail: initiative + ringkasan task + success metric.
func Detail(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*dto.InitiativeResponse, error) {
	m, err := FindInitiative(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	counts, err := taskCounts(ctx, db, []uuid.UUID{m.InitiativeID})
	if err != nil {
		return nil, err
	}
	ms, err := listMetrics(ctx, db, m.InitiativeID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(m)
	withTaskCounts(&resp, counts[m.InitiativeID])
	resp.SuccessMetrics = make([]dto.SuccessMetricResponse, 0, len(ms))
	for i := range ms {
		resp.SuccessMetrics = append(resp.SuccessMetrics, dto.MetricFromModel(&ms[i]))
	}
	return &resp, nil
}
