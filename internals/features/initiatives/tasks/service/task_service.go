package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	iniService "okrku_backend/internals/features/initiatives/initiatives/service"
	"okrku_backend/internals/features/initiatives/tasks/dto"
	"okrku_backend/internals/features/initiatives/tasks/model"
	orgService "okrku_backend/internals/features/organizations/organizations/service"
	helper "okrku_backend/internals/helpers"
)

func FindTask(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*model.TaskModel, error) {
	var t model.TaskModel
	if err := db.WithContext(ctx).
		Where("task_id = ? AND task_organization_id = ?", id, orgID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// setStatus menjaga task_completed_at sejalan dengan status. Return true kalau task baru selesai.
func setStatus(t *model.TaskModel, status string, now time.Time) bool {
	prev := t.TaskStatus
	t.TaskStatus = status
	if status == model.TaskStatusCompleted {
		if prev != model.TaskStatusCompleted || t.TaskCompletedAt == nil {
			ts := now.UTC()
			t.TaskCompletedAt = &ts
			return true
		}
		return false
	}
	t.TaskCompletedAt = nil
	return false
}

// recipient: assignee kalau ada, selain itu user yang menyelesaikan.
func recipient(t *model.TaskModel, actorID uuid.UUID) uuid.UUID {
	if t.TaskAssigneeID != nil {
		return *t.TaskAssigneeID
	}
	return actorID
}

// afterMutation: poin task_completed (sekali per task) + sinkron status initiative.
func afterMutation(ctx context.Context, db *gorm.DB, t *model.TaskModel, actorID uuid.UUID, newlyDone bool, awarder gamService.Awarder) {
	if newlyDone && awarder != nil {
		awarder.AwardOnce(ctx, recipient(t, actorID), t.TaskOrganizationID, engine.EventTaskCompleted, t.TaskID)
	}
	iniService.SyncBestEffort(ctx, db, t.TaskInitiativeID)
}

func CreateTask(ctx context.Context, db *gorm.DB, orgID, initiativeID, actorID uuid.UUID, req dto.CreateTaskRequest, now time.Time, awarder gamService.Awarder) (*model.TaskModel, error) {
	if _, err := iniService.FindInitiative(ctx, db, orgID, initiativeID); err != nil {
		return nil, err
	}
	if err := orgService.EnsureMember(ctx, db, orgID, req.AssigneeID, "task_assignee_id"); err != nil {
		return nil, err
	}
	t, err := req.ToModel(orgID, initiativeID, actorID)
	if err != nil {
		return nil, err
	}
	status := t.TaskStatus
	if status == "" {
		status = model.TaskStatusNotStarted
	}
	newly := setStatus(t, status, now)
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	afterMutation(ctx, db, t, actorID, newly, awarder)
	return t, nil
}

func UpdateTask(ctx context.Context, db *gorm.DB, orgID, id, actorID uuid.UUID, req dto.UpdateTaskRequest, now time.Time, awarder gamService.Awarder) (*model.TaskModel, error) {
	t, err := FindTask(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != nil {
		if err := orgService.EnsureMember(ctx, db, orgID, req.AssigneeID, "task_assignee_id"); err != nil {
			return nil, err
		}
	}
	if err := req.Apply(t); err != nil {
		return nil, err
	}
	newly := false
	if req.Status != nil {
		newly = setStatus(t, *req.Status, now)
	}
	if err := db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, err
	}
	afterMutation(ctx, db, t, actorID, newly, awarder)
	return t, nil
}

func UpdateTaskStatus(ctx context.Context, db *gorm.DB, orgID, id, actorID uuid.UUID, status string, now time.Time, awarder gamService.Awarder) (*model.TaskModel, error) {
	return UpdateTask(ctx, db, orgID, id, actorID, dto.UpdateTaskRequest{Status: &status}, now, awarder)
}

// DeleteTask: soft delete lalu sinkron (status initiative tidak mundur).
func DeleteTask(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) error {
	t, err := FindTask(ctx, db, orgID, id)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(t).Error; err != nil {
		return err
	}
	iniService.SyncBestEffort(ctx, db, t.TaskInitiativeID)
	return nil
}

func ListTasks(ctx context.Context, db *gorm.DB, orgID uuid.UUID, f dto.TaskFilter, now time.Time, p helper.Paging) ([]model.TaskModel, int64, error) {
	if f.InitiativeID != nil {
		if _, err := iniService.FindInitiative(ctx, db, orgID, *f.InitiativeID); err != nil {
			return nil, 0, err
		}
	}
	q := db.WithContext(ctx).Model(&model.TaskModel{}).Where("task_organization_id = ?", orgID)
	if f.InitiativeID != nil {
		q = q.Where("task_initiative_id = ?", *f.InitiativeID)
	}
	if f.AssigneeID != nil {
		q = q.Where("task_assignee_id = ?", *f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("task_status = ?", f.Status)
	}
	if f.OverdueOnly {
		q = q.Where("task_due_date < ? AND task_status NOT IN ?", now.UTC(),
			[]string{model.TaskStatusCompleted, model.TaskStatusCancelled})
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("LOWER(task_title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.TaskModel
	err := q.Order("task_due_date IS NULL").
		Order("task_due_date ASC").
		Order("task_created_at ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

// CountOverdue dipakai dashboard.
func CountOverdue(ctx context.Context, db *gorm.DB, orgID uuid.UUID, assigneeID *uuid.UUID, now time.Time) (int64, error) {
	q := db.WithContext(ctx).Model(&model.TaskModel{}).
		Where("task_organization_id = ? AND task_due_date < ? AND task_status NOT IN ?", orgID, now.UTC(),
			[]string{model.TaskStatusCompleted, model.TaskStatusCancelled})
	if assigneeID != nil {
		q = q.Where("task_assignee_id = ?", *assigneeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
