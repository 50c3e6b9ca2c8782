package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	initiativeModel "okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	"okrku_backend/internals/metrics"
)

type TaskSignal struct {
	Status string
}

type MetricSignal struct {
	Achievement string
}

// HasAchievement: nilai achievement sudah diisi (bukan "" dan bukan angka 0).
func (m MetricSignal) HasAchievement() bool {
	s := strings.TrimSpace(m.Achievement)
	if s == "" {
		return false
	}
	s = strings.TrimSuffix(s, "%")
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return v != 0
	}
	return true
}

// NextStatus menentukan status initiative dari aktivitas task & success metric.
func NextStatus(current string, tasks []TaskSignal, metrics []MetricSignal) string {
	current = strings.TrimSpace(current)
	if initiativeModel.IsTerminal(current) {
		return current
	}

	for _, t := range tasks {
		if t.Status == taskModel.TaskStatusInProgress || t.Status == taskModel.TaskStatusCompleted {
			return initiativeModel.InitiativeStatusInProgress
		}
	}
	for _, m := range metrics {
		if m.HasAchievement() {
			return initiativeModel.InitiativeStatusInProgress
		}
	}

	if current == "" {
		return initiativeModel.InitiativeStatusDraft
	}
	return current
}

// SyncInitiativeStatus memuat task & metric lalu update status satu baris kalau berubah.
// Aman dipanggil berulang.
func SyncInitiativeStatus(ctx context.Context, db *gorm.DB, initiativeID uuid.UUID) (bool, string, error) {
	var ini initiativeModel.InitiativeModel
	if err := db.WithContext(ctx).
		Select("initiative_id", "initiative_status").
		Where("initiative_id = ?", initiativeID).
		First(&ini).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", err
		}
		return false, "", fmt.Errorf("load initiative: %w", err)
	}
	if initiativeModel.IsTerminal(ini.InitiativeStatus) {
		return false, ini.InitiativeStatus, nil
	}

	var taskStatuses []string
	if err := db.WithContext(ctx).
		Model(&taskModel.TaskModel{}).
		Where("task_initiative_id = ?", initiativeID).
		Pluck("task_status", &taskStatuses).Error; err != nil {
		return false, ini.InitiativeStatus, fmt.Errorf("load tasks: %w", err)
	}

	var achievements []string
	if err := db.WithContext(ctx).
		Model(&initiativeModel.SuccessMetricModel{}).
		Where("success_metric_initiative_id = ?", initiativeID).
		Pluck("success_metric_achievement", &achievements).Error; err != nil {
		return false, ini.InitiativeStatus, fmt.Errorf("load success metrics: %w", err)
	}

	tasks := make([]TaskSignal, len(taskStatuses))
	for i, s := range taskStatuses {
		tasks[i] = TaskSignal{Status: s}
	}
	ms := make([]MetricSignal, len(achievements))
	for i, a := range achievements {
		ms[i] = MetricSignal{Achievement: a}
	}

	next := NextStatus(ini.InitiativeStatus, tasks, ms)
	if next == ini.InitiativeStatus {
		return false, next, nil
	}

	// guard status lama di WHERE: kalau request lain sudah mengubah, tidak ditimpa
	res := db.WithContext(ctx).
		Model(&initiativeModel.InitiativeModel{}).
		Where("initiative_id = ? AND initiative_status = ?", initiativeID, ini.InitiativeStatus).
		Update("initiative_status", next)
	if res.Error != nil {
		return false, ini.InitiativeStatus, fmt.Errorf("update initiative status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, ini.InitiativeStatus, nil
	}

	metrics.Default().IncInitiativeTransition(ini.InitiativeStatus, next)
	configs.L().Infof("[INFO] Initiative %s: %s → %s", initiativeID, ini.InitiativeStatus, next)
	return true, next, nil
}

// SyncBestEffort dipakai controller: error hanya di-log.
func SyncBestEffort(ctx context.Context, db *gorm.DB, initiativeID uuid.UUID) string {
	_, status, err := SyncInitiativeStatus(ctx, db, initiativeID)
	if err != nil {
		configs.L().Warnf("[WARN] Gagal sinkron status initiative %s: %v", initiativeID, err)
	}
	return status
}
