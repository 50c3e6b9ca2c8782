package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/okr/cycles/dto"
	"okrku_backend/internals/features/okr/cycles/model"
	krService "okrku_backend/internals/features/okr/key_results/service"
	objModel "okrku_backend/internals/features/okr/objectives/model"
	"okrku_backend/internals/features/okr/progress"
	helper "okrku_backend/internals/helpers"
)

var (
	ErrCycleInUse    = fiber.NewError(fiber.StatusConflict, "Cycle masih memiliki objective")
	ErrNoActiveCycle = fiber.NewError(fiber.StatusNotFound, "Belum ada cycle aktif")
)

func FindCycle(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) (*model.CycleModel, error) {
	var c model.CycleModel
	if err := db.WithContext(ctx).
		Where("cycle_id = ? AND cycle_organization_id = ?", id, orgID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateCycle(ctx context.Context, db *gorm.DB, orgID uuid.UUID, req dto.CreateCycleRequest) (*model.CycleModel, error) {
	c, err := req.ToModel(orgID)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCycle; kalau tanggal berubah, cache time progress semua KR di cycle dihitung ulang.
func UpdateCycle(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID, req dto.UpdateCycleRequest, now time.Time) (*model.CycleModel, error) {
	c, err := FindCycle(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	datesChanged, err := req.Apply(c)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	if datesChanged {
		n, err := krService.RefreshCycle(ctx, db, c.CycleID, now)
		if err != nil {
			configs.L().Warnf("[WARN] Refresh KR cycle %s gagal: %v", c.CycleID, err)
		} else {
			configs.L().Infof("[INFO] Cycle %s berubah tanggal, %d KR dihitung ulang", c.CycleID, n)
		}
	}
	return c, nil
}

func DeleteCycle(ctx context.Context, db *gorm.DB, orgID, id uuid.UUID) error {
	c, err := FindCycle(ctx, db, orgID, id)
	if err != nil {
		return err
	}
	var n int64
	if err := db.WithContext(ctx).Model(&objModel.ObjectiveModel{}).
		Where("objective_cycle_id = ?", c.CycleID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrCycleInUse
	}
	return db.WithContext(ctx).Delete(c).Error
}

func ListCycles(ctx context.Context, db *gorm.DB, orgID uuid.UUID, status, q string, p helper.Paging, now time.Time) ([]dto.CycleResponse, int64, error) {
	base := db.WithContext(ctx).Model(&model.CycleModel{}).Where("cycle_organization_id = ?", orgID)
	if status != "" {
		base = base.Where("cycle_status = ?", status)
	}
	if s := strings.ToLower(strings.TrimSpace(q)); s != "" {
		base = base.Where("LOWER(cycle_name) LIKE ?", "%"+s+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.CycleModel
	if err := base.Order("cycle_start_date DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	counts := map[uuid.UUID]int64{}
	if len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.CycleID)
		}
		var agg []struct {
			CycleID uuid.UUID `gorm:"column:cycle_id"`
			N       int64     `gorm:"column:n"`
		}
		if err := db.WithContext(ctx).Model(&objModel.ObjectiveModel{}).
			Select("objective_cycle_id AS cycle_id, COUNT(*) AS n").
			Where("objective_cycle_id IN ?", ids).
			Group("objective_cycle_id").
			Scan(&agg).Error; err != nil {
			return nil, 0, err
		}
		for _, a := range agg {
			counts[a.CycleID] = a.N
		}
	}

	out := make([]dto.CycleResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToResponse(&rows[i], now, counts[rows[i].CycleID]))
	}
	return out, total, nil
}

// CountObjectives: jumlah objective (belum dihapus) di sebuah cycle.
func CountObjectives(ctx context.Context, db *gorm.DB, cycleID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&objModel.ObjectiveModel{}).
		Where("objective_cycle_id = ?", cycleID).Count(&n).Error
	return n, err
}

func ToResponse(c *model.CycleModel, now time.Time, objectives int64) dto.CycleResponse {
	r := dto.FromModel(c)
	start, end := c.Window()
	r.TimeProgress = progress.Round2(progress.TimeProgress(start, end, now))
	r.ObjectiveCount = objectives
	return r
}

// ActiveCycle: cycle berstatus active yang mencakup now; kalau tidak ada,
// active terbaru; kalau tetap tidak ada, cycle apa pun yang mencakup now.
func ActiveCycle(ctx context.Context, db *gorm.DB, orgID uuid.UUID, now time.Time) (*model.CycleModel, error) {
	var rows []model.CycleModel
	if err := db.WithContext(ctx).
		Where("cycle_organization_id = ? AND cycle_status <> ?", orgID, model.CycleStatusCompleted).
		Order("cycle_start_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	var activeLatest, covering *model.CycleModel
	for i := range rows {
		c := &rows[i]
		if c.CycleStatus == model.CycleStatusActive {
			if c.Contains(now) {
				return c, nil
			}
			if activeLatest == nil {
				activeLatest = c
			}
		}
		if covering == nil && c.Contains(now) {
			covering = c
		}
	}
	switch {
	case activeLatest != nil:
		return activeLatest, nil
	case covering != nil:
		return covering, nil
	default:
		return nil, ErrNoActiveCycle
	}
}

// IsNoActiveCycle dipakai dashboard untuk membedakan "kosong" dari error DB.
func IsNoActiveCycle(err error) bool {
	return errors.Is(err, ErrNoActiveCycle)
}
