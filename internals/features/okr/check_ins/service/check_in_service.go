package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/features/gamification/engine"
	gamService "okrku_backend/internals/features/gamification/service"
	"okrku_backend/internals/features/okr/check_ins/dto"
	"okrku_backend/internals/features/okr/check_ins/model"
	krModel "okrku_backend/internals/features/okr/key_results/model"
	krService "okrku_backend/internals/features/okr/key_results/service"
	"okrku_backend/internals/features/okr/progress"
	helper "okrku_backend/internals/helpers"
)

var ErrValueRequired = fiber.NewError(fiber.StatusUnprocessableEntity, "check_in_value wajib diisi")

// jumlah check-in terakhir yang dipakai menghitung tren
const trendWindow = 10

// CreateCheckIn mencatat check-in (immutable), memperbarui nilai KR, menghitung ulang
// KR + objective, lalu memberi poin check_in_created (dan key_result_completed saat pertama 100%).
func CreateCheckIn(ctx context.Context, db *gorm.DB, orgID, krID, actorID uuid.UUID, req dto.CreateCheckInRequest, now time.Time, awarder gamService.Awarder) (*model.CheckInModel, *krModel.KeyResultModel, error) {
	value, ok := req.ResolveValue()
	if !ok {
		return nil, nil, ErrValueRequired
	}
	kr, err := krService.FindKeyResult(ctx, db, orgID, krID)
	if err != nil {
		return nil, nil, err
	}

	confidence := req.Confidence
	if confidence == 0 {
		confidence = 5
	}
	ci := &model.CheckInModel{
		CheckInKeyResultID:    kr.KeyResultID,
		CheckInOrganizationID: orgID,
		CheckInValue:          value,
		CheckInPreviousValue:  kr.KeyResultCurrentValue,
		CheckInProgress:       progress.Round2(progress.Calculate(value, kr.KeyResultTargetValue, kr.KeyResultBaseValue, kr.KeyResultType)),
		CheckInConfidence:     confidence,
		CheckInNotes:          req.Notes,
		CheckInCreatedBy:      actorID,
		CheckInCreatedAt:      now.UTC(),
	}

	at := now.UTC()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ci).Error; err != nil {
			return err
		}
		return tx.Model(&krModel.KeyResultModel{}).
			Where("key_result_id = ?", kr.KeyResultID).
			Updates(map[string]any{
				"key_result_current_value":    value,
				"key_result_confidence":       confidence,
				"key_result_last_check_in_at": at,
			}).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("simpan check-in: %w", err)
	}
	kr.KeyResultCurrentValue = value
	kr.KeyResultConfidence = &confidence
	kr.KeyResultLastCheckInAt = &at

	if awarder != nil {
		src := ci.CheckInID
		awarder.AwardBestEffort(ctx, actorID, orgID, engine.EventCheckInCreated, &src)
	}
	if err := krService.AfterValueChange(ctx, db, kr, actorID, now, awarder); err != nil {
		return ci, kr, err
	}
	return ci, kr, nil
}

// History: check-in terbaru dulu + tren dari beberapa check-in terakhir.
func History(ctx context.Context, db *gorm.DB, orgID, krID uuid.UUID, p helper.Paging) (*dto.HistoryResponse, int64, error) {
	if _, err := krService.FindKeyResult(ctx, db, orgID, krID); err != nil {
		return nil, 0, err
	}
	q := db.WithContext(ctx).Model(&model.CheckInModel{}).Where("check_in_key_result_id = ?", krID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.CheckInModel
	if err := q.Session(&gorm.Session{}).
		Order("check_in_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	var recent []model.CheckInModel
	if err := q.Session(&gorm.Session{}).
		Order("check_in_created_at DESC").
		Limit(trendWindow).
		Find(&recent).Error; err != nil {
		return nil, 0, err
	}

	items := make([]dto.CheckInResponse, 0, len(rows))
	for i := range rows {
		items = append(items, dto.FromModel(&rows[i]))
	}
	return &dto.HistoryResponse{Items: items, Trend: ComputeTrend(recent)}, total, nil
}

// ComputeTrend: urutan input bebas; dihitung dari yang paling lama ke terbaru.
func ComputeTrend(rows []model.CheckInModel) dto.Trend {
	t := dto.Trend{Direction: dto.TrendFlat, Count: len(rows)}
	if len(rows) == 0 {
		return t
	}
	first, last := rows[0], rows[0]
	sumConf := 0
	for _, r := range rows {
		sumConf += r.CheckInConfidence
		if r.CheckInCreatedAt.Before(first.CheckInCreatedAt) {
			first = r
		}
		if !r.CheckInCreatedAt.Before(last.CheckInCreatedAt) {
			last = r
		}
	}
	fa, la := first.CheckInCreatedAt, last.CheckInCreatedAt
	t.FirstAt, t.LastAt = &fa, &la
	t.AverageConfidence = progress.Round2(float64(sumConf) / float64(len(rows)))

	t.ProgressDelta = progress.Round2(last.CheckInProgress - first.CheckInProgress)
	switch {
	case t.ProgressDelta > 0:
		t.Direction = dto.TrendUp
	case t.ProgressDelta < 0:
		t.Direction = dto.TrendDown
	}
	return t
}
