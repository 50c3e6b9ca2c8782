package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/gamification/engine"
	"okrku_backend/internals/features/gamification/model"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	helper "okrku_backend/internals/helpers"
	"okrku_backend/internals/helpers/dbtime"
	"okrku_backend/internals/metrics"
)

const EventAchievementUnlocked = "achievement_unlocked"

type Service struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db, Metrics: metrics.Default(), Now: time.Now}
}

type AwardResult struct {
	Stats         model.UserStatsModel `json:"stats"`
	PointsAwarded int                  `json:"points_awarded"`
	LeveledUp     bool                 `json:"leveled_up"`
	Unlocked      []string             `json:"unlocked,omitempty"`
}

/* ===============================
   Mapping model <-> engine.Stats
=================================*/

func ToEngine(m model.UserStatsModel) engine.Stats {
	return engine.Stats{
		TotalPoints:         m.UserStatsTotalPoints,
		Level:               m.UserStatsLevel,
		CurrentStreak:       m.UserStatsCurrentStreak,
		LongestStreak:       m.UserStatsLongestStreak,
		LastActivityDate:    m.UserStatsLastActivityDate,
		ObjectivesCompleted: m.UserStatsObjectivesCompleted,
		KeyResultsCompleted: m.UserStatsKeyResultsCompleted,
		CheckInsCreated:     m.UserStatsCheckInsCreated,
		InitiativesCreated:  m.UserStatsInitiativesCreated,
		TasksCompleted:      m.UserStatsTasksCompleted,
	}
}

func applyEngine(m *model.UserStatsModel, s engine.Stats) {
	m.UserStatsTotalPoints = s.TotalPoints
	m.UserStatsLevel = s.Level
	m.UserStatsCurrentStreak = s.CurrentStreak
	m.UserStatsLongestStreak = s.LongestStreak
	m.UserStatsLastActivityDate = s.LastActivityDate
	m.UserStatsObjectivesCompleted = s.ObjectivesCompleted
	m.UserStatsKeyResultsCompleted = s.KeyResultsCompleted
	m.UserStatsCheckInsCreated = s.CheckInsCreated
	m.UserStatsInitiativesCreated = s.InitiativesCreated
	m.UserStatsTasksCompleted = s.TasksCompleted
}

func statsColumns(m model.UserStatsModel) map[string]any {
	return map[string]any{
		"user_stats_total_points":          m.UserStatsTotalPoints,
		"user_stats_level":                 m.UserStatsLevel,
		"user_stats_current_streak":        m.UserStatsCurrentStreak,
		"user_stats_longest_streak":        m.UserStatsLongestStreak,
		"user_stats_last_activity_date":    m.UserStatsLastActivityDate,
		"user_stats_objectives_completed":  m.UserStatsObjectivesCompleted,
		"user_stats_key_results_completed": m.UserStatsKeyResultsCompleted,
		"user_stats_check_ins_created":     m.UserStatsCheckInsCreated,
		"user_stats_initiatives_created":   m.UserStatsInitiativesCreated,
		"user_stats_tasks_completed":       m.UserStatsTasksCompleted,
	}
}

/* ===============================
   Load helpers
=================================*/

func (s *Service) orgLocation(ctx context.Context, orgID uuid.UUID) *time.Location {
	var tz string
	if err := s.DB.WithContext(ctx).
		Model(&orgModel.OrganizationModel{}).
		Where("organization_id = ?", orgID).
		Limit(1).
		Pluck("organization_timezone", &tz).Error; err != nil {
		configs.L().Warnf("[WARN] Gagal ambil timezone organisasi %s: %v", orgID, err)
	}
	return dbtime.LoadLocation(tz)
}

// LoadOrCreateStats mengambil baris user_stats, membuat baris kosong kalau belum ada.
func (s *Service) LoadOrCreateStats(ctx context.Context, userID, orgID uuid.UUID) (model.UserStatsModel, error) {
	var st model.UserStatsModel
	err := s.DB.WithContext(ctx).
		Where("user_stats_user_id = ? AND user_stats_organization_id = ?", userID, orgID).
		First(&st).Error
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return st, err
	}

	st = model.UserStatsModel{
		UserStatsUserID:         userID,
		UserStatsOrganizationID: orgID,
		UserStatsLevel:          1,
	}
	if err := s.DB.WithContext(ctx).Create(&st).Error; err != nil {
		// request paralel sudah membuat barisnya
		if helper.IsUniqueViolation(err) {
			var again model.UserStatsModel
			if err2 := s.DB.WithContext(ctx).
				Where("user_stats_user_id = ? AND user_stats_organization_id = ?", userID, orgID).
				First(&again).Error; err2 != nil {
				return again, err2
			}
			return again, nil
		}
		return st, err
	}
	return st, nil
}

/* ===============================
   Award
=================================*/

// Award menerapkan event ke statistik user lalu membuka achievement yang memenuhi syarat.
func (s *Service) Award(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, sourceID *uuid.UUID) (*AwardResult, error) {
	if !ev.Valid() {
		return nil, fmt.Errorf("event gamifikasi tidak dikenal: %q", ev)
	}
	if userID == uuid.Nil || orgID == uuid.Nil {
		return nil, errors.New("user/organisasi kosong")
	}

	st, err := s.LoadOrCreateStats(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("load user_stats: %w", err)
	}
	prevLevel := st.UserStatsLevel

	now := s.Now().In(s.orgLocation(ctx, orgID))
	next := engine.ApplyEvent(ToEngine(st), ev, now)
	applyEngine(&st, next)

	if err := s.saveStats(ctx, st); err != nil {
		return nil, err
	}

	points := engine.Points(ev)
	s.logActivity(ctx, userID, orgID, string(ev), points, sourceID, nil)
	s.Metrics.AddPoints(string(ev), points)

	res := &AwardResult{PointsAwarded: points}

	unlocked, bonus, err := s.unlockAchievements(ctx, &st)
	if err != nil {
		configs.L().Warnf("[WARN] Gagal cek achievement user %s: %v", userID, err)
	}
	res.Unlocked = unlocked
	res.PointsAwarded += bonus

	if st.UserStatsLevel > prevLevel {
		res.LeveledUp = true
		s.Metrics.IncLevelUp()
		configs.L().Infof("[LEVEL-UP] User %s naik ke level %d", userID, st.UserStatsLevel)
	}
	res.Stats = st
	return res, nil
}

// AwardBestEffort: dipakai controller; kegagalan hanya di-log, request tetap sukses.
func (s *Service) AwardBestEffort(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, sourceID *uuid.UUID) *AwardResult {
	res, err := s.Award(ctx, userID, orgID, ev, sourceID)
	if err != nil {
		configs.L().Warnf("[WARN] Gagal award %s untuk user %s: %v", ev, userID, err)
		return nil
	}
	return res
}

// Awarder dipakai fitur lain (objective, check-in, initiative, task). nil = tanpa gamifikasi.
type Awarder interface {
	AwardBestEffort(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, sourceID *uuid.UUID) *AwardResult
	AwardOnce(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, sourceID uuid.UUID) *AwardResult
}

// AwardOnce: event yang sama untuk source yang sama hanya diberi poin sekali
// (mis. objective yang selesai, turun, lalu selesai lagi).
func (s *Service) AwardOnce(ctx context.Context, userID, orgID uuid.UUID, ev engine.Event, sourceID uuid.UUID) *AwardResult {
	var n int64
	if err := s.DB.WithContext(ctx).
		Model(&model.ActivityLogModel{}).
		Where("activity_log_organization_id = ? AND activity_log_event = ? AND activity_log_source_id = ?", orgID, string(ev), sourceID).
		Count(&n).Error; err != nil {
		configs.L().Warnf("[WARN] Gagal cek riwayat %s untuk %s: %v", ev, sourceID, err)
		return nil
	}
	if n > 0 {
		return nil
	}
	return s.AwardBestEffort(ctx, userID, orgID, ev, &sourceID)
}

func (s *Service) saveStats(ctx context.Context, st model.UserStatsModel) error {
	if err := s.DB.WithContext(ctx).
		Model(&model.UserStatsModel{}).
		Where("user_stats_id = ?", st.UserStatsID).
		Updates(statsColumns(st)).Error; err != nil {
		return fmt.Errorf("simpan user_stats: %w", err)
	}
	return nil
}

func (s *Service) logActivity(ctx context.Context, userID, orgID uuid.UUID, event string, points int, sourceID *uuid.UUID, meta datatypes.JSON) {
	entry := model.ActivityLogModel{
		ActivityLogUserID:         userID,
		ActivityLogOrganizationID: orgID,
		ActivityLogEvent:          event,
		ActivityLogPoints:         points,
		ActivityLogSourceID:       sourceID,
		ActivityLogMetadata:       meta,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		configs.L().Warnf("[WARN] Gagal insert activity_log: %v", err)
	}
}

func (s *Service) unlockedCodes(ctx context.Context, userID, orgID uuid.UUID) (map[string]bool, error) {
	var codes []string
	if err := s.DB.WithContext(ctx).
		Table("user_achievements ua").
		Joins("JOIN achievements a ON a.achievement_id = ua.user_achievement_achievement_id").
		Where("ua.user_achievement_user_id = ? AND ua.user_achievement_organization_id = ?", userID, orgID).
		Pluck("a.achievement_code", &codes).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(codes))
	for _, c := range codes {
		out[c] = true
	}
	return out, nil
}

// unlockAchievements: scan threshold; reward poin bisa membuka achievement lain (level/total_points),
// jadi diulang sampai tidak ada yang baru.
func (s *Service) unlockAchievements(ctx context.Context, st *model.UserStatsModel) ([]string, int, error) {
	defs, err := ActiveAchievements(ctx, s.DB)
	if err != nil || len(defs) == 0 {
		return nil, 0, err
	}
	already, err := s.unlockedCodes(ctx, st.UserStatsUserID, st.UserStatsOrganizationID)
	if err != nil {
		return nil, 0, err
	}

	byCode := make(map[string]model.AchievementModel, len(defs))
	engDefs := make([]engine.Achievement, 0, len(defs))
	for _, d := range defs {
		byCode[d.AchievementCode] = d
		engDefs = append(engDefs, engine.Achievement{
			Code:         d.AchievementCode,
			Category:     d.AchievementCategory,
			Threshold:    d.AchievementThreshold,
			PointsReward: d.AchievementPointsReward,
			Active:       d.AchievementIsActive,
		})
	}

	var unlocked []string
	bonus := 0
	stats := ToEngine(*st)
	for round := 0; round < len(engDefs); round++ {
		cands := engine.Unlockable(stats, engDefs, already)
		if len(cands) == 0 {
			break
		}
		for _, a := range cands {
			already[a.Code] = true
			d := byCode[a.Code]
			ua := model.UserAchievementModel{
				UserAchievementUserID:         st.UserStatsUserID,
				UserAchievementOrganizationID: st.UserStatsOrganizationID,
				UserAchievementAchievementID:  d.AchievementID,
			}
			if err := s.DB.WithContext(ctx).Create(&ua).Error; err != nil {
				if helper.IsUniqueViolation(err) {
					continue
				}
				return unlocked, bonus, fmt.Errorf("simpan user_achievement: %w", err)
			}
			unlocked = append(unlocked, a.Code)
			stats = engine.AddBonus(stats, a.PointsReward)
			bonus += max(a.PointsReward, 0)

			srcID := d.AchievementID
			s.logActivity(ctx, st.UserStatsUserID, st.UserStatsOrganizationID, EventAchievementUnlocked, a.PointsReward, &srcID,
				datatypes.JSON(fmt.Sprintf(`{"code":%q}`, a.Code)))
			s.Metrics.IncAchievement(a.Code)
			if a.PointsReward > 0 {
				s.Metrics.AddPoints(EventAchievementUnlocked, a.PointsReward)
			}
		}
	}

	if bonus > 0 {
		applyEngine(st, stats)
		if err := s.saveStats(ctx, *st); err != nil {
			return unlocked, bonus, err
		}
	}
	return unlocked, bonus, nil
}
