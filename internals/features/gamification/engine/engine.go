// Package engine: reducer murni untuk poin, level, streak, dan achievement.
package engine

import "time"

type Event string

const (
	EventObjectiveCompleted Event = "objective_completed"
	EventKeyResultCompleted Event = "key_result_completed"
	EventCheckInCreated     Event = "check_in_created"
	EventInitiativeCreated  Event = "initiative_created"
	EventTaskCompleted      Event = "task_completed"
)

var pointsByEvent = map[Event]int{
	EventObjectiveCompleted: 100,
	EventKeyResultCompleted: 50,
	EventCheckInCreated:     10,
	EventInitiativeCreated:  20,
	EventTaskCompleted:      5,
}

// Points: poin untuk event; event tidak dikenal → 0.
func Points(ev Event) int { return pointsByEvent[ev] }

func (ev Event) Valid() bool {
	_, ok := pointsByEvent[ev]
	return ok
}

const (
	levelBasePoints = 100
	levelStepPoints = 50
)

// Level dari total poin: 1 sampai 99 poin, lalu naik tiap 50 poin.
func Level(points int) int {
	if points < levelBasePoints {
		return 1
	}
	return (points-levelBasePoints)/levelStepPoints + 2
}

// PointsForLevel: poin minimum untuk mencapai level.
func PointsForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return levelBasePoints + (level-2)*levelStepPoints
}

type Stats struct {
	TotalPoints   int
	Level         int
	CurrentStreak int
	LongestStreak int
	// tanggal (00:00 di timezone organisasi) aktivitas terakhir
	LastActivityDate *time.Time

	ObjectivesCompleted int
	KeyResultsCompleted int
	CheckInsCreated     int
	InitiativesCreated  int
	TasksCompleted      int
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextStreak: hari sama → tetap; tepat kemarin → +1; selain itu → 1.
// today harus sudah dalam timezone organisasi.
func NextStreak(last *time.Time, current int, today time.Time) int {
	if last == nil || current <= 0 {
		return 1
	}
	l := last.In(today.Location())
	if sameDay(l, today) {
		return current
	}
	if sameDay(l, today.AddDate(0, 0, -1)) {
		return current + 1
	}
	return 1
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ApplyEvent menghasilkan Stats baru; input tidak dimutasi.
func ApplyEvent(s Stats, ev Event, now time.Time) Stats {
	if !ev.Valid() {
		return s
	}

	switch ev {
	case EventObjectiveCompleted:
		s.ObjectivesCompleted++
	case EventKeyResultCompleted:
		s.KeyResultsCompleted++
	case EventCheckInCreated:
		s.CheckInsCreated++
	case EventInitiativeCreated:
		s.InitiativesCreated++
	case EventTaskCompleted:
		s.TasksCompleted++
	}

	s.TotalPoints += Points(ev)
	s.Level = Level(s.TotalPoints)

	s.CurrentStreak = NextStreak(s.LastActivityDate, s.CurrentStreak, now)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	today := dateOf(now)
	s.LastActivityDate = &today
	return s
}

// AddBonus menambah poin reward achievement (tanpa counter/streak).
func AddBonus(s Stats, points int) Stats {
	if points <= 0 {
		return s
	}
	s.TotalPoints += points
	s.Level = Level(s.TotalPoints)
	return s
}

const (
	CategoryObjectivesCompleted = "objectives_completed"
	CategoryKeyResultsCompleted = "key_results_completed"
	CategoryCheckInsCreated     = "check_ins_created"
	CategoryInitiativesCreated  = "initiatives_created"
	CategoryTasksCompleted      = "tasks_completed"
	CategoryTotalPoints         = "total_points"
	CategoryLevel               = "level"
	CategoryCurrentStreak       = "current_streak"
	CategoryLongestStreak       = "longest_streak"
)

var Categories = []string{
	CategoryObjectivesCompleted,
	CategoryKeyResultsCompleted,
	CategoryCheckInsCreated,
	CategoryInitiativesCreated,
	CategoryTasksCompleted,
	CategoryTotalPoints,
	CategoryLevel,
	CategoryCurrentStreak,
	CategoryLongestStreak,
}

// Metric: nilai counter untuk kategori achievement; kategori asing → (0, false).
func (s Stats) Metric(category string) (int, bool) {
	switch category {
	case CategoryObjectivesCompleted:
		return s.ObjectivesCompleted, true
	case CategoryKeyResultsCompleted:
		return s.KeyResultsCompleted, true
	case CategoryCheckInsCreated:
		return s.CheckInsCreated, true
	case CategoryInitiativesCreated:
		return s.InitiativesCreated, true
	case CategoryTasksCompleted:
		return s.TasksCompleted, true
	case CategoryTotalPoints:
		return s.TotalPoints, true
	case CategoryLevel:
		return s.Level, true
	case CategoryCurrentStreak:
		return s.CurrentStreak, true
	case CategoryLongestStreak:
		return s.LongestStreak, true
	default:
		return 0, false
	}
}

type Achievement struct {
	Code         string
	Category     string
	Threshold    int
	PointsReward int
	Active       bool
}

// Unlockable: achievement aktif yang threshold-nya tercapai dan belum dimiliki.
func Unlockable(s Stats, defs []Achievement, already map[string]bool) []Achievement {
	var out []Achievement
	for _, d := range defs {
		if !d.Active || already[d.Code] {
			continue
		}
		v, ok := s.Metric(d.Category)
		if !ok {
			continue
		}
		if v >= d.Threshold {
			out = append(out, d)
		}
	}
	return out
}
