package engine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func TestLevel(t *testing.T) {
	cases := map[int]int{
		0:   1,
		50:  1,
		99:  1,
		100: 2,
		149: 2,
		150: 3,
		199: 3,
		200: 4,
		600: 12,
	}
	for points, want := range cases {
		assert.Equal(t, want, Level(points), "points=%d", points)
	}
}

func TestPointsForLevelRoundTrip(t *testing.T) {
	for lvl := 1; lvl < 30; lvl++ {
		p := PointsForLevel(lvl)
		assert.Equal(t, lvl, Level(p), "level %d threshold %d", lvl, p)
		if lvl > 1 {
			assert.Equal(t, lvl-1, Level(p-1))
		}
	}
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 100, Points(EventObjectiveCompleted))
	assert.Equal(t, 50, Points(EventKeyResultCompleted))
	assert.Equal(t, 10, Points(EventCheckInCreated))
	assert.Equal(t, 20, Points(EventInitiativeCreated))
	assert.Equal(t, 5, Points(EventTaskCompleted))
	assert.Equal(t, 0, Points("unknown"))
}

func TestNextStreak(t *testing.T) {
	loc := jakarta(t)
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)
	twoDaysAgo := today.AddDate(0, 0, -2)

	assert.Equal(t, 1, NextStreak(nil, 0, today))
	assert.Equal(t, 4, NextStreak(&today, 4, today))
	assert.Equal(t, 5, NextStreak(&yesterday, 4, today))
	assert.Equal(t, 1, NextStreak(&twoDaysAgo, 4, today))
	assert.Equal(t, 1, NextStreak(&yesterday, 0, today))
}

func TestNextStreak_UsesOrganizationDay(t *testing.T) {
	loc := jakarta(t)
	// 23:30 UTC on Mar 9 is already Mar 10 in Jakarta
	lastUTC := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 8, 0, 0, 0, loc)

	assert.Equal(t, 3, NextStreak(&lastUTC, 3, today))
}

func TestApplyEvent_Streak(t *testing.T) {
	loc := jakarta(t)
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	s := ApplyEvent(Stats{Level: 1}, EventCheckInCreated, day1)
	assert.Equal(t, 1, s.CurrentStreak)

	// same day, second action
	s = ApplyEvent(s, EventCheckInCreated, day1.Add(5*time.Hour))
	assert.Equal(t, 1, s.CurrentStreak)

	// next day
	s = ApplyEvent(s, EventCheckInCreated, day1.AddDate(0, 0, 1))
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)

	// two-day gap
	s = ApplyEvent(s, EventCheckInCreated, day1.AddDate(0, 0, 4))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
}

func TestApplyEvent_CountersAndLevel(t *testing.T) {
	loc := jakarta(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	s := Stats{Level: 1}
	s = ApplyEvent(s, EventObjectiveCompleted, now)
	s = ApplyEvent(s, EventKeyResultCompleted, now)
	s = ApplyEvent(s, EventCheckInCreated, now)
	s = ApplyEvent(s, EventInitiativeCreated, now)
	s = ApplyEvent(s, EventTaskCompleted, now)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	want := Stats{
		TotalPoints:         185,
		Level:               3,
		CurrentStreak:       1,
		LongestStreak:       1,
		LastActivityDate:    &day,
		ObjectivesCompleted: 1,
		KeyResultsCompleted: 1,
		CheckInsCreated:     1,
		InitiativesCreated:  1,
		TasksCompleted:      1,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEvent_UnknownEventIsNoop(t *testing.T) {
	in := Stats{TotalPoints: 40, Level: 1, CurrentStreak: 2}
	out := ApplyEvent(in, "bogus", time.Now())
	assert.Empty(t, cmp.Diff(in, out))
}

func TestApplyEvent_DoesNotMutateInput(t *testing.T) {
	loc := jakarta(t)
	last := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	in := Stats{TotalPoints: 10, Level: 1, CurrentStreak: 1, LongestStreak: 1, LastActivityDate: &last}

	_ = ApplyEvent(in, EventCheckInCreated, time.Date(2025, 3, 10, 9, 0, 0, 0, loc))

	assert.Equal(t, 10, in.TotalPoints)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, loc), *in.LastActivityDate)
}

func TestAddBonus(t *testing.T) {
	s := AddBonus(Stats{TotalPoints: 90, Level: 1}, 20)
	assert.Equal(t, 110, s.TotalPoints)
	assert.Equal(t, 2, s.Level)

	assert.Equal(t, 90, AddBonus(Stats{TotalPoints: 90}, -5).TotalPoints)
}

func TestUnlockable(t *testing.T) {
	defs := []Achievement{
		{Code: "first_check_in", Category: CategoryCheckInsCreated, Threshold: 1, Active: true},
		{Code: "ten_check_ins", Category: CategoryCheckInsCreated, Threshold: 10, Active: true},
		{Code: "level_2", Category: CategoryLevel, Threshold: 2, Active: true},
		{Code: "streak_3", Category: CategoryCurrentStreak, Threshold: 3, Active: true},
		{Code: "retired", Category: CategoryCheckInsCreated, Threshold: 1, Active: false},
		{Code: "weird", Category: "nope", Threshold: 0, Active: true},
	}
	s := Stats{CheckInsCreated: 2, Level: 2, CurrentStreak: 1}

	got := Unlockable(s, defs, map[string]bool{"level_2": true})
	codes := make([]string, 0, len(got))
	for _, a := range got {
		codes = append(codes, a.Code)
	}
	assert.Equal(t, []string{"first_check_in"}, codes)

	assert.Empty(t, Unlockable(Stats{}, nil, nil))
}
