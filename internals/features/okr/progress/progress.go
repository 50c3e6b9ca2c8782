// Package progress berisi rumus progress key result. Semua pemanggil
// (key result, objective, check-in, dashboard, scheduler) memakai paket ini.
package progress

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type KeyResultType string

const (
	IncreaseTo      KeyResultType = "increase_to"
	DecreaseTo      KeyResultType = "decrease_to"
	AchieveOrNot    KeyResultType = "achieve_or_not"
	ShouldStayAbove KeyResultType = "should_stay_above"
	ShouldStayBelow KeyResultType = "should_stay_below"
)

var AllTypes = []KeyResultType{IncreaseTo, DecreaseTo, AchieveOrNot, ShouldStayAbove, ShouldStayBelow}

func (t KeyResultType) Valid() bool {
	for _, x := range AllTypes {
		if t == x {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusOnTrack    Status = "on_track"
	StatusAtRisk     Status = "at_risk"
	StatusBehind     Status = "behind"
	StatusCompleted  Status = "completed"
)

const (
	Min = 0.0
	Max = 100.0

	atRiskRatio = 0.7
)

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// orZero: NaN → 0. ±Inf dibiarkan, nanti dipotong clamp.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v float64) float64 {
	v = orZero(v)
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Calculate menghitung progress [0,100] dari nilai key result.
// base nil dianggap 0. Input NaN dianggap 0; ±Inf ikut dihitung lalu di-clamp.
func Calculate(current, target float64, base *float64, t KeyResultType) float64 {
	current = orZero(current)
	target = orZero(target)
	b := 0.0
	if base != nil {
		b = orZero(*base)
	}

	switch t {
	case IncreaseTo:
		if target <= b {
			return 0
		}
		return clamp((current - b) / (target - b) * 100)
	case DecreaseTo:
		if b <= target {
			return 0
		}
		return clamp((b - current) / (b - target) * 100)
	case AchieveOrNot, ShouldStayAbove:
		if current >= target {
			return Max
		}
		return Min
	case ShouldStayBelow:
		if current <= target {
			return Max
		}
		return Min
	default:
		return 0
	}
}

// ParseNumber parse angka dari input bebas ("1.500,5", " 12 ", "45%"). Gagal → 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	// format Indonesia: titik ribuan, koma desimal
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

// TimeProgress: persentase waktu siklus yang sudah lewat.
func TimeProgress(start, end, now time.Time) float64 {
	if !end.After(start) {
		if !now.Before(end) {
			return Max
		}
		return Min
	}
	total := end.Sub(start).Seconds()
	elapsed := now.Sub(start).Seconds()
	return clamp(elapsed / total * 100)
}

// ObjectiveProgress: rata-rata progress key result. Kosong → 0.
func ObjectiveProgress(krProgress []float64) float64 {
	if len(krProgress) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range krProgress {
		sum += clamp(p)
	}
	return clamp(sum / float64(len(krProgress)))
}

func DeriveStatus(progress, timeProgress float64) Status {
	progress = clamp(progress)
	timeProgress = clamp(timeProgress)

	switch {
	case progress >= Max:
		return StatusCompleted
	case progress == 0 && timeProgress == 0:
		return StatusNotStarted
	case progress >= timeProgress:
		return StatusOnTrack
	case progress >= timeProgress*atRiskRatio:
		return StatusAtRisk
	default:
		return StatusBehind
	}
}

// Round2 dipakai saat menyimpan cache progress ke DB.
func Round2(v float64) float64 {
	return math.Round(finite(v)*100) / 100
}
