package dto

import (
	"github.com/google/uuid"

	gamDto "okrku_backend/internals/features/gamification/dto"
	cycleDto "okrku_backend/internals/features/okr/cycles/dto"
)

type ObjectiveSummary struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"by_status"`
	AverageProgress float64          `json:"average_progress"`
}

// KeyResultBrief: KR at_risk/behind yang ditampilkan di kartu dashboard.
type KeyResultBrief struct {
	ID             uuid.UUID `json:"key_result_id"`
	ObjectiveID    uuid.UUID `json:"objective_id"`
	ObjectiveTitle string    `json:"objective_title"`
	Title          string    `json:"key_result_title"`
	Progress       float64   `json:"key_result_progress"`
	Status         string    `json:"key_result_status"`
	TimeProgress   float64   `json:"time_progress_percentage"`
}

type SummaryResponse struct {
	Cycle            *cycleDto.CycleResponse `json:"cycle"`
	Objectives       ObjectiveSummary        `json:"objectives"`
	KeyResultsAtRisk int64                   `json:"key_results_at_risk"`
	AtRisk           []KeyResultBrief        `json:"at_risk"`
	Initiatives      map[string]int64        `json:"initiatives_by_status"`
	OverdueTasks     int64                   `json:"overdue_tasks"`
	MyOverdueTasks   int64                   `json:"my_overdue_tasks"`
	Me               gamDto.StatsResponse    `json:"me"`
}
