package followup

import "fleet-maintenance-backend/internal/model"

// Statistics tallies a reconciliation.
type Statistics struct {
	TotalPlanned        int                 `json:"total_planned"`
	TotalRealized       int                 `json:"total_realized"`
	PlannedByLevel      map[model.Level]int `json:"planned_by_level"`
	RealizedByLevel     map[model.Level]int `json:"realized_by_level"`
	PlannedByOperation  map[string]int      `json:"planned_by_operation"`
	RealizedByOperation map[string]int      `json:"realized_by_operation"`
	OutOfPlan           int                 `json:"out_of_plan"`
	CompletionRate      float64             `json:"completion_rate"`
}

// Aggregate counts planned and realized interventions by level and by
// operation. Every plannable level is present, with zero when unused.
func Aggregate(r Reconciliation) Statistics {
	s := Statistics{
		PlannedByLevel:      make(map[model.Level]int, len(model.PlanLevels)),
		RealizedByLevel:     make(map[model.Level]int, len(model.PlanLevels)),
		PlannedByOperation:  make(map[string]int),
		RealizedByOperation: make(map[string]int),
		OutOfPlan:           len(r.OutOfPlan),
	}
	for _, l := range model.PlanLevels {
		s.PlannedByLevel[l] = 0
		s.RealizedByLevel[l] = 0
	}

	for _, o := range r.Planned {
		s.TotalPlanned++
		s.PlannedByLevel[o.Level]++
		s.PlannedByOperation[o.Operation]++
		if o.Realized {
			s.TotalRealized++
			s.RealizedByLevel[o.Level]++
			s.RealizedByOperation[o.Operation]++
		}
	}
	if s.TotalPlanned > 0 {
		s.CompletionRate = float64(s.TotalRealized) / float64(s.TotalPlanned)
	}
	return s
}
