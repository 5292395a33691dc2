// Package followup compares the planned interventions of a year with the
// maintenance that actually happened, and shapes the result for display.
package followup

import (
	"time"

	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// DefaultToleranceDays is how far a realization may drift from its plan date.
const DefaultToleranceDays = 30

// Occurrence is a planned intervention with its realization, or a piece of
// realized work that matched no plan (Level HP).
type Occurrence struct {
	PlanID        int64       `json:"plan_id,omitempty"`
	EventID       int64       `json:"event_id,omitempty"`
	Matricule     string      `json:"matricule"`
	Operation     string      `json:"operation"`
	ScheduledDate time.Time   `json:"scheduled_date"`
	Interval      int         `json:"interval,omitempty"`
	Level         model.Level `json:"level"`
	Realized      bool        `json:"realized"`
	RealizedDate  *time.Time  `json:"realized_date,omitempty"`
}

// OutOfPlan reports whether the occurrence is realized work without a plan.
func (o Occurrence) OutOfPlan() bool {
	return o.Level == model.LevelOutOfPlan
}

// Reconciliation is the outcome of matching one year of plans with history.
type Reconciliation struct {
	Planned   []Occurrence `json:"planned"`
	OutOfPlan []Occurrence `json:"out_of_plan"`
}

// Occurrences returns the planned occurrences followed by the out-of-plan ones.
func (r Reconciliation) Occurrences() []Occurrence {
	out := make([]Occurrence, 0, len(r.Planned)+len(r.OutOfPlan))
	out = append(out, r.Planned...)
	return append(out, r.OutOfPlan...)
}

func matchKey(matricule, op string) string {
	return parse.Normalize(matricule) + "|" + parse.Normalize(op)
}

// Reconcile walks the history events of year in the given order and gives
// each one the closest still-unmatched plan of the same equipment and
// operation, if it lies within toleranceDays. On equal distance the plan seen
// first wins. Events left without a plan become out-of-plan occurrences.
func Reconcile(planned []model.PlannedIntervention, events []model.HistoryEvent, year, toleranceDays int) Reconciliation {
	res := Reconciliation{Planned: make([]Occurrence, len(planned))}
	candidates := make(map[string][]int)
	for i, p := range planned {
		res.Planned[i] = Occurrence{
			PlanID:        p.ID,
			Matricule:     p.Matricule,
			Operation:     p.Operation,
			ScheduledDate: p.ScheduledDate,
			Interval:      p.Interval,
			Level:         p.Level,
		}
		k := matchKey(p.Matricule, p.Operation)
		candidates[k] = append(candidates[k], i)
	}

	for _, e := range events {
		if e.Date.Year() != year {
			continue
		}
		best, bestDiff := -1, 0
		for _, i := range candidates[matchKey(e.Matricule, e.Operation)] {
			if res.Planned[i].Realized {
				continue
			}
			diff := parse.DaysBetween(e.Date, res.Planned[i].ScheduledDate)
			if diff > toleranceDays {
				continue
			}
			if best < 0 || diff < bestDiff {
				best, bestDiff = i, diff
			}
		}

		date := parse.Day(e.Date)
		if best >= 0 {
			res.Planned[best].Realized = true
			res.Planned[best].RealizedDate = &date
			res.Planned[best].EventID = e.ID
			continue
		}
		res.OutOfPlan = append(res.OutOfPlan, Occurrence{
			EventID:       e.ID,
			Matricule:     e.Matricule,
			Operation:     e.Operation,
			ScheduledDate: date,
			Level:         model.LevelOutOfPlan,
			Realized:      true,
			RealizedDate:  &date,
		})
	}
	return res
}
