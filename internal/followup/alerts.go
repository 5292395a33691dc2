package followup

import (
	"sort"
	"time"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// Urgency grades an alert.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyNear   Urgency = "near"
)

// Alert is an unrealized planned intervention that is due soon or past due.
type Alert struct {
	Matricule      string      `json:"matricule"`
	Designation    string      `json:"designation"`
	Operation      string      `json:"operation"`
	OperationLabel string      `json:"operation_label"`
	DueDate        time.Time   `json:"due_date"`
	Level          model.Level `json:"level"`
	Urgency        Urgency     `json:"urgency"`
}

// Alerts lists the unrealized planned occurrences due on or before
// today+windowDays, earliest first. Past-due ones are urgent.
func Alerts(planned []Occurrence, equipment []model.Equipment, today time.Time, windowDays int) []Alert {
	designations := make(map[string]string, len(equipment))
	for _, e := range equipment {
		designations[parse.Normalize(e.Matricule)] = e.Designation
	}

	today = parse.Day(today)
	limit := today.AddDate(0, 0, windowDays)
	alerts := []Alert{}
	for _, o := range planned {
		if o.Realized || o.OutOfPlan() || o.ScheduledDate.After(limit) {
			continue
		}
		a := Alert{
			Matricule:   o.Matricule,
			Designation: designations[parse.Normalize(o.Matricule)],
			Operation:   o.Operation,
			DueDate:     o.ScheduledDate,
			Level:       o.Level,
			Urgency:     UrgencyNear,
		}
		if op, ok := catalog.ByCode(o.Operation); ok {
			a.OperationLabel = op.Label
		}
		if o.ScheduledDate.Before(today) {
			a.Urgency = UrgencyUrgent
		}
		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if !alerts[i].DueDate.Equal(alerts[j].DueDate) {
			return alerts[i].DueDate.Before(alerts[j].DueDate)
		}
		if alerts[i].Matricule != alerts[j].Matricule {
			return alerts[i].Matricule < alerts[j].Matricule
		}
		return catalog.Index(alerts[i].Operation) < catalog.Index(alerts[j].Operation)
	})
	return alerts
}

// GroupByMatricule splits alerts per equipment, keeping their order.
func GroupByMatricule(alerts []Alert) map[string][]Alert {
	out := make(map[string][]Alert)
	for _, a := range alerts {
		out[a.Matricule] = append(out[a.Matricule], a)
	}
	return out
}
