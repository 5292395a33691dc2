// Package planning projects preventive maintenance occurrences over one
// calendar year.
package planning

import (
	"sort"
	"time"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
	"fleet-maintenance-backend/internal/rules"
)

// Result is the outcome of a planning run.
type Result struct {
	Count int                         `json:"count"`
	Rows  []model.PlannedIntervention `json:"rows,omitempty"`
}

// LastDates holds the latest history date per normalized matricule and operation.
type LastDates map[string]map[string]time.Time

// LatestDates indexes the most recent event of each (matricule, operation).
func LatestDates(events []model.HistoryEvent) LastDates {
	last := make(LastDates)
	for _, e := range events {
		key := parse.Normalize(e.Matricule)
		if key == "" || e.Operation == "" {
			continue
		}
		ops, ok := last[key]
		if !ok {
			ops = make(map[string]time.Time)
			last[key] = ops
		}
		if d, seen := ops[e.Operation]; !seen || e.Date.After(d) {
			ops[e.Operation] = parse.Day(e.Date)
		}
	}
	return last
}

// Anchor returns the date occurrences of op on matricule are counted from:
// the last time it was done, or January 1 of year.
func (l LastDates) Anchor(matricule, op string, year int) time.Time {
	if d, ok := l[parse.Normalize(matricule)][op]; ok {
		return d
	}
	return yearStart(year)
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func yearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Project returns anchor+I, anchor+2I, ... restricted to the days of year.
func Project(anchor time.Time, interval, year int) []time.Time {
	if interval <= 0 {
		return nil
	}
	start, end := yearStart(year), yearEnd(year)
	d := parse.Day(anchor).AddDate(0, 0, interval)
	if d.Before(start) {
		// Skip whole periods instead of stepping through old years one by one.
		steps := int(start.Sub(d).Hours()/24) / interval
		d = d.AddDate(0, 0, steps*interval)
		for d.Before(start) {
			d = d.AddDate(0, 0, interval)
		}
	}
	var dates []time.Time
	for !d.After(end) {
		dates = append(dates, d)
		d = d.AddDate(0, 0, interval)
	}
	return dates
}

type planKey struct {
	matricule string
	operation string
	date      time.Time
}

// Generate projects every active rule of every equipment over year. Two
// occurrences of the same operation on the same day collapse into the one
// with the higher level; on equal levels the shorter interval is kept.
func Generate(year int, equipment []model.Equipment, last LastDates, resolver *rules.Resolver) Result {
	byKey := make(map[planKey]int)
	var rows []model.PlannedIntervention

	for _, e := range equipment {
		if parse.Normalize(e.Matricule) == "" {
			continue
		}
		for _, op := range catalog.Codes() {
			pairs := resolver.ActiveRules(e.Category, op)
			if len(pairs) == 0 {
				continue
			}
			anchor := last.Anchor(e.Matricule, op, year)
			for _, p := range pairs {
				for _, d := range Project(anchor, p.Interval, year) {
					row := model.PlannedIntervention{
						Year:          year,
						Matricule:     e.Matricule,
						Category:      e.Category,
						Operation:     op,
						ScheduledDate: d,
						Interval:      p.Interval,
						Level:         p.Level,
					}
					k := planKey{matricule: e.Matricule, operation: op, date: d}
					if i, dup := byKey[k]; dup {
						if row.Level.Priority() > rows[i].Level.Priority() {
							rows[i] = row
						}
						continue
					}
					byKey[k] = len(rows)
					rows = append(rows, row)
				}
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Matricule != b.Matricule {
			return a.Matricule < b.Matricule
		}
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		return catalog.Index(a.Operation) < catalog.Index(b.Operation)
	})
	return Result{Count: len(rows), Rows: rows}
}
