package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func plan(id int64, matricule, op string, date time.Time, level model.Level) model.PlannedIntervention {
	return model.PlannedIntervention{
		ID: id, Year: date.Year(), Matricule: matricule, Operation: op,
		ScheduledDate: date, Interval: 90, Level: level,
	}
}

func event(id int64, matricule, op string, date time.Time) model.HistoryEvent {
	return model.HistoryEvent{ID: id, Matricule: matricule, Operation: op, Date: date, Year: date.Year()}
}

func TestReconcile_MatchWithinTolerance(t *testing.T) {
	planned := []model.PlannedIntervention{
		plan(1, "EQ-1", catalog.ChangeEngineOil, day(2024, time.March, 31), model.LevelControl),
	}
	events := []model.HistoryEvent{
		event(10, "EQ-1", catalog.ChangeEngineOil, day(2024, time.March, 15)),
	}

	r := Reconcile(planned, events, 2024, DefaultToleranceDays)

	require.Len(t, r.Planned, 1)
	assert.True(t, r.Planned[0].Realized)
	require.NotNil(t, r.Planned[0].RealizedDate)
	assert.Equal(t, day(2024, time.March, 15), *r.Planned[0].RealizedDate)
	assert.Equal(t, int64(10), r.Planned[0].EventID)
	assert.Empty(t, r.OutOfPlan)

	stats := Aggregate(r)
	assert.Equal(t, 1, stats.TotalRealized)
}

func TestReconcile_OutsideToleranceIsOutOfPlan(t *testing.T) {
	planned := []model.PlannedIntervention{
		plan(1, "EQ-1", catalog.ChangeEngineOil, day(2024, time.March, 31), model.LevelControl),
	}
	events := []model.HistoryEvent{
		event(10, "EQ-1", catalog.ChangeEngineOil, day(2024, time.May, 1)),
		event(11, "EQ-1", catalog.ChangeEngineOil, day(2024, time.April, 30)),
	}

	r := Reconcile(planned, events, 2024, 30)

	assert.True(t, r.Planned[0].Realized)
	assert.Equal(t, int64(11), r.Planned[0].EventID)
	require.Len(t, r.OutOfPlan, 1)
	assert.Equal(t, int64(10), r.OutOfPlan[0].EventID)
	assert.Equal(t, model.LevelOutOfPlan, r.OutOfPlan[0].Level)
	assert.True(t, r.OutOfPlan[0].OutOfPlan())
	assert.Equal(t, day(2024, time.May, 1), r.OutOfPlan[0].ScheduledDate)
}

func TestReconcile_GreedyInEventOrder(t *testing.T) {
	planned := []model.PlannedIntervention{
		plan(1, "EQ-1", catalog.OilFilter, day(2024, time.June, 1), model.LevelControl),
		plan(2, "EQ-1", catalog.OilFilter, day(2024, time.June, 21), model.LevelCleaning),
	}
	events := []model.HistoryEvent{
		// Equidistant from both plans: the first plan wins.
		event(1, "eq-1", catalog.OilFilter, day(2024, time.June, 11)),
		event(2, "EQ-1", catalog.OilFilter, day(2024, time.June, 2)),
		// Other year and other operation never match.
		event(3, "EQ-1", catalog.OilFilter, day(2023, time.June, 1)),
		event(4, "EQ-1", catalog.AirFilter, day(2024, time.June, 1)),
	}

	r := Reconcile(planned, events, 2024, 30)

	assert.Equal(t, int64(1), r.Planned[0].EventID)
	assert.Equal(t, int64(2), r.Planned[1].EventID)
	require.Len(t, r.OutOfPlan, 1)
	assert.Equal(t, int64(4), r.OutOfPlan[0].EventID)
	assert.Len(t, r.Occurrences(), 3)
}

func TestReconcile_EachSideMatchesOnce(t *testing.T) {
	var planned []model.PlannedIntervention
	for i := 0; i < 12; i++ {
		planned = append(planned, plan(int64(i+1), "EQ-1", catalog.Chain, day(2024, time.Month(i+1), 10), model.LevelControl))
	}
	var events []model.HistoryEvent
	for i := 0; i < 20; i++ {
		events = append(events, event(int64(i+1), "EQ-1", catalog.Chain, day(2024, time.January, 1).AddDate(0, 0, i*17)))
	}

	r := Reconcile(planned, events, 2024, 30)

	usedEvents := make(map[int64]bool)
	matched := 0
	for _, o := range r.Planned {
		if !o.Realized {
			continue
		}
		matched++
		assert.False(t, usedEvents[o.EventID])
		usedEvents[o.EventID] = true
		assert.LessOrEqual(t, absDays(*o.RealizedDate, o.ScheduledDate), 30)
	}
	assert.Equal(t, len(events), matched+len(r.OutOfPlan))
	assert.Equal(t, matched, Aggregate(r).TotalRealized)
}

func absDays(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
