package engine

import (
	"context"
	"time"

	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/model"
)

func (s *Service) tolerance() int {
	if s.engine.ToleranceDays > 0 {
		return s.engine.ToleranceDays
	}
	return followup.DefaultToleranceDays
}

func (s *Service) pageQuery(q followup.PageQuery) followup.PageQuery {
	return q.Normalize(s.engine.DefaultPageSize)
}

func planOccurrences(rows []model.PlannedIntervention) []followup.Occurrence {
	out := make([]followup.Occurrence, len(rows))
	for i, p := range rows {
		out[i] = followup.Occurrence{
			PlanID:        p.ID,
			Matricule:     p.Matricule,
			Operation:     p.Operation,
			ScheduledDate: p.ScheduledDate,
			Interval:      p.Interval,
			Level:         p.Level,
		}
	}
	return out
}

// Reconcile matches the plan of year with the history of year.
func (s *Service) Reconcile(ctx context.Context, year int) (rec followup.Reconciliation, err error) {
	if err := s.validateYear(year); err != nil {
		return rec, err
	}
	start := time.Now()
	defer func() { metrics.ObserveReconcile(metrics.Result(err), time.Since(start)) }()

	planned, err := s.store.ListPlan(ctx, year)
	if err != nil {
		return rec, err
	}
	events, err := s.store.ListHistoryByYear(ctx, year)
	if err != nil {
		return rec, err
	}
	return followup.Reconcile(planned, events, year, s.tolerance()), nil
}

// GetPlan returns a page of the plan matrix, without realizations.
func (s *Service) GetPlan(ctx context.Context, year int, q followup.PageQuery) (followup.MatrixPage, error) {
	if err := s.validateYear(year); err != nil {
		return followup.MatrixPage{}, err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return followup.MatrixPage{}, err
	}
	planned, err := s.store.ListPlan(ctx, year)
	if err != nil {
		return followup.MatrixPage{}, err
	}
	return followup.BuildMatrix(equipment, planOccurrences(planned), s.matrixOptions(year, q, false)), nil
}

// GetFollowUp returns a page of the follow-up matrix: plans with their
// realizations plus out-of-plan work.
func (s *Service) GetFollowUp(ctx context.Context, year int, q followup.PageQuery) (followup.MatrixPage, error) {
	rec, err := s.Reconcile(ctx, year)
	if err != nil {
		return followup.MatrixPage{}, err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return followup.MatrixPage{}, err
	}
	return followup.BuildMatrix(equipment, rec.Occurrences(), s.matrixOptions(year, q, false)), nil
}

func (s *Service) matrixOptions(year int, q followup.PageQuery, all bool) followup.MatrixOptions {
	return followup.MatrixOptions{
		Year:          year,
		Query:         s.pageQuery(q),
		Now:           s.now(),
		ToleranceDays: s.tolerance(),
		All:           all,
	}
}

// GetStatistics tallies the reconciliation of year.
func (s *Service) GetStatistics(ctx context.Context, year int) (followup.Statistics, error) {
	rec, err := s.Reconcile(ctx, year)
	if err != nil {
		return followup.Statistics{}, err
	}
	return followup.Aggregate(rec), nil
}

// Alerts lists the unrealized interventions of year due within windowDays.
// A zero year means the current one; a non-positive window the configured one.
func (s *Service) Alerts(ctx context.Context, year, windowDays int) ([]followup.Alert, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if windowDays <= 0 {
		windowDays = s.engine.AlertWindowDays
	}
	rec, err := s.Reconcile(ctx, year)
	if err != nil {
		return nil, err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	return followup.Alerts(rec.Planned, equipment, now, windowDays), nil
}
