package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"fleet-maintenance-backend/internal/history"
	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/store"
)

// ConsolidateHistory rebuilds the history table from the raw logs.
func (s *Service) ConsolidateHistory(ctx context.Context) (report history.Report, err error) {
	start := time.Now()
	defer func() { metrics.ObserveConsolidate(metrics.Result(err), time.Since(start)) }()

	unlock := s.lock(store.HistoryScope)
	defer unlock()

	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return report, err
	}
	logs, err := s.store.LoadRawLogs(ctx)
	if err != nil {
		return report, err
	}

	events, report := history.Consolidate(history.NewRoster(equipment), history.Sources{
		Curative:     logs.Curative,
		OilChanges:   logs.OilChanges,
		Consolidated: logs.Consolidated,
	}, s.matcher)

	if _, err := s.store.ReplaceHistory(ctx, events); err != nil {
		return history.Report{}, fmt.Errorf("failed to save history: %w", err)
	}

	metrics.SetHistoryEvents(report.EventsWritten)
	reasons := make([]string, 0, len(report.Dropped))
	for reason, n := range report.Dropped {
		metrics.AddDroppedRows(reason, n)
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		log.Printf("History consolidation skipped %d rows: %s", report.Dropped[reason], reason)
	}
	log.Printf("History consolidated: %d events", report.EventsWritten)
	return report, nil
}

// EquipmentHistory lists the events of one equipment, newest first.
func (s *Service) EquipmentHistory(ctx context.Context, matricule string) ([]model.HistoryEvent, error) {
	if _, err := s.store.GetEquipment(ctx, matricule); err != nil {
		return nil, err
	}
	return s.store.ListHistoryByMatricule(ctx, matricule)
}

// HistoryGeneration returns the generation of the live history table.
func (s *Service) HistoryGeneration(ctx context.Context) (*model.Generation, error) {
	return s.store.LatestGeneration(ctx, store.HistoryScope)
}
