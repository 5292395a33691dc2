package engine

import (
	"context"
	"fmt"
	"io"

	"fleet-maintenance-backend/internal/export"
	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/metrics"
)

// ExportPlanXLSX writes the whole plan matrix of year as a workbook.
func (s *Service) ExportPlanXLSX(ctx context.Context, year int, w io.Writer) (err error) {
	defer func() { metrics.IncExport("planning", metrics.Result(err)) }()

	if err := s.validateYear(year); err != nil {
		return err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return err
	}
	planned, err := s.store.ListPlan(ctx, year)
	if err != nil {
		return err
	}
	page := followup.BuildMatrix(equipment, planOccurrences(planned), s.matrixOptions(year, followup.PageQuery{}, true))
	return export.WriteMatrix(w, fmt.Sprintf("Planning %d", year), page)
}

// ExportFollowUpXLSX writes the whole follow-up matrix of year as a workbook.
func (s *Service) ExportFollowUpXLSX(ctx context.Context, year int, w io.Writer) (err error) {
	defer func() { metrics.IncExport("followup", metrics.Result(err)) }()

	rec, err := s.Reconcile(ctx, year)
	if err != nil {
		return err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return err
	}
	page := followup.BuildMatrix(equipment, rec.Occurrences(), s.matrixOptions(year, followup.PageQuery{}, true))
	return export.WriteMatrix(w, fmt.Sprintf("Suivi %d", year), page)
}
