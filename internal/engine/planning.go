package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/planning"
	"fleet-maintenance-backend/internal/rules"
	"fleet-maintenance-backend/internal/store"
)

// ruleSchema returns the recorded rule schema, or the built-in layout when
// no rule sheet was ever imported.
func (s *Service) ruleSchema(ctx context.Context) (model.RuleSchema, error) {
	schema, err := s.store.GetRuleSchema(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return rules.DefaultSchema(), nil
	}
	if err != nil {
		return model.RuleSchema{}, err
	}
	return *schema, nil
}

// RuleSchema exposes the schema planning runs against.
func (s *Service) RuleSchema(ctx context.Context) (model.RuleSchema, error) {
	return s.ruleSchema(ctx)
}

func (s *Service) resolver(ctx context.Context) (*rules.Resolver, error) {
	intervalRules, err := s.store.ListIntervalRules(ctx)
	if err != nil {
		return nil, err
	}
	categoryRules, err := s.store.ListCategoryRules(ctx)
	if err != nil {
		return nil, err
	}
	return rules.NewResolver(intervalRules, categoryRules), nil
}

// GeneratePlanning replaces the plan of year with a fresh projection.
func (s *Service) GeneratePlanning(ctx context.Context, year int) (res planning.Result, err error) {
	if err := s.validateYear(year); err != nil {
		return res, err
	}
	start := time.Now()
	defer func() { metrics.ObservePlanning(metrics.Result(err), time.Since(start)) }()

	s.planMu.RLock()
	defer s.planMu.RUnlock()
	unlock := s.lock(store.PlanScope(year))
	defer unlock()

	schema, err := s.ruleSchema(ctx)
	if err != nil {
		return res, err
	}
	if err := rules.Validate(schema); err != nil {
		log.Printf("Planning %d aborted: %v", year, err)
		return res, err
	}

	resolver, err := s.resolver(ctx)
	if err != nil {
		return res, err
	}
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return res, err
	}
	events, err := s.store.ListHistory(ctx)
	if err != nil {
		return res, err
	}

	res = planning.Generate(year, equipment, planning.LatestDates(events), resolver)
	if _, err := s.store.ReplacePlan(ctx, year, res.Rows); err != nil {
		return planning.Result{}, fmt.Errorf("failed to save plan of %d: %w", year, err)
	}

	metrics.SetPlannedRows(strconv.Itoa(year), res.Count)
	log.Printf("Planning %d generated: %d interventions for %d equipment", year, res.Count, len(equipment))
	return res, nil
}

// ClearPlan deletes the plan of year, or every plan when year is nil.
func (s *Service) ClearPlan(ctx context.Context, year *int) error {
	if year == nil {
		s.planMu.Lock()
		defer s.planMu.Unlock()
		if err := s.store.ClearPlan(ctx, nil); err != nil {
			return err
		}
		metrics.ResetPlannedRows()
		log.Println("Cleared every plan")
		return nil
	}

	if err := s.validateYear(*year); err != nil {
		return err
	}
	s.planMu.RLock()
	defer s.planMu.RUnlock()
	unlock := s.lock(store.PlanScope(*year))
	defer unlock()

	if err := s.store.ClearPlan(ctx, year); err != nil {
		return err
	}
	metrics.SetPlannedRows(strconv.Itoa(*year), 0)
	log.Printf("Cleared plan of %d", *year)
	return nil
}

// ListPlanRows returns the stored plan of year.
func (s *Service) ListPlanRows(ctx context.Context, year int) ([]model.PlannedIntervention, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	return s.store.ListPlan(ctx, year)
}

// PlanGeneration returns the generation of the stored plan of year.
func (s *Service) PlanGeneration(ctx context.Context, year int) (*model.Generation, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	return s.store.LatestGeneration(ctx, store.PlanScope(year))
}
