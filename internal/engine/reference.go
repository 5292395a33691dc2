package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/importer"
	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// invalidatePlans drops every plan after a reference edit; plans are only
// regenerated on request.
func (s *Service) invalidatePlans(ctx context.Context) error {
	if err := s.ClearPlan(ctx, nil); err != nil {
		return fmt.Errorf("failed to invalidate plans: %w", err)
	}
	s.referenceChanged()
	return nil
}

// ListIntervalRules returns the interval rule table.
func (s *Service) ListIntervalRules(ctx context.Context) ([]model.IntervalRule, error) {
	return s.store.ListIntervalRules(ctx)
}

// ListCategoryRules returns every category rule by category and operation.
func (s *Service) ListCategoryRules(ctx context.Context) ([]model.CategoryRule, error) {
	return s.store.ListCategoryRules(ctx)
}

// SaveIntervalRule stores the rule of one operation and invalidates plans.
func (s *Service) SaveIntervalRule(ctx context.Context, rule *model.IntervalRule) error {
	op, ok := catalog.ByCode(rule.Operation)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, rule.Operation)
	}
	for _, m := range rule.Markers() {
		if m != model.MarkerNone && !m.Active() {
			return fmt.Errorf("%w: marker %q", ErrInvalidRule, m)
		}
	}
	rule.Label = op.Label
	if err := s.store.SaveIntervalRule(ctx, rule); err != nil {
		return err
	}
	log.Printf("Interval rule of %s updated", rule.Operation)
	return s.invalidatePlans(ctx)
}

// SaveCategoryRule switches an operation on or off for a category and
// invalidates plans.
func (s *Service) SaveCategoryRule(ctx context.Context, rule *model.CategoryRule) error {
	if _, ok := catalog.ByCode(rule.Operation); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, rule.Operation)
	}
	if parse.Normalize(rule.Category) == "" {
		return fmt.Errorf("%w: empty category", ErrInvalidRule)
	}
	category, err := s.canonicalCategory(ctx, rule.Category, rule.Operation)
	if err != nil {
		return err
	}
	rule.Category = category
	if err := s.store.SaveCategoryRule(ctx, rule); err != nil {
		return err
	}
	log.Printf("Category rule %s/%s set to %t", rule.Category, rule.Operation, rule.Active)
	return s.invalidatePlans(ctx)
}

// canonicalCategory returns the stored spelling of category: the one of an
// existing rule for op, else the roster's, else the trimmed input.
func (s *Service) canonicalCategory(ctx context.Context, category, op string) (string, error) {
	key := parse.Normalize(category)
	existing, err := s.store.ListCategoryRules(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range existing {
		if r.Operation == op && parse.Normalize(r.Category) == key {
			return r.Category, nil
		}
	}
	categories, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if parse.Normalize(c) == key {
			return c, nil
		}
	}
	return strings.TrimSpace(category), nil
}

// SeedCategoryRules adds the default rule of every operation for every
// roster category that has none yet.
func (s *Service) SeedCategoryRules(ctx context.Context) (int64, error) {
	categories, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return 0, err
	}
	var seed []model.CategoryRule
	for _, c := range categories {
		for _, op := range catalog.Codes() {
			seed = append(seed, model.CategoryRule{
				Category:  c,
				Operation: op,
				Active:    catalog.DefaultActive(c, op),
			})
		}
	}
	added, err := s.store.SeedCategoryRules(ctx, seed)
	if err != nil {
		return 0, err
	}
	log.Printf("Seeded %d category rules for %d categories", added, len(categories))
	if added == 0 {
		return 0, nil
	}
	return added, s.invalidatePlans(ctx)
}

// ImportWorkbook replaces the reference data found in an XLSX workbook.
func (s *Service) ImportWorkbook(ctx context.Context, r io.Reader) (summary importer.Summary, err error) {
	defer func() { metrics.IncImport(metrics.Result(err)) }()

	data, summary, err := importer.Read(r, s.imports)
	if err != nil {
		return summary, err
	}
	if err := s.store.ReplaceReferenceData(ctx, data); err != nil {
		return summary, fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("Workbook imported at %s: %v", s.now().Format(time.RFC3339), summary.Rows)
	return summary, s.invalidatePlans(ctx)
}
