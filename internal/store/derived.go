package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fleet-maintenance-backend/internal/model"
)

// ReplaceHistory swaps the whole history table in one transaction.
func (s *gormStore) ReplaceHistory(ctx context.Context, events []model.HistoryEvent) (*model.Generation, error) {
	var gen *model.Generation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx, &model.HistoryEvent{}); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		if err := insertBatches(tx, events, s.batchSize); err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		var err error
		gen, err = writeGeneration(tx, HistoryScope, len(events))
		return err
	})
	if err != nil {
		return nil, err
	}
	logReplaced("history", gen)
	return gen, nil
}

// ListHistory returns every event in insertion order.
func (s *gormStore) ListHistory(ctx context.Context) ([]model.HistoryEvent, error) {
	var events []model.HistoryEvent
	if err := s.db.WithContext(ctx).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return events, nil
}

// ListHistoryByYear returns the events of one year in insertion order.
func (s *gormStore) ListHistoryByYear(ctx context.Context, year int) ([]model.HistoryEvent, error) {
	var events []model.HistoryEvent
	if err := s.db.WithContext(ctx).Where("year = ?", year).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list history of %d: %w", year, err)
	}
	return events, nil
}

// ListHistoryByMatricule returns the events of one equipment, newest first.
func (s *gormStore) ListHistoryByMatricule(ctx context.Context, matricule string) ([]model.HistoryEvent, error) {
	var events []model.HistoryEvent
	err := s.db.WithContext(ctx).
		Where("matricule = ?", matricule).
		Order("date DESC, id").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history of %s: %w", matricule, err)
	}
	return events, nil
}

// ReplacePlan swaps the plan of one year in one transaction.
func (s *gormStore) ReplacePlan(ctx context.Context, year int, rows []model.PlannedIntervention) (*model.Generation, error) {
	var gen *model.Generation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year = ?", year).Delete(&model.PlannedIntervention{}).Error; err != nil {
			return fmt.Errorf("failed to clear plan of %d: %w", year, err)
		}
		if err := insertBatches(tx, rows, s.batchSize); err != nil {
			return fmt.Errorf("failed to insert plan of %d: %w", year, err)
		}
		var err error
		gen, err = writeGeneration(tx, PlanScope(year), len(rows))
		return err
	})
	if err != nil {
		return nil, err
	}
	logReplaced(PlanScope(year), gen)
	return gen, nil
}

// ClearPlan deletes the plan of one year, or of every year when year is nil.
// Every cleared scope gets an empty generation.
func (s *gormStore) ClearPlan(ctx context.Context, year *int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if year == nil {
			if err := deleteAll(tx, &model.PlannedIntervention{}); err != nil {
				return fmt.Errorf("failed to clear plans: %w", err)
			}
			var scopes []string
			err := tx.Model(&model.Generation{}).
				Where("scope LIKE ?", planScopePrefix+"%").
				Distinct("scope").
				Order("scope").
				Pluck("scope", &scopes).Error
			if err != nil {
				return fmt.Errorf("failed to list plan generations: %w", err)
			}
			for _, scope := range scopes {
				if _, err := writeGeneration(tx, scope, 0); err != nil {
					return err
				}
			}
			return nil
		}
		if err := tx.Where("year = ?", *year).Delete(&model.PlannedIntervention{}).Error; err != nil {
			return fmt.Errorf("failed to clear plan of %d: %w", *year, err)
		}
		_, err := writeGeneration(tx, PlanScope(*year), 0)
		return err
	})
}

// ListPlan returns the plan of one year by equipment and date.
func (s *gormStore) ListPlan(ctx context.Context, year int) ([]model.PlannedIntervention, error) {
	var rows []model.PlannedIntervention
	err := s.db.WithContext(ctx).
		Where("year = ?", year).
		Order("matricule, scheduled_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plan of %d: %w", year, err)
	}
	return rows, nil
}
