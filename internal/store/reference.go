package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-maintenance-backend/internal/model"
)

func (s *gormStore) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	var equipment []model.Equipment
	if err := s.db.WithContext(ctx).Order("matricule").Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return equipment, nil
}

func (s *gormStore) GetEquipment(ctx context.Context, matricule string) (*model.Equipment, error) {
	var e model.Equipment
	if err := s.db.WithContext(ctx).Where("matricule = ?", matricule).First(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *gormStore) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&model.Equipment{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *gormStore) ListIntervalRules(ctx context.Context) ([]model.IntervalRule, error) {
	var rules []model.IntervalRule
	if err := s.db.WithContext(ctx).Order("id").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list interval rules: %w", err)
	}
	return rules, nil
}

// SaveIntervalRule inserts the rule or overwrites the one of the same operation.
func (s *gormStore) SaveIntervalRule(ctx context.Context, rule *model.IntervalRule) error {
	rule.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "operation"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"label", "every_7", "every_30", "every_90", "every_180", "every_360",
			"control", "cleaning", "replacement", "updated_at",
		}),
	}).Create(rule).Error
	if err != nil {
		return fmt.Errorf("failed to save interval rule %s: %w", rule.Operation, err)
	}
	return nil
}

func (s *gormStore) ListCategoryRules(ctx context.Context) ([]model.CategoryRule, error) {
	var rules []model.CategoryRule
	if err := s.db.WithContext(ctx).Order("category, operation").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list category rules: %w", err)
	}
	return rules, nil
}

// SaveCategoryRule inserts the rule or updates the flag of the existing one.
func (s *gormStore) SaveCategoryRule(ctx context.Context, rule *model.CategoryRule) error {
	rule.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "operation"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
	}).Create(rule).Error
	if err != nil {
		return fmt.Errorf("failed to save category rule %s/%s: %w", rule.Category, rule.Operation, err)
	}
	return nil
}

// SeedCategoryRules inserts the rules that do not exist yet and reports how
// many were added. Existing rows keep their flag.
func (s *gormStore) SeedCategoryRules(ctx context.Context, rules []model.CategoryRule) (int64, error) {
	if len(rules) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rules, s.batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to seed category rules: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GetRuleSchema returns the schema recorded by the last rule import.
func (s *gormStore) GetRuleSchema(ctx context.Context) (*model.RuleSchema, error) {
	var schema model.RuleSchema
	if err := s.db.WithContext(ctx).Order("id DESC").First(&schema).Error; err != nil {
		return nil, notFound(err)
	}
	return &schema, nil
}

func (s *gormStore) LoadRawLogs(ctx context.Context) (RawLogs, error) {
	var logs RawLogs
	db := s.db.WithContext(ctx)
	if err := db.Order("id").Find(&logs.Curative).Error; err != nil {
		return logs, fmt.Errorf("failed to load curative log: %w", err)
	}
	if err := db.Order("id").Find(&logs.OilChanges).Error; err != nil {
		return logs, fmt.Errorf("failed to load oil change log: %w", err)
	}
	if err := db.Order("id").Find(&logs.Consolidated).Error; err != nil {
		return logs, fmt.Errorf("failed to load consolidated log: %w", err)
	}
	return logs, nil
}

// ReplaceReferenceData writes an import in one transaction.
func (s *gormStore) ReplaceReferenceData(ctx context.Context, data ReferenceData) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if data.Equipment != nil {
			if err := s.replaceEquipment(tx, data.Equipment); err != nil {
				return err
			}
		}
		if data.IntervalRules != nil {
			if err := replaceTable(tx, &model.IntervalRule{}, data.IntervalRules, s.batchSize); err != nil {
				return fmt.Errorf("failed to replace interval rules: %w", err)
			}
		}
		if data.Schema != nil {
			if err := deleteAll(tx, &model.RuleSchema{}); err != nil {
				return fmt.Errorf("failed to clear rule schema: %w", err)
			}
			if err := tx.Create(data.Schema).Error; err != nil {
				return fmt.Errorf("failed to save rule schema: %w", err)
			}
		}
		if data.CategoryRules != nil {
			if err := replaceTable(tx, &model.CategoryRule{}, data.CategoryRules, s.batchSize); err != nil {
				return fmt.Errorf("failed to replace category rules: %w", err)
			}
		}
		if data.Curative != nil {
			if err := replaceTable(tx, &model.CurativeRecord{}, data.Curative, s.batchSize); err != nil {
				return fmt.Errorf("failed to replace curative log: %w", err)
			}
		}
		if data.OilChanges != nil {
			if err := replaceTable(tx, &model.OilChangeRecord{}, data.OilChanges, s.batchSize); err != nil {
				return fmt.Errorf("failed to replace oil change log: %w", err)
			}
		}
		if data.Consolidated != nil {
			if err := replaceTable(tx, &model.ConsolidatedRecord{}, data.Consolidated, s.batchSize); err != nil {
				return fmt.Errorf("failed to replace consolidated log: %w", err)
			}
		}
		return nil
	})
}

func replaceTable[T any](tx *gorm.DB, m any, rows []T, batchSize int) error {
	if err := deleteAll(tx, m); err != nil {
		return err
	}
	return insertBatches(tx, rows, batchSize)
}

// replaceEquipment upserts the roster by matricule and removes equipment
// missing from it, together with their subscription links.
func (s *gormStore) replaceEquipment(tx *gorm.DB, equipment []model.Equipment) error {
	keep := make([]string, 0, len(equipment))
	for _, e := range equipment {
		keep = append(keep, e.Matricule)
	}

	var stale []int64
	q := tx.Model(&model.Equipment{})
	if len(keep) > 0 {
		q = q.Where("matricule NOT IN ?", keep)
	}
	if err := q.Pluck("id", &stale).Error; err != nil {
		return fmt.Errorf("failed to find removed equipment: %w", err)
	}
	if len(stale) > 0 {
		log.Printf("Removing %d equipment no longer in the roster", len(stale))
		if err := tx.Exec("DELETE FROM subscription_equipment WHERE equipment_id IN ?", stale).Error; err != nil {
			return fmt.Errorf("failed to unlink removed equipment: %w", err)
		}
		if err := tx.Delete(&model.Equipment{}, stale).Error; err != nil {
			return fmt.Errorf("failed to delete removed equipment: %w", err)
		}
	}

	if len(equipment) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "matricule"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "brand", "designation", "purchase_date", "meter", "status", "updated_at",
		}),
	}).CreateInBatches(&equipment, s.batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert equipment: %w", err)
	}
	return nil
}
