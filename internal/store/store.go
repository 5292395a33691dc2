package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-maintenance-backend/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DefaultBatchSize is used when the store is created without a batch size.
const DefaultBatchSize = 500

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Reference data.
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	GetEquipment(ctx context.Context, matricule string) (*model.Equipment, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	ListIntervalRules(ctx context.Context) ([]model.IntervalRule, error)
	SaveIntervalRule(ctx context.Context, rule *model.IntervalRule) error
	ListCategoryRules(ctx context.Context) ([]model.CategoryRule, error)
	SaveCategoryRule(ctx context.Context, rule *model.CategoryRule) error
	SeedCategoryRules(ctx context.Context, rules []model.CategoryRule) (int64, error)
	GetRuleSchema(ctx context.Context) (*model.RuleSchema, error)
	ReplaceReferenceData(ctx context.Context, data ReferenceData) error
	LoadRawLogs(ctx context.Context) (RawLogs, error)

	// Derived tables.
	ReplaceHistory(ctx context.Context, events []model.HistoryEvent) (*model.Generation, error)
	ListHistory(ctx context.Context) ([]model.HistoryEvent, error)
	ListHistoryByYear(ctx context.Context, year int) ([]model.HistoryEvent, error)
	ListHistoryByMatricule(ctx context.Context, matricule string) ([]model.HistoryEvent, error)
	ReplacePlan(ctx context.Context, year int, rows []model.PlannedIntervention) (*model.Generation, error)
	ClearPlan(ctx context.Context, year *int) error
	ListPlan(ctx context.Context, year int) ([]model.PlannedIntervention, error)
	LatestGeneration(ctx context.Context, scope string) (*model.Generation, error)

	// Push subscriptions.
	SaveSubscription(ctx context.Context, sub *model.PushSubscription, matricules []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db        *gorm.DB
	batchSize int
}

// NewGormStore creates a new GORM-backed store. Bulk inserts are split in
// batches of batchSize rows.
func NewGormStore(db *gorm.DB, batchSize int) Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &gormStore{db: db, batchSize: batchSize}
}

// DB exposes the underlying connection.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// insertBatches bulk inserts rows, a no-op for an empty slice.
func insertBatches[T any](tx *gorm.DB, rows []T, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}

// deleteAll empties the table of model inside tx.
func deleteAll(tx *gorm.DB, m any) error {
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error
}

// writeGeneration records a wholesale replacement of scope.
func writeGeneration(tx *gorm.DB, scope string, rows int) (*model.Generation, error) {
	gen := &model.Generation{
		ID:        uuid.NewString(),
		Scope:     scope,
		Rows:      rows,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(gen).Error; err != nil {
		return nil, fmt.Errorf("failed to record generation for %s: %w", scope, err)
	}
	return gen, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// LatestGeneration returns the most recent generation written for scope.
func (s *gormStore) LatestGeneration(ctx context.Context, scope string) (*model.Generation, error) {
	var gen model.Generation
	if err := s.db.WithContext(ctx).Where("scope = ?", scope).Order("created_at DESC").First(&gen).Error; err != nil {
		return nil, notFound(err)
	}
	return &gen, nil
}

func logReplaced(what string, gen *model.Generation) {
	log.Printf("Replaced %s: %d rows (generation %s)", what, gen.Rows, gen.ID)
}
