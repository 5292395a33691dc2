package store

import (
	"fmt"

	"fleet-maintenance-backend/internal/model"
)

// HistoryScope is the generation scope of the history table.
const HistoryScope = "history"

// PlanScope is the generation scope of the plan of one year.
func PlanScope(year int) string {
	return fmt.Sprintf("%s%d", planScopePrefix, year)
}

const planScopePrefix = "plan:"

// RawLogs are the imported workshop logs history is consolidated from.
type RawLogs struct {
	Curative     []model.CurativeRecord
	OilChanges   []model.OilChangeRecord
	Consolidated []model.ConsolidatedRecord
}

// ReferenceData is the content of an import. A nil slice leaves the
// matching table untouched; a non-nil one replaces it.
type ReferenceData struct {
	Equipment     []model.Equipment
	IntervalRules []model.IntervalRule
	CategoryRules []model.CategoryRule
	Schema        *model.RuleSchema
	Curative      []model.CurativeRecord
	OilChanges    []model.OilChangeRecord
	Consolidated  []model.ConsolidatedRecord
}
