// Package rules resolves which (interval, level) pairs apply to an
// operation on a given equipment category.
package rules

import (
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// Pair is one recurring schedule: every Interval days at Level.
type Pair struct {
	Interval int         `json:"interval"`
	Level    model.Level `json:"level"`
}

// Resolver answers rule lookups from an in-memory snapshot of the rule tables.
type Resolver struct {
	rules    map[string]model.IntervalRule
	inactive map[string]struct{}
}

// NewResolver snapshots the interval rules and the category rules.
func NewResolver(intervalRules []model.IntervalRule, categoryRules []model.CategoryRule) *Resolver {
	r := &Resolver{
		rules:    make(map[string]model.IntervalRule, len(intervalRules)),
		inactive: make(map[string]struct{}),
	}
	for _, ir := range intervalRules {
		r.rules[ir.Operation] = ir
	}
	// Category spellings that normalize alike share a key; the most
	// recently updated row decides.
	latest := make(map[string]model.CategoryRule, len(categoryRules))
	for _, cr := range categoryRules {
		key := categoryKey(cr.Category, cr.Operation)
		if prev, ok := latest[key]; ok && prev.UpdatedAt.After(cr.UpdatedAt) {
			continue
		}
		latest[key] = cr
	}
	for key, cr := range latest {
		if !cr.Active {
			r.inactive[key] = struct{}{}
		}
	}
	return r
}

func categoryKey(category, op string) string {
	return parse.Normalize(category) + "|" + op
}

// Excluded reports whether op was switched off for category. Categories
// without a rule row keep every operation.
func (r *Resolver) Excluded(category, op string) bool {
	_, off := r.inactive[categoryKey(category, op)]
	return off
}

// ActiveRules returns the schedule pairs of op for an equipment of the given
// category, or nil when the operation has no rule or is excluded.
func (r *Resolver) ActiveRules(category, op string) []Pair {
	if r.Excluded(category, op) {
		return nil
	}
	rule, ok := r.rules[op]
	if !ok {
		return nil
	}
	return Zip(rule)
}

// Zip pairs the active interval markers, shortest interval first, with the
// active levels in C, N, CH order. Intervals beyond the last level are dropped.
func Zip(rule model.IntervalRule) []Pair {
	var levels []model.Level
	if rule.Control {
		levels = append(levels, model.LevelControl)
	}
	if rule.Cleaning {
		levels = append(levels, model.LevelCleaning)
	}
	if rule.Replacement {
		levels = append(levels, model.LevelReplacement)
	}

	var pairs []Pair
	for i, m := range rule.Markers() {
		if !m.Active() {
			continue
		}
		if len(pairs) == len(levels) {
			break
		}
		pairs = append(pairs, Pair{Interval: model.Intervals[i], Level: levels[len(pairs)]})
	}
	return pairs
}
