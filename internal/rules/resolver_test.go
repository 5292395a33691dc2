package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleet-maintenance-backend/internal/model"
)

func TestZip(t *testing.T) {
	testCases := []struct {
		name     string
		rule     model.IntervalRule
		expected []Pair
	}{
		{
			name:     "Two intervals two levels",
			rule:     model.IntervalRule{Every180: "*", Every90: "**", Control: true, Cleaning: true},
			expected: []Pair{{90, model.LevelControl}, {180, model.LevelCleaning}},
		},
		{
			name:     "Excess intervals are dropped",
			rule:     model.IntervalRule{Every7: "*", Every30: "*", Every360: "*", Replacement: true},
			expected: []Pair{{7, model.LevelReplacement}},
		},
		{
			name:     "Levels skip missing flags",
			rule:     model.IntervalRule{Every30: "*", Every360: "*", Control: true, Replacement: true},
			expected: []Pair{{30, model.LevelControl}, {360, model.LevelReplacement}},
		},
		{
			name: "Unknown marker is inactive",
			rule: model.IntervalRule{Every30: "x", Control: true},
		},
		{
			name: "No levels",
			rule: model.IntervalRule{Every30: "*"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Zip(tc.rule))
		})
	}
}

func TestResolver_ActiveRules(t *testing.T) {
	r := NewResolver(
		[]model.IntervalRule{{Operation: "tyre", Every30: "*", Control: true}},
		[]model.CategoryRule{
			{Category: "Air Comprimé", Operation: "tyre", Active: false},
			{Category: "Légère E", Operation: "tyre", Active: true},
		},
	)

	assert.Equal(t, []Pair{{30, model.LevelControl}}, r.ActiveRules("Légère E", "tyre"))
	assert.Equal(t, []Pair{{30, model.LevelControl}}, r.ActiveRules("no rule row", "tyre"))
	assert.Empty(t, r.ActiveRules("air comprime", "tyre"))
	assert.True(t, r.Excluded("AIR-COMPRIME", "tyre"))
	assert.Empty(t, r.ActiveRules("Légère E", "brake"))
}

func TestResolver_LatestCategorySpellingWins(t *testing.T) {
	earlier := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)
	rule := []model.IntervalRule{{Operation: "tyre", Every30: "*", Control: true}}

	r := NewResolver(rule, []model.CategoryRule{
		{Category: "GRUE", Operation: "tyre", Active: false, UpdatedAt: earlier},
		{Category: "Grue", Operation: "tyre", Active: true, UpdatedAt: later},
	})
	assert.False(t, r.Excluded("Grue", "tyre"))

	r = NewResolver(rule, []model.CategoryRule{
		{Category: "Grue", Operation: "tyre", Active: true, UpdatedAt: earlier},
		{Category: "GRUE", Operation: "tyre", Active: false, UpdatedAt: later},
	})
	assert.True(t, r.Excluded("grue", "tyre"))
}
