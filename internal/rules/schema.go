package rules

import (
	"errors"
	"strconv"
	"strings"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// ErrNoOperationColumn means the rule table has no column naming the
// operation, so no rule can be attributed and planning cannot run.
var ErrNoOperationColumn = errors.New("rule table has no operation column")

var levelKeywords = []struct {
	keywords []string
	column   func(*model.RuleSchema) *string
}{
	{[]string{"controler", "control"}, func(s *model.RuleSchema) *string { return &s.ControlColumn }},
	{[]string{"nettoyage", "cleaning"}, func(s *model.RuleSchema) *string { return &s.CleaningColumn }},
	{[]string{"changement", "replacement"}, func(s *model.RuleSchema) *string { return &s.ReplacementColumn }},
}

// DefaultSchema is the layout of the rule table produced by this service.
func DefaultSchema() model.RuleSchema {
	s := model.RuleSchema{
		OperationColumn:   "operation",
		IntervalColumns:   make(map[int]string, len(model.Intervals)),
		ControlColumn:     "control",
		CleaningColumn:    "cleaning",
		ReplacementColumn: "replacement",
	}
	for _, i := range model.Intervals {
		s.IntervalColumns[i] = strconv.Itoa(i)
	}
	return s
}

// FromConfig builds a schema from explicit configuration. ok is false when
// the configuration names no operation column and discovery is required.
func FromConfig(c config.RuleSchemaConfig) (model.RuleSchema, bool) {
	if strings.TrimSpace(c.Operation) == "" {
		return model.RuleSchema{}, false
	}
	s := model.RuleSchema{
		OperationColumn:   c.Operation,
		IntervalColumns:   make(map[int]string, len(model.Intervals)),
		ControlColumn:     c.Control,
		CleaningColumn:    c.Cleaning,
		ReplacementColumn: c.Replacement,
	}
	for _, i := range model.Intervals {
		if col, ok := c.Intervals[i]; ok && col != "" {
			s.IntervalColumns[i] = col
		} else {
			s.IntervalColumns[i] = strconv.Itoa(i)
		}
	}
	return s, true
}

// DiscoverSchema inspects the header row of a rule sheet. Interval columns
// are the headers equal to an interval length, level columns are found by
// keyword, and the first remaining header that is neither an id nor a number
// names the operation.
func DiscoverSchema(headers []string) (model.RuleSchema, error) {
	s := model.RuleSchema{IntervalColumns: make(map[int]string, len(model.Intervals))}
	used := make(map[string]bool, len(headers))

	for _, h := range headers {
		n, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil {
			continue
		}
		for _, i := range model.Intervals {
			if n == i {
				s.IntervalColumns[i] = h
				used[h] = true
			}
		}
	}

	for _, lk := range levelKeywords {
		col := lk.column(&s)
		for _, h := range headers {
			if used[h] || !containsAny(parse.Normalize(h), lk.keywords) {
				continue
			}
			*col = h
			used[h] = true
			break
		}
	}

	for _, h := range headers {
		key := parse.Normalize(h)
		if used[h] || key == "" || key == "id" {
			continue
		}
		if _, err := strconv.Atoi(key); err == nil {
			continue
		}
		s.OperationColumn = h
		break
	}
	if s.OperationColumn == "" {
		return s, ErrNoOperationColumn
	}
	return s, nil
}

// Validate reports ErrNoOperationColumn for a schema without operation column.
func Validate(s model.RuleSchema) error {
	if strings.TrimSpace(s.OperationColumn) == "" {
		return ErrNoOperationColumn
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
