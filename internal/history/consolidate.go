// Package history folds the curative, oil change and consolidated workshop
// logs into one normalized list of maintenance events.
package history

import (
	"strings"
	"time"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// Reasons a source row, or part of one, produced no event.
const (
	DropMissingMatricule = "missing_matricule"
	DropUnknownEquipment = "unknown_equipment"
	DropBadDate          = "bad_date"
	DropUnmatched        = "unmatched_operation"
	DropSuppressedGrease = "suppressed_greasing"
	DropEmptyParts       = "empty_parts"
)

// Parts descriptions often start with the verb; it carries no information.
var partsPrefixes = []string{
	"remplacement de ",
	"changement de ",
	"replacement of ",
	"change of ",
}

// Sources groups the raw logs read from the store.
type Sources struct {
	Curative     []model.CurativeRecord
	OilChanges   []model.OilChangeRecord
	Consolidated []model.ConsolidatedRecord
}

// Report summarizes a consolidation run.
type Report struct {
	EventsWritten int            `json:"events_written"`
	Dropped       map[string]int `json:"dropped"`
}

// Roster resolves matricules from the logs to roster matricules.
type Roster map[string]string

// NewRoster indexes equipment by normalized matricule.
func NewRoster(equipment []model.Equipment) Roster {
	r := make(Roster, len(equipment))
	for _, e := range equipment {
		if key := parse.Normalize(e.Matricule); key != "" {
			r[key] = e.Matricule
		}
	}
	return r
}

type consolidator struct {
	matcher *catalog.Matcher
	roster  Roster
	events  []model.HistoryEvent
	dropped map[string]int
}

// Consolidate turns the three logs into history events, in source order:
// curative rows first, then oil changes, then the consolidated log. Rows
// that cannot be used are skipped and counted in the report.
func Consolidate(roster Roster, src Sources, matcher *catalog.Matcher) ([]model.HistoryEvent, Report) {
	c := &consolidator{
		matcher: matcher,
		roster:  roster,
		dropped: make(map[string]int),
	}
	for _, r := range src.Curative {
		c.curative(r)
	}
	for _, r := range src.OilChanges {
		c.oilChange(r)
	}
	for _, r := range src.Consolidated {
		c.consolidated(r)
	}
	return c.events, Report{EventsWritten: len(c.events), Dropped: c.dropped}
}

// row validates the identity and date shared by every source.
func (c *consolidator) row(rawMatricule, rawDate string) (string, time.Time, bool) {
	key := parse.Normalize(rawMatricule)
	if key == "" {
		c.dropped[DropMissingMatricule]++
		return "", time.Time{}, false
	}
	matricule, ok := c.roster[key]
	if !ok {
		c.dropped[DropUnknownEquipment]++
		return "", time.Time{}, false
	}
	date, err := parse.Date(rawDate)
	if err != nil {
		c.dropped[DropBadDate]++
		return "", time.Time{}, false
	}
	return matricule, date, true
}

func (c *consolidator) emit(matricule, op string, date time.Time, meter *int64, src model.Source) {
	c.events = append(c.events, model.HistoryEvent{
		Matricule: matricule,
		Operation: op,
		Date:      date,
		Year:      date.Year(),
		Meter:     meter,
		Source:    src,
	})
}

func (c *consolidator) curative(r model.CurativeRecord) {
	matricule, date, ok := c.row(r.Matricule, r.EntryDate)
	if !ok {
		return
	}
	fragments := SplitParts(r.Parts)
	if len(fragments) == 0 {
		c.dropped[DropEmptyParts]++
		return
	}
	meter := meterReading(r.DeclaredFault)
	for _, f := range fragments {
		op, ok := c.matcher.Match(f)
		if !ok {
			c.dropped[DropUnmatched]++
			continue
		}
		c.emit(matricule, op.Code, date, meter, model.SourceCurative)
	}
}

// SplitParts lower-cases a curative parts field, strips a leading
// "remplacement de" style verb and splits the rest on dashes.
func SplitParts(parts string) []string {
	s := strings.TrimSpace(strings.ToLower(parts))
	for _, p := range partsPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	var out []string
	for _, f := range strings.Split(s, "-") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// oilChangeExtras are the operations an oil change may include besides the
// oil itself, with the observation keyword that also reports them.
var oilChangeExtras = []struct {
	op      string
	keyword string
	flag    func(model.OilChangeRecord) string
}{
	{catalog.OilFilter, "FH", func(r model.OilChangeRecord) string { return r.OilFilter }},
	{catalog.FuelFilter, "FG", func(r model.OilChangeRecord) string { return r.FuelFilter }},
	{catalog.AirFilter, "FAIR", func(r model.OilChangeRecord) string { return r.AirFilter }},
	{catalog.HydraulicFilter, "FHYD", func(r model.OilChangeRecord) string { return r.HydraulicFilter }},
	{catalog.Chain, "CHAINE", func(r model.OilChangeRecord) string { return r.Chain }},
}

func (c *consolidator) oilChange(r model.OilChangeRecord) {
	matricule, date, ok := c.row(r.Matricule, r.Date)
	if !ok {
		return
	}
	meter := meterReading(r.Counter)
	c.emit(matricule, catalog.ChangeEngineOil, date, meter, model.SourceOilChange)

	obs := strings.ToUpper(r.Obs)
	for _, x := range oilChangeExtras {
		if model.ParseMarker(x.flag(r)).Active() || strings.Contains(obs, x.keyword) {
			c.emit(matricule, x.op, date, meter, model.SourceOilChange)
		}
	}
}

func (c *consolidator) consolidated(r model.ConsolidatedRecord) {
	matricule, date, ok := c.row(r.Matricule, r.Date)
	if !ok {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(r.Code))
	obs := strings.TrimSpace(r.Obs)
	meter := meterReading(obs)

	if op, ok := catalog.LookupCode(code); ok {
		if code == catalog.GreasingCode {
			if q, ok := parse.Quantity(r.Grease); !ok || q <= 0 {
				c.dropped[DropSuppressedGrease]++
				return
			}
		}
		c.emit(matricule, op.Code, date, meter, model.SourceConsolidated)
		return
	}

	op, ok := c.matcher.Match(code + " " + obs)
	if !ok {
		c.dropped[DropUnmatched]++
		return
	}
	c.emit(matricule, op.Code, date, meter, model.SourceConsolidated)
}

func meterReading(s string) *int64 {
	if n, ok := parse.MeterReading(s); ok {
		return &n
	}
	return nil
}
