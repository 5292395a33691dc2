// Package importer reads the reference workbook: equipment roster, rule
// tables and the raw workshop logs.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
	"fleet-maintenance-backend/internal/rules"
	"fleet-maintenance-backend/internal/store"
)

var (
	// ErrInvalidWorkbook means the upload is not a readable XLSX file.
	ErrInvalidWorkbook = errors.New("invalid workbook")
	// ErrNoSheets means the workbook holds none of the configured sheets.
	ErrNoSheets = errors.New("workbook contains none of the expected sheets")
)

// Summary describes what an import read.
type Summary struct {
	Sheets  []string          `json:"sheets"`
	Rows    map[string]int    `json:"rows"`
	Skipped map[string]int    `json:"skipped,omitempty"`
	Schema  *model.RuleSchema `json:"schema,omitempty"`
}

func (s *Summary) skip(table, reason string) {
	s.Skipped[table+":"+reason]++
}

// Column aliases, as header keys.
var (
	colMatricule     = []string{"matricule"}
	colCategory      = []string{"categorie", "category"}
	colBrand         = []string{"marque", "brand"}
	colDesignation   = []string{"designation"}
	colPurchaseDate  = []string{"date_achat", "date_acquisition", "purchase_date"}
	colMeter         = []string{"compteur", "meter"}
	colStatus        = []string{"sitactuelle", "statut", "status"}
	colEntryDate     = []string{"date_entree"}
	colExitDate      = []string{"date_sortie"}
	colDeclaredFault = []string{"panne_declaree"}
	colParts         = []string{"pieces"}
	colFaultType     = []string{"type_de_panne"}
	colTechnician    = []string{"intervenant"}
	colDate          = []string{"date", "date_entretien"}
	colCounter       = []string{"compteur_kmh", "compteur_km_h", "compteur"}
	colOilFilter     = []string{"fh", "f_h"}
	colFuelFilter    = []string{"fg", "f_g"}
	colAirFilter     = []string{"fair", "f_air"}
	colHydFilter     = []string{"fhyd", "f_hyd"}
	colChain         = []string{"chaine", "chain"}
	colObs           = []string{"obs", "observation"}
	colCode          = []string{"entretien", "code"}
	colGrease        = []string{"graisse", "grease"}
	colOperation     = []string{"entretien", "operation"}
	colActive        = []string{"is_active", "active", "actif"}
)

// table is a sheet read as a header row and data rows.
type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func newTable(rows [][]string) *table {
	t := &table{index: make(map[string]int)}
	if len(rows) == 0 {
		return t
	}
	t.headers = rows[0]
	for i, h := range t.headers {
		key := parse.HeaderKey(h)
		if _, dup := t.index[key]; key != "" && !dup {
			t.index[key] = i
		}
	}
	for _, row := range rows[1:] {
		if !blank(row) {
			t.rows = append(t.rows, row)
		}
	}
	return t
}

// column returns the index of the first alias present, or -1.
func (t *table) column(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.index[parse.HeaderKey(a)]; ok {
			return i
		}
	}
	return -1
}

func (t *table) value(row []string, aliases []string) string {
	return cell(row, t.column(aliases...))
}

func (t *table) date(row []string, aliases []string) string {
	return cellDate(t.value(row, aliases))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cellDate renders Excel date serials as DD/MM/YYYY and leaves text as is.
func cellDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return parse.FormatDay(t)
}

// Read parses a workbook. Absent sheets leave their table nil so the store
// keeps its current content.
func Read(r io.Reader, cfg config.ImportConfig) (store.ReferenceData, Summary, error) {
	var data store.ReferenceData
	summary := Summary{Rows: make(map[string]int), Skipped: make(map[string]int)}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return data, summary, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	load := func(name string) (*table, error) {
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
				rows, err := f.GetRows(s, excelize.Options{RawCellValue: true})
				if err != nil {
					return nil, fmt.Errorf("failed to read sheet %q: %w", s, err)
				}
				summary.Sheets = append(summary.Sheets, s)
				return newTable(rows), nil
			}
		}
		return nil, nil
	}

	steps := []struct {
		sheet string
		read  func(*table)
	}{
		{cfg.Sheets.Equipment, func(t *table) { data.Equipment = readEquipment(t, &summary) }},
		{cfg.Sheets.Rules, func(t *table) {
			data.IntervalRules, data.Schema = readIntervalRules(t, cfg.RuleSchema, &summary)
			summary.Schema = data.Schema
		}},
		{cfg.Sheets.CategoryRules, func(t *table) { data.CategoryRules = readCategoryRules(t, &summary) }},
		{cfg.Sheets.Curative, func(t *table) { data.Curative = readCurative(t, &summary) }},
		{cfg.Sheets.OilChanges, func(t *table) { data.OilChanges = readOilChanges(t, &summary) }},
		{cfg.Sheets.Consolidated, func(t *table) { data.Consolidated = readConsolidated(t, &summary) }},
	}
	for _, step := range steps {
		if step.sheet == "" {
			continue
		}
		t, err := load(step.sheet)
		if err != nil {
			return data, summary, err
		}
		if t == nil {
			log.Printf("Workbook has no sheet %q; table left untouched", step.sheet)
			continue
		}
		step.read(t)
	}

	if len(summary.Sheets) == 0 {
		return data, summary, ErrNoSheets
	}
	return data, summary, nil
}

func readEquipment(t *table, summary *Summary) []model.Equipment {
	out := make([]model.Equipment, 0, len(t.rows))
	seen := make(map[string]bool, len(t.rows))
	for _, row := range t.rows {
		matricule := t.value(row, colMatricule)
		if matricule == "" {
			summary.skip("equipment", "missing_matricule")
			continue
		}
		key := parse.Normalize(matricule)
		if seen[key] {
			summary.skip("equipment", "duplicate_matricule")
			continue
		}
		seen[key] = true

		e := model.Equipment{
			Matricule:    matricule,
			Category:     t.value(row, colCategory),
			Brand:        t.value(row, colBrand),
			Designation:  t.value(row, colDesignation),
			PurchaseDate: t.date(row, colPurchaseDate),
			Status:       t.value(row, colStatus),
		}
		if meter, ok := parse.Quantity(t.value(row, colMeter)); ok {
			e.Meter = meter
		}
		out = append(out, e)
	}
	summary.Rows["equipment"] = len(out)
	return out
}

// readIntervalRules uses the configured schema, or discovers it from the
// header row. A sheet without operation column yields no rule and a schema
// that makes planning fail until a valid sheet is imported.
func readIntervalRules(t *table, cfg config.RuleSchemaConfig, summary *Summary) ([]model.IntervalRule, *model.RuleSchema) {
	schema, ok := rules.FromConfig(cfg)
	if !ok {
		var err error
		schema, err = rules.DiscoverSchema(t.headers)
		if err != nil {
			log.Printf("Rule sheet discarded: %v", err)
			summary.Rows["interval_rules"] = 0
			return []model.IntervalRule{}, &schema
		}
	}

	opCol := t.column(schema.OperationColumn)
	if opCol < 0 {
		log.Printf("Rule sheet has no column %q", schema.OperationColumn)
		schema.OperationColumn = ""
		summary.Rows["interval_rules"] = 0
		return []model.IntervalRule{}, &schema
	}
	optional := func(name string) int {
		if name == "" {
			return -1
		}
		return t.column(name)
	}
	intervalCols := make(map[int]int, len(schema.IntervalColumns))
	for interval, name := range schema.IntervalColumns {
		intervalCols[interval] = optional(name)
	}
	controlCol := optional(schema.ControlColumn)
	cleaningCol := optional(schema.CleaningColumn)
	replacementCol := optional(schema.ReplacementColumn)

	out := make([]model.IntervalRule, 0, len(t.rows))
	seen := make(map[string]bool)
	for _, row := range t.rows {
		name := cell(row, opCol)
		op, ok := catalog.Resolve(name)
		if !ok {
			summary.skip("interval_rules", "unknown_operation")
			continue
		}
		if seen[op.Code] {
			summary.skip("interval_rules", "duplicate_operation")
			continue
		}
		seen[op.Code] = true

		rule := model.IntervalRule{
			Operation:   op.Code,
			Label:       op.Label,
			Control:     flag(cell(row, controlCol)),
			Cleaning:    flag(cell(row, cleaningCol)),
			Replacement: flag(cell(row, replacementCol)),
		}
		for interval, col := range intervalCols {
			rule.SetMarker(interval, model.ParseMarker(cell(row, col)))
		}
		out = append(out, rule)
	}
	summary.Rows["interval_rules"] = len(out)
	return out, &schema
}

func readCategoryRules(t *table, summary *Summary) []model.CategoryRule {
	out := make([]model.CategoryRule, 0, len(t.rows))
	seen := make(map[string]bool)
	for _, row := range t.rows {
		category := t.value(row, colCategory)
		if category == "" {
			summary.skip("category_rules", "missing_category")
			continue
		}
		op, ok := catalog.Resolve(t.value(row, colOperation))
		if !ok {
			summary.skip("category_rules", "unknown_operation")
			continue
		}
		key := parse.Normalize(category) + "|" + op.Code
		if seen[key] {
			summary.skip("category_rules", "duplicate_rule")
			continue
		}
		seen[key] = true

		active := true
		if raw := t.value(row, colActive); raw != "" {
			active = flag(raw)
		}
		out = append(out, model.CategoryRule{Category: category, Operation: op.Code, Active: active})
	}
	summary.Rows["category_rules"] = len(out)
	return out
}

func readCurative(t *table, summary *Summary) []model.CurativeRecord {
	out := make([]model.CurativeRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.CurativeRecord{
			Matricule:     t.value(row, colMatricule),
			EntryDate:     t.date(row, colEntryDate),
			ExitDate:      t.date(row, colExitDate),
			DeclaredFault: t.value(row, colDeclaredFault),
			Parts:         t.value(row, colParts),
			FaultType:     t.value(row, colFaultType),
			Technician:    t.value(row, colTechnician),
		})
	}
	summary.Rows["curative"] = len(out)
	return out
}

func readOilChanges(t *table, summary *Summary) []model.OilChangeRecord {
	out := make([]model.OilChangeRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.OilChangeRecord{
			Matricule:       t.value(row, colMatricule),
			Date:            t.date(row, colDate),
			Counter:         t.value(row, colCounter),
			OilFilter:       t.value(row, colOilFilter),
			FuelFilter:      t.value(row, colFuelFilter),
			AirFilter:       t.value(row, colAirFilter),
			HydraulicFilter: t.value(row, colHydFilter),
			Chain:           t.value(row, colChain),
			Obs:             t.value(row, colObs),
		})
	}
	summary.Rows["oil_changes"] = len(out)
	return out
}

func readConsolidated(t *table, summary *Summary) []model.ConsolidatedRecord {
	out := make([]model.ConsolidatedRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.ConsolidatedRecord{
			Matricule: t.value(row, colMatricule),
			Date:      t.date(row, colDate),
			Code:      t.value(row, colCode),
			Obs:       t.value(row, colObs),
			Grease:    t.value(row, colGrease),
		})
	}
	summary.Rows["consolidated"] = len(out)
	return out
}

// flag reads a yes/no cell. Any non-empty value other than an explicit no
// counts as yes.
func flag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "non", "no", "n":
		return false
	}
	return true
}
