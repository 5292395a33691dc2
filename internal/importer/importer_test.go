package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func workbook(t *testing.T, sheets ...sheet) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for _, s := range sheets {
		_, err := f.NewSheet(s.name)
		require.NoError(t, err)
		for i, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func defaultImport() config.ImportConfig {
	cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 1}}
	cfg.ApplyDefaults()
	return cfg.Import
}

func TestRead_Workbook(t *testing.T) {
	r := workbook(t,
		sheet{"matrice", [][]interface{}{
			{"Matricule", "Categorie", "Marque", "Designation", "Compteur"},
			{"EQ-1", "Trans Benner", "Volvo", "Camion benne", "12500,5"},
			{"", "Trans Benner", "Volvo", "Sans matricule", ""},
			{"eq 1", "Grue", "Liebherr", "Doublon", ""},
			{"EQ-2", "Grue", "Liebherr", "Grue mobile", ""},
		}},
		sheet{"Param", [][]interface{}{
			{"id", "Entretien", "7", "30", "90", "180", "360", "Contrôler", "Nettoyage", "Changement"},
			{1, "Vidanger le carter moteur", "", "", "*", "*", "", "x", "x", ""},
			{2, "Peinture", "*", "", "", "", "", "x", "", ""},
		}},
		sheet{"category_entretiens", [][]interface{}{
			{"category", "entretien", "is_active"},
			{"Trans Benner", "Filtre à air", 0},
			{"Grue", "chaine", "true"},
			{"Grue", "inconnu", 1},
		}},
		sheet{"vidange", [][]interface{}{
			{"Matricule", "Date", "Compteur (km/h)", "F.H", "Obs"},
			{"EQ-1", 45366, "12500", "*", "RAS"},
			{"EQ-2", "02/04/2024", "", "", "FAIR"},
		}},
	)

	data, summary, err := Read(r, defaultImport())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"matrice", "Param", "category_entretiens", "vidange"}, summary.Sheets)

	require.Len(t, data.Equipment, 2)
	assert.Equal(t, "EQ-1", data.Equipment[0].Matricule)
	assert.Equal(t, "Trans Benner", data.Equipment[0].Category)
	assert.InDelta(t, 12500.5, data.Equipment[0].Meter, 0.001)
	assert.Equal(t, "EQ-2", data.Equipment[1].Matricule)
	assert.Equal(t, 1, summary.Skipped["equipment:missing_matricule"])
	assert.Equal(t, 1, summary.Skipped["equipment:duplicate_matricule"])

	require.Len(t, data.IntervalRules, 1)
	rule := data.IntervalRules[0]
	assert.Equal(t, catalog.ChangeEngineOil, rule.Operation)
	assert.Equal(t, model.MarkerSingle, rule.Every90)
	assert.Equal(t, model.MarkerSingle, rule.Every180)
	assert.Equal(t, model.MarkerNone, rule.Every7)
	assert.True(t, rule.Control)
	assert.True(t, rule.Cleaning)
	assert.False(t, rule.Replacement)
	assert.Equal(t, 1, summary.Skipped["interval_rules:unknown_operation"])

	require.NotNil(t, data.Schema)
	assert.Equal(t, "Entretien", data.Schema.OperationColumn)
	assert.Equal(t, "Contrôler", data.Schema.ControlColumn)
	assert.Equal(t, "90", data.Schema.IntervalColumns[90])

	require.Len(t, data.CategoryRules, 2)
	assert.Equal(t, catalog.AirFilter, data.CategoryRules[0].Operation)
	assert.False(t, data.CategoryRules[0].Active)
	assert.Equal(t, catalog.Chain, data.CategoryRules[1].Operation)
	assert.True(t, data.CategoryRules[1].Active)

	require.Len(t, data.OilChanges, 2)
	assert.Equal(t, "15/03/2024", data.OilChanges[0].Date)
	assert.Equal(t, "12500", data.OilChanges[0].Counter)
	assert.Equal(t, "*", data.OilChanges[0].OilFilter)
	assert.Equal(t, "02/04/2024", data.OilChanges[1].Date)
	assert.Equal(t, "FAIR", data.OilChanges[1].Obs)

	assert.Nil(t, data.Curative)
	assert.Nil(t, data.Consolidated)
	assert.Equal(t, 2, summary.Rows["equipment"])
}

func TestRead_ConfiguredRuleSchema(t *testing.T) {
	cfg := defaultImport()
	cfg.RuleSchema = config.RuleSchemaConfig{
		Operation: "Op",
		Intervals: map[int]string{30: "Mensuel"},
		Control:   "Ctrl",
	}
	r := workbook(t, sheet{"Param", [][]interface{}{
		{"Op", "Mensuel", "Ctrl"},
		{"battery", "**", "oui"},
	}})

	data, _, err := Read(r, cfg)
	require.NoError(t, err)
	require.Len(t, data.IntervalRules, 1)
	assert.Equal(t, "battery", data.IntervalRules[0].Operation)
	assert.Equal(t, model.MarkerDouble, data.IntervalRules[0].Every30)
	assert.True(t, data.IntervalRules[0].Control)
	assert.False(t, data.IntervalRules[0].Cleaning)
}

func TestRead_RuleSheetWithoutOperationColumn(t *testing.T) {
	r := workbook(t, sheet{"Param", [][]interface{}{
		{"id", "7", "30"},
		{1, "*", ""},
	}})

	data, summary, err := Read(r, defaultImport())
	require.NoError(t, err)
	assert.NotNil(t, data.IntervalRules)
	assert.Empty(t, data.IntervalRules)
	require.NotNil(t, summary.Schema)
	assert.Empty(t, summary.Schema.OperationColumn)
}

func TestRead_NoKnownSheet(t *testing.T) {
	r := workbook(t, sheet{"Autre", [][]interface{}{{"a"}, {"b"}}})

	_, _, err := Read(r, defaultImport())
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestRead_NotAWorkbook(t *testing.T) {
	_, _, err := Read(bytes.NewReader([]byte("matricule;date")), defaultImport())
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestCellDate(t *testing.T) {
	assert.Equal(t, "15/03/2024", cellDate("45366"))
	assert.Equal(t, "15/03/2024", cellDate("15/03/2024"))
	assert.Equal(t, "", cellDate(""))
	assert.Equal(t, "n/a", cellDate("n/a"))
}

func TestFlag(t *testing.T) {
	for _, v := range []string{"x", "1", "oui", "TRUE", "*"} {
		assert.True(t, flag(v), v)
	}
	for _, v := range []string{"", " ", "0", "non", "False", "no"} {
		assert.False(t, flag(v), v)
	}
}
