package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
)

func roster(matricules ...string) []model.Equipment {
	var out []model.Equipment
	for _, m := range matricules {
		out = append(out, model.Equipment{Matricule: m})
	}
	return out
}

func TestBuildMatrix_Pagination(t *testing.T) {
	equipment := roster("EQ-3", "EQ-1", "XB-2", "EQ-1", "")

	p := BuildMatrix(equipment, nil, MatrixOptions{Year: 2024, Query: PageQuery{Filter: "eq", Page: 2, PageSize: 1}})

	assert.Equal(t, 2, p.Total)
	require.Len(t, p.Rows, 12)
	assert.Equal(t, "EQ-3", p.Rows[0].Matricule)
	assert.Equal(t, 1, p.Rows[0].Month)
	assert.Equal(t, "December", p.Rows[11].MonthName)
	assert.Len(t, p.Rows[0].Cells, len(catalog.All()))
	assert.Equal(t, "Niveau d'huile du carter", p.Headers[0])

	p = BuildMatrix(equipment, nil, MatrixOptions{Year: 2024, Query: PageQuery{Page: 9, PageSize: 1}})
	assert.Equal(t, 3, p.Total)
	assert.Empty(t, p.Rows)

	p = BuildMatrix(equipment, nil, MatrixOptions{Year: 2024, Query: PageQuery{Page: 0, PageSize: 0}})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageSize)
	assert.Equal(t, "EQ-1", p.Rows[0].Matricule)

	p = BuildMatrix(equipment, nil, MatrixOptions{Year: 2024, All: true})
	assert.Len(t, p.Rows, 36)
}

func TestBuildMatrix_BestCellAndStatus(t *testing.T) {
	realized := day(2024, time.March, 4)
	occurrences := []Occurrence{
		{Matricule: "EQ-1", Operation: catalog.OilFilter, ScheduledDate: day(2024, time.March, 1), Level: model.LevelReplacement},
		{Matricule: "EQ-1", Operation: catalog.OilFilter, ScheduledDate: day(2024, time.March, 2), Level: model.LevelControl, Realized: true, RealizedDate: &realized},
		{Matricule: "EQ-1", Operation: catalog.Chain, ScheduledDate: day(2024, time.March, 1), Level: model.LevelControl},
		{Matricule: "EQ-1", Operation: catalog.Chain, ScheduledDate: day(2024, time.March, 20), Level: model.LevelControl},
		{Matricule: "EQ-1", Operation: catalog.AirFilter, ScheduledDate: day(2024, time.May, 25), Level: model.LevelCleaning},
		{Matricule: "EQ-1", Operation: catalog.Gearbox, ScheduledDate: day(2024, time.May, 2), Level: model.LevelOutOfPlan, Realized: true},
		{Matricule: "EQ-1", Operation: catalog.Gearbox, ScheduledDate: day(2023, time.May, 2), Level: model.LevelControl},
	}

	p := BuildMatrix(roster("EQ-1"), occurrences, MatrixOptions{
		Year:          2024,
		Now:           day(2024, time.June, 1),
		ToleranceDays: 30,
	})
	require.Len(t, p.Rows, 12)

	march := p.Rows[2].Cells
	oil := march[catalog.Index(catalog.OilFilter)]
	require.NotNil(t, oil)
	assert.True(t, oil.Realized)
	assert.Equal(t, StatusRealized, oil.Status)

	chain := march[catalog.Index(catalog.Chain)]
	require.NotNil(t, chain)
	assert.Equal(t, day(2024, time.March, 20), chain.ScheduledDate)
	assert.Equal(t, StatusOverdue, chain.Status)

	may := p.Rows[4].Cells
	assert.Equal(t, StatusPlanned, may[catalog.Index(catalog.AirFilter)].Status)
	gear := may[catalog.Index(catalog.Gearbox)]
	require.NotNil(t, gear)
	assert.Equal(t, StatusOutOfPlan, gear.Status)

	assert.Nil(t, p.Rows[0].Cells[catalog.Index(catalog.OilFilter)])
}
