package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCellText(t *testing.T) {
	realized := day(2024, time.March, 20)
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "C 15/03/2024", CellText(&followup.Cell{
		ScheduledDate: day(2024, time.March, 15),
		Level:         model.LevelControl,
	}))
	assert.Equal(t, "N 15/03/2024 / 20/03/2024", CellText(&followup.Cell{
		ScheduledDate: day(2024, time.March, 15),
		Level:         model.LevelCleaning,
		Realized:      true,
		RealizedDate:  &realized,
	}))
}

func TestWriteMatrix(t *testing.T) {
	page := followup.MatrixPage{
		Year:       2024,
		Operations: []string{"a", "b"},
		Headers:    []string{"Op A", "Op B"},
		Rows: []followup.MatrixRow{
			{Matricule: "EQ-1", Month: 1, MonthName: "January", Cells: []*followup.Cell{
				nil,
				{ScheduledDate: day(2024, time.January, 9), Level: model.LevelReplacement, Status: followup.StatusOverdue},
			}},
			{Matricule: "EQ-1", Month: 2, MonthName: "February", Cells: []*followup.Cell{nil, nil}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, "Planning 2024", page))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Planning 2024"}, f.GetSheetList())
	rows, err := f.GetRows("Planning 2024")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Matricule", "Mois", "Op A", "Op B"}, rows[0])
	assert.Equal(t, []string{"EQ-1", "January", "", "CH 09/01/2024"}, rows[1])
	assert.Equal(t, []string{"EQ-1", "February"}, rows[2])
}

func TestWriteMatrix_TruncatesLongTitle(t *testing.T) {
	var buf bytes.Buffer
	title := "Suivi des entretiens preventifs 2024"
	require.NoError(t, WriteMatrix(&buf, title, followup.MatrixPage{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{title[:31]}, f.GetSheetList())
}
