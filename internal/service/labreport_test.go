package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acadlab/timetable-api/internal/models"
)

func labGrid() *models.Grid {
	grid := models.NewGrid()
	grid.Set(models.Monday, "8:00", models.Cell{Subject: "Lab Physics", Faculty: "Dr. A", Room: "Room101"})
	grid.Set(models.Monday, "10:00", models.Cell{Subject: "Math", Faculty: "Dr. B", Room: "Room102"})
	grid.Set(models.Monday, "2:00", models.Cell{Subject: "Chemistry Lab", Faculty: "Dr. C", Room: "Room103"})
	grid.Set(models.Wednesday, "9:00", models.Cell{Subject: "Lab Circuits", Faculty: "Dr. D", Room: "Room104"})
	grid.Set(models.Friday, "8:00", models.Cell{Subject: "Lab Signals", Faculty: "Dr. E", Room: "Room105"})
	return grid
}

func TestExtractLabReportOrderingAndContent(t *testing.T) {
	rows := ExtractLabReport(labGrid(), []models.Day{models.Wednesday, models.Monday})

	// Rows group by day in selection order, then follow slot order.
	require.Len(t, rows, 3)
	require.Equal(t, models.Wednesday, rows[0].Day)
	require.Equal(t, models.TimeSlot("9:00"), rows[0].Time)
	require.Equal(t, "Lab Circuits (Dr. D) - Room104", rows[0].Session)

	require.Equal(t, models.Monday, rows[1].Day)
	require.Equal(t, models.TimeSlot("8:00"), rows[1].Time)
	require.Equal(t, "Lab Physics (Dr. A) - Room101", rows[1].Session)

	require.Equal(t, models.Monday, rows[2].Day)
	require.Equal(t, models.TimeSlot("2:00"), rows[2].Time)
	require.Equal(t, "Chemistry Lab (Dr. C) - Room103", rows[2].Session)
}

func TestExtractLabReportMatchIsCaseSensitive(t *testing.T) {
	grid := models.NewGrid()
	grid.Set(models.Monday, "8:00", models.Cell{Subject: "physics lab work", Faculty: "Dr. A", Room: "R1"})
	grid.Set(models.Monday, "9:00", models.Cell{Subject: "Labour Economics", Faculty: "Dr. B", Room: "R2"})

	rows := ExtractLabReport(grid, []models.Day{models.Monday})
	// Capitalised "Lab" matches anywhere in the description; lowercase
	// "lab" does not.
	require.Len(t, rows, 1)
	require.Equal(t, "Labour Economics (Dr. B) - R2", rows[0].Session)
}

func TestExtractLabReportSkipsUnknownDays(t *testing.T) {
	rows := ExtractLabReport(labGrid(), []models.Day{"Sunday", models.Monday, "Funday"})
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, models.Monday, row.Day)
	}
}

func TestExtractLabReportEmptySelection(t *testing.T) {
	rows := ExtractLabReport(labGrid(), nil)
	require.NotNil(t, rows)
	require.Empty(t, rows)

	rows = ExtractLabReport(nil, []models.Day{models.Monday})
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestExtractLabReportIdempotent(t *testing.T) {
	grid := labGrid()
	days := []models.Day{models.Monday, models.Wednesday, models.Friday}
	first := ExtractLabReport(grid, days)
	second := ExtractLabReport(grid, days)
	require.Equal(t, first, second)
}

func TestExtractLabReportSkipsFreeCells(t *testing.T) {
	grid := models.NewGrid()
	rows := ExtractLabReport(grid, models.Days())
	require.Empty(t, rows)
}
