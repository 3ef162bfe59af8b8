package service

import (
	"strings"

	"github.com/acadlab/timetable-api/internal/models"
)

// labMarker identifies laboratory sessions by substring match on the
// rendered cell description. The match is case-sensitive on purpose: existing
// report consumers rely on it.
const labMarker = "Lab"

// ExtractLabReport scans the grid restricted to selectedDays and returns one
// row per laboratory session. Rows are grouped by day in the order the days
// were given, and within each day follow the grid's fixed time-slot order,
// so the output is deterministic for a given grid. Days outside the grid's
// domain are skipped; an empty selection yields an empty report.
func ExtractLabReport(grid *models.Grid, selectedDays []models.Day) []models.LabReportRow {
	rows := make([]models.LabReportRow, 0)
	if grid == nil {
		return rows
	}
	for _, day := range selectedDays {
		if !grid.HasDay(day) {
			continue
		}
		for _, slot := range models.TimeSlots() {
			cell, _ := grid.Cell(day, slot)
			if cell.Free {
				continue
			}
			session := cell.Describe()
			if !strings.Contains(session, labMarker) {
				continue
			}
			rows = append(rows, models.LabReportRow{Time: slot, Day: day, Session: session})
		}
	}
	return rows
}
