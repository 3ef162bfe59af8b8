package models

import "fmt"

// Day is one of the fixed weekday labels on the grid's horizontal axis.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
)

// TimeSlot is one of the fixed daily time labels on the vertical axis.
type TimeSlot string

// FreeLabel is the sentinel rendered for an unassigned cell.
const FreeLabel = "Free"

// Days returns the fixed day axis in grid order. The axes are constants, not
// derived from input data, so every run produces a fully enumerable
// rectangular grid.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// TimeSlots returns the fixed time axis in grid order.
func TimeSlots() []TimeSlot {
	return []TimeSlot{"8:00", "9:00", "10:00", "11:00", "12:00", "1:00", "2:00", "3:00"}
}

// ParseDay maps a label onto the day domain.
func ParseDay(raw string) (Day, bool) {
	for _, d := range Days() {
		if string(d) == raw {
			return d, true
		}
	}
	return "", false
}

// Cell holds one grid assignment. Subject, faculty and room stay structured
// internally; Describe formats the display string at the reporting boundary.
type Cell struct {
	Subject string `json:"subject,omitempty"`
	Faculty string `json:"faculty,omitempty"`
	Room    string `json:"room,omitempty"`
	Free    bool   `json:"free"`
}

// Describe renders the session description for reports and exports.
func (c Cell) Describe() string {
	if c.Free {
		return FreeLabel
	}
	return fmt.Sprintf("%s (%s) - %s", c.Subject, c.Faculty, c.Room)
}

// Grid is the day x time-slot structure owned by one generation run. Every
// cell always holds exactly one value; NewGrid materializes all of them Free.
type Grid struct {
	Cells map[Day]map[TimeSlot]Cell `json:"cells"`
}

// NewGrid returns a grid over the fixed axes with every cell Free.
func NewGrid() *Grid {
	cells := make(map[Day]map[TimeSlot]Cell, len(Days()))
	for _, day := range Days() {
		row := make(map[TimeSlot]Cell, len(TimeSlots()))
		for _, slot := range TimeSlots() {
			row[slot] = Cell{Free: true}
		}
		cells[day] = row
	}
	return &Grid{Cells: cells}
}

// Cell returns the value at (day, slot) and whether the coordinate is inside
// the grid's domain.
func (g *Grid) Cell(day Day, slot TimeSlot) (Cell, bool) {
	row, ok := g.Cells[day]
	if !ok {
		return Cell{}, false
	}
	cell, ok := row[slot]
	return cell, ok
}

// Set writes a cell, ignoring coordinates outside the fixed domain.
func (g *Grid) Set(day Day, slot TimeSlot, cell Cell) {
	if row, ok := g.Cells[day]; ok {
		if _, ok := row[slot]; ok {
			row[slot] = cell
		}
	}
}

// HasDay reports whether the day belongs to the grid's domain.
func (g *Grid) HasDay(day Day) bool {
	_, ok := g.Cells[day]
	return ok
}

// TimetableRow is one rendered row of the grid (a time slot across all days).
type TimetableRow struct {
	Time     TimeSlot       `json:"time"`
	Sessions map[Day]string `json:"sessions"`
}

// Rows renders the grid for tabular display, one row per time slot in fixed
// order.
func (g *Grid) Rows() []TimetableRow {
	rows := make([]TimetableRow, 0, len(TimeSlots()))
	for _, slot := range TimeSlots() {
		row := TimetableRow{Time: slot, Sessions: make(map[Day]string, len(Days()))}
		for _, day := range Days() {
			cell, _ := g.Cell(day, slot)
			row.Sessions[day] = cell.Describe()
		}
		rows = append(rows, row)
	}
	return rows
}

// LabReportRow is one extracted laboratory session. It exists only as
// extractor output and is never persisted beyond the reporting step.
type LabReportRow struct {
	Time    TimeSlot `json:"time"`
	Day     Day      `json:"day"`
	Session string   `json:"session"`
}
