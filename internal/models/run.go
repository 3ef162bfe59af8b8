package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RunStatus captures the outcome of one section's generation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// TimetableRun archives one generation run for a section. Persistence is an
// audit trail for the reporting shell; the engine itself never reads it back.
type TimetableRun struct {
	ID            string         `db:"id" json:"id"`
	Section       string         `db:"section" json:"section"`
	Status        RunStatus      `db:"status" json:"status"`
	CellsAssigned int            `db:"cells_assigned" json:"cells_assigned"`
	CellsFree     int            `db:"cells_free" json:"cells_free"`
	ErrorMessage  *string        `db:"error_message" json:"error_message,omitempty"`
	Meta          types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// TimetableRunSlot is one archived grid cell of a run.
type TimetableRunSlot struct {
	ID      string   `db:"id" json:"id"`
	RunID   string   `db:"run_id" json:"run_id"`
	Day     Day      `db:"day" json:"day"`
	Time    TimeSlot `db:"time_slot" json:"time"`
	Subject *string  `db:"subject" json:"subject,omitempty"`
	Faculty *string  `db:"faculty" json:"faculty,omitempty"`
	Room    *string  `db:"room" json:"room,omitempty"`
	Free    bool     `db:"free" json:"free"`
}
