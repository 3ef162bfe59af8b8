package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/acadlab/timetable-api/internal/models"
)

// RunRepository archives generation runs and their grid cells.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs the repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts the run and its slots in one transaction. Slots may be nil
// for failed runs.
func (r *RunRepository) Create(ctx context.Context, run *models.TimetableRun, slots []models.TimetableRunSlot) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if len(run.Meta) == 0 {
		run.Meta = types.JSONText("{}")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const runQuery = `INSERT INTO timetable_runs (id, section, status, cells_assigned, cells_free, error_message, meta, created_at)
VALUES (:id, :section, :status, :cells_assigned, :cells_free, :error_message, :meta, :created_at)`
	if _, err := tx.NamedExecContext(ctx, runQuery, run); err != nil {
		return fmt.Errorf("insert timetable run: %w", err)
	}

	const slotQuery = `INSERT INTO timetable_run_slots (id, run_id, day, time_slot, subject, faculty, room, free)
VALUES (:id, :run_id, :day, :time_slot, :subject, :faculty, :room, :free)`
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].RunID = run.ID
		if _, err := tx.NamedExecContext(ctx, slotQuery, slots[i]); err != nil {
			return fmt.Errorf("insert run slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

// GetByID fetches an archived run.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	const query = `SELECT id, section, status, cells_assigned, cells_free, error_message, meta, created_at
FROM timetable_runs WHERE id = $1`
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, fmt.Errorf("get timetable run: %w", err)
	}
	return &run, nil
}

// ListBySection returns a section's most recent runs, newest first.
func (r *RunRepository) ListBySection(ctx context.Context, section string, limit int) ([]models.TimetableRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, section, status, cells_assigned, cells_free, error_message, meta, created_at
FROM timetable_runs WHERE section = $1 ORDER BY created_at DESC LIMIT $2`
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, section, limit); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// ListSlots returns a run's archived cells in day-major grid order. Days and
// slots are stored as labels, so ordering happens here against the canonical
// grid sequence rather than in SQL.
func (r *RunRepository) ListSlots(ctx context.Context, runID string) ([]models.TimetableRunSlot, error) {
	const query = `SELECT id, run_id, day, time_slot, subject, faculty, room, free
FROM timetable_run_slots WHERE run_id = $1`
	var slots []models.TimetableRunSlot
	if err := r.db.SelectContext(ctx, &slots, query, runID); err != nil {
		return nil, fmt.Errorf("list run slots: %w", err)
	}
	sortSlotsGridOrder(slots)
	return slots, nil
}

func sortSlotsGridOrder(slots []models.TimetableRunSlot) {
	dayPos := make(map[models.Day]int, len(models.Days()))
	for i, day := range models.Days() {
		dayPos[day] = i
	}
	slotPos := make(map[models.TimeSlot]int, len(models.TimeSlots()))
	for i, slot := range models.TimeSlots() {
		slotPos[slot] = i
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if dayPos[slots[i].Day] != dayPos[slots[j].Day] {
			return dayPos[slots[i].Day] < dayPos[slots[j].Day]
		}
		return slotPos[slots[i].Time] < slotPos[slots[j].Time]
	})
}
