package service

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

// GeneratorService fills a slot grid for one section from the catalog pools,
// avoiding back-to-back faculty repetition at the same time slot across days.
type GeneratorService struct {
	logger  *zap.Logger
	newRand func() *rand.Rand
}

// seedCounter decorrelates generators created within the same nanosecond so
// concurrent section runs do not share a shuffle order.
var seedCounter int64

// NewGeneratorService constructs the engine.
func NewGeneratorService(logger *zap.Logger) *GeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		logger: logger,
		newRand: func() *rand.Rand {
			seed := time.Now().UnixNano() + atomic.AddInt64(&seedCounter, 1)
			return rand.New(rand.NewSource(seed))
		},
	}
}

// WithRandSource overrides the per-run randomness source. Tests use this to
// pin the shuffle order.
func (s *GeneratorService) WithRandSource(newRand func() *rand.Rand) *GeneratorService {
	if newRand != nil {
		s.newRand = newRand
	}
	return s
}

// Generate fills a fresh grid from the catalog. Each invocation shuffles the
// subject pool once and walks the grid day-major, slot-minor, with one global
// cursor over the shuffled order. Per time slot, the faculty name of the most
// recent assignment is remembered across days: a candidate whose faculty
// matches it is skipped. When every subject has been tried for a cell, the
// cell stays Free rather than violating the constraint or failing the run.
func (s *GeneratorService) Generate(catalog *models.Catalog) (*models.Grid, error) {
	if catalog == nil || len(catalog.Subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "subject pool is empty")
	}

	order := make([]models.Subject, len(catalog.Subjects))
	copy(order, catalog.Subjects)
	rng := s.newRand()
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	grid := models.NewGrid()
	lastFaculty := make(map[models.TimeSlot]string, len(models.TimeSlots()))
	cursor := 0

	for _, day := range models.Days() {
		for _, slot := range models.TimeSlots() {
			attempts := 0
			for attempts < len(order) {
				subject := order[cursor%len(order)]
				faculty, ok := catalog.FacultyByID(subject.FacultyID)
				if !ok {
					return nil, appErrors.Clone(appErrors.ErrLookup, fmt.Sprintf("subject %q references unknown FacultyID %q", subject.Name, subject.FacultyID))
				}
				room, ok := catalog.RoomByID(subject.RoomID)
				if !ok {
					return nil, appErrors.Clone(appErrors.ErrLookup, fmt.Sprintf("subject %q references unknown RoomID %q", subject.Name, subject.RoomID))
				}

				last, seen := lastFaculty[slot]
				if !seen || last != faculty.Name {
					grid.Set(day, slot, models.Cell{
						Subject: subject.Name,
						Faculty: faculty.Name,
						Room:    room.Name,
					})
					lastFaculty[slot] = faculty.Name
					cursor++
					break
				}

				cursor++
				attempts++
			}
		}
	}

	return grid, nil
}

// CountCells tallies assigned and free cells of a grid.
func CountCells(grid *models.Grid) (assigned, free int) {
	for _, day := range models.Days() {
		for _, slot := range models.TimeSlots() {
			cell, _ := grid.Cell(day, slot)
			if cell.Free {
				free++
			} else {
				assigned++
			}
		}
	}
	return assigned, free
}
