package service

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

func seededGenerator(seed int64) *GeneratorService {
	return NewGeneratorService(zap.NewNop()).WithRandSource(func() *rand.Rand {
		return rand.New(rand.NewSource(seed))
	})
}

func testCatalog(t *testing.T, subjects int) *models.Catalog {
	t.Helper()
	faculty := make([]models.Faculty, 0, subjects)
	rooms := make([]models.Room, 0, subjects)
	pool := make([]models.Subject, 0, subjects)
	for i := 0; i < subjects; i++ {
		faculty = append(faculty, models.Faculty{ID: fmt.Sprintf("F%d", i), Name: fmt.Sprintf("Dr. %c", 'A'+i)})
		rooms = append(rooms, models.Room{ID: fmt.Sprintf("R%d", i), Name: fmt.Sprintf("Room%d", 100+i)})
		pool = append(pool, models.Subject{
			Name:      fmt.Sprintf("Subject %d", i),
			FacultyID: fmt.Sprintf("F%d", i),
			RoomID:    fmt.Sprintf("R%d", i),
		})
	}
	catalog, err := models.NewCatalog(faculty, pool, rooms)
	require.NoError(t, err)
	return catalog
}

func TestGenerateFillsEveryCellWithAmplePool(t *testing.T) {
	svc := seededGenerator(1)
	grid, err := svc.Generate(testCatalog(t, 6))
	require.NoError(t, err)

	assigned, free := CountCells(grid)
	require.Equal(t, 48, assigned)
	require.Zero(t, free)

	for _, day := range models.Days() {
		for _, slot := range models.TimeSlots() {
			cell, ok := grid.Cell(day, slot)
			require.True(t, ok)
			require.False(t, cell.Free)
			require.NotEmpty(t, cell.Subject)
			require.NotEmpty(t, cell.Faculty)
			require.NotEmpty(t, cell.Room)
		}
	}
}

func TestGenerateNeverRepeatsFacultyAtSameSlot(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		grid, err := seededGenerator(seed).Generate(testCatalog(t, 4))
		require.NoError(t, err)

		for _, slot := range models.TimeSlots() {
			last := ""
			for _, day := range models.Days() {
				cell, _ := grid.Cell(day, slot)
				if cell.Free {
					continue
				}
				require.NotEqual(t, last, cell.Faculty,
					"slot %s on %s repeats faculty back to back (seed %d)", slot, day, seed)
				last = cell.Faculty
			}
		}
	}
}

func TestGenerateSingleFacultyLeavesLaterDaysFree(t *testing.T) {
	grid, err := seededGenerator(7).Generate(testCatalog(t, 1))
	require.NoError(t, err)

	// Day one fills every slot; every later day hits the same faculty at
	// each slot and stays Free.
	for _, slot := range models.TimeSlots() {
		cell, _ := grid.Cell(models.Monday, slot)
		require.False(t, cell.Free)
	}
	for _, day := range models.Days()[1:] {
		for _, slot := range models.TimeSlots() {
			cell, _ := grid.Cell(day, slot)
			require.True(t, cell.Free, "expected %s %s to stay free", day, slot)
		}
	}

	assigned, free := CountCells(grid)
	require.Equal(t, 8, assigned)
	require.Equal(t, 40, free)
}

func TestGenerateEmptyPool(t *testing.T) {
	catalog, err := models.NewCatalog(nil, nil, nil)
	require.NoError(t, err)

	_, err = seededGenerator(1).Generate(catalog)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidInput))

	_, err = seededGenerator(1).Generate(nil)
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidInput))
}

func TestGenerateUnresolvedReferenceFailsRun(t *testing.T) {
	// A zero-value catalog has no lookup index, so the first resolution
	// fails even though the pool is non-empty.
	catalog := &models.Catalog{
		Subjects: []models.Subject{{Name: "Physics", FacultyID: "F0", RoomID: "R0"}},
	}
	_, err := seededGenerator(1).Generate(catalog)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrLookup))
}

func TestGenerateDeterministicForFixedSeed(t *testing.T) {
	first, err := seededGenerator(99).Generate(testCatalog(t, 5))
	require.NoError(t, err)
	second, err := seededGenerator(99).Generate(testCatalog(t, 5))
	require.NoError(t, err)

	for _, day := range models.Days() {
		for _, slot := range models.TimeSlots() {
			a, _ := first.Cell(day, slot)
			b, _ := second.Cell(day, slot)
			require.Equal(t, a, b)
		}
	}
}
