package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/dto"
	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

type catalogStub struct {
	catalog *models.Catalog
	err     error
}

func (s catalogStub) Snapshot() (*models.Catalog, error) {
	return s.catalog, s.err
}

type generatorStub struct {
	grid *models.Grid
	err  error
}

func (s generatorStub) Generate(*models.Catalog) (*models.Grid, error) {
	return s.grid, s.err
}

type archiverRecorder struct {
	mu    sync.Mutex
	runs  []*models.TimetableRun
	slots [][]models.TimetableRunSlot
}

func (r *archiverRecorder) Create(_ context.Context, run *models.TimetableRun, slots []models.TimetableRunSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	r.slots = append(r.slots, slots)
	return nil
}

type cacheRecorder struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newCacheRecorder() *cacheRecorder {
	return &cacheRecorder{entries: make(map[string][]byte)}
}

func (c *cacheRecorder) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRecorder) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *cacheRecorder) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func defaultServiceConfig() TimetableServiceConfig {
	return TimetableServiceConfig{
		Sections: []string{"EEE-A", "EEE-B", "EEE-C"},
		LabDays: map[string][]models.Day{
			"EEE-A": {models.Monday, models.Wednesday},
			"EEE-B": {models.Tuesday, models.Thursday},
			"EEE-C": {models.Friday, models.Monday},
		},
		LabReportTTL: time.Minute,
	}
}

func newTimetableServiceForTest(t *testing.T, runs RunArchiver, cache LabReportCache) *TimetableService {
	t.Helper()
	return NewTimetableService(
		catalogStub{catalog: testCatalog(t, 4)},
		seededGenerator(3),
		runs,
		cache,
		nil,
		nil,
		zap.NewNop(),
		defaultServiceConfig(),
	)
}

func TestGenerateAllCoversConfiguredSections(t *testing.T) {
	svc := newTimetableServiceForTest(t, nil, nil)

	res, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)

	seen := map[string]bool{}
	runIDs := map[string]bool{}
	for _, result := range res.Results {
		require.Nil(t, result.Error)
		require.NotEmpty(t, result.RunID)
		require.False(t, runIDs[result.RunID], "run ids must be unique")
		runIDs[result.RunID] = true
		require.Len(t, result.Timetable, len(models.TimeSlots()))
		require.Equal(t, 48, result.CellsAssigned+result.CellsFree)
		seen[result.Section] = true
	}
	require.True(t, seen["EEE-A"] && seen["EEE-B"] && seen["EEE-C"])
}

func TestGenerateAllRejectsUnknownSection(t *testing.T) {
	svc := newTimetableServiceForTest(t, nil, nil)

	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"MECH-A"}})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestGenerateAllIsolatesSectionFailures(t *testing.T) {
	archiver := &archiverRecorder{}
	svc := NewTimetableService(
		catalogStub{catalog: &models.Catalog{Subjects: []models.Subject{{Name: "Physics", FacultyID: "F0", RoomID: "R0"}}}},
		NewGeneratorService(zap.NewNop()),
		archiver,
		nil,
		nil,
		nil,
		zap.NewNop(),
		defaultServiceConfig(),
	)

	res, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	for _, result := range res.Results {
		require.NotNil(t, result.Error)
		require.Equal(t, appErrors.ErrLookup.Code, result.Error.Code)
	}

	// Failed runs are still archived for auditing.
	require.Len(t, archiver.runs, 3)
	for _, run := range archiver.runs {
		require.Equal(t, models.RunStatusFailed, run.Status)
	}
}

func TestGenerateAllPropagatesMissingCatalog(t *testing.T) {
	svc := NewTimetableService(
		catalogStub{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no catalog uploaded")},
		seededGenerator(1),
		nil, nil, nil, nil,
		zap.NewNop(),
		defaultServiceConfig(),
	)

	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestTimetableBeforeGeneration(t *testing.T) {
	svc := newTimetableServiceForTest(t, nil, nil)

	_, err := svc.Timetable(context.Background(), "EEE-A")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.LabReport(context.Background(), "EEE-A", nil)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLabReportDefaultsToConfiguredDays(t *testing.T) {
	svc := newTimetableServiceForTest(t, nil, nil)
	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-B"}})
	require.NoError(t, err)

	report, err := svc.LabReport(context.Background(), "EEE-B", nil)
	require.NoError(t, err)
	require.Equal(t, []models.Day{models.Tuesday, models.Thursday}, report.Days)
	for _, row := range report.Rows {
		require.Contains(t, []models.Day{models.Tuesday, models.Thursday}, row.Day)
	}
}

func TestLabReportWarnsWhenEmpty(t *testing.T) {
	grid := models.NewGrid()
	grid.Set(models.Monday, "8:00", models.Cell{Subject: "Math", Faculty: "Dr. A", Room: "R1"})
	svc := NewTimetableService(
		catalogStub{catalog: testCatalog(t, 2)},
		generatorStub{grid: grid},
		nil, nil, nil, nil,
		zap.NewNop(),
		defaultServiceConfig(),
	)

	res, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-A"}})
	require.NoError(t, err)
	require.Contains(t, res.Results[0].Warning, "no lab sessions found for EEE-A")

	report, err := svc.LabReport(context.Background(), "EEE-A", nil)
	require.NoError(t, err)
	require.Empty(t, report.Rows)
	require.NotEmpty(t, report.Warning)
}

func TestLabReportUsesCache(t *testing.T) {
	cache := newCacheRecorder()
	svc := newTimetableServiceForTest(t, nil, cache)

	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-A"}})
	require.NoError(t, err)
	// Generation pre-warms the configured-days report.
	require.NotEmpty(t, cache.entries)

	first, err := svc.LabReport(context.Background(), "EEE-A", nil)
	require.NoError(t, err)
	second, err := svc.LabReport(context.Background(), "EEE-A", nil)
	require.NoError(t, err)
	require.Equal(t, first.Rows, second.Rows)
}

func TestRegenerateDropsStaleCachedReports(t *testing.T) {
	cache := newCacheRecorder()
	svc := newTimetableServiceForTest(t, nil, cache)

	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-A"}})
	require.NoError(t, err)
	// A second day selection caches another entry under the first run id.
	_, err = svc.LabReport(context.Background(), "EEE-A", []models.Day{models.Friday})
	require.NoError(t, err)
	require.Len(t, cache.entries, 2)

	res, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-A"}})
	require.NoError(t, err)
	newRunID := res.Results[0].RunID

	// Only the pre-warmed report for the new run survives.
	require.Len(t, cache.entries, 1)
	for key := range cache.entries {
		require.Contains(t, key, newRunID)
	}
}

func TestGenerateAllArchivesCompletedRuns(t *testing.T) {
	archiver := &archiverRecorder{}
	svc := newTimetableServiceForTest(t, archiver, nil)

	_, err := svc.GenerateAll(context.Background(), dto.GenerateRequest{Sections: []string{"EEE-A"}})
	require.NoError(t, err)

	require.Len(t, archiver.runs, 1)
	run := archiver.runs[0]
	require.Equal(t, models.RunStatusCompleted, run.Status)
	require.Equal(t, "EEE-A", run.Section)
	require.Equal(t, 48, run.CellsAssigned+run.CellsFree)
	require.Len(t, archiver.slots[0], 48)
}
