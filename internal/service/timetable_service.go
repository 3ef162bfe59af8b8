package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/dto"
	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

type catalogSource interface {
	Snapshot() (*models.Catalog, error)
}

type gridGenerator interface {
	Generate(catalog *models.Catalog) (*models.Grid, error)
}

// RunArchiver persists generation runs. Optional; nil disables archival.
type RunArchiver interface {
	Create(ctx context.Context, run *models.TimetableRun, slots []models.TimetableRunSlot) error
}

// LabReportCache caches extracted lab reports. Optional; nil disables caching.
type LabReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationObserver interface {
	ObserveGeneration(section string, duration time.Duration, assigned, free int)
	ObserveCacheHit()
	ObserveCacheMiss()
}

// TimetableServiceConfig declares the sections served and their lab days.
type TimetableServiceConfig struct {
	Sections     []string
	LabDays      map[string][]models.Day
	LabReportTTL time.Duration
}

// TimetableService drives the per-section pipeline: generate a grid, extract
// the section's lab report, archive and cache the results. Sections are
// independent computations over the shared read-only catalog, so they run
// concurrently, and one section's failure never aborts the others.
type TimetableService struct {
	catalogs  catalogSource
	generator gridGenerator
	runs      RunArchiver
	cache     LabReportCache
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig

	mu     sync.RWMutex
	latest map[string]*generatedRun
}

type generatedRun struct {
	RunID       string
	Grid        *models.Grid
	GeneratedAt time.Time
}

// NewTimetableService wires the reporting shell. The archiver, cache and
// metrics dependencies are optional and skipped when nil.
func NewTimetableService(
	catalogs catalogSource,
	generator gridGenerator,
	runs RunArchiver,
	cache LabReportCache,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LabReportTTL <= 0 {
		cfg.LabReportTTL = 10 * time.Minute
	}
	return &TimetableService{
		catalogs:  catalogs,
		generator: generator,
		runs:      runs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		latest:    make(map[string]*generatedRun),
	}
}

// GenerateAll regenerates timetables for the requested sections (all
// configured sections when the request names none). Every run is a full,
// independent generation from a freshly shuffled subject order.
func (s *TimetableService) GenerateAll(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateBatchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	sections, err := s.resolveSections(req.Sections)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Snapshot()
	if err != nil {
		return nil, err
	}

	results := make([]dto.SectionResult, len(sections))
	var wg sync.WaitGroup
	for i, section := range sections {
		wg.Add(1)
		go func(i int, section string) {
			defer wg.Done()
			results[i] = s.generateSection(ctx, catalog, section)
		}(i, section)
	}
	wg.Wait()

	return &dto.GenerateBatchResponse{Results: results}, nil
}

// Timetable returns the latest generated grid for a section.
func (s *TimetableService) Timetable(ctx context.Context, section string) (*dto.TimetableResponse, error) {
	run, err := s.latestRun(section)
	if err != nil {
		return nil, err
	}
	return &dto.TimetableResponse{
		Section:   section,
		RunID:     run.RunID,
		Timetable: run.Grid.Rows(),
	}, nil
}

// LabReport extracts laboratory sessions from the section's latest grid,
// restricted to the given days (the section's configured lab days when none
// are given). Extraction is idempotent for a given grid and day selection.
func (s *TimetableService) LabReport(ctx context.Context, section string, days []models.Day) (*dto.LabReportResponse, error) {
	run, err := s.latestRun(section)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		days = s.ConfiguredLabDays(section)
	}

	key := labReportCacheKey(section, run.RunID, days)
	if s.cache != nil {
		var cached dto.LabReportResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	resp := &dto.LabReportResponse{
		Section: section,
		Days:    days,
		Rows:    ExtractLabReport(run.Grid, days),
	}
	if len(resp.Rows) == 0 {
		resp.Warning = emptyLabReportWarning(section, days)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cfg.LabReportTTL); err != nil {
			s.logger.Sugar().Warnw("failed to cache lab report", "section", section, "error", err)
		}
	}
	return resp, nil
}

// ConfiguredLabDays returns the lab days configured for a section.
func (s *TimetableService) ConfiguredLabDays(section string) []models.Day {
	return s.cfg.LabDays[section]
}

// LatestGrid exposes the latest grid and run id for a section. Exporters use
// it to build datasets without re-generating.
func (s *TimetableService) LatestGrid(section string) (*models.Grid, string, error) {
	run, err := s.latestRun(section)
	if err != nil {
		return nil, "", err
	}
	return run.Grid, run.RunID, nil
}

func (s *TimetableService) latestRun(section string) (*generatedRun, error) {
	s.mu.RLock()
	run, ok := s.latest[section]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no timetable generated for section %s", section))
	}
	return run, nil
}

func (s *TimetableService) resolveSections(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return s.cfg.Sections, nil
	}
	known := make(map[string]bool, len(s.cfg.Sections))
	for _, section := range s.cfg.Sections {
		known[section] = true
	}
	for _, section := range requested {
		if !known[section] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown section %q (configured: %s)", section, strings.Join(s.cfg.Sections, ", ")))
		}
	}
	return requested, nil
}

func (s *TimetableService) generateSection(ctx context.Context, catalog *models.Catalog, section string) dto.SectionResult {
	start := time.Now()
	grid, err := s.generator.Generate(catalog)
	if err != nil {
		appErr := appErrors.FromError(err)
		s.logger.Sugar().Warnw("timetable generation failed", "section", section, "code", appErr.Code, "error", err)
		s.archiveFailure(ctx, section, appErr)
		return dto.SectionResult{
			Section: section,
			Error:   &dto.SectionError{Code: appErr.Code, Message: appErr.Message},
		}
	}

	runID := uuid.NewString()
	assigned, free := CountCells(grid)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(section, duration, assigned, free)
	}

	s.mu.Lock()
	s.latest[section] = &generatedRun{RunID: runID, Grid: grid, GeneratedAt: time.Now().UTC()}
	s.mu.Unlock()

	labDays := s.ConfiguredLabDays(section)
	labRows := ExtractLabReport(grid, labDays)

	result := dto.SectionResult{
		Section:       section,
		RunID:         runID,
		Timetable:     grid.Rows(),
		LabDays:       labDays,
		LabReport:     labRows,
		CellsAssigned: assigned,
		CellsFree:     free,
	}
	if len(labRows) == 0 {
		result.Warning = emptyLabReportWarning(section, labDays)
	}

	s.archiveRun(ctx, runID, section, grid, assigned, free)
	s.invalidateLabReports(ctx, section)
	s.cacheLabReport(ctx, section, runID, labDays, labRows)

	s.logger.Sugar().Infow("timetable generated",
		"section", section,
		"run_id", runID,
		"cells_assigned", assigned,
		"cells_free", free,
		"lab_rows", len(labRows),
		"duration", duration,
	)
	return result
}

// archiveRun persists the run for auditing. Persistence is best-effort: a
// storage failure is logged and never fails the generation.
func (s *TimetableService) archiveRun(ctx context.Context, runID, section string, grid *models.Grid, assigned, free int) {
	if s.runs == nil {
		return
	}
	run := &models.TimetableRun{
		ID:            runID,
		Section:       section,
		Status:        models.RunStatusCompleted,
		CellsAssigned: assigned,
		CellsFree:     free,
	}
	slots := make([]models.TimetableRunSlot, 0, len(models.Days())*len(models.TimeSlots()))
	for _, day := range models.Days() {
		for _, slot := range models.TimeSlots() {
			cell, _ := grid.Cell(day, slot)
			record := models.TimetableRunSlot{RunID: runID, Day: day, Time: slot, Free: cell.Free}
			if !cell.Free {
				subject, faculty, room := cell.Subject, cell.Faculty, cell.Room
				record.Subject = &subject
				record.Faculty = &faculty
				record.Room = &room
			}
			slots = append(slots, record)
		}
	}
	if err := s.runs.Create(ctx, run, slots); err != nil {
		s.logger.Sugar().Warnw("failed to archive timetable run", "section", section, "run_id", runID, "error", err)
	}
}

func (s *TimetableService) archiveFailure(ctx context.Context, section string, appErr *appErrors.Error) {
	if s.runs == nil {
		return
	}
	msg := appErr.Message
	run := &models.TimetableRun{
		ID:           uuid.NewString(),
		Section:      section,
		Status:       models.RunStatusFailed,
		ErrorMessage: &msg,
	}
	if err := s.runs.Create(ctx, run, nil); err != nil {
		s.logger.Sugar().Warnw("failed to archive failed run", "section", section, "error", err)
	}
}

// invalidateLabReports drops reports cached under superseded run ids so they
// do not linger until TTL after a regenerate.
func (s *TimetableService) invalidateLabReports(ctx context.Context, section string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("labreport:%s:*", section)); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate cached lab reports", "section", section, "error", err)
	}
}

func (s *TimetableService) cacheLabReport(ctx context.Context, section, runID string, days []models.Day, rows []models.LabReportRow) {
	if s.cache == nil {
		return
	}
	resp := dto.LabReportResponse{Section: section, Days: days, Rows: rows}
	if len(rows) == 0 {
		resp.Warning = emptyLabReportWarning(section, days)
	}
	key := labReportCacheKey(section, runID, days)
	if err := s.cache.Set(ctx, key, &resp, s.cfg.LabReportTTL); err != nil {
		s.logger.Sugar().Warnw("failed to cache lab report", "section", section, "error", err)
	}
}

func labReportCacheKey(section, runID string, days []models.Day) string {
	labels := make([]string, 0, len(days))
	for _, day := range days {
		labels = append(labels, string(day))
	}
	return fmt.Sprintf("labreport:%s:%s:%s", section, runID, strings.Join(labels, "|"))
}

// emptyLabReportWarning distinguishes "no labs scheduled" from a failed
// generation for downstream display.
func emptyLabReportWarning(section string, days []models.Day) string {
	labels := make([]string, 0, len(days))
	for _, day := range days {
		labels = append(labels, string(day))
	}
	return fmt.Sprintf("no lab sessions found for %s on %s", section, strings.Join(labels, ", "))
}
