package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/models"
	"github.com/acadlab/timetable-api/pkg/export"
	"github.com/acadlab/timetable-api/pkg/storage"
)

type timetableSource interface {
	LatestGrid(section string) (*models.Grid, string, error)
	ConfiguredLabDays(section string) []models.Day
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds export datasets from generated timetables and
// persists the rendered files behind signed download URLs.
type ExportService struct {
	timetables timetableSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(timetables timetableSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetables: timetables,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// LabReportDataset renders the extractor output as the on-disk report
// contract: header Time,Day,Session and one row per lab session in extractor
// order. An empty report yields a header-only file.
func LabReportDataset(rows []models.LabReportRow) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Time", "Day", "Session"}}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Time":    string(row.Time),
			"Day":     string(row.Day),
			"Session": row.Session,
		})
	}
	return dataset
}

// TimetableDataset renders the full grid, one row per time slot.
func TimetableDataset(grid *models.Grid) export.Dataset {
	headers := []string{"Time"}
	for _, day := range models.Days() {
		headers = append(headers, string(day))
	}
	dataset := export.Dataset{Headers: headers}
	for _, row := range grid.Rows() {
		record := map[string]string{"Time": string(row.Time)}
		for _, day := range models.Days() {
			record[string(day)] = row.Sessions[day]
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset
}

func (s *ExportService) buildDataset(job *models.ExportJob) (export.Dataset, string, error) {
	grid, _, err := s.timetables.LatestGrid(job.Params.Section)
	if err != nil {
		return export.Dataset{}, "", err
	}

	switch job.Type {
	case models.ExportTypeLabReport:
		days := make([]models.Day, 0, len(job.Params.Days))
		for _, raw := range job.Params.Days {
			days = append(days, models.Day(raw))
		}
		if len(days) == 0 {
			days = s.timetables.ConfiguredLabDays(job.Params.Section)
		}
		rows := ExtractLabReport(grid, days)
		title := fmt.Sprintf("%s lab report", job.Params.Section)
		return LabReportDataset(rows), title, nil
	case models.ExportTypeTimetable:
		title := fmt.Sprintf("%s timetable", job.Params.Section)
		return TimetableDataset(grid), title, nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	section := strings.ReplaceAll(job.Params.Section, "/", "-")
	return fmt.Sprintf("%s/%s_%s.%s", job.Type, section, job.ID, job.Params.Format)
}

// ParseToken validates a signed download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle on a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes exports older than the TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}
