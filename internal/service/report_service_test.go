package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/models"
	"github.com/acadlab/timetable-api/internal/repository"
	"github.com/acadlab/timetable-api/pkg/jobs"
)

type memoryJobStore struct {
	mu   sync.Mutex
	jobs map[string]*models.ExportJob
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{jobs: make(map[string]*models.ExportJob)}
}

func (s *memoryJobStore) Create(_ context.Context, job *models.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = "job-1"
	}
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memoryJobStore) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("missing job")
	}
	copied := *job
	return &copied, nil
}

func (s *memoryJobStore) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return errors.New("missing job")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *memoryJobStore) ListQueued(_ context.Context, _ int) ([]models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queued []models.ExportJob
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (s *memoryJobStore) ListFinishedBefore(context.Context, time.Time, int) ([]models.ExportJob, error) {
	return nil, nil
}

type exporterStub struct {
	result *ExportResult
	err    error
}

func (s exporterStub) Generate(context.Context, *models.ExportJob) (*ExportResult, error) {
	return s.result, s.err
}

func TestReportWorkerMarksJobFinished(t *testing.T) {
	store := newMemoryJobStore()
	require.NoError(t, store.Create(context.Background(), &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeLabReport,
		Status: models.ExportStatusQueued,
		Params: models.ExportJobParams{Section: "EEE-A", Format: models.ExportFormatCSV},
	}))

	worker := NewReportWorker(store, exporterStub{result: &ExportResult{
		URL:    "/api/v1/export/token-1",
		Format: models.ExportFormatCSV,
	}}, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)

	job, err := store.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, job.Status)
	require.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	require.Equal(t, "/api/v1/export/token-1", *job.ResultURL)
	require.NotNil(t, job.FinishedAt)
}

func TestReportWorkerRequeuesUntilRetriesExhausted(t *testing.T) {
	store := newMemoryJobStore()
	require.NoError(t, store.Create(context.Background(), &models.ExportJob{
		ID:     "job-1",
		Status: models.ExportStatusQueued,
	}))
	worker := NewReportWorker(store, exporterStub{err: errors.New("boom")}, 2, zap.NewNop())

	// First attempts leave the job queued for the dispatcher to retry.
	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 0})
	require.Error(t, err)
	job, _ := store.GetByID(context.Background(), "job-1")
	require.Equal(t, models.ExportStatusQueued, job.Status)

	// Exceeding the retry budget marks the job failed.
	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	job, _ = store.GetByID(context.Background(), "job-1")
	require.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	require.Equal(t, "boom", *job.ErrorMessage)
}
