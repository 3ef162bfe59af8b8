package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/acadlab/timetable-api/internal/dto"
	"github.com/acadlab/timetable-api/internal/middleware"
	"github.com/acadlab/timetable-api/internal/models"
	"github.com/acadlab/timetable-api/internal/service"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

type reportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ReportDownload
	downloadErr error

	lastActor string
}

func (m *reportServiceMock) CreateJob(_ context.Context, _ dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	m.lastActor = actorID
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(context.Context, string) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ResolveDownload(context.Context, string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued},
	}
	h := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{
		Type:    models.ExportTypeLabReport,
		Section: "EEE-A",
		Format:  models.ExportFormatCSV,
	})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "admin@example.com", Role: models.RoleAdmin})

	h.Create(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "admin@example.com", mockSvc.lastActor)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestReportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	url := "/api/v1/export/token-1"
	mockSvc := &reportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100, ResultURL: &url},
	}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "token-1")
}

func TestReportHandlerStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{statusErr: appErrors.ErrNotFound}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "report*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Time,Day,Session\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			File:      file,
			Filename:  "lab_report.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "lab_report.csv")
	require.Contains(t, w.Body.String(), "Time,Day,Session")
	// The token expiry must not leak into conditional-request headers.
	require.Empty(t, w.Header().Get("Last-Modified"))
}

func TestReportHandlerDownloadForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{downloadErr: appErrors.ErrForbidden}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/bad-token", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad-token"}}

	h.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
