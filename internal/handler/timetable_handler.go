package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadlab/timetable-api/internal/dto"
	"github.com/acadlab/timetable-api/internal/models"
	"github.com/acadlab/timetable-api/internal/service"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
	"github.com/acadlab/timetable-api/pkg/export"
	"github.com/acadlab/timetable-api/pkg/response"
)

type timetableService interface {
	GenerateAll(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateBatchResponse, error)
	Timetable(ctx context.Context, section string) (*dto.TimetableResponse, error)
	LabReport(ctx context.Context, section string, days []models.Day) (*dto.LabReportResponse, error)
}

// TimetableHandler exposes generation and lab report endpoints.
type TimetableHandler struct {
	timetables timetableService
	csv        *export.CSVExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetables timetableService, csv *export.CSVExporter) *TimetableHandler {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &TimetableHandler{timetables: timetables, csv: csv}
}

// Generate godoc
// @Summary Generate timetables
// @Description Regenerate timetables for the requested sections (all configured sections when none are named)
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest false "Sections to generate"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}

	res, err := h.timetables.GenerateAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Get godoc
// @Summary Latest timetable for a section
// @Tags Timetables
// @Produce json
// @Param section path string true "Section"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{section} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	res, err := h.timetables.Timetable(c.Request.Context(), c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// LabReport godoc
// @Summary Lab report for a section
// @Description Extract laboratory sessions from the section's latest timetable, restricted to the given days
// @Tags Timetables
// @Produce json
// @Param section path string true "Section"
// @Param days query string false "Comma-separated day names; defaults to the section's configured lab days"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{section}/lab-report [get]
func (h *TimetableHandler) LabReport(c *gin.Context) {
	res, err := h.timetables.LabReport(c.Request.Context(), c.Param("section"), queryDays(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// LabReportCSV godoc
// @Summary Lab report CSV download
// @Description Stream the lab report as a CSV attachment. An empty report yields a header-only file.
// @Tags Timetables
// @Produce text/csv
// @Param section path string true "Section"
// @Param days query string false "Comma-separated day names"
// @Success 200 {string} string "CSV payload"
// @Failure 404 {object} response.Envelope
// @Router /timetables/{section}/lab-report.csv [get]
func (h *TimetableHandler) LabReportCSV(c *gin.Context) {
	section := c.Param("section")
	res, err := h.timetables.LabReport(c.Request.Context(), section, queryDays(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.csv.Render(service.LabReportDataset(res.Rows))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s_lab_report.csv", strings.ReplaceAll(section, "/", "-"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// queryDays reads the days filter from either repeated or comma-separated
// query values. Unknown day names are passed through; the extractor skips
// them.
func queryDays(c *gin.Context) []models.Day {
	raw := c.QueryArray("days")
	days := make([]models.Day, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			days = append(days, models.Day(part))
		}
	}
	return days
}
