package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acadlab/timetable-api/internal/dto"
	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
	"github.com/acadlab/timetable-api/pkg/response"
)

type runHistory interface {
	ListBySection(ctx context.Context, section string, limit int) ([]models.TimetableRun, error)
	GetByID(ctx context.Context, id string) (*models.TimetableRun, error)
	ListSlots(ctx context.Context, runID string) ([]models.TimetableRunSlot, error)
}

// RunHandler exposes the archived run history of a section.
type RunHandler struct {
	runs runHistory
}

// NewRunHandler constructs the handler.
func NewRunHandler(runs runHistory) *RunHandler {
	return &RunHandler{runs: runs}
}

// List godoc
// @Summary List archived generation runs
// @Description Return a section's archived runs, newest first
// @Tags Timetables
// @Produce json
// @Param section path string true "Section"
// @Param limit query int false "Maximum runs to return"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/{section}/runs [get]
func (h *RunHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	section := c.Param("section")
	runs, err := h.runs.ListBySection(c.Request.Context(), section, limit)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable runs"))
		return
	}
	response.JSON(c, http.StatusOK, dto.RunListResponse{Section: section, Runs: runs})
}

// Get godoc
// @Summary Archived run detail
// @Description Return one archived run with its grid cells in day-major order
// @Tags Timetables
// @Produce json
// @Param section path string true "Section"
// @Param runID path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{section}/runs/{runID} [get]
func (h *RunHandler) Get(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("runID"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run"))
		return
	}
	// Runs are addressed under their section; a mismatch is a 404, not a leak.
	if run.Section != c.Param("section") {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	slots, err := h.runs.ListSlots(c.Request.Context(), run.ID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run slots"))
		return
	}
	response.JSON(c, http.StatusOK, dto.RunDetailResponse{Run: *run, Slots: slots})
}
