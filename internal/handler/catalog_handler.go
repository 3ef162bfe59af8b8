package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/acadlab/timetable-api/internal/catalog"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
	"github.com/acadlab/timetable-api/pkg/response"
)

// CatalogHandler manages catalog uploads and inspection.
type CatalogHandler struct {
	loader *catalog.Loader
	store  *catalog.Store
	logger *zap.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(loader *catalog.Loader, store *catalog.Store, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{loader: loader, store: store, logger: logger}
}

// Upload godoc
// @Summary Upload catalog datasets
// @Description Replace the active catalog with three CSV files: faculty, subjects and rooms
// @Tags Catalog
// @Accept multipart/form-data
// @Produce json
// @Param faculty formData file true "Faculty CSV (FacultyID,Name)"
// @Param subjects formData file true "Subjects CSV (SubjectName,FacultyID,RoomID)"
// @Param rooms formData file true "Rooms CSV (RoomID,RoomName)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog [post]
func (h *CatalogHandler) Upload(c *gin.Context) {
	faculty, err := openFormFile(c, "faculty")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer faculty.Close()

	subjects, err := openFormFile(c, "subjects")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer subjects.Close()

	rooms, err := openFormFile(c, "rooms")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rooms.Close()

	cat, err := h.loader.Load(faculty, subjects, rooms)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.store.Swap(cat)
	summary := cat.Summary()
	h.logger.Sugar().Infow("catalog uploaded",
		"faculty", summary.FacultyCount,
		"subjects", summary.SubjectCount,
		"rooms", summary.RoomCount,
	)
	response.JSON(c, http.StatusOK, summary)
}

// Summary godoc
// @Summary Describe the active catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /catalog/summary [get]
func (h *CatalogHandler) Summary(c *gin.Context) {
	summary, err := h.store.Summary()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func openFormFile(c *gin.Context, field string) (multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing %s file", field))
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("cannot read %s file", field))
	}
	return file, nil
}
