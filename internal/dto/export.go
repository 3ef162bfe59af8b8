package dto

import "github.com/acadlab/timetable-api/internal/models"

// ExportRequest asks for an asynchronous export of a section's lab report or
// full timetable.
type ExportRequest struct {
	Type    models.ExportType   `json:"type" validate:"required,oneof=lab_report timetable"`
	Section string              `json:"section" validate:"required"`
	Days    []string            `json:"days" validate:"omitempty,max=6,dive,required"`
	Format  models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges job creation.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, once finished, the signed
// download URL.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
