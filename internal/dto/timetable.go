package dto

import "github.com/acadlab/timetable-api/internal/models"

// GenerateRequest optionally narrows generation to a subset of the configured
// sections. An empty list means every configured section.
type GenerateRequest struct {
	Sections []string `json:"sections" validate:"omitempty,max=32,dive,required"`
}

// SectionResult reports one section's generation outcome. Err is set when the
// run failed; a failed section never blocks the remaining ones.
type SectionResult struct {
	Section       string                `json:"section"`
	RunID         string                `json:"runId,omitempty"`
	Timetable     []models.TimetableRow `json:"timetable,omitempty"`
	LabDays       []models.Day          `json:"labDays,omitempty"`
	LabReport     []models.LabReportRow `json:"labReport,omitempty"`
	Warning       string                `json:"warning,omitempty"`
	CellsAssigned int                   `json:"cellsAssigned"`
	CellsFree     int                   `json:"cellsFree"`
	Error         *SectionError         `json:"error,omitempty"`
}

// SectionError is the per-section failure surfaced to the caller.
type SectionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerateBatchResponse aggregates all section outcomes of one invocation.
type GenerateBatchResponse struct {
	Results []SectionResult `json:"results"`
}

// LabReportResponse wraps an extracted lab report for one section.
type LabReportResponse struct {
	Section string                `json:"section"`
	Days    []models.Day          `json:"days"`
	Rows    []models.LabReportRow `json:"rows"`
	Warning string                `json:"warning,omitempty"`
}

// TimetableResponse returns the latest rendered grid for a section.
type TimetableResponse struct {
	Section   string                `json:"section"`
	RunID     string                `json:"runId"`
	Timetable []models.TimetableRow `json:"timetable"`
}

// RunListResponse lists a section's archived generation runs, newest first.
type RunListResponse struct {
	Section string                `json:"section"`
	Runs    []models.TimetableRun `json:"runs"`
}

// RunDetailResponse returns one archived run with its grid cells.
type RunDetailResponse struct {
	Run   models.TimetableRun       `json:"run"`
	Slots []models.TimetableRunSlot `json:"slots"`
}
