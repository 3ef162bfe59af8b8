package models

import (
	"fmt"

	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

// Faculty is one instructor row from the faculty catalog.
type Faculty struct {
	ID   string `json:"facultyId"`
	Name string `json:"name"`
}

// Subject is one subject row, referencing exactly one faculty and one room.
type Subject struct {
	Name      string `json:"subjectName"`
	FacultyID string `json:"facultyId"`
	RoomID    string `json:"roomId"`
}

// Room is one room row from the rooms catalog.
type Room struct {
	ID   string `json:"roomId"`
	Name string `json:"roomName"`
}

// Catalog bundles the three loaded datasets with keyed lookup tables. It is
// built once per upload and shared read-only across generation runs.
type Catalog struct {
	Faculty  []Faculty `json:"faculty"`
	Subjects []Subject `json:"subjects"`
	Rooms    []Room    `json:"rooms"`

	facultyByID map[string]Faculty
	roomByID    map[string]Room
}

// NewCatalog indexes the datasets and rejects duplicate identifiers. Subject
// foreign keys are verified here so that broken references surface at load
// time rather than midway through a generation run.
func NewCatalog(faculty []Faculty, subjects []Subject, rooms []Room) (*Catalog, error) {
	facultyByID := make(map[string]Faculty, len(faculty))
	for _, f := range faculty {
		if _, exists := facultyByID[f.ID]; exists {
			return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("duplicate FacultyID %q", f.ID))
		}
		facultyByID[f.ID] = f
	}

	roomByID := make(map[string]Room, len(rooms))
	for _, r := range rooms {
		if _, exists := roomByID[r.ID]; exists {
			return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("duplicate RoomID %q", r.ID))
		}
		roomByID[r.ID] = r
	}

	for _, s := range subjects {
		if _, ok := facultyByID[s.FacultyID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrLookup, fmt.Sprintf("subject %q references unknown FacultyID %q", s.Name, s.FacultyID))
		}
		if _, ok := roomByID[s.RoomID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrLookup, fmt.Sprintf("subject %q references unknown RoomID %q", s.Name, s.RoomID))
		}
	}

	return &Catalog{
		Faculty:     faculty,
		Subjects:    subjects,
		Rooms:       rooms,
		facultyByID: facultyByID,
		roomByID:    roomByID,
	}, nil
}

// FacultyByID resolves a faculty key.
func (c *Catalog) FacultyByID(id string) (Faculty, bool) {
	f, ok := c.facultyByID[id]
	return f, ok
}

// RoomByID resolves a room key.
func (c *Catalog) RoomByID(id string) (Room, bool) {
	r, ok := c.roomByID[id]
	return r, ok
}

// CatalogSummary is the lightweight view returned by the catalog endpoint.
type CatalogSummary struct {
	FacultyCount  int    `json:"facultyCount"`
	SubjectCount  int    `json:"subjectCount"`
	RoomCount     int    `json:"roomCount"`
	UploadedAtUTC string `json:"uploadedAt,omitempty"`
}

// Summary reports dataset sizes.
func (c *Catalog) Summary() CatalogSummary {
	return CatalogSummary{
		FacultyCount: len(c.Faculty),
		SubjectCount: len(c.Subjects),
		RoomCount:    len(c.Rooms),
	}
}
