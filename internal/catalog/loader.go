package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

// Loader parses the three catalog CSV datasets into an indexed Catalog.
// Column labels are trimmed before matching so spreadsheet exports with
// padded headers keep working.
type Loader struct {
	maxRows int
}

// NewLoader constructs a loader. maxRows bounds each dataset; zero or
// negative means no bound.
func NewLoader(maxRows int) *Loader {
	return &Loader{maxRows: maxRows}
}

// Load reads the faculty, subjects and rooms datasets and returns the
// indexed catalog. Missing or misnamed columns and duplicate identifiers are
// rejected here; unresolved subject references surface as lookup failures.
func (l *Loader) Load(facultyCSV, subjectsCSV, roomsCSV io.Reader) (*models.Catalog, error) {
	facultyRows, err := l.parse("faculty", facultyCSV, []string{"FacultyID", "Name"})
	if err != nil {
		return nil, err
	}
	subjectRows, err := l.parse("subjects", subjectsCSV, []string{"SubjectName", "FacultyID", "RoomID"})
	if err != nil {
		return nil, err
	}
	roomRows, err := l.parse("rooms", roomsCSV, []string{"RoomID", "RoomName"})
	if err != nil {
		return nil, err
	}

	faculty := make([]models.Faculty, 0, len(facultyRows))
	for _, row := range facultyRows {
		faculty = append(faculty, models.Faculty{ID: row["FacultyID"], Name: row["Name"]})
	}
	subjects := make([]models.Subject, 0, len(subjectRows))
	for _, row := range subjectRows {
		subjects = append(subjects, models.Subject{
			Name:      row["SubjectName"],
			FacultyID: row["FacultyID"],
			RoomID:    row["RoomID"],
		})
	}
	rooms := make([]models.Room, 0, len(roomRows))
	for _, row := range roomRows {
		rooms = append(rooms, models.Room{ID: row["RoomID"], Name: row["RoomName"]})
	}

	return models.NewCatalog(faculty, subjects, rooms)
}

// parse reads a headered CSV into rows keyed by the required logical columns.
func (l *Loader) parse(dataset string, r io.Reader, required []string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("%s dataset is empty", dataset))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedCatalog.Code, appErrors.ErrMalformedCatalog.Status, fmt.Sprintf("failed to read %s header", dataset))
	}

	index := make(map[string]int, len(header))
	for i, label := range header {
		index[strings.TrimSpace(label)] = i
	}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("%s dataset is missing column %q", dataset, column))
		}
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrMalformedCatalog.Code, appErrors.ErrMalformedCatalog.Status, fmt.Sprintf("failed to read %s row", dataset))
		}
		if l.maxRows > 0 && len(rows) >= l.maxRows {
			return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("%s dataset exceeds %d rows", dataset, l.maxRows))
		}
		row := make(map[string]string, len(required))
		for _, column := range required {
			pos := index[column]
			if pos >= len(record) {
				return nil, appErrors.Clone(appErrors.ErrMalformedCatalog, fmt.Sprintf("%s dataset has a short row", dataset))
			}
			row[column] = strings.TrimSpace(record[pos])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
