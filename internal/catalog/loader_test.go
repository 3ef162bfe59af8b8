package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

const (
	facultyCSV = "FacultyID,Name\nF1,Dr. A\nF2,Dr. B\n"
	subjectCSV = "SubjectName,FacultyID,RoomID\nLab Physics,F1,R1\nMath,F2,R2\n"
	roomsCSV   = "RoomID,RoomName\nR1,Room101\nR2,Room102\n"
)

func TestLoadBuildsIndexedCatalog(t *testing.T) {
	loader := NewLoader(0)
	catalog, err := loader.Load(
		strings.NewReader(facultyCSV),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.NoError(t, err)
	require.Len(t, catalog.Faculty, 2)
	require.Len(t, catalog.Subjects, 2)
	require.Len(t, catalog.Rooms, 2)

	f, ok := catalog.FacultyByID("F1")
	require.True(t, ok)
	require.Equal(t, "Dr. A", f.Name)

	r, ok := catalog.RoomByID("R2")
	require.True(t, ok)
	require.Equal(t, "Room102", r.Name)
}

func TestLoadTrimsHeaderAndFieldPadding(t *testing.T) {
	loader := NewLoader(0)
	catalog, err := loader.Load(
		strings.NewReader(" FacultyID , Name \nF1, Dr. A \n"),
		strings.NewReader("SubjectName, FacultyID ,RoomID\nLab Physics,F1,R1\n"),
		strings.NewReader("RoomID,RoomName\nR1,Room101\n"),
	)
	require.NoError(t, err)
	f, ok := catalog.FacultyByID("F1")
	require.True(t, ok)
	require.Equal(t, "Dr. A", f.Name)
}

func TestLoadRejectsMissingColumn(t *testing.T) {
	loader := NewLoader(0)
	_, err := loader.Load(
		strings.NewReader("Id,Name\nF1,Dr. A\n"),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrMalformedCatalog))
	require.Contains(t, err.Error(), "FacultyID")
}

func TestLoadRejectsEmptyDataset(t *testing.T) {
	loader := NewLoader(0)
	_, err := loader.Load(
		strings.NewReader(""),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.True(t, appErrors.Is(err, appErrors.ErrMalformedCatalog))
}

func TestLoadRejectsDuplicateIdentifiers(t *testing.T) {
	loader := NewLoader(0)
	_, err := loader.Load(
		strings.NewReader("FacultyID,Name\nF1,Dr. A\nF1,Dr. B\n"),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.True(t, appErrors.Is(err, appErrors.ErrMalformedCatalog))
	require.Contains(t, err.Error(), "duplicate")
}

func TestLoadRejectsUnresolvedSubjectReference(t *testing.T) {
	loader := NewLoader(0)
	_, err := loader.Load(
		strings.NewReader(facultyCSV),
		strings.NewReader("SubjectName,FacultyID,RoomID\nLab Physics,F9,R1\n"),
		strings.NewReader(roomsCSV),
	)
	require.True(t, appErrors.Is(err, appErrors.ErrLookup))
}

func TestLoadEnforcesRowCap(t *testing.T) {
	loader := NewLoader(1)
	_, err := loader.Load(
		strings.NewReader(facultyCSV),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.True(t, appErrors.Is(err, appErrors.ErrMalformedCatalog))
	require.Contains(t, err.Error(), "exceeds")
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	_, err := store.Snapshot()
	require.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))

	loader := NewLoader(0)
	catalog, err := loader.Load(
		strings.NewReader(facultyCSV),
		strings.NewReader(subjectCSV),
		strings.NewReader(roomsCSV),
	)
	require.NoError(t, err)
	store.Swap(catalog)

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	require.Same(t, catalog, snapshot)

	summary, err := store.Summary()
	require.NoError(t, err)
	require.Equal(t, 2, summary.FacultyCount)
	require.Equal(t, 2, summary.SubjectCount)
	require.Equal(t, 2, summary.RoomCount)
	require.NotEmpty(t, summary.UploadedAtUTC)
}
