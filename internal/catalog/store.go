package catalog

import (
	"sync"
	"time"

	"github.com/acadlab/timetable-api/internal/models"
	appErrors "github.com/acadlab/timetable-api/pkg/errors"
)

// Store holds the active catalog for the process lifetime. Uploads swap the
// whole catalog atomically; generation runs only ever read it.
type Store struct {
	mu         sync.RWMutex
	catalog    *models.Catalog
	uploadedAt time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Swap replaces the active catalog.
func (s *Store) Swap(c *models.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.uploadedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Snapshot returns the active catalog, or a precondition error when no
// catalog has been uploaded yet.
func (s *Store) Snapshot() (*models.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no catalog uploaded")
	}
	return s.catalog, nil
}

// Summary describes the active catalog for display.
func (s *Store) Summary() (models.CatalogSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return models.CatalogSummary{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no catalog uploaded")
	}
	summary := s.catalog.Summary()
	summary.UploadedAtUTC = s.uploadedAt.Format(time.RFC3339)
	return summary, nil
}
