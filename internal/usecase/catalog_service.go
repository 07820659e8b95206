package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/pricelens/backend/internal/domain"
)

// CatalogService loads the catalog from the configured sources and holds the
// currently active one. A load replaces the catalog in full.
type CatalogService struct {
	reader  domain.SourceReader
	builder *CatalogBuilder

	loadMu     sync.Mutex
	version    int64
	current    atomic.Pointer[domain.Catalog]
	lastReport atomic.Pointer[domain.LoadReport]
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(reader domain.SourceReader, builder *CatalogBuilder) *CatalogService {
	return &CatalogService{
		reader:  reader,
		builder: builder,
	}
}

// Load reads all sources and rebuilds the catalog. On ErrEmptyCatalog the previous
// catalog is discarded and the returned catalog only carries the load report.
func (s *CatalogService) Load(ctx context.Context) (*domain.Catalog, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	files, err := s.reader.ReadSources(ctx)
	if err != nil {
		s.current.Store(nil)
		s.lastReport.Store(&domain.LoadReport{})
		return nil, fmt.Errorf("%w: %v", domain.ErrEmptyCatalog, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog, err := s.builder.BuildFromSources(files)
	report := catalog.Report
	s.lastReport.Store(&report)

	for _, warning := range report.Warnings() {
		log.Printf("[CATALOG] WARNING: %s", warning)
	}

	if err != nil {
		s.current.Store(nil)
		if errors.Is(err, domain.ErrEmptyCatalog) {
			log.Printf("[CATALOG] No valid products in %d files", len(files))
		}
		return catalog, err
	}

	s.version++
	catalog.Version = s.version
	s.current.Store(catalog)
	log.Printf("[CATALOG] Loaded %d products from %d files (%d dropped)",
		report.RecordsAccepted, len(files), report.RecordsDropped)
	return catalog, nil
}

// Current returns the active catalog, or ErrEmptyCatalog when no data is loaded
func (s *CatalogService) Current() (*domain.Catalog, error) {
	catalog := s.current.Load()
	if catalog == nil || catalog.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	return catalog, nil
}

// LastReport returns the diagnostics of the most recent load
func (s *CatalogService) LastReport() domain.LoadReport {
	report := s.lastReport.Load()
	if report == nil {
		return domain.LoadReport{}
	}
	return *report
}
