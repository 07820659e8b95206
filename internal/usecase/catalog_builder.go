package usecase

import (
	"errors"
	"log"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// CatalogBuilderConfig holds configuration for the catalog builder
type CatalogBuilderConfig struct {
	PlaceholderImage   string
	EnableDebugLogging bool
}

// CatalogBuilder merges decoded source batches into one validated catalog
type CatalogBuilder struct {
	placeholderImage   string
	enableDebugLogging bool
	now                func() time.Time
}

// NewCatalogBuilder creates a new catalog builder with the given configuration
func NewCatalogBuilder(config CatalogBuilderConfig) *CatalogBuilder {
	placeholder := config.PlaceholderImage
	if placeholder == "" {
		placeholder = domain.DefaultPlaceholderImage
	}

	return &CatalogBuilder{
		placeholderImage:   placeholder,
		enableDebugLogging: config.EnableDebugLogging,
		now:                time.Now,
	}
}

// Build normalizes and merges batches in the order given. Records without title,
// category or a usable price are dropped and counted in the report. When nothing
// survives, the catalog is returned with its report together with ErrEmptyCatalog.
func (b *CatalogBuilder) Build(batches []domain.RawBatch) (*domain.Catalog, error) {
	acc := b.newAccumulator()
	for _, batch := range batches {
		acc.addBatch(batch)
	}
	return acc.finish()
}

// BuildFromSources decodes each source file and builds the catalog. Files that
// cannot be decoded are skipped and reported by name.
func (b *CatalogBuilder) BuildFromSources(files []domain.SourceFile) (*domain.Catalog, error) {
	acc := b.newAccumulator()
	for _, file := range files {
		batch, err := DecodeSource(file)
		if err != nil {
			log.Printf("[CATALOG] Skipping %s: %v", file.Name, err)
			acc.report.Files = append(acc.report.Files, domain.FileReport{
				Name:  file.Name,
				Error: err.Error(),
			})
			continue
		}
		acc.addBatch(batch)
	}
	return acc.finish()
}

type catalogAccumulator struct {
	builder  *CatalogBuilder
	products []domain.ProductRecord
	report   domain.LoadReport
}

func (b *CatalogBuilder) newAccumulator() *catalogAccumulator {
	return &catalogAccumulator{
		builder:  b,
		products: make([]domain.ProductRecord, 0),
		report:   domain.LoadReport{DropReasons: make(map[string]int)},
	}
}

func (a *catalogAccumulator) addBatch(batch domain.RawBatch) {
	tagged, fileRetailer := TagBatch(batch)

	fileReport := domain.FileReport{
		Name:           batch.FileName,
		Retailer:       fileRetailer,
		Records:        len(tagged),
		MalformedLines: batch.MalformedLines,
	}

	for _, t := range tagged {
		record, err := NormalizeRecord(t.Raw, a.builder.placeholderImage)
		if err != nil {
			fileReport.Dropped++
			a.report.DropReasons[dropReason(err)]++
			continue
		}
		record.Retailer = t.Retailer
		record.ID = len(a.products)
		a.products = append(a.products, record)
		fileReport.Accepted++
	}

	if a.builder.enableDebugLogging {
		log.Printf("[CATALOG] %s: retailer=%s records=%d accepted=%d dropped=%d malformed=%d",
			batch.FileName, fileRetailer, fileReport.Records, fileReport.Accepted, fileReport.Dropped, fileReport.MalformedLines)
	}

	a.report.RecordsRead += fileReport.Records
	a.report.RecordsAccepted += fileReport.Accepted
	a.report.RecordsDropped += fileReport.Dropped
	a.report.Files = append(a.report.Files, fileReport)
}

func (a *catalogAccumulator) finish() (*domain.Catalog, error) {
	catalog := &domain.Catalog{
		Products: a.products,
		Report:   a.report,
		LoadedAt: a.builder.now(),
	}
	if len(a.products) == 0 {
		return catalog, domain.ErrEmptyCatalog
	}
	return catalog, nil
}

// dropReason names the field that made a record invalid
func dropReason(err error) string {
	var recErr *RecordError
	if errors.As(err, &recErr) {
		return recErr.Field
	}
	return "other"
}
