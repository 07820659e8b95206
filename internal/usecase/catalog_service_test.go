package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

// MockSourceReader is a mock implementation of domain.SourceReader
type MockSourceReader struct {
	files     []domain.SourceFile
	readError error
	calls     int
}

func (m *MockSourceReader) ReadSources(ctx context.Context) ([]domain.SourceFile, error) {
	m.calls++
	if m.readError != nil {
		return nil, m.readError
	}
	return m.files, nil
}

var diaFile = domain.SourceFile{
	Name:    "dia_2025.json",
	Content: []byte(`[{"titulo":"Leche","precio":"0,95 €","categoria":"Lácteos"},{"titulo":"Pan","precio":"1,20","categoria":"Panadería"}]`),
}

func TestCatalogService_Load(t *testing.T) {
	t.Run("loads and exposes catalog", func(t *testing.T) {
		reader := &MockSourceReader{files: []domain.SourceFile{diaFile}}
		service := NewCatalogService(reader, newTestBuilder())

		catalog, err := service.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if catalog.Len() != 2 {
			t.Errorf("Len() = %d, want 2", catalog.Len())
		}
		if catalog.Version != 1 {
			t.Errorf("Version = %d, want 1", catalog.Version)
		}

		current, err := service.Current()
		if err != nil || current != catalog {
			t.Errorf("Current() = %p, %v; want loaded catalog", current, err)
		}
		if service.LastReport().RecordsAccepted != 2 {
			t.Errorf("LastReport().RecordsAccepted = %d, want 2", service.LastReport().RecordsAccepted)
		}
	})

	t.Run("reader failure empties catalog", func(t *testing.T) {
		reader := &MockSourceReader{files: []domain.SourceFile{diaFile}}
		service := NewCatalogService(reader, newTestBuilder())
		if _, err := service.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		reader.readError = errors.New("data directory missing")
		_, err := service.Load(context.Background())
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Load() error = %v, want ErrEmptyCatalog", err)
		}
		if _, err := service.Current(); !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Current() error = %v, want ErrEmptyCatalog", err)
		}
	})

	t.Run("reload replaces catalog", func(t *testing.T) {
		reader := &MockSourceReader{files: []domain.SourceFile{diaFile}}
		service := NewCatalogService(reader, newTestBuilder())
		_, _ = service.Load(context.Background())

		reader.files = []domain.SourceFile{{
			Name:    "mercadona.json",
			Content: []byte(`{"titulo":"Leche","precio":"0,89","categoria":"Lácteos"}`),
		}}
		if _, err := service.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		current, _ := service.Current()
		if current.Len() != 1 || current.Products[0].Retailer != "mercadona" {
			t.Errorf("Current() = %+v, want only the mercadona product", current.Products)
		}
		if current.Version != 2 {
			t.Errorf("Version = %d after second load, want 2", current.Version)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		service := NewCatalogService(&MockSourceReader{files: []domain.SourceFile{diaFile}}, newTestBuilder())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := service.Load(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Load() error = %v, want context.Canceled", err)
		}
	})

	t.Run("current before any load", func(t *testing.T) {
		service := NewCatalogService(&MockSourceReader{}, newTestBuilder())
		if _, err := service.Current(); !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Current() error = %v, want ErrEmptyCatalog", err)
		}
		if report := service.LastReport(); len(report.Files) != 0 {
			t.Errorf("LastReport() = %+v, want zero value", report)
		}
	})
}

func TestCatalogService_ConcurrentLoads(t *testing.T) {
	service := NewCatalogService(&MockSourceReader{files: []domain.SourceFile{diaFile}}, newTestBuilder())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = service.Load(context.Background())
			_, _ = service.Current()
		}()
	}
	wg.Wait()

	if current, err := service.Current(); err != nil || current.Len() != 2 {
		t.Errorf("Current() after concurrent loads = %v, %v", current, err)
	}
}
