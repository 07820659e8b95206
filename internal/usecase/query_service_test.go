package usecase

import (
	"errors"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func testCatalog() *domain.Catalog {
	products := []domain.ProductRecord{
		{Title: "Leche entera", Price: 0.95, Category: "Lácteos", Retailer: "dia"},
		{Title: "Pan de barra", Price: 0.60, Category: "Panadería", Retailer: "dia"},
		{Title: "Leche entera", Price: 0.89, Category: "Lácteos", Retailer: "mercadona"},
		{Title: "Leche desnatada", Price: 0.95, Category: "Lácteos", Retailer: "mercadona"},
		{Title: "Yogur de leche", Price: 1.50, Category: "Postres", Retailer: "carrefour"},
	}
	for i := range products {
		products[i].ID = i
	}
	return &domain.Catalog{Products: products}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name    string
		filter  domain.Filter
		wantIDs []int
	}{
		{name: "no filter sorts everything by price", filter: domain.Filter{}, wantIDs: []int{1, 2, 0, 3, 4}},
		{name: "category exact match", filter: domain.Filter{Category: "Lácteos"}, wantIDs: []int{2, 0, 3}},
		{name: "category is case-sensitive", filter: domain.Filter{Category: "lácteos"}, wantIDs: []int{}},
		{name: "title exact match across retailers", filter: domain.Filter{Title: "Leche entera"}, wantIDs: []int{2, 0}},
		{name: "keyword substring ignores case", filter: domain.Filter{Keyword: "LECHE"}, wantIDs: []int{2, 0, 3, 4}},
		{name: "filters combine", filter: domain.Filter{Category: "Lácteos", Keyword: "desnatada"}, wantIDs: []int{3}},
		{name: "no match", filter: domain.Filter{Keyword: "caviar"}, wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(testCatalog(), tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got == nil {
				t.Fatal("Query() returned nil slice, want empty slice")
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Query() returned %d products, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestQuery_EmptyCatalog(t *testing.T) {
	for _, catalog := range []*domain.Catalog{nil, {}} {
		if _, err := Query(catalog, domain.Filter{}); !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Query() error = %v, want ErrEmptyCatalog", err)
		}
	}
}

func TestQuery_DoesNotReorderCatalog(t *testing.T) {
	catalog := testCatalog()
	_, _ = Query(catalog, domain.Filter{})
	for i, p := range catalog.Products {
		if p.ID != i {
			t.Fatalf("catalog reordered: position %d holds id %d", i, p.ID)
		}
	}
}

func TestCategoriesAndTitles(t *testing.T) {
	catalog := testCatalog()

	categories := Categories(catalog)
	want := []string{"Lácteos", "Panadería", "Postres"}
	if len(categories) != len(want) {
		t.Fatalf("Categories() = %v, want %v", categories, want)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("Categories()[%d] = %s, want %s", i, categories[i], want[i])
		}
	}

	titles := Titles(catalog, "Lácteos")
	if len(titles) != 2 || titles[0] != "Leche desnatada" || titles[1] != "Leche entera" {
		t.Errorf("Titles(Lácteos) = %v, want [Leche desnatada Leche entera]", titles)
	}
	if all := Titles(catalog, ""); len(all) != 4 {
		t.Errorf("Titles(\"\") = %v, want 4 distinct titles", all)
	}
	if none := Categories(nil); none == nil || len(none) != 0 {
		t.Errorf("Categories(nil) = %v, want empty slice", none)
	}
}
