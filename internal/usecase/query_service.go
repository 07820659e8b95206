package usecase

import (
	"sort"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Query returns the catalog records matching every set filter field, sorted by
// ascending price. Ties keep catalog order. An empty result is not an error;
// ErrEmptyCatalog is only returned when there is no data to query at all.
func Query(catalog *domain.Catalog, filter domain.Filter) ([]domain.ProductRecord, error) {
	if catalog.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	keyword := strings.ToLower(filter.Keyword)
	results := make([]domain.ProductRecord, 0)
	for _, p := range catalog.Products {
		if matchesFilter(p, filter, keyword) {
			results = append(results, p)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Price < results[j].Price
	})

	return results, nil
}

// matchesFilter applies exact category and title matching and a case-insensitive
// keyword substring match on the title
func matchesFilter(p domain.ProductRecord, filter domain.Filter, lowerKeyword string) bool {
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.Title != "" && p.Title != filter.Title {
		return false
	}
	if filter.Keyword != "" {
		if p.Title == "" {
			return false
		}
		if !strings.Contains(strings.ToLower(p.Title), lowerKeyword) {
			return false
		}
	}
	return true
}

// Categories returns the distinct categories of the catalog, sorted
func Categories(catalog *domain.Catalog) []string {
	if catalog == nil {
		return []string{}
	}
	return distinctSorted(catalog.Products, func(p domain.ProductRecord) (string, bool) {
		return p.Category, true
	})
}

// Titles returns the distinct product titles, sorted. A non-empty category
// restricts the list to that category.
func Titles(catalog *domain.Catalog, category string) []string {
	if catalog == nil {
		return []string{}
	}
	return distinctSorted(catalog.Products, func(p domain.ProductRecord) (string, bool) {
		return p.Title, category == "" || p.Category == category
	})
}

func distinctSorted(products []domain.ProductRecord, pick func(domain.ProductRecord) (string, bool)) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, p := range products {
		v, ok := pick(p)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
