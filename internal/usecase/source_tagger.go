package usecase

import (
	"path/filepath"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// RetailerFromFileName derives a retailer token from a source file name.
// "dia_2025-03-15.json" yields "dia"; a name without underscore yields the base
// name without extension. Case is preserved.
func RetailerFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if idx := strings.Index(base, "_"); idx >= 0 {
		base = base[:idx]
	}

	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return domain.UnknownRetailer
	}
	return base
}

// TagBatch assigns a retailer to every record of a batch. A retailer field on the
// record wins (empty or null becomes "unknown"); otherwise the retailer derived
// once from the file name is used. The derived retailer is returned as well.
func TagBatch(batch domain.RawBatch) ([]domain.TaggedRecord, string) {
	fileRetailer := RetailerFromFileName(batch.FileName)

	tagged := make([]domain.TaggedRecord, 0, len(batch.Records))
	for _, raw := range batch.Records {
		retailer := fileRetailer
		if v, present := lookupField(raw, retailerKeys); present {
			retailer = strings.TrimSpace(asText(v))
			if retailer == "" {
				retailer = domain.UnknownRetailer
			}
		}
		tagged = append(tagged, domain.TaggedRecord{Raw: raw, Retailer: retailer})
	}

	return tagged, fileRetailer
}
