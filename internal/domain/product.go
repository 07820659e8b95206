package domain

import (
	"strconv"
	"time"
)

// DefaultPlaceholderImage is used when a listing has no usable image
const DefaultPlaceholderImage = "https://via.placeholder.com/150"

// UnknownRetailer is the retailer assigned when none can be derived
const UnknownRetailer = "unknown"

// ProductRecord is one normalized catalog entry
type ProductRecord struct {
	ID       int     `json:"id"` // Position in the catalog
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	ImageURL string  `json:"imageUrl"`
	Retailer string  `json:"retailer"`
	Link     string  `json:"link,omitempty"`
}

// RawRecord is one decoded JSON object as emitted by a scraper
type RawRecord map[string]any

// SourceFile is the content of one input file, as supplied by file discovery
type SourceFile struct {
	Name    string
	Content []byte
	Err     error // Read failure; Content is empty when set
}

// RawBatch holds the records decoded from one source file
type RawBatch struct {
	FileName       string
	Records        []RawRecord
	MalformedLines int
}

// TaggedRecord is a raw record with its resolved retailer
type TaggedRecord struct {
	Raw      RawRecord
	Retailer string
}

// Filter selects catalog records. Empty fields impose no constraint.
type Filter struct {
	Category string `form:"category" json:"category,omitempty"`
	Title    string `form:"title" json:"title,omitempty"`
	Keyword  string `form:"keyword" json:"keyword,omitempty"`
}

// Catalog is the full set of validated products from one data load
type Catalog struct {
	Version  int64           `json:"version"` // Increases with every successful load
	Products []ProductRecord `json:"products"`
	Report   LoadReport      `json:"report"`
	LoadedAt time.Time       `json:"loadedAt"`
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// Product returns the record with the given catalog id
func (c *Catalog) Product(id int) (ProductRecord, bool) {
	if c == nil || id < 0 || id >= len(c.Products) {
		return ProductRecord{}, false
	}
	return c.Products[id], true
}

// LoadReport aggregates diagnostics from one catalog build
type LoadReport struct {
	Files           []FileReport   `json:"files"`
	RecordsRead     int            `json:"recordsRead"`
	RecordsAccepted int            `json:"recordsAccepted"`
	RecordsDropped  int            `json:"recordsDropped"`
	DropReasons     map[string]int `json:"dropReasons,omitempty"`
}

// FileReport describes what one source file contributed
type FileReport struct {
	Name           string `json:"name"`
	Retailer       string `json:"retailer,omitempty"`
	Records        int    `json:"records"`
	Accepted       int    `json:"accepted"`
	Dropped        int    `json:"dropped"`
	MalformedLines int    `json:"malformedLines,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Warnings returns human readable, non-fatal diagnostics for the load
func (r LoadReport) Warnings() []string {
	var warnings []string
	for _, f := range r.Files {
		switch {
		case f.Error != "":
			warnings = append(warnings, "skipped file "+f.Name+": "+f.Error)
		case f.MalformedLines > 0:
			warnings = append(warnings, "file "+f.Name+" has "+strconv.Itoa(f.MalformedLines)+" malformed entries")
		}
		if f.Dropped > 0 {
			warnings = append(warnings, "file "+f.Name+": "+strconv.Itoa(f.Dropped)+" records dropped during normalization")
		}
	}
	return warnings
}
