package domain

import "time"

// CartItem is a product captured at the moment it was selected
type CartItem struct {
	ProductRecord
	AddedAt time.Time `json:"addedAt"`
}

// Key returns the composite key used by the purchased-flag map
func (i CartItem) Key() PurchaseKey {
	return PurchaseKey{Retailer: i.Retailer, Category: i.Category, Title: i.Title}
}

// PurchaseKey identifies a cart entry on the shopping checklist.
// Two items with the same retailer, category and title share a key.
type PurchaseKey struct {
	Retailer string `json:"retailer" binding:"required"`
	Category string `json:"category" binding:"required"`
	Title    string `json:"title" binding:"required"`
}

// RetailerGroup holds cart items of one retailer, grouped by category
type RetailerGroup struct {
	Retailer   string          `json:"retailer"`
	Categories []CategoryGroup `json:"categories"`
}

// CategoryGroup holds cart items of one category in cart order
type CategoryGroup struct {
	Category string     `json:"category"`
	Items    []CartItem `json:"items"`
}

// ExportFormat selects the shopping list representation
type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatJSON ExportFormat = "json"
	FormatPDF  ExportFormat = "pdf"
)

// ExportResult is a rendered shopping list ready to be written or served
type ExportResult struct {
	Format      ExportFormat `json:"format"`
	FileName    string       `json:"fileName"`
	ContentType string       `json:"contentType"`
	Data        []byte       `json:"-"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// BlockKind is the role of one block in a shopping list document
type BlockKind int

const (
	BlockHeading1 BlockKind = iota + 1 // retailer
	BlockHeading2                      // category
	BlockLine                          // item
	BlockTotal
)

// DocumentBlock is one heading or line of a shopping list document
type DocumentBlock struct {
	Kind BlockKind
	Text string
}

// Document is the ordered heading/line sequence handed to a document renderer
type Document struct {
	Title  string
	Blocks []DocumentBlock
}
