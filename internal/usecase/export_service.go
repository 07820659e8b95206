package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pricelens/backend/internal/domain"
)

// Default export settings
const (
	defaultCurrencySuffix = "€"
	defaultDocumentTitle  = "Lista de la compra"
	exportBaseName        = "lista_compra"
)

// ExportServiceConfig holds configuration for shopping list exports
type ExportServiceConfig struct {
	CurrencySuffix string
	DocumentTitle  string
	StrictLatin1   bool // Reject instead of substituting unrepresentable document text
}

// ExportService renders a grouped cart as text, JSON or a paginated document
type ExportService struct {
	renderer       domain.DocumentRenderer
	currencySuffix string
	documentTitle  string
	strictLatin1   bool
}

// NewExportService creates a new export service. renderer may be nil, in which
// case document exports are unavailable.
func NewExportService(renderer domain.DocumentRenderer, config ExportServiceConfig) *ExportService {
	suffix := config.CurrencySuffix
	if suffix == "" {
		suffix = defaultCurrencySuffix
	}
	title := config.DocumentTitle
	if title == "" {
		title = defaultDocumentTitle
	}

	return &ExportService{
		renderer:       renderer,
		currencySuffix: suffix,
		documentTitle:  title,
		strictLatin1:   config.StrictLatin1,
	}
}

// ParseExportFormat validates an export format name (txt, json or pdf)
func ParseExportFormat(name string) (domain.ExportFormat, error) {
	format := domain.ExportFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")))
	switch format {
	case domain.FormatText, domain.FormatJSON, domain.FormatPDF:
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, name)
}

// Export renders the grouped cart in the requested format
func (s *ExportService) Export(format domain.ExportFormat, groups []domain.RetailerGroup, total float64) (*domain.ExportResult, error) {
	result := &domain.ExportResult{
		Format:   format,
		FileName: exportBaseName + "." + string(format),
	}

	switch format {
	case domain.FormatText:
		result.ContentType = "text/plain; charset=utf-8"
		result.Data = []byte(s.FormatText(groups, total))

	case domain.FormatJSON:
		data, err := s.FormatJSON(groups)
		if err != nil {
			return nil, err
		}
		result.ContentType = "application/json; charset=utf-8"
		result.Data = data

	case domain.FormatPDF:
		if s.renderer == nil {
			return nil, fmt.Errorf("%w: no document renderer configured", domain.ErrUnsupportedFormat)
		}
		doc, warnings, err := s.BuildDocument(groups, total)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := s.renderer.Render(doc, &buf); err != nil {
			return nil, fmt.Errorf("render document: %w", err)
		}
		result.ContentType = "application/pdf"
		result.Data = buf.Bytes()
		result.Warnings = warnings

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	log.Printf("[EXPORT] %s: %d bytes, %d retailers", result.FileName, len(result.Data), len(groups))
	return result, nil
}

// FormatText renders a checklist: retailer headers underlined with '=', category
// headers underlined with '-', then one "[ ] title - price" line per item.
func (s *ExportService) FormatText(groups []domain.RetailerGroup, total float64) string {
	var b strings.Builder
	for _, g := range groups {
		writeUnderlined(&b, g.Retailer, '=')
		for _, cg := range g.Categories {
			writeUnderlined(&b, cg.Category, '-')
			for _, item := range cg.Items {
				b.WriteString(s.itemLine(item))
				b.WriteByte('\n')
			}
			b.WriteByte('\n')
		}
	}
	b.WriteString("Total: " + s.formatPrice(total) + "\n")
	return b.String()
}

func writeUnderlined(b *strings.Builder, text string, mark rune) {
	b.WriteString(text)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(string(mark), utf8.RuneCountInString(text)))
	b.WriteByte('\n')
}

// exportItem is the reduced item shape of the JSON export
type exportItem struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
}

// FormatJSON renders {retailer: {category: [{product, price}]}} with keys in
// first-seen order, indented, with non-ASCII text kept as is.
func (s *ExportService) FormatJSON(groups []domain.RetailerGroup) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONValue(&buf, g.Retailer); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, cg := range g.Categories {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(&buf, cg.Category); err != nil {
				return nil, err
			}
			buf.WriteByte(':')

			items := make([]exportItem, 0, len(cg.Items))
			for _, item := range cg.Items {
				items = append(items, exportItem{Product: item.Title, Price: item.Price})
			}
			if err := writeJSONValue(&buf, items); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent export json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode export json: %w", err)
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// BuildDocument produces the heading/line sequence for the document renderer.
// All text is made Latin-1 safe; substitutions are reported as warnings, or
// rejected with ErrEncoding when strict mode is enabled.
func (s *ExportService) BuildDocument(groups []domain.RetailerGroup, total float64) (*domain.Document, []string, error) {
	var folded, replaced int
	var offending []string
	safe := func(text string) string {
		out, f, r := ToLatin1(text)
		folded += f
		replaced += r
		if r > 0 {
			offending = append(offending, text)
		}
		return out
	}

	doc := &domain.Document{Title: safe(s.documentTitle)}
	add := func(kind domain.BlockKind, text string) {
		doc.Blocks = append(doc.Blocks, domain.DocumentBlock{Kind: kind, Text: safe(text)})
	}

	for _, g := range groups {
		add(domain.BlockHeading1, g.Retailer)
		for _, cg := range g.Categories {
			add(domain.BlockHeading2, cg.Category)
			for _, item := range cg.Items {
				add(domain.BlockLine, s.itemLine(item))
			}
		}
	}
	add(domain.BlockTotal, "Total: "+s.formatPrice(total))

	if replaced > 0 && s.strictLatin1 {
		return nil, nil, fmt.Errorf("%w: %d characters in %q", domain.ErrEncoding, replaced, offending)
	}

	var warnings []string
	if folded > 0 {
		warnings = append(warnings, fmt.Sprintf("%d accented characters outside Latin-1 folded to their base letter", folded))
	}
	if replaced > 0 {
		warnings = append(warnings, fmt.Sprintf("%d characters not representable in Latin-1 replaced with '?'", replaced))
	}
	return doc, warnings, nil
}

func (s *ExportService) itemLine(item domain.CartItem) string {
	return "[ ] " + item.Title + " - " + s.formatPrice(item.Price)
}

// formatPrice formats for display only; stored prices keep full precision
func (s *ExportService) formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + s.currencySuffix
}
