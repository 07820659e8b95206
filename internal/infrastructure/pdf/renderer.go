package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pricelens/backend/internal/domain"
)

// Page dimensions in points for the supported paper names
var paperSizes = map[string][2]float64{
	"A4P":     {595, 842},
	"A4L":     {842, 595},
	"LetterP": {612, 792},
	"LetterL": {792, 612},
}

const (
	defaultPaper    = "A4P"
	defaultFontSize = 11
	pageMargin      = 50.0
	itemIndent      = 14.0
	regularFont     = "Helvetica"
	boldFont        = "Helvetica-Bold"
)

// RendererConfig holds configuration for the PDF renderer
type RendererConfig struct {
	Paper    string // A4P, A4L, LetterP or LetterL
	FontSize int    // Item line size; headings scale from it
}

// Renderer lays a shopping list document out on pages and renders it with pdfcpu
type Renderer struct {
	paper    string
	width    float64
	height   float64
	fontSize int
}

// NewRenderer creates a new PDF renderer. Unknown paper names fall back to A4 portrait.
func NewRenderer(config RendererConfig) *Renderer {
	paper := config.Paper
	size, ok := paperSizes[paper]
	if !ok {
		paper = defaultPaper
		size = paperSizes[defaultPaper]
	}

	fontSize := config.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	return &Renderer{
		paper:    paper,
		width:    size[0],
		height:   size[1],
		fontSize: fontSize,
	}
}

// Render writes doc as a PDF to w, adding pages as needed
func (r *Renderer) Render(doc *domain.Document, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", domain.ErrInvalidRequest)
	}

	spec := r.layout(doc)
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encode pdf layout: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(data), w, conf); err != nil {
		return fmt.Errorf("pdfcpu create: %w", err)
	}
	return nil
}

// createSpec mirrors the JSON page description accepted by pdfcpu's create command
type createSpec struct {
	Paper  string              `json:"paper"`
	Origin string              `json:"origin"`
	Pages  map[string]pageSpec `json:"pages"`
}

type pageSpec struct {
	Content contentSpec `json:"content"`
}

type contentSpec struct {
	Text []textSpec `json:"text"`
}

type textSpec struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  fontSpec   `json:"font"`
}

type fontSpec struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type blockStyle struct {
	font   string
	size   int
	lead   float64
	indent float64
}

func (r *Renderer) style(kind domain.BlockKind) blockStyle {
	base := r.fontSize
	switch kind {
	case domain.BlockHeading1:
		return blockStyle{font: boldFont, size: base + 4, lead: float64(base+4) * 1.9}
	case domain.BlockHeading2:
		return blockStyle{font: boldFont, size: base + 1, lead: float64(base+1) * 1.6}
	case domain.BlockTotal:
		return blockStyle{font: boldFont, size: base + 2, lead: float64(base+2) * 2.2}
	default:
		return blockStyle{font: regularFont, size: base, lead: float64(base) * 1.4, indent: itemIndent}
	}
}

// layout places the title and blocks top to bottom, starting a new page when the
// next block does not fit. Headings are kept together with the line that follows.
func (r *Renderer) layout(doc *domain.Document) createSpec {
	pages := [][]textSpec{{}}
	y := pageMargin
	limit := r.height - pageMargin
	lineLead := r.style(domain.BlockLine).lead

	place := func(text string, st blockStyle, keepWithNext bool) {
		needed := st.lead
		if keepWithNext {
			needed += lineLead
		}
		if y+needed > limit && len(pages[len(pages)-1]) > 0 {
			pages = append(pages, []textSpec{})
			y = pageMargin
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], textSpec{
			Value: text,
			Pos:   [2]float64{pageMargin + st.indent, y + float64(st.size)},
			Font:  fontSpec{Name: st.font, Size: st.size},
		})
		y += st.lead
	}

	if doc.Title != "" {
		size := r.fontSize + 8
		place(doc.Title, blockStyle{font: boldFont, size: size, lead: float64(size) * 1.8}, false)
	}
	for _, block := range doc.Blocks {
		heading := block.Kind == domain.BlockHeading1 || block.Kind == domain.BlockHeading2
		place(block.Text, r.style(block.Kind), heading)
	}

	spec := createSpec{
		Paper:  r.paper,
		Origin: "UpperLeft",
		Pages:  make(map[string]pageSpec, len(pages)),
	}
	for i, texts := range pages {
		spec.Pages[strconv.Itoa(i+1)] = pageSpec{Content: contentSpec{Text: texts}}
	}
	return spec
}
