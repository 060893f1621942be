// Package pdf extracts blocks from text-based PDF documents.
//
// Text is read row by row. Rows are grouped into paragraphs by vertical
// spacing, and rows set larger or bolder than the body text that start
// with a section number become headings.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Name is the format name of the extractor.
const Name = "pdf"

// defaultPageHeight is used when a page does not declare its MediaBox (A4).
const defaultPageHeight = 842.0

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor handles PDF documents with an embedded text layer.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads the text layer of a PDF into blocks.
func (e *Extractor) Extract(ctx context.Context, path string, side domain.Side) ([]domain.Block, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	var pages []Page
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(n)
		if p.V.IsNull() || p.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			// A damaged page loses its text only.
			continue
		}
		pages = append(pages, Page{Number: n, Height: pageHeight(p), Lines: readRows(rows)})
	}

	return Layout(pages, side), nil
}

// pageHeight reads the page height from the MediaBox.
func pageHeight(p pdf.Page) float64 {
	box := p.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return defaultPageHeight
	}
	if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
		return h
	}
	return defaultPageHeight
}

// readRows converts text rows into lines, inserting spaces between
// fragments that are visibly apart.
func readRows(rows pdf.Rows) []Line {
	var lines []Line
	for _, row := range rows {
		var sb strings.Builder
		var l Line
		var sizeSum float64
		var n int
		var end float64
		for _, t := range row.Content {
			if strings.TrimSpace(t.S) == "" && t.S != " " {
				continue
			}
			if n == 0 {
				l.X, l.Y = t.X, t.Y
			} else if t.X > end+0.15*t.FontSize && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
			end = t.X + t.W
			sizeSum += t.FontSize
			n++
			if strings.Contains(strings.ToLower(t.Font), "bold") {
				l.Bold = true
			}
		}
		if n == 0 {
			continue
		}
		l.Text = strings.Join(strings.Fields(sb.String()), " ")
		l.Size = sizeSum / float64(n)
		if l.Text != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
