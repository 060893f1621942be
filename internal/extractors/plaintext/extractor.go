// Package plaintext extracts blocks from plain text files.
//
// Paragraphs are separated by blank lines. A short single-line paragraph
// that starts with a section number is treated as a heading.
package plaintext

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/extractors/blocks"
)

// Name is the format name of the extractor.
const Name = "text"

// maxHeadingLen bounds the length of a line that may be a heading.
const maxHeadingLen = 100

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback
}

// Extract reads a text file into blocks.
func (e *Extractor) Extract(_ context.Context, path string, side domain.Side) ([]domain.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), side), nil
}

// Parse converts plain text into blocks for side.
// A form feed starts a new page.
func Parse(content string, side domain.Side) []domain.Block {
	b := blocks.NewBuilder(side, blocks.Prefix(side))
	content = strings.ReplaceAll(content, "\r\n", "\n")

	for i, page := range strings.Split(content, "\f") {
		b.SetPage(i + 1)
		for _, para := range strings.Split(page, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if isHeading(para) {
				b.Heading(para)
				continue
			}
			b.Paragraph(para)
		}
	}
	return b.Blocks()
}

func isHeading(para string) bool {
	if strings.Contains(para, "\n") || len(para) > maxHeadingLen {
		return false
	}
	number, title := blocks.SplitHeading(para)
	return number != "" && !strings.HasSuffix(title, ".")
}
