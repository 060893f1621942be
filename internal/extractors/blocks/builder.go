// Package blocks assembles extracted document content into ordered blocks.
//
// Extractors feed headings, paragraphs, list items and tables to a Builder
// in reading order. The builder numbers positions, assigns IDs and carries
// the section number of the latest numbered heading onto the blocks below it.
package blocks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// sectionNumber matches a leading section number such as "4", "4.3.1", "4.3."
// or an annex number such as "A.2".
var sectionNumber = regexp.MustCompile(`^\s*((?:\d+(?:\.\d+)*|[A-Z](?:\.\d+)+))\.?\s+(\S.*)$`)

// SplitHeading separates a leading section number from a heading title.
// It returns an empty number when the heading is not numbered.
func SplitHeading(text string) (number, title string) {
	m := sectionNumber.FindStringSubmatch(text)
	if m == nil {
		return "", strings.TrimSpace(text)
	}
	return m[1], strings.TrimSpace(m[2])
}

// Builder accumulates blocks for one document side.
type Builder struct {
	side    domain.Side
	prefix  string
	page    int
	section string
	blocks  []domain.Block
}

// NewBuilder creates a builder for side. IDs are prefix followed by the position.
func NewBuilder(side domain.Side, prefix string) *Builder {
	return &Builder{side: side, prefix: prefix, page: 1}
}

// SetPage sets the page number for subsequent blocks.
func (b *Builder) SetPage(page int) {
	if page > 0 {
		b.page = page
	}
}

// Heading adds a heading. A numbered heading opens a new section; an
// unnumbered one stays in the current section.
func (b *Builder) Heading(text string) {
	text = collapse(text)
	if text == "" {
		return
	}
	if number, _ := SplitHeading(text); number != "" {
		b.section = number
	}
	b.add(domain.Block{Type: domain.BlockHeading, Text: text})
}

// Paragraph adds running text.
func (b *Builder) Paragraph(text string) {
	b.Text(domain.BlockParagraph, text)
}

// Text adds a block of the given type with text content.
func (b *Builder) Text(t domain.BlockType, text string) {
	text = collapse(text)
	if text == "" {
		return
	}
	b.add(domain.Block{Type: t, Text: text})
}

// ListItem adds a list item at the given nesting level.
func (b *Builder) ListItem(text string, level int) {
	text = collapse(text)
	if text == "" {
		return
	}
	b.add(domain.Block{Type: domain.BlockListItem, Text: text, ListLevel: max(0, level)})
}

// Image adds an image referenced by its alt text or caption.
func (b *Builder) Image(ref string) {
	b.add(domain.Block{Type: domain.BlockImage, FigureRef: collapse(ref)})
}

// Table adds a table. Cells are trimmed; empty tables are dropped.
func (b *Builder) Table(rows [][]string) {
	var matrix [][]string
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = collapse(c)
		}
		matrix = append(matrix, cells)
	}
	if len(matrix) == 0 {
		return
	}
	b.add(domain.Block{Type: domain.BlockTable, TableMatrix: matrix})
}

// Blocks returns the blocks built so far.
func (b *Builder) Blocks() []domain.Block {
	return b.blocks
}

// Len returns the number of blocks built so far.
func (b *Builder) Len() int {
	return len(b.blocks)
}

func (b *Builder) add(block domain.Block) {
	pos := len(b.blocks)
	block.ID = fmt.Sprintf("%s%d", b.prefix, pos)
	block.Side = b.side
	block.Page = b.page
	block.Position = pos
	block.SectionID = b.section
	b.blocks = append(b.blocks, block)
}

// collapse trims text and collapses internal whitespace.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Prefix returns the conventional ID prefix for a side.
func Prefix(side domain.Side) string {
	if side == domain.SideTarget {
		return "t"
	}
	return "s"
}
