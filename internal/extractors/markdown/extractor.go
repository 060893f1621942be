// Package markdown extracts blocks from Markdown documents.
package markdown

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/extractors/blocks"
)

// Name is the format name of the extractor.
const Name = "markdown"

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads a Markdown file into blocks.
func (e *Extractor) Extract(_ context.Context, path string, side domain.Side) ([]domain.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), side), nil
}

// Pre-compiled regular expressions for block and inline syntax.
var (
	headingLine  = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.*?)\s*#*\s*$`)
	listLine     = regexp.MustCompile(`^(\s*)(?:[-*+]|\d+[.)])\s+(.*)$`)
	imageLine    = regexp.MustCompile(`^\s*!\[([^\]]*)\]\([^)]*\)\s*$`)
	footnoteLine = regexp.MustCompile(`^\s*\[\^([^\]]+)\]:\s*(.*)$`)
	fenceLine    = regexp.MustCompile("^\\s*(```|~~~)")
	ruleLine     = regexp.MustCompile(`^\s*([-*_])(\s*[-*_]){2,}\s*$`)
	tableSep     = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)

	inlineImage    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inlineLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCode     = regexp.MustCompile("`([^`]*)`")
	inlineFootnote = regexp.MustCompile(`\[\^[^\]]+\]`)
	emphasis       = regexp.MustCompile(`(\*\*|__|\*|~~)`)
)

// parser walks the document line by line.
type parser struct {
	b         *blocks.Builder
	paragraph []string
	table     [][]string
}

// Parse converts Markdown content into blocks for side.
func Parse(content string, side domain.Side) []domain.Block {
	p := &parser{b: blocks.NewBuilder(side, blocks.Prefix(side))}

	inFence := false
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if fenceLine.MatchString(line) {
			p.flush()
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		p.line(line)
	}
	p.flush()
	return p.b.Blocks()
}

func (p *parser) line(line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "|") {
		p.flushParagraph()
		if !tableSep.MatchString(trimmed) {
			p.table = append(p.table, splitRow(trimmed))
		}
		return
	}
	p.flushTable()

	switch {
	case trimmed == "" || ruleLine.MatchString(trimmed):
		p.flushParagraph()
	case headingLine.MatchString(line):
		p.flushParagraph()
		p.b.Heading(stripInline(headingLine.FindStringSubmatch(line)[2]))
	case imageLine.MatchString(line):
		p.flushParagraph()
		p.b.Image(imageLine.FindStringSubmatch(line)[1])
	case footnoteLine.MatchString(line):
		p.flushParagraph()
		m := footnoteLine.FindStringSubmatch(line)
		p.footnote(m[1], m[2])
	case listLine.MatchString(line):
		p.flushParagraph()
		m := listLine.FindStringSubmatch(line)
		p.b.ListItem(stripInline(m[2]), indentLevel(m[1]))
	default:
		p.paragraph = append(p.paragraph, strings.TrimPrefix(trimmed, ">"))
	}
}

func (p *parser) footnote(ref, text string) {
	before := p.b.Len()
	p.b.Text(domain.BlockFootnote, stripInline(text))
	if p.b.Len() > before {
		all := p.b.Blocks()
		all[len(all)-1].FootnoteRef = ref
	}
}

func (p *parser) flush() {
	p.flushParagraph()
	p.flushTable()
}

func (p *parser) flushParagraph() {
	if len(p.paragraph) == 0 {
		return
	}
	p.b.Paragraph(stripInline(strings.Join(p.paragraph, " ")))
	p.paragraph = nil
}

func (p *parser) flushTable() {
	if len(p.table) == 0 {
		return
	}
	p.b.Table(p.table)
	p.table = nil
}

// splitRow splits a pipe table row into cells.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i, c := range cells {
		cells[i] = stripInline(c)
	}
	return cells
}

// indentLevel converts leading whitespace to a list nesting level.
func indentLevel(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}
	return width / 2
}

// stripInline removes inline formatting, keeping the visible text.
func stripInline(s string) string {
	s = inlineImage.ReplaceAllString(s, "$1")
	s = inlineLink.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = inlineFootnote.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
