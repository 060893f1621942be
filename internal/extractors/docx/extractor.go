// Package docx extracts blocks from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/extractors/blocks"
)

// Name is the format name of the extractor.
const Name = "docx"

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads a DOCX file into blocks.
func (e *Extractor) Extract(_ context.Context, path string, side domain.Side) ([]domain.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, side)
}

// Parse converts DOCX content into blocks for side. Footnotes follow the body.
func Parse(data []byte, side domain.Side) ([]domain.Block, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	document, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fmt.Errorf("%w: word/document.xml missing", domain.ErrInvalidInput)
	}

	p := &parser{b: blocks.NewBuilder(side, blocks.Prefix(side))}
	if err := p.parse(document); err != nil {
		return nil, fmt.Errorf("%w: document.xml: %w", domain.ErrInvalidInput, err)
	}

	footnotes, err := readPart(reader, "word/footnotes.xml")
	if err != nil {
		return nil, err
	}
	if footnotes != nil {
		if err := p.parse(footnotes); err != nil {
			return nil, fmt.Errorf("%w: footnotes.xml: %w", domain.ErrInvalidInput, err)
		}
	}
	return p.b.Blocks(), nil
}

// readPart returns the content of a named archive member, or nil if absent.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// parser streams WordprocessingML, keeping paragraphs and tables in order.
type parser struct {
	b *blocks.Builder

	tableDepth int
	rows       [][]string
	row        []string
	cell       []string

	inText    bool
	text      strings.Builder
	style     string
	level     int
	numbered  bool
	images    []string
	footnote  string
	separator bool
}

func (p *parser) parse(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			if p.inText {
				p.text.Write(t)
			}
		}
	}
}

func (p *parser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		p.text.Reset()
		p.style, p.level, p.numbered, p.images = "", 0, false, nil
	case "t":
		p.inText = true
	case "tab", "br":
		p.text.WriteByte(' ')
	case "pStyle":
		p.style = strings.ToLower(attr(t, "val"))
	case "numPr":
		p.numbered = true
	case "ilvl":
		p.level, _ = strconv.Atoi(attr(t, "val"))
	case "docPr":
		if alt := attr(t, "descr"); alt != "" {
			p.images = append(p.images, alt)
		} else {
			p.images = append(p.images, attr(t, "name"))
		}
	case "footnote":
		p.footnote = attr(t, "id")
		p.separator = attr(t, "type") != ""
	case "tbl":
		p.tableDepth++
		if p.tableDepth == 1 {
			p.rows = nil
		}
	case "tr":
		if p.tableDepth == 1 {
			p.row = nil
		}
	case "tc":
		if p.tableDepth == 1 {
			p.cell = nil
		}
	}
}

func (p *parser) end(t xml.EndElement) {
	switch t.Name.Local {
	case "t":
		p.inText = false
	case "p":
		p.paragraph()
	case "tc":
		if p.tableDepth == 1 {
			p.row = append(p.row, strings.Join(p.cell, " "))
		}
	case "tr":
		if p.tableDepth == 1 {
			p.rows = append(p.rows, p.row)
		}
	case "tbl":
		p.tableDepth--
		if p.tableDepth == 0 {
			p.b.Table(p.rows)
		}
	case "footnote":
		p.footnote, p.separator = "", false
	}
}

// paragraph emits the finished paragraph according to its style.
func (p *parser) paragraph() {
	text := p.text.String()
	if p.tableDepth > 0 {
		if strings.TrimSpace(text) != "" {
			p.cell = append(p.cell, text)
		}
		return
	}

	switch {
	case p.separator:
	case p.footnote != "":
		before := p.b.Len()
		p.b.Text(domain.BlockFootnote, text)
		if p.b.Len() > before {
			all := p.b.Blocks()
			all[len(all)-1].FootnoteRef = p.footnote
		}
	case isHeadingStyle(p.style):
		p.b.Heading(text)
	case p.style == "caption":
		p.b.Text(domain.BlockCaption, text)
	case p.numbered || strings.HasPrefix(p.style, "list"):
		p.b.ListItem(text, p.level)
	default:
		p.b.Paragraph(text)
	}

	for _, alt := range p.images {
		p.b.Image(alt)
	}
}

// isHeadingStyle recognises built-in heading styles in common localisations.
func isHeadingStyle(style string) bool {
	for _, prefix := range []string{"heading", "title", "berschrift", "titre", "titolo", "ttulo"} {
		if strings.HasPrefix(style, prefix) {
			return true
		}
	}
	return false
}

func attr(t xml.StartElement, key string) string {
	for _, a := range t.Attr {
		if a.Name.Local == key {
			return a.Value
		}
	}
	return ""
}
