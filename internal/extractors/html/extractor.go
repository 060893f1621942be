// Package html extracts blocks from HTML documents by walking the parsed DOM.
package html

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/extractors/blocks"
)

// Name is the format name of the extractor.
const Name = "html"

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads an HTML file into blocks.
func (e *Extractor) Extract(_ context.Context, path string, side domain.Side) ([]domain.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, side)
}

// Parse converts an HTML document into blocks for side.
func Parse(r io.Reader, side domain.Side) ([]domain.Block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	b := blocks.NewBuilder(side, blocks.Prefix(side))
	walk(doc, b)
	return b.Blocks(), nil
}

var hiddenStyle = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)

// skipped reports whether a subtree carries no document content.
func skipped(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Template:
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "hidden" || a.Key == "style" && hiddenStyle.MatchString(a.Val) {
			return true
		}
	}
	return false
}

// walk emits blocks for the subtree rooted at n in document order.
func walk(n *html.Node, b *blocks.Builder) {
	if skipped(n) {
		return
	}

	switch n.Type {
	case html.TextNode:
		// Loose text directly inside a container.
		b.Paragraph(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, b)
		}
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.Heading(text(n))
		return
	case atom.P:
		paragraph(n, b)
		return
	case atom.Ul, atom.Ol:
		list(n, b, 0)
		return
	case atom.Table:
		table(n, b)
		return
	case atom.Img:
		b.Image(attr(n, "alt"))
		return
	case atom.Figcaption:
		b.Text(domain.BlockCaption, text(n))
		return
	case atom.Header:
		b.Text(domain.BlockHeader, text(n))
		return
	case atom.Footer:
		b.Text(domain.BlockFooter, text(n))
		return
	case atom.Aside:
		if isFootnote(n) {
			b.Text(domain.BlockFootnote, text(n))
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
}

// paragraph emits a paragraph, or an image when the paragraph only wraps one.
func paragraph(n *html.Node, b *blocks.Builder) {
	if t := text(n); t != "" {
		b.Paragraph(t)
		return
	}
	for _, img := range findAll(n, atom.Img) {
		b.Image(attr(img, "alt"))
	}
}

// list emits one list item per li, descending into nested lists.
func list(n *html.Node, b *blocks.Builder, level int) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		b.ListItem(ownText(li), level)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				list(c, b, level+1)
			}
		}
	}
}

// table emits the caption, if any, followed by the cell matrix.
func table(n *html.Node, b *blocks.Builder) {
	for _, c := range findAll(n, atom.Caption) {
		b.Text(domain.BlockCaption, text(c))
	}

	var rows [][]string
	for _, tr := range findAll(n, atom.Tr) {
		var row []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				row = append(row, text(c))
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	b.Table(rows)
}

// isFootnote reports whether an aside holds a footnote.
func isFootnote(n *html.Node) bool {
	class := attr(n, "class") + " " + attr(n, "role")
	return strings.Contains(class, "footnote") || strings.Contains(class, "doc-endnote")
}

// text collects the visible text of a subtree.
func text(n *html.Node) string {
	var sb strings.Builder
	collect(n, &sb, true)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ownText collects the text of a list item without its nested lists.
func ownText(n *html.Node) string {
	var sb strings.Builder
	collect(n, &sb, false)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collect(n *html.Node, sb *strings.Builder, nested bool) {
	if skipped(n) {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Ul, atom.Ol:
			if !nested {
				return
			}
		case atom.Br, atom.Td, atom.Th, atom.Li:
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb, nested)
	}
}

// findAll returns the descendants of n with the given tag, in document order.
// Nested tables are not searched.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(m *html.Node) {
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == tag {
				out = append(out, c)
				continue
			}
			if c.DataAtom == atom.Table {
				continue
			}
			visit(c)
		}
	}
	visit(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
