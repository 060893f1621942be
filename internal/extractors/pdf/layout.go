package pdf

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/extractors/blocks"
)

// Line is one row of text on a page. Y grows upwards.
type Line struct {
	Text string
	X    float64
	Y    float64
	Size float64
	Bold bool
}

// Page holds the text lines of one page.
type Page struct {
	Number int
	Height float64
	Lines  []Line
}

// Layout thresholds, relative to the body font size or page height.
const (
	headingScale  = 1.15
	footnoteScale = 0.85
	marginShare   = 0.06
	lineGapScale  = 1.7
	maxHeadingLen = 120
)

var (
	bulletLine  = regexp.MustCompile(`^(?:[•▪◦‣·–-]|\(?[a-z0-9]\))\s+(.*)$`)
	captionLine = regexp.MustCompile(`(?i)^(?:figure|fig\.|table|abbildung|abb\.|tabelle|tableau|figura|tabla)\s*\d+`)
	footnoteRef = regexp.MustCompile(`^(\d{1,3}|[*†‡])\s+\S`)
)

// Layout turns page lines into blocks for side.
func Layout(pages []Page, side domain.Side) []domain.Block {
	body := bodySize(pages)
	b := blocks.NewBuilder(side, blocks.Prefix(side))

	for _, p := range pages {
		b.SetPage(p.Number)

		lines := append([]Line(nil), p.Lines...)
		sort.SliceStable(lines, func(i, j int) bool {
			if abs(lines[i].Y-lines[j].Y) < 2 {
				return lines[i].X < lines[j].X
			}
			return lines[i].Y > lines[j].Y
		})

		var para []string
		var prev *Line
		flush := func() {
			if len(para) > 0 {
				b.Paragraph(strings.Join(para, " "))
				para = nil
			}
		}

		for i := range lines {
			l := &lines[i]
			switch kind := classify(l, p.Height, body); kind {
			case domain.BlockParagraph:
				if prev != nil && prev.Y-l.Y > lineGapScale*max(l.Size, 1) {
					flush()
				}
				para = append(para, l.Text)
				prev = l
				continue
			case domain.BlockListItem:
				flush()
				m := bulletLine.FindStringSubmatch(l.Text)
				b.ListItem(m[1], 0)
			case domain.BlockHeading:
				flush()
				b.Heading(l.Text)
			default:
				flush()
				b.Text(kind, l.Text)
			}
			prev = nil
		}
		flush()
	}
	return b.Blocks()
}

// classify decides the block type of a single line.
func classify(l *Line, height, body float64) domain.BlockType {
	if height <= 0 {
		height = defaultPageHeight
	}
	switch {
	case l.Y > height*(1-marginShare):
		return domain.BlockHeader
	case l.Y < height*marginShare:
		return domain.BlockFooter
	case isHeading(l, body):
		return domain.BlockHeading
	case captionLine.MatchString(l.Text):
		return domain.BlockCaption
	case body > 0 && l.Size < body*footnoteScale && footnoteRef.MatchString(l.Text):
		return domain.BlockFootnote
	case bulletLine.MatchString(l.Text):
		return domain.BlockListItem
	}
	return domain.BlockParagraph
}

func isHeading(l *Line, body float64) bool {
	if len(l.Text) > maxHeadingLen {
		return false
	}
	larger := body > 0 && l.Size >= body*headingScale
	number, _ := blocks.SplitHeading(l.Text)
	if number != "" {
		return larger || l.Bold
	}
	return larger && body > 0 && l.Size >= body*1.4
}

// bodySize returns the most common font size, rounded to half points.
func bodySize(pages []Page) float64 {
	counts := make(map[float64]int)
	for _, p := range pages {
		for _, l := range p.Lines {
			counts[float64(int(l.Size*2+0.5))/2] += len(l.Text)
		}
	}
	var best float64
	var bestN int
	for size, n := range counts {
		if n > bestN || n == bestN && size < best {
			best, bestN = size, n
		}
	}
	return best
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
