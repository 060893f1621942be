package pdf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

func body(text string, y float64) Line {
	return Line{Text: text, X: 72, Y: y, Size: 10}
}

func TestLayout_Page(t *testing.T) {
	pages := []Page{{
		Number: 3,
		Height: 800,
		Lines: []Line{
			{Text: "Operator manual", X: 72, Y: 790, Size: 8},
			{Text: "4.3 Pressure check", X: 72, Y: 700, Size: 14, Bold: true},
			body("The pressure must be checked", 680),
			body("every day before start-up.", 668),
			body("A second paragraph starts here.", 640),
			body("• Close the valve", 620),
			{Text: "Table 2 Intervals", X: 72, Y: 600, Size: 9},
			{Text: "1 Only when the pump is cold.", X: 72, Y: 100, Size: 7},
			{Text: "Page 3", X: 300, Y: 20, Size: 8},
		},
	}}

	got := Layout(pages, domain.SideSource)
	require.Len(t, got, 8)

	types := make([]domain.BlockType, len(got))
	for i, b := range got {
		types[i] = b.Type
		assert.Equal(t, 3, b.Page)
		assert.Equal(t, i, b.Position)
	}
	assert.Equal(t, []domain.BlockType{
		domain.BlockHeader,
		domain.BlockHeading,
		domain.BlockParagraph,
		domain.BlockParagraph,
		domain.BlockListItem,
		domain.BlockCaption,
		domain.BlockFootnote,
		domain.BlockFooter,
	}, types)

	assert.Equal(t, "4.3", got[1].SectionID)
	assert.Equal(t, "The pressure must be checked every day before start-up.", got[2].Text)
	assert.Equal(t, "4.3", got[2].SectionID)
	assert.Equal(t, "Close the valve", got[4].Text)
}

func TestLayout_ReadingOrder(t *testing.T) {
	pages := []Page{{
		Number: 1,
		Height: 800,
		Lines: []Line{
			body("second", 500),
			body("first", 600),
		},
	}}

	got := Layout(pages, domain.SideTarget)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "t1", got[1].ID)
}

func TestLayout_SectionCarriesAcrossPages(t *testing.T) {
	pages := []Page{
		{Number: 1, Height: 800, Lines: []Line{
			{Text: "5 Safety", X: 72, Y: 700, Size: 16},
			body("Wear gloves.", 650),
		}},
		{Number: 2, Height: 800, Lines: []Line{
			body("Keep the area clear.", 700),
		}},
	}

	got := Layout(pages, domain.SideSource)
	require.Len(t, got, 3)
	assert.Equal(t, "5", got[2].SectionID)
	assert.Equal(t, 2, got[2].Page)
}

func TestClassify_UnnumberedBoldLineIsProse(t *testing.T) {
	l := Line{Text: "Important", Y: 400, Size: 10, Bold: true}
	assert.Equal(t, domain.BlockParagraph, classify(&l, 800, 10))
}

func TestBodySize(t *testing.T) {
	pages := []Page{{Lines: []Line{
		{Text: "a long body line of text", Size: 10.1},
		{Text: "Title", Size: 18},
	}}}
	assert.Equal(t, 10.0, bodySize(pages))
	assert.Zero(t, bodySize(nil))
}

func TestExtract_NotAPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), domain.SideSource)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
