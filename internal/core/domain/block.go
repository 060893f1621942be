package domain

import (
	"fmt"
	"strings"
)

// Side identifies which document of the pair a block belongs to.
type Side string

// Document sides.
const (
	// SideSource is the original-language document.
	SideSource Side = "source"

	// SideTarget is the translated document.
	SideTarget Side = "target"
)

// IsValid returns true if the side is recognised.
func (s Side) IsValid() bool {
	return s == SideSource || s == SideTarget
}

// BlockType classifies the content of a block.
type BlockType string

// Available block types.
const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockTable     BlockType = "table"
	BlockListItem  BlockType = "list_item"
	BlockImage     BlockType = "image"
	BlockCaption   BlockType = "caption"
	BlockFootnote  BlockType = "footnote"
	BlockHeader    BlockType = "header"
	BlockFooter    BlockType = "footer"
)

// IsValid returns true if the block type is recognised.
func (t BlockType) IsValid() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockTable, BlockListItem, BlockImage,
		BlockCaption, BlockFootnote, BlockHeader, BlockFooter:
		return true
	default:
		return false
	}
}

// IsProse returns true for running-text types that may be paired with each other.
// Extractors on either side do not always agree whether a line is a caption,
// a list item or a paragraph.
func (t BlockType) IsProse() bool {
	switch t {
	case BlockParagraph, BlockListItem, BlockCaption, BlockFootnote:
		return true
	default:
		return false
	}
}

// CompatibleWith reports whether blocks of the two types may be paired.
func (t BlockType) CompatibleWith(other BlockType) bool {
	if t == other {
		return true
	}
	return t.IsProse() && other.IsProse()
}

// String returns the string representation.
func (t BlockType) String() string {
	return string(t)
}

// NoPosition marks a block whose position attribute was not supplied.
const NoPosition = -1

// Block is a unit of document content on one side of the comparison.
// Blocks are produced by an extractor and never modified afterwards.
type Block struct {
	// ID is unique per side.
	ID string `json:"id" yaml:"id"`

	// Side is the document the block belongs to.
	Side Side `json:"side" yaml:"side"`

	// Page is the 1-based page number.
	Page int `json:"page" yaml:"page"`

	// Position establishes document order on its side.
	// NoPosition means the attribute was missing.
	Position int `json:"position" yaml:"position"`

	// Type classifies the block.
	Type BlockType `json:"type" yaml:"type"`

	// SectionID is the hierarchical numbering string, e.g. "4.3".
	SectionID string `json:"section_id,omitempty" yaml:"section_id,omitempty"`

	// SectionPath holds the numbering components of SectionID.
	SectionPath []string `json:"section_path,omitempty" yaml:"section_path,omitempty"`

	// Text is the block content; may be empty for non-text types.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// TableMatrix holds rows of cells for table blocks.
	TableMatrix [][]string `json:"table_matrix,omitempty" yaml:"table_matrix,omitempty"`

	// ListLevel is the nesting depth of list items.
	ListLevel int `json:"list_level,omitempty" yaml:"list_level,omitempty"`

	// FigureRef is an optional figure cross-reference.
	FigureRef string `json:"figure_ref,omitempty" yaml:"figure_ref,omitempty"`

	// FootnoteRef is an optional footnote cross-reference.
	FootnoteRef string `json:"footnote_ref,omitempty" yaml:"footnote_ref,omitempty"`
}

// Validate checks the attributes required for alignment.
// The returned error wraps ErrMalformedBlock.
func (b *Block) Validate() error {
	switch {
	case strings.TrimSpace(b.ID) == "":
		return fmt.Errorf("%w: missing id", ErrMalformedBlock)
	case b.Position < 0:
		return fmt.Errorf("%w: missing position", ErrMalformedBlock)
	case !b.Type.IsValid():
		return fmt.Errorf("%w: unknown type %q", ErrMalformedBlock, b.Type)
	case b.Page < 1:
		return fmt.Errorf("%w: invalid page %d", ErrMalformedBlock, b.Page)
	case b.ListLevel < 0:
		return fmt.Errorf("%w: negative list level", ErrMalformedBlock)
	}
	return nil
}

// Path returns the section numbering components of the block.
func (b *Block) Path() []string {
	if len(b.SectionPath) > 0 {
		return b.SectionPath
	}
	return SplitSectionID(b.SectionID)
}

// ComparableText returns the text used for similarity and scoring.
func (b *Block) ComparableText() string {
	if b.Text != "" {
		return b.Text
	}
	switch b.Type {
	case BlockTable:
		rows := make([]string, 0, len(b.TableMatrix))
		for _, row := range b.TableMatrix {
			rows = append(rows, strings.Join(row, " "))
		}
		return strings.Join(rows, "\n")
	case BlockImage:
		return b.FigureRef
	}
	return ""
}

// SplitSectionID splits a numbering string such as "4.3.1" into components.
// Empty components are dropped.
func SplitSectionID(id string) []string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	parts := strings.Split(id, ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasPathPrefix reports whether prefix is a component-wise prefix of path.
func HasPathPrefix(path, prefix []string) bool {
	if len(prefix) == 0 || len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
