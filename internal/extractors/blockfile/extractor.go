// Package blockfile reads blocks that were extracted elsewhere and saved as
// JSON or YAML, either as a plain list, as {"blocks": [...]}, or as a pair
// file {"source": [...], "target": [...]}.
package blockfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Name is the format name of the extractor.
const Name = "blocks"

// Ensure Extractor implements the interface.
var _ driven.BlockExtractor = (*Extractor)(nil)

// Extractor reads canonical block files.
type Extractor struct{}

// New creates a new block file extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return Name
}

// Extensions returns the file extensions handled.
func (e *Extractor) Extensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 100 // Already structured, nothing to infer
}

// rawBlock mirrors domain.Block with optional numeric fields, so an absent
// position can be told apart from position 0.
type rawBlock struct {
	ID          string     `json:"id" yaml:"id"`
	Side        string     `json:"side" yaml:"side"`
	Page        *int       `json:"page" yaml:"page"`
	Position    *int       `json:"position" yaml:"position"`
	Type        string     `json:"type" yaml:"type"`
	SectionID   string     `json:"section_id" yaml:"section_id"`
	SectionPath []string   `json:"section_path" yaml:"section_path"`
	Text        string     `json:"text" yaml:"text"`
	TableMatrix [][]string `json:"table_matrix" yaml:"table_matrix"`
	ListLevel   int        `json:"list_level" yaml:"list_level"`
	FigureRef   string     `json:"figure_ref" yaml:"figure_ref"`
	FootnoteRef string     `json:"footnote_ref" yaml:"footnote_ref"`
}

type rawFile struct {
	Blocks []rawBlock `json:"blocks" yaml:"blocks"`
	Source []rawBlock `json:"source" yaml:"source"`
	Target []rawBlock `json:"target" yaml:"target"`
}

// Extract reads the blocks for side from path.
// Blocks are returned as stored; malformed ones are left for the engine to report.
func (e *Extractor) Extract(_ context.Context, path string, side domain.Side) ([]domain.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := decode(data, strings.ToLower(filepath.Ext(path)) == ".json", side)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filepath.Base(path), err)
	}

	out := make([]domain.Block, len(raw))
	for i, r := range raw {
		out[i] = r.toBlock(side)
	}
	return out, nil
}

// Parse decodes block file content without touching the filesystem.
func Parse(data []byte, isJSON bool, side domain.Side) ([]domain.Block, error) {
	raw, err := decode(data, isJSON, side)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	out := make([]domain.Block, len(raw))
	for i, r := range raw {
		out[i] = r.toBlock(side)
	}
	return out, nil
}

func decode(data []byte, isJSON bool, side domain.Side) ([]rawBlock, error) {
	unmarshal := yaml.Unmarshal
	if isJSON {
		unmarshal = json.Unmarshal
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if isJSON && trimmed[0] == '[' || !isJSON && (trimmed[0] == '-' || trimmed[0] == '[') {
		var list []rawBlock
		if err := unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var file rawFile
	if err := unmarshal(trimmed, &file); err != nil {
		return nil, err
	}
	switch {
	case side == domain.SideSource && file.Source != nil:
		return file.Source, nil
	case side == domain.SideTarget && file.Target != nil:
		return file.Target, nil
	default:
		return file.Blocks, nil
	}
}

func (r rawBlock) toBlock(side domain.Side) domain.Block {
	b := domain.Block{
		ID:          r.ID,
		Side:        domain.Side(r.Side),
		Page:        1,
		Position:    domain.NoPosition,
		Type:        domain.BlockType(r.Type),
		SectionID:   r.SectionID,
		SectionPath: r.SectionPath,
		Text:        r.Text,
		TableMatrix: r.TableMatrix,
		ListLevel:   r.ListLevel,
		FigureRef:   r.FigureRef,
		FootnoteRef: r.FootnoteRef,
	}
	if b.Side == "" {
		b.Side = side
	}
	if r.Page != nil {
		b.Page = *r.Page
	}
	if r.Position != nil {
		b.Position = *r.Position
	}
	return b
}
