package extractors

import (
	"github.com/custodia-labs/parity-cli/internal/extractors/blockfile"
	"github.com/custodia-labs/parity-cli/internal/extractors/docx"
	"github.com/custodia-labs/parity-cli/internal/extractors/html"
	"github.com/custodia-labs/parity-cli/internal/extractors/markdown"
	"github.com/custodia-labs/parity-cli/internal/extractors/pdf"
	"github.com/custodia-labs/parity-cli/internal/extractors/plaintext"
)

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(blockfile.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
}
