// Package domain defines the core business entities for Parity.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Block: A unit of content from the source or target document
//   - Correspondence: The pairing (or failed pairing) of two blocks
//   - DocumentSummary: The length-weighted rollup and quality index
//   - CompareSettings: The validated configuration of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
