// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Metric: Scores a source/target text pair
//   - BlockExtractor: Turns a document file into blocks
//   - ExtractorRegistry: Selects the appropriate extractor
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run persistence. Without it, runs are not saved.
//   - SeverityClassifier: Without it, correspondences carry no severity.
//   - Reporter: Only the CLI renders runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
