// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ComparisonService runs the pipeline: settings validation, alignment,
// missing/extra detection, table diffing, scoring, severity and aggregation.
// RunService and SettingsService manage what the pipeline stores and reads.
package services
