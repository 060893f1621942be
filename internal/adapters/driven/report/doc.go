// Package report holds the Reporter adapters that render comparison runs.
//
// Adapters:
//   - jsonreport: the complete run as indented JSON
//   - textreport: a styled terminal summary with the findings that need review
package report
