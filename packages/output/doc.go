// Package output provides formatters for stored exchanges and extraction results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both implement Formatter. Console extraction output is the bare value so it
// can be used in shell pipelines.
package output
