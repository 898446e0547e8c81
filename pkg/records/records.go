// Package records defines the generic row representation exchanged between
// the parser and the transformer chain. A Record is intentionally untyped:
// the parser produces raw string values, transformers normalize and coerce
// them, and the domain layer decodes the result into typed rows.
package records

// Record is a single parsed row keyed by canonical column name.
// A nil value marks an absent or empty cell.
type Record map[string]any
