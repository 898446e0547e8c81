// Package parser defines the interface turning a raw byte stream into
// generic records.
package parser

import (
	"io"

	"cropyield/pkg/records"
)

// Parser consumes a byte stream and returns the parsed rows plus the number
// of rows that were soft-skipped (malformed, wrong width).
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
