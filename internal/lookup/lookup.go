// Package lookup provides the country-code to continent reference table
// used to join aggregated yields onto continents. The table can be loaded
// from any CSV with country_code and continent columns; a compiled-in
// default covering the common ISO3 codes is used when no external table is
// configured.
package lookup

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	csvparser "cropyield/internal/parser/csv"
)

//go:embed continents.csv
var defaultTable []byte

// Table maps an ISO3 country code to its continent name.
type Table map[string]string

// Continent returns the continent for code, and whether the code is known.
func (t Table) Continent(code string) (string, bool) {
	c, ok := t[code]
	return c, ok
}

// FromCSV reads a reference table from CSV input. The file must carry a
// header row with country_code and continent columns (any additional
// columns are ignored). Rows missing either value are skipped.
func FromCSV(r io.Reader) (Table, error) {
	p := csvparser.NewParser(csvparser.Options{
		HasHeader: true,
		TrimSpace: true,
	})
	recs, _, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse lookup csv: %w", err)
	}
	t := make(Table, len(recs))
	for _, rec := range recs {
		code, okC := rec["country_code"].(string)
		cont, okN := rec["continent"].(string)
		if !okC || !okN || code == "" || cont == "" {
			continue
		}
		t[code] = cont
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("lookup csv has no usable rows")
	}
	return t, nil
}

// Default returns the compiled-in reference table.
func Default() Table {
	t, err := FromCSV(bytes.NewReader(defaultTable))
	if err != nil {
		// The embedded table is validated by tests; a decode failure here
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("lookup: embedded table: %v", err))
	}
	return t
}
