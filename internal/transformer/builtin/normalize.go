package builtin

import (
	"strings"

	"cropyield/pkg/records"
)

// Normalize trims surrounding whitespace from string values and collapses
// non-breaking spaces, which show up in statistical exports that went
// through spreadsheet tooling.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
				if s == "" {
					r[k] = nil
				} else {
					r[k] = s
				}
			}
		}
	}
	return in
}
