package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"cropyield/pkg/records"
)

// DeDup collapses records that share a business key, e.g. duplicated
// (country_code, crop, year) rows from a re-exported source file.
//
// Policies:
//
//   - "keep-first": keep the earliest occurrence in the batch
//   - "keep-last":  keep the latest occurrence (default)
//
// Keys are hashed with xxh3 so the winner map stores a uint64 per key
// instead of the concatenated field values. Records missing any key field
// are passed through unchanged.
type DeDup struct {
	// Keys are the field names that form the business key.
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Apply returns a new slice containing only the winning record for each key,
// in original input order, followed by pass-through records that could not
// be keyed.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok || v == nil {
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f') // unlikely separator
			}
			switch t := v.(type) {
			case string:
				b.WriteString(t)
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
		return xxh3.HashString(b.String()), true
	}

	winners := make(map[uint64]int, len(in)) // key hash -> input index
	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		if policy == "keep-first" {
			if _, exists := winners[key]; exists {
				continue
			}
		}
		winners[key] = i
	}

	indexes := make([]int, 0, len(winners))
	for _, idx := range winners {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(winners))
	for _, idx := range indexes {
		out = append(out, in[idx])
	}
	for _, r := range in {
		if _, ok := keyOf(r); !ok {
			out = append(out, r)
		}
	}
	return out
}
