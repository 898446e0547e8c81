package builtin

import (
	"strconv"

	"cropyield/pkg/records"
)

// Coerce converts string values in place to typed values per field.
// Unparseable values are left as strings for the decoder to reject.
type Coerce struct {
	Types map[string]string // field -> one of: int, float, bool, string
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int":
				if i, err := strconv.Atoi(s); err == nil {
					r[field] = i
				}
			case "float":
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					r[field] = f
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				}
			case "string":
				// already string
			}
		}
	}
	return in
}
