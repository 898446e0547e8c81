package yield

import (
	"strconv"

	"cropyield/pkg/records"
)

// DefaultFields returns the canonical record keys for the source columns.
func DefaultFields() Fields {
	return Fields{
		CountryCode: "country_code",
		Crop:        "crop",
		Year:        "year",
		Value:       "value",
	}
}

// Fields names the record keys holding each source column.
type Fields struct {
	CountryCode string
	Crop        string
	Year        string
	Value       string
}

// DecodeRecords converts generic parsed records into typed Records using
// the given field mapping. Rows missing the country code, crop, or year are
// dropped and counted; a missing or unparseable value is kept with
// HasValue=false so the aggregator can drop it silently per the data
// contract.
func DecodeRecords(in []records.Record, f Fields) ([]Record, int) {
	out := make([]Record, 0, len(in))
	dropped := 0
	for _, rec := range in {
		country, okC := stringField(rec, f.CountryCode)
		crop, okK := stringField(rec, f.Crop)
		year, okY := intField(rec, f.Year)
		if !okC || !okK || !okY {
			dropped++
			continue
		}
		r := Record{
			CountryCode: country,
			Crop:        crop,
			Year:        year,
		}
		if v, ok := floatField(rec, f.Value); ok {
			r.Value = v
			r.HasValue = true
		}
		out = append(out, r)
	}
	return out, dropped
}

func stringField(r records.Record, key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func intField(r records.Record, key string) (int, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		i, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func floatField(r records.Record, key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
