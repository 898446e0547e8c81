// Package config defines the canonical, JSON-serializable configuration
// model for the yield pipeline. It is intentionally small, explicit, and
// dependency-free so that pipeline files can be loaded from disk and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of pipeline
//     files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "source":  { "kind": "file", "file": { "path": "testdata/yields.csv" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true } },
//	  "transform": [
//	    { "kind": "require", "options": { "fields": ["country_code","crop","year"] } }
//	  ],
//	  "aggregate": { "years": { "from": 2010, "to": 2016 } },
//	  "render":  { "out": "yields.png", "row_width": 4 }
//	}
package config

import "encoding/json"

// Pipeline describes the full run in JSON. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logging and metrics grouping.
	Job string `json:"job"`

	// Source describes where the yield dataset comes from.
	Source Source `json:"source"`

	// Lookup describes where the country-to-continent table comes from.
	// An empty kind selects the compiled-in default table.
	Lookup Source `json:"lookup"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Transform lists the ordered transformations applied to parsed
	// records before domain decoding. Each transform has a kind and an
	// options bag whose shape is defined by the transform implementation.
	Transform []Transform `json:"transform"`

	// Aggregate configures the mean-yield computation.
	Aggregate Aggregate `json:"aggregate"`

	// Complete configures the grid-completion stage.
	Complete Complete `json:"complete"`

	// Render configures the chart output.
	Render Render `json:"render"`
}

// Source identifies a data source. Kinds: "file", "http". An empty kind is
// only valid for the lookup source, where it means "use the embedded table".
type Source struct {
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind. The fetch is a
// single attempt; there is no retry policy anywhere in the pipeline.
type SourceHTTP struct {
	URL                string            `json:"url"`
	TimeoutSeconds     int               `json:"timeout_seconds"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
	Headers            map[string]string `json:"headers"`
}

// Parser selects how to parse the raw source into rows. Current kind: "csv".
type Parser struct {
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys: has_header (bool), comma (string), trim_space
	// (bool), expected_fields (int), header_map (object), charset (string).
	Options Options `json:"options"`
}

// Transform defines a single transformation step. Kinds: "normalize",
// "require", "coerce", "dedupe".
type Transform struct {
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Aggregate configures the mean-yield stage.
type Aggregate struct {
	// Years bounds the averaged year range (closed interval); zero values
	// leave a side unbounded.
	Years YearSpan `json:"years"`

	// Fields overrides the canonical record keys for the source columns.
	// Empty fields keep the defaults (country_code, crop, year, value).
	Fields FieldSpec `json:"fields"`
}

// YearSpan is a closed interval of years.
type YearSpan struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// FieldSpec names the record keys holding each source column.
type FieldSpec struct {
	CountryCode string `json:"country_code"`
	Crop        string `json:"crop"`
	Year        string `json:"year"`
	Value       string `json:"value"`
}

// Complete configures the grid-completion stage.
type Complete struct {
	// Ceiling discards yield classes above the given per-crop maximum
	// before completion, e.g. {"Wheat": 9}.
	Ceiling map[string]int `json:"ceiling"`
}

// Render configures the chart output.
type Render struct {
	// Out is the PNG path to write.
	Out string `json:"out"`

	// RowWidth is the number of unit squares per row within a facet.
	RowWidth int `json:"row_width"`

	// CellInches is the edge length of one facet in inches.
	CellInches float64 `json:"cell_inches"`

	// Colors maps continent names to "#RRGGBB" fills. Continents without
	// an entry use the built-in palette.
	Colors map[string]string `json:"colors"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns provided defaults when a key is absent
// or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a
// string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so this accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map, removing the
// need to nil-check at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
