package config

import (
	"encoding/json"
	"testing"
)

const samplePipeline = `{
  "job": "yields",
  "source": { "kind": "file", "file": { "path": "testdata/yields.csv" } },
  "lookup": {},
  "parser": {
    "kind": "csv",
    "options": {
      "has_header": true,
      "trim_space": true,
      "header_map": { "Area Code (ISO3)": "country_code", "Item": "crop" }
    }
  },
  "transform": [
    { "kind": "normalize" },
    { "kind": "require", "options": { "fields": ["country_code", "crop", "year"] } },
    { "kind": "dedupe", "options": { "keys": ["country_code", "crop", "year"], "policy": "keep-last" } }
  ],
  "aggregate": { "years": { "from": 2010, "to": 2016 } },
  "complete": { "ceiling": { "Wheat": 9 } },
  "render": {
    "out": "yields.png",
    "row_width": 4,
    "cell_inches": 1.5,
    "colors": { "Europe": "#CC79A7" }
  }
}`

func TestDecodePipeline(t *testing.T) {
	var p Pipeline
	if err := json.Unmarshal([]byte(samplePipeline), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if p.Job != "yields" {
		t.Errorf("job=%q", p.Job)
	}
	if p.Source.Kind != "file" || p.Source.File.Path != "testdata/yields.csv" {
		t.Errorf("source=%+v", p.Source)
	}
	if p.Lookup.Kind != "" {
		t.Errorf("lookup.kind=%q; want empty (embedded table)", p.Lookup.Kind)
	}
	if !p.Parser.Options.Bool("has_header", false) {
		t.Error("parser has_header not decoded")
	}
	if got := p.Parser.Options.StringMap("header_map")["Item"]; got != "crop" {
		t.Errorf("header_map[Item]=%q", got)
	}
	if len(p.Transform) != 3 || p.Transform[2].Kind != "dedupe" {
		t.Errorf("transform=%+v", p.Transform)
	}
	if got := p.Transform[1].Options.StringSlice("fields"); len(got) != 3 || got[0] != "country_code" {
		t.Errorf("require fields=%v", got)
	}
	if p.Aggregate.Years != (YearSpan{From: 2010, To: 2016}) {
		t.Errorf("years=%+v", p.Aggregate.Years)
	}
	if p.Complete.Ceiling["Wheat"] != 9 {
		t.Errorf("ceiling=%v", p.Complete.Ceiling)
	}
	if p.Render.CellInches != 1.5 || p.Render.Colors["Europe"] != "#CC79A7" {
		t.Errorf("render=%+v", p.Render)
	}
}

func TestOptionsTypedAccess(t *testing.T) {
	o := Options{
		"s":     "str",
		"b":     true,
		"n":     float64(7), // JSON numbers decode as float64
		"comma": ";",
		"m":     map[string]any{"a": "1", "skip": 2},
		"list":  []any{"x", "y", 3},
	}

	if got := o.String("s", "def"); got != "str" {
		t.Errorf("String=%q", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Errorf("String default=%q", got)
	}
	if !o.Bool("b", false) || o.Bool("missing", false) {
		t.Error("Bool")
	}
	if got := o.Int("n", 0); got != 7 {
		t.Errorf("Int=%d", got)
	}
	if got := o.Int("s", 9); got != 9 {
		t.Errorf("Int wrong-type default=%d", got)
	}
	if got := o.Rune("comma", ','); got != ';' {
		t.Errorf("Rune=%q", got)
	}
	if got := o.Rune("missing", ','); got != ',' {
		t.Errorf("Rune default=%q", got)
	}
	m := o.StringMap("m")
	if m["a"] != "1" {
		t.Errorf("StringMap=%v", m)
	}
	if _, ok := m["skip"]; ok {
		t.Error("StringMap kept non-string value")
	}
	if got := o.StringSlice("list"); len(got) != 2 || got[1] != "y" {
		t.Errorf("StringSlice=%v", got)
	}
}

func TestOptionsNullDecodesEmpty(t *testing.T) {
	var p Parser
	if err := json.Unmarshal([]byte(`{"kind":"csv","options":null}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Options == nil {
		t.Fatal("options=nil; want empty map")
	}
	if got := p.Options.String("x", "def"); got != "def" {
		t.Fatalf("String on empty options=%q", got)
	}
}
