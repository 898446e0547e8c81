package builtin

import (
	"reflect"
	"testing"

	"cropyield/internal/transformer"
	"cropyield/pkg/records"
)

func TestRequireFiltersMissingFields(t *testing.T) {
	in := []records.Record{
		{"country_code": "FRA", "value": "70000"},
		{"country_code": "DEU"},              // missing value
		{"country_code": nil, "value": "1"},  // nil counts as missing
		{"country_code": "", "value": "2"},   // empty counts as missing
		{"country_code": "ITA", "value": "3"},
	}
	out := Require{Fields: []string{"country_code", "value"}}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len=%d; want 2", len(out))
	}
	if out[0]["country_code"] != "FRA" || out[1]["country_code"] != "ITA" {
		t.Fatalf("out=%v", out)
	}
}

func TestCoerceTypes(t *testing.T) {
	in := []records.Record{{
		"year":  "2019",
		"value": "70000.5",
		"flag":  "true",
		"name":  "Wheat",
		"bad":   "not-a-number",
	}}
	out := Coerce{Types: map[string]string{
		"year":  "int",
		"value": "float",
		"flag":  "bool",
		"name":  "string",
		"bad":   "int",
	}}.Apply(in)

	r := out[0]
	if r["year"] != 2019 {
		t.Errorf("year=%v (%T); want int 2019", r["year"], r["year"])
	}
	if r["value"] != 70000.5 {
		t.Errorf("value=%v; want 70000.5", r["value"])
	}
	if r["flag"] != true {
		t.Errorf("flag=%v; want true", r["flag"])
	}
	if r["name"] != "Wheat" {
		t.Errorf("name=%v; want Wheat", r["name"])
	}
	// Unparseable values stay as strings for downstream rejection.
	if r["bad"] != "not-a-number" {
		t.Errorf("bad=%v; want original string", r["bad"])
	}
}

func TestNormalize(t *testing.T) {
	in := []records.Record{{
		"a": "  Wheat  ",
		"b": " 7.2 ", // non-breaking spaces
		"c": "   ",
		"d": 42,
	}}
	out := Normalize{}.Apply(in)
	r := out[0]
	if r["a"] != "Wheat" {
		t.Errorf("a=%q", r["a"])
	}
	if r["b"] != "7.2" {
		t.Errorf("b=%q", r["b"])
	}
	if r["c"] != nil {
		t.Errorf("c=%v; want nil", r["c"])
	}
	if r["d"] != 42 {
		t.Errorf("d=%v; non-strings must pass through", r["d"])
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		{"country_code": "FRA", "year": "2019", "value": "1"},
		{"country_code": "DEU", "year": "2019", "value": "2"},
		{"country_code": "FRA", "year": "2019", "value": "3"}, // duplicate key
	}
	out := DeDup{Keys: []string{"country_code", "year"}}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len=%d; want 2", len(out))
	}
	// keep-last is the default policy; the winner sits at the later index.
	if out[0]["value"] != "2" || out[1]["value"] != "3" {
		t.Fatalf("out=%v", out)
	}
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		{"k": "a", "value": "1"},
		{"k": "a", "value": "2"},
		{"k": "b", "value": "3"},
	}
	out := DeDup{Keys: []string{"k"}, Policy: "keep-first"}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len=%d; want 2", len(out))
	}
	if out[0]["value"] != "1" || out[1]["value"] != "3" {
		t.Fatalf("out=%v", out)
	}
}

func TestDeDupPassesThroughUnkeyedRows(t *testing.T) {
	in := []records.Record{
		{"k": "a", "value": "1"},
		{"value": "no-key"},
	}
	out := DeDup{Keys: []string{"k"}}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len=%d; want 2", len(out))
	}
	if out[1]["value"] != "no-key" {
		t.Fatalf("out=%v", out)
	}
}

func TestChainOrder(t *testing.T) {
	in := []records.Record{
		{"year": " 2019 ", "value": "1"},
		{"value": "2"}, // dropped by Require
	}
	chain := transformer.Chain{
		Normalize{},
		Require{Fields: []string{"year"}},
		Coerce{Types: map[string]string{"year": "int"}},
	}
	out := chain.Apply(in)
	want := []records.Record{{"year": 2019, "value": "1"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("out=%v; want %v", out, want)
	}
}
