// Package yield defines the typed tables flowing through the pipeline:
// source records, per-country mean yields, and per-class counts. All tables
// are plain value slices computed once per run and never mutated after
// return.
package yield

// UnitDivisor converts the source unit (hectograms per hectare) into tons
// per hectare.
const UnitDivisor = 10000.0

// PlaceholderContinent is the reserved continent identifier injected by the
// grid completer so that every facet of the chart has at least one
// renderable unit. The renderer maps it to a fully transparent fill and
// keeps it out of the legend.
const PlaceholderContinent = "__placeholder__"

// Record is one source row: a country's yield for one crop in one year.
// Value is in source units; HasValue is false when the source cell was
// empty or unparseable, in which case the record is dropped silently during
// aggregation.
type Record struct {
	CountryCode string
	Crop        string
	Year        int
	Value       float64
	HasValue    bool
}

// CountryYield is one row of the aggregated table: the mean yield for a
// (country, crop) pair across the selected year range, in tons per hectare.
// Continent is empty until the lookup join runs.
type CountryYield struct {
	CountryCode string
	Crop        string
	MeanYield   float64
	Continent   string
}

// ClassCount is one cell of the categorical grid: how many countries of a
// continent fall into an integer yield class for a crop. Class is
// floor(MeanYield), so class 7 covers [7, 8) t/ha.
type ClassCount struct {
	Class     int
	Crop      string
	Continent string
	Countries int
}
