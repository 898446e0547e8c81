// Package aggregate turns source yield records into the per-country and
// per-class tables consumed by the grid completer and the renderer. All
// functions are pure: they take and return value slices with deterministic
// (sorted) order and do not mutate their inputs.
package aggregate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"cropyield/internal/lookup"
	"cropyield/internal/yield"
)

// YearRange is a closed interval of years. A zero From or To leaves that
// side unbounded.
type YearRange struct {
	From int
	To   int
}

func (r YearRange) contains(year int) bool {
	if r.From != 0 && year < r.From {
		return false
	}
	if r.To != 0 && year > r.To {
		return false
	}
	return true
}

type groupKey struct {
	country string
	crop    string
}

// MeanYields averages source values per (country, crop) across the year
// range and converts the result to tons per hectare. Records with a missing
// value or outside the range are dropped silently; a group with no
// surviving records is absent from the output rather than reported as zero.
func MeanYields(recs []yield.Record, years YearRange) []yield.CountryYield {
	groups := make(map[groupKey][]float64)
	for _, r := range recs {
		if !r.HasValue || !years.contains(r.Year) {
			continue
		}
		k := groupKey{country: r.CountryCode, crop: r.Crop}
		groups[k] = append(groups[k], r.Value)
	}

	out := make([]yield.CountryYield, 0, len(groups))
	for k, values := range groups {
		mean, err := stats.Mean(values)
		if err != nil {
			// Mean only fails on an empty input; groups are never empty.
			continue
		}
		out = append(out, yield.CountryYield{
			CountryCode: k.country,
			Crop:        k.crop,
			MeanYield:   mean / yield.UnitDivisor,
		})
	}
	sortCountryYields(out)
	return out
}

// AttachContinent joins each country yield to its continent via the lookup
// table. Countries absent from the table are dropped silently, so every row
// of the result carries a non-empty continent.
func AttachContinent(in []yield.CountryYield, t lookup.Table) []yield.CountryYield {
	out := make([]yield.CountryYield, 0, len(in))
	for _, cy := range in {
		continent, ok := t.Continent(cy.CountryCode)
		if !ok {
			continue
		}
		cy.Continent = continent
		out = append(out, cy)
	}
	return out
}

// BucketAndCount floors each mean yield into an integer class and counts
// countries per (class, crop, continent). Classes with no members are
// absent at this stage; the grid completer fills them in.
func BucketAndCount(in []yield.CountryYield) []yield.ClassCount {
	type cellKey struct {
		class     int
		crop      string
		continent string
	}
	counts := make(map[cellKey]int)
	for _, cy := range in {
		k := cellKey{
			class:     int(math.Floor(cy.MeanYield)),
			crop:      cy.Crop,
			continent: cy.Continent,
		}
		counts[k]++
	}

	out := make([]yield.ClassCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, yield.ClassCount{
			Class:     k.class,
			Crop:      k.crop,
			Continent: k.continent,
			Countries: n,
		})
	}
	SortClassCounts(out)
	return out
}

func sortCountryYields(s []yield.CountryYield) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Crop != s[j].Crop {
			return s[i].Crop < s[j].Crop
		}
		return s[i].CountryCode < s[j].CountryCode
	})
}

// SortClassCounts orders a class table by (crop, class, continent) for
// deterministic output across runs.
func SortClassCounts(s []yield.ClassCount) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Crop != s[j].Crop {
			return s[i].Crop < s[j].Crop
		}
		if s[i].Class != s[j].Class {
			return s[i].Class < s[j].Class
		}
		return s[i].Continent < s[j].Continent
	})
}
