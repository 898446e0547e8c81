// Package complete expands a sparse class-count table so that every facet
// of the rendered chart has at least one plottable unit.
//
// The renderer lays out one facet per (crop, yield class) pair and fails
// hard on a facet with a total count of zero. Real data has structural
// holes (a crop with no countries in the highest classes), so completion
// guarantees non-emptiness without polluting the visible categories: real
// continents missing from a cell are filled with zero, and a reserved
// placeholder continent contributes one invisible unit wherever it is not
// already present.
//
// The two expansion passes are strictly ordered. The real-continent cross
// product must be computed before the placeholder exists as a category;
// collapsing both passes into one would force the placeholder into every
// real combination and corrupt the fill values.
package complete

import (
	"cropyield/internal/aggregate"
	"cropyield/internal/yield"
)

// Options controls optional data cleaning ahead of completion.
type Options struct {
	// Ceiling, when set, discards rows whose class exceeds the crop's
	// ceiling. Crops without an entry keep all classes. This is a
	// data-cleaning step for outlier buckets, not part of the structural
	// fill.
	Ceiling map[string]int
}

type cell struct {
	class     int
	crop      string
	continent string
}

// Grid returns the completed table. For every (crop, class) pair present in
// the result, the counts across all continents (real plus placeholder) sum
// to at least one. Completing an already complete table returns it
// unchanged: existing counts are never overwritten and the placeholder is
// seeded only when absent.
func Grid(in []yield.ClassCount, opt Options) []yield.ClassCount {
	// Pass 0: optional outlier ceiling per crop.
	rows := make([]yield.ClassCount, 0, len(in))
	for _, cc := range in {
		if opt.Ceiling != nil {
			if max, ok := opt.Ceiling[cc.Crop]; ok && cc.Class > max {
				continue
			}
		}
		rows = append(rows, cc)
	}

	table := make(map[cell]int, len(rows))
	classSet := make(map[int]struct{})
	cropSet := make(map[string]struct{})
	continentSet := make(map[string]struct{})
	for _, cc := range rows {
		table[cell{cc.Class, cc.Crop, cc.Continent}] = cc.Countries
		classSet[cc.Class] = struct{}{}
		cropSet[cc.Crop] = struct{}{}
		// The reserved identifier never joins the real key set, otherwise a
		// second completion would cross it into every real combination.
		if cc.Continent != yield.PlaceholderContinent {
			continentSet[cc.Continent] = struct{}{}
		}
	}

	// Pass 1: real cross product. Any absent (class, crop, continent)
	// combination is inserted with a zero count.
	for class := range classSet {
		for crop := range cropSet {
			for continent := range continentSet {
				k := cell{class, crop, continent}
				if _, ok := table[k]; !ok {
					table[k] = 0
				}
			}
		}
	}

	// Pass 2: seed the placeholder category with a single zero-count row so
	// the category exists, unless a previous completion already did.
	if !hasPlaceholder(table) {
		if crop, class, ok := seedCell(table); ok {
			table[cell{class, crop, yield.PlaceholderContinent}] = 0
		}
	}

	// Pass 3: placeholder cross product. Every (crop, class) cell still
	// missing a placeholder row gets one with count one, so each facet owns
	// at least one renderable (invisible) unit.
	for class := range classSet {
		for crop := range cropSet {
			k := cell{class, crop, yield.PlaceholderContinent}
			if _, ok := table[k]; !ok {
				table[k] = 1
			}
		}
	}

	out := make([]yield.ClassCount, 0, len(table))
	for k, n := range table {
		out = append(out, yield.ClassCount{
			Class:     k.class,
			Crop:      k.crop,
			Continent: k.continent,
			Countries: n,
		})
	}
	aggregate.SortClassCounts(out)
	return out
}

func hasPlaceholder(table map[cell]int) bool {
	for k := range table {
		if k.continent == yield.PlaceholderContinent {
			return true
		}
	}
	return false
}

// seedCell picks the lexicographically first (crop, class) pair that holds
// a real count. Seeding next to a real row keeps the facet-total invariant:
// the seed row itself carries zero, so its facet must already have a
// visible member. A fixed choice keeps runs deterministic.
func seedCell(table map[cell]int) (crop string, class int, ok bool) {
	for k, n := range table {
		if n <= 0 {
			continue
		}
		if !ok || k.crop < crop || (k.crop == crop && k.class < class) {
			crop, class, ok = k.crop, k.class, true
		}
	}
	return crop, class, ok
}
