// Package waffle renders a completed class-count table as a faceted
// grid-of-squares chart: crops as facet rows, yield classes as facet
// columns, one unit square per counted country, colored by continent. The
// reserved placeholder continent renders fully transparent so it reserves
// grid space without being visible.
package waffle

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"cropyield/internal/yield"
)

// ErrEmptyFacet is returned when a facet's total count is zero. The grid
// completer exists to make this unreachable; hitting it means completion
// was skipped or misapplied.
var ErrEmptyFacet = errors.New("empty facet")

// Config controls the chart geometry and colors.
type Config struct {
	// OutPath is the PNG file to write. Required.
	OutPath string

	// RowWidth is the number of unit squares per row within a facet.
	// Defaults to 4.
	RowWidth int

	// CellSize is the edge length of one facet. Defaults to 1.5 inches.
	CellSize vg.Length

	// Colors maps continent names to fill colors. Continents without an
	// entry fall back to the default palette, then to gray. The
	// placeholder continent is always transparent regardless of this map.
	Colors map[string]color.Color
}

// defaultPalette covers the continent names of the built-in lookup table.
var defaultPalette = map[string]color.Color{
	"Africa":   color.RGBA{R: 230, G: 159, B: 0, A: 255},
	"Americas": color.RGBA{R: 0, G: 114, B: 178, A: 255},
	"Asia":     color.RGBA{R: 0, G: 158, B: 115, A: 255},
	"Europe":   color.RGBA{R: 204, G: 121, B: 167, A: 255},
	"Oceania":  color.RGBA{R: 213, G: 94, B: 0, A: 255},
}

// ParseHexColor converts "#RRGGBB" (case-insensitive, leading '#' optional)
// into an opaque color.
func ParseHexColor(s string) (color.Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil, fmt.Errorf("hex color %q: want RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("hex color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

type facetKey struct {
	crop  string
	class int
}

// Render writes the waffle chart for counts to cfg.OutPath. It fails with
// ErrEmptyFacet if any (crop, class) facet in the table has a total count
// of zero across all continents.
func Render(counts []yield.ClassCount, cfg Config) error {
	if cfg.OutPath == "" {
		return fmt.Errorf("waffle: output path required")
	}
	if len(counts) == 0 {
		return fmt.Errorf("waffle: no rows to render")
	}
	rowWidth := cfg.RowWidth
	if rowWidth <= 0 {
		rowWidth = 4
	}
	cellSize := cfg.CellSize
	if cellSize <= 0 {
		cellSize = 1.5 * vg.Inch
	}

	crops, classes, cells := index(counts)

	// Every facet of the crop x class grid must own at least one unit or
	// the chart cannot be built. A facet entirely absent from the table
	// counts as zero.
	maxSquares := 0
	for _, crop := range crops {
		for _, class := range classes {
			total := 0
			for _, cc := range cells[facetKey{crop, class}] {
				total += cc.Countries
			}
			if total == 0 {
				return fmt.Errorf("waffle: facet (crop=%s, class=%d): %w", crop, class, ErrEmptyFacet)
			}
			if total > maxSquares {
				maxSquares = total
			}
		}
	}
	gridRows := (maxSquares + rowWidth - 1) / rowWidth

	plots := make([][]*plot.Plot, len(crops))
	for i, crop := range crops {
		plots[i] = make([]*plot.Plot, len(classes))
		for j, class := range classes {
			p, err := facetPlot(cells[facetKey{crop, class}], rowWidth, gridRows, cellSize, cfg.Colors)
			if err != nil {
				return err
			}
			if i == 0 {
				p.Title.Text = strconv.Itoa(class)
			}
			if j == 0 {
				p.Y.Label.Text = crop
			}
			plots[i][j] = p
		}
	}

	img := vgimg.New(vg.Length(len(classes))*cellSize, vg.Length(len(crops))*cellSize)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(crops),
		Cols: len(classes),
		PadX: vg.Points(3),
		PadY: vg.Points(3),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	w, err := os.Create(cfg.OutPath)
	if err != nil {
		return fmt.Errorf("waffle: create %s: %w", cfg.OutPath, err)
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("waffle: write %s: %w", cfg.OutPath, err)
	}
	return nil
}

// facetPlot builds one facet: the continents' unit squares laid out in a
// wrapping grid of rowWidth columns, continents in alphabetical order with
// the placeholder last so invisible units never displace visible ones.
func facetPlot(rows []yield.ClassCount, rowWidth, gridRows int, cellSize vg.Length, colors map[string]color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = -0.6, float64(rowWidth)-0.4
	p.Y.Min, p.Y.Max = -0.6, float64(gridRows)-0.4

	radius := cellSize / vg.Length(2*rowWidth) * 0.8

	idx := 0
	for _, cc := range orderContinents(rows) {
		if cc.Countries == 0 {
			continue
		}
		pts := make(plotter.XYs, cc.Countries)
		for n := 0; n < cc.Countries; n++ {
			pts[n].X = float64(idx % rowWidth)
			pts[n].Y = float64(gridRows - 1 - idx/rowWidth)
			idx++
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("waffle: scatter: %w", err)
		}
		sc.GlyphStyle.Shape = draw.BoxGlyph{}
		sc.GlyphStyle.Radius = radius
		sc.GlyphStyle.Color = fillColor(cc.Continent, colors)
		p.Add(sc)
	}
	return p, nil
}

// fillColor resolves a continent's fill. The placeholder is always fully
// transparent so its units occupy grid space without being visible.
func fillColor(continent string, colors map[string]color.Color) color.Color {
	if continent == yield.PlaceholderContinent {
		return color.NRGBA{}
	}
	if c, ok := colors[continent]; ok {
		return c
	}
	if c, ok := defaultPalette[continent]; ok {
		return c
	}
	return color.Gray{Y: 128}
}

func orderContinents(rows []yield.ClassCount) []yield.ClassCount {
	out := make([]yield.ClassCount, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		pi := out[i].Continent == yield.PlaceholderContinent
		pj := out[j].Continent == yield.PlaceholderContinent
		if pi != pj {
			return pj
		}
		return out[i].Continent < out[j].Continent
	})
	return out
}

// index collects the sorted facet dimensions and groups rows per facet.
func index(counts []yield.ClassCount) (crops []string, classes []int, cells map[facetKey][]yield.ClassCount) {
	cropSet := make(map[string]struct{})
	classSet := make(map[int]struct{})
	cells = make(map[facetKey][]yield.ClassCount)
	for _, cc := range counts {
		cropSet[cc.Crop] = struct{}{}
		classSet[cc.Class] = struct{}{}
		fk := facetKey{cc.Crop, cc.Class}
		cells[fk] = append(cells[fk], cc)
	}
	for c := range cropSet {
		crops = append(crops, c)
	}
	sort.Strings(crops)
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return crops, classes, cells
}
