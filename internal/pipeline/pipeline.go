// Package pipeline wires the yield run end-to-end: fetch and parse the
// dataset and the continent lookup, transform and decode the rows,
// aggregate into class counts, complete the categorical grid, and render
// the waffle chart. The transformation core is single-threaded and
// synchronous; the only concurrency is the fetch of the two independent
// inputs.
package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"cropyield/internal/aggregate"
	"cropyield/internal/complete"
	"cropyield/internal/config"
	"cropyield/internal/datasource"
	"cropyield/internal/datasource/file"
	"cropyield/internal/datasource/httpds"
	"cropyield/internal/lookup"
	"cropyield/internal/metrics"
	csvparser "cropyield/internal/parser/csv"
	"cropyield/internal/transformer"
	"cropyield/internal/transformer/builtin"
	"cropyield/internal/waffle"
	"cropyield/internal/yield"
	"cropyield/pkg/records"
)

// Summary reports per-run row counts, mirroring the metric kinds.
type Summary struct {
	Parsed        int // rows out of the parser
	Skipped       int // malformed rows soft-skipped by the parser
	Transformed   int // rows surviving the transform chain
	Decoded       int // typed records
	DecodeDropped int // rows missing country/crop/year
	Countries     int // (country, crop) rows with a known continent
	Facets        int // (crop, class) cells rendered
	Out           string
}

// Run executes the configured pipeline. Any stage error aborts the run; the
// computation is deterministic and idempotent, so callers simply rerun on
// failure.
func Run(ctx context.Context, cfg config.Pipeline) (*Summary, error) {
	job := cfg.Job
	if job == "" {
		job = "cropyield"
	}
	sum := &Summary{Out: cfg.Render.Out}

	// Fetch and parse the two inputs. They are independent reads with no
	// shared state, so they run concurrently and join here.
	var (
		recs  []records.Record
		table lookup.Table
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src, err := newSource(cfg.Source)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		rc, err := src.Open(gctx)
		if err != nil {
			return err
		}
		defer rc.Close()
		p := newParser(cfg.Parser)
		out, skipped, err := p.Parse(rc)
		if err != nil {
			return fmt.Errorf("parse: %w: %w", datasource.ErrUnavailable, err)
		}
		recs, sum.Skipped = out, skipped
		return nil
	})
	g.Go(func() error {
		var err error
		table, err = loadLookup(gctx, cfg.Lookup)
		return err
	})
	err := g.Wait()
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	sum.Parsed = len(recs)
	metrics.RecordRows(job, "parsed", int64(sum.Parsed))
	metrics.RecordRows(job, "skipped", int64(sum.Skipped))

	// Transform chain ahead of domain decoding.
	start = time.Now()
	chain := buildChain(cfg.Transform)
	recs = chain.Apply(recs)
	sum.Transformed = len(recs)
	metrics.RecordStep(job, "transform", nil, time.Since(start))
	metrics.RecordRows(job, "deduped", int64(sum.Parsed-sum.Transformed))

	typed, dropped := yield.DecodeRecords(recs, fields(cfg.Aggregate.Fields))
	sum.Decoded, sum.DecodeDropped = len(typed), dropped
	metrics.RecordRows(job, "decoded", int64(sum.Decoded))

	// Aggregate.
	start = time.Now()
	years := aggregate.YearRange{From: cfg.Aggregate.Years.From, To: cfg.Aggregate.Years.To}
	means := aggregate.MeanYields(typed, years)
	joined := aggregate.AttachContinent(means, table)
	counts := aggregate.BucketAndCount(joined)
	sum.Countries = len(joined)
	metrics.RecordStep(job, "aggregate", nil, time.Since(start))
	metrics.RecordRows(job, "unmatched_country", int64(len(means)-len(joined)))

	// Complete the grid, then render.
	start = time.Now()
	completed := complete.Grid(counts, complete.Options{Ceiling: cfg.Complete.Ceiling})
	metrics.RecordStep(job, "complete", nil, time.Since(start))

	start = time.Now()
	wcfg, err := renderConfig(cfg.Render)
	if err == nil {
		err = waffle.Render(completed, wcfg)
	}
	metrics.RecordStep(job, "render", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	sum.Facets = countFacets(completed)

	log.Printf("%s: parsed=%d skipped=%d transformed=%d decoded=%d (dropped=%d) countries=%d facets=%d out=%s",
		job, sum.Parsed, sum.Skipped, sum.Transformed, sum.Decoded, sum.DecodeDropped, sum.Countries, sum.Facets, sum.Out)
	return sum, nil
}

func newSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "file":
		return file.NewLocal(s.File.Path), nil
	case "http":
		return httpds.NewRemote(httpds.Config{
			URL:                s.HTTP.URL,
			Timeout:            time.Duration(s.HTTP.TimeoutSeconds) * time.Second,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
			Headers:            headerFromMap(s.HTTP.Headers),
		}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", s.Kind)
	}
}

func loadLookup(ctx context.Context, s config.Source) (lookup.Table, error) {
	if s.Kind == "" {
		return lookup.Default(), nil
	}
	src, err := newSource(s)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer rc.Close()
	t, err := lookup.FromCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w: %w", datasource.ErrUnavailable, err)
	}
	return t, nil
}

func newParser(p config.Parser) *csvparser.Parser {
	o := p.Options
	return csvparser.NewParser(csvparser.Options{
		HasHeader:      o.Bool("has_header", true),
		Comma:          o.Rune("comma", ','),
		TrimSpace:      o.Bool("trim_space", true),
		ExpectedFields: o.Int("expected_fields", 0),
		HeaderMap:      o.StringMap("header_map"),
		Charset:        o.String("charset", ""),
	})
}

func buildChain(steps []config.Transform) transformer.Chain {
	var chain transformer.Chain
	for _, t := range steps {
		switch t.Kind {
		case "normalize":
			chain = append(chain, builtin.Normalize{})
		case "require":
			chain = append(chain, builtin.Require{Fields: t.Options.StringSlice("fields")})
		case "coerce":
			chain = append(chain, builtin.Coerce{Types: t.Options.StringMap("types")})
		case "dedupe":
			chain = append(chain, builtin.DeDup{
				Keys:   t.Options.StringSlice("keys"),
				Policy: t.Options.String("policy", ""),
			})
		default:
			// Unknown kinds are rejected by config.ValidatePipeline; skip
			// here so Run stays total.
			log.Printf("transform: skipping unknown kind %q", t.Kind)
		}
	}
	return chain
}

func fields(f config.FieldSpec) yield.Fields {
	out := yield.DefaultFields()
	if f.CountryCode != "" {
		out.CountryCode = f.CountryCode
	}
	if f.Crop != "" {
		out.Crop = f.Crop
	}
	if f.Year != "" {
		out.Year = f.Year
	}
	if f.Value != "" {
		out.Value = f.Value
	}
	return out
}

func renderConfig(r config.Render) (waffle.Config, error) {
	cfg := waffle.Config{
		OutPath:  r.Out,
		RowWidth: r.RowWidth,
	}
	if r.CellInches > 0 {
		cfg.CellSize = vg.Length(r.CellInches) * vg.Inch
	}
	if len(r.Colors) > 0 {
		cfg.Colors = make(map[string]color.Color, len(r.Colors))
		for continent, hex := range r.Colors {
			c, err := waffle.ParseHexColor(hex)
			if err != nil {
				return waffle.Config{}, fmt.Errorf("render color %s: %w", continent, err)
			}
			cfg.Colors[continent] = c
		}
	}
	return cfg, nil
}

func countFacets(counts []yield.ClassCount) int {
	type fk struct {
		crop  string
		class int
	}
	seen := make(map[fk]struct{})
	for _, cc := range counts {
		seen[fk{cc.Crop, cc.Class}] = struct{}{}
	}
	return len(seen)
}

func headerFromMap(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
