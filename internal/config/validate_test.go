package config

import (
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Job:    "yields",
		Source: Source{Kind: "file", File: SourceFile{Path: "in.csv"}},
		Parser: Parser{Kind: "csv"},
		Render: Render{Out: "out.png", RowWidth: 4},
	}
}

func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

func countErrors(issues []Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

func TestValidatePipelineClean(t *testing.T) {
	if issues := ValidatePipeline(validPipeline()); countErrors(issues) != 0 {
		t.Fatalf("unexpected errors: %v", issues)
	}
}

func TestValidatePipeline(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pipeline)
		sev    IssueSeverity
		path   string
	}{
		{
			name:   "empty job warns",
			mutate: func(p *Pipeline) { p.Job = "" },
			sev:    SeverityWarning,
			path:   "job",
		},
		{
			name:   "missing source kind",
			mutate: func(p *Pipeline) { p.Source = Source{} },
			sev:    SeverityError,
			path:   "source.kind",
		},
		{
			name:   "file source without path",
			mutate: func(p *Pipeline) { p.Source = Source{Kind: "file"} },
			sev:    SeverityError,
			path:   "source.file.path",
		},
		{
			name:   "http source without url",
			mutate: func(p *Pipeline) { p.Source = Source{Kind: "http"} },
			sev:    SeverityError,
			path:   "source.http.url",
		},
		{
			name: "insecure tls warns",
			mutate: func(p *Pipeline) {
				p.Source = Source{Kind: "http", HTTP: SourceHTTP{URL: "https://x", InsecureSkipVerify: true}}
			},
			sev:  SeverityWarning,
			path: "source.http.insecure_skip_verify",
		},
		{
			name:   "unknown source kind",
			mutate: func(p *Pipeline) { p.Source.Kind = "ftp" },
			sev:    SeverityError,
			path:   "source.kind",
		},
		{
			name:   "missing parser kind",
			mutate: func(p *Pipeline) { p.Parser.Kind = "" },
			sev:    SeverityError,
			path:   "parser.kind",
		},
		{
			name:   "unknown transform kind",
			mutate: func(p *Pipeline) { p.Transform = []Transform{{Kind: "normalize"}, {Kind: "frobnicate"}} },
			sev:    SeverityError,
			path:   "transform[1].kind",
		},
		{
			name:   "inverted year range",
			mutate: func(p *Pipeline) { p.Aggregate.Years = YearSpan{From: 2020, To: 2010} },
			sev:    SeverityError,
			path:   "aggregate.years",
		},
		{
			name:   "negative ceiling",
			mutate: func(p *Pipeline) { p.Complete.Ceiling = map[string]int{"Wheat": -1} },
			sev:    SeverityError,
			path:   "complete.ceiling.Wheat",
		},
		{
			name:   "missing render out",
			mutate: func(p *Pipeline) { p.Render.Out = "" },
			sev:    SeverityError,
			path:   "render.out",
		},
		{
			name:   "zero row width warns",
			mutate: func(p *Pipeline) { p.Render.RowWidth = 0 },
			sev:    SeverityWarning,
			path:   "render.row_width",
		},
		{
			name:   "bad hex color",
			mutate: func(p *Pipeline) { p.Render.Colors = map[string]string{"Europe": "#zz79a7"} },
			sev:    SeverityError,
			path:   "render.colors.Europe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(issues, tt.sev, tt.path) {
				t.Fatalf("want %s at %s; got %v", tt.sev, tt.path, issues)
			}
		})
	}
}

func TestLookupSourceOptional(t *testing.T) {
	p := validPipeline()
	p.Lookup = Source{} // empty kind selects the embedded table
	for _, i := range ValidatePipeline(p) {
		if strings.HasPrefix(i.Path, "lookup") {
			t.Fatalf("empty lookup flagged: %v", i)
		}
	}
}

func TestIssueError(t *testing.T) {
	i := Issue{Severity: SeverityError, Path: "render.out", Message: "output path is required"}
	want := "error at render.out: output path is required"
	if got := i.Error(); got != want {
		t.Fatalf("Error()=%q; want %q", got, want)
	}
}
