// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of
// issues (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strconv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block
	// execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "transform[1].kind"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var knownTransforms = map[string]bool{
	"normalize": true,
	"require":   true,
	"coerce":    true,
	"dedupe":    true,
}

// ValidatePipeline performs static validation / linting of a Pipeline. It
// does not mutate the pipeline; callers decide whether to treat warnings as
// fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	if p.Job == "" {
		add(SeverityWarning, "job", "empty job name; metrics will group under the default")
	}

	issues = append(issues, validateSource(p.Source, "source", false)...)
	issues = append(issues, validateSource(p.Lookup, "lookup", true)...)

	switch p.Parser.Kind {
	case "csv":
	case "":
		add(SeverityError, "parser.kind", "parser kind is required")
	default:
		add(SeverityError, "parser.kind", fmt.Sprintf("unknown parser kind %q", p.Parser.Kind))
	}

	for i, t := range p.Transform {
		if !knownTransforms[t.Kind] {
			add(SeverityError, fmt.Sprintf("transform[%d].kind", i), fmt.Sprintf("unknown transform kind %q", t.Kind))
		}
	}

	if y := p.Aggregate.Years; y.From != 0 && y.To != 0 && y.From > y.To {
		add(SeverityError, "aggregate.years", fmt.Sprintf("from (%d) is after to (%d)", y.From, y.To))
	}

	for crop, max := range p.Complete.Ceiling {
		if max < 0 {
			add(SeverityError, "complete.ceiling."+crop, "ceiling must be >= 0")
		}
	}

	if p.Render.Out == "" {
		add(SeverityError, "render.out", "output path is required")
	}
	if p.Render.RowWidth < 0 {
		add(SeverityError, "render.row_width", "row width must be >= 0")
	} else if p.Render.RowWidth == 0 {
		add(SeverityWarning, "render.row_width", "row width not set; defaulting to 4")
	}
	if p.Render.CellInches < 0 {
		add(SeverityError, "render.cell_inches", "cell size must be >= 0")
	}
	for continent, hex := range p.Render.Colors {
		if !validHexColor(hex) {
			add(SeverityError, "render.colors."+continent, fmt.Sprintf("%q is not a #RRGGBB color", hex))
		}
	}

	return issues
}

func validateSource(s Source, path string, optional bool) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, p, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: p, Message: msg})
	}

	switch s.Kind {
	case "file":
		if s.File.Path == "" {
			add(SeverityError, path+".file.path", "path is required for the file source")
		}
	case "http":
		if s.HTTP.URL == "" {
			add(SeverityError, path+".http.url", "url is required for the http source")
		}
		if s.HTTP.TimeoutSeconds < 0 {
			add(SeverityError, path+".http.timeout_seconds", "timeout must be >= 0")
		}
		if s.HTTP.InsecureSkipVerify {
			add(SeverityWarning, path+".http.insecure_skip_verify", "TLS verification disabled")
		}
	case "":
		if !optional {
			add(SeverityError, path+".kind", "source kind is required")
		}
	default:
		add(SeverityError, path+".kind", fmt.Sprintf("unknown source kind %q", s.Kind))
	}
	return issues
}

func validHexColor(s string) bool {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}
