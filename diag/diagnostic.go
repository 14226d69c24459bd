package diag

import (
	"fmt"
	"strings"
)

// Diagnostic is one structured message: where, what kind, and the
// human text. Construction happens here only; the engine packages
// never format anything themselves.
type Diagnostic struct {
	Path    Path
	Code    Code
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("(E%03d) %s: %s", d.Code, d.Path, d.Message)
}

// Assignability builds the diagnostic for an incompatible verdict.
func Assignability(path Path, code Code, detail string) Diagnostic {
	msg := detail
	if msg == "" {
		msg = "types are not assignable"
	}
	return Diagnostic{Path: path, Code: code, Message: msg}
}

// Drift builds the diagnostic for a key-set drift report. Both key
// lists are expected sorted.
func Drift(missing, extra []string) Diagnostic {
	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, "missing in companion: "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "extra in companion: "+strings.Join(extra, ", "))
	}
	return Diagnostic{Code: KeySetDrift, Message: strings.Join(parts, "; ")}
}

// Narrowing builds the diagnostic for a failed narrow call.
func Narrowing(err Error) Diagnostic {
	return Diagnostic{Code: err.DiagCode(), Message: err.Error()}
}

// Report aggregates diagnostics in the order they were produced.
type Report struct {
	diags []Diagnostic
}

func (r *Report) With(diags ...Diagnostic) *Report {
	if r == nil {
		return &Report{diags: diags}
	}
	r.diags = append(r.diags, diags...)
	return r
}

func (r *Report) Merge(other *Report) *Report {
	if r == nil {
		return other
	}
	if other == nil || len(other.diags) == 0 {
		return r
	}
	return r.With(other.diags...)
}

func (r *Report) Diagnostics() []Diagnostic {
	if r == nil {
		return nil
	}
	return r.diags
}

func (r *Report) HasError() bool {
	return r != nil && len(r.diags) > 0
}
