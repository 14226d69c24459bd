package diag

import (
	"fmt"
	"strings"
)

// Error is implemented by every failure the engine returns as a Go
// error (narrowing failures and malformed-input conditions). Ordinary
// incompatibility is a verdict value, not an Error.
type Error interface {
	error
	DiagCode() Code
}

// FormatWithCode renders an Error the way diagnostics are shown to
// users, with its code as a prefix.
func FormatWithCode(e Error) string {
	return fmt.Sprintf("(E%03d) %s", e.DiagCode(), e.Error())
}

// Invalid reports a malformed type graph or a malformed request: a nil
// node, a union with zero members, or a narrowing context that selects
// no (or both) discriminant strategies. It is a caller bug, distinct
// from any compatibility verdict.
type Invalid struct {
	Reason string
}

func (e Invalid) Error() string  { return "invalid type graph: " + e.Reason }
func (e Invalid) DiagCode() Code { return InvalidType }

// Ambiguous reports that more than one union member satisfied the
// narrowing discriminant.
type Ambiguous struct {
	Field   string
	Members []string
}

func (e Ambiguous) Error() string {
	return fmt.Sprintf("narrowing on '%s' is ambiguous between members: %s", e.Field, strings.Join(e.Members, ", "))
}
func (e Ambiguous) DiagCode() Code { return AmbiguousNarrowing }

// NoneMatched reports that no union member satisfied the narrowing
// discriminant.
type NoneMatched struct {
	Field string
	Value string
}

func (e NoneMatched) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("no union member carries tag %s = %s", e.Field, e.Value)
	}
	return fmt.Sprintf("no union member requires field '%s'", e.Field)
}
func (e NoneMatched) DiagCode() Code { return NoMatch }
