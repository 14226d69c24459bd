package diag

import "fmt"

// Code classifies every outcome the engine can report. The zero value
// means no failure.
type Code int

const (
	None Code = iota
	MissingField
	FieldTypeMismatch
	ReadonlyViolation
	LengthMismatch
	NoUnionMemberMatches
	AmbiguousNarrowing
	NoMatch
	KeySetDrift
	InvalidType
)

func (c Code) String() string {
	switch c {
	case None:
		return "None"
	case MissingField:
		return "MissingField"
	case FieldTypeMismatch:
		return "FieldTypeMismatch"
	case ReadonlyViolation:
		return "ReadonlyViolation"
	case LengthMismatch:
		return "LengthMismatch"
	case NoUnionMemberMatches:
		return "NoUnionMemberMatches"
	case AmbiguousNarrowing:
		return "AmbiguousNarrowing"
	case NoMatch:
		return "NoMatch"
	case KeySetDrift:
		return "KeySetDrift"
	case InvalidType:
		return "InvalidType"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Step is one hop of a reason path: a named field, or an index
// descriptor such as "[index]", "[elem]" or a tuple position "[2]".
type Step struct {
	Field string
	Index string
}

func FieldStep(name string) Step { return Step{Field: name} }
func IndexStep(desc string) Step { return Step{Index: desc} }

func (s Step) String() string {
	if s.Field != "" {
		return s.Field
	}
	return s.Index
}

// Path is the ordered sequence of steps from the root of the checked
// pair down to the position that broke compatibility.
type Path []Step

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	sb := make([]byte, 0, 16*len(p))
	for i, s := range p {
		if i > 0 && s.Field != "" {
			sb = append(sb, '.')
		}
		sb = append(sb, s.String()...)
	}
	return string(sb)
}
