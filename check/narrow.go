package check

import (
	"fmt"

	"github.com/shapecheck/shapecheck/diag"
	"github.com/shapecheck/shapecheck/shape"
)

// NarrowingContext describes the runtime observation the caller has
// already made about a value of a union type. Exactly one strategy is
// active per call: a tag comparison (DiscriminantField plus
// DiscriminantValue) or a presence probe (PresenceField).
type NarrowingContext struct {
	DiscriminantField string
	DiscriminantValue string
	PresenceField     string
}

// Narrow resolves a union to the single member consistent with the
// caller-asserted discriminant. It inspects static shapes only; the
// runtime observation itself is the caller's responsibility.
//
// Failures come back as diag errors: Ambiguous when more than one
// member matches, NoneMatched when none does, Invalid when the context
// or the union is malformed.
func Narrow(u shape.Union, nc NarrowingContext) (shape.Type, error) {
	if len(u.Members) == 0 {
		return nil, diag.Invalid{Reason: "union with zero members"}
	}
	tagged := nc.DiscriminantField != ""
	presence := nc.PresenceField != ""
	if tagged == presence {
		return nil, diag.Invalid{Reason: "narrowing context must select exactly one discriminant strategy"}
	}
	if tagged {
		return narrowByTag(u, nc.DiscriminantField, nc.DiscriminantValue)
	}
	return narrowByPresence(u, nc.PresenceField)
}

// narrowByTag requires every member to carry a literal at the
// discriminant field. This is the robust discipline: it never depends
// on accidental structural exclusivity between members.
func narrowByTag(u shape.Union, field, value string) (shape.Type, error) {
	var matches []shape.Type
	for _, m := range u.Members {
		obj, ok := m.(shape.Object)
		if !ok {
			return nil, diag.Invalid{Reason: fmt.Sprintf("tag narrowing requires object members, got %s", m)}
		}
		f, ok := obj.FieldNamed(field)
		if !ok {
			return nil, diag.Invalid{Reason: fmt.Sprintf("member %s has no tag field '%s'", m, field)}
		}
		lit, ok := f.Type.(shape.Literal)
		if !ok {
			return nil, diag.Invalid{Reason: fmt.Sprintf("tag field '%s' of %s is not literal-typed", field, m)}
		}
		if lit.Text == value {
			matches = append(matches, m)
		}
	}
	return selectUnique(matches, field, value)
}

// narrowByPresence selects the unique member that requires the probed
// field. Members that merely declare it optional do not match, since
// the field's presence proves nothing about them.
func narrowByPresence(u shape.Union, field string) (shape.Type, error) {
	var matches []shape.Type
	for _, m := range u.Members {
		obj, ok := m.(shape.Object)
		if !ok {
			continue
		}
		f, ok := obj.FieldNamed(field)
		if ok && !f.Optional {
			matches = append(matches, m)
		}
	}
	return selectUnique(matches, field, "")
}

func selectUnique(matches []shape.Type, field, value string) (shape.Type, error) {
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, diag.NoneMatched{Field: field, Value: value}
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.String()
	}
	return nil, diag.Ambiguous{Field: field, Members: names}
}
