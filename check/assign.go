package check

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"
	"github.com/shapecheck/shapecheck/diag"
	"github.com/shapecheck/shapecheck/internal/log"
	"github.com/shapecheck/shapecheck/shape"
	"github.com/shapecheck/shapecheck/util"
)

var logger = log.DefaultLogger.With("section", "check")

// Verdict is the outcome of an assignability check. The zero value is
// compatible; anything else carries the code and the path of the
// deepest position that broke compatibility.
type Verdict struct {
	Code   diag.Code
	Path   diag.Path
	Detail string
}

func (v Verdict) Compatible() bool { return v.Code == diag.None }

var compatible = Verdict{}

// checkedPair identifies one (source, target) combination already
// visited during a check, so recursive type graphs terminate.
type checkedPair struct {
	source shape.Type
	target shape.Type
}

func (p *checkedPair) Hash() uint64 {
	return 31*p.source.Hash() ^ p.target.Hash()
}

// depth limit is a backstop only: a cyclic graph is caught by the
// visited set, so hitting this means the caller built something
// pathological.
const defaultDepthLimit = 512

type checker struct {
	seen  *set.HashSet[*checkedPair, uint64]
	path  util.Stack[diag.Step]
	depth int
}

// Assign decides whether source is usable wherever target is
// expected, under structural rules with readonly variance. All
// compatibility outcomes are verdict values; the error is non-nil only
// for malformed input (nil nodes, empty unions), which is a caller bug
// rather than a type mismatch.
func Assign(source, target shape.Type) (Verdict, error) {
	c := &checker{seen: set.NewHashSet[*checkedPair, uint64](0)}
	v, err := c.rec(source, target)
	if err == nil {
		logger.Debug("assign: done", "source", source, "target", target, "code", v.Code)
	}
	return v, err
}

func (c *checker) rec(source, target shape.Type) (Verdict, error) {
	if source == nil || target == nil {
		return compatible, diag.Invalid{Reason: "nil type node"}
	}
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > defaultDepthLimit {
		return compatible, diag.Invalid{Reason: fmt.Sprintf("type graph nesting exceeds %d", defaultDepthLimit)}
	}
	if u, ok := source.(shape.Union); ok && len(u.Members) == 0 {
		return compatible, diag.Invalid{Reason: "union with zero members"}
	}
	if u, ok := target.(shape.Union); ok && len(u.Members) == 0 {
		return compatible, diag.Invalid{Reason: "union with zero members"}
	}

	if shape.Equal(source, target) {
		return compatible, nil
	}

	pair := &checkedPair{source: source, target: target}
	if c.seen.Contains(pair) {
		// a pair already under consideration, or already proven, holds
		// coinductively
		return compatible, nil
	}
	c.seen.Insert(pair)
	v, err := c.step(source, target)
	if err != nil || !v.Compatible() {
		// only in-progress and proven pairs may stay cached: a failed
		// pair left behind would turn a later re-query (a duplicate
		// union member, a subtree reachable twice) into a false success
		c.seen.Remove(pair)
	}
	return v, err
}

func (c *checker) step(source, target shape.Type) (Verdict, error) {
	logger.Debug("assign: step", "source", source, "target", target, "depth", c.depth)

	// mapped companions check like the record they mirror
	source = asRecord(source)
	target = asRecord(target)

	// a union source fits only if every member does
	if u, ok := source.(shape.Union); ok {
		for _, m := range u.Members {
			v, err := c.rec(m, target)
			if err != nil || !v.Compatible() {
				return v, err
			}
		}
		return compatible, nil
	}
	// a union target accepts the source if any member does; on total
	// failure the first member's verdict is reported, in declaration
	// order, so output is deterministic
	if u, ok := target.(shape.Union); ok {
		var first *Verdict
		for _, m := range u.Members {
			v, err := c.rec(source, m)
			if err != nil {
				return v, err
			}
			if v.Compatible() {
				return compatible, nil
			}
			if first == nil {
				first = &v
			}
		}
		return Verdict{
			Code:   diag.NoUnionMemberMatches,
			Path:   first.Path,
			Detail: fmt.Sprintf("no member of %s accepts %s; first mismatch: %s", target, source, first.Detail),
		}, nil
	}

	switch target := target.(type) {
	case shape.Primitive:
		switch source := source.(type) {
		case shape.Primitive:
			if source.Name == target.Name {
				return compatible, nil
			}
		case shape.Literal:
			// a literal belongs to its primitive domain
			if source.Kind == target.Name {
				return compatible, nil
			}
		}
	case shape.Literal:
		if source, ok := source.(shape.Literal); ok && source == target {
			return compatible, nil
		}
	case shape.Object:
		if source, ok := source.(shape.Object); ok {
			return c.objectObject(source, target)
		}
	case shape.Array:
		switch source := source.(type) {
		case shape.Array:
			return c.arrayArray(source, target)
		case shape.Tuple:
			return c.tupleArray(source, target)
		}
	case shape.Tuple:
		if source, ok := source.(shape.Tuple); ok {
			return c.tupleTuple(source, target)
		}
		if _, ok := source.(shape.Array); ok {
			// an array's length is not pinned, so it can never satisfy
			// a tuple of known width
			return c.fail(diag.LengthMismatch, fmt.Sprintf("%s has no fixed length to satisfy %s", source, target)), nil
		}
	default:
		return compatible, diag.Invalid{Reason: fmt.Sprintf("unknown shape variant %T", target)}
	}
	return c.fail(diag.FieldTypeMismatch, fmt.Sprintf("%s is not assignable to %s", source, target)), nil
}

// asRecord views a mapped companion as the record it mirrors; other
// nodes pass through.
func asRecord(t shape.Type) shape.Type {
	m, ok := t.(shape.Mapped)
	if !ok {
		return t
	}
	keys := m.Keys()
	fields := make([]shape.Field, 0, len(keys))
	for _, k := range keys {
		v, _ := m.ValueFor(k)
		fields = append(fields, shape.Field{Name: k, Type: v, Readonly: m.ReadonlyFor(k)})
	}
	return shape.Object{Fields: fields}
}

func (c *checker) fail(code diag.Code, detail string) Verdict {
	return Verdict{Code: code, Path: diag.Path(c.path.Items()), Detail: detail}
}

func (c *checker) failAt(step diag.Step, code diag.Code, detail string) Verdict {
	c.path.Push(step)
	v := c.fail(code, detail)
	c.path.Pop()
	return v
}

func (c *checker) recAt(step diag.Step, source, target shape.Type) (Verdict, error) {
	c.path.Push(step)
	v, err := c.rec(source, target)
	c.path.Pop()
	return v, err
}

func (c *checker) objectObject(source, target shape.Object) (Verdict, error) {
	for _, tf := range target.Fields {
		sf, declared := source.FieldNamed(tf.Name)
		if !declared {
			if source.Index != nil && keyDomainCovers(source.Index.Key, shape.Primitive{Name: "string"}) {
				// the source's open key domain supplies the field
				if source.Index.Readonly && !tf.Readonly {
					return c.failAt(diag.FieldStep(tf.Name), diag.ReadonlyViolation, "readonly indexed value cannot fill a mutable field"), nil
				}
				v, err := c.recAt(diag.FieldStep(tf.Name), source.Index.Value, tf.Type)
				if err != nil || !v.Compatible() {
					return v, err
				}
				continue
			}
			if tf.Optional {
				continue
			}
			return c.failAt(diag.FieldStep(tf.Name), diag.MissingField, fmt.Sprintf("required field is absent from %s", source)), nil
		}
		if sf.Optional && !tf.Optional {
			return c.failAt(diag.FieldStep(tf.Name), diag.MissingField, "field is optional in the source but required by the target"), nil
		}
		if sf.Readonly && !tf.Readonly {
			return c.failAt(diag.FieldStep(tf.Name), diag.ReadonlyViolation, "readonly value cannot flow into a mutable slot without copying"), nil
		}
		// readonly is shallow: the nested check starts from the
		// field's own declared flags, not the parent's
		v, err := c.recAt(diag.FieldStep(tf.Name), sf.Type, tf.Type)
		if err != nil || !v.Compatible() {
			return v, err
		}
	}

	if target.Index != nil {
		for _, sf := range source.Fields {
			if _, declared := target.FieldNamed(sf.Name); declared {
				continue
			}
			if sf.Readonly && !target.Index.Readonly {
				return c.failAt(diag.FieldStep(sf.Name), diag.ReadonlyViolation, "readonly field cannot satisfy a mutable index signature"), nil
			}
			v, err := c.recAt(diag.FieldStep(sf.Name), sf.Type, target.Index.Value)
			if err != nil || !v.Compatible() {
				return v, err
			}
		}
		if source.Index != nil {
			if !keyDomainCovers(source.Index.Key, target.Index.Key) {
				return c.failAt(diag.IndexStep("[index]"), diag.FieldTypeMismatch,
					fmt.Sprintf("index key domain %s does not cover %s", source.Index.Key, target.Index.Key)), nil
			}
			if source.Index.Readonly && !target.Index.Readonly {
				return c.failAt(diag.IndexStep("[index]"), diag.ReadonlyViolation, "readonly index signature cannot satisfy a mutable one"), nil
			}
			v, err := c.recAt(diag.IndexStep("[index]"), source.Index.Value, target.Index.Value)
			if err != nil || !v.Compatible() {
				return v, err
			}
		}
	}
	return compatible, nil
}

// keyDomainCovers reports whether the src key domain is a superset of
// the tgt one. String keys subsume number keys, never the reverse.
func keyDomainCovers(src, tgt shape.Primitive) bool {
	return src.Name == tgt.Name || src.Name == "string"
}

func (c *checker) arrayArray(source, target shape.Array) (Verdict, error) {
	if source.Readonly && !target.Readonly {
		return c.fail(diag.ReadonlyViolation, "readonly array cannot flow into a mutable array slot without copying"), nil
	}
	return c.recAt(diag.IndexStep("[elem]"), source.Elem, target.Elem)
}

func (c *checker) tupleArray(source shape.Tuple, target shape.Array) (Verdict, error) {
	for i, e := range source.Elems {
		step := diag.IndexStep(fmt.Sprintf("[%d]", i))
		if e.Readonly && !target.Readonly {
			return c.failAt(step, diag.ReadonlyViolation, "readonly tuple position cannot flow into a mutable array"), nil
		}
		v, err := c.recAt(step, e.Type, target.Elem)
		if err != nil || !v.Compatible() {
			return v, err
		}
	}
	return compatible, nil
}

func (c *checker) tupleTuple(source, target shape.Tuple) (Verdict, error) {
	required := 0
	for i, e := range target.Elems {
		if e.Optional {
			continue
		}
		if i >= required {
			required = i + 1
		}
	}
	if required > 0 {
		for _, e := range target.Elems[:required-1] {
			if e.Optional {
				return compatible, diag.Invalid{Reason: "tuple with optional position before a required one"}
			}
		}
	}

	if required == len(target.Elems) {
		if len(source.Elems) != len(target.Elems) {
			return c.fail(diag.LengthMismatch, fmt.Sprintf("tuple length %d does not match %d", len(source.Elems), len(target.Elems))), nil
		}
	} else if len(source.Elems) < required {
		return c.fail(diag.LengthMismatch, fmt.Sprintf("tuple length %d is below the %d required positions", len(source.Elems), required)), nil
	}

	for i := 0; i < len(source.Elems) && i < len(target.Elems); i++ {
		se, te := source.Elems[i], target.Elems[i]
		step := diag.IndexStep(fmt.Sprintf("[%d]", i))
		if se.Readonly && !te.Readonly {
			return c.failAt(step, diag.ReadonlyViolation, "readonly tuple position cannot flow into a mutable one"), nil
		}
		if se.Optional && !te.Optional {
			return c.failAt(step, diag.MissingField, "position is optional in the source but required by the target"), nil
		}
		v, err := c.recAt(step, se.Type, te.Type)
		if err != nil || !v.Compatible() {
			return v, err
		}
	}
	return compatible, nil
}
