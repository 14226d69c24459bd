package shape

import (
	"fmt"
	"hash/fnv"
	"iter"
	"maps"
	"slices"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/shapecheck/shapecheck/util"
)

// Type is one node of a structural shape tree. Trees are immutable
// once constructed: every transformation returns a fresh tree, so
// concurrent checks over shared nodes need no coordination.
//
// The set of implementations is closed. Consumers dispatch with a type
// switch over all variants so a new kind cannot be silently ignored.
type Type interface {
	fmt.Stringer
	Hash() uint64
	Children() iter.Seq[Type]
	Map(f func(Type) Type) Type
}

var (
	_ Type = Primitive{}
	_ Type = Literal{}
	_ Type = Object{}
	_ Type = Array{}
	_ Type = Tuple{}
	_ Type = Union{}
	_ Type = Mapped{}

	_ set.Hasher[uint64] = (Type)(nil)
)

// Equal compares two nodes structurally. Each variant folds what is
// significant for its own equality into Hash: field sets and union
// members are combined commutatively (order-insensitive), tuple
// elements in order.
func Equal[H, HH set.Hasher[uint64]](this H, other HH) bool {
	return this.Hash() == other.Hash()
}

var emptySeqType iter.Seq[Type] = func(func(Type) bool) {}

// Primitive is a named atomic type such as "string", "number" or
// "boolean". Two primitives are equal exactly when their names match.
type Primitive struct {
	Name string
}

func (t Primitive) String() string           { return t.Name }
func (t Primitive) Children() iter.Seq[Type] { return emptySeqType }
func (t Primitive) Map(func(Type) Type) Type { return t }

func (t Primitive) Hash() uint64 {
	const prime uint64 = 1299709
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Name))
	return prime ^ h.Sum64()
}

// Literal is a single-value type: the type of one specific string,
// number or boolean. Kind names the primitive domain the value lives
// in, Text is its canonical spelling. Tag fields of discriminated
// unions carry literals.
type Literal struct {
	Kind string
	Text string
}

func (t Literal) String() string {
	if t.Kind == "string" {
		return `"` + t.Text + `"`
	}
	return t.Text
}
func (t Literal) Children() iter.Seq[Type] { return emptySeqType }
func (t Literal) Map(func(Type) Type) Type { return t }

func (t Literal) Hash() uint64 {
	const prime uint64 = 104729
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(t.Text))
	return prime ^ h.Sum64()
}

// Field is one named member of an Object.
type Field struct {
	Name     string
	Type     Type
	Readonly bool
	Optional bool
}

func (f Field) String() string {
	s := f.Name
	if f.Optional {
		s += "?"
	}
	s += ": "
	if f.Readonly {
		s += "readonly "
	}
	return s + f.Type.String()
}

func (f Field) hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(f.Name))
	acc := h.Sum64()*31 + f.Type.Hash()
	if f.Readonly {
		acc = acc*31 + 7919
	}
	if f.Optional {
		acc = acc*31 + 104729
	}
	return acc
}

// IndexSignature describes the open key domain of an object: any key
// of type Key not matched by a named field has type Value.
type IndexSignature struct {
	Key      Primitive
	Value    Type
	Readonly bool
}

func (s IndexSignature) String() string {
	prefix := ""
	if s.Readonly {
		prefix = "readonly "
	}
	return fmt.Sprintf("%s[%s]: %s", prefix, s.Key.Name, s.Value.String())
}

func (s IndexSignature) hash() uint64 {
	acc := 31*s.Key.Hash() + 37*s.Value.Hash()
	if s.Readonly {
		acc = acc*31 + 433
	}
	return acc
}

// Object is a record shape: an ordered field list (order preserved for
// display, insignificant for equality) and an optional index
// signature.
type Object struct {
	Fields []Field
	Index  *IndexSignature
}

// FieldNamed returns the field called name, if declared.
func (t Object) FieldNamed(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// KeySet is the set of declared field names.
func (t Object) KeySet() *set.Set[string] {
	return util.SetFromSeq(util.MapIter(slices.Values(t.Fields), func(f Field) string { return f.Name }), len(t.Fields))
}

func (t Object) String() string {
	fieldStrs := make([]string, 0, len(t.Fields)+1)
	for i, field := range t.Fields {
		if i > 3 {
			fieldStrs = append(fieldStrs, "...")
			break
		}
		fieldStrs = append(fieldStrs, field.String())
	}
	if t.Index != nil {
		fieldStrs = append(fieldStrs, t.Index.String())
	}
	return "{" + strings.Join(fieldStrs, ", ") + "}"
}

func (t Object) Children() iter.Seq[Type] {
	fieldTypes := util.MapIter(slices.Values(t.Fields), func(f Field) Type { return f.Type })
	if t.Index == nil {
		return fieldTypes
	}
	return util.ConcatIter(fieldTypes, slices.Values([]Type{t.Index.Key, t.Index.Value}))
}

func (t Object) Map(f func(Type) Type) Type {
	mapped := make([]Field, len(t.Fields))
	for i, field := range t.Fields {
		field.Type = f(field.Type)
		mapped[i] = field
	}
	index := t.Index
	if index != nil {
		index = &IndexSignature{Key: index.Key, Value: f(index.Value), Readonly: index.Readonly}
	}
	return Object{Fields: mapped, Index: index}
}

func (t Object) Hash() uint64 {
	const prime uint64 = 15487469
	// commutative fold: field order must not affect equality
	var acc uint64
	for _, field := range t.Fields {
		acc += field.hash()
	}
	if t.Index != nil {
		acc ^= t.Index.hash()
	}
	return prime ^ acc
}

// Array is an unknown-length sequence of Elem values. The readonly
// flag covers the sequence itself, not the element's own fields.
type Array struct {
	Elem     Type
	Readonly bool
}

func (t Array) String() string {
	if t.Readonly {
		return "readonly Array<" + t.Elem.String() + ">"
	}
	return "Array<" + t.Elem.String() + ">"
}

func (t Array) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) { yield(t.Elem) }
}

func (t Array) Map(f func(Type) Type) Type {
	return Array{Elem: f(t.Elem), Readonly: t.Readonly}
}

func (t Array) Hash() uint64 {
	acc := 2166136261*16777619 ^ t.Elem.Hash()
	if t.Readonly {
		acc = acc*31 + 7919
	}
	return acc
}

// TupleElem is one position of a Tuple. Optional positions may only
// appear as a trailing run.
type TupleElem struct {
	Type     Type
	Readonly bool
	Optional bool
}

func (e TupleElem) String() string {
	s := ""
	if e.Readonly {
		s = "readonly "
	}
	s += e.Type.String()
	if e.Optional {
		s += "?"
	}
	return s
}

func (e TupleElem) Hash() uint64 {
	acc := e.Type.Hash()
	if e.Readonly {
		acc = acc*31 + 7919
	}
	if e.Optional {
		acc = acc*31 + 104729
	}
	return acc
}

// Tuple is a known-width sequence with per-position types and
// readonly flags. Unlike object fields, position order is significant
// for equality.
type Tuple struct {
	Elems []TupleElem
}

func (t Tuple) String() string {
	strs := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		strs[i] = e.String()
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

func (t Tuple) Children() iter.Seq[Type] {
	return util.MapIter(slices.Values(t.Elems), func(e TupleElem) Type { return e.Type })
}

func (t Tuple) Map(f func(Type) Type) Type {
	mapped := make([]TupleElem, len(t.Elems))
	for i, e := range t.Elems {
		e.Type = f(e.Type)
		mapped[i] = e
	}
	return Tuple{Elems: mapped}
}

func (t Tuple) Hash() uint64 {
	const prime uint64 = 9973
	hash := prime
	for _, elem := range t.Elems {
		hash = hash*433 ^ elem.Hash()
	}
	return hash
}

// Union is a non-empty set of alternatives. Member order is
// insignificant for equality but preserved, so narrowing and failure
// reporting are deterministic.
type Union struct {
	Members []Type
}

func NewUnion(members ...Type) Union {
	return Union{Members: members}
}

func (t Union) String() string {
	return "(" + util.JoinString(t.Members, " | ") + ")"
}

func (t Union) Children() iter.Seq[Type] {
	return slices.Values(t.Members)
}

func (t Union) Map(f func(Type) Type) Type {
	mapped := make([]Type, len(t.Members))
	for i, m := range t.Members {
		mapped[i] = f(m)
	}
	return Union{Members: mapped}
}

func (t Union) Hash() uint64 {
	const prime uint64 = 32452843
	// commutative fold: member order must not affect equality
	var acc uint64
	for _, m := range t.Members {
		acc += m.Hash() * 31
	}
	return prime ^ acc
}

// Mapped is a companion shape derived from some source object: one
// entry per key, each with a value type and a readonly flag. Its key
// set is contractually required to mirror the source's; the
// synchronizer in package check surfaces any drift.
//
// Construct with NewMapped; the entry maps are copied so the value is
// immutable like every other node.
type Mapped struct {
	keys        []string
	valueFor    map[string]Type
	readonlyFor map[string]bool
}

func NewMapped(values map[string]Type, readonly map[string]bool) Mapped {
	keys := slices.Sorted(maps.Keys(values))
	ro := make(map[string]bool, len(readonly))
	for k, v := range readonly {
		ro[k] = v
	}
	return Mapped{
		keys:        keys,
		valueFor:    maps.Clone(values),
		readonlyFor: ro,
	}
}

// Keys returns the key set in sorted order.
func (t Mapped) Keys() []string {
	return slices.Clone(t.keys)
}

func (t Mapped) KeySet() *set.Set[string] {
	return set.From(t.keys)
}

func (t Mapped) ValueFor(key string) (Type, bool) {
	v, ok := t.valueFor[key]
	return v, ok
}

func (t Mapped) ReadonlyFor(key string) bool {
	return t.readonlyFor[key]
}

func (t Mapped) String() string {
	strs := make([]string, 0, len(t.keys))
	for i, k := range t.keys {
		if i > 3 {
			strs = append(strs, "...")
			break
		}
		prefix := ""
		if t.readonlyFor[k] {
			prefix = "readonly "
		}
		strs = append(strs, prefix+k+": "+t.valueFor[k].String())
	}
	return "Mapped{" + strings.Join(strs, ", ") + "}"
}

func (t Mapped) Children() iter.Seq[Type] {
	return util.MapIter(slices.Values(t.keys), func(k string) Type { return t.valueFor[k] })
}

func (t Mapped) Map(f func(Type) Type) Type {
	values := make(map[string]Type, len(t.keys))
	for _, k := range t.keys {
		values[k] = f(t.valueFor[k])
	}
	return NewMapped(values, t.readonlyFor)
}

func (t Mapped) Hash() uint64 {
	const prime uint64 = 10007
	hash := prime
	// keys are sorted, so iteration order is canonical
	for _, k := range t.keys {
		h := fnv.New64a()
		_, _ = h.Write([]byte(k))
		hash = hash*31 ^ (h.Sum64()*37 + t.valueFor[k].Hash())
		if t.readonlyFor[k] {
			hash = hash*31 + 7919
		}
	}
	return hash
}
