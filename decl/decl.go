// Package decl loads shape declarations from YAML documents and
// resolves them into immutable shape trees. It is the
// declaration-processing stage in front of the engine: the engine
// itself never parses anything.
package decl

import (
	"io"
	"maps"
	"os"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
	"github.com/shapecheck/shapecheck/shape"
	"github.com/shapecheck/shapecheck/util"
	"gopkg.in/yaml.v3"
)

// file is the YAML document root.
type file struct {
	Types  map[string]*node `yaml:"types"`
	Tracks []trackNode      `yaml:"tracks"`
}

type trackNode struct {
	Source    string `yaml:"source"`
	Companion string `yaml:"companion"`
}

// node is one type expression. Kind selects the variant; ref points at
// a named declaration instead.
type node struct {
	Kind string `yaml:"kind"`
	Ref  string `yaml:"ref"`

	Name string `yaml:"name"` // primitive
	Of   string `yaml:"of"`   // literal domain
	Text string `yaml:"text"` // literal spelling

	Readonly bool `yaml:"readonly"`

	Fields []fieldNode `yaml:"fields"` // object
	Index  *indexNode  `yaml:"index"`

	Elem    *node      `yaml:"elem"`    // array
	Elems   []elemNode `yaml:"elems"`   // tuple
	Members []*node    `yaml:"members"` // union

	Entries      map[string]*node `yaml:"entries"` // mapped
	ReadonlyKeys []string         `yaml:"readonlyKeys"`
}

type fieldNode struct {
	Name     string `yaml:"name"`
	Type     *node  `yaml:"type"`
	Readonly bool   `yaml:"readonly"`
	Optional bool   `yaml:"optional"`
}

type indexNode struct {
	Key      string `yaml:"key"`
	Value    *node  `yaml:"value"`
	Readonly bool   `yaml:"readonly"`
}

type elemNode struct {
	Type     *node `yaml:"type"`
	Readonly bool  `yaml:"readonly"`
	Optional bool  `yaml:"optional"`
}

// Registry holds the resolved declarations of one document. The
// backing map is immutable, so a Registry may be shared across
// goroutines freely once Load returns.
type Registry struct {
	types  *immutable.Map[string, shape.Type]
	tracks []util.Pair[string, string]
}

func (r *Registry) Lookup(name string) (shape.Type, bool) {
	return r.types.Get(name)
}

// Names returns the declared type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.types.Len())
	itr := r.types.Iterator()
	for !itr.Done() {
		name, _, _ := itr.Next()
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Tracks returns the (source, companion) pairs the document declares
// as key-synchronized.
func (r *Registry) Tracks() []util.Pair[string, string] {
	return slices.Clone(r.tracks)
}

func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open declarations at %s", path)
	}
	defer func() { _ = f.Close() }()
	reg, err := Load(f)
	return reg, errors.Wrapf(err, "in %s", path)
}

func Load(r io.Reader) (*Registry, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode declarations")
	}

	l := &loader{
		raw:        doc.Types,
		resolved:   make(map[string]shape.Type, len(doc.Types)),
		inProgress: make(map[string]bool),
	}
	builder := immutable.NewMapBuilder[string, shape.Type](nil)
	for _, name := range slices.Sorted(maps.Keys(doc.Types)) {
		t, err := l.resolveNamed(name)
		if err != nil {
			return nil, err
		}
		builder.Set(name, t)
	}

	reg := &Registry{types: builder.Map()}
	for _, tr := range doc.Tracks {
		src, ok := reg.Lookup(tr.Source)
		if !ok {
			return nil, errors.Errorf("tracks entry references unknown type %q", tr.Source)
		}
		if _, ok := src.(shape.Object); !ok {
			return nil, errors.Errorf("tracks source %q must be an object, got %s", tr.Source, src)
		}
		comp, ok := reg.Lookup(tr.Companion)
		if !ok {
			return nil, errors.Errorf("tracks entry references unknown type %q", tr.Companion)
		}
		if _, ok := comp.(shape.Mapped); !ok {
			return nil, errors.Errorf("tracks companion %q must be a mapped type, got %s", tr.Companion, comp)
		}
		reg.tracks = append(reg.tracks, util.NewPair(tr.Source, tr.Companion))
	}
	return reg, nil
}

type loader struct {
	raw        map[string]*node
	resolved   map[string]shape.Type
	inProgress map[string]bool
}

func (l *loader) resolveNamed(name string) (shape.Type, error) {
	if t, ok := l.resolved[name]; ok {
		return t, nil
	}
	if l.inProgress[name] {
		return nil, errors.Errorf("declaration cycle through %q", name)
	}
	raw, ok := l.raw[name]
	if !ok {
		return nil, errors.Errorf("unknown type %q", name)
	}
	l.inProgress[name] = true
	t, err := l.build(raw)
	delete(l.inProgress, name)
	if err != nil {
		return nil, errors.Wrapf(err, "in type %q", name)
	}
	l.resolved[name] = t
	return t, nil
}

func (l *loader) build(n *node) (shape.Type, error) {
	if n == nil {
		return nil, errors.New("missing type expression")
	}
	if n.Ref != "" {
		return l.resolveNamed(n.Ref)
	}
	switch n.Kind {
	case "primitive":
		if n.Name == "" {
			return nil, errors.New("primitive needs a name")
		}
		return shape.Primitive{Name: n.Name}, nil
	case "literal":
		if n.Of == "" {
			return nil, errors.New("literal needs its primitive domain in 'of'")
		}
		return shape.Literal{Kind: n.Of, Text: n.Text}, nil
	case "object":
		return l.buildObject(n)
	case "array":
		elem, err := l.build(n.Elem)
		if err != nil {
			return nil, errors.Wrap(err, "in array element")
		}
		return shape.Array{Elem: elem, Readonly: n.Readonly}, nil
	case "tuple":
		elems := make([]shape.TupleElem, len(n.Elems))
		for i, e := range n.Elems {
			t, err := l.build(e.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "in tuple position %d", i)
			}
			elems[i] = shape.TupleElem{Type: t, Readonly: e.Readonly, Optional: e.Optional}
		}
		return shape.Tuple{Elems: elems}, nil
	case "union":
		if len(n.Members) == 0 {
			return nil, errors.New("union needs at least one member")
		}
		members := make([]shape.Type, len(n.Members))
		for i, m := range n.Members {
			t, err := l.build(m)
			if err != nil {
				return nil, errors.Wrapf(err, "in union member %d", i)
			}
			members[i] = t
		}
		return shape.NewUnion(members...), nil
	case "mapped":
		values := make(map[string]shape.Type, len(n.Entries))
		for k, v := range n.Entries {
			t, err := l.build(v)
			if err != nil {
				return nil, errors.Wrapf(err, "in mapped entry %q", k)
			}
			values[k] = t
		}
		readonly := make(map[string]bool, len(n.ReadonlyKeys))
		for _, k := range n.ReadonlyKeys {
			if _, ok := values[k]; !ok {
				return nil, errors.Errorf("readonlyKeys lists %q which is not an entry", k)
			}
			readonly[k] = true
		}
		return shape.NewMapped(values, readonly), nil
	case "":
		return nil, errors.New("type expression needs a kind or a ref")
	}
	return nil, errors.Errorf("unknown kind %q", n.Kind)
}

func (l *loader) buildObject(n *node) (shape.Type, error) {
	fields := make([]shape.Field, len(n.Fields))
	seen := make(map[string]bool, len(n.Fields))
	for i, f := range n.Fields {
		if f.Name == "" {
			return nil, errors.Errorf("field %d needs a name", i)
		}
		if seen[f.Name] {
			return nil, errors.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		t, err := l.build(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "in field %q", f.Name)
		}
		fields[i] = shape.Field{Name: f.Name, Type: t, Readonly: f.Readonly, Optional: f.Optional}
	}
	var index *shape.IndexSignature
	if n.Index != nil {
		if n.Index.Key != "string" && n.Index.Key != "number" {
			return nil, errors.Errorf("index key domain must be string or number, got %q", n.Index.Key)
		}
		value, err := l.build(n.Index.Value)
		if err != nil {
			return nil, errors.Wrap(err, "in index signature value")
		}
		index = &shape.IndexSignature{
			Key:      shape.Primitive{Name: n.Index.Key},
			Value:    value,
			Readonly: n.Index.Readonly,
		}
	}
	return shape.Object{Fields: fields, Index: index}, nil
}
