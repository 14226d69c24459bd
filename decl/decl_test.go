package decl

import (
	"strings"
	"testing"

	"github.com/shapecheck/shapecheck/shape"
	"github.com/shapecheck/shapecheck/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesDoc = `
types:
  Square:
    kind: object
    fields:
      - name: kind
        type: {kind: literal, of: string, text: square}
      - name: width
        type: {kind: primitive, name: number}
  Rectangle:
    kind: object
    fields:
      - name: kind
        type: {kind: literal, of: string, text: rectangle}
      - name: width
        type: {kind: primitive, name: number}
      - name: height
        type: {kind: primitive, name: number}
  Shape:
    kind: union
    members:
      - ref: Square
      - ref: Rectangle
  Points:
    kind: array
    readonly: true
    elem:
      kind: tuple
      elems:
        - type: {kind: primitive, name: number}
        - type: {kind: primitive, name: number}
          optional: true
  Lookup:
    kind: object
    fields:
      - name: total
        type: {kind: primitive, name: number}
        readonly: true
    index:
      key: string
      value: {kind: primitive, name: number}
  Flags:
    kind: mapped
    entries:
      width: {kind: literal, of: boolean, text: "true"}
      height: {kind: literal, of: boolean, text: "false"}
    readonlyKeys: [height]
tracks:
  - source: Rectangle
    companion: Flags
`

func TestLoadResolvesEveryVariant(t *testing.T) {
	reg, err := Load(strings.NewReader(shapesDoc))
	require.NoError(t, err)

	num := shape.Primitive{Name: "number"}
	str := shape.Primitive{Name: "string"}

	square, ok := reg.Lookup("Square")
	require.True(t, ok)
	assert.True(t, shape.Equal(square, shape.Object{Fields: []shape.Field{
		{Name: "kind", Type: shape.Literal{Kind: "string", Text: "square"}},
		{Name: "width", Type: num},
	}}), "got %s", square)

	shapeUnion, ok := reg.Lookup("Shape")
	require.True(t, ok)
	union, isUnion := shapeUnion.(shape.Union)
	require.True(t, isUnion)
	require.Len(t, union.Members, 2)
	assert.True(t, shape.Equal(union.Members[0], square))

	points, ok := reg.Lookup("Points")
	require.True(t, ok)
	assert.True(t, shape.Equal(points, shape.Array{
		Readonly: true,
		Elem: shape.Tuple{Elems: []shape.TupleElem{
			{Type: num},
			{Type: num, Optional: true},
		}},
	}), "got %s", points)

	lookup, ok := reg.Lookup("Lookup")
	require.True(t, ok)
	assert.True(t, shape.Equal(lookup, shape.Object{
		Fields: []shape.Field{{Name: "total", Type: num, Readonly: true}},
		Index:  &shape.IndexSignature{Key: str, Value: num},
	}), "got %s", lookup)

	flags, ok := reg.Lookup("Flags")
	require.True(t, ok)
	mapped, isMapped := flags.(shape.Mapped)
	require.True(t, isMapped)
	assert.Equal(t, []string{"height", "width"}, mapped.Keys())
	assert.True(t, mapped.ReadonlyFor("height"))
	assert.False(t, mapped.ReadonlyFor("width"))

	assert.Equal(t, []util.Pair[string, string]{util.NewPair("Rectangle", "Flags")}, reg.Tracks())
	assert.Equal(t, []string{"Flags", "Lookup", "Points", "Rectangle", "Shape", "Square"}, reg.Names())
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name          string
		doc           string
		shouldContain string
	}{
		{
			name: "reference cycle",
			doc: `
types:
  A:
    kind: array
    elem: {ref: B}
  B:
    kind: array
    elem: {ref: A}
`,
			shouldContain: "cycle",
		},
		{
			name: "unknown reference",
			doc: `
types:
  A:
    kind: array
    elem: {ref: Missing}
`,
			shouldContain: `unknown type "Missing"`,
		},
		{
			name: "unknown kind",
			doc: `
types:
  A: {kind: rope}
`,
			shouldContain: `unknown kind "rope"`,
		},
		{
			name: "empty union",
			doc: `
types:
  A: {kind: union}
`,
			shouldContain: "at least one member",
		},
		{
			name: "duplicate field",
			doc: `
types:
  A:
    kind: object
    fields:
      - name: x
        type: {kind: primitive, name: number}
      - name: x
        type: {kind: primitive, name: number}
`,
			shouldContain: `duplicate field "x"`,
		},
		{
			name: "bad index key domain",
			doc: `
types:
  A:
    kind: object
    index:
      key: boolean
      value: {kind: primitive, name: number}
`,
			shouldContain: "index key domain",
		},
		{
			name: "readonlyKeys without entry",
			doc: `
types:
  A:
    kind: mapped
    entries:
      x: {kind: literal, of: boolean, text: "true"}
    readonlyKeys: [y]
`,
			shouldContain: "not an entry",
		},
		{
			name: "tracks companion must be mapped",
			doc: `
types:
  A:
    kind: object
    fields:
      - name: x
        type: {kind: primitive, name: number}
  B: {kind: primitive, name: number}
tracks:
  - source: A
    companion: B
`,
			shouldContain: "must be a mapped type",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(testCase.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.shouldContain)
		})
	}
}
