package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWidenReadonlyClearsEveryFlag(t *testing.T) {
	readonly := Object{
		Fields: []Field{
			{Name: "id", Type: num, Readonly: true},
			{Name: "tags", Type: Array{Elem: str, Readonly: true}, Readonly: true},
			{Name: "pos", Type: Tuple{Elems: []TupleElem{
				{Type: num, Readonly: true},
				{Type: num, Readonly: true},
			}}},
		},
		Index: &IndexSignature{Key: str, Value: num, Readonly: true},
	}
	mutable := Object{
		Fields: []Field{
			{Name: "id", Type: num},
			{Name: "tags", Type: Array{Elem: str}},
			{Name: "pos", Type: Tuple{Elems: []TupleElem{
				{Type: num},
				{Type: num},
			}}},
		},
		Index: &IndexSignature{Key: str, Value: num},
	}

	assert.True(t, Equal(WidenReadonly(readonly), mutable))
}

func TestWidenReadonlyDoesNotMutateInput(t *testing.T) {
	original := Object{Fields: []Field{{Name: "id", Type: num, Readonly: true}}}
	before := original.Hash()

	widened := WidenReadonly(original)

	assert.Equal(t, before, original.Hash())
	assert.True(t, original.Fields[0].Readonly)
	assert.False(t, Equal(widened, original))
}

func TestWidenReadonlyThroughUnionAndMapped(t *testing.T) {
	u := NewUnion(
		Array{Elem: num, Readonly: true},
		NewMapped(map[string]Type{"a": num}, map[string]bool{"a": true}),
	)
	want := NewUnion(
		Array{Elem: num},
		NewMapped(map[string]Type{"a": num}, nil),
	)
	assert.True(t, Equal(WidenReadonly(u), want))
}
