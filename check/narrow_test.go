package check

import (
	"testing"

	"github.com/shapecheck/shapecheck/diag"
	"github.com/shapecheck/shapecheck/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrowByTag(t *testing.T) {
	got, err := Narrow(shapes, NarrowingContext{
		DiscriminantField: "kind",
		DiscriminantValue: "rectangle",
	})
	require.NoError(t, err)
	assert.True(t, shape.Equal(got, rectangle), "got %s", got)

	got, err = Narrow(shapes, NarrowingContext{
		DiscriminantField: "kind",
		DiscriminantValue: "square",
	})
	require.NoError(t, err)
	assert.True(t, shape.Equal(got, square), "got %s", got)
}

func TestNarrowByTagUnknownValue(t *testing.T) {
	_, err := Narrow(shapes, NarrowingContext{
		DiscriminantField: "kind",
		DiscriminantValue: "circle",
	})
	var noMatch diag.NoneMatched
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, diag.NoMatch, noMatch.DiagCode())
	assert.Equal(t, "kind", noMatch.Field)
}

func TestNarrowByTagDuplicateTagIsAmbiguous(t *testing.T) {
	dup := shape.NewUnion(square, obj(
		field("kind", shape.Literal{Kind: "string", Text: "square"}),
		field("side", num),
	))
	_, err := Narrow(dup, NarrowingContext{
		DiscriminantField: "kind",
		DiscriminantValue: "square",
	})
	var ambiguous diag.Ambiguous
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Members, 2)
}

func TestNarrowByTagRequiresLiteralTags(t *testing.T) {
	testCases := []struct {
		name  string
		union shape.Union
	}{
		{
			name:  "member without the tag field",
			union: shape.NewUnion(square, obj(field("width", num))),
		},
		{
			name:  "tag field not literal-typed",
			union: shape.NewUnion(square, obj(field("kind", str))),
		},
		{
			name:  "non-object member",
			union: shape.NewUnion(square, num),
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Narrow(testCase.union, NarrowingContext{
				DiscriminantField: "kind",
				DiscriminantValue: "square",
			})
			var invalid diag.Invalid
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNarrowByPresence(t *testing.T) {
	circle := obj(field("radius", num))
	withLabel := obj(field("label", str), optField("radius", num))
	u := shape.NewUnion(circle, withLabel)

	got, err := Narrow(u, NarrowingContext{PresenceField: "label"})
	require.NoError(t, err)
	assert.True(t, shape.Equal(got, withLabel))

	// an optional declaration does not count as requiring the field
	got, err = Narrow(u, NarrowingContext{PresenceField: "radius"})
	require.NoError(t, err)
	assert.True(t, shape.Equal(got, circle))
}

func TestNarrowByPresenceAmbiguous(t *testing.T) {
	u := shape.NewUnion(
		obj(field("id", num), field("a", num)),
		obj(field("id", num), field("b", num)),
	)
	_, err := Narrow(u, NarrowingContext{PresenceField: "id"})
	var ambiguous diag.Ambiguous
	require.ErrorAs(t, err, &ambiguous)
}

func TestNarrowByPresenceNoMatch(t *testing.T) {
	_, err := Narrow(shapes, NarrowingContext{PresenceField: "radius"})
	var noMatch diag.NoneMatched
	require.ErrorAs(t, err, &noMatch)
}

func TestNarrowContextValidation(t *testing.T) {
	testCases := []struct {
		name string
		nc   NarrowingContext
	}{
		{"no strategy", NarrowingContext{}},
		{"both strategies", NarrowingContext{DiscriminantField: "kind", PresenceField: "width"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Narrow(shapes, testCase.nc)
			var invalid diag.Invalid
			require.ErrorAs(t, err, &invalid)
		})
	}

	t.Run("empty union", func(t *testing.T) {
		_, err := Narrow(shape.Union{}, NarrowingContext{PresenceField: "width"})
		var invalid diag.Invalid
		require.ErrorAs(t, err, &invalid)
	})
}
