package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathString(t *testing.T) {
	testCases := []struct {
		name string
		path Path
		want string
	}{
		{"empty", nil, "<root>"},
		{"fields", Path{FieldStep("user"), FieldStep("id")}, "user.id"},
		{"field then index", Path{FieldStep("items"), IndexStep("[2]")}, "items[2]"},
		{"index then field", Path{IndexStep("[elem]"), FieldStep("id")}, "[elem].id"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, testCase.path.String())
		})
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Assignability(Path{FieldStep("user"), FieldStep("id")}, FieldTypeMismatch, "number is not assignable to string")
	assert.Equal(t, "(E002) user.id: number is not assignable to string", d.String())

	d = Assignability(nil, MissingField, "")
	assert.Equal(t, "(E001) <root>: types are not assignable", d.String())
}

func TestDriftMessage(t *testing.T) {
	d := Drift([]string{"a", "b"}, nil)
	assert.Equal(t, KeySetDrift, d.Code)
	assert.Equal(t, "missing in companion: a, b", d.Message)

	d = Drift([]string{"a"}, []string{"z"})
	assert.Equal(t, "missing in companion: a; extra in companion: z", d.Message)
}

func TestNarrowingDiagnostic(t *testing.T) {
	d := Narrowing(NoneMatched{Field: "kind", Value: "circle"})
	assert.Equal(t, NoMatch, d.Code)
	assert.Contains(t, d.Message, "circle")

	d = Narrowing(Ambiguous{Field: "id", Members: []string{"{a}", "{b}"}})
	assert.Equal(t, AmbiguousNarrowing, d.Code)
}

func TestFormatWithCode(t *testing.T) {
	assert.Equal(t, "(E009) invalid type graph: union with zero members",
		FormatWithCode(Invalid{Reason: "union with zero members"}))
}

func TestReportAggregation(t *testing.T) {
	var r *Report
	assert.False(t, r.HasError())
	assert.Empty(t, r.Diagnostics())

	r = r.With(Assignability(nil, MissingField, "x"))
	assert.True(t, r.HasError())

	other := (&Report{}).With(Drift([]string{"y"}, nil))
	merged := r.Merge(other)
	assert.Len(t, merged.Diagnostics(), 2)

	assert.Same(t, merged, merged.Merge(nil))
	assert.Same(t, merged, merged.Merge(&Report{}))
}

func TestRenderTextSortsAndDedupes(t *testing.T) {
	r := (&Report{}).With(
		Assignability(Path{FieldStep("b")}, MissingField, "later"),
		Assignability(Path{FieldStep("a")}, MissingField, "earlier"),
		Assignability(Path{FieldStep("b")}, MissingField, "later"),
	)
	want := "(E001) a: earlier\n(E001) b: later\n"
	assert.Equal(t, want, RenderText(r))

	assert.Empty(t, RenderText(nil))
	assert.Empty(t, RenderText(&Report{}))
}
