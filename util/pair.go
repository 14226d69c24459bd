package util

// Pair is a 2-tuple, used where a named struct would be noise
// (such as the source/companion name pairs a decl file tracks).
type Pair[A, B any] struct {
	Fst A
	Snd B
}

func NewPair[A, B any](fst A, snd B) Pair[A, B] {
	return Pair[A, B]{
		Fst: fst,
		Snd: snd,
	}
}
