package util

import "slices"

// Stack backs the path tracking of the assignability checker: a step is
// pushed when descending into a field and popped on the way out, and
// Items is snapshotted when a check fails at the current depth.
type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) == 0 {
		return ret, false
	}
	last := len(s.items) - 1
	ret = s.items[last]
	s.items = s.items[:last]
	return ret, true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}

// Items returns a copy of the stack contents, bottom first.
func (s *Stack[A]) Items() []A {
	return slices.Clone(s.items)
}
