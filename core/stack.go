package core

// Stack is a slice-backed LIFO. The zero value is an empty stack.
type Stack[T any] struct {
	items []T
}

// Push places v on top.
func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top element.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, false
	}

	v := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return v, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the depth.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Snapshot returns the elements top first, leaving the stack untouched.
func (s *Stack[T]) Snapshot() []T {
	out := make([]T, len(s.items))
	for i, v := range s.items {
		out[len(s.items)-1-i] = v
	}
	return out
}

// Drain empties the stack and returns its elements top first.
func (s *Stack[T]) Drain() []T {
	out := s.Snapshot()
	clear(s.items)
	s.items = s.items[:0]
	return out
}
