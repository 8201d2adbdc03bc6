package panel

// Memo remembers the last value rendered into each named slot. The zero value
// of T stands for "absent", so a fresh Memo reports no change when asked to
// store an absent value.
type Memo[T comparable] struct {
	values map[string]T
}

// NewMemo returns an empty memo.
func NewMemo[T comparable]() *Memo[T] {
	return &Memo[T]{values: make(map[string]T)}
}

// Set stores v under name and reports whether it differs from the previous
// value. An unchanged value leaves the memo untouched.
func (m *Memo[T]) Set(name string, v T) bool {
	if m.values == nil {
		m.values = make(map[string]T)
	}
	var zero T
	prev, ok := m.values[name]
	if !ok {
		prev = zero
	}
	if prev == v {
		return false
	}
	if v == zero {
		delete(m.values, name)
	} else {
		m.values[name] = v
	}
	return true
}

// Get returns the stored value for name, or the zero value.
func (m *Memo[T]) Get(name string) T {
	return m.values[name]
}

// Len returns the number of non-absent values.
func (m *Memo[T]) Len() int {
	return len(m.values)
}

// Values copies the non-absent values.
func (m *Memo[T]) Values() map[string]T {
	out := make(map[string]T, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
