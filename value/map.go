package value

// Map is an insertion-ordered Value→Value mapping with structural-
// equality lookups. It is a small ordered association list rather than
// a Go map: RON map keys may be any Value, not just strings, so lookup
// has to walk entries comparing structurally rather than delegating to
// Go's built-in map key equality, and insertion order has to survive
// for round-tripping and for error messages that reference "the Nth
// entry."
type Map struct {
	keys []Value
	vals []Value
}

// NewMap returns an empty ordered map.
func NewMap() *Map { return &Map{} }

// Len is the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get looks up a value by structural key equality.
func (m *Map) Get(k Value) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	for i, existing := range m.keys {
		if existing.Equal(k) {
			return m.vals[i], true
		}
	}
	return Value{}, false
}

// Set inserts or overwrites an entry, preserving first-insertion order
// for updates and appending new keys at the end.
func (m *Map) Set(k, v Value) {
	for i, existing := range m.keys {
		if existing.Equal(k) {
			m.vals[i] = v
			return
		}
	}
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Append inserts a new entry without checking for a duplicate key,
// used while parsing so a DuplicateMapKey error can be raised by the
// caller instead of silently overwriting; RON permits duplicate keys
// to appear syntactically even though most consumers will reject them.
func (m *Map) Append(k, v Value) {
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Range calls f for every entry in insertion order, stopping early if
// f returns false.
func (m *Map) Range(f func(k, v Value) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !f(k, m.vals[i]) {
			return
		}
	}
}

// HasDuplicateKey reports whether any two entries share a structurally
// equal key.
func (m *Map) HasDuplicateKey() (Value, bool) {
	for i, k := range m.keys {
		for j := 0; j < i; j++ {
			if m.keys[j].Equal(k) {
				return k, true
			}
		}
	}
	return Value{}, false
}

// Equal reports whether two maps have the same entries in the same
// order (RON map equality is order-sensitive at the Value level, like
// every other composite kind here).
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i := range m.keys {
		if !m.keys[i].Equal(o.keys[i]) || !m.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}
