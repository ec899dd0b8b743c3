// Package container implements the generic closed hash map and typed
// lists generated code relies on for schema-migration bookkeeping and
// intermediate result accumulation (spec §4.H): one generic Map[K, V]
// parameterized by six callbacks, specialized into Facets, StringDict,
// LongDict, RealDict, ObjectDict, BlobDict, and fixed-cell Lists.
package container

// Callbacks parameterizes Map's storage semantics: how keys hash and
// compare, and how keys/values are retained and released as entries are
// added, replaced, or the map itself torn down. Any callback may be nil
// to mean "no-op" (plain scalar keys/values need no retain/release).
type Callbacks[K comparable, V any] struct {
	HashKey    func(K) uint64
	KeyEqual   func(a, b K) bool
	RetainKey  func(K) K
	RetainVal  func(V) V
	ReleaseKey func(K)
	ReleaseVal func(V)
}

type entry[K comparable, V any] struct {
	used  bool
	key   K
	value V
}

// Map is a closed (open-addressing, linear-probing), no-delete hash map
// (spec §4.H). It rehashes once the load factor exceeds 0.75.
type Map[K comparable, V any] struct {
	cb      Callbacks[K, V]
	entries []entry[K, V]
	count   int
}

const initialCapacity = 8

// New constructs an empty Map using cb for hashing, comparison, and
// retain/release bookkeeping.
func New[K comparable, V any](cb Callbacks[K, V]) *Map[K, V] {
	return &Map[K, V]{
		cb:      cb,
		entries: make([]entry[K, V], initialCapacity),
	}
}

// Count returns the number of entries currently stored.
func (m *Map[K, V]) Count() int { return m.count }

func (m *Map[K, V]) hash(k K) uint64 {
	if m.cb.HashKey != nil {
		return m.cb.HashKey(k)
	}
	return defaultHash(k)
}

func (m *Map[K, V]) keyEqual(a, b K) bool {
	if m.cb.KeyEqual != nil {
		return m.cb.KeyEqual(a, b)
	}
	return any(a) == any(b)
}

// slotFor returns the index of k's existing entry (found=true) or the
// first empty slot on its probe sequence (found=false).
func (m *Map[K, V]) slotFor(k K) (idx int, found bool) {
	n := len(m.entries)
	start := int(m.hash(k) % uint64(n))
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		e := &m.entries[idx]
		if !e.used {
			return idx, false
		}
		if m.keyEqual(e.key, k) {
			return idx, true
		}
	}
	// unreachable under the 0.75 load factor invariant.
	return -1, false
}

func (m *Map[K, V]) maybeRehash() {
	if float64(m.count+1) <= 0.75*float64(len(m.entries)) {
		return
	}
	old := m.entries
	m.entries = make([]entry[K, V], len(old)*2)
	for _, e := range old {
		if !e.used {
			continue
		}
		idx, _ := m.slotFor(e.key)
		m.entries[idx] = e
	}
}

// Add inserts key/value and returns true, or returns false without
// modifying the map if key is already present.
func (m *Map[K, V]) Add(key K, value V) bool {
	m.maybeRehash()
	idx, found := m.slotFor(key)
	if found {
		return false
	}
	if m.cb.RetainKey != nil {
		key = m.cb.RetainKey(key)
	}
	if m.cb.RetainVal != nil {
		value = m.cb.RetainVal(value)
	}
	m.entries[idx] = entry[K, V]{used: true, key: key, value: value}
	m.count++
	return true
}

// Upsert inserts key/value if absent, or replaces the existing value
// (releasing the old one and retaining the new) if present.
func (m *Map[K, V]) Upsert(key K, value V) {
	if idx, found := m.slotFor(key); found {
		if m.cb.ReleaseVal != nil {
			m.cb.ReleaseVal(m.entries[idx].value)
		}
		if m.cb.RetainVal != nil {
			value = m.cb.RetainVal(value)
		}
		m.entries[idx].value = value
		return
	}
	m.maybeRehash()
	idx, found := m.slotFor(key)
	if found {
		if m.cb.ReleaseVal != nil {
			m.cb.ReleaseVal(m.entries[idx].value)
		}
		if m.cb.RetainVal != nil {
			value = m.cb.RetainVal(value)
		}
		m.entries[idx].value = value
		return
	}
	if m.cb.RetainKey != nil {
		key = m.cb.RetainKey(key)
	}
	if m.cb.RetainVal != nil {
		value = m.cb.RetainVal(value)
	}
	m.entries[idx] = entry[K, V]{used: true, key: key, value: value}
	m.count++
}

// Find returns the stored value for key and true, or the zero value and
// false if absent.
func (m *Map[K, V]) Find(key K) (V, bool) {
	idx, found := m.slotFor(key)
	if !found {
		var zero V
		return zero, false
	}
	return m.entries[idx].value, true
}

// Each calls fn once per stored entry, in storage (not insertion) order.
func (m *Map[K, V]) Each(fn func(key K, value V)) {
	for _, e := range m.entries {
		if e.used {
			fn(e.key, e.value)
		}
	}
}

// Release invokes ReleaseKey/ReleaseVal on every stored entry and empties
// the map. Call when the map itself is being torn down.
func (m *Map[K, V]) Release() {
	for i := range m.entries {
		e := &m.entries[i]
		if !e.used {
			continue
		}
		if m.cb.ReleaseKey != nil {
			m.cb.ReleaseKey(e.key)
		}
		if m.cb.ReleaseVal != nil {
			m.cb.ReleaseVal(e.value)
		}
		*e = entry[K, V]{}
	}
	m.count = 0
}

func defaultHash(k any) uint64 {
	switch v := k.(type) {
	case string:
		return djb2([]byte(v))
	case int64:
		return uint64(v)
	case int:
		return uint64(v)
	default:
		return 0
	}
}

func djb2(data []byte) uint64 {
	h := uint64(5381)
	for _, b := range data {
		h = h*33 ^ uint64(b)
	}
	return h
}
