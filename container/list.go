package container

import "github.com/cqlrt/cqlrt"

// RefList is a growable list of retained references — the object/
// string/blob flavors of spec §4.H's "Lists": a slice of N cells, each
// holding one *cqlrt.Ref. Appending
// retains; overwriting via SetAt releases the displaced reference;
// Release (the list's own finalizer) releases every stored reference.
type RefList struct {
	items []*cqlrt.Ref
}

// NewRefList constructs an empty RefList.
func NewRefList() *RefList { return &RefList{} }

// Count returns the number of stored elements.
func (l *RefList) Count() int { return len(l.items) }

// Add appends v, retaining it.
func (l *RefList) Add(v *cqlrt.Ref) {
	cqlrt.Retain(v)
	l.items = append(l.items, v)
}

// SetAt replaces the element at i, retaining v and releasing the
// previous occupant. Panics with a *cqlrt.ContractViolation if i is out
// of range.
func (l *RefList) SetAt(i int, v *cqlrt.Ref) {
	cqlrt.Contract(i >= 0 && i < len(l.items), "RefList.SetAt: index %d out of range [0,%d)", i, len(l.items))
	cqlrt.Retain(v)
	cqlrt.Release(l.items[i])
	l.items[i] = v
}

// GetAt returns a borrowed (non-retained) reference to the element at i.
// Panics with a *cqlrt.ContractViolation if i is out of range.
func (l *RefList) GetAt(i int) *cqlrt.Ref {
	cqlrt.Contract(i >= 0 && i < len(l.items), "RefList.GetAt: index %d out of range [0,%d)", i, len(l.items))
	return l.items[i]
}

// Release releases every stored reference and empties the list.
func (l *RefList) Release() {
	for _, v := range l.items {
		cqlrt.Release(v)
	}
	l.items = nil
}

// LongList is a growable list of int64 — the scalar "long" flavor of
// spec §4.H's Lists.
type LongList struct {
	items []int64
}

// NewLongList constructs an empty LongList.
func NewLongList() *LongList { return &LongList{} }

// Count returns the number of stored elements.
func (l *LongList) Count() int { return len(l.items) }

// Add appends v.
func (l *LongList) Add(v int64) { l.items = append(l.items, v) }

// SetAt replaces the element at i. Panics with a *cqlrt.ContractViolation
// if i is out of range.
func (l *LongList) SetAt(i int, v int64) {
	cqlrt.Contract(i >= 0 && i < len(l.items), "LongList.SetAt: index %d out of range [0,%d)", i, len(l.items))
	l.items[i] = v
}

// GetAt returns the element at i. Panics with a *cqlrt.ContractViolation
// if i is out of range.
func (l *LongList) GetAt(i int) int64 {
	cqlrt.Contract(i >= 0 && i < len(l.items), "LongList.GetAt: index %d out of range [0,%d)", i, len(l.items))
	return l.items[i]
}

// RealList is a growable list of float64 — the scalar "real" flavor of
// spec §4.H's Lists. Values are stored directly (not bit-packed into an
// int64 slot); unlike RealDict, a RealList owns a dedicated element
// type and has no parallel LongList storage to stay shape-compatible
// with.
type RealList struct {
	items []float64
}

// NewRealList constructs an empty RealList.
func NewRealList() *RealList { return &RealList{} }

// Count returns the number of stored elements.
func (l *RealList) Count() int { return len(l.items) }

// Add appends v.
func (l *RealList) Add(v float64) { l.items = append(l.items, v) }

// SetAt replaces the element at i. Panics with a *cqlrt.ContractViolation
// if i is out of range.
func (l *RealList) SetAt(i int, v float64) {
	cqlrt.Contract(i >= 0 && i < len(l.items), "RealList.SetAt: index %d out of range [0,%d)", i, len(l.items))
	l.items[i] = v
}

// GetAt returns the element at i. Panics with a *cqlrt.ContractViolation
// if i is out of range.
func (l *RealList) GetAt(i int) float64 {
	cqlrt.Contract(i >= 0 && i < len(l.items), "RealList.GetAt: index %d out of range [0,%d)", i, len(l.items))
	return l.items[i]
}
