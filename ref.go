package cqlrt

import "sync/atomic"

// outstandingRefs is the process-wide diagnostic counter described in §4.A.
// It is incremented on each successful allocation and each Retain, and
// decremented on each Release; Release asserts that the released
// reference's own count never goes negative.
// Not used for anything but leak detection in tests.
var outstandingRefs atomic.Int64

// OutstandingRefs returns the current value of the diagnostic counter.
func OutstandingRefs() int64 {
	return outstandingRefs.Load()
}

// ResetOutstandingRefs zeroes the diagnostic counter. Tests call this
// between cases so each one starts from a known baseline.
func ResetOutstandingRefs() {
	outstandingRefs.Store(0)
}

// Kind identifies the dynamic type of a Ref header (§3).
type Kind uint8

// The four reference kinds sharing the common header.
const (
	KindString Kind = iota
	KindBlob
	KindResultSet
	KindObject
)

// String renders the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBlob:
		return "Blob"
	case KindResultSet:
		return "ResultSet"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Ref is the common header every heap-allocated, sharable runtime value
// embeds (§3). Single-threaded semantics are assumed (§5): refCount
// manipulation is not atomic.
type Ref struct {
	kind     Kind
	refCount int64
	finalize func()
	sentinel bool // true for statically-allocated literals; Release is a no-op
	payload  any  // kind-specific data; see value.go accessors
}

// NewRef initializes a header with ref_count 1 and registers it with the
// outstanding-refs counter. finalize may be nil.
func NewRef(kind Kind, payload any, finalize func()) *Ref {
	outstandingRefs.Add(1)
	return &Ref{kind: kind, refCount: 1, payload: payload, finalize: finalize}
}

// NewSentinelRef returns a header with a ref_count that never reaches
// zero — the "String literals may be statically allocated with a sentinel
// ref_count" case in §3. Retain/Release on it are no-ops and it is never
// counted in OutstandingRefs.
func NewSentinelRef(kind Kind) *Ref {
	return &Ref{kind: kind, refCount: 1, sentinel: true}
}

// Kind returns the reference's kind.
func (r *Ref) Kind() Kind {
	if r == nil {
		return 0
	}
	return r.kind
}

// Count returns the current reference count, for tests.
func (r *Ref) Count() int64 {
	if r == nil {
		return 0
	}
	return r.refCount
}

// Retain increments r's reference count. Retain of nil is a no-op (§3).
func Retain(r *Ref) {
	if r == nil || r.sentinel {
		return
	}
	r.refCount++
	outstandingRefs.Add(1)
}

// Release decrements r's reference count and the diagnostic counter, and
// runs the finalizer exactly once, when the count reaches zero. Release of
// nil is a no-op (§3). A ref count going negative is a contract violation.
func Release(r *Ref) {
	if r == nil || r.sentinel {
		return
	}
	r.refCount--
	Contract(r.refCount >= 0, "release: ref_count went negative for kind %s", r.kind)
	outstandingRefs.Add(-1)
	if r.refCount == 0 {
		if r.finalize != nil {
			r.finalize()
		}
	}
}

// RefEqual compares two references of possibly-different kinds. Two
// references of the same kind are equal if pointer-equal; otherwise
// dispatch by kind to the kind's equality function (only defined for
// String and Blob per §4.A). nil == nil is true.
func RefEqual(a, b *Ref) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return stringFromRef(a).equal(stringFromRef(b))
	case KindBlob:
		return blobFromRef(a).equal(blobFromRef(b))
	default:
		return false
	}
}

// RefHash dispatches to the kind's hash function. Only String and Blob
// define a hash; every other kind, and nil, hashes to 0.
func RefHash(r *Ref) uint64 {
	if r == nil {
		return 0
	}
	switch r.kind {
	case KindString:
		return stringFromRef(r).hash()
	case KindBlob:
		return blobFromRef(r).hash()
	default:
		return 0
	}
}
