package container

import (
	"math"

	"github.com/cqlrt/cqlrt"
)

func doubleToBits(v float64) int64 { return int64(math.Float64bits(v)) }
func bitsToDouble(bits int64) float64 { return math.Float64frombits(uint64(bits)) }

// Facets is a string -> int64 map with insert-or-get-existing semantics,
// the bookkeeping structure schema migration uses to assign stable
// ordinal facet ids to columns/tables it has already seen (spec §4.H).
type Facets struct {
	m *Map[string, int64]
}

// NewFacets constructs an empty Facets map.
func NewFacets() *Facets {
	return &Facets{m: New[string, int64](Callbacks[string, int64]{})}
}

// Add inserts name with value if absent and returns value; if name is
// already present, returns its existing value unchanged.
func (f *Facets) Add(name string, value int64) int64 {
	if existing, ok := f.m.Find(name); ok {
		return existing
	}
	f.m.Add(name, value)
	return value
}

// Find reports name's stored value, if any.
func (f *Facets) Find(name string) (int64, bool) { return f.m.Find(name) }

// Count returns the number of distinct names recorded.
func (f *Facets) Count() int { return f.m.Count() }

// StringDict is a string -> string map (spec §4.H).
type StringDict struct {
	m *Map[string, string]
}

// NewStringDict constructs an empty StringDict.
func NewStringDict() *StringDict {
	return &StringDict{m: New[string, string](Callbacks[string, string]{})}
}

func (d *StringDict) Add(key, value string) bool    { return d.m.Add(key, value) }
func (d *StringDict) Upsert(key, value string)       { d.m.Upsert(key, value) }
func (d *StringDict) Find(key string) (string, bool) { return d.m.Find(key) }
func (d *StringDict) Count() int                     { return d.m.Count() }

// LongDict is a string -> int64 map (spec §4.H).
type LongDict struct {
	m *Map[string, int64]
}

// NewLongDict constructs an empty LongDict.
func NewLongDict() *LongDict {
	return &LongDict{m: New[string, int64](Callbacks[string, int64]{})}
}

func (d *LongDict) Add(key string, value int64) bool   { return d.m.Add(key, value) }
func (d *LongDict) Upsert(key string, value int64)      { d.m.Upsert(key, value) }
func (d *LongDict) Find(key string) (int64, bool)       { return d.m.Find(key) }
func (d *LongDict) Count() int                          { return d.m.Count() }

// RealDict is a string -> double map that stores each double's IEEE 754
// bit pattern in an int64 slot internally, per spec §4.H's requirement
// that the real dictionary "must ensure round-trip equivalence" — a
// plain float64 field would do that too, but the bit-pattern slot keeps
// RealDict's storage representation identical to LongDict's, the same
// from_bits/to_bits encapsulation §9 calls for around reused storage.
type RealDict struct {
	m *Map[string, int64]
}

// NewRealDict constructs an empty RealDict.
func NewRealDict() *RealDict {
	return &RealDict{m: New[string, int64](Callbacks[string, int64]{})}
}

func (d *RealDict) Add(key string, value float64) bool {
	return d.m.Add(key, doubleToBits(value))
}
func (d *RealDict) Upsert(key string, value float64) {
	d.m.Upsert(key, doubleToBits(value))
}
func (d *RealDict) Find(key string) (float64, bool) {
	bits, ok := d.m.Find(key)
	if !ok {
		return 0, false
	}
	return bitsToDouble(bits), true
}
func (d *RealDict) Count() int { return d.m.Count() }

// ObjectDict is a string -> *cqlrt.Ref map for object-typed values
// (spec §4.H). Stored refs are retained on insert/replace and released
// when overwritten or when the dict itself is torn down.
type ObjectDict struct {
	m *Map[string, *cqlrt.Ref]
}

// NewObjectDict constructs an empty ObjectDict.
func NewObjectDict() *ObjectDict {
	cb := Callbacks[string, *cqlrt.Ref]{
		RetainVal:  retainRef,
		ReleaseVal: releaseRef,
	}
	return &ObjectDict{m: New[string, *cqlrt.Ref](cb)}
}

func (d *ObjectDict) Add(key string, value *cqlrt.Ref) bool { return d.m.Add(key, value) }
func (d *ObjectDict) Upsert(key string, value *cqlrt.Ref)    { d.m.Upsert(key, value) }
func (d *ObjectDict) Find(key string) (*cqlrt.Ref, bool)     { return d.m.Find(key) }
func (d *ObjectDict) Count() int                             { return d.m.Count() }
func (d *ObjectDict) Release()                               { d.m.Release() }

// BlobDict is a string -> *cqlrt.Ref (blob-kind) map (spec §4.H), with
// the same retain/release discipline as ObjectDict.
type BlobDict struct {
	m *Map[string, *cqlrt.Ref]
}

// NewBlobDict constructs an empty BlobDict.
func NewBlobDict() *BlobDict {
	cb := Callbacks[string, *cqlrt.Ref]{
		RetainVal:  retainRef,
		ReleaseVal: releaseRef,
	}
	return &BlobDict{m: New[string, *cqlrt.Ref](cb)}
}

func (d *BlobDict) Add(key string, value *cqlrt.Ref) bool { return d.m.Add(key, value) }
func (d *BlobDict) Upsert(key string, value *cqlrt.Ref)    { d.m.Upsert(key, value) }
func (d *BlobDict) Find(key string) (*cqlrt.Ref, bool)     { return d.m.Find(key) }
func (d *BlobDict) Count() int                             { return d.m.Count() }
func (d *BlobDict) Release()                               { d.m.Release() }

func retainRef(r *cqlrt.Ref) *cqlrt.Ref {
	cqlrt.Retain(r)
	return r
}

func releaseRef(r *cqlrt.Ref) {
	cqlrt.Release(r)
}
