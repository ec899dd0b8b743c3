// Package box implements the boxed any-value type of spec §4.J: a single
// container capable of holding any one of the core scalar or reference
// types, used where generated code needs a uniform "any column value"
// slot (out-parameters of dynamic type, notification payloads).
package box

import (
	"github.com/cqlrt/cqlrt"
)

// Box holds exactly one value of one of the supported core types: Null,
// Bool, Int32, Int64, Double, String, Blob, Object. A Box returned by New*
// is always non-nil; the Null case is represented by a Box whose Type is
// cqlrt.CoreNull, not by a nil *Box.
type Box struct {
	typ cqlrt.CoreType
	i64 int64
	f64 float64
	ref *cqlrt.Ref // retained; set for String, Blob, Object
}

// NewNull returns a Box holding Null.
func NewNull() *Box {
	return &Box{typ: cqlrt.CoreNull}
}

// NewBool boxes a bool, or Null if present is false (the "creating a box
// from a null nullable stores Null" rule).
func NewBool(v bool, present bool) *Box {
	if !present {
		return NewNull()
	}
	i := int64(0)
	if v {
		i = 1
	}
	return &Box{typ: cqlrt.CoreBool, i64: i}
}

// NewInt32 boxes an int32, or Null if present is false.
func NewInt32(v int32, present bool) *Box {
	if !present {
		return NewNull()
	}
	return &Box{typ: cqlrt.CoreInt32, i64: int64(v)}
}

// NewInt64 boxes an int64, or Null if present is false.
func NewInt64(v int64, present bool) *Box {
	if !present {
		return NewNull()
	}
	return &Box{typ: cqlrt.CoreInt64, i64: v}
}

// NewDouble boxes a float64, or Null if present is false.
func NewDouble(v float64, present bool) *Box {
	if !present {
		return NewNull()
	}
	return &Box{typ: cqlrt.CoreDouble, f64: v}
}

// NewString boxes a String reference, retaining it, or Null if r is nil.
func NewString(r *cqlrt.Ref) *Box {
	return newRef(cqlrt.CoreString, r)
}

// NewBlob boxes a Blob reference, retaining it, or Null if r is nil.
func NewBlob(r *cqlrt.Ref) *Box {
	return newRef(cqlrt.CoreBlob, r)
}

// NewObject boxes an Object reference, retaining it, or Null if r is nil.
func NewObject(r *cqlrt.Ref) *Box {
	return newRef(cqlrt.CoreObject, r)
}

func newRef(t cqlrt.CoreType, r *cqlrt.Ref) *Box {
	if r == nil {
		return NewNull()
	}
	cqlrt.Retain(r)
	return &Box{typ: t, ref: r}
}

// Type returns the box's stored core type. Per §4.J, box_get_type on a nil
// *Box (as opposed to a constructed Box holding Null) also returns Null.
func (b *Box) Type() cqlrt.CoreType {
	if b == nil {
		return cqlrt.CoreNull
	}
	return b.typ
}

// Release drops the retained reference a String/Blob/Object box holds, if
// any. Safe to call on a nil Box or a box of a scalar type.
func (b *Box) Release() {
	if b == nil || b.ref == nil {
		return
	}
	cqlrt.Release(b.ref)
	b.ref = nil
}

// Bool unboxes a Bool, returning (value, true) if b holds a non-null Bool.
// Unboxing with the wrong requested type returns (false, false).
func (b *Box) Bool() (bool, bool) {
	if b == nil || b.typ != cqlrt.CoreBool {
		return false, false
	}
	return b.i64 != 0, true
}

// Int32 unboxes an Int32.
func (b *Box) Int32() (int32, bool) {
	if b == nil || b.typ != cqlrt.CoreInt32 {
		return 0, false
	}
	return int32(b.i64), true
}

// Int64 unboxes an Int64.
func (b *Box) Int64() (int64, bool) {
	if b == nil || b.typ != cqlrt.CoreInt64 {
		return 0, false
	}
	return b.i64, true
}

// Double unboxes a Double.
func (b *Box) Double() (float64, bool) {
	if b == nil || b.typ != cqlrt.CoreDouble {
		return 0, false
	}
	return b.f64, true
}

// String unboxes a String reference. Unboxing with the wrong requested
// type returns nil, matching the "nil for references" rule of §4.J.
func (b *Box) String() *cqlrt.Ref {
	if b == nil || b.typ != cqlrt.CoreString {
		return nil
	}
	return b.ref
}

// Blob unboxes a Blob reference.
func (b *Box) Blob() *cqlrt.Ref {
	if b == nil || b.typ != cqlrt.CoreBlob {
		return nil
	}
	return b.ref
}

// Object unboxes an Object reference.
func (b *Box) Object() *cqlrt.Ref {
	if b == nil || b.typ != cqlrt.CoreObject {
		return nil
	}
	return b.ref
}

// IsNull reports whether b holds Null (including a nil *Box).
func (b *Box) IsNull() bool {
	return b.Type() == cqlrt.CoreNull
}
