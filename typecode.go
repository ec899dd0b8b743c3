package cqlrt

// CoreType is the low 6 bits of a TypeCode: the core SQL type of a column,
// cursor field, or box (§3 "Type byte").
type CoreType uint8

// Core types shared by columns, cursors, and boxes.
const (
	CoreNull CoreType = iota
	CoreInt32
	CoreInt64
	CoreDouble
	CoreBool
	CoreString
	CoreBlob
	CoreObject
)

// String renders the core type name.
func (c CoreType) String() string {
	switch c {
	case CoreNull:
		return "Null"
	case CoreInt32:
		return "Int32"
	case CoreInt64:
		return "Int64"
	case CoreDouble:
		return "Double"
	case CoreBool:
		return "Bool"
	case CoreString:
		return "String"
	case CoreBlob:
		return "Blob"
	case CoreObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// IsRef reports whether values of this core type are reference-counted
// (String, Blob, Object) and therefore live in a row's reference suffix.
func (c CoreType) IsRef() bool {
	return c == CoreString || c == CoreBlob || c == CoreObject
}

// TypeCode packs a CoreType with the NotNull and Encoded advisory bits
// (§3 "Type byte"). The low 6 bits are the core type; bit 6 is NotNull;
// bit 7 is Encoded.
type TypeCode uint8

const (
	flagNotNull TypeCode = 1 << 6
	flagEncoded TypeCode = 1 << 7
	coreMask    TypeCode = 0x3f
)

// NewTypeCode builds a TypeCode from a core type and its flags.
func NewTypeCode(core CoreType, notNull, encoded bool) TypeCode {
	t := TypeCode(core) & coreMask
	if notNull {
		t |= flagNotNull
	}
	if encoded {
		t |= flagEncoded
	}
	return t
}

// Core returns the core type, stripped of flags.
func (t TypeCode) Core() CoreType {
	return CoreType(t & coreMask)
}

// NotNull reports whether the NotNull bit is set.
func (t TypeCode) NotNull() bool {
	return t&flagNotNull != 0
}

// Encoded reports whether the advisory Encoded bit is set. The bit is
// carried through the codecs but only interpreted by encoder callbacks
// (§9 "Encoded columns").
func (t TypeCode) Encoded() bool {
	return t&flagEncoded != 0
}

// WithNotNull returns a copy of t with the NotNull bit set or cleared.
func (t TypeCode) WithNotNull(notNull bool) TypeCode {
	if notNull {
		return t | flagNotNull
	}
	return t &^ flagNotNull
}

// IsRef reports whether this column's core type is reference-counted.
func (t TypeCode) IsRef() bool {
	return t.Core().IsRef()
}

// ScalarSize returns the in-memory size, in bytes, of a scalar core type as
// stored in a row's non-reference prefix. Reference-typed columns (String,
// Blob, Object) are never stored inline; they live in the row's reference
// suffix as typed Go values (see package rowset), per the design note in
// §9 that the contract is the layout, not raw pointer arithmetic.
func ScalarSize(c CoreType) int {
	switch c {
	case CoreBool:
		return 1
	case CoreInt32:
		return 4
	case CoreInt64, CoreDouble:
		return 8
	default:
		return 0
	}
}
