package cqlrt

// Encoder is the hook point for column-level value encoding/decoding
// (the Encoded flag bit of a TypeCode; §3 "Type byte"). Callers
// that need to obscure sensitive column values before they reach the
// embedded engine, and reverse that transform on explicit decode, supply
// one; the runtime itself ships no default Encoder and never invokes one
// implicitly — generated code calls the Encode*/Decode* functions below
// at the specific column sites that need it.
//
// contextType and context mirror cql_encode_bool's signature in the
// reference runtime: contextType identifies which encoding scheme to
// apply (an application-defined code, e.g. a table id), and context
// carries whatever per-row key material that scheme needs (a row id,
// a salt). Both are opaque to Encoder implementations that don't need
// per-row state.
type Encoder interface {
	EncodeBool(value bool, contextType int32, context any) bool
	EncodeInt32(value int32, contextType int32, context any) int32
	EncodeInt64(value int64, contextType int32, context any) int64
	EncodeDouble(value float64, contextType int32, context any) float64
	EncodeString(value *Ref, contextType int32, context any) *Ref
	EncodeBlob(value *Ref, contextType int32, context any) *Ref

	DecodeBool(value bool, contextType int32, context any) bool
	DecodeInt32(value int32, contextType int32, context any) int32
	DecodeInt64(value int64, contextType int32, context any) int64
	DecodeDouble(value float64, contextType int32, context any) float64
	DecodeString(value *Ref, contextType int32, context any) *Ref
	DecodeBlob(value *Ref, contextType int32, context any) *Ref
}

// EncodeBool applies encoder to value, or returns value unchanged if
// encoder is nil — the "no Encoder installed" case behaves as a no-op,
// never as an error, since encoding is strictly opt-in.
func EncodeBool(encoder Encoder, value bool, contextType int32, context any) bool {
	if encoder == nil {
		return value
	}
	return encoder.EncodeBool(value, contextType, context)
}

// EncodeInt32 applies encoder to value, or returns value unchanged if
// encoder is nil.
func EncodeInt32(encoder Encoder, value int32, contextType int32, context any) int32 {
	if encoder == nil {
		return value
	}
	return encoder.EncodeInt32(value, contextType, context)
}

// EncodeInt64 applies encoder to value, or returns value unchanged if
// encoder is nil.
func EncodeInt64(encoder Encoder, value int64, contextType int32, context any) int64 {
	if encoder == nil {
		return value
	}
	return encoder.EncodeInt64(value, contextType, context)
}

// EncodeDouble applies encoder to value, or returns value unchanged if
// encoder is nil.
func EncodeDouble(encoder Encoder, value float64, contextType int32, context any) float64 {
	if encoder == nil {
		return value
	}
	return encoder.EncodeDouble(value, contextType, context)
}

// EncodeString applies encoder to value, retaining the result; value
// must be non-nil (the C signature's _Nonnull). Returns value unchanged
// (retained once more) if encoder is nil.
func EncodeString(encoder Encoder, value *Ref, contextType int32, context any) *Ref {
	if encoder == nil {
		Retain(value)
		return value
	}
	return encoder.EncodeString(value, contextType, context)
}

// EncodeBlob applies encoder to value, retaining the result; value must
// be non-nil.
func EncodeBlob(encoder Encoder, value *Ref, contextType int32, context any) *Ref {
	if encoder == nil {
		Retain(value)
		return value
	}
	return encoder.EncodeBlob(value, contextType, context)
}

// DecodeBool reverses EncodeBool.
func DecodeBool(encoder Encoder, value bool, contextType int32, context any) bool {
	if encoder == nil {
		return value
	}
	return encoder.DecodeBool(value, contextType, context)
}

// DecodeInt32 reverses EncodeInt32.
func DecodeInt32(encoder Encoder, value int32, contextType int32, context any) int32 {
	if encoder == nil {
		return value
	}
	return encoder.DecodeInt32(value, contextType, context)
}

// DecodeInt64 reverses EncodeInt64.
func DecodeInt64(encoder Encoder, value int64, contextType int32, context any) int64 {
	if encoder == nil {
		return value
	}
	return encoder.DecodeInt64(value, contextType, context)
}

// DecodeDouble reverses EncodeDouble.
func DecodeDouble(encoder Encoder, value float64, contextType int32, context any) float64 {
	if encoder == nil {
		return value
	}
	return encoder.DecodeDouble(value, contextType, context)
}

// DecodeString reverses EncodeString.
func DecodeString(encoder Encoder, value *Ref, contextType int32, context any) *Ref {
	if encoder == nil {
		Retain(value)
		return value
	}
	return encoder.DecodeString(value, contextType, context)
}

// DecodeBlob reverses EncodeBlob.
func DecodeBlob(encoder Encoder, value *Ref, contextType int32, context any) *Ref {
	if encoder == nil {
		Retain(value)
		return value
	}
	return encoder.DecodeBlob(value, contextType, context)
}
