package cqlrt

import "math"

// NaiveEncoder is a deliberately weak Encoder used only by this module's
// own tests (and by embedders' tests, if they want a quick fixture): bit-
// flip for Bool, byte-swap for Int32/Int64/Double, and an appended
// sentinel suffix for String/Blob. It is not registered anywhere by
// default — per §9 the runtime exposes Encoder as a hook point but never
// supplies a production default — and must never be used to protect real
// sensitive data.
type NaiveEncoder struct{}

func (NaiveEncoder) EncodeBool(value bool, _ int32, _ any) bool { return !value }
func (NaiveEncoder) DecodeBool(value bool, _ int32, _ any) bool { return !value }

func (NaiveEncoder) EncodeInt32(value int32, _ int32, _ any) int32 { return swap32(value) }
func (NaiveEncoder) DecodeInt32(value int32, _ int32, _ any) int32 { return swap32(value) }

func (NaiveEncoder) EncodeInt64(value int64, _ int32, _ any) int64 { return swap64(value) }
func (NaiveEncoder) DecodeInt64(value int64, _ int32, _ any) int64 { return swap64(value) }

func (NaiveEncoder) EncodeDouble(value float64, _ int32, _ any) float64 {
	return math.Float64frombits(uint64(swap64(int64(math.Float64bits(value)))))
}
func (NaiveEncoder) DecodeDouble(value float64, _ int32, _ any) float64 {
	return math.Float64frombits(uint64(swap64(int64(math.Float64bits(value)))))
}

var naiveSentinel = []byte("\x00ENC")

func (NaiveEncoder) EncodeString(value *Ref, _ int32, _ any) *Ref {
	return NewString(append(append([]byte(nil), StringBytes(value)...), naiveSentinel...))
}

func (NaiveEncoder) DecodeString(value *Ref, _ int32, _ any) *Ref {
	b := StringBytes(value)
	return NewString(trimSentinel(b))
}

func (NaiveEncoder) EncodeBlob(value *Ref, _ int32, _ any) *Ref {
	return NewBlob(append(append([]byte(nil), BlobBytes(value)...), naiveSentinel...))
}

func (NaiveEncoder) DecodeBlob(value *Ref, _ int32, _ any) *Ref {
	b := BlobBytes(value)
	return NewBlob(trimSentinel(b))
}

func trimSentinel(b []byte) []byte {
	if len(b) >= len(naiveSentinel) {
		tail := b[len(b)-len(naiveSentinel):]
		match := true
		for i := range tail {
			if tail[i] != naiveSentinel[i] {
				match = false
				break
			}
		}
		if match {
			return b[:len(b)-len(naiveSentinel)]
		}
	}
	return b
}

// swap32 reverses the byte order of a 32-bit value, a naive but reversible
// transform (swap32(swap32(x)) == x).
func swap32(v int32) int32 {
	u := uint32(v)
	u = u<<24 | (u&0xff00)<<8 | (u&0xff0000)>>8 | u>>24
	return int32(u)
}

// swap64 reverses the byte order of a 64-bit value.
func swap64(v int64) int64 {
	u := uint64(v)
	var r uint64
	for i := 0; i < 8; i++ {
		r = r<<8 | (u & 0xff)
		u >>= 8
	}
	return int64(r)
}
