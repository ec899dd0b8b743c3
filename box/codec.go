package box

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cqlrt/cqlrt"
)

// wireBox is the msgpack-serializable shape of a Box. It is a debug/
// interop codec, not part of the versioned binary wire contract the blob
// package implements (§4.F/§4.G); field names and layout may change
// across releases without a version byte.
type wireBox struct {
	Type  uint8   `msgpack:"t"`
	I64   int64   `msgpack:"i,omitempty"`
	F64   float64 `msgpack:"f,omitempty"`
	Bytes []byte  `msgpack:"b,omitempty"`
}

// Export encodes b as msgpack bytes, for logging and cross-process
// debugging tools. Object boxes cannot be exported, since their payload is
// an opaque Go value with no portable representation; Export returns an
// error for them.
func Export(b *Box) ([]byte, error) {
	t := b.Type()
	if t == cqlrt.CoreObject {
		return nil, fmt.Errorf("box: cannot export an Object box")
	}
	w := wireBox{Type: uint8(t)}
	switch t {
	case cqlrt.CoreBool, cqlrt.CoreInt32, cqlrt.CoreInt64:
		v, _ := rawInt(b)
		w.I64 = v
	case cqlrt.CoreDouble:
		w.F64, _ = b.Double()
	case cqlrt.CoreString:
		w.Bytes = cqlrt.StringBytes(b.String())
	case cqlrt.CoreBlob:
		w.Bytes = cqlrt.BlobBytes(b.Blob())
	}
	return msgpack.Marshal(&w)
}

func rawInt(b *Box) (int64, bool) {
	switch b.Type() {
	case cqlrt.CoreBool:
		v, ok := b.Bool()
		if v {
			return 1, ok
		}
		return 0, ok
	case cqlrt.CoreInt32:
		v, ok := b.Int32()
		return int64(v), ok
	case cqlrt.CoreInt64:
		return b.Int64()
	default:
		return 0, false
	}
}

// Import decodes msgpack bytes produced by Export back into a Box.
func Import(data []byte) (*Box, error) {
	var w wireBox
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("box: import: %w", err)
	}
	switch cqlrt.CoreType(w.Type) {
	case cqlrt.CoreNull:
		return NewNull(), nil
	case cqlrt.CoreBool:
		return NewBool(w.I64 != 0, true), nil
	case cqlrt.CoreInt32:
		return NewInt32(int32(w.I64), true), nil
	case cqlrt.CoreInt64:
		return NewInt64(w.I64, true), nil
	case cqlrt.CoreDouble:
		return NewDouble(w.F64, true), nil
	case cqlrt.CoreString:
		r := cqlrt.NewString(w.Bytes)
		defer cqlrt.Release(r)
		return NewString(r), nil
	case cqlrt.CoreBlob:
		r := cqlrt.NewBlob(w.Bytes)
		defer cqlrt.Release(r)
		return NewBlob(r), nil
	default:
		return nil, fmt.Errorf("box: import: unsupported type byte %d", w.Type)
	}
}
