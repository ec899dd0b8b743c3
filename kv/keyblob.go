// Package kv implements the versioned key/value blob codecs (spec §4.G)
// and registers them as scalar SQL functions against an engine.Engine
// (bcreatekey, bgetkey, bupdatekey, bcreateval, bgetval, bupdateval and
// their *_type counterparts).
package kv

import (
	"encoding/binary"
	"math"

	"github.com/cqlrt/cqlrt"
)

// magic is the sentinel written into every key/value blob header,
// detecting malformed input (spec §4.G).
const magic uint32 = 0x524d3030

const headerSize = 16 // 8 (record type) + 4 (magic) + 4 (column count)

// Column is one key-blob cell value: exactly one of its fields is
// meaningful, selected by Type. Key-blob columns are never null (spec
// §4.G: "every column is always present").
type Column struct {
	Type cqlrt.CoreType
	I64  int64   // Bool (0/1), Int32 (sign-extended), Int64
	F64  float64 // Double
	S    string  // String, no trailing NUL
	B    []byte  // Blob
}

// valid reports whether v.Type is one of the core types a key cell can
// hold (Bool, Int32, Int64, Double, String, Blob). Which value field is
// populated is not checked.
func (v Column) valid() bool {
	switch v.Type {
	case cqlrt.CoreBool, cqlrt.CoreInt32, cqlrt.CoreInt64, cqlrt.CoreDouble, cqlrt.CoreString, cqlrt.CoreBlob:
		return true
	default:
		return false
	}
}

func (v Column) isVariable() bool {
	return v.Type == cqlrt.CoreString || v.Type == cqlrt.CoreBlob
}

// CreateKey builds a key blob for recordType with the given columns in
// declaration order (spec §4.G bcreatekey). Returns an error if any
// column carries an unrecognized type.
func CreateKey(recordType int64, cols []Column) ([]byte, error) {
	for _, c := range cols {
		if !c.valid() {
			return nil, cqlrt.NewDecodeError("kv.CreateKey: invalid column type", nil)
		}
	}
	return layoutKey(recordType, cols)
}

func layoutKey(recordType int64, cols []Column) ([]byte, error) {
	n := len(cols)
	var varArea []byte
	storage := make([]uint64, n)
	types := make([]byte, n)

	for i, c := range cols {
		types[i] = byte(c.Type)
		switch c.Type {
		case cqlrt.CoreBool:
			if c.I64 != 0 {
				storage[i] = 1
			}
		case cqlrt.CoreInt32, cqlrt.CoreInt64:
			storage[i] = uint64(c.I64)
		case cqlrt.CoreDouble:
			storage[i] = math.Float64bits(c.F64)
		case cqlrt.CoreString:
			offset := len(varArea)
			varArea = append(varArea, []byte(c.S)...)
			varArea = append(varArea, 0)
			storage[i] = packWord(uint32(offset), uint32(len(c.S)))
		case cqlrt.CoreBlob:
			offset := len(varArea)
			varArea = append(varArea, c.B...)
			storage[i] = packWord(uint32(offset), uint32(len(c.B)))
		}
	}

	buf := cqlrt.NewByteBuf(headerSize + n*9 + len(varArea))
	if err := writeHeader(buf, recordType, uint32(n)); err != nil {
		return nil, err
	}
	for _, w := range storage {
		if err := appendBE64(buf, w); err != nil {
			return nil, err
		}
	}
	if err := buf.Append(types); err != nil {
		return nil, err
	}
	if err := buf.Append(varArea); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func packWord(offset, length uint32) uint64 {
	return uint64(offset)<<32 | uint64(length)
}

func unpackWord(w uint64) (offset, length uint32) {
	return uint32(w >> 32), uint32(w)
}

func writeHeader(buf *cqlrt.ByteBuf, recordType int64, columnCount uint32) error {
	if err := appendBE64(buf, uint64(recordType)); err != nil {
		return err
	}
	var m [4]byte
	binary.BigEndian.PutUint32(m[:], magic)
	if err := buf.Append(m[:]); err != nil {
		return err
	}
	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], columnCount)
	return buf.Append(cnt[:])
}

func appendBE64(buf *cqlrt.ByteBuf, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return buf.Append(b[:])
}

// readHeader validates the magic and returns (recordType, columnCount, ok).
func readHeader(blob []byte) (int64, int, bool) {
	if len(blob) < headerSize {
		return 0, 0, false
	}
	recordType := int64(binary.BigEndian.Uint64(blob[0:8]))
	m := binary.BigEndian.Uint32(blob[8:12])
	if m != magic {
		return 0, 0, false
	}
	count := int(binary.BigEndian.Uint32(blob[12:16]))
	return recordType, count, true
}

// GetKey reads column i of blob (spec §4.G bgetkey). ok is false on magic
// mismatch or out-of-range index, signaling the caller to return SQL NULL.
func GetKey(kblob []byte, i int) (Column, bool) {
	_, n, ok := readHeader(kblob)
	if !ok || i < 0 || i >= n {
		return Column{}, false
	}
	storageOff := headerSize
	typesOff := storageOff + n*8
	varOff := typesOff + n
	if len(kblob) < varOff {
		return Column{}, false
	}
	t := cqlrt.CoreType(kblob[typesOff+i])
	w := binary.BigEndian.Uint64(kblob[storageOff+i*8 : storageOff+i*8+8])
	return decodeCell(kblob, varOff, t, w)
}

func decodeCell(blob []byte, varOff int, t cqlrt.CoreType, w uint64) (Column, bool) {
	switch t {
	case cqlrt.CoreBool:
		return Column{Type: t, I64: int64(w & 1)}, true
	case cqlrt.CoreInt32:
		return Column{Type: t, I64: int64(int32(w))}, true
	case cqlrt.CoreInt64:
		return Column{Type: t, I64: int64(w)}, true
	case cqlrt.CoreDouble:
		return Column{Type: t, F64: math.Float64frombits(w)}, true
	case cqlrt.CoreString:
		off, length := unpackWord(w)
		start := varOff + int(off)
		end := start + int(length)
		if end > len(blob) {
			return Column{}, false
		}
		return Column{Type: t, S: string(blob[start:end])}, true
	case cqlrt.CoreBlob:
		off, length := unpackWord(w)
		start := varOff + int(off)
		end := start + int(length)
		if end > len(blob) {
			return Column{}, false
		}
		b := make([]byte, length)
		copy(b, blob[start:end])
		return Column{Type: t, B: b}, true
	default:
		return Column{}, false
	}
}

// UpdateKey returns a copy of kblob with the columns named in updates
// overwritten, re-laid-out with variable-length items always written in
// column order — not argument order — so a logical key has one canonical
// byte representation, which blob-identity uniqueness constraints depend
// on (spec §4.G bupdatekey).
func UpdateKey(kblob []byte, updates map[int]Column) ([]byte, error) {
	recordType, n, ok := readHeader(kblob)
	if !ok {
		return nil, cqlrt.NewDecodeError("kv.UpdateKey: bad magic", nil)
	}
	cols := make([]Column, n)
	for i := 0; i < n; i++ {
		c, ok := GetKey(kblob, i)
		if !ok {
			return nil, cqlrt.NewDecodeError("kv.UpdateKey: failed to read existing column", nil)
		}
		if u, dirty := updates[i]; dirty {
			if !u.valid() {
				return nil, cqlrt.NewDecodeError("kv.UpdateKey: invalid replacement type", nil)
			}
			if u.Type != c.Type {
				return nil, cqlrt.NewDecodeError("kv.UpdateKey: replacement type does not match column's fixed type", nil)
			}
			cols[i] = u
			continue
		}
		cols[i] = c
	}
	for i := range updates {
		if i < 0 || i >= n {
			return nil, cqlrt.NewDecodeError("kv.UpdateKey: update index out of range", nil)
		}
	}
	return layoutKey(recordType, cols)
}
