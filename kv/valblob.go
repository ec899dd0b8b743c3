package kv

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cqlrt/cqlrt"
)

// Field is one value-blob entry: a field id plus the column it carries.
// Unlike a key blob, a value blob only stores fields that are present —
// absence is the null signal (spec §4.G).
type Field struct {
	ID  int64
	Col Column
}

// CreateVal builds a value blob for recordType from fields (spec §4.G
// bcreateval). Passing the same field id twice is an error.
func CreateVal(recordType int64, fields []Field) ([]byte, error) {
	seen := make(map[int64]bool, len(fields))
	for _, f := range fields {
		if !f.Col.valid() {
			return nil, cqlrt.NewDecodeError("kv.CreateVal: invalid field type", nil)
		}
		if seen[f.ID] {
			return nil, cqlrt.NewDecodeError("kv.CreateVal: duplicate field id", nil)
		}
		seen[f.ID] = true
	}
	return layoutVal(recordType, fields)
}

func layoutVal(recordType int64, fields []Field) ([]byte, error) {
	ordered := append([]Field(nil), fields...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	m := len(ordered)
	var varArea []byte
	storage := make([]uint64, m)
	types := make([]byte, m)
	fieldIDs := make([]uint64, m)

	for i, f := range ordered {
		fieldIDs[i] = uint64(f.ID)
		types[i] = byte(f.Col.Type)
		switch f.Col.Type {
		case cqlrt.CoreBool:
			if f.Col.I64 != 0 {
				storage[i] = 1
			}
		case cqlrt.CoreInt32, cqlrt.CoreInt64:
			storage[i] = uint64(f.Col.I64)
		case cqlrt.CoreDouble:
			storage[i] = math.Float64bits(f.Col.F64)
		case cqlrt.CoreString:
			offset := len(varArea)
			varArea = append(varArea, []byte(f.Col.S)...)
			varArea = append(varArea, 0)
			storage[i] = packWord(uint32(offset), uint32(len(f.Col.S)))
		case cqlrt.CoreBlob:
			offset := len(varArea)
			varArea = append(varArea, f.Col.B...)
			storage[i] = packWord(uint32(offset), uint32(len(f.Col.B)))
		}
	}

	buf := cqlrt.NewByteBuf(headerSize + m*17 + len(varArea))
	if err := writeHeader(buf, recordType, uint32(m)); err != nil {
		return nil, err
	}
	for _, id := range fieldIDs {
		if err := appendBE64(buf, id); err != nil {
			return nil, err
		}
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

// GetVal looks up fieldID in vblob (spec §4.G bgetval). ok is false when
// the magic is wrong or the field is absent (including a field that was
// never set, or was deleted by a prior update) — either way the caller
// returns SQL NULL.
func GetVal(vblob []byte, fieldID int64) (Column, bool) {
	_, m, ok := readHeader(vblob)
	if !ok {
		return Column{}, false
	}
	idsOff := headerSize
	storageOff := idsOff + m*8
	typesOff := storageOff + m*8
	varOff := typesOff + m
	if len(vblob) < varOff {
		return Column{}, false
	}
	for i := 0; i < m; i++ {
		id := int64(binary.BigEndian.Uint64(vblob[idsOff+i*8 : idsOff+i*8+8]))
		if id != fieldID {
			continue
		}
		t := cqlrt.CoreType(vblob[typesOff+i])
		w := binary.BigEndian.Uint64(vblob[storageOff+i*8 : storageOff+i*8+8])
		return decodeCell(vblob, varOff, t, w)
	}
	return Column{}, false
}

func allFields(vblob []byte) ([]Field, bool) {
	_, m, ok := readHeader(vblob)
	if !ok {
		return nil, false
	}
	idsOff := headerSize
	storageOff := idsOff + m*8
	typesOff := storageOff + m*8
	varOff := typesOff + m
	if len(vblob) < varOff {
		return nil, false
	}
	out := make([]Field, 0, m)
	for i := 0; i < m; i++ {
		id := int64(binary.BigEndian.Uint64(vblob[idsOff+i*8 : idsOff+i*8+8]))
		t := cqlrt.CoreType(vblob[typesOff+i])
		w := binary.BigEndian.Uint64(vblob[storageOff+i*8 : storageOff+i*8+8])
		c, ok := decodeCell(vblob, varOff, t, w)
		if !ok {
			return nil, false
		}
		out = append(out, Field{ID: id, Col: c})
	}
	return out, true
}

// UpdateVal returns a copy of vblob with each update applied: a present
// Column in updates[id] sets or replaces that field, and a delete (id
// listed in deletes) removes it. Passing the same field id in both an
// update and a delete, or twice within updates, is an error — mirroring
// bupdatekey's dirty-bit duplicate-update detection (spec §4.G
// bupdateval).
func UpdateVal(vblob []byte, updates []Field, deletes []int64) ([]byte, error) {
	recordType, _, ok := readHeader(vblob)
	if !ok {
		return nil, cqlrt.NewDecodeError("kv.UpdateVal: bad magic", nil)
	}
	existing, ok := allFields(vblob)
	if !ok {
		return nil, cqlrt.NewDecodeError("kv.UpdateVal: failed to read existing fields", nil)
	}

	existingByID := make(map[int64]Column, len(existing))
	for _, f := range existing {
		existingByID[f.ID] = f.Col
	}

	dirty := make(map[int64]bool)
	for _, f := range updates {
		if !f.Col.valid() {
			return nil, cqlrt.NewDecodeError("kv.UpdateVal: invalid replacement type", nil)
		}
		if dirty[f.ID] {
			return nil, cqlrt.NewDecodeError("kv.UpdateVal: field updated twice", nil)
		}
		if prior, present := existingByID[f.ID]; present && prior.Type != f.Col.Type {
			return nil, cqlrt.NewDecodeError("kv.UpdateVal: replacement type does not match stored type", nil)
		}
		dirty[f.ID] = true
	}
	deleted := make(map[int64]bool)
	for _, id := range deletes {
		if dirty[id] || deleted[id] {
			return nil, cqlrt.NewDecodeError("kv.UpdateVal: field both updated and deleted, or deleted twice", nil)
		}
		deleted[id] = true
	}

	byID := make(map[int64]Column, len(existing))
	var order []int64
	for _, f := range existing {
		byID[f.ID] = f.Col
		order = append(order, f.ID)
	}
	for _, f := range updates {
		if _, present := byID[f.ID]; !present {
			order = append(order, f.ID)
		}
		byID[f.ID] = f.Col
	}
	for id := range deleted {
		delete(byID, id)
	}

	result := make([]Field, 0, len(byID))
	for _, id := range order {
		if c, present := byID[id]; present {
			result = append(result, Field{ID: id, Col: c})
		}
	}
	return layoutVal(recordType, result)
}
