// Package blob implements the versioned cursor blob codec (spec §4.F): one
// filled cursor row encoded so it survives storage in a BLOB column and
// decode into a possibly-different-version cursor of the same conceptual
// shape, plus the blob-stream wrapper packing many cursor blobs into one.
package blob

import (
	"encoding/binary"
	"math"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/cursor"
)

// letterForCore maps a core type to its type-code-preamble letter
// (spec §4.F). Bool is 'F' (false/flag) since 'B' is taken by Blob.
func letterForCore(c cqlrt.CoreType) byte {
	switch c {
	case cqlrt.CoreInt32:
		return 'I'
	case cqlrt.CoreInt64:
		return 'L'
	case cqlrt.CoreDouble:
		return 'D'
	case cqlrt.CoreBool:
		return 'F'
	case cqlrt.CoreString:
		return 'S'
	case cqlrt.CoreBlob:
		return 'B'
	default:
		return 0
	}
}

func coreForLetter(l byte) (cqlrt.CoreType, bool) {
	switch l | 0x20 { // lowercase
	case 'i':
		return cqlrt.CoreInt32, true
	case 'l':
		return cqlrt.CoreInt64, true
	case 'd':
		return cqlrt.CoreDouble, true
	case 'f':
		return cqlrt.CoreBool, true
	case 's':
		return cqlrt.CoreString, true
	case 'b':
		return cqlrt.CoreBlob, true
	default:
		return 0, false
	}
}

// Encode serializes c's current row per spec §4.F. c must have no
// Object-typed column (§9: "explicitly unsupported... refuse at run-time
// with a contract violation").
func Encode(c *cursor.Cursor) ([]byte, error) {
	n := c.ColumnCount()
	for i := 0; i < n; i++ {
		cqlrt.Contract(c.DataTypes[i].Core() != cqlrt.CoreObject, "blob.Encode: column %d is Object-typed, unsupported in cursor blobs", i)
	}

	buf := cqlrt.NewByteBuf(32)

	// 1. type-code preamble, terminated by a zero byte.
	for i := 0; i < n; i++ {
		t := c.DataTypes[i]
		letter := letterForCore(t.Core())
		if !t.NotNull() {
			letter |= 0x20 // lowercase signals nullable
		}
		if err := buf.AppendByte(letter); err != nil {
			return nil, err
		}
	}
	if err := buf.AppendByte(0); err != nil {
		return nil, err
	}

	// 2. presence + bool bitvector.
	var nullableCols, boolCols []int
	for i := 0; i < n; i++ {
		t := c.DataTypes[i]
		if !t.NotNull() {
			nullableCols = append(nullableCols, i)
		}
		if t.Core() == cqlrt.CoreBool {
			boolCols = append(boolCols, i)
		}
	}
	nBits := len(nullableCols) + len(boolCols)
	bitvec := make([]byte, (nBits+7)/8)
	bit := 0
	isPresent := func(i int) bool {
		t := c.DataTypes[i]
		if t.IsRef() {
			return c.Ref(i) != nil
		}
		return !colIsNull(c, i)
	}
	for _, i := range nullableCols {
		if isPresent(i) {
			bitvec[bit/8] |= 1 << uint(bit%8)
		}
		bit++
	}
	for _, i := range boolCols {
		if boolValue(c, i) {
			bitvec[bit/8] |= 1 << uint(bit%8)
		}
		bit++
	}
	if err := buf.Append(bitvec); err != nil {
		return nil, err
	}

	// 3. payload, in declaration order, present columns only.
	for i := 0; i < n; i++ {
		t := c.DataTypes[i]
		if !isPresent(i) {
			continue
		}
		switch t.Core() {
		case cqlrt.CoreInt32:
			if err := appendZigzag(buf, int64(int32Value(c, i))); err != nil {
				return nil, err
			}
		case cqlrt.CoreInt64:
			if err := appendZigzag(buf, int64Value(c, i)); err != nil {
				return nil, err
			}
		case cqlrt.CoreDouble:
			var b8 [8]byte
			binary.BigEndian.PutUint64(b8[:], math.Float64bits(doubleValue(c, i)))
			if err := buf.Append(b8[:]); err != nil {
				return nil, err
			}
		case cqlrt.CoreBool:
			// no payload; value lives in the bitvector.
		case cqlrt.CoreString:
			s := cqlrt.StringBytes(c.Ref(i))
			if err := buf.Append(s); err != nil {
				return nil, err
			}
			if err := buf.AppendByte(0); err != nil {
				return nil, err
			}
		case cqlrt.CoreBlob:
			bts := cqlrt.BlobBytes(c.Ref(i))
			if err := appendZigzag(buf, int64(len(bts))); err != nil {
				return nil, err
			}
			if err := buf.Append(bts); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

// Decode rehydrates data into c, per the versioning rules of spec §4.F:
// extra trailing producer columns are skipped; extra trailing consumer
// columns must be nullable and are set null; overlapping columns must
// agree on core type, nullability may only relax. On any structural
// mismatch it sets c's has_row false, releases partial references, and
// returns a *cqlrt.DecodeError.
func Decode(c *cursor.Cursor, data []byte) error {
	fail := func(reason string) error {
		c.Release()
		c.SetHasRow(false)
		err := cqlrt.NewDecodeError(reason, nil)
		cqlrt.Trace("blob.Decode", err)
		return err
	}

	pos := 0
	var producerTypes []cqlrt.TypeCode
	for {
		if pos >= len(data) {
			return fail("truncated type preamble")
		}
		letter := data[pos]
		pos++
		if letter == 0 {
			break
		}
		core, ok := coreForLetter(letter)
		if !ok {
			return fail("unrecognized type letter")
		}
		notNull := letter < 'a' // uppercase => not null, lowercase => nullable
		producerTypes = append(producerTypes, cqlrt.NewTypeCode(core, notNull, false))
	}

	consumerN := c.ColumnCount()
	overlap := len(producerTypes)
	if overlap > consumerN {
		overlap = consumerN
	}
	for i := 0; i < overlap; i++ {
		pt := producerTypes[i]
		ct := c.DataTypes[i]
		if pt.Core() != ct.Core() {
			return fail("core type mismatch at column")
		}
		if pt.NotNull() && !ct.NotNull() {
			// relaxing not-null -> nullable is fine
		} else if !pt.NotNull() && ct.NotNull() {
			return fail("cannot tighten nullability")
		}
	}
	for i := overlap; i < consumerN; i++ {
		if c.DataTypes[i].NotNull() {
			return fail("missing trailing column is not nullable")
		}
	}

	var nullableCols, boolCols []int
	for i, t := range producerTypes {
		if !t.NotNull() {
			nullableCols = append(nullableCols, i)
		}
		if t.Core() == cqlrt.CoreBool {
			boolCols = append(boolCols, i)
		}
	}
	nBits := len(nullableCols) + len(boolCols)
	vecLen := (nBits + 7) / 8
	if pos+vecLen > len(data) {
		return fail("truncated bitvector")
	}
	bitvec := data[pos : pos+vecLen]
	pos += vecLen

	present := make([]bool, len(producerTypes))
	for i := range present {
		present[i] = true
	}
	boolVal := make([]bool, len(producerTypes))
	bit := 0
	getBit := func() bool {
		v := bitvec[bit/8]&(1<<uint(bit%8)) != 0
		bit++
		return v
	}
	for _, i := range nullableCols {
		present[i] = getBit()
	}
	for _, i := range boolCols {
		boolVal[i] = getBit()
	}

	for i, t := range producerTypes {
		var consumerCol = -1
		if i < consumerN {
			consumerCol = i
		}
		if !present[i] {
			if consumerCol >= 0 {
				setColumnNull(c, consumerCol, t)
			}
			continue
		}
		switch t.Core() {
		case cqlrt.CoreInt32:
			v, n, ok := readZigzag(data[pos:])
			if !ok {
				return fail("truncated int32 varint")
			}
			pos += n
			if consumerCol >= 0 {
				setInt32(c, consumerCol, int32(v))
			}
		case cqlrt.CoreInt64:
			v, n, ok := readZigzag(data[pos:])
			if !ok {
				return fail("truncated int64 varint")
			}
			pos += n
			if consumerCol >= 0 {
				setInt64(c, consumerCol, v)
			}
		case cqlrt.CoreDouble:
			if pos+8 > len(data) {
				return fail("truncated double")
			}
			bits := binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
			if consumerCol >= 0 {
				setDouble(c, consumerCol, math.Float64frombits(bits))
			}
		case cqlrt.CoreBool:
			if consumerCol >= 0 {
				setBool(c, consumerCol, boolVal[i])
			}
		case cqlrt.CoreString:
			end := pos
			for end < len(data) && data[end] != 0 {
				end++
			}
			if end >= len(data) {
				return fail("unterminated string payload")
			}
			if consumerCol >= 0 {
				c.SetRef(consumerCol, cqlrt.NewString(data[pos:end]))
			}
			pos = end + 1
		case cqlrt.CoreBlob:
			ln, n, ok := readZigzag(data[pos:])
			if !ok || ln < 0 {
				return fail("truncated blob length")
			}
			pos += n
			if pos+int(ln) > len(data) {
				return fail("truncated blob payload")
			}
			if consumerCol >= 0 {
				c.SetRef(consumerCol, cqlrt.NewBlob(data[pos:pos+int(ln)]))
			}
			pos += int(ln)
		}
	}

	for i := len(producerTypes); i < consumerN; i++ {
		setColumnNull(c, i, c.DataTypes[i])
	}

	c.SetHasRow(true)
	return nil
}

func setColumnNull(c *cursor.Cursor, i int, producerType cqlrt.TypeCode) {
	if producerType.IsRef() {
		c.SetRef(i, nil)
		return
	}
	setNullFlag(c, i, true)
}
