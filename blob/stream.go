package blob

import (
	"encoding/binary"

	"github.com/cqlrt/cqlrt"
)

// MakeStream packs blobs (each an already-encoded cursor blob) into one
// buffer: a 32-bit count followed by count+1 little-endian 32-bit offsets
// (the start of blob i relative to the end of the offset table, plus an
// end sentinel), then the concatenated blob bytes (spec §4.F).
func MakeStream(blobs [][]byte) ([]byte, error) {
	buf := cqlrt.NewByteBuf(4 + 4*(len(blobs)+1))

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(blobs)))
	if err := buf.Append(count[:]); err != nil {
		return nil, err
	}

	offsets := make([]uint32, len(blobs)+1)
	var running uint32
	for i, b := range blobs {
		offsets[i] = running
		running += uint32(len(b))
	}
	offsets[len(blobs)] = running

	for _, o := range offsets {
		var b4 [4]byte
		binary.LittleEndian.PutUint32(b4[:], o)
		if err := buf.Append(b4[:]); err != nil {
			return nil, err
		}
	}
	for _, b := range blobs {
		if err := buf.Append(b); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// StreamCount returns the number of cursor blobs packed into stream.
func StreamCount(stream []byte) (int, error) {
	if len(stream) < 4 {
		return 0, cqlrt.NewDecodeError("blob stream: truncated count", nil)
	}
	return int(binary.LittleEndian.Uint32(stream[:4])), nil
}

// StreamAt returns the raw bytes of cursor blob index i within stream,
// with bounds checks against the offset table.
func StreamAt(stream []byte, i int) ([]byte, error) {
	count, err := StreamCount(stream)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= count {
		return nil, cqlrt.NewDecodeError("blob stream: index out of range", nil)
	}
	tableStart := 4
	tableLen := 4 * (count + 1)
	if len(stream) < tableStart+tableLen {
		return nil, cqlrt.NewDecodeError("blob stream: truncated offset table", nil)
	}
	offAt := func(idx int) uint32 {
		start := tableStart + 4*idx
		return binary.LittleEndian.Uint32(stream[start : start+4])
	}
	base := tableStart + tableLen
	start := base + int(offAt(i))
	end := base + int(offAt(i+1))
	if start < base || end > len(stream) || start > end {
		return nil, cqlrt.NewDecodeError("blob stream: offset out of range", nil)
	}
	return stream[start:end], nil
}
