// Package partition implements the streaming partitioner that powers
// parent/child rowset joining (spec §4.I): rows are grouped by key-cursor
// identity as they stream through partition_cursor, then each parent row
// extracts its matching child rowset by key via extract_partition.
package partition

import (
	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/blob"
	"github.com/cqlrt/cqlrt/cursor"
	"github.com/cqlrt/cqlrt/rowset"
)

type bucket struct {
	rows      [][]byte // encoded value-cursor blobs, arrival order
	extracted bool
	result    *rowset.ResultSet
}

// Partitioner groups streamed (key, value) cursor pairs by the key
// cursor's encoded bytes. It is constructed empty; the key and value
// shapes are learned from the first PartitionCursor call.
//
// Rows are stored as encoded cursor blobs (package blob) rather than
// retained live cursors: this keeps the partition's per-key storage to
// plain byte slices, the same "typed accessor over raw pointer
// arithmetic" preference §9 states for cursor layout, at the cost of
// requiring value cursors have no Object-typed column — the same
// restriction blob.Encode already imposes (§4.F).
type Partitioner struct {
	keyTypes  []cqlrt.TypeCode
	keyFields []string
	valTypes  []cqlrt.TypeCode
	valFields []string

	order   []string // first-seen key order, for deterministic Close
	entries map[string]*bucket

	frozen      bool
	sharedEmpty *rowset.ResultSet
}

// New constructs an empty Partitioner.
func New() *Partitioner {
	return &Partitioner{entries: make(map[string]*bucket)}
}

func typesEqual(a, b []cqlrt.TypeCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PartitionCursor uses key's encoded bytes as a Go map key to find or
// create key's bucket, then
// appends value's encoded bytes to it. The first call records the key
// and value shapes; later calls assert the same shapes are used
// throughout a partition's lifetime. Calling after the first
// ExtractPartition is a contract violation (the partition is frozen).
func (p *Partitioner) PartitionCursor(key, value *cursor.Cursor) error {
	cqlrt.Contract(!p.frozen, "partition_cursor: partition already frozen by extract_partition")

	if p.keyTypes == nil {
		p.keyTypes = append([]cqlrt.TypeCode(nil), key.DataTypes...)
		p.keyFields = append([]string(nil), key.Fields...)
		p.valTypes = append([]cqlrt.TypeCode(nil), value.DataTypes...)
		p.valFields = append([]string(nil), value.Fields...)
	} else {
		cqlrt.Contract(typesEqual(p.keyTypes, key.DataTypes), "partition_cursor: key shape changed mid-partition")
		cqlrt.Contract(typesEqual(p.valTypes, value.DataTypes), "partition_cursor: value shape changed mid-partition")
	}

	keyBytes, err := blob.Encode(key)
	if err != nil {
		return err
	}
	valBytes, err := blob.Encode(value)
	if err != nil {
		return err
	}

	k := string(keyBytes)
	b, ok := p.entries[k]
	if !ok {
		b = &bucket{}
		p.entries[k] = b
		p.order = append(p.order, k)
	}
	b.rows = append(b.rows, valBytes)
	return nil
}

// ExtractPartition returns the result set for key: the materialized
// child rowset on a matching bucket (cached after the first call per
// key), or a shared empty result set if no row was ever partitioned
// under key. Freezes the partitioner against further PartitionCursor
// calls. The caller owns the returned reference and must Release it.
func (p *Partitioner) ExtractPartition(key *cursor.Cursor) (*rowset.ResultSet, error) {
	p.frozen = true

	keyBytes, err := blob.Encode(key)
	if err != nil {
		return nil, err
	}
	b, ok := p.entries[string(keyBytes)]
	if !ok {
		return p.emptyResult(), nil
	}
	if !b.extracted {
		rs, err := materialize(p.valFields, p.valTypes, b.rows)
		if err != nil {
			return nil, err
		}
		b.result = rs
		b.extracted = true
	}
	cqlrt.Retain(b.result.Ref())
	return b.result, nil
}

func (p *Partitioner) emptyResult() *rowset.ResultSet {
	if p.sharedEmpty == nil {
		// materialize with zero rows never fails: there is no payload to
		// decode, only a Meta built from the learned (or still-empty)
		// value shape.
		rs, _ := materialize(p.valFields, p.valTypes, nil)
		p.sharedEmpty = rs
	}
	cqlrt.Retain(p.sharedEmpty.Ref())
	return p.sharedEmpty
}

func materialize(fields []string, types []cqlrt.TypeCode, rows [][]byte) (*rowset.ResultSet, error) {
	identity := make([]int, len(fields))
	for i := range identity {
		identity[i] = i
	}
	meta := rowset.NewMeta(fields, types, identity)
	builder := rowset.NewBuilder(meta)
	for _, raw := range rows {
		row, err := builder.AddRow()
		if err != nil {
			builder.Abort()
			return nil, err
		}
		if err := blob.Decode(row, raw); err != nil {
			builder.Abort()
			return nil, err
		}
	}
	return builder.Finish(), nil
}

// Close releases every materialized result set the partitioner cached,
// including the shared empty result set if it was ever constructed.
// Call once the partitioner itself is no longer needed. Buckets are
// released in partition-key insertion order rather than Go's randomized
// map order, so that teardown is reproducible across runs.
func (p *Partitioner) Close() {
	for _, k := range p.order {
		b := p.entries[k]
		if b.extracted {
			cqlrt.Release(b.result.Ref())
		}
	}
	if p.sharedEmpty != nil {
		cqlrt.Release(p.sharedEmpty.Ref())
		p.sharedEmpty = nil
	}
}
