package cqlrt

// stringPayload and blobPayload are the kind-specific data a *Ref of kind
// KindString/KindBlob carries in its payload field (§4.B).
type stringPayload struct {
	bytes []byte
}

type blobPayload struct {
	bytes []byte
}

// objectPayload backs a generic object: an opaque value plus a
// caller-supplied finalizer invoked with that value (§3 "Generic object").
type objectPayload struct {
	data any
}

func (s *stringPayload) equal(o *stringPayload) bool {
	if s == nil || o == nil {
		return s == o
	}
	return string(s.bytes) == string(o.bytes)
}

func (s *stringPayload) hash() uint64 {
	if s == nil {
		return 0
	}
	return djb2(s.bytes)
}

func (b *blobPayload) equal(o *blobPayload) bool {
	if b == nil || o == nil {
		return b == o
	}
	if len(b.bytes) != len(o.bytes) {
		return false
	}
	for i := range b.bytes {
		if b.bytes[i] != o.bytes[i] {
			return false
		}
	}
	return true
}

func (b *blobPayload) hash() uint64 {
	if b == nil {
		return 0
	}
	return djb2(b.bytes)
}

// djb2 is the stable 64-bit hash family used for String and Blob (§3).
// This is the DJB2 variant: hash = hash*33 ^ byte, seeded at 5381.
func djb2(data []byte) uint64 {
	var h uint64 = 5381
	for _, c := range data {
		h = h*33 ^ uint64(c)
	}
	return h
}

// NewString copies data into an immutable String reference with ref_count
// 1 (§4.B).
func NewString(data []byte) *Ref {
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewRef(KindString, &stringPayload{bytes: buf}, nil)
}

// NewStringLiteral returns a sentinel (never-freed) String reference,
// suitable for statically allocated literals (§3).
func NewStringLiteral(s string) *Ref {
	r := NewSentinelRef(KindString)
	r.payload = &stringPayload{bytes: []byte(s)}
	return r
}

func stringFromRef(r *Ref) *stringPayload {
	if r == nil {
		return nil
	}
	Contract(r.kind == KindString, "stringFromRef: ref is not a String (kind=%s)", r.kind)
	return r.payload.(*stringPayload)
}

// StringBytes returns the raw bytes of a String reference (nil if r is
// nil).
func StringBytes(r *Ref) []byte {
	p := stringFromRef(r)
	if p == nil {
		return nil
	}
	return p.bytes
}

// StringEqual implements the nil-safety contract from §4.B:
// string_equal(nil,nil) = true; either-nil-but-not-both = false; both
// non-nil uses a bytewise compare (strcmp).
func StringEqual(a, b *Ref) bool {
	if a == nil || b == nil {
		return a == b
	}
	return stringFromRef(a).equal(stringFromRef(b))
}

// StringCompare returns -1, 0, or 1 using byte-wise ordering, matching
// strcmp semantics; nil sorts before any non-nil string.
func StringCompare(a, b *Ref) int {
	ab, bb := StringBytes(a), StringBytes(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	for i := 0; i < len(ab) && i < len(bb); i++ {
		if ab[i] != bb[i] {
			if ab[i] < bb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ab) < len(bb):
		return -1
	case len(ab) > len(bb):
		return 1
	default:
		return 0
	}
}

// LikeMatcher implements SQL's LIKE pattern ('%' any run, '_' any single
// byte). §4.B says this "delegates to the engine's pattern matcher";
// callers that have an engine available may override this variable to
// evaluate `SELECT ? LIKE ?` through it instead, so the semantics exactly
// match the embedded engine's collation rules.
var LikeMatcher func(pattern, s string) bool = defaultLike

// StringLike reports whether s matches pattern via the installed
// LikeMatcher. Either nil argument is not a match.
func StringLike(s, pattern *Ref) bool {
	if s == nil || pattern == nil {
		return false
	}
	return LikeMatcher(string(StringBytes(pattern)), string(StringBytes(s)))
}

func defaultLike(pattern, s string) bool {
	return likeMatch([]byte(pattern), []byte(s))
}

// likeMatch is a small backtracking matcher for '%' and '_' wildcards.
func likeMatch(pattern, s []byte) bool {
	var pi, si int
	var starPi, starSi = -1, -1
	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '_' || pattern[pi] == s[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '%':
			starPi = pi
			starSi = si
			pi++
		case starPi >= 0:
			pi = starPi + 1
			starSi++
			si = starSi
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '%' {
		pi++
	}
	return pi == len(pattern)
}

// NewBlob copies data into an immutable Blob reference with ref_count 1
// (§4.B).
func NewBlob(data []byte) *Ref {
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewRef(KindBlob, &blobPayload{bytes: buf}, nil)
}

func blobFromRef(r *Ref) *blobPayload {
	if r == nil {
		return nil
	}
	Contract(r.kind == KindBlob, "blobFromRef: ref is not a Blob (kind=%s)", r.kind)
	return r.payload.(*blobPayload)
}

// BlobBytes returns the raw bytes of a Blob reference (nil if r is nil).
func BlobBytes(r *Ref) []byte {
	p := blobFromRef(r)
	if p == nil {
		return nil
	}
	return p.bytes
}

// BlobEqual is length-then-bytewise compare with the same nil-safety
// contract as StringEqual (§4.B).
func BlobEqual(a, b *Ref) bool {
	if a == nil || b == nil {
		return a == b
	}
	return blobFromRef(a).equal(blobFromRef(b))
}

// NewObject wraps data with a caller-supplied finalizer, invoked with data
// exactly once when the reference count reaches zero (§3, §4.B). Objects
// are not hashable and not equality-comparable except by identity.
func NewObject(data any, finalize func(data any)) *Ref {
	p := &objectPayload{data: data}
	var fin func()
	if finalize != nil {
		fin = func() { finalize(p.data) }
	}
	return NewRef(KindObject, p, fin)
}

// ObjectData returns the opaque value wrapped by a generic object
// reference.
func ObjectData(r *Ref) any {
	if r == nil {
		return nil
	}
	Contract(r.kind == KindObject, "ObjectData: ref is not an Object (kind=%s)", r.kind)
	return r.payload.(*objectPayload).data
}

// NewBoxedStatement wraps one prepared statement from the engine; its
// finalizer finalizes the statement (§3 "Boxed statement"). stmt must
// implement a Finalize() error method; the error, if any, is reported to
// TraceHook since generic-object finalizers have no return channel.
func NewBoxedStatement(stmt interface{ Finalize() error }) *Ref {
	return NewObject(stmt, func(data any) {
		if err := data.(interface{ Finalize() error }).Finalize(); err != nil {
			Trace("boxed_statement.finalize", err)
		}
	})
}
