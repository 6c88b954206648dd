package rossym

// bucketCount is the fixed number of buckets in the string-intern table.
// Collisions are resolved by linear scan within a bucket; the table never
// resizes.
const bucketCount = 1024

// stringBucket holds zero or more interned strings that hash to the same
// bucket index, chained by a linked list.
type stringBucket struct {
	offset uint32
	next   *stringBucket
}

// StringBlob is the append-only byte vector backing every interned string.
// Offset 0 always holds a NUL byte: the canonical "empty/unknown" string.
type StringBlob struct {
	buf []byte
}

// NewStringBlob returns a StringBlob with offset 0 seeded to the empty
// string, as required before any other string is interned.
func NewStringBlob() *StringBlob {
	return &StringBlob{buf: []byte{0}}
}

// Bytes returns the blob's raw contents.
func (b *StringBlob) Bytes() []byte {
	return b.buf
}

// At returns the NUL-terminated string starting at off, without the
// trailing NUL.
func (b *StringBlob) At(off uint32) string {
	if off == 0 {
		return ""
	}
	end := int(off)
	for end < len(b.buf) && b.buf[end] != 0 {
		end++
	}
	return string(b.buf[off:end])
}

func (b *StringBlob) append(s string) uint32 {
	off := uint32(len(b.buf))
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
	return off
}

// StringIndex deduplicates strings against a StringBlob and hands back
// stable byte offsets. It exists only during construction and is never
// itself serialized.
type StringIndex struct {
	blob    *StringBlob
	buckets [bucketCount]*stringBucket
}

// NewStringIndex creates a StringIndex over blob, seeding the empty string's
// bucket with offset 0 so that Intern("") always finds offset 0.
func NewStringIndex(blob *StringBlob) *StringIndex {
	idx := &StringIndex{blob: blob}
	idx.buckets[djb2Hash("")%bucketCount] = &stringBucket{offset: 0}
	return idx
}

// djb2Hash implements Daniel J. Bernstein's multiplicative string hash:
// h = 5381; h = 33*h + byte.
func djb2Hash(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = 33*h + uint32(s[i])
	}
	return h
}

// Intern returns the stable blob offset for s, appending it if not already
// present. Offsets are monotonically non-decreasing.
func (idx *StringIndex) Intern(s string) uint32 {
	h := djb2Hash(s) % bucketCount
	for b := idx.buckets[h]; b != nil; b = b.next {
		if idx.blob.At(b.offset) == s {
			return b.offset
		}
	}
	off := idx.blob.append(s)
	idx.buckets[h] = &stringBucket{offset: off, next: idx.buckets[h]}
	return off
}

// Blob returns the underlying StringBlob.
func (idx *StringIndex) Blob() *StringBlob {
	return idx.blob
}
