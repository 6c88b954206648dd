package rossym

import "encoding/binary"

// rosSymHeaderSize is sizeof(header) in §3's RosSymSection layout: four
// little-endian u32 words.
const rosSymHeaderSize = 16

// rosSymEntrySize is sizeof(SymEntry) on the wire: four little-endian u32
// fields, 16 bytes.
const rosSymEntrySize = 16

// BuildRosSym lays out the header, entry array, and string blob described
// in §3 / §4.I. entries must already be sorted per §3 invariants 1-2. If
// entries is empty the section is omitted entirely and nil is returned.
func BuildRosSym(entries []SymEntry, blob *StringBlob) []byte {
	if len(entries) == 0 {
		return nil
	}

	symbolsOff := uint32(rosSymHeaderSize)
	symbolsLen := uint32(len(entries)) * rosSymEntrySize
	stringsOff := symbolsOff + symbolsLen
	strings := blob.Bytes()
	stringsLen := uint32(len(strings))

	out := make([]byte, stringsOff+stringsLen)
	binary.LittleEndian.PutUint32(out[0:], symbolsOff)
	binary.LittleEndian.PutUint32(out[4:], symbolsLen)
	binary.LittleEndian.PutUint32(out[8:], stringsOff)
	binary.LittleEndian.PutUint32(out[12:], stringsLen)

	for i, e := range entries {
		off := int(symbolsOff) + i*rosSymEntrySize
		binary.LittleEndian.PutUint32(out[off:], e.Address)
		binary.LittleEndian.PutUint32(out[off+4:], e.FileOff)
		binary.LittleEndian.PutUint32(out[off+8:], e.FuncOff)
		binary.LittleEndian.PutUint32(out[off+12:], e.Line)
	}

	copy(out[stringsOff:], strings)
	return out
}

// ParseRosSym is the inverse of BuildRosSym, used by round-trip tests
// (§8 invariant 5) and by any downstream consumer of the emitted section.
func ParseRosSym(data []byte) ([]SymEntry, *StringBlob, error) {
	const stage = "rossym parser"

	if len(data) < rosSymHeaderSize {
		return nil, nil, Newf(stage, MalformedImage, "section shorter than header")
	}
	symbolsOff, _ := readU32(data, 0)
	symbolsLen, _ := readU32(data, 4)
	stringsOff, _ := readU32(data, 8)
	stringsLen, _ := readU32(data, 12)

	if uint64(symbolsOff)+uint64(symbolsLen) > uint64(len(data)) {
		return nil, nil, Newf(stage, MalformedImage, "symbol array out of range")
	}
	if uint64(stringsOff)+uint64(stringsLen) > uint64(len(data)) {
		return nil, nil, Newf(stage, MalformedImage, "string blob out of range")
	}

	count := symbolsLen / rosSymEntrySize
	entries := make([]SymEntry, count)
	for i := uint32(0); i < count; i++ {
		off := int(symbolsOff + i*rosSymEntrySize)
		addr, _ := readU32(data, off)
		fileOff, _ := readU32(data, off+4)
		funcOff, _ := readU32(data, off+8)
		line, _ := readU32(data, off+12)
		entries[i] = SymEntry{Address: addr, FileOff: fileOff, FuncOff: funcOff, Line: line}
	}

	blob := &StringBlob{buf: append([]byte(nil), data[stringsOff:stringsOff+stringsLen]...)}
	return entries, blob, nil
}

// FindByAddress performs a binary search over a sorted entries slice,
// returning the first row at the given address (line == 0 rows sort first
// per §3, matching §8 invariant 5's round-trip expectations).
func FindByAddress(entries []SymEntry, address uint32) (SymEntry, bool) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].Address < address {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(entries) && entries[lo].Address == address {
		return entries[lo], true
	}
	return SymEntry{}, false
}
