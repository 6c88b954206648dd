package rossym

import "sort"

// SymEntry is the universal line-table row produced by every decoder and
// consumed by the merger and serializer.
type SymEntry struct {
	Address uint32 // image-relative virtual address
	FileOff uint32 // offset into the string blob of the source file path, 0 = unknown
	FuncOff uint32 // offset into the string blob of the function name, 0 = unknown
	Line    uint32 // source line number, 0 = no line (function boundary / file change)
}

// lessEntry implements the ordering from §3: sorted primarily by address
// ascending, with rows where Line == 0 preceding rows with Line != 0 at the
// same address.
func lessEntry(a, b SymEntry) bool {
	if a.Address != b.Address {
		return a.Address < b.Address
	}
	if (a.Line == 0) != (b.Line == 0) {
		return a.Line == 0
	}
	return false
}

// sortEntries sorts rows in place per §3 invariants 1-2.
func sortEntries(rows []SymEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessEntry(rows[i], rows[j])
	})
}
