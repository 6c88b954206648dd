package rossym

import "strings"

// LineCallback is one (address, module_base, file_name, line) tuple
// delivered by the external debug-info iterator collaborator (§6).
type LineCallback struct {
	Address    uint64
	ModuleBase uint64
	FileName   string
	Line       uint32
}

// LineIterator invokes deliver once per source line known to the external
// debug-info engine, stopping early if deliver returns false. It stands for
// the collaborator interface of §6, one call per (address, line) pair; the
// process handle and module base are bound inside the LineIterator value,
// which receives only the callback.
type LineIterator func(deliver func(LineCallback) bool) error

// SymbolResolver resolves the function name containing address, mirroring
// the companion "symbol_from_address" query of §6. ok is false when no
// function covers the address, which drops the callback per §4.E.
type SymbolResolver func(address uint64) (name string, ok bool)

// AdaptLineIterator converts iterate's callbacks into the shared SymEntry
// sequence (§4.E), computing the source-path chop exactly once and interning
// every referenced string through idx.
func AdaptLineIterator(iterate LineIterator, resolve SymbolResolver, sourcePath string, idx *StringIndex) ([]SymEntry, error) {
	const stage = "external line iterator adapter"

	var rows []SymEntry
	var chop string
	chopSet := false

	deliver := func(cb LineCallback) bool {
		if !chopSet {
			if sep := strings.LastIndexAny(cb.FileName, "/\\"); sep >= 0 {
				chop = computePathChop(cb.FileName, sep, sourcePath)
				chopSet = true
			}
		}

		tail := cb.FileName
		if chopSet && strings.HasPrefix(cb.FileName, chop) {
			tail = cb.FileName[len(chop):]
		}

		name, ok := resolve(cb.Address)
		if !ok {
			return true
		}

		rows = append(rows, SymEntry{
			Address: uint32(cb.Address - cb.ModuleBase),
			FileOff: idx.Intern(tail),
			FuncOff: idx.Intern(name),
			Line:    cb.Line,
		})
		return true
	}

	if err := iterate(deliver); err != nil {
		return nil, Wrap(stage, IoError, err)
	}

	sortEntries(rows)
	return rows, nil
}

// computePathChop implements §4.E point 1: walk backwards through fileName's
// path components before lastSep, probing <sourcePath>/<suffix> for each
// candidate on the host filesystem and freezing on the first that opens. If
// none open, the chop falls back to the full directory portion up to and
// including the first separator. An empty sourcePath skips the probe and
// goes straight to that fallback.
func computePathChop(fileName string, lastSep int, sourcePath string) string {
	for i := lastSep - 1; sourcePath != "" && i >= 0; i-- {
		if fileName[i] != '/' && fileName[i] != '\\' {
			continue
		}
		suffix := fileName[i+1:]
		if fileReadable(sourcePath + "/" + suffix) {
			return fileName[:i+1]
		}
	}
	first := strings.IndexAny(fileName, "/\\")
	if first < 0 {
		return ""
	}
	return fileName[:first+1]
}
