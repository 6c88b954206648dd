package rossym

// Merge superimposes function-name coverage from coffRows onto the
// line/file coverage of stabRows, producing a single sorted, deduplicated
// table per §4.F.
//
// When stabRows is empty there is nothing to superimpose onto, so the coff
// rows are emitted directly (§8 boundary: "image with only COFF symbols ⇒
// every emitted row has line == 0 and non-zero func_off").
func Merge(stabRows, coffRows []SymEntry) []SymEntry {
	if len(stabRows) == 0 {
		out := make([]SymEntry, len(coffRows))
		copy(out, coffRows)
		sortEntries(out)
		return out
	}

	// A defensive copy plus an explicit consumed bitset stands in for the
	// source's in-place zeroing of consumed COFF rows (§9).
	coff := make([]SymEntry, len(coffRows))
	copy(coff, coffRows)
	consumed := make([]bool, len(coff))

	var merged []SymEntry
	stabFunctionStartAddress := uint32(0)
	stabFunctionStringOffset := uint32(0)
	coffIdx := 0

	i := 0
	for i < len(stabRows) {
		current := stabRows[i]

		j := i + 1
		for j < len(stabRows) && stabRows[j].Address == current.Address {
			if stabRows[j].FileOff != 0 && current.FileOff == 0 {
				current.FileOff = stabRows[j].FileOff
			}
			if stabRows[j].FuncOff != 0 && current.FuncOff == 0 {
				current.FuncOff = stabRows[j].FuncOff
			}
			if stabRows[j].Line != 0 && current.Line == 0 {
				current.Line = stabRows[j].Line
			}
			j++
		}
		i = j

		for coffIdx < len(coff)-1 && coff[coffIdx+1].Address <= current.Address {
			coffIdx++
		}

		newStabFunctionStringOffset := current.FuncOff
		if len(coff) > 0 && !consumed[coffIdx] &&
			coff[coffIdx].Address < current.Address &&
			stabFunctionStartAddress < coff[coffIdx].Address &&
			coff[coffIdx].FuncOff != 0 {
			current.FuncOff = coff[coffIdx].FuncOff
			consumed[coffIdx] = true
		}
		if stabFunctionStringOffset != newStabFunctionStringOffset {
			stabFunctionStartAddress = current.Address
		}
		stabFunctionStringOffset = newStabFunctionStringOffset

		merged = append(merged, current)
	}

	// Functions that have no analog in the STABS data.
	for k := range coff {
		if !consumed[k] && coff[k].Address != 0 && coff[k].FuncOff != 0 {
			merged = append(merged, coff[k])
		}
	}

	sortEntries(merged)
	return merged
}
