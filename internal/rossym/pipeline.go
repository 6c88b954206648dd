package rossym

// Options controls how Convert gathers symbol rows beyond what the image
// itself carries (§6 CLI contract, §10 supplemented feature: -s plumbing).
type Options struct {
	// SourcePath, when non-empty, is the directory consulted by the
	// external line iterator's path-chop heuristic (§4.E).
	SourcePath string

	// Iterate and Resolve, when both non-nil, supply an external debug-info
	// engine's line table. Its rows are added to the STABS rows before the
	// merge with COFF rows; STABS and COFF decoding still run.
	Iterate LineIterator
	Resolve SymbolResolver

	// Log, when non-nil, receives progress messages (§10 supplemented
	// feature: verbose/quiet mode via -v).
	Log func(format string, args ...any)
}

func (o *Options) logf(format string, args ...any) {
	if o.Log != nil {
		o.Log(format, args...)
	}
}

// Convert runs the full pipeline described by §2's component table over a
// single PE32 image: parse, decode STABS/COFF/external rows, merge, compact
// relocations, and rebuild the image with a .rossym section appended.
//
// It returns (nil, nil, err) wrapping IgnoreElf when data is an ELF object; the
// caller (per §6) should treat that as success and pass the input through
// unmodified.
func Convert(data []byte, opts Options) ([]byte, []SymEntry, error) {
	pi, err := ParseImage(data)
	if err != nil {
		return nil, nil, err
	}

	blob := NewStringBlob()
	idx := NewStringIndex(blob)

	var stabEntries []SymEntry
	if stab, stabstr := pi.Stab(), pi.StabStr(); stab != nil && stabstr != nil {
		stabEntries, err = DecodeStabs(stab, stabstr, pi.ImageBase, idx)
		if err != nil {
			return nil, nil, err
		}
		opts.logf("decoded %d stabs rows", len(stabEntries))
	}

	var coffEntries []SymEntry
	if symtab := pi.SymbolTable(); symtab != nil {
		coffEntries, err = DecodeCoff(symtab, pi.StringTable(), pi.Sections, idx)
		if err != nil {
			return nil, nil, err
		}
		opts.logf("decoded %d coff rows", len(coffEntries))
	}

	var externalEntries []SymEntry
	if opts.Iterate != nil && opts.Resolve != nil {
		externalEntries, err = AdaptLineIterator(opts.Iterate, opts.Resolve, opts.SourcePath, idx)
		if err != nil {
			return nil, nil, err
		}
		opts.logf("decoded %d external line rows", len(externalEntries))
	}

	merged := Merge(append(stabEntries, externalEntries...), coffEntries)
	opts.logf("merged into %d rows", len(merged))

	rosSym := BuildRosSym(merged, blob)

	var compactedReloc []byte
	if dir := pi.BaseRelocDirectory(); dir.VirtualAddress != 0 {
		compactedReloc, err = CompactRelocations(pi, dir)
		if err != nil {
			return nil, nil, err
		}
	}

	out, err := WriteImage(pi, compactedReloc, rosSym)
	if err != nil {
		return nil, nil, err
	}

	return out, merged, nil
}

// SelfCheck re-parses out, re-reads its .rossym section, and confirms every
// merged row survived the write/parse round trip unchanged and that the
// rebuilt checksum verifies (§8 invariant 5, §10 supplemented feature: a
// round-trip self-test harness).
func SelfCheck(out []byte, want []SymEntry) error {
	const stage = "self check"

	if !VerifyChecksum(out) {
		return Newf(stage, MalformedImage, "rebuilt image checksum does not verify")
	}

	pi, err := ParseImage(out)
	if err != nil {
		return Wrap(stage, MalformedImage, err)
	}

	if len(want) == 0 {
		for i := range pi.Sections {
			if pi.SectionName(&pi.Sections[i]) == ".rossym" {
				return Newf(stage, MalformedImage, "empty merge still produced a .rossym section")
			}
		}
		return nil
	}

	var section []byte
	for i := range pi.Sections {
		if pi.SectionName(&pi.Sections[i]) == ".rossym" {
			section = pi.SectionData(&pi.Sections[i])
			break
		}
	}
	if section == nil {
		return Newf(stage, MalformedImage, ".rossym section missing after round trip")
	}

	got, blob, err := ParseRosSym(section)
	if err != nil {
		return Wrap(stage, MalformedImage, err)
	}
	if len(got) != len(want) {
		return Newf(stage, MalformedImage, "round trip produced %d rows, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Address != want[i].Address || got[i].Line != want[i].Line {
			return Newf(stage, MalformedImage, "row %d mismatch after round trip", i)
		}
		if blob.At(got[i].FileOff) != blob.At(want[i].FileOff) || blob.At(got[i].FuncOff) != blob.At(want[i].FuncOff) {
			return Newf(stage, MalformedImage, "row %d string mismatch after round trip", i)
		}
	}
	return nil
}
