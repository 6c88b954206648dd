package rossym

import (
	"encoding/binary"
	"strings"
)

// coffSymentSize is sizeof(COFF_SYMENT): an 8-byte name union, e_value(4),
// e_scnum(2), e_type(2), e_sclass(1), e_numaux(1).
const coffSymentSize = 18

// classExternal is the COFF storage class value C_EXT.
const classExternal = 2

// coffDerivedTypeShift/coffDerivedFunction decode the ISFCN(e_type) macro:
// the first derived-type field occupies bits 4-5 of the 16-bit type word,
// and DT_FCN == 2 marks a function.
const (
	coffDerivedTypeShift = 4
	coffDerivedFunction  = 2
)

func isFunctionType(eType uint16) bool {
	return (eType>>coffDerivedTypeShift)&0x3 == coffDerivedFunction
}

// DecodeCoff walks a raw COFF symbol record array and emits one row per
// record satisfying ISFCN(e_type) or e_sclass == C_EXT, per §4.D. sections
// supplies each section's VirtualAddress for 1-based e_scnum resolution.
func DecodeCoff(symtab, strtab []byte, sections []SectionHeader, idx *StringIndex) ([]SymEntry, error) {
	const stage = "coff decoder"

	if len(symtab)%coffSymentSize != 0 {
		return nil, Newf(stage, MalformedImage, "COFF symbol table size %d is not a multiple of %d", len(symtab), coffSymentSize)
	}
	count := len(symtab) / coffSymentSize

	var rows []SymEntry
	for i := 0; i < count; i++ {
		rec := symtab[i*coffSymentSize:]
		zeroes := binary.LittleEndian.Uint32(rec[0:])
		nameOffset := binary.LittleEndian.Uint32(rec[4:])
		var inlineName [8]byte
		copy(inlineName[:], rec[0:8])
		eValue := binary.LittleEndian.Uint32(rec[8:])
		eScnum := int16(binary.LittleEndian.Uint16(rec[12:]))
		eType := binary.LittleEndian.Uint16(rec[14:])
		eSclass := rec[16]
		eNumaux := int(rec[17])

		if isFunctionType(eType) || eSclass == classExternal {
			address := eValue
			if eScnum > 0 {
				if int(eScnum) > len(sections) {
					return nil, Newf(stage, MalformedImage, "invalid section number %d in COFF symbols (only %d sections present)", eScnum, len(sections))
				}
				address += sections[eScnum-1].VirtualAddress
			}

			var name string
			if zeroes == 0 {
				name = cStringAt(strtab, nameOffset)
				if len(name) > 255 {
					return nil, Newf(stage, NameTooLong, "function name %q exceeds 255 bytes", name)
				}
			} else {
				nz := 0
				for nz < 8 && inlineName[nz] != 0 {
					nz++
				}
				name = string(inlineName[:nz])
			}

			// stdcall demangling: strip from the last '@' onward, then a
			// leading '_' or '@'.
			if at := strings.LastIndexByte(name, '@'); at >= 0 {
				name = name[:at]
			}
			if len(name) > 0 && (name[0] == '_' || name[0] == '@') {
				name = name[1:]
			}

			rows = append(rows, SymEntry{
				Address: address,
				FuncOff: idx.Intern(name),
			})
		}

		i += eNumaux
	}

	sortEntries(rows)
	return rows, nil
}
