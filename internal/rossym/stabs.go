package rossym

import (
	"encoding/binary"
	"strings"
)

// stabRecordSize is sizeof(STAB_ENTRY): n_strx(4) + n_type(1) + n_other(1,
// unused) + n_desc(2) + n_value(4).
const stabRecordSize = 12

// STABS record type codes used by the decoder. n_other is read but never
// inspected.
const (
	nFUN   = 0x24
	nSLINE = 0x44
	nSO    = 0x64
	nBINCL = 0x82
	nSOL   = 0x84
)

type stabRows struct {
	rows []SymEntry
}

func (r *stabRows) have() bool { return len(r.rows) > 0 }

func (r *stabRows) current() *SymEntry {
	return &r.rows[len(r.rows)-1]
}

func (r *stabRows) push(e SymEntry) {
	r.rows = append(r.rows, e)
}

// cStringAt reads a NUL-terminated string from buf starting at off,
// returning "" if off is out of range rather than panicking.
func cStringAt(buf []byte, off uint32) string {
	if off >= uint32(len(buf)) {
		return ""
	}
	end := off
	for end < uint32(len(buf)) && buf[end] != 0 {
		end++
	}
	return string(buf[off:end])
}

// DecodeStabs walks a raw .stab record array against its companion
// .stabstr blob and emits the rows described by §4.C, interning every
// referenced string through idx. The returned rows are sorted per §3.
func DecodeStabs(stab, stabstr []byte, imageBase uint32, idx *StringIndex) ([]SymEntry, error) {
	const stage = "stabs decoder"

	if len(stab)%stabRecordSize != 0 {
		return nil, Newf(stage, MalformedImage, ".stab section size %d is not a multiple of %d", len(stab), stabRecordSize)
	}
	count := len(stab) / stabRecordSize

	var rows stabRows
	lastFunctionAddress := uint32(0)

	for i := 0; i < count; i++ {
		rec := stab[i*stabRecordSize:]
		nStrx := binary.LittleEndian.Uint32(rec[0:])
		nType := rec[4]
		nDesc := binary.LittleEndian.Uint16(rec[6:])
		nValue := binary.LittleEndian.Uint32(rec[8:])

		var address uint32
		if lastFunctionAddress == 0 {
			address = nValue - imageBase
		} else {
			address = lastFunctionAddress + nValue
		}

		switch nType {
		case nSO, nSOL, nBINCL:
			name := cStringAt(stabstr, nStrx)
			if nStrx > uint32(len(stabstr)) || name == "" ||
				strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\") ||
				nValue < imageBase {
				continue
			}
			if !rows.have() || rows.current().Address != address {
				prevFunc := uint32(0)
				if rows.have() {
					prevFunc = rows.current().FuncOff
				}
				rows.push(SymEntry{Address: address, FuncOff: prevFunc})
			}
			rows.current().FileOff = idx.Intern(name)

		case nFUN:
			if nDesc == 0 || nValue < imageBase {
				lastFunctionAddress = 0
				continue
			}
			if !rows.have() || rows.current().Address != address {
				prevFile := uint32(0)
				if rows.have() {
					prevFile = rows.current().FileOff
				}
				rows.push(SymEntry{Address: address, FileOff: prevFile})
			}
			name := cStringAt(stabstr, nStrx)
			if i := strings.IndexByte(name, ':'); i >= 0 {
				name = name[:i]
			}
			if len(name) > 255 {
				return nil, Newf(stage, NameTooLong, "function name %q exceeds 255 bytes", name)
			}
			rows.current().FuncOff = idx.Intern(name)
			rows.current().Line = 0
			lastFunctionAddress = address

		case nSLINE:
			if !rows.have() || rows.current().Address != address {
				prevFile, prevFunc := uint32(0), uint32(0)
				if rows.have() {
					prevFile = rows.current().FileOff
					prevFunc = rows.current().FuncOff
				}
				rows.push(SymEntry{Address: address, FileOff: prevFile, FuncOff: prevFunc})
			}
			rows.current().Line = uint32(nDesc)

		default:
			continue
		}
	}

	sortEntries(rows.rows)
	return rows.rows, nil
}
