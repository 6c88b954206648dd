package rossym

import (
	"bytes"
)

// baseRelocBlockHeaderSize is the fixed 8-byte IMAGE_BASE_RELOCATION header
// preceding each block's array of 16-bit type/offset entries.
const baseRelocBlockHeaderSize = 8

// CompactRelocations walks the IMAGE_BASE_RELOCATION blocks described by
// dir within pi, dropping any block byte-identical to one already kept and
// any block whose VirtualAddress falls outside every known section. It
// returns the compacted byte sequence (possibly empty) ready to replace the
// original relocation directory contents.
func CompactRelocations(pi *ParsedImage, dir DataDirectory) ([]byte, error) {
	const stage = "relocation compactor"

	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, nil
	}

	fileOff, ok := rvaToFileOffset(pi, dir.VirtualAddress)
	if !ok {
		return nil, Newf(stage, MalformedImage, "base relocation directory RVA out of range")
	}
	regionEnd := fileOff + int(dir.Size)
	if regionEnd > len(pi.Data) {
		return nil, Newf(stage, MalformedImage, "base relocation directory extends past end of file")
	}

	var kept [][]byte
	out := new(bytes.Buffer)

	off := fileOff
	for off+baseRelocBlockHeaderSize <= regionEnd {
		blockVA, _ := readU32(pi.Data, off)
		blockSize, _ := readU32(pi.Data, off+4)
		if blockSize == 0 {
			break
		}
		if int(blockSize) < baseRelocBlockHeaderSize || off+int(blockSize) > regionEnd {
			return nil, Newf(stage, MalformedImage, "base relocation block size out of range")
		}
		block := pi.Data[off : off+int(blockSize)]

		if !rvaInAnySection(pi, blockVA) {
			off += int(blockSize)
			continue
		}

		dup := false
		for _, k := range kept {
			if bytes.Equal(k, block) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, block)
			out.Write(block)
		}
		off += int(blockSize)
	}

	return out.Bytes(), nil
}

func rvaToFileOffset(pi *ParsedImage, rva uint32) (int, bool) {
	for i := range pi.Sections {
		sh := &pi.Sections[i]
		if rva >= sh.VirtualAddress && rva < sh.VirtualAddress+sh.SizeOfRawData {
			return int(sh.PointerToRawData + (rva - sh.VirtualAddress)), true
		}
	}
	return 0, false
}

func rvaInAnySection(pi *ParsedImage, rva uint32) bool {
	for i := range pi.Sections {
		sh := &pi.Sections[i]
		size := sh.VirtualSize
		if size == 0 {
			size = sh.SizeOfRawData
		}
		if rva >= sh.VirtualAddress && rva < sh.VirtualAddress+size {
			return true
		}
	}
	return false
}
