package rossym

import "testing"

func TestBuildRosSymEmptyEntriesOmitsSection(t *testing.T) {
	if got := BuildRosSym(nil, NewStringBlob()); got != nil {
		t.Errorf("BuildRosSym(nil) = %v, want nil", got)
	}
}

func TestBuildAndParseRosSymRoundTrip(t *testing.T) {
	blob := NewStringBlob()
	idx := NewStringIndex(blob)
	entries := []SymEntry{
		{Address: 0x10, FuncOff: idx.Intern("alpha"), FileOff: idx.Intern("a.c")},
		{Address: 0x10, FuncOff: idx.Intern("alpha"), FileOff: idx.Intern("a.c"), Line: 3},
		{Address: 0x20, FuncOff: idx.Intern("beta"), FileOff: idx.Intern("b.c"), Line: 1},
	}

	section := BuildRosSym(entries, blob)
	if section == nil {
		t.Fatal("BuildRosSym returned nil for non-empty entries")
	}

	gotEntries, gotBlob, err := ParseRosSym(section)
	if err != nil {
		t.Fatalf("ParseRosSym: %v", err)
	}
	if len(gotEntries) != len(entries) {
		t.Fatalf("len(gotEntries) = %d, want %d", len(gotEntries), len(entries))
	}
	for i, want := range entries {
		got := gotEntries[i]
		if got.Address != want.Address || got.Line != want.Line {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
		if gotBlob.At(got.FuncOff) != blob.At(want.FuncOff) {
			t.Errorf("entry %d func name = %q, want %q", i, gotBlob.At(got.FuncOff), blob.At(want.FuncOff))
		}
	}
}

func TestParseRosSymRejectsShortHeader(t *testing.T) {
	_, _, err := ParseRosSym(make([]byte, 4))
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != MalformedImage {
		t.Fatalf("ParseRosSym error = %v, want MalformedImage", err)
	}
}

func TestFindByAddress(t *testing.T) {
	entries := []SymEntry{
		{Address: 0x10},
		{Address: 0x20, Line: 1},
		{Address: 0x20, Line: 2},
		{Address: 0x30},
	}

	if got, ok := FindByAddress(entries, 0x20); !ok || got.Address != 0x20 {
		t.Errorf("FindByAddress(0x20) = %+v, %v, want a row at 0x20", got, ok)
	}
	if _, ok := FindByAddress(entries, 0x25); ok {
		t.Errorf("FindByAddress(0x25) found a row, want none")
	}
	if _, ok := FindByAddress(nil, 0x10); ok {
		t.Errorf("FindByAddress on empty slice found a row, want none")
	}
}
