package rossym

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAdaptLineIteratorResolvesAndChopsPath(t *testing.T) {
	sourceDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sourceDir, "sub", "dir"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "sub", "dir", "file.c"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	const moduleBase = 0x400000
	fileName := "/orig/tree/sub/dir/file.c"

	iterate := func(deliver func(LineCallback) bool) error {
		deliver(LineCallback{Address: moduleBase + 0x10, ModuleBase: moduleBase, FileName: fileName, Line: 7})
		return nil
	}
	resolve := func(address uint64) (string, bool) {
		if address == moduleBase+0x10 {
			return "main", true
		}
		return "", false
	}

	idx := NewStringIndex(NewStringBlob())
	rows, err := AdaptLineIterator(iterate, resolve, sourceDir, idx)
	if err != nil {
		t.Fatalf("AdaptLineIterator: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Address != 0x10 {
		t.Errorf("Address = %#x, want %#x (module-relative)", rows[0].Address, 0x10)
	}
	if rows[0].Line != 7 {
		t.Errorf("Line = %d, want 7", rows[0].Line)
	}
	if got := idx.Blob().At(rows[0].FileOff); got != "sub/dir/file.c" {
		t.Errorf("FileOff resolves to %q, want %q (chopped at the probed directory)", got, "sub/dir/file.c")
	}
	if got := idx.Blob().At(rows[0].FuncOff); got != "main" {
		t.Errorf("FuncOff resolves to %q, want %q", got, "main")
	}
}

func TestAdaptLineIteratorDropsUnresolvedAddresses(t *testing.T) {
	iterate := func(deliver func(LineCallback) bool) error {
		deliver(LineCallback{Address: 1, ModuleBase: 0, FileName: "/a/b.c", Line: 1})
		return nil
	}
	resolve := func(address uint64) (string, bool) { return "", false }

	idx := NewStringIndex(NewStringBlob())
	rows, err := AdaptLineIterator(iterate, resolve, "", idx)
	if err != nil {
		t.Fatalf("AdaptLineIterator: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0 (no symbol covers the address)", len(rows))
	}
}

func TestComputePathChopFallsBackToFirstSeparator(t *testing.T) {
	// No candidate probed under the empty source tree ever opens, so the
	// chop falls back to the directory portion up to and including the
	// first separator.
	got := computePathChop("a/b/c.c", 3, t.TempDir())
	if want := "a/"; got != want {
		t.Errorf("computePathChop fallback = %q, want %q", got, want)
	}
}
