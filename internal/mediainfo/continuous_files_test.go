package mediainfo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSizedFile(t *testing.T, path string, size int) {
	t.Helper()
	data := make([]byte, size)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func TestDetectContinuousFileSetStopsAtGap(t *testing.T) {
	dir := t.TempDir()
	start := filepath.Join(dir, "frame_0000.dpx")
	writeSizedFile(t, start, 3)
	writeSizedFile(t, filepath.Join(dir, "frame_0001.dpx"), 5)
	writeSizedFile(t, filepath.Join(dir, "frame_0003.dpx"), 7)
	writeSizedFile(t, filepath.Join(dir, "other_0002.dpx"), 11)

	set, ok := detectContinuousFileSet(start)
	if !ok {
		t.Fatalf("detectContinuousFileSet() ok=false, want true")
	}
	if len(set.Paths) != 2 {
		t.Fatalf("len(Paths)=%d, want 2", len(set.Paths))
	}
	wantLast := filepath.Join(dir, "frame_0001.dpx")
	if set.LastPath() != wantLast {
		t.Fatalf("LastPath=%q, want %q", set.LastPath(), wantLast)
	}
	if set.TotalSize != 8 {
		t.Fatalf("TotalSize=%d, want 8", set.TotalSize)
	}
}

func TestDetectContinuousFileSetRequiresFollowingFile(t *testing.T) {
	dir := t.TempDir()
	start := filepath.Join(dir, "00000.png")
	writeSizedFile(t, start, 3)

	if _, ok := detectContinuousFileSet(start); ok {
		t.Fatalf("detectContinuousFileSet() ok=true, want false")
	}
}
