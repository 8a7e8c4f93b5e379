package references

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

func TestRootedFileSystemHidesOutsideFiles(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a.wav")
	outside := filepath.Join(t.TempDir(), "b.wav")
	for _, path := range []string{inside, outside} {
		if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	fs := NewRootedFileSystem(root)

	if !fs.Exists(inside) || fs.Size(inside) != 4 {
		t.Fatalf("inside file hidden")
	}
	if fs.Exists(outside) || fs.Size(outside) != -1 {
		t.Fatalf("outside file visible")
	}
	if fs.Exists(filepath.Join(root, "..", filepath.Base(outside))) {
		t.Fatalf("dot-dot path visible")
	}
}

func TestResolveRejectsNamesOutsideRoot(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a.wav")
	outside := filepath.Join(t.TempDir(), "b.wav")
	for _, path := range []string{inside, outside} {
		if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig(), WithFileSystem(NewRootedFileSystem(root)))

	seq := NewSequence(mediainfo.StreamAudio, 1, inside, outside)
	c.AddSequence(seq)
	c.resolve(seq)

	if !seq.Finished || len(c.Problems()) != 1 {
		t.Fatalf("finished=%v problems=%v, want the sequence rejected", seq.Finished, c.Problems())
	}
}
