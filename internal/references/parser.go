package references

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// Parser analyzes one source. *mediainfo.Instance implements it.
type Parser interface {
	Open(names []string) bool
	Option(name, value string) string
	Count(kind mediainfo.StreamKind) int
	Get(kind mediainfo.StreamKind, pos int, name string) string
	Fields(kind mediainfo.StreamKind, pos int) []mediainfo.Field
	OpenNextPacket() mediainfo.Status
	Packet() mediainfo.Packet
	Seek(method mediainfo.SeekMethod, value int64) string
	// DTS is the source-local timestamp of the next packet, -1 when unknown.
	DTS() int64
	Drained() bool
	FileSize() int64
	Unsynch()
	Close() error
}

type ParserFactory func() Parser

func newInstance() Parser {
	return mediainfo.NewInstance()
}

// Output is the report every sequence is merged into. *mediainfo.Report
// implements it.
type Output interface {
	Count(kind mediainfo.StreamKind) int
	Retrieve(kind mediainfo.StreamKind, pos int, name string) string
	Fill(kind mediainfo.StreamKind, pos int, name, value string, overwrite bool)
	Clear(kind mediainfo.StreamKind, pos int, name string)
	Prepare(kind mediainfo.StreamKind, pos int) int
	Erase(kind mediainfo.StreamKind, pos int)
	FillCodecID(kind mediainfo.StreamKind, pos int, codecID string)
}

type FileSystem interface {
	Exists(path string) bool
	// Size returns -1 when the size cannot be read.
	Size(path string) int64
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

func (osFileSystem) Size(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return stat.Size()
}

type rootedFileSystem struct {
	root string
}

// NewRootedFileSystem hides every file outside root, so references that
// leave it resolve as missing.
func NewRootedFileSystem(root string) FileSystem {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return rootedFileSystem{root: root}
}

// Contains reports whether path lies under the root.
func (fs rootedFileSystem) Contains(path string) bool {
	if strings.Contains(path, protocolMarker) {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(fs.root, abs)
	return err == nil && filepath.IsLocal(rel)
}

func (fs rootedFileSystem) Exists(path string) bool {
	return fs.Contains(path) && osFileSystem{}.Exists(path)
}

func (fs rootedFileSystem) Size(path string) int64 {
	if !fs.Contains(path) {
		return -1
	}
	return osFileSystem{}.Size(path)
}
