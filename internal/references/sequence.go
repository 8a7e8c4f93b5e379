package references

import (
	"sort"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// NoID marks a sequence without a native stream ID.
const NoID = mediainfo.NoStreamID

// Resource is one file, or file set, contributing a trimmed part of a
// sequence's timeline.
type Resource struct {
	FileNames []string
	// EditRate is the rate trims are expressed in, 0 when unknown.
	EditRate          float64
	IgnoreEditsBefore int64
	// IgnoreEditsAfter and IgnoreEditsAfterDuration are -1 when unset.
	// IgnoreEditsAfter wins when both are set.
	IgnoreEditsAfter         int64
	IgnoreEditsAfterDuration int64

	// Position of the resource on the sequence timeline, in nanoseconds and
	// frames.
	DemuxOffsetDTS   int64
	DemuxOffsetFrame int64

	parser Parser
}

func NewResource(names ...string) *Resource {
	return &Resource{
		FileNames:                names,
		IgnoreEditsAfter:         -1,
		IgnoreEditsAfterDuration: -1,
	}
}

// editsAfter is the end trim in edit units, -1 when the resource plays to its
// end.
func (r *Resource) editsAfter() int64 {
	if r.IgnoreEditsAfter < 0 && r.IgnoreEditsAfterDuration >= 0 {
		return r.IgnoreEditsBefore + r.IgnoreEditsAfterDuration
	}
	return r.IgnoreEditsAfter
}

// Sequence is one logical track, possibly spanning several files.
type Sequence struct {
	StreamKind mediainfo.StreamKind
	StreamID   uint64
	// StreamPos is the slot of the sequence in the output, -1 before one is
	// reserved.
	StreamPos int
	FileNames []string
	IsMain    bool
	// IsCircular is set when the sequence points back at the analyzed file.
	IsCircular bool
	Resources  []*Resource
	FrameRate  float64
	// FileSize is -1 until known.
	FileSize int64
	Source   string
	MenuPos  int
	// Infos are fallback fields written when the source cannot be read, and
	// only into empty fields otherwise.
	Infos        map[string]string
	Finished     bool
	ResourcesPos int

	parser          Parser
	merged          bool
	listComputed    bool
	fileSizePresent bool
}

func NewSequence(kind mediainfo.StreamKind, id uint64, names ...string) *Sequence {
	return &Sequence{
		StreamKind: kind,
		StreamID:   id,
		StreamPos:  -1,
		FileNames:  names,
		FileSize:   -1,
		MenuPos:    -1,
		Infos:      make(map[string]string),
	}
}

// current is the parser of the resource being read.
func (s *Sequence) current() Parser {
	if s.ResourcesPos > 0 && s.ResourcesPos < len(s.Resources) {
		return s.Resources[s.ResourcesPos].parser
	}
	return s.parser
}

func (s *Sequence) resourceOffsetDTS() int64 {
	if s.ResourcesPos < len(s.Resources) {
		return s.Resources[s.ResourcesPos].DemuxOffsetDTS
	}
	return 0
}

// hasWork reports whether resources are left to read.
func (s *Sequence) hasWork() bool {
	return len(s.Resources) == 0 || s.ResourcesPos < len(s.Resources)
}

func (s *Sequence) updateFileName(oldName, newName string) {
	for i, name := range s.FileNames {
		if name == oldName {
			s.FileNames[i] = newName
		}
	}
	for _, res := range s.Resources {
		for i, name := range res.FileNames {
			if name == oldName {
				res.FileNames[i] = newName
			}
		}
	}
}

func (s *Sequence) infoNames() []string {
	names := make([]string, 0, len(s.Infos))
	for name := range s.Infos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// release closes every parser owned by the sequence.
func (s *Sequence) release() error {
	var first error
	for i, res := range s.Resources {
		if i == 0 || res.parser == nil {
			continue
		}
		if err := res.parser.Close(); err != nil && first == nil {
			first = err
		}
		res.parser = nil
	}
	if s.parser != nil {
		if err := s.parser.Close(); err != nil && first == nil {
			first = err
		}
		s.parser = nil
	}
	return first
}
