package mediainfo

import "strings"

type StreamKind string

const (
	StreamGeneral StreamKind = "General"
	StreamVideo   StreamKind = "Video"
	StreamAudio   StreamKind = "Audio"
	StreamImage   StreamKind = "Image"
	StreamText    StreamKind = "Text"
	StreamOther   StreamKind = "Other"
	StreamMenu    StreamKind = "Menu"
	// StreamNone marks a sequence whose kind is not known yet, or no longer
	// contributes a slot.
	StreamNone StreamKind = ""
)

// StreamKinds lists every per-stream kind in report order. General is not part
// of it.
var StreamKinds = []StreamKind{StreamVideo, StreamAudio, StreamImage, StreamText, StreamOther, StreamMenu}

// Rank orders kinds the way reports are laid out; StreamNone sorts last.
func (k StreamKind) Rank() int {
	switch k {
	case StreamGeneral:
		return 0
	case StreamVideo:
		return 1
	case StreamAudio:
		return 2
	case StreamImage:
		return 3
	case StreamText:
		return 4
	case StreamOther:
		return 5
	case StreamMenu:
		return 6
	default:
		return 7
	}
}

func ParseStreamKind(value string) (StreamKind, bool) {
	for _, kind := range append([]StreamKind{StreamGeneral}, StreamKinds...) {
		if strings.EqualFold(string(kind), value) {
			return kind, true
		}
	}
	return StreamNone, value == ""
}

type Field struct {
	Name  string
	Value string
}

type Stream struct {
	Kind   StreamKind
	Fields []Field
}

type Report struct {
	Ref     string
	General Stream
	Streams []Stream
}

func NewReport(ref string) *Report {
	return &Report{Ref: ref, General: Stream{Kind: StreamGeneral}}
}

func (r *Report) Count(kind StreamKind) int {
	if kind == StreamGeneral {
		return 1
	}
	count := 0
	for _, stream := range r.Streams {
		if stream.Kind == kind {
			count++
		}
	}
	return count
}

// Stream returns the pos-th stream of kind, or nil.
func (r *Report) Stream(kind StreamKind, pos int) *Stream {
	if kind == StreamGeneral {
		if pos != 0 {
			return nil
		}
		return &r.General
	}
	if i := r.index(kind, pos); i >= 0 {
		return &r.Streams[i]
	}
	return nil
}

func (r *Report) index(kind StreamKind, pos int) int {
	if pos < 0 {
		return -1
	}
	seen := 0
	for i, stream := range r.Streams {
		if stream.Kind != kind {
			continue
		}
		if seen == pos {
			return i
		}
		seen++
	}
	return -1
}

func (r *Report) Retrieve(kind StreamKind, pos int, name string) string {
	stream := r.Stream(kind, pos)
	if stream == nil {
		return ""
	}
	return findField(stream.Fields, name)
}

func (r *Report) Fields(kind StreamKind, pos int) []Field {
	stream := r.Stream(kind, pos)
	if stream == nil {
		return nil
	}
	return stream.Fields
}

// Fill sets a field. Without overwrite an existing value is kept and the new
// one is appended with " / ". An empty value with overwrite clears the field.
func (r *Report) Fill(kind StreamKind, pos int, name, value string, overwrite bool) {
	stream := r.Stream(kind, pos)
	if stream == nil {
		return
	}
	if overwrite {
		if value == "" {
			stream.Fields = removeField(stream.Fields, name)
			return
		}
		stream.Fields = setFieldValue(stream.Fields, name, value)
		return
	}
	if value == "" {
		return
	}
	existing := findField(stream.Fields, name)
	if existing == "" {
		stream.Fields = setFieldValue(stream.Fields, name, value)
		return
	}
	stream.Fields = setFieldValue(stream.Fields, name, existing+" / "+value)
}

func (r *Report) Clear(kind StreamKind, pos int, name string) {
	if stream := r.Stream(kind, pos); stream != nil {
		stream.Fields = removeField(stream.Fields, name)
	}
}

// Prepare inserts an empty stream of kind at pos (appending when pos is
// negative or past the end) and returns its position.
func (r *Report) Prepare(kind StreamKind, pos int) int {
	count := r.Count(kind)
	if pos < 0 || pos > count {
		pos = count
	}
	stream := Stream{Kind: kind}
	at := r.index(kind, pos)
	if at < 0 {
		at = r.insertionPoint(kind)
	}
	r.Streams = append(r.Streams, Stream{})
	copy(r.Streams[at+1:], r.Streams[at:])
	r.Streams[at] = stream
	return pos
}

// insertionPoint is the index after the last stream whose kind ranks before or
// equal to kind.
func (r *Report) insertionPoint(kind StreamKind) int {
	at := 0
	for i, stream := range r.Streams {
		if stream.Kind.Rank() <= kind.Rank() {
			at = i + 1
		}
	}
	return at
}

func (r *Report) Erase(kind StreamKind, pos int) {
	i := r.index(kind, pos)
	if i < 0 {
		return
	}
	r.Streams = append(r.Streams[:i], r.Streams[i+1:]...)
}

// FillCodecID stores a codec identifier and, when the stream has no format
// yet, the format it maps to.
func (r *Report) FillCodecID(kind StreamKind, pos int, codecID string) {
	if codecID == "" {
		return
	}
	r.Fill(kind, pos, "CodecID", codecID, true)
	if r.Retrieve(kind, pos, "Format") != "" {
		return
	}
	if format := FormatFromCodecID(codecID); format != "" {
		r.Fill(kind, pos, "Format", format, true)
	}
}

// NoStreamID marks a stream without a usable numeric ID.
const NoStreamID = ^uint64(0)
