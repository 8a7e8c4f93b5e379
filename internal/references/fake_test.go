package references

import (
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

const hostPath = "/media/show/ref.xml"

type fakeSource struct {
	general []mediainfo.Field
	kind    mediainfo.StreamKind
	fields  []mediainfo.Field
	size    int64
	packets int
	step    int64
	// burst makes Drained report true after every burst packets.
	burst int
}

// fakeLibrary serves canned reports by file name and doubles as the file
// system of the compositor.
type fakeLibrary struct {
	sources map[string]fakeSource
	seeks   map[string][]int64
	parsers []*fakeParser
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{sources: map[string]fakeSource{}, seeks: map[string][]int64{}}
}

func (l *fakeLibrary) add(name string, src fakeSource) {
	l.sources[name] = src
}

func (l *fakeLibrary) factory() Parser {
	p := &fakeParser{lib: l, options: map[string]string{}}
	l.parsers = append(l.parsers, p)
	return p
}

func (l *fakeLibrary) Exists(path string) bool {
	_, ok := l.sources[path]
	return ok
}

func (l *fakeLibrary) Size(path string) int64 {
	if src, ok := l.sources[path]; ok {
		return src.size
	}
	return -1
}

type fakeParser struct {
	lib     *fakeLibrary
	options map[string]string
	file    string
	src     fakeSource
	report  *mediainfo.Report
	next    int
	packet  mediainfo.Packet
	unsynch int
	closed  bool
}

func (p *fakeParser) Open(names []string) bool {
	if len(names) == 0 {
		return false
	}
	src, ok := p.lib.sources[names[0]]
	if !ok {
		return false
	}
	p.file, p.src = names[0], src
	p.report = mediainfo.NewReport(names[0])
	for _, field := range src.general {
		p.report.Fill(mediainfo.StreamGeneral, 0, field.Name, field.Value, true)
	}
	if src.kind != mediainfo.StreamNone {
		pos := p.report.Prepare(src.kind, -1)
		for _, field := range src.fields {
			p.report.Fill(src.kind, pos, field.Name, field.Value, true)
		}
	}
	return true
}

func (p *fakeParser) Option(name, value string) string {
	p.options[strings.ToLower(name)] = value
	return ""
}

func (p *fakeParser) Count(kind mediainfo.StreamKind) int {
	if p.report == nil {
		return 0
	}
	return p.report.Count(kind)
}

func (p *fakeParser) Get(kind mediainfo.StreamKind, pos int, name string) string {
	if p.report == nil {
		return ""
	}
	return p.report.Retrieve(kind, pos, name)
}

func (p *fakeParser) Fields(kind mediainfo.StreamKind, pos int) []mediainfo.Field {
	if p.report == nil {
		return nil
	}
	return p.report.Fields(kind, pos)
}

func (p *fakeParser) OpenNextPacket() mediainfo.Status {
	if p.report == nil || p.next >= p.src.packets {
		return mediainfo.StatusAccepted
	}
	p.packet = mediainfo.Packet{
		Kind:  p.src.kind,
		File:  p.file,
		DTS:   parseInt(p.options["file_demux_offset_dts"]) + int64(p.next)*p.src.step,
		Frame: parseInt(p.options["file_demux_offset_frame"]) + int64(p.next),
	}
	p.next++
	return mediainfo.StatusAccepted | mediainfo.StatusPacket
}

func (p *fakeParser) Packet() mediainfo.Packet {
	return p.packet
}

func (p *fakeParser) Seek(method mediainfo.SeekMethod, value int64) string {
	p.lib.seeks[p.file] = append(p.lib.seeks[p.file], value)
	if method == mediainfo.SeekFrame {
		if value > int64(p.src.packets) {
			return "Invalid value"
		}
		p.next = int(value)
		return ""
	}
	p.next = 0
	return ""
}

func (p *fakeParser) DTS() int64 {
	if p.report == nil || p.next >= p.src.packets {
		return -1
	}
	return int64(p.next) * p.src.step
}

func (p *fakeParser) Drained() bool {
	if p.report == nil || p.next >= p.src.packets {
		return true
	}
	return p.src.burst > 0 && p.next > 0 && p.next%p.src.burst == 0
}

func (p *fakeParser) FileSize() int64 {
	if p.report == nil {
		return -1
	}
	return p.src.size
}

func (p *fakeParser) Unsynch() {
	p.unsynch++
}

func (p *fakeParser) Close() error {
	p.closed = true
	return nil
}

func newTestCompositor(lib *fakeLibrary, cfg Config, opts ...Option) (*Compositor, *mediainfo.Report) {
	out := mediainfo.NewReport(hostPath)
	opts = append([]Option{WithParserFactory(lib.factory), WithFileSystem(lib)}, opts...)
	return New(out, hostPath, 100, cfg, opts...), out
}

func field(name, value string) mediainfo.Field {
	return mediainfo.Field{Name: name, Value: value}
}

// audioSource describes a PCM file with the given totals.
func audioSource(durationMs, streamSize, bitRate string, size int64) fakeSource {
	return fakeSource{
		general: []mediainfo.Field{
			field("Format", "Wave"),
			field("FileSize", intString(size)),
		},
		kind: mediainfo.StreamAudio,
		fields: []mediainfo.Field{
			field("Format", "PCM"),
			field("Duration", durationMs),
			field("StreamSize", streamSize),
			field("BitRate", bitRate),
		},
		size: size,
	}
}
