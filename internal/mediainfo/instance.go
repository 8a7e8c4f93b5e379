package mediainfo

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Instance analyzes one file, or one set of files forming a single essence,
// and can then hand out its content packet by packet.
type Instance struct {
	opts     AnalyzeOptions
	report   *Report
	status   Status
	files    []string
	sizes    []int64
	size     int64
	track    track
	edits    editRange
	hasTrack bool

	slots    []packetSlot
	laidOut  bool
	next     int
	packet   Packet
	window   int64
	handle   *os.File
	handleOf string
}

func NewInstance() *Instance {
	return NewInstanceWithOptions(defaultAnalyzeOptions())
}

func NewInstanceWithOptions(opts AnalyzeOptions) *Instance {
	return &Instance{opts: normalizeAnalyzeOptions(opts), size: -1}
}

// Option sets a MediaInfo-style option. It returns an empty string when the
// option was accepted.
func (in *Instance) Option(name, value string) string {
	msg := in.opts.setOption(name, value)
	in.opts = normalizeAnalyzeOptions(in.opts)
	return msg
}

func (in *Instance) Options() AnalyzeOptions {
	return in.opts
}

// Open analyzes names. It reports false when nothing could be read.
func (in *Instance) Open(names []string) bool {
	if len(names) == 0 {
		return false
	}
	files := append([]string(nil), names...)
	sizes := make([]int64, 0, len(files))
	for _, name := range files {
		stat, err := os.Stat(name)
		if err != nil || stat.IsDir() {
			return false
		}
		sizes = append(sizes, stat.Size())
	}

	header, err := readHeader(files[0], maxSniffBytes)
	if err != nil {
		return false
	}
	format := DetectFormat(header, files[0])

	if len(files) == 1 && isImageFormat(format) && in.opts.TestContinuousFileNames {
		if set, ok := detectContinuousFileSet(files[0]); ok {
			files = set.Paths
			sizes = set.Sizes
		}
	}

	t, ok := in.analyze(format, header, files, sizes)
	if !ok {
		t = track{Kind: StreamNone, Units: -1, Frames: blockFrames(files, sizes)}
	}
	in.files = files
	in.sizes = sizes
	in.size = 0
	for _, size := range sizes {
		in.size += size
	}
	in.track = t
	in.hasTrack = t.Kind != StreamNone
	in.edits = trimRange(t, in.opts.IgnoreEditsBefore, in.opts.IgnoreEditsAfter, in.opts.EditRate)
	in.report = NewReport(files[0])
	in.fill(format)
	in.status = StatusAccepted | StatusFilled | StatusFinalized
	return true
}

func (in *Instance) analyze(format string, header []byte, files []string, sizes []int64) (track, bool) {
	switch {
	case format == "Wave":
		file, err := os.Open(files[0])
		if err != nil {
			return track{}, false
		}
		defer file.Close()
		info, ok := parseWAV(file, sizes[0])
		if !ok {
			return track{}, false
		}
		t := wavTrack(info)
		t.File = files[0]
		return t, true
	case format == "FLAC":
		return parseFLAC(files[0], sizes[0])
	case isImageFormat(format):
		rate := in.opts.EditRate
		if rate == 0 {
			rate = in.opts.DemuxRate
		}
		return imageTrack(format, header, files, sizes, rate), true
	case format == "SubRip":
		return parseSubRip(files[0])
	case format == "SCC":
		return parseSCC(files[0])
	}
	return track{}, false
}

func (in *Instance) fill(format string) {
	r := in.report
	t := in.track
	first := in.files[0]

	r.Fill(StreamGeneral, 0, "CompleteName", first, true)
	if ext := strings.TrimPrefix(filepath.Ext(first), "."); ext != "" {
		r.Fill(StreamGeneral, 0, "FileExtension", ext, true)
	}
	r.Fill(StreamGeneral, 0, "Format", format, true)
	if len(in.files) > 1 {
		r.Fill(StreamGeneral, 0, "CompleteName_Last", in.files[len(in.files)-1], true)
	}
	if len(in.files) == 1 || !in.opts.IgnoreSequenceFileSize {
		r.Fill(StreamGeneral, 0, "FileSize", intString(in.size), true)
	}

	duration := t.durationMs(in.edits)
	if duration > 0 {
		r.Fill(StreamGeneral, 0, "Duration", intString(duration), true)
		r.Fill(StreamGeneral, 0, "OverallBitRate", intString(bitRate(in.size, duration)), true)
	}

	if in.hasTrack {
		pos := r.Prepare(t.Kind, -1)
		for _, field := range t.Fields {
			r.Fill(t.Kind, pos, field.Name, field.Value, true)
		}
		if duration >= 0 {
			r.Fill(t.Kind, pos, "Duration", intString(duration), true)
		}
		if t.Kind == StreamVideo && t.Rate > 0 {
			r.Fill(t.Kind, pos, "FrameRate", strconv.FormatFloat(t.Rate, 'f', 3, 64), true)
		}
		if in.edits.End >= 0 {
			count := in.edits.Units()
			switch {
			case t.FrameUnits && !(in.opts.IgnoreSequenceFilesCount && len(in.files) > 1):
				r.Fill(t.Kind, pos, "FrameCount", intString(count), true)
			case t.SampleUnits || t.UnitSize > 0:
				r.Fill(t.Kind, pos, "SamplingCount", intString(count), true)
			case t.Kind == StreamText:
				r.Fill(t.Kind, pos, "ElementCount", intString(int64(len(framesIn(t.Frames, in.edits)))), true)
			}
		}
		if size := t.streamSize(in.edits); size >= 0 {
			r.Fill(t.Kind, pos, "StreamSize", intString(size), true)
			if duration > 0 {
				r.Fill(t.Kind, pos, "BitRate", intString(bitRate(size, duration)), true)
			}
		}
		if in.opts.DemuxInitData == "Field" && len(t.InitData) > 0 {
			r.Fill(t.Kind, pos, "Demux_InitBytes", base64.StdEncoding.EncodeToString(t.InitData), true)
		}
	}

	if in.opts.SourceList && len(in.files) > 1 {
		for _, file := range in.files {
			r.Fill(StreamGeneral, 0, "Source_List", file, false)
		}
	}
	if in.opts.MD5 {
		if sum, err := md5Files(in.files); err == nil {
			r.Fill(StreamGeneral, 0, "MD5_Generated", sum, true)
		}
	}
}

func framesIn(frames []frame, r editRange) []frame {
	var kept []frame
	for _, f := range frames {
		if f.Start >= r.Start && (r.End < 0 || f.Start < r.End) {
			kept = append(kept, f)
		}
	}
	return kept
}

func bitRate(size, durationMs int64) int64 {
	if durationMs <= 0 {
		return 0
	}
	return (size*8000 + durationMs/2) / durationMs
}

func md5Files(files []string) (string, error) {
	hash := md5.New()
	for _, name := range files {
		file, err := os.Open(name)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(hash, file)
		file.Close()
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (in *Instance) Report() *Report {
	return in.report
}

func (in *Instance) Count(kind StreamKind) int {
	if in.report == nil {
		return 0
	}
	return in.report.Count(kind)
}

func (in *Instance) Get(kind StreamKind, pos int, name string) string {
	if in.report == nil {
		return ""
	}
	return in.report.Retrieve(kind, pos, name)
}

func (in *Instance) Fields(kind StreamKind, pos int) []Field {
	if in.report == nil {
		return nil
	}
	return in.report.Fields(kind, pos)
}

// FileSize is the byte count of every opened file, -1 before Open.
func (in *Instance) FileSize() int64 {
	return in.size
}

func (in *Instance) Status() Status {
	return in.status
}

func (in *Instance) layout() error {
	if in.laidOut {
		return nil
	}
	slots, err := packetLayout(in.track, in.edits, in.demuxRate())
	if err != nil {
		return err
	}
	in.slots = slots
	in.laidOut = true
	return nil
}

func (in *Instance) demuxRate() float64 {
	if in.opts.DemuxRate > 0 {
		return in.opts.DemuxRate
	}
	return defaultDemuxRate
}

// OpenNextPacket produces the next packet when File_NextPacket is set.
func (in *Instance) OpenNextPacket() Status {
	if in.report == nil || !in.opts.NextPacket {
		return in.status
	}
	if err := in.layout(); err != nil {
		return in.status
	}
	if in.next >= len(in.slots) {
		return in.status
	}
	if in.window >= int64(in.opts.BufferReadSize) {
		in.window = 0
	}
	slot := in.slots[in.next]
	data := slot.Data
	if data == nil && slot.Size > 0 && !in.track.Opaque {
		read, err := in.readAt(slot.File, slot.Offset, slot.Size)
		if err != nil {
			return in.status
		}
		data = read
	}
	in.packet = Packet{
		Kind:      in.track.Kind,
		File:      slot.File,
		Offset:    slot.Offset,
		Data:      data,
		DTS:       in.outputDTS(slot.Start),
		Duration:  in.track.unitsToNs(slot.Length),
		Frame:     in.opts.DemuxOffsetFrame + int64(in.next),
		StreamIDs: in.streamIDs(),
	}
	in.next++
	in.window += slot.Size
	return in.status | StatusPacket
}

func (in *Instance) outputDTS(start int64) int64 {
	local := in.track.unitsToNs(start - in.edits.Start)
	if local < 0 {
		return -1
	}
	return in.opts.DemuxOffsetDTS + local
}

func (in *Instance) streamIDs() []uint64 {
	if len(in.opts.SubFileIDs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(in.opts.SubFileIDs))
	for _, id := range in.opts.SubFileIDs {
		ids = append(ids, id.ID)
	}
	return ids
}

func (in *Instance) Packet() Packet {
	return in.packet
}

// DTS is the file-local timestamp of the next packet in nanoseconds, -1 when
// unknown or when no packet is left.
func (in *Instance) DTS() int64 {
	if !in.laidOut || in.next >= len(in.slots) {
		return -1
	}
	return in.track.unitsToNs(in.slots[in.next].Start)
}

// Drained reports whether the current read buffer has been consumed.
func (in *Instance) Drained() bool {
	if !in.laidOut || in.next >= len(in.slots) {
		return true
	}
	return in.window >= int64(in.opts.BufferReadSize)
}

func (in *Instance) Unsynch() {
	in.window = 0
}

// Seek moves the packet cursor. It returns an empty string on success.
func (in *Instance) Seek(method SeekMethod, value int64) string {
	if in.report == nil {
		return "Not open"
	}
	if err := in.layout(); err != nil {
		return err.Error()
	}
	switch method {
	case SeekPercentage:
		if value < 0 || value > in.size {
			return "Invalid value"
		}
		in.next = len(in.slots)
		for i, slot := range in.slots {
			if slot.position+slot.Size > value {
				in.next = i
				break
			}
		}
	case SeekTimePermille:
		duration := in.track.unitsToNs(in.edits.Units())
		if value < 0 || value > 1000 {
			return "Invalid value"
		}
		if duration < 0 {
			return "Not supported"
		}
		return in.Seek(SeekTimestamp, duration*value/1000)
	case SeekTimestamp:
		if in.track.Rate <= 0 {
			return "Not supported"
		}
		duration := in.track.unitsToNs(in.edits.Units())
		if value < 0 || (in.edits.End >= 0 && value > duration) {
			return "Invalid value"
		}
		target := in.edits.Start + in.track.nsToUnits(value)
		in.next = 0
		for i, slot := range in.slots {
			if slot.Start > target {
				break
			}
			in.next = i
		}
		if value == duration {
			in.next = len(in.slots)
		}
	case SeekFrame:
		if value < 0 || value > int64(len(in.slots)) {
			return "Invalid value"
		}
		in.next = int(value)
	default:
		return "Unknown method"
	}
	in.window = 0
	return ""
}

func (in *Instance) readAt(name string, offset, size int64) ([]byte, error) {
	if in.handle == nil || in.handleOf != name {
		if in.handle != nil {
			in.handle.Close()
		}
		file, err := os.Open(name)
		if err != nil {
			in.handle = nil
			return nil, err
		}
		in.handle = file
		in.handleOf = name
	}
	buf := make([]byte, size)
	n, err := in.handle.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func (in *Instance) Close() error {
	in.slots = nil
	in.laidOut = false
	if in.handle == nil {
		return nil
	}
	err := in.handle.Close()
	in.handle = nil
	return err
}
