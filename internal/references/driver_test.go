package references

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

func packetSource(packets int, step time.Duration, burst int) fakeSource {
	src := audioSource("1000", "192000", "1536000", 1000)
	src.packets = packets
	src.step = int64(step)
	src.burst = burst
	return src
}

func TestParseReferencesResumesAfterHandlerStops(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", packetSource(10, 40*time.Millisecond, 0))
	cfg := DefaultConfig()
	cfg.NextPacket = true

	var dts []int64
	handler := func(seq *Sequence, packet mediainfo.Packet) bool {
		dts = append(dts, packet.DTS)
		return len(dts) != 3
	}
	c, out := newTestCompositor(lib, cfg, WithPacketHandler(handler))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "a.wav"))

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if len(dts) != 3 || c.Done() {
		t.Fatalf("packets=%d done=%v, want 3 and not done", len(dts), c.Done())
	}
	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if len(dts) != 10 || !c.Done() {
		t.Fatalf("packets=%d done=%v, want 10 and done", len(dts), c.Done())
	}
	if dts[9] != int64(360*time.Millisecond) {
		t.Fatalf("last DTS=%d, want 360ms", dts[9])
	}
	if got := out.Retrieve(mediainfo.StreamAudio, 0, "Duration"); got != "1000" {
		t.Fatalf("Duration=%q, want 1000", got)
	}
	if got := lib.parsers[0].options["file_buffer_read_size"]; got != "1048576" {
		t.Fatalf("File_Buffer_Read_Size=%q, want 1048576", got)
	}
}

func TestParseReferencesInterleavesSequences(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", packetSource(10, 100*time.Millisecond, 2))
	lib.add("/media/show/b.wav", packetSource(10, 100*time.Millisecond, 2))
	cfg := DefaultConfig()
	cfg.NextPacket = true
	cfg.DemuxInterleave = true

	var order []uint64
	handler := func(seq *Sequence, packet mediainfo.Packet) bool {
		order = append(order, seq.StreamID)
		return true
	}
	c, _ := newTestCompositor(lib, cfg, WithPacketHandler(handler))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "a.wav"))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 2, "b.wav"))

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if len(order) != 20 {
		t.Fatalf("packets=%d, want 20", len(order))
	}
	for i, id := range order {
		want := uint64(1)
		if (i/2)%2 == 1 {
			want = 2
		}
		if id != want {
			t.Fatalf("packet %d from %d, want %d (order %v)", i, id, want, order)
		}
	}
	if !c.Done() {
		t.Fatalf("Done()=false")
	}
}

func TestParseReferencesBoundsLeadAcrossResources(t *testing.T) {
	const step = 100 * time.Millisecond
	lib := newFakeLibrary()
	lib.add("/media/show/a1.wav", packetSource(10, step, 5))
	lib.add("/media/show/a2.wav", packetSource(10, step, 5))
	lib.add("/media/show/b.wav", packetSource(20, step, 1))
	cfg := DefaultConfig()
	cfg.NextPacket = true
	cfg.DemuxInterleave = true
	cfg.DTSInterval = 250 * time.Millisecond

	lastB := int64(-1)
	var lead, aPackets int64
	handler := func(seq *Sequence, packet mediainfo.Packet) bool {
		if seq.StreamID == 2 {
			lastB = packet.DTS
			return true
		}
		aPackets++
		if lastB >= 0 {
			lead = max(lead, packet.DTS-lastB)
		}
		return true
	}
	c, _ := newTestCompositor(lib, cfg, WithPacketHandler(handler))
	a := NewSequence(mediainfo.StreamAudio, 1)
	a.Resources = []*Resource{NewResource("a1.wav"), NewResource("a2.wav")}
	c.AddSequence(a)
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 2, "b.wav"))

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if aPackets != 20 || lastB != int64(19*step) {
		t.Fatalf("a packets=%d last b=%d, want 20 and 1.9s", aPackets, lastB)
	}
	// One burst of five packets past the window at most.
	if limit := int64(cfg.DTSInterval + 5*step); lead > limit {
		t.Fatalf("largest lead=%v, want at most %v", time.Duration(lead), time.Duration(limit))
	}
	if !c.Done() {
		t.Fatalf("Done()=false")
	}
}

func TestParseReferencesStopsOnCancel(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", packetSource(10, 40*time.Millisecond, 0))
	cfg := DefaultConfig()
	cfg.NextPacket = true

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	handler := func(seq *Sequence, packet mediainfo.Packet) bool {
		count++
		if count == 2 {
			cancel()
		}
		return true
	}
	c, _ := newTestCompositor(lib, cfg, WithPacketHandler(handler))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "a.wav"))

	err := c.ParseReferences(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ParseReferences() error = %v, want context.Canceled", err)
	}
	if count != 2 || c.Done() {
		t.Fatalf("packets=%d done=%v, want 2 and not done", count, c.Done())
	}
	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if count != 10 {
		t.Fatalf("packets=%d, want 10", count)
	}
}

func TestGatedHoldsSequencesAhead(t *testing.T) {
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig())
	seq := NewSequence(mediainfo.StreamAudio, 1)
	seq.parser = &fakeParser{
		report: mediainfo.NewReport("a.wav"),
		src:    fakeSource{packets: 10, step: int64(100 * time.Millisecond)},
		next:   4,
	}
	c.sess.interval = int64(250 * time.Millisecond)

	c.sess.dtsMinimal = 0
	if !c.gated(seq) {
		t.Fatalf("gated()=false at 400ms against 0, want true")
	}
	c.sess.dtsMinimal = int64(200 * time.Millisecond)
	if c.gated(seq) {
		t.Fatalf("gated()=true at 400ms against 200ms, want false")
	}

	res := NewResource("a.wav")
	res.EditRate = 25
	res.IgnoreEditsBefore = 5
	seq.Resources = []*Resource{res}
	c.sess.dtsMinimal = 0
	if c.gated(seq) {
		t.Fatalf("gated()=true with 200ms trimmed, want false")
	}
}

func TestOpenFailureMarksMissing(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", audioSource("1000", "192000", "1536000", 192044))
	c, out := newTestCompositor(lib, DefaultConfig())
	seq := NewSequence(mediainfo.StreamAudio, 4, "a.wav")
	seq.Infos["CodecID"] = "sowt"
	c.AddSequence(seq)
	c.initialize()
	delete(lib.sources, "/media/show/a.wav")

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if got := out.Retrieve(mediainfo.StreamAudio, 0, "Source_Info"); got != "Missing" {
		t.Fatalf("Source_Info=%q, want Missing", got)
	}
	if got := out.Retrieve(mediainfo.StreamAudio, 0, "CodecID"); got != "sowt" {
		t.Fatalf("CodecID=%q, want sowt", got)
	}
	if problems := c.Problems(); len(problems) != 1 || !errors.Is(problems[0], ErrOpen) {
		t.Fatalf("problems=%v, want one ErrOpen", problems)
	}
	if !seq.Finished || seq.parser != nil {
		t.Fatalf("sequence finished=%v parser=%v, want finished and released", seq.Finished, seq.parser)
	}
}

func TestIgnoreSequenceFileSizeClearsFileSize(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", audioSource("1000", "192000", "1536000", 192044))
	cfg := DefaultConfig()
	cfg.IgnoreSequenceFileSize = true
	c, out := newTestCompositor(lib, cfg)
	out.Fill(mediainfo.StreamGeneral, 0, "FileSize", "100", true)
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "a.wav"))

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if got := out.Retrieve(mediainfo.StreamGeneral, 0, "FileSize"); got != "" {
		t.Fatalf("FileSize=%q, want empty", got)
	}
}

func TestDistributeReadSize(t *testing.T) {
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig())
	big := &fakeParser{options: map[string]string{}, report: mediainfo.NewReport("a"), src: fakeSource{size: 3 << 20}}
	small := &fakeParser{options: map[string]string{}, report: mediainfo.NewReport("b"), src: fakeSource{size: 1 << 20}}
	for _, p := range []*fakeParser{big, small} {
		seq := NewSequence(mediainfo.StreamAudio, 1)
		seq.parser = p
		c.AddSequence(seq)
	}
	c.distributeReadSize()

	if got := big.options["file_buffer_read_size"]; got != "1048576" {
		t.Fatalf("big read size=%q, want 1048576", got)
	}
	if got := small.options["file_buffer_read_size"]; got != "262144" {
		t.Fatalf("small read size=%q, want 262144", got)
	}
}

func TestUnsynchronizeBuffersReachesParsers(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", packetSource(10, 40*time.Millisecond, 0))
	cfg := DefaultConfig()
	cfg.NextPacket = true
	handler := func(*Sequence, mediainfo.Packet) bool { return false }
	c, _ := newTestCompositor(lib, cfg, WithPacketHandler(handler))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "a.wav"))

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	c.sess.dtsMinimal = 0
	c.UnsynchronizeBuffers()
	if got := lib.parsers[0].unsynch; got != 1 {
		t.Fatalf("Unsynch calls=%d, want 1", got)
	}
	if c.sess.dtsMinimal != noDTS {
		t.Fatalf("dtsMinimal=%d, want reset", c.sess.dtsMinimal)
	}
}

func TestUpdateFileNameBeforeParsing(t *testing.T) {
	lib := newFakeLibrary()
	lib.add("/media/show/a.wav", audioSource("1000", "192000", "1536000", 1000))
	c, out := newTestCompositor(lib, DefaultConfig())
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1, "draft.wav"))
	c.UpdateFileName("draft.wav", "a.wav")

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if got := out.Retrieve(mediainfo.StreamAudio, 0, "Format"); got != "PCM" {
		t.Fatalf("Format=%q, want PCM", got)
	}
	if len(c.Problems()) != 0 {
		t.Fatalf("problems=%v, want none", c.Problems())
	}
}
