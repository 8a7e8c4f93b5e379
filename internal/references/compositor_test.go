package references

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

func writeWAV(t *testing.T, path string, sampleRate, channels, bits, samples int) {
	t.Helper()
	blockAlign := channels * bits / 8
	dataSize := samples * blockAlign
	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bits))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

func TestCompositorJoinsWAVResources(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"), 48000, 1, 16, 48000)
	writeWAV(t, filepath.Join(dir, "reel_b.wav"), 48000, 1, 16, 48000)

	out := mediainfo.NewReport(filepath.Join(dir, "ref.xml"))
	c := New(out, filepath.Join(dir, "ref.xml"), 100, DefaultConfig(), WithLogger(zap.NewNop()))
	defer c.Close()
	seq := NewSequence(mediainfo.StreamAudio, 1)
	seq.Resources = []*Resource{NewResource("reel_a.wav"), NewResource("reel_b.wav")}
	c.AddSequence(seq)

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	checks := []struct {
		kind mediainfo.StreamKind
		name string
		want string
	}{
		{mediainfo.StreamAudio, "Format", "PCM"},
		{mediainfo.StreamAudio, "Duration", "2000"},
		{mediainfo.StreamAudio, "StreamSize", "192000"},
		{mediainfo.StreamAudio, "BitRate", "768000"},
		{mediainfo.StreamAudio, "Source", "reel_a.wav"},
		{mediainfo.StreamGeneral, "FileSize", "192188"},
	}
	for _, check := range checks {
		if got := out.Retrieve(check.kind, 0, check.name); got != check.want {
			t.Fatalf("%s %s=%q, want %q", check.kind, check.name, got, check.want)
		}
	}
	if got := seq.Resources[1].DemuxOffsetDTS; got != 1e9 {
		t.Fatalf("second resource offset=%d, want 1e9", got)
	}
	if len(c.Problems()) != 0 {
		t.Fatalf("problems=%v, want none", c.Problems())
	}
}

func TestCompositorStreamsWAVPackets(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"), 48000, 1, 16, 48000)
	writeWAV(t, filepath.Join(dir, "reel_b.wav"), 48000, 1, 16, 48000)

	cfg := DefaultConfig()
	cfg.NextPacket = true
	cfg.FrameRate = 25
	var packets []mediainfo.Packet
	handler := func(seq *Sequence, packet mediainfo.Packet) bool {
		packets = append(packets, packet)
		return true
	}
	out := mediainfo.NewReport(filepath.Join(dir, "ref.xml"))
	c := New(out, filepath.Join(dir, "ref.xml"), 100, cfg, WithPacketHandler(handler))
	defer c.Close()
	seq := NewSequence(mediainfo.StreamAudio, 1)
	seq.Resources = []*Resource{NewResource("reel_a.wav"), NewResource("reel_b.wav")}
	c.AddSequence(seq)

	if err := c.ParseReferences(context.Background()); err != nil {
		t.Fatalf("ParseReferences() error = %v", err)
	}
	if len(packets) != 50 {
		t.Fatalf("packets=%d, want 50", len(packets))
	}
	if got := packets[25].DTS; got != 1e9 {
		t.Fatalf("first packet of second reel DTS=%d, want 1e9", got)
	}
	for i := 1; i < len(packets); i++ {
		if packets[i].DTS <= packets[i-1].DTS {
			t.Fatalf("packet %d DTS=%d not after %d", i, packets[i].DTS, packets[i-1].DTS)
		}
	}
	if !c.Done() {
		t.Fatalf("Done()=false")
	}
}
