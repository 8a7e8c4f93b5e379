package manifest

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeWAV writes a mono 16-bit PCM file of one second at 48 kHz.
func writeWAV(t *testing.T, path string) {
	t.Helper()
	const samples = 48000
	dataSize := samples * 2
	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], 48000)
	binary.LittleEndian.PutUint32(buf[28:32], 96000)
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

const twoReels = `title: Feature
config:
  dts_interval: 500ms
sequences:
  - kind: audio
    id: 1
    infos:
      Language: en
    resources:
      - files: [reel_a.wav]
      - files: [reel_b.wav]
`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(`
config:
  parse_speed: 0.5
  next_packet: true
sequences:
  - kind: video
    id: 3
    frame_rate: 24
    files: [frames/f0001.png]
  - kind: Audio
    resources:
      - files: [a.wav]
        edit_rate: 48000
        edits_before: 480
        edits_after: 960
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Config.ParseSpeed != 0.5 || !m.Config.NextPacket {
		t.Fatalf("config=%+v, want parse speed 0.5 and packet mode", m.Config)
	}
	if !m.Config.TestContinuousFileNames {
		t.Fatalf("TestContinuousFileNames=false, want default true")
	}

	seqs := m.References()
	if len(seqs) != 2 {
		t.Fatalf("sequences=%d, want 2", len(seqs))
	}
	if seqs[0].StreamKind != mediainfo.StreamVideo || seqs[0].StreamID != 3 || seqs[0].FrameRate != 24 {
		t.Fatalf("video sequence=%+v", seqs[0])
	}
	if seqs[1].StreamKind != mediainfo.StreamAudio || seqs[1].StreamID != references.NoID {
		t.Fatalf("audio kind=%q id=%d, want Audio without ID", seqs[1].StreamKind, seqs[1].StreamID)
	}
	res := seqs[1].Resources[0]
	if res.EditRate != 48000 || res.IgnoreEditsBefore != 480 || res.IgnoreEditsAfter != 960 {
		t.Fatalf("resource=%+v", res)
	}
	if res.IgnoreEditsAfterDuration != -1 {
		t.Fatalf("IgnoreEditsAfterDuration=%d, want -1", res.IgnoreEditsAfterDuration)
	}
}

func TestParseManifestRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"empty":        "title: nothing\n",
		"bad kind":     "sequences:\n  - kind: hologram\n    files: [a.wav]\n",
		"general kind": "sequences:\n  - kind: general\n    files: [a.wav]\n",
		"no files":     "sequences:\n  - kind: audio\n",
		"resource":     "sequences:\n  - kind: audio\n    resources:\n      - edit_rate: 25\n",
		"syntax":       "sequences: [\n",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("%s: Parse() error = nil, want error", name)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refinfo.yaml")
	writeFile(t, path, "demux_interleave: true\ndts_interval: 40ms\nbuffer_read_size: 0\n")
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if !cfg.DemuxInterleave || cfg.DTSInterval != 40*time.Millisecond {
		t.Fatalf("cfg=%+v, want interleave with 40ms interval", cfg)
	}
	if cfg.BufferReadSize != references.DefaultConfig().BufferReadSize {
		t.Fatalf("BufferReadSize=%d, want default", cfg.BufferReadSize)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("LoadConfigFile(missing) error = nil")
	}
}

func TestIsManifest(t *testing.T) {
	for path, want := range map[string]bool{"a.yaml": true, "B.YML": true, "a.xml": false, "yaml": false} {
		if got := IsManifest(path); got != want {
			t.Fatalf("IsManifest(%q)=%v, want %v", path, got, want)
		}
	}
}

func TestComposeJoinsReels(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"))
	writeWAV(t, filepath.Join(dir, "reel_b.wav"))
	path := filepath.Join(dir, "feature.yaml")
	writeFile(t, path, twoReels)

	result, err := Compose(context.Background(), path, ComposeOptions{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(result.Problems) != 0 {
		t.Fatalf("problems=%v, want none", result.Problems)
	}
	report := result.Report
	hostSize := int64(len(twoReels))
	checks := []struct {
		kind mediainfo.StreamKind
		name string
		want string
	}{
		{mediainfo.StreamGeneral, "Format", hostFormat},
		{mediainfo.StreamGeneral, "Title", "Feature"},
		{mediainfo.StreamGeneral, "FileExtension", "yaml"},
		{mediainfo.StreamGeneral, "StreamSize", intString(hostSize)},
		{mediainfo.StreamGeneral, "FileSize", intString(hostSize + 2*96044)},
		{mediainfo.StreamAudio, "Format", "PCM"},
		{mediainfo.StreamAudio, "Duration", "2000"},
		{mediainfo.StreamAudio, "Language", "en"},
	}
	for _, check := range checks {
		if got := report.Retrieve(check.kind, 0, check.name); got != check.want {
			t.Fatalf("%s %s=%q, want %q", check.kind, check.name, got, check.want)
		}
	}
}

func TestComposeAppliesSettings(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"))
	writeWAV(t, filepath.Join(dir, "reel_b.wav"))
	path := filepath.Join(dir, "feature.yaml")
	writeFile(t, path, twoReels)

	result, err := Compose(context.Background(), path, ComposeOptions{Settings: []string{"File_IgnoreSequenceFileSize=1"}})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got := result.Report.Retrieve(mediainfo.StreamGeneral, 0, "FileSize"); got != "" {
		t.Fatalf("FileSize=%q, want cleared", got)
	}

	_, err = Compose(context.Background(), path, ComposeOptions{Settings: []string{"File_Bogus=1"}})
	if !errors.Is(err, references.ErrUnknownOption) {
		t.Fatalf("Compose() error = %v, want ErrUnknownOption", err)
	}
}

func TestComposeStreamsPackets(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"))
	writeWAV(t, filepath.Join(dir, "reel_b.wav"))
	path := filepath.Join(dir, "feature.yaml")
	writeFile(t, path, strings.Replace(twoReels, "dts_interval: 500ms", "frame_rate: 25", 1))

	count := 0
	var last int64 = -1
	handler := func(seq *references.Sequence, packet mediainfo.Packet) bool {
		if packet.DTS <= last {
			t.Fatalf("packet DTS=%d not after %d", packet.DTS, last)
		}
		last = packet.DTS
		count++
		// Stop every ten packets; Compose resumes.
		return count%10 != 0
	}
	if _, err := Compose(context.Background(), path, ComposeOptions{OnPacket: handler}); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if count != 50 {
		t.Fatalf("packets=%d, want 50", count)
	}
}

func TestComposeReportsMissingSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	writeFile(t, path, "sequences:\n  - kind: audio\n    id: 2\n    files: [gone.wav]\n    infos:\n      Format: AAC\n")

	result, err := Compose(context.Background(), path, ComposeOptions{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(result.Problems) != 1 || !errors.Is(result.Problems[0], references.ErrUnresolved) {
		t.Fatalf("problems=%v, want one ErrUnresolved", result.Problems)
	}
	if got := result.Report.Retrieve(mediainfo.StreamAudio, 0, "Source_Info"); got != "Missing" {
		t.Fatalf("Source_Info=%q, want Missing", got)
	}
	if got := result.Report.Retrieve(mediainfo.StreamAudio, 0, "Format"); got != "AAC" {
		t.Fatalf("Format=%q, want AAC", got)
	}
}

func TestComposeKeepsManifestSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dialogue.yaml")
	writeFile(t, path, "sequences:\n  - kind: text\n    id: 3\n    source: Reel 7 dialogue\n    files: [missing.srt]\n")

	result, err := Compose(context.Background(), path, ComposeOptions{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got := result.Report.Retrieve(mediainfo.StreamText, 0, "Source"); got != "Reel 7 dialogue" {
		t.Fatalf("Source=%q, want Reel 7 dialogue", got)
	}
}

func TestComposeCancelled(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "reel_a.wav"))
	writeWAV(t, filepath.Join(dir, "reel_b.wav"))
	path := filepath.Join(dir, "feature.yaml")
	writeFile(t, path, twoReels)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handler := func(*references.Sequence, mediainfo.Packet) bool { return true }
	_, err := Compose(ctx, path, ComposeOptions{OnPacket: handler})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Compose() error = %v, want context.Canceled", err)
	}
}

func intString(v int64) string {
	return strconv.FormatInt(v, 10)
}
