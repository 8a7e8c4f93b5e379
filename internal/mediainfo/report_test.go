package mediainfo

import "testing"

func TestReportFillAppendsWithoutOverwrite(t *testing.T) {
	report := NewReport("x")
	pos := report.Prepare(StreamMenu, -1)
	report.Fill(StreamMenu, pos, "List", "1-1", false)
	report.Fill(StreamMenu, pos, "List", "1-2", false)
	if got := report.Retrieve(StreamMenu, pos, "List"); got != "1-1 / 1-2" {
		t.Fatalf("List=%q, want %q", got, "1-1 / 1-2")
	}
	report.Fill(StreamMenu, pos, "List", "", true)
	if got := report.Retrieve(StreamMenu, pos, "List"); got != "" {
		t.Fatalf("List=%q, want empty", got)
	}
}

func TestReportPrepareKeepsKindOrder(t *testing.T) {
	report := NewReport("x")
	audio := report.Prepare(StreamAudio, -1)
	report.Fill(StreamAudio, audio, "ID", "2", true)
	video := report.Prepare(StreamVideo, -1)
	report.Fill(StreamVideo, video, "ID", "1", true)
	first := report.Prepare(StreamAudio, 0)
	report.Fill(StreamAudio, first, "ID", "0", true)

	if report.Streams[0].Kind != StreamVideo {
		t.Fatalf("Streams[0].Kind=%s, want Video", report.Streams[0].Kind)
	}
	if got := report.Retrieve(StreamAudio, 0, "ID"); got != "0" {
		t.Fatalf("Audio#0 ID=%q, want 0", got)
	}
	if got := report.Retrieve(StreamAudio, 1, "ID"); got != "2" {
		t.Fatalf("Audio#1 ID=%q, want 2", got)
	}

	report.Erase(StreamAudio, 0)
	if report.Count(StreamAudio) != 1 {
		t.Fatalf("Count(Audio)=%d, want 1", report.Count(StreamAudio))
	}
	if got := report.Retrieve(StreamAudio, 0, "ID"); got != "2" {
		t.Fatalf("Audio#0 ID=%q, want 2", got)
	}
}

func TestParseStreamKind(t *testing.T) {
	if kind, ok := ParseStreamKind("audio"); !ok || kind != StreamAudio {
		t.Fatalf("ParseStreamKind(audio)=%s,%v", kind, ok)
	}
	if _, ok := ParseStreamKind("chapters"); ok {
		t.Fatalf("ParseStreamKind(chapters) ok=true")
	}
}
