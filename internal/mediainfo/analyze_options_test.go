package mediainfo

import "testing"

func TestDefaultAnalyzeOptions(t *testing.T) {
	opts := defaultAnalyzeOptions()
	if opts.ParseSpeed != 0.5 {
		t.Fatalf("ParseSpeed=%v, want 0.5", opts.ParseSpeed)
	}
	if !opts.TestContinuousFileNames {
		t.Fatalf("TestContinuousFileNames=%v, want true", opts.TestContinuousFileNames)
	}
	if opts.IgnoreEditsBefore != -1 || opts.IgnoreEditsAfter != -1 {
		t.Fatalf("edits=%d/%d, want -1/-1", opts.IgnoreEditsBefore, opts.IgnoreEditsAfter)
	}
}

func TestNormalizeAnalyzeOptionsDefaults(t *testing.T) {
	opts := normalizeAnalyzeOptions(AnalyzeOptions{})
	if opts.ParseSpeed != 0.5 {
		t.Fatalf("ParseSpeed=%v, want 0.5", opts.ParseSpeed)
	}
	if opts.BufferReadSize != defaultBufferReadSize {
		t.Fatalf("BufferReadSize=%d, want %d", opts.BufferReadSize, defaultBufferReadSize)
	}
}

func TestSetOption(t *testing.T) {
	opts := defaultAnalyzeOptions()
	if msg := opts.setOption("File_IgnoreEditsBefore", "12"); msg != "" {
		t.Fatalf("setOption()=%q", msg)
	}
	if msg := opts.setOption("File_EditRate", "24"); msg != "" {
		t.Fatalf("setOption()=%q", msg)
	}
	if msg := opts.setOption("File_Encryption_Key", "AAEC"); msg != "" {
		t.Fatalf("setOption()=%q", msg)
	}
	if opts.IgnoreEditsBefore != 12 || opts.EditRate != 24 {
		t.Fatalf("before=%d rate=%v, want 12/24", opts.IgnoreEditsBefore, opts.EditRate)
	}
	if opts.Encryption["Encryption_Key"] != "AAEC" {
		t.Fatalf("Encryption_Key=%q, want AAEC", opts.Encryption["Encryption_Key"])
	}
	if msg := opts.setOption("File_Demux_InitData", "Sideways"); msg == "" {
		t.Fatalf("setOption(File_Demux_InitData) accepted an invalid value")
	}
	if msg := opts.setOption("NoSuchOption", "1"); msg != "Option not known" {
		t.Fatalf("setOption(unknown)=%q, want Option not known", msg)
	}
}

func TestParseSubFileIDs(t *testing.T) {
	ids, ok := parseSubFileIDs("-1,0,0\n72057594037927938,16,1")
	if !ok {
		t.Fatalf("parseSubFileIDs() ok=false")
	}
	if len(ids) != 2 {
		t.Fatalf("len=%d, want 2", len(ids))
	}
	if ids[0].ID != NoStreamID {
		t.Fatalf("ids[0].ID=%d, want NoStreamID", ids[0].ID)
	}
	if ids[1].ID != 1<<56|2 || ids[1].Width != 16 || ids[1].Parser != 1 {
		t.Fatalf("ids[1]=%+v", ids[1])
	}
}
