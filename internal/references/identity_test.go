package references

import (
	"testing"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

func TestResolveIdentitiesRenumbersDuplicates(t *testing.T) {
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig())
	for _, id := range []uint64{5, 5, 7} {
		c.AddSequence(NewSequence(mediainfo.StreamAudio, id))
	}
	c.resolveIdentities()

	for i, seq := range c.Sequences() {
		if want := uint64(i + 1); seq.StreamID != want {
			t.Fatalf("sequence %d ID=%d, want %d", i, seq.StreamID, want)
		}
	}
}

func TestResolveIdentitiesOrdersByKindThenID(t *testing.T) {
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig())
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 2))
	c.AddSequence(NewSequence(mediainfo.StreamVideo, 9))
	c.AddSequence(NewSequence(mediainfo.StreamAudio, 1))
	c.resolveIdentities()

	want := []struct {
		kind mediainfo.StreamKind
		id   uint64
	}{
		{mediainfo.StreamVideo, 9},
		{mediainfo.StreamAudio, 1},
		{mediainfo.StreamAudio, 2},
	}
	for i, seq := range c.Sequences() {
		if seq.StreamKind != want[i].kind || seq.StreamID != want[i].id {
			t.Fatalf("sequence %d=%s/%d, want %s/%d", i, seq.StreamKind, seq.StreamID, want[i].kind, want[i].id)
		}
	}
}

func TestResolveIdentitiesSingleWithoutID(t *testing.T) {
	ids := []mediainfo.SubFileID{{ID: 3, Width: 8, Parser: 1}, {ID: 4, Width: 16, Parser: 2}}
	c, _ := newTestCompositor(newFakeLibrary(), DefaultConfig(), WithStreamIDs(ids))
	c.AddSequence(NewSequence(mediainfo.StreamVideo, NoID))
	c.resolveIdentities()

	if !c.containerHasNoID {
		t.Fatalf("containerHasNoID=false, want true")
	}
	if c.streamIDs[1].Width != 0 || ids[1].Width != 16 {
		t.Fatalf("widths=%d/%d, want 0 on the compositor copy only", c.streamIDs[1].Width, ids[1].Width)
	}
}
