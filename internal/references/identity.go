package references

import (
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// resolveIdentities renumbers colliding IDs and orders the sequences.
func (c *Compositor) resolveIdentities() {
	seen := make(map[uint64]struct{}, len(c.sequences))
	duplicated := false
	for _, seq := range c.sequences {
		if _, ok := seen[seq.StreamID]; ok {
			duplicated = true
			break
		}
		seen[seq.StreamID] = struct{}{}
	}
	if duplicated {
		for i, seq := range c.sequences {
			seq.StreamID = uint64(i + 1)
		}
		c.log.Debug("duplicate stream IDs renumbered", zap.Int("sequences", len(c.sequences)))
	}
	if len(c.sequences) == 1 && c.sequences[0].StreamID == NoID {
		c.containerHasNoID = true
		if n := len(c.streamIDs); n > 0 {
			c.streamIDs[n-1].Width = 0
		}
	}

	// Three passes, not one comparator: kind first, then position, then ID
	// among equals.
	sort.SliceStable(c.sequences, func(i, j int) bool {
		return c.sequences[i].StreamID < c.sequences[j].StreamID
	})
	sort.SliceStable(c.sequences, func(i, j int) bool {
		return positionKey(c.sequences[i].StreamPos) < positionKey(c.sequences[j].StreamPos)
	})
	sort.SliceStable(c.sequences, func(i, j int) bool {
		return c.sequences[i].StreamKind.Rank() < c.sequences[j].StreamKind.Rank()
	})
}

// positionKey sorts unassigned positions last.
func positionKey(pos int) int {
	if pos < 0 {
		return math.MaxInt
	}
	return pos
}

// baseID is the ID prefix of the streams of seq, empty when it has none.
func (c *Compositor) baseID(seq *Sequence) string {
	if c.hasMainFileFilled && !seq.IsMain {
		return uintString(c.idMax + seq.StreamID - 1)
	}
	if seq.StreamID != NoID {
		return uintString(seq.StreamID)
	}
	return ""
}

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func intString(v int64) string {
	return strconv.FormatInt(v, 10)
}
