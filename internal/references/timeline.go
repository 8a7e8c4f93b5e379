package references

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// filterAudio keeps audio sequences only.
func (c *Compositor) filterAudio() {
	kept := c.sequences[:0:0]
	for _, seq := range c.sequences {
		if seq.StreamKind == mediainfo.StreamAudio {
			kept = append(kept, seq)
		}
	}
	c.sequences = kept
}

// normalizeTimeline fills empty sequence names from their resources and
// brings every resource to one edit rate, the smallest one seen.
func (c *Compositor) normalizeTimeline() {
	for _, seq := range c.sequences {
		if len(seq.FileNames) > 0 {
			continue
		}
		for _, res := range seq.Resources {
			seq.FileNames = append(seq.FileNames, res.FileNames...)
		}
	}

	common := math.MaxFloat64
	distinct := 0
	for _, seq := range c.sequences {
		for _, res := range seq.Resources {
			if res.EditRate != 0 && res.EditRate != common {
				if res.EditRate < common {
					common = res.EditRate
				}
				distinct++
			}
		}
	}
	if distinct <= 1 {
		return
	}

	for _, seq := range c.sequences {
		for _, res := range seq.Resources {
			if res.EditRate == 0 || res.EditRate == common {
				continue
			}
			c.log.Debug("edit rate rescaled",
				zap.Float64("from", res.EditRate),
				zap.Float64("to", common),
			)
			if res.IgnoreEditsBefore != 0 {
				res.IgnoreEditsBefore = rescale(res.IgnoreEditsBefore, res.EditRate, common)
			}
			if res.IgnoreEditsAfter >= 0 {
				res.IgnoreEditsAfter = rescale(res.IgnoreEditsAfter, res.EditRate, common)
			}
			if res.IgnoreEditsAfterDuration >= 0 {
				res.IgnoreEditsAfterDuration = rescale(res.IgnoreEditsAfterDuration, res.EditRate, common)
			}
			res.EditRate = common
		}
	}
}

func rescale(value int64, from, to float64) int64 {
	return int64(math.Round(float64(value) / from * to))
}

// computeOffsets places every resource of seq on the sequence timeline.
// With a known edit rate and end trim the offsets follow from the trims;
// otherwise each resource is parsed quickly for its duration.
func (c *Compositor) computeOffsets(seq *Sequence) {
	if len(seq.Resources) == 0 {
		return
	}
	rate := seq.Resources[0].EditRate
	for i, res := range seq.Resources {
		var next *Resource
		if i+1 < len(seq.Resources) {
			next = seq.Resources[i+1]
		}

		if after := res.editsAfter(); rate > 0 && after >= 0 {
			if i == 0 {
				res.DemuxOffsetDTS = 0
				res.DemuxOffsetFrame = 0
			}
			if next != nil {
				delta := after - res.IgnoreEditsBefore
				next.DemuxOffsetDTS = int64(math.Round(float64(res.DemuxOffsetDTS) + float64(delta)/rate*1e9))
				next.DemuxOffsetFrame = res.DemuxOffsetFrame + delta
			}
			continue
		}

		parser, ok := c.fastParse(res)
		if !ok {
			// An unreadable resource adds nothing; offsets never decrease.
			if next != nil {
				next.DemuxOffsetDTS = res.DemuxOffsetDTS
				next.DemuxOffsetFrame = res.DemuxOffsetFrame
			}
			continue
		}
		duration := parseInt(parser.Get(seq.StreamKind, 0, "Duration")) * int64(1e6)
		frames := parseInt(parser.Get(seq.StreamKind, 0, "FrameCount"))
		if i == 0 {
			delay := parseInt(parser.Get(mediainfo.StreamVideo, 0, "Delay")) * int64(1e6)
			if seq.StreamKind == mediainfo.StreamVideo && c.offsetVideoDTS == 0 {
				c.offsetVideoDTS = delay
			}
			res.DemuxOffsetDTS = c.offsetVideoDTS
			res.DemuxOffsetFrame = 0
		}
		if next != nil {
			next.DemuxOffsetDTS = res.DemuxOffsetDTS + duration
			next.DemuxOffsetFrame = res.DemuxOffsetFrame + frames
		}
		parser.Close()
	}
}

// fastParse opens res with trims applied and parsing limited to metadata.
// The caller closes the parser.
func (c *Compositor) fastParse(res *Resource) (Parser, bool) {
	parser := c.newParser()
	parser.Option("File_KeepInfo", "1")
	parser.Option("ParseSpeed", "0")
	if c.cfg.IgnoreSequenceFileSize {
		parser.Option("File_IgnoreSequenceFileSize", "1")
	}
	applyEdits(parser, res)
	if !parser.Open(res.FileNames) {
		parser.Close()
		return nil, false
	}
	return parser, true
}

func applyEdits(parser Parser, res *Resource) {
	parser.Option("File_IgnoreEditsBefore", strconv.FormatInt(res.IgnoreEditsBefore, 10))
	parser.Option("File_IgnoreEditsAfter", strconv.FormatInt(res.editsAfter(), 10))
	parser.Option("File_EditRate", strconv.FormatFloat(res.EditRate, 'f', -1, 64))
}

func parseInt(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}
