package references

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// ParseReferences reads the sequences and merges them into the output.
// Without packet mode every sequence is read in one call. In packet mode it
// returns whenever the packet handler asks to stop, and is called again to
// resume. The returned error is the context error, if any.
func (c *Compositor) ParseReferences(ctx context.Context) error {
	if !c.initDone {
		if !c.initialize() {
			return nil
		}
	}

	for c.sess.current < len(c.sequences) {
		seq := c.sequences[c.sess.current]
		if !seq.Finished {
			c.parseSequence(ctx, seq)
		}
		c.updateMinimalDTS()

		if err := ctx.Err(); err != nil {
			c.sess.eventSent = false
			return err
		}

		p := seq.current()
		drained := p == nil || p.Drained()
		if c.sess.eventSent {
			c.sess.eventSent = false
			if c.sess.interleave && drained {
				c.advance()
			}
			return nil
		}
		c.advance()
	}

	c.finish()
	return nil
}

// initialize prepares the sequences once: filtering, timeline, identities,
// paths and, in packet mode, opening. It reports whether reading can start.
func (c *Compositor) initialize() bool {
	if c.cfg.FilterAudio {
		c.filterAudio()
		c.sess.pending = len(c.sequences)
	}
	c.normalizeTimeline()
	c.resolveIdentities()
	infoFromFileNames(c.sequences)
	for _, seq := range c.sequences {
		c.resolve(seq)
	}

	if c.cfg.NextPacket {
		c.sess.interleave = c.cfg.DemuxInterleave
		if c.sess.interleave {
			c.sess.pending = 0
			for _, seq := range c.sequences {
				if len(seq.FileNames) > 0 {
					c.sess.pending++
				}
			}
			c.sess.interval = int64(c.cfg.DTSInterval)
		}
	}

	c.frameRate = c.cfg.FrameRate
	if c.frameRate == 0 {
		for _, seq := range c.sequences {
			if seq.FrameRate > 0 {
				c.frameRate = seq.FrameRate
				break
			}
		}
	}

	if c.cfg.NextPacket {
		for _, seq := range c.sequences {
			if !seq.Finished {
				c.openSequence(seq)
			}
		}
		c.sequences = c.unfinished()
		c.sess.pending = len(c.sequences)
		if len(c.sequences) == 0 {
			c.initDone = true
			return false
		}
		c.computeFileSize()
		if c.totalSize != c.analyzedSize {
			c.out.Fill(mediainfo.StreamGeneral, 0, "FileSize", intString(c.totalSize), true)
			c.out.Fill(mediainfo.StreamGeneral, 0, "StreamSize", intString(c.analyzedSize), true)
		}
	}

	c.computeFileSize()
	c.sess.current = 0
	c.sess.readSizePending = len(c.sequences)
	c.initDone = true
	return true
}

// unfinished rebuilds the sequence list without the finished ones.
func (c *Compositor) unfinished() []*Sequence {
	keep := make([]int, 0, len(c.sequences))
	for i, seq := range c.sequences {
		if !seq.Finished {
			keep = append(keep, i)
		}
	}
	kept := make([]*Sequence, 0, len(keep))
	for _, i := range keep {
		kept = append(kept, c.sequences[i])
	}
	return kept
}

// advance moves to the next sequence. Interleaved reading wraps around while
// sequences are pending.
func (c *Compositor) advance() {
	c.sess.current++
	if c.sess.interleave && c.sess.current == len(c.sequences) && c.sess.pending > 0 && c.hasUnfinished() {
		c.sess.current = 0
	}
}

func (c *Compositor) hasUnfinished() bool {
	for _, seq := range c.sequences {
		if !seq.Finished {
			return true
		}
	}
	return false
}

// parseSequence opens seq if needed, pumps its packets to the handler and
// merges it once everything was read.
func (c *Compositor) parseSequence(ctx context.Context, seq *Sequence) {
	if seq.parser == nil {
		if len(seq.FileNames) == 0 {
			return
		}
		if !c.openSequence(seq) || seq.Finished {
			return
		}
	}
	if c.gated(seq) {
		return
	}

	if c.onPacket != nil && !seq.Finished {
		c.subFileStart(seq)
		if seq.ResourcesPos == 0 {
			if !c.pump(ctx, seq, seq.parser) {
				return
			}
			c.nextResource(seq)
		}
		if c.cfg.ParseSpeed < 1 {
			seq.ResourcesPos = len(seq.Resources)
		}
		for seq.ResourcesPos < len(seq.Resources) {
			if c.sess.interleave && c.gated(seq) {
				return
			}
			if p := seq.Resources[seq.ResourcesPos].parser; p != nil && !c.pump(ctx, seq, p) {
				return
			}
			c.nextResource(seq)
		}
	}

	c.complete(seq)
}

// pump hands packets of p to the handler. It reports false when the caller
// must return: the handler asked to stop, the context ended, or the read
// buffer of an interleaved sequence is used up.
func (c *Compositor) pump(ctx context.Context, seq *Sequence, p Parser) bool {
	for p.OpenNextPacket().Has(mediainfo.StatusPacket) {
		c.markFileSizePresent(seq)
		if !c.onPacket(seq, p.Packet()) || ctx.Err() != nil {
			c.sess.eventSent = true
			return false
		}
		if c.sess.interleave && p.Drained() {
			return false
		}
	}
	return true
}

// nextResource moves to the following resource and rewinds it.
func (c *Compositor) nextResource(seq *Sequence) {
	seq.ResourcesPos++
	if seq.ResourcesPos < len(seq.Resources) {
		if p := seq.Resources[seq.ResourcesPos].parser; p != nil {
			p.Seek(mediainfo.SeekPercentage, 0)
		}
	}
}

// complete merges seq and marks it finished. Without KeepInfo its parsers
// are released.
func (c *Compositor) complete(seq *Sequence) {
	if c.sess.pending > 0 {
		c.sess.pending--
	}
	c.finalize(seq)
	if !c.cfg.KeepInfo {
		seq.StreamKind = mediainfo.StreamNone
		seq.StreamPos = -1
		switch {
		case len(seq.Resources) == 0:
			seq.FileSize = seq.parser.FileSize()
		case seq.FileSize == -1:
			seq.FileSize = 0
			for _, res := range seq.Resources {
				for _, name := range res.FileNames {
					if size := c.fs.Size(name); size > 0 {
						seq.FileSize += size
					}
				}
			}
		}
		if err := seq.release(); err != nil {
			c.log.Debug("parser close failed", zap.Error(err))
		}
	}
	seq.Finished = true
}

// gated reports whether seq is too far ahead of its siblings.
func (c *Compositor) gated(seq *Sequence) bool {
	if c.sess.interval == noDTS || c.sess.dtsMinimal == noDTS || seq.Finished || !seq.hasWork() {
		return false
	}
	if p := seq.current(); p == nil || p.DTS() < 0 {
		return false
	}
	dts := c.sequenceDTS(seq)
	if seq.ResourcesPos < len(seq.Resources) {
		res := seq.Resources[seq.ResourcesPos]
		if res.EditRate > 0 && res.IgnoreEditsBefore > 0 {
			offset := int64(math.Round(float64(res.IgnoreEditsBefore) / res.EditRate * 1e9))
			dts = max(dts-offset, 0)
		}
	}
	return dts > c.sess.dtsMinimal+c.sess.interval
}

// sequenceDTS places the next packet of seq on the sequence timeline.
func (c *Compositor) sequenceDTS(seq *Sequence) int64 {
	var dts int64
	if p := seq.current(); p != nil {
		if local := p.DTS(); local >= 0 {
			dts = local
		}
	}
	return dts + seq.resourceOffsetDTS()
}

func (c *Compositor) updateMinimalDTS() {
	c.sess.dtsMinimal = noDTS
	if c.sess.interval == noDTS {
		return
	}
	for _, seq := range c.sequences {
		if seq.parser == nil || seq.Finished || !seq.hasWork() {
			continue
		}
		p := seq.current()
		if p == nil || p.DTS() < 0 {
			continue
		}
		if dts := c.sequenceDTS(seq); c.sess.dtsMinimal == noDTS || dts < c.sess.dtsMinimal {
			c.sess.dtsMinimal = dts
		}
	}
}

// finish writes the aggregate size of the analyzed file and its references.
func (c *Compositor) finish() {
	c.computeFileSize()
	if c.totalSize != c.analyzedSize && !c.cfg.IgnoreSequenceFileSize {
		c.out.Fill(mediainfo.StreamGeneral, 0, "FileSize", intString(c.totalSize), true)
		c.out.Fill(mediainfo.StreamGeneral, 0, "StreamSize", intString(c.analyzedSize), true)
	}
	if c.cfg.IgnoreSequenceFileSize {
		c.out.Clear(mediainfo.StreamGeneral, 0, "FileSize")
	}
}

// UnsynchronizeBuffers tells every parser its buffers are stale and resets
// the timestamp gate.
func (c *Compositor) UnsynchronizeBuffers() {
	for _, seq := range c.sequences {
		if seq.parser != nil {
			seq.parser.Unsynch()
		}
		for _, res := range seq.Resources {
			if res.parser != nil {
				res.parser.Unsynch()
			}
		}
	}
	c.sess.dtsMinimal = noDTS
}
