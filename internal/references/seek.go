package references

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

type SeekStatus int

const (
	SeekOK SeekStatus = iota
	SeekInvalidValue
	SeekNotSupported
	SeekUnknownMethod
)

func (s SeekStatus) String() string {
	switch s {
	case SeekOK:
		return "ok"
	case SeekInvalidValue:
		return "invalid value"
	case SeekNotSupported:
		return "not supported"
	case SeekUnknownMethod:
		return "unknown method"
	default:
		return fmt.Sprintf("SeekStatus(%d)", int(s))
	}
}

// Seek moves every sequence to the position given by method and value:
// a byte position in the aggregate size, thousandths of the duration, a
// timestamp in nanoseconds or a frame number. Sequences move together; id is
// accepted for parity with single-file seeking and does not select one.
// Reading restarts at the first sequence.
func (c *Compositor) Seek(method mediainfo.SeekMethod, value int64, id uint64) SeekStatus {
	switch method {
	case mediainfo.SeekPercentage, mediainfo.SeekTimePermille, mediainfo.SeekTimestamp, mediainfo.SeekFrame:
	default:
		return SeekUnknownMethod
	}
	if !c.cfg.NextPacket {
		return SeekNotSupported
	}
	if !c.initDone {
		c.initialize()
	}
	for _, seq := range c.sequences {
		if seq.parser == nil && len(seq.FileNames) > 0 && (!seq.Finished || seq.merged) {
			c.openSequence(seq)
		}
	}

	c.log.Debug("seek", zap.Stringer("method", method), zap.Int64("value", value), zap.Uint64("id", id))

	var status SeekStatus
	switch method {
	case mediainfo.SeekPercentage:
		if value == 0 {
			status = c.seekStart()
			break
		}
		if value < 0 || value > c.totalSize {
			return SeekInvalidValue
		}
		duration := c.compositeDuration()
		if duration <= 0 {
			return SeekNotSupported
		}
		target := int64(duration * 1e9 * float64(value) / float64(c.totalSize))
		if c.seekAll(mediainfo.SeekTimestamp, target) != SeekOK {
			status = SeekNotSupported
		}
	case mediainfo.SeekTimePermille:
		if value < 0 || value > 1000 {
			return SeekInvalidValue
		}
		duration := c.compositeDuration()
		if duration <= 0 {
			return SeekNotSupported
		}
		status = c.seekAll(mediainfo.SeekTimestamp, int64(math.Round(duration*1e9))*value/1000)
	default:
		if value < 0 {
			return SeekInvalidValue
		}
		status = c.seekAll(method, value)
	}
	if status != SeekOK {
		return status
	}

	for _, seq := range c.sequences {
		if seq.parser != nil {
			seq.Finished = false
		}
	}
	c.sess.current = 0
	c.sess.pending = len(c.sequences)
	c.sess.eventSent = false
	c.UnsynchronizeBuffers()
	return SeekOK
}

// seekStart rewinds every sequence to its first resource.
func (c *Compositor) seekStart() SeekStatus {
	status := SeekOK
	for _, seq := range c.sequences {
		if seq.parser == nil {
			continue
		}
		seq.ResourcesPos = 0
		if msg := seq.parser.Seek(mediainfo.SeekPercentage, 0); msg != "" {
			c.log.Debug("rewind failed", zap.String("source", seq.Source), zap.String("reason", msg))
			status = SeekNotSupported
		}
	}
	return status
}

// seekAll moves every sequence to target, a timestamp or a frame number on
// the sequence timeline. The resource holding target is the last one whose
// offset does not exceed it.
func (c *Compositor) seekAll(method mediainfo.SeekMethod, target int64) SeekStatus {
	for _, seq := range c.sequences {
		if seq.parser == nil {
			continue
		}
		pos, local := seekTarget(seq, method, target)
		p := seq.parser
		if pos > 0 {
			p = seq.Resources[pos].parser
		}
		if p == nil {
			return SeekInvalidValue
		}
		if msg := p.Seek(method, local); msg != "" {
			c.log.Debug("seek rejected",
				zap.String("source", seq.Source),
				zap.Int("resource", pos),
				zap.Int64("value", local),
				zap.String("reason", msg),
			)
			return SeekInvalidValue
		}
		seq.ResourcesPos = pos
	}
	return SeekOK
}

// seekTarget picks the resource of seq holding target and the value local to
// that resource.
func seekTarget(seq *Sequence, method mediainfo.SeekMethod, target int64) (int, int64) {
	if len(seq.Resources) == 0 {
		return 0, target
	}
	offset := func(res *Resource) int64 {
		if method == mediainfo.SeekFrame {
			return res.DemuxOffsetFrame
		}
		return res.DemuxOffsetDTS
	}
	pos := 0
	for i := 1; i < len(seq.Resources); i++ {
		if target < offset(seq.Resources[i]) {
			break
		}
		pos = i
	}
	return pos, max(target-offset(seq.Resources[pos]), 0)
}

// compositeDuration is the duration of the output in seconds, 0 when
// unknown.
func (c *Compositor) compositeDuration() float64 {
	if c.duration > 0 {
		return c.duration
	}
	ms, _ := strconv.ParseFloat(c.out.Retrieve(mediainfo.StreamGeneral, 0, "Duration"), 64)
	if ms <= 0 {
		for _, kind := range mediainfo.StreamKinds {
			for pos := 0; pos < c.out.Count(kind); pos++ {
				if d, err := strconv.ParseFloat(c.out.Retrieve(kind, pos, "Duration"), 64); err == nil && d > ms {
					ms = d
				}
			}
		}
	}
	c.duration = ms / 1000
	return c.duration
}
