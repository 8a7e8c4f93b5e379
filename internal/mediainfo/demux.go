package mediainfo

import (
	"fmt"
	"math"
)

// Status mirrors the parser state bits. StatusPacket is set by OpenNextPacket
// when a packet was produced.
type Status uint16

const (
	StatusAccepted Status = 1 << iota
	StatusFilled
	StatusUpdated
	StatusFinalized
	StatusPacket Status = 1 << 8
)

func (s Status) Has(bit Status) bool {
	return s&bit != 0
}

type SeekMethod int

const (
	// SeekPercentage seeks to a byte position.
	SeekPercentage SeekMethod = iota
	// SeekTimePermille seeks to a thousandth of the duration.
	SeekTimePermille
	// SeekTimestamp seeks to a time in nanoseconds.
	SeekTimestamp
	// SeekFrame seeks to a frame number.
	SeekFrame
)

func (m SeekMethod) String() string {
	switch m {
	case SeekPercentage:
		return "percentage"
	case SeekTimePermille:
		return "time_permille"
	case SeekTimestamp:
		return "timestamp"
	case SeekFrame:
		return "frame"
	default:
		return fmt.Sprintf("SeekMethod(%d)", int(m))
	}
}

// Packet is one demuxed unit. DTS is on the output timeline (demux offset
// applied, edits removed), -1 when unknown.
type Packet struct {
	Kind      StreamKind
	File      string
	Offset    int64
	Data      []byte
	DTS       int64
	Duration  int64
	Frame     int64
	StreamIDs []uint64
}

type packetSlot struct {
	frame
	// position is the byte position of the slot within the whole file set.
	position int64
}

const unknownBlockSize = 64 << 10

// packetLayout cuts the kept part of a track into packet slots.
func packetLayout(t track, r editRange, demuxRate float64) ([]packetSlot, error) {
	if t.UnitSize > 0 {
		return pcmLayout(t, r, demuxRate), nil
	}
	frames := t.Frames
	if frames == nil && t.loadFrames != nil {
		loaded, err := t.loadFrames()
		if err != nil {
			return nil, err
		}
		frames = loaded
	}
	slots := make([]packetSlot, 0, len(frames))
	var position int64
	for _, f := range frames {
		if f.Start >= r.Start && (r.End < 0 || f.Start < r.End) {
			slots = append(slots, packetSlot{frame: f, position: position})
		}
		position += f.Size
	}
	return slots, nil
}

func pcmLayout(t track, r editRange, demuxRate float64) []packetSlot {
	if demuxRate <= 0 {
		demuxRate = defaultDemuxRate
	}
	step := int64(math.Round(t.Rate / demuxRate))
	if step <= 0 {
		step = 1
	}
	end := r.End
	if end < 0 {
		end = t.Units
	}
	slots := make([]packetSlot, 0, (end-r.Start)/step+1)
	for start := r.Start; start < end; start += step {
		length := step
		if start+length > end {
			length = end - start
		}
		offset := t.DataOffset + start*t.UnitSize
		slots = append(slots, packetSlot{
			frame: frame{
				File:   t.File,
				Offset: offset,
				Size:   length * t.UnitSize,
				Start:  start,
				Length: length,
			},
			position: offset,
		})
	}
	return slots
}

// blockFrames splits files of unknown content into fixed blocks.
func blockFrames(files []string, sizes []int64) []frame {
	var frames []frame
	for i, file := range files {
		for offset := int64(0); offset < sizes[i]; offset += unknownBlockSize {
			size := int64(unknownBlockSize)
			if offset+size > sizes[i] {
				size = sizes[i] - offset
			}
			frames = append(frames, frame{File: file, Offset: offset, Size: size, Start: int64(len(frames)), Length: 1})
		}
	}
	return frames
}
