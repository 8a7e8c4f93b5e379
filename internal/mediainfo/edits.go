package mediainfo

import "math"

// track is the timed essence of an analyzed file set, measured in edit units
// of its own rate (samples, frames or milliseconds).
type track struct {
	Kind   StreamKind
	Fields []Field
	// Rate is edit units per second, 0 when unknown.
	Rate float64
	// Units is the total count of edit units, -1 when unknown.
	Units int64
	// FrameUnits reports the unit count as FrameCount.
	FrameUnits bool
	// SampleUnits reports the unit count as SamplingCount.
	SampleUnits bool

	// Constant-size units laid out from DataOffset (PCM).
	UnitSize   int64
	DataOffset int64
	File       string

	// Payload is the essence byte count, used when frames are not known.
	Payload int64
	// Frames lists variable-size units; loadFrames fills it on demand.
	Frames     []frame
	loadFrames func() ([]frame, error)

	// Opaque frames have estimated sizes and no addressable payload.
	Opaque bool

	InitData []byte
}

type frame struct {
	File   string
	Offset int64
	Size   int64
	Start  int64
	Length int64
	// Data is set when the payload is not a plain byte range of File.
	Data []byte
}

// editRange is the part of a track kept after applying edit points.
type editRange struct {
	Start int64
	End   int64
}

func (r editRange) Units() int64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// trimRange converts File_IgnoreEditsBefore/After, expressed in EditRate
// units, to the track's own units. Without an edit rate the edit points are
// taken as track units.
func trimRange(t track, before, after int64, editRate float64) editRange {
	r := editRange{Start: 0, End: t.Units}
	convert := func(v int64) int64 {
		if editRate <= 0 || t.Rate <= 0 || editRate == t.Rate {
			return v
		}
		return int64(math.Round(float64(v) / editRate * t.Rate))
	}
	if before > 0 {
		r.Start = convert(before)
	}
	if after >= 0 {
		r.End = convert(after)
	}
	if t.Units >= 0 {
		if r.End < 0 || r.End > t.Units {
			r.End = t.Units
		}
		if r.Start > t.Units {
			r.Start = t.Units
		}
	}
	if r.End >= 0 && r.Start > r.End {
		r.Start = r.End
	}
	return r
}

// unitsToNs converts edit units to nanoseconds, -1 when the rate is unknown.
func (t track) unitsToNs(units int64) int64 {
	if t.Rate <= 0 {
		return -1
	}
	return int64(math.Round(float64(units) / t.Rate * 1e9))
}

func (t track) nsToUnits(ns int64) int64 {
	if t.Rate <= 0 {
		return -1
	}
	return int64(math.Floor(float64(ns) * t.Rate / 1e9))
}

// durationMs is the trimmed duration in milliseconds, -1 when unknown.
func (t track) durationMs(r editRange) int64 {
	if t.Rate <= 0 || r.End < 0 {
		return -1
	}
	return int64(math.Round(float64(r.Units()) / t.Rate * 1000))
}

// streamSize is the byte count of the kept units, -1 when unknown.
func (t track) streamSize(r editRange) int64 {
	if r.End < 0 {
		return -1
	}
	if t.UnitSize > 0 {
		return r.Units() * t.UnitSize
	}
	if len(t.Frames) > 0 {
		var size int64
		for _, f := range t.Frames {
			if f.Start >= r.Start && f.Start < r.End {
				size += f.Size
			}
		}
		return size
	}
	if t.Payload > 0 && t.Units > 0 {
		return int64(math.Round(float64(t.Payload) * float64(r.Units()) / float64(t.Units)))
	}
	return -1
}
