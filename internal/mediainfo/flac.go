package mediainfo

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

func parseFLAC(path string, size int64) (track, bool) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return track{}, false
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.SampleRate == 0 || info.NChannels == 0 {
		return track{}, false
	}

	fields := []Field{
		{Name: "Format", Value: "FLAC"},
		{Name: "Channels", Value: uintString(uint64(info.NChannels))},
		{Name: "SamplingRate", Value: uintString(uint64(info.SampleRate))},
		{Name: "BitDepth", Value: uintString(uint64(info.BitsPerSample))},
		{Name: "BitRate_Mode", Value: "VBR"},
		{Name: "Compression_Mode", Value: "Lossless"},
	}
	if md5 := info.MD5sum; md5 != [16]byte{} {
		fields = append(fields, Field{Name: "MD5_Unencoded", Value: hex.EncodeToString(md5[:])})
	}

	units := int64(-1)
	if info.NSamples > 0 {
		units = int64(info.NSamples)
	}
	return track{
		Kind:        StreamAudio,
		Fields:      fields,
		Rate:        float64(info.SampleRate),
		Units:       units,
		SampleUnits: true,
		File:        path,
		Payload:     size,
		Opaque:      true,
		loadFrames: func() ([]frame, error) {
			return flacFrames(path, size, units)
		},
	}, true
}

// flacFrames walks the audio frames. Frame byte sizes are not exposed by the
// decoder, so they are spread over the payload by sample count.
func flacFrames(path string, size, units int64) ([]frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stream, err := flac.New(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var (
		frames []frame
		start  int64
	)
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		length := int64(f.BlockSize)
		frames = append(frames, frame{File: path, Start: start, Length: length})
		start += length
	}
	if units <= 0 {
		units = start
	}
	if units > 0 {
		var offset int64
		for i := range frames {
			frames[i].Offset = offset
			frames[i].Size = size * frames[i].Length / units
			offset += frames[i].Size
		}
	}
	return frames, nil
}
