package mediainfo

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

type wavInfo struct {
	FormatTag     uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	FormatChunk   []byte
	DataOffset    int64
	DataSize      int64
}

func (w wavInfo) samples() int64 {
	if w.BlockAlign == 0 {
		return -1
	}
	return w.DataSize / int64(w.BlockAlign)
}

func parseWAV(file io.ReadSeeker, size int64) (wavInfo, bool) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return wavInfo{}, false
	}

	header := make([]byte, 12)
	if _, err := io.ReadFull(file, header); err != nil {
		return wavInfo{}, false
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return wavInfo{}, false
	}

	var (
		info     wavInfo
		fmtFound bool
		offset   int64 = 12
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(file, chunkHeader); err != nil {
			break
		}
		offset += 8
		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return wavInfo{}, false
			}
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(file, data); err != nil {
				return wavInfo{}, false
			}
			info.FormatTag = binary.LittleEndian.Uint16(data[0:2])
			info.Channels = binary.LittleEndian.Uint16(data[2:4])
			info.SampleRate = binary.LittleEndian.Uint32(data[4:8])
			info.ByteRate = binary.LittleEndian.Uint32(data[8:12])
			info.BlockAlign = binary.LittleEndian.Uint16(data[12:14])
			info.BitsPerSample = binary.LittleEndian.Uint16(data[14:16])
			info.FormatChunk = data
			fmtFound = true
		case "data":
			info.DataOffset = offset
			info.DataSize = chunkSize
			if size > 0 && offset+chunkSize > size {
				// Truncated or still growing file.
				info.DataSize = size - offset
			}
			if _, err := file.Seek(info.DataSize, io.SeekCurrent); err != nil {
				return wavInfo{}, false
			}
		default:
			if _, err := file.Seek(chunkSize, io.SeekCurrent); err != nil {
				return wavInfo{}, false
			}
		}
		offset += chunkSize

		if chunkSize%2 == 1 {
			if _, err := file.Seek(1, io.SeekCurrent); err != nil {
				return wavInfo{}, false
			}
			offset++
		}

		if fmtFound && info.DataOffset > 0 {
			break
		}
	}

	if !fmtFound || info.SampleRate == 0 {
		return wavInfo{}, false
	}
	if info.BlockAlign == 0 && info.Channels > 0 && info.BitsPerSample > 0 {
		info.BlockAlign = info.Channels * ((info.BitsPerSample + 7) / 8)
	}
	return info, true
}

func wavTrack(info wavInfo) track {
	codecID := formatTagCodecID(info.FormatTag)
	format := FormatFromCodecID(codecID)
	if format == "" {
		format = "Unknown"
	}
	fields := []Field{
		{Name: "Format", Value: format},
		{Name: "CodecID", Value: codecID},
		{Name: "Channels", Value: uintString(uint64(info.Channels))},
		{Name: "SamplingRate", Value: uintString(uint64(info.SampleRate))},
	}
	if info.BitsPerSample > 0 {
		fields = append(fields, Field{Name: "BitDepth", Value: uintString(uint64(info.BitsPerSample))})
	}
	fields = append(fields, Field{Name: "BitRate_Mode", Value: "CBR"})
	return track{
		Kind:       StreamAudio,
		Fields:     fields,
		Rate:       float64(info.SampleRate),
		Units:      info.samples(),
		UnitSize:   int64(info.BlockAlign),
		DataOffset: info.DataOffset,
		Payload:    info.DataSize,
		InitData:   info.FormatChunk,
	}
}

func formatTagCodecID(tag uint16) string {
	return strings.ToUpper(strconv.FormatUint(uint64(tag), 16))
}
