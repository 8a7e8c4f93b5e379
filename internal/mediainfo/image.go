package mediainfo

import (
	"encoding/binary"
	"io"
	"os"
)

type imageInfo struct {
	Width  uint32
	Height uint32
}

func parseImageHeader(format string, header []byte) imageInfo {
	switch format {
	case "PNG":
		if len(header) >= 24 && string(header[12:16]) == "IHDR" {
			return imageInfo{
				Width:  binary.BigEndian.Uint32(header[16:20]),
				Height: binary.BigEndian.Uint32(header[20:24]),
			}
		}
	case "DPX":
		if len(header) >= 780 {
			order := binary.ByteOrder(binary.BigEndian)
			if string(header[0:4]) == "XPDS" {
				order = binary.LittleEndian
			}
			return imageInfo{
				Width:  order.Uint32(header[772:776]),
				Height: order.Uint32(header[776:780]),
			}
		}
	case "JPEG":
		return parseJPEGSize(header)
	}
	return imageInfo{}
}

func parseJPEGSize(data []byte) imageInfo {
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return imageInfo{}
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if marker >= 0xC0 && marker <= 0xC3 {
			if pos+9 > len(data) {
				return imageInfo{}
			}
			return imageInfo{
				Height: uint32(binary.BigEndian.Uint16(data[pos+5 : pos+7])),
				Width:  uint32(binary.BigEndian.Uint16(data[pos+7 : pos+9])),
			}
		}
		pos += 2 + length
	}
	return imageInfo{}
}

// imageTrack describes a set of still pictures. More than one file is a video
// stream with one frame per file.
func imageTrack(format string, header []byte, files []string, sizes []int64, rate float64) track {
	info := parseImageHeader(format, header)
	kind := StreamImage
	if len(files) > 1 {
		kind = StreamVideo
	}
	fields := []Field{{Name: "Format", Value: format}}
	if info.Width > 0 && info.Height > 0 {
		fields = append(fields,
			Field{Name: "Width", Value: uintString(uint64(info.Width))},
			Field{Name: "Height", Value: uintString(uint64(info.Height))},
		)
	}
	frames := make([]frame, 0, len(files))
	var payload int64
	for i, file := range files {
		frames = append(frames, frame{File: file, Size: sizes[i], Start: int64(i), Length: 1})
		payload += sizes[i]
	}
	return track{
		Kind:       kind,
		Fields:     fields,
		Rate:       rate,
		Units:      int64(len(files)),
		FrameUnits: kind == StreamVideo,
		Payload:    payload,
		Frames:     frames,
	}
}

func readHeader(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	header := make([]byte, n)
	read, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return header[:read], nil
}
