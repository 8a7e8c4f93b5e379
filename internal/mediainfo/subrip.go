package mediainfo

import (
	"bytes"
	"math"
	"os"
	"strconv"
	"strings"
)

func parseSubRip(path string) (track, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return track{}, false
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))

	var (
		frames []frame
		end    int64
	)
	for _, block := range splitBlocks(data) {
		lines := strings.Split(strings.ReplaceAll(string(block.data), "\r", ""), "\n")
		for i, line := range lines {
			start, stop, ok := parseSubRipTiming(line)
			if !ok {
				continue
			}
			text := strings.Join(lines[i+1:], "\n")
			frames = append(frames, frame{
				File:   path,
				Offset: block.offset,
				Size:   int64(len(text)),
				Start:  start,
				Length: stop - start,
				Data:   []byte(text),
			})
			if stop > end {
				end = stop
			}
			break
		}
	}
	if len(frames) == 0 {
		return track{}, false
	}
	return track{
		Kind: StreamText,
		Fields: []Field{
			{Name: "Format", Value: "SubRip"},
			{Name: "CodecID", Value: "S_TEXT/UTF8"},
		},
		Rate:    1000,
		Units:   end,
		Payload: int64(len(data)),
		Frames:  frames,
	}, true
}

type textBlock struct {
	offset int64
	data   []byte
}

// splitBlocks cuts text at blank lines.
func splitBlocks(data []byte) []textBlock {
	var blocks []textBlock
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	pos := 0
	for pos < len(normalized) {
		next := bytes.Index(normalized[pos:], []byte("\n\n"))
		if next < 0 {
			next = len(normalized) - pos
		}
		if chunk := bytes.TrimSpace(normalized[pos : pos+next]); len(chunk) > 0 {
			blocks = append(blocks, textBlock{offset: int64(pos), data: normalized[pos : pos+next]})
		}
		pos += next + 2
	}
	return blocks
}

func parseSubRipTiming(line string) (int64, int64, bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok := parseSubRipTime(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, false
	}
	stop, ok := parseSubRipTime(endField[0])
	if !ok || stop < start {
		return 0, 0, false
	}
	return start, stop, true
}

// parseSubRipTime reads HH:MM:SS,mmm in milliseconds.
func parseSubRipTime(value string) (int64, bool) {
	value = strings.Replace(value, ".", ",", 1)
	clock, millis, ok := strings.Cut(value, ",")
	if !ok {
		return 0, false
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil || ms < 0 || ms > 999 {
		return 0, false
	}
	return total*1000 + ms, true
}

const sccFrameRate = 30000.0 / 1001.0

func parseSCC(path string) (track, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return track{}, false
	}
	if !bytes.HasPrefix(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")), []byte("Scenarist_SCC V1.0")) {
		return track{}, false
	}
	var (
		frames []frame
		offset int64
	)
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		lineOffset := offset
		offset += int64(len(line))
		text := strings.TrimSpace(string(line))
		timecode, payload, ok := strings.Cut(text, "\t")
		if !ok {
			continue
		}
		start, ok := parseSCCTimecode(timecode)
		if !ok {
			continue
		}
		frames = append(frames, frame{
			File:   path,
			Offset: lineOffset + int64(len(timecode)) + 1,
			Size:   int64(len(strings.TrimSpace(payload))),
			Start:  start,
			Data:   []byte(strings.TrimSpace(payload)),
		})
	}
	if len(frames) == 0 {
		return track{}, false
	}
	for i := range frames {
		if i+1 < len(frames) {
			frames[i].Length = frames[i+1].Start - frames[i].Start
		} else {
			frames[i].Length = int64(math.Round(1000 / sccFrameRate))
		}
	}
	last := frames[len(frames)-1]
	return track{
		Kind: StreamText,
		Fields: []Field{
			{Name: "Format", Value: "EIA-608"},
			{Name: "MuxingMode", Value: "SCC"},
		},
		Rate:    1000,
		Units:   last.Start + last.Length,
		Payload: int64(len(data)),
		Frames:  frames,
	}, true
}

// parseSCCTimecode reads HH:MM:SS:FF (or ;FF for drop frame) in milliseconds.
func parseSCCTimecode(value string) (int64, bool) {
	value = strings.ReplaceAll(value, ";", ":")
	parts := strings.Split(value, ":")
	if len(parts) != 4 {
		return 0, false
	}
	var n [4]int64
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		n[i] = v
	}
	frames := ((n[0]*60+n[1])*60+n[2])*30 + n[3]
	return int64(math.Round(float64(frames) * 1000 / sccFrameRate)), true
}
