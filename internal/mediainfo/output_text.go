package mediainfo

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

func RenderText(reports []Report) string {
	var buf bytes.Buffer
	for i, report := range reports {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeStream(&buf, string(report.General.Kind), report.General)
		forEachStreamWithKindIndex(report.Streams, func(stream Stream, index, total int) {
			buf.WriteString("\n")
			writeStream(&buf, streamTitle(stream.Kind, index, total), stream)
		})
		buf.WriteString("\n")
		buf.WriteString(reportByLine())
		buf.WriteString("\n")
	}
	output := strings.TrimRight(buf.String(), "\n")
	return output + "\n\n"
}

// forEachStreamWithKindIndex calls fn with the 1-based index of each stream
// among the streams of its kind.
func forEachStreamWithKindIndex(streams []Stream, fn func(stream Stream, index, total int)) {
	totals := map[StreamKind]int{}
	for _, stream := range streams {
		totals[stream.Kind]++
	}
	seen := map[StreamKind]int{}
	for _, stream := range streams {
		seen[stream.Kind]++
		fn(stream, seen[stream.Kind], totals[stream.Kind])
	}
}

func reportByLine() string {
	return fmt.Sprintf("ReportBy : %s - %s", AppName, FormatVersion(AppVersion))
}

func writeStream(buf *bytes.Buffer, title string, stream Stream) {
	buf.WriteString(title)
	buf.WriteString("\n")
	for _, field := range stream.Fields {
		name, value, ok := humanField(stream, field)
		if !ok {
			continue
		}
		buf.WriteString(padRight(name, 41))
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\n")
	}
}

// humanField renders a raw field for the text view. Raw fields that have a
// "/String" companion are shown through it.
func humanField(stream Stream, field Field) (string, string, bool) {
	if strings.HasSuffix(field.Name, "/String") {
		return "", "", false
	}
	if companion := findField(stream.Fields, field.Name+"/String"); companion != "" {
		return fieldLabel(field.Name), companion, true
	}
	value := field.Value
	switch field.Name {
	case "FileSize", "StreamSize":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			value = formatBytes(n)
		}
	case "Duration":
		if ms, err := strconv.ParseFloat(value, 64); err == nil {
			value = formatDuration(ms / 1000)
		}
	case "BitRate", "OverallBitRate":
		if bps, err := strconv.ParseFloat(value, 64); err == nil {
			value = formatBitrate(bps)
		}
	case "FrameRate":
		value += " FPS"
	case "Width", "Height":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			value = formatThousands(n) + " pixels"
		}
	case "Channels":
		value += " channel"
		if field.Value != "1" {
			value += "s"
		}
	case "SamplingRate":
		if hz, err := strconv.ParseFloat(value, 64); err == nil {
			value = strconv.FormatFloat(hz/1000, 'f', -1, 64) + " kHz"
		}
	case "BitDepth":
		value += " bits"
	}
	return fieldLabel(field.Name), value, true
}

var fieldLabels = map[string]string{
	"CompleteName":      "Complete name",
	"CompleteName_Last": "Complete name (last)",
	"FileExtension":     "File extension",
	"FileSize":          "File size",
	"OverallBitRate":    "Overall bit rate",
	"StreamSize":        "Stream size",
	"BitRate":           "Bit rate",
	"BitRate_Mode":      "Bit rate mode",
	"FrameCount":        "Frame count",
	"FrameRate":         "Frame rate",
	"CodecID":           "Codec ID",
	"Channels":          "Channel(s)",
	"ChannelPositions":  "Channel positions",
	"ChannelLayout":     "Channel layout",
	"SamplingRate":      "Sampling rate",
	"SamplingCount":     "Sampling count",
	"BitDepth":          "Bit depth",
	"Compression_Mode":  "Compression mode",
	"MuxingMode":        "Muxing mode",
	"ElementCount":      "Count of elements",
	"MenuID":            "Menu ID",
	"Source_Info":       "Source info",
	"Source_List":       "Source list",
	"MD5_Generated":     "MD5",
}

func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(value))
}

func streamTitle(kind StreamKind, index, total int) string {
	if total <= 1 || kind == StreamGeneral {
		return string(kind)
	}
	return fmt.Sprintf("%s #%d", kind, index)
}
