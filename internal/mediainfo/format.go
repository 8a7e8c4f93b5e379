package mediainfo

import (
	"bytes"
	"path/filepath"
	"strings"
)

const maxSniffBytes = 4096

func DetectFormat(header []byte, filename string) string {
	if len(header) == 0 {
		return "Unknown"
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".ifo" {
		return "DVD Video"
	}
	if ext == ".vob" {
		return "MPEG-PS"
	}

	if bytes.HasPrefix(header, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return "Matroska"
	}
	if len(header) >= 12 {
		if string(header[4:8]) == "ftyp" {
			brand := string(header[8:12])
			if brand == "qt  " {
				return "QuickTime"
			}
			return "MPEG-4"
		}
	}
	if len(header) >= 12 {
		sig := string(header[0:4])
		if sig == "RIFF" {
			form := string(header[8:12])
			if form == "AVI " {
				return "AVI"
			}
			if form == "WAVE" {
				return "Wave"
			}
		}
		if sig == "FORM" && string(header[8:12]) == "AIFF" {
			return "AIFF"
		}
	}
	if bytes.HasPrefix(header, []byte("fLaC")) {
		return "FLAC"
	}
	if bytes.HasPrefix(header, []byte("OggS")) {
		return "Ogg"
	}
	if format := detectImageFormat(header); format != "" {
		return format
	}
	if bytes.HasPrefix(header, []byte("ID3")) {
		return "MPEG Audio"
	}
	if isMP3Frame(header) {
		return "MPEG Audio"
	}
	if isMPEGTS(header) {
		return "MPEG-TS"
	}
	if bytes.HasPrefix(header, []byte{0x00, 0x00, 0x01, 0xBA}) {
		return "MPEG-PS"
	}
	if format := detectTextFormat(header, ext); format != "" {
		return format
	}

	return "Unknown"
}

func detectImageFormat(header []byte) string {
	switch {
	case bytes.HasPrefix(header, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case bytes.HasPrefix(header, []byte{0xFF, 0xD8, 0xFF}):
		return "JPEG"
	case bytes.HasPrefix(header, []byte("SDPX")), bytes.HasPrefix(header, []byte("XPDS")):
		return "DPX"
	case bytes.HasPrefix(header, []byte("II*\x00")), bytes.HasPrefix(header, []byte("MM\x00*")):
		return "TIFF"
	case bytes.HasPrefix(header, []byte{0x76, 0x2F, 0x31, 0x01}):
		return "EXR"
	}
	return ""
}

func detectTextFormat(header []byte, ext string) string {
	text := bytes.TrimPrefix(header, []byte("\xEF\xBB\xBF"))
	if bytes.HasPrefix(text, []byte("Scenarist_SCC V1.0")) {
		return "SCC"
	}
	if ext == ".srt" || looksLikeSubRip(text) {
		return "SubRip"
	}
	return ""
}

func looksLikeSubRip(text []byte) bool {
	lines := bytes.SplitN(text, []byte("\n"), 3)
	if len(lines) < 2 {
		return false
	}
	first := bytes.TrimSpace(lines[0])
	if len(first) == 0 || !isAllDigits(string(first)) {
		return false
	}
	return bytes.Contains(lines[1], []byte("-->"))
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isImageFormat(format string) bool {
	switch format {
	case "PNG", "JPEG", "DPX", "TIFF", "EXR":
		return true
	}
	return false
}

func isMP3Frame(header []byte) bool {
	if len(header) < 2 {
		return false
	}
	return header[0] == 0xFF && (header[1]&0xE0) == 0xE0
}

func isMPEGTS(header []byte) bool {
	if len(header) < 376+1 {
		return false
	}
	return header[0] == 0x47 && header[188] == 0x47 && header[376] == 0x47
}
