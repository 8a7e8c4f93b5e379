package mediainfo

import "strings"

// FormatFromCodecID maps an MP4 sample entry, a Matroska codec ID or a WAVE
// format tag to a format name.
func FormatFromCodecID(codecID string) string {
	if format := mapMP4SampleEntry(codecID); format != "" {
		return format
	}
	switch {
	case strings.HasPrefix(codecID, "V_MPEG4/ISO/AVC"):
		return "AVC"
	case strings.HasPrefix(codecID, "V_MPEGH/ISO/HEVC"):
		return "HEVC"
	case strings.HasPrefix(codecID, "A_AAC"):
		return "AAC"
	case strings.HasPrefix(codecID, "A_PCM"):
		return "PCM"
	case codecID == "A_AC3":
		return "AC-3"
	case codecID == "A_EAC3":
		return "E-AC-3"
	case codecID == "A_FLAC":
		return "FLAC"
	case codecID == "S_TEXT/UTF8":
		return "UTF-8"
	}
	switch strings.ToLower(codecID) {
	case "1", "3", "fffe":
		return "PCM"
	case "55":
		return "MPEG Audio"
	case "2000":
		return "AC-3"
	}
	return ""
}

func mapMP4SampleEntry(sample string) string {
	switch sample {
	case "avc1", "avc3":
		return "AVC"
	case "hvc1", "hev1":
		return "HEVC"
	case "mp4v":
		return "MPEG-4 Visual"
	case "mp4a":
		return "AAC"
	case "ac-3":
		return "AC-3"
	case "ac-4":
		return "AC-4"
	case "ec-3":
		return "E-AC-3"
	case "alac":
		return "ALAC"
	case "flac", "fLaC":
		return "FLAC"
	case "Opus", "opus":
		return "Opus"
	case "lpcm", "sowt", "twos", "in24", "in32", "fl32":
		return "PCM"
	case "apch", "apcn", "apcs", "apco", "ap4h", "ap4x":
		return "ProRes"
	case "mp4s":
		return "MPEG-4 Systems"
	case "tx3g":
		return "Timed Text"
	case "wvtt":
		return "WebVTT"
	case "stpp":
		return "TTML"
	case "c608":
		return "EIA-608"
	case "tmcd":
		return "QuickTime TC"
	default:
		return ""
	}
}
