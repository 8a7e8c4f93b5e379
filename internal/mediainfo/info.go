package mediainfo

import "strings"

// infoParameters lists the fields reports can carry, per stream kind.
var infoParameters = []struct {
	kind   StreamKind
	fields []string
}{
	{StreamGeneral, []string{"CompleteName", "CompleteName_Last", "FileExtension", "Format", "FileSize", "StreamSize", "Duration", "OverallBitRate", "Title", "MD5_Generated", "Source_List"}},
	{StreamVideo, []string{"ID", "MenuID", "Format", "CodecID", "Width", "Height", "FrameRate", "FrameCount", "BitDepth", "Duration", "BitRate", "StreamSize", "Source", "Source_Info", "Source_List", "MuxingMode"}},
	{StreamAudio, []string{"ID", "MenuID", "Format", "CodecID", "Channels", "ChannelPositions", "ChannelLayout", "SamplingRate", "SamplingCount", "BitDepth", "Duration", "BitRate", "BitRate_Mode", "StreamSize", "Language", "Source", "Source_Info", "Source_List", "MuxingMode"}},
	{StreamImage, []string{"ID", "Format", "Width", "Height", "BitDepth", "StreamSize", "Source"}},
	{StreamText, []string{"ID", "Format", "CodecID", "Duration", "FrameRate", "ElementCount", "Language", "Source", "Source_Info"}},
	{StreamMenu, []string{"ID", "Source", "List"}},
}

// InfoParameters renders the field names of every stream kind, one block per
// kind.
func InfoParameters() string {
	var b strings.Builder
	for i, entry := range infoParameters {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(entry.kind))
		b.WriteString("\n")
		for _, field := range entry.fields {
			b.WriteString(padRight(field, 24))
			b.WriteString(": ")
			b.WriteString(fieldLabel(field))
			b.WriteString("\n")
		}
	}
	return b.String()
}
