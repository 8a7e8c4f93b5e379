package mediainfo

import (
	"strconv"
	"strings"
)

const (
	defaultBufferReadSize = 1 << 20
	defaultDemuxRate      = 25
)

type AnalyzeOptions struct {
	ParseSpeed    float64
	HasParseSpeed bool

	TestContinuousFileNames bool
	IsReferenced            bool
	KeepInfo                bool
	IDOnlyRoot              bool
	MpegTsForceMenu         bool
	NextPacket              bool

	IgnoreSequenceFileSize   bool
	IgnoreSequenceFilesCount bool
	SourceList               bool
	MD5                      bool

	// Edit units are expressed in EditRate; -1 means unset.
	IgnoreEditsBefore int64
	IgnoreEditsAfter  int64
	EditRate          float64

	DemuxRate        float64
	DemuxOffsetDTS   int64
	DemuxOffsetFrame int64
	DemuxUnpacketize bool
	DemuxInitData    string

	BufferReadSize int
	SubFileIDs     []SubFileID
	Encryption     map[string]string
}

// SubFileID is one level of the parent identifier chain handed to a
// referenced parser.
type SubFileID struct {
	ID     uint64
	Width  int
	Parser int
}

func defaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		ParseSpeed:              0.5,
		TestContinuousFileNames: true,
		IgnoreEditsBefore:       -1,
		IgnoreEditsAfter:        -1,
		BufferReadSize:          defaultBufferReadSize,
	}
}

func normalizeAnalyzeOptions(opts AnalyzeOptions) AnalyzeOptions {
	if !opts.HasParseSpeed {
		opts.ParseSpeed = 0.5
	}
	if opts.ParseSpeed < 0 {
		opts.ParseSpeed = 0
	}
	if opts.ParseSpeed > 1 {
		opts.ParseSpeed = 1
	}
	if opts.IgnoreEditsBefore < 0 {
		opts.IgnoreEditsBefore = -1
	}
	if opts.IgnoreEditsAfter < 0 {
		opts.IgnoreEditsAfter = -1
	}
	if opts.EditRate < 0 {
		opts.EditRate = 0
	}
	if opts.DemuxRate < 0 {
		opts.DemuxRate = 0
	}
	if opts.BufferReadSize <= 0 {
		opts.BufferReadSize = defaultBufferReadSize
	}
	return opts
}

// setOption applies one MediaInfo-style option. It returns an empty string on
// success and a message otherwise.
func (opts *AnalyzeOptions) setOption(name, value string) string {
	switch strings.ToLower(name) {
	case "parsespeed":
		speed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "ParseSpeed: invalid value"
		}
		opts.ParseSpeed = speed
		opts.HasParseSpeed = true
	case "file_testcontinuousfilenames":
		opts.TestContinuousFileNames = parseBoolOption(value)
	case "file_isreferenced":
		opts.IsReferenced = parseBoolOption(value)
	case "file_keepinfo":
		opts.KeepInfo = parseBoolOption(value)
	case "file_id_onlyroot":
		opts.IDOnlyRoot = parseBoolOption(value)
	case "file_mpegts_forcemenu":
		opts.MpegTsForceMenu = parseBoolOption(value)
	case "file_nextpacket":
		opts.NextPacket = parseBoolOption(value)
	case "file_ignoresequencefilesize":
		opts.IgnoreSequenceFileSize = parseBoolOption(value)
	case "file_ignoresequencefilescount":
		opts.IgnoreSequenceFilesCount = parseBoolOption(value)
	case "file_source_list":
		opts.SourceList = parseBoolOption(value)
	case "file_md5":
		opts.MD5 = parseBoolOption(value)
	case "file_ignoreeditsbefore":
		return parseEditOption(value, &opts.IgnoreEditsBefore)
	case "file_ignoreeditsafter":
		return parseEditOption(value, &opts.IgnoreEditsAfter)
	case "file_editrate":
		return parseRateOption(value, &opts.EditRate)
	case "file_demux_rate":
		return parseRateOption(value, &opts.DemuxRate)
	case "file_demux_offset_dts":
		return parseEditOption(value, &opts.DemuxOffsetDTS)
	case "file_demux_offset_frame":
		return parseEditOption(value, &opts.DemuxOffsetFrame)
	case "file_demux_unpacketize":
		opts.DemuxUnpacketize = parseBoolOption(value)
	case "file_demux_initdata":
		switch value {
		case "", "Event", "Field":
			opts.DemuxInitData = value
		default:
			return "File_Demux_InitData: invalid value"
		}
	case "file_buffer_read_size":
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return "File_Buffer_Read_Size: invalid value"
		}
		opts.BufferReadSize = size
	case "file_subfile_ids_set":
		ids, ok := parseSubFileIDs(value)
		if !ok {
			return "File_SubFile_IDs_Set: invalid value"
		}
		opts.SubFileIDs = ids
	case "file_encryption_format", "file_encryption_key", "file_encryption_method",
		"file_encryption_mode", "file_encryption_padding", "file_encryption_initializationvector":
		if opts.Encryption == nil {
			opts.Encryption = map[string]string{}
		}
		opts.Encryption[strings.TrimPrefix(name, "File_")] = value
	default:
		return "Option not known"
	}
	return ""
}

func parseBoolOption(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func parseEditOption(value string, dst *int64) string {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return "invalid value"
	}
	*dst = parsed
	return ""
}

func parseRateOption(value string, dst *float64) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed < 0 {
		return "invalid value"
	}
	*dst = parsed
	return ""
}

// parseSubFileIDs reads "id,width,parser" lines.
func parseSubFileIDs(value string) ([]SubFileID, bool) {
	var ids []SubFileID
	for _, line := range strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '\r' }) {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, false
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			unsigned, uerr := strconv.ParseUint(parts[0], 10, 64)
			if uerr != nil {
				return nil, false
			}
			id = int64(unsigned)
		}
		width, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, false
		}
		parser, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, false
		}
		ids = append(ids, SubFileID{ID: uint64(id), Width: width, Parser: parser})
	}
	return ids, true
}
