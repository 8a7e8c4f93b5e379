package references

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDTSInterval    = 250 * time.Millisecond
	defaultBufferReadSize = 1 << 20
)

// Config holds the compositor options. Field names follow the MediaInfo
// option they mirror; see Set.
type Config struct {
	// ParseSpeed below 1 reads only the first resource of each sequence when
	// packets are pumped.
	ParseSpeed float64 `yaml:"parse_speed"`
	NextPacket bool    `yaml:"next_packet"`
	// DemuxInterleave round-robins sequences, bounded by DTSInterval.
	DemuxInterleave bool          `yaml:"demux_interleave"`
	DTSInterval     time.Duration `yaml:"dts_interval"`
	KeepInfo        bool          `yaml:"keep_info"`
	IDOnlyRoot      bool          `yaml:"id_only_root"`
	FilterAudio     bool          `yaml:"filter_audio"`
	FilesForStorage bool          `yaml:"files_for_storage"`

	IgnoreSequenceFileSize   bool `yaml:"ignore_sequence_file_size"`
	IgnoreSequenceFilesCount bool `yaml:"ignore_sequence_files_count"`
	SourceList               bool `yaml:"source_list"`
	MD5                      bool `yaml:"md5"`
	IsReferenced             bool `yaml:"is_referenced"`
	TestContinuousFileNames  bool `yaml:"test_continuous_file_names"`
	MpegTsForceMenu          bool `yaml:"mpegts_force_menu"`

	DemuxUnpacketize bool `yaml:"demux_unpacketize"`
	// DemuxInitData is "", "Event" or "Field".
	DemuxInitData string `yaml:"demux_init_data"`
	// FrameRate is the demux rate handed to every sequence, 0 to take the
	// first sequence frame rate.
	FrameRate float64 `yaml:"frame_rate"`

	EncryptionKey  string `yaml:"encryption_key"`
	BufferReadSize int    `yaml:"buffer_read_size"`
}

func DefaultConfig() Config {
	return Config{
		ParseSpeed:              1,
		DTSInterval:             defaultDTSInterval,
		TestContinuousFileNames: true,
		BufferReadSize:          defaultBufferReadSize,
	}
}

// Normalize replaces unusable values with defaults.
func (c *Config) Normalize() {
	if c.ParseSpeed < 0 {
		c.ParseSpeed = 0
	}
	if c.DTSInterval <= 0 {
		c.DTSInterval = defaultDTSInterval
	}
	if c.BufferReadSize <= 0 {
		c.BufferReadSize = defaultBufferReadSize
	}
	switch strings.ToLower(c.DemuxInitData) {
	case "event":
		c.DemuxInitData = "Event"
	case "field":
		c.DemuxInitData = "Field"
	default:
		c.DemuxInitData = ""
	}
	if c.FrameRate < 0 {
		c.FrameRate = 0
	}
}

// Set applies a MediaInfo-style option such as File_NextPacket=1.
func (c *Config) Set(name, value string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	var err error
	switch key {
	case "parsespeed":
		c.ParseSpeed, err = strconv.ParseFloat(value, 64)
	case "file_nextpacket":
		c.NextPacket, err = parseBool(value)
	case "file_demux_interleave":
		c.DemuxInterleave, err = parseBool(value)
	case "file_demux_interval":
		c.DTSInterval, err = time.ParseDuration(value)
	case "file_keepinfo":
		c.KeepInfo, err = parseBool(value)
	case "file_id_onlyroot":
		c.IDOnlyRoot, err = parseBool(value)
	case "file_filter_audio":
		c.FilterAudio, err = parseBool(value)
	case "file_filesforstorage":
		c.FilesForStorage, err = parseBool(value)
	case "file_ignoresequencefilesize":
		c.IgnoreSequenceFileSize, err = parseBool(value)
	case "file_ignoresequencefilescount":
		c.IgnoreSequenceFilesCount, err = parseBool(value)
	case "file_source_list":
		c.SourceList, err = parseBool(value)
	case "file_md5":
		c.MD5, err = parseBool(value)
	case "file_isreferenced":
		c.IsReferenced, err = parseBool(value)
	case "file_testcontinuousfilenames":
		c.TestContinuousFileNames, err = parseBool(value)
	case "file_mpegts_forcemenu":
		c.MpegTsForceMenu, err = parseBool(value)
	case "file_demux_unpacketize":
		c.DemuxUnpacketize, err = parseBool(value)
	case "file_demux_initdata":
		switch strings.ToLower(value) {
		case "", "event", "field":
			c.DemuxInitData = value
		default:
			err = ErrInvalidOption
		}
	case "file_demux_rate":
		c.FrameRate, err = strconv.ParseFloat(value, 64)
	case "file_encryption_key":
		c.EncryptionKey = value
	case "file_buffer_read_size":
		c.BufferReadSize, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownOption)
	}
	if err != nil {
		return fmt.Errorf("%s=%q: %w", name, value, ErrInvalidOption)
	}
	c.Normalize()
	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, ErrInvalidOption
}
