package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/manifest"
	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

// ComposeFlags are the flags of the compose command.
type ComposeFlags struct {
	Output     string
	ConfigFile string
	Verbose    bool
	Packets    bool
	ParseSpeed float64
	SourceList bool
	MD5        bool
	NoFileSize bool
	Interleave bool
	Settings   []string
}

func (f *ComposeFlags) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Output, "output", "o", "text", "output format: text or json")
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "YAML file with compositor options")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "log resolution and merge details")
	fs.BoolVar(&f.Packets, "packets", false, "list every packet in timestamp order before the report")
	fs.Float64Var(&f.ParseSpeed, "parse-speed", -1, "0..1, below 1 reads only the first resource of each sequence")
	fs.BoolVar(&f.SourceList, "source-list", false, "list referenced files")
	fs.BoolVar(&f.MD5, "md5", false, "hash referenced files")
	fs.BoolVar(&f.NoFileSize, "ignore-sequence-file-size", false, "leave referenced files out of the file size")
	fs.BoolVar(&f.Interleave, "interleave", false, "interleave packets of all sequences")
	fs.StringArrayVar(&f.Settings, "set", nil, "raw option as Name=value, repeatable")
}

// settings translates the flags into compositor options.
func (f *ComposeFlags) settings() []string {
	var out []string
	if f.ParseSpeed >= 0 {
		out = append(out, "ParseSpeed="+strconv.FormatFloat(f.ParseSpeed, 'f', -1, 64))
	}
	if f.SourceList {
		out = append(out, "File_Source_List=1")
	}
	if f.MD5 {
		out = append(out, "File_MD5=1")
	}
	if f.NoFileSize {
		out = append(out, "File_IgnoreSequenceFileSize=1")
	}
	if f.Interleave {
		out = append(out, "File_Demux_Interleave=1")
	}
	return append(out, f.Settings...)
}

// RunCompose composites every manifest and writes the reports to stdout.
func RunCompose(ctx context.Context, flags ComposeFlags, files []string, stdout, stderr io.Writer) error {
	if len(files) == 0 {
		return errors.New("no manifest given")
	}
	format, err := outputFormat(flags.Output)
	if err != nil {
		return err
	}
	log := NewLogger(stderr, flags.Verbose)
	defer func() { _ = log.Sync() }()

	opts := manifest.ComposeOptions{
		Logger:     log,
		Settings:   flags.settings(),
		ConfigFile: flags.ConfigFile,
	}
	if flags.Packets {
		opts.OnPacket = func(seq *references.Sequence, packet mediainfo.Packet) bool {
			fmt.Fprintln(stdout, packetLine(seq, packet))
			return true
		}
	}

	reports := make([]mediainfo.Report, 0, len(files))
	for _, file := range files {
		result, err := manifest.Compose(ctx, file, opts)
		if err != nil {
			return err
		}
		for _, problem := range result.Problems {
			log.Warn("reference problem", zap.String("manifest", file), zap.Error(problem))
		}
		reports = append(reports, *result.Report)
	}
	_, err = io.WriteString(stdout, Render(format, reports))
	return err
}

func packetLine(seq *references.Sequence, packet mediainfo.Packet) string {
	id := "-"
	if seq.StreamID != references.NoID {
		id = strconv.FormatUint(seq.StreamID, 10)
	}
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%d", packet.File, id, packet.DTS, packet.Duration, packet.Frame, len(packet.Data))
}
