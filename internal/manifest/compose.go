package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

const hostFormat = "Reference list"

type ComposeOptions struct {
	Logger *zap.Logger
	// Settings are "Name=value" options applied over the manifest config.
	Settings []string
	// ConfigFile replaces the manifest config when set.
	ConfigFile string
	// OnPacket switches the compositor to packet mode.
	OnPacket references.PacketHandler
	// Root, when set, is the only directory references may be read from.
	Root string
}

// Result is a finished composition.
type Result struct {
	Report   *mediainfo.Report
	Problems []error
}

// Compose loads the manifest at path and composites every sequence it names.
func Compose(ctx context.Context, path string, opts ComposeOptions) (*Result, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	if opts.ConfigFile != "" {
		cfg, err := LoadConfigFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		m.Config = cfg
	}
	for _, setting := range opts.Settings {
		name, value, _ := strings.Cut(setting, "=")
		if err := m.Config.Set(name, value); err != nil {
			return nil, err
		}
	}
	if opts.OnPacket != nil {
		m.Config.NextPacket = true
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	report := HostReport(m, path, stat.Size())
	options := []references.Option{references.WithLogger(log)}
	if opts.Root != "" {
		options = append(options, references.WithFileSystem(references.NewRootedFileSystem(opts.Root)))
	}
	if opts.OnPacket != nil {
		options = append(options, references.WithPacketHandler(opts.OnPacket))
	}
	c := references.New(report, path, stat.Size(), m.Config, options...)
	defer c.Close()
	for _, seq := range m.References() {
		c.AddSequence(seq)
	}
	for !c.Done() {
		if err := c.ParseReferences(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	log.Debug("manifest composed",
		zap.String("path", path),
		zap.Int("sequences", len(m.Sequences)),
		zap.Int("problems", len(c.Problems())),
	)
	return &Result{Report: report, Problems: c.Problems()}, nil
}

// HostReport starts the report of the manifest itself.
func HostReport(m *Manifest, path string, size int64) *mediainfo.Report {
	report := mediainfo.NewReport(path)
	report.Fill(mediainfo.StreamGeneral, 0, "CompleteName", path, true)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		report.Fill(mediainfo.StreamGeneral, 0, "FileExtension", ext, true)
	}
	report.Fill(mediainfo.StreamGeneral, 0, "Format", hostFormat, true)
	report.Fill(mediainfo.StreamGeneral, 0, "FileSize", strconv.FormatInt(size, 10), true)
	if m.Title != "" {
		report.Fill(mediainfo.StreamGeneral, 0, "Title", m.Title, true)
	}
	return report
}
