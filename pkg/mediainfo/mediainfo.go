package mediainfo

import (
	"context"

	"github.com/autobrr/go-mediainfo-refs/internal/manifest"
	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

// Types
type StreamKind = mediainfo.StreamKind
type Field = mediainfo.Field
type Stream = mediainfo.Stream
type Report = mediainfo.Report
type AnalyzeOptions = mediainfo.AnalyzeOptions
type Packet = mediainfo.Packet
type SeekMethod = mediainfo.SeekMethod

// Composition
type Compositor = references.Compositor
type Sequence = references.Sequence
type Resource = references.Resource
type Config = references.Config
type Option = references.Option
type SeekStatus = references.SeekStatus
type ComposeOptions = manifest.ComposeOptions
type ComposeResult = manifest.Result

// Constants
const (
	StreamGeneral = mediainfo.StreamGeneral
	StreamVideo   = mediainfo.StreamVideo
	StreamAudio   = mediainfo.StreamAudio
	StreamText    = mediainfo.StreamText
	StreamImage   = mediainfo.StreamImage
	StreamOther   = mediainfo.StreamOther
	StreamMenu    = mediainfo.StreamMenu

	SeekPercentage   = mediainfo.SeekPercentage
	SeekTimePermille = mediainfo.SeekTimePermille
	SeekTimestamp    = mediainfo.SeekTimestamp
	SeekFrame        = mediainfo.SeekFrame

	NoID = references.NoID
)

// Functions
func AnalyzeFile(path string) (Report, error) {
	return mediainfo.AnalyzeFile(path)
}

func AnalyzeFileWithOptions(path string, opts AnalyzeOptions) (Report, error) {
	return mediainfo.AnalyzeFileWithOptions(path, opts)
}

func AnalyzeFilesWithOptions(paths []string, opts AnalyzeOptions) (Report, error) {
	return mediainfo.AnalyzeFilesWithOptions(paths, opts)
}

func DefaultAnalyzeOptions() AnalyzeOptions {
	return mediainfo.DefaultAnalyzeOptions()
}

func NewReport(ref string) *Report {
	return mediainfo.NewReport(ref)
}

func NewCompositor(out *Report, analyzedPath string, analyzedSize int64, cfg Config, opts ...Option) *Compositor {
	return references.New(out, analyzedPath, analyzedSize, cfg, opts...)
}

func NewSequence(kind StreamKind, id uint64, names ...string) *Sequence {
	return references.NewSequence(kind, id, names...)
}

func NewResource(names ...string) *Resource {
	return references.NewResource(names...)
}

func DefaultConfig() Config {
	return references.DefaultConfig()
}

// ComposeManifest composites the YAML manifest at path.
func ComposeManifest(ctx context.Context, path string, opts ComposeOptions) (*ComposeResult, error) {
	return manifest.Compose(ctx, path, opts)
}

// Rendering
func RenderText(reports []Report) string {
	return mediainfo.RenderText(reports)
}

func RenderJSON(reports []Report) string {
	return mediainfo.RenderJSON(reports)
}

func InfoParameters() string {
	return mediainfo.InfoParameters()
}

func FormatVersion(version string) string {
	return mediainfo.FormatVersion(version)
}

func SetAppVersion(version string) {
	mediainfo.SetAppVersion(version)
}
