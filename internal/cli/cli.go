package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/manifest"
	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

const (
	exitOK    = 0
	exitError = 1
)

type Options struct {
	Output      string
	LogFile     string
	ConfigFile  string
	Bom         bool
	Verbose     bool
	CoreOptions []CoreOption
}

type CoreOption struct {
	Name  string
	Value string
}

func (o CoreOption) String() string {
	return o.Name + "=" + o.Value
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return exitError
	}

	program := programName(args[0])
	opts := Options{}
	files := make([]string, 0)

	for i := 1; i < len(args); i++ {
		original := args[i]
		normalized := normalizeArg(original)

		switch {
		case normalized == "--help" || normalized == "-h":
			Help(program, stdout)
			return exitOK
		case strings.HasPrefix(normalized, "--help-"):
			return helpTopic(normalized, program, stdout)
		case normalized == "--info-parameters":
			fmt.Fprint(stdout, mediainfo.InfoParameters())
			return exitOK
		case strings.HasPrefix(normalized, "--output="):
			if value, ok := valueAfterEqual(original); ok && value != "" {
				opts.Output = value
			} else {
				HelpOutput(program, stdout)
				return exitError
			}
		case strings.HasPrefix(normalized, "--logfile="):
			opts.LogFile, _ = valueAfterEqual(original)
		case strings.HasPrefix(normalized, "--config="):
			opts.ConfigFile, _ = valueAfterEqual(original)
		case normalized == "--bom":
			opts.Bom = true
		case normalized == "--verbose" || normalized == "-v":
			opts.Verbose = true
		case normalized == "--version":
			Version(stdout)
			return exitOK
		case strings.HasPrefix(normalized, "--"):
			if normalized == "--" {
				continue
			}
			name, value := parseCoreOption(normalized, original)
			if name == "" {
				continue
			}
			opts.CoreOptions = append(opts.CoreOptions, CoreOption{Name: name, Value: value})
		default:
			files = append(files, original)
		}
	}

	if len(files) == 0 {
		return Usage(program, stdout)
	}

	if opts.Bom {
		writeBOM(stdout, stderr)
	}

	log := NewLogger(stderr, opts.Verbose)
	defer func() { _ = log.Sync() }()

	output, filesCount, err := runCore(context.Background(), opts, files, log)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	if output != "" {
		fmt.Fprint(stdout, output)
	}

	if opts.LogFile != "" {
		if err := writeLogFile(opts.LogFile, output, opts.Bom); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitError
		}
	}

	if filesCount > 0 {
		return exitOK
	}

	return exitError
}

func helpTopic(normalized, program string, stdout io.Writer) int {
	switch normalized {
	case "--help-output", "--help-inform":
		HelpOutput(program, stdout)
	case "--help-manifest":
		HelpManifest(stdout)
	default:
		fmt.Fprintln(stdout, "No help available for this option")
	}

	return exitOK
}

func programName(arg0 string) string {
	name := filepath.Base(arg0)
	if runtime.GOOS == "windows" {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func normalizeArg(arg string) string {
	eq := strings.IndexByte(arg, '=')
	if eq == -1 {
		eq = len(arg)
	}

	lower := strings.ToLower(arg[:eq])
	return lower + arg[eq:]
}

func valueAfterEqual(arg string) (string, bool) {
	eq := strings.IndexByte(arg, '=')
	if eq == -1 {
		return "", false
	}
	return arg[eq+1:], true
}

func parseCoreOption(normalized, original string) (string, string) {
	eq := strings.IndexByte(normalized, '=')
	if eq == -1 {
		name := strings.TrimPrefix(normalized, "--")
		return name, "1"
	}

	name := strings.TrimPrefix(normalized[:eq], "--")
	return name, original[eq+1:]
}

func writeBOM(stdout, stderr io.Writer) {
	if runtime.GOOS != "windows" {
		return
	}

	bom := []byte{0xEF, 0xBB, 0xBF}
	_, _ = stdout.Write(bom)
	_, _ = stderr.Write(bom)
}

func writeLogFile(path, output string, includeBOM bool) error {
	data := []byte(output)
	if includeBOM && runtime.GOOS == "windows" {
		data = append([]byte{0xEF, 0xBB, 0xBF}, data...)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	return nil
}

func runCore(ctx context.Context, opts Options, files []string, log *zap.Logger) (string, int, error) {
	format, err := outputFormat(opts.Output)
	if err != nil {
		return "", 0, err
	}

	reports := make([]mediainfo.Report, 0, len(files))
	for _, file := range files {
		report, err := analyze(ctx, opts, file, log)
		if err != nil {
			log.Warn("file skipped", zap.String("file", file), zap.Error(err))
			continue
		}
		reports = append(reports, *report)
	}
	if len(reports) == 0 {
		return "", 0, nil
	}
	return Render(format, reports), len(reports), nil
}

// analyze composites manifests and analyzes every other file on its own.
func analyze(ctx context.Context, opts Options, file string, log *zap.Logger) (*mediainfo.Report, error) {
	if manifest.IsManifest(file) {
		result, err := manifest.Compose(ctx, file, manifest.ComposeOptions{
			Logger:     log,
			Settings:   compositorSettings(opts.CoreOptions),
			ConfigFile: opts.ConfigFile,
		})
		if err != nil {
			return nil, err
		}
		return result.Report, nil
	}

	analyzeOpts := mediainfo.DefaultAnalyzeOptions()
	for _, option := range opts.CoreOptions {
		if msg := mediainfo.ApplyOption(&analyzeOpts, option.Name, option.Value); msg != "" {
			log.Debug("option ignored", zap.String("option", option.Name), zap.String("reason", msg))
		}
	}
	report, err := mediainfo.AnalyzeFilesWithOptions([]string{file}, analyzeOpts)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// compositorSettings keeps the options the compositor understands.
func compositorSettings(options []CoreOption) []string {
	scratch := references.DefaultConfig()
	settings := make([]string, 0, len(options))
	for _, option := range options {
		if err := scratch.Set(option.Name, option.Value); errors.Is(err, references.ErrUnknownOption) {
			continue
		}
		settings = append(settings, option.String())
	}
	return settings
}
