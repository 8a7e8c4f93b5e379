package mediainfo

import (
	"fmt"
	"os"
)

func AnalyzeFile(path string) (Report, error) {
	return AnalyzeFileWithOptions(path, defaultAnalyzeOptions())
}

func AnalyzeFileWithOptions(path string, opts AnalyzeOptions) (Report, error) {
	return AnalyzeFilesWithOptions([]string{path}, opts)
}

// AnalyzeFilesWithOptions analyzes names as one file set.
func AnalyzeFilesWithOptions(names []string, opts AnalyzeOptions) (Report, error) {
	if len(names) == 0 {
		return Report{}, fmt.Errorf("no file")
	}
	for _, name := range names {
		if _, err := os.Stat(name); err != nil {
			return Report{}, err
		}
	}
	in := NewInstanceWithOptions(opts)
	defer in.Close()
	if !in.Open(names) {
		return Report{}, fmt.Errorf("%s: cannot analyze", names[0])
	}
	return *in.Report(), nil
}

// DefaultAnalyzeOptions returns the options AnalyzeFile uses.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return defaultAnalyzeOptions()
}

// ApplyOption sets a MediaInfo-style option on opts and returns an empty
// string when it was accepted.
func ApplyOption(opts *AnalyzeOptions, name, value string) string {
	return opts.setOption(name, value)
}
