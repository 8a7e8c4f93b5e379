package mediainfo

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

type continuousFileSet struct {
	Paths     []string
	Sizes     []int64
	TotalSize int64
}

func (s continuousFileSet) LastPath() string {
	if len(s.Paths) == 0 {
		return ""
	}
	return s.Paths[len(s.Paths)-1]
}

// detectContinuousFileSet finds the files following path whose names only
// differ by an incrementing number of the same width (frame_0001.dpx,
// frame_0002.dpx, ...). Numbering stops at the first gap.
func detectContinuousFileSet(path string) (continuousFileSet, bool) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	// trailing digits
	i := len(name)
	for i > 0 {
		c := name[i-1]
		if c < '0' || c > '9' {
			break
		}
		i--
	}
	if i == len(name) {
		return continuousFileSet{}, false
	}
	prefix := name[:i]
	digits := name[i:]
	width := len(digits)
	start, err := strconv.Atoi(digits)
	if err != nil {
		return continuousFileSet{}, false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return continuousFileSet{}, false
	}

	type numberedFile struct {
		index int
		path  string
		size  int64
	}
	matches := make([]numberedFile, 0, 32)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if filepath.Ext(filename) != ext {
			continue
		}
		stem := strings.TrimSuffix(filename, ext)
		if !strings.HasPrefix(stem, prefix) {
			continue
		}
		suffix := stem[len(prefix):]
		if len(suffix) != width || !isAllDigits(suffix) {
			continue
		}
		index, err := strconv.Atoi(suffix)
		if err != nil || index < start {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		matches = append(matches, numberedFile{
			index: index,
			path:  filepath.Join(dir, filename),
			size:  info.Size(),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].index < matches[j].index
	})

	set := continuousFileSet{}
	for n, file := range matches {
		if file.index != start+n {
			break
		}
		set.Paths = append(set.Paths, file.path)
		set.Sizes = append(set.Sizes, file.size)
		set.TotalSize += file.size
	}
	if len(set.Paths) < 2 {
		return continuousFileSet{}, false
	}
	return set, true
}
