package references

import (
	"net/url"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

const protocolMarker = "://"

// resolve turns the raw names of seq into existing absolute paths, reserves
// its output slot and marks it finished when nothing can be read.
func (c *Compositor) resolve(seq *Sequence) {
	resolved := c.resolveNames(seq.FileNames)

	if seq.Source == "" && len(seq.FileNames) > 0 {
		seq.Source = seq.FileNames[0]
	}
	if seq.StreamKind != mediainfo.StreamNone && seq.Source != "" {
		if seq.StreamPos == -1 {
			seq.StreamPos = c.prepare(seq.StreamKind, -1)
		}
		c.out.Fill(seq.StreamKind, seq.StreamPos, "Source", seq.Source, false)
	}

	switch {
	case len(resolved) > 0 && resolved[0] == c.analyzedPath:
		seq.IsCircular = true
		seq.FileNames = nil
		seq.Finished = true
		if seq.StreamKind != mediainfo.StreamNone && seq.StreamPos != -1 {
			c.out.Fill(seq.StreamKind, seq.StreamPos, "Source_Info", "Circular", false)
		}
		c.log.Debug("circular reference", zap.String("source", seq.Source))
	case len(resolved) > 0:
		c.resolveResources(seq, resolved)
		seq.FileNames = resolved
		c.log.Debug("reference resolved", zap.String("source", seq.Source), zap.Strings("files", resolved))
	default:
		seq.Finished = true
		c.markMissing(seq)
		c.problem("resolve", seq, ErrUnresolved)
	}

	if c.cfg.FilesForStorage && len(seq.FileNames) > 0 {
		for i, name := range seq.FileNames {
			if i == len(seq.Resources) {
				seq.Resources = append(seq.Resources, NewResource())
			}
			seq.Resources[i].FileNames = []string{name}
		}
		seq.FileNames = seq.FileNames[:1]
	}
}

// markMissing publishes Source_Info=Missing and the fallback infos on the
// reserved slot.
func (c *Compositor) markMissing(seq *Sequence) {
	if seq.StreamKind == mediainfo.StreamNone || seq.StreamPos == -1 {
		return
	}
	kind, pos := seq.StreamKind, seq.StreamPos
	c.out.Fill(kind, pos, "Source_Info", "Missing", false)
	if c.out.Retrieve(kind, pos, "ID") == "" && seq.StreamID != NoID {
		c.out.Fill(kind, pos, "ID", uintString(seq.StreamID), false)
	}
	for _, name := range seq.infoNames() {
		if name == "CodecID" {
			c.out.FillCodecID(kind, pos, seq.Infos[name])
			continue
		}
		c.out.Fill(kind, pos, name, seq.Infos[name], false)
	}
}

// resolveResources hands the resolved names back to the resources they came
// from, or resolves each resource on its own.
func (c *Compositor) resolveResources(seq *Sequence, resolved []string) {
	if len(seq.Resources) == 0 {
		return
	}
	total := 0
	for _, res := range seq.Resources {
		total += len(res.FileNames)
	}
	if total == len(resolved) {
		at := 0
		for _, res := range seq.Resources {
			n := len(res.FileNames)
			res.FileNames = append([]string(nil), resolved[at:at+n]...)
			at += n
		}
		return
	}
	for _, res := range seq.Resources {
		if names := c.resolveNames(res.FileNames); len(names) > 0 {
			res.FileNames = names
		}
	}
}

// resolveNames looks raw up and drops the result when the file system
// confines lookups and any candidate lies outside it.
func (c *Compositor) resolveNames(raw []string) []string {
	names := c.lookupNames(raw)
	if fs, ok := c.fs.(interface{ Contains(path string) bool }); ok {
		for _, name := range names {
			if !fs.Contains(name) {
				c.log.Warn("reference outside of root", zap.String("file", name))
				return nil
			}
		}
	}
	return names
}

// lookupNames runs the lookup chain: names as given, then forcibly
// percent-decoded, then with their common directory dropped, then with two
// directory levels dropped. It returns nil when no candidate exists.
func (c *Compositor) lookupNames(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	names := make([]string, len(raw))
	for i, name := range raw {
		names[i] = stripFileScheme(name)
	}
	candidates := make([]string, len(names))
	for i, name := range names {
		candidates[i] = c.absoluteName(name, false)
	}
	if strings.Contains(candidates[0], protocolMarker) || c.fs.Exists(candidates[0]) {
		return candidates
	}

	for i, name := range names {
		candidates[i] = c.absoluteName(percentDecode(name), true)
	}
	if c.fs.Exists(candidates[0]) {
		return candidates
	}

	for levels := 1; levels <= 2; levels++ {
		candidates = c.strippedNames(raw, levels)
		if candidates == nil {
			return nil
		}
		if c.fs.Exists(candidates[0]) {
			return candidates
		}
	}
	return nil
}

// strippedNames drops the directory part shared by every name, cut at the
// last separator of the first name (or the one before it when levels is 2).
func (c *Compositor) strippedNames(raw []string, levels int) []string {
	cut := strings.LastIndexAny(raw[0], `\/`)
	if levels == 2 && cut > 0 {
		cut = strings.LastIndexAny(raw[0][:cut], `\/`)
	}
	if cut <= 0 {
		return nil
	}
	prefix := raw[0][:cut]
	for _, name := range raw {
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
	}
	candidates := make([]string, len(raw))
	for i, name := range raw {
		candidates[i] = c.joinBase(name[cut+1:], levels == 2)
	}
	return candidates
}

func (c *Compositor) absoluteName(name string, local bool) string {
	if isAbsolutePath(name) {
		return normalizeSeparators(name, local)
	}
	return c.joinBase(name, local)
}

func (c *Compositor) joinBase(name string, local bool) string {
	if base := baseDir(c.analyzedPath); base != "" {
		name = base + pathSeparator + name
	}
	return normalizeSeparators(name, local)
}

// baseDir is the directory of path; for protocol paths, everything before
// the last slash.
func baseDir(path string) string {
	var cut int
	if strings.Contains(path, protocolMarker) {
		cut = strings.LastIndexByte(path, '/')
	} else {
		cut = strings.LastIndexAny(path, `\/`)
	}
	if cut < 0 {
		return ""
	}
	return path[:cut]
}

func isAbsolutePath(name string) bool {
	return strings.IndexByte(name, ':') == 1 ||
		strings.HasPrefix(name, "/") ||
		strings.HasPrefix(name, `\\`)
}

// stripFileScheme turns a file URL into a path. A drive letter loses the
// slash in front of it.
func stripFileScheme(name string) string {
	rest, ok := strings.CutPrefix(name, "file:")
	if !ok {
		return name
	}
	rest = strings.TrimPrefix(rest, "//")
	if len(rest) >= 3 && rest[0] == '/' && rest[2] == ':' {
		rest = rest[1:]
	}
	return percentDecode(rest)
}

func percentDecode(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}

var pathSeparator = func() string {
	if runtime.GOOS == "windows" {
		return `\`
	}
	return "/"
}()

// normalizeSeparators applies the Windows convention: backslashes for local
// files, slashes for protocol paths. local forces the local form.
func normalizeSeparators(name string, local bool) string {
	if runtime.GOOS != "windows" {
		return name
	}
	if local || !strings.Contains(name, protocolMarker) {
		return strings.ReplaceAll(name, "/", `\`)
	}
	return strings.ReplaceAll(name, `\`, "/")
}
