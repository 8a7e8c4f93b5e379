package references

import (
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// listCompute publishes the file list and checksums of seq. With a single
// sequence they describe the whole file and go to the general slot.
func (c *Compositor) listCompute(seq *Sequence, kind mediainfo.StreamKind, pos int) {
	if c.hasMainFile || (!c.cfg.MD5 && !c.cfg.SourceList) {
		return
	}
	if len(c.sequences) <= 1 {
		kind, pos = mediainfo.StreamGeneral, 0
	}
	if seq.MenuPos != -1 {
		kind, pos = mediainfo.StreamMenu, seq.MenuPos
	}
	out, p := c.out, seq.parser

	if c.cfg.MD5 {
		if sum := p.Get(mediainfo.StreamGeneral, 0, "MD5_Generated"); sum != "" {
			if len(seq.FileNames) == 1 {
				if out.Retrieve(kind, pos, "Source") == "" {
					out.Fill(kind, pos, "Source", c.relativeSource(seq.FileNames[0]), false)
				}
				out.Fill(kind, pos, "Source_MD5_Generated", sum, false)
			}
			out.Fill(kind, pos, "Source_List_MD5_Generated", sum, false)
		}
		if sums := p.Get(mediainfo.StreamGeneral, 0, "Source_List_MD5_Generated"); sums != "" {
			out.Fill(kind, pos, "Source_List_MD5_Generated", sums, false)
		}
	}

	if c.cfg.SourceList {
		for _, name := range seq.FileNames {
			out.Fill(kind, pos, "Source_List", c.relativeSource(name), false)
		}
		for _, name := range splitList(p.Get(mediainfo.StreamGeneral, 0, "Source_List")) {
			out.Fill(kind, pos, "Source_List", c.relativeSource(name), false)
		}
	}
}

// relativeSource strips the directory of the analyzed file from name unless
// the analyzed file is itself referenced by another one.
func (c *Compositor) relativeSource(name string) string {
	if c.cfg.IsReferenced {
		return name
	}
	base := baseDir(c.analyzedPath)
	if base == "" {
		return name
	}
	if rest, ok := strings.CutPrefix(name, base); ok && rest != "" && strings.ContainsRune(`\/`, rune(rest[0])) {
		return rest[1:]
	}
	return name
}
