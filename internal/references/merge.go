package references

import (
	"strconv"
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// bitRateTolerance keeps the bit rate reported by the source when the
// recomputed one differs by rounding only.
const bitRateTolerance = 0.001

// finalize merges the report of seq into the output. It runs once per
// sequence; later reads after a seek do not add slots again.
func (c *Compositor) finalize(seq *Sequence) {
	p := seq.parser
	if seq.merged || p == nil {
		return
	}
	seq.merged = true

	if seq.StreamKind != mediainfo.StreamNone && seq.StreamPos != -1 &&
		p.Count(seq.StreamKind) == 0 && streamCount(p) > 0 {
		c.erase(seq.StreamKind, seq.StreamPos)
		seq.StreamPos = -1
	}

	found := false
	for _, kind := range mediainfo.StreamKinds {
		for from := 0; from < p.Count(kind); from++ {
			var to int
			if seq.StreamPos != -1 && kind == seq.StreamKind && from == 0 {
				to = seq.StreamPos
				found = true
			} else {
				to = c.prepare(kind, c.insertAt(seq, kind))
			}
			c.mergeStream(seq, kind, from, to)
		}
	}

	if !found && seq.StreamKind != mediainfo.StreamNone && seq.StreamPos != -1 {
		c.appendMuxingMode(seq.StreamKind, seq.StreamPos, p.Get(mediainfo.StreamGeneral, 0, "Format"))
	}
}

func streamCount(p Parser) int {
	n := 0
	for _, kind := range mediainfo.StreamKinds {
		if kind != mediainfo.StreamMenu {
			n += p.Count(kind)
		}
	}
	return n
}

// insertAt is the slot of the first sequence of kind with a larger ID, -1 to
// append.
func (c *Compositor) insertAt(seq *Sequence, kind mediainfo.StreamKind) int {
	for _, other := range c.sequences {
		if other.StreamKind == kind && seq.StreamID < other.StreamID {
			return other.StreamPos
		}
	}
	return -1
}

func (c *Compositor) appendMuxingMode(kind mediainfo.StreamKind, pos int, format string) {
	mode := c.out.Retrieve(kind, pos, "MuxingMode")
	if mode != "" {
		mode = " / " + mode
	}
	c.out.Fill(kind, pos, "MuxingMode", format+mode, true)
}

// mergeStream copies stream from of the sequence report into output slot to
// and derives the composite fields.
func (c *Compositor) mergeStream(seq *Sequence, kind mediainfo.StreamKind, from, to int) {
	out, p := c.out, seq.parser

	codecID := out.Retrieve(kind, to, "CodecID")
	idBase := c.baseID(seq)
	if c.hasMainFileFilled && !seq.IsMain {
		out.Fill(kind, to, "SideCar_FilePos", uintString(seq.StreamID-1), true)
	}

	if !c.hasMainFileFilled && seq.IsMain {
		for _, name := range []string{"Format", "CompleteName", "FileExtension"} {
			out.Fill(mediainfo.StreamGeneral, 0, name, p.Get(mediainfo.StreamGeneral, 0, name), true)
		}
		c.hasMainFile = true
		c.hasMainFileFilled = true
	}
	if seq.IsMain {
		if id, err := strconv.ParseUint(p.Get(kind, from, "ID"), 10, 64); err == nil && id > c.idMax {
			c.idMax = id
		}
	}

	out.Clear(kind, to, "ID")
	for _, field := range p.Fields(kind, from) {
		if field.Value != "" {
			out.Fill(kind, to, field.Name, field.Value, true)
		}
	}

	if len(seq.Resources) > 0 {
		c.aggregateResources(seq, kind, from, to)
	}
	if kind == mediainfo.StreamVideo && seq.FrameRate > 0 {
		out.Fill(kind, to, "FrameRate", strconv.FormatFloat(seq.FrameRate, 'f', 3, 64), true)
	}

	if current := out.Retrieve(kind, to, "CodecID"); !seq.IsMain && codecID != current {
		if codecID != "" {
			codecID += " / "
		}
		out.Fill(kind, to, "CodecID", codecID+current, true)
	}

	multi := p.Count(mediainfo.StreamVideo)+p.Count(mediainfo.StreamAudio) > 1
	if !seq.IsMain && multi && p.Get(mediainfo.StreamVideo, 0, "Format") != "DV" {
		c.groupInMenu(seq, kind, from, to, idBase)
	}

	id, idString := idBase, idBase
	var menuID, menuIDString string
	if !seq.IsMain && out.Retrieve(kind, to, "ID") != "" &&
		(c.containerHasNoID || !c.cfg.IDOnlyRoot || p.Get(mediainfo.StreamGeneral, 0, "Format") == "SCC" || multi) {
		id = joinID(id, out.Retrieve(kind, to, "ID"))
		idString = joinID(idString, out.Retrieve(kind, to, "ID/String"))
		if sub := out.Retrieve(kind, to, "MenuID"); sub != "" {
			menuID = joinID(idBase, sub)
			menuIDString = joinID(idBase, out.Retrieve(kind, to, "MenuID/String"))
		} else if seq.MenuPos != -1 {
			menuID, menuIDString = idBase, idBase
		}
	}
	if !seq.IsMain {
		out.Fill(kind, to, "ID", id, true)
		out.Fill(kind, to, "ID/String", idString, true)
		out.Fill(kind, to, "MenuID", menuID, true)
		out.Fill(kind, to, "MenuID/String", menuIDString, true)
		c.replaceSource(seq, kind, to)
	}

	for _, name := range seq.infoNames() {
		if out.Retrieve(kind, to, name) == "" {
			out.Fill(kind, to, name, seq.Infos[name], false)
		}
	}

	if format := p.Get(mediainfo.StreamGeneral, 0, "Format"); !seq.IsMain && out.Retrieve(kind, to, "Format") != format {
		c.appendMuxingMode(kind, to, format)
	}

	if !seq.listComputed && (p.Count(mediainfo.StreamMenu) == 0 || kind == mediainfo.StreamMenu) {
		c.listCompute(seq, kind, to)
		seq.listComputed = true
	}
}

// groupInMenu lists the streams of a multi-stream sequence in a menu slot.
func (c *Compositor) groupInMenu(seq *Sequence, kind mediainfo.StreamKind, from, to int, idBase string) {
	out, p := c.out, seq.parser
	if kind == mediainfo.StreamMenu {
		for _, name := range []string{"List", "List/String"} {
			items := splitList(out.Retrieve(kind, to, name))
			for i := range items {
				items[i] = joinID(idBase, items[i])
			}
			out.Fill(kind, to, name, strings.Join(items, " / "), true)
		}
		return
	}
	if len(c.sequences) <= 1 || p.Count(mediainfo.StreamMenu) != 0 {
		return
	}
	if seq.MenuPos == -1 {
		seq.MenuPos = c.prepare(mediainfo.StreamMenu, -1)
		out.Fill(mediainfo.StreamMenu, seq.MenuPos, "ID", idBase, false)
		out.Fill(mediainfo.StreamMenu, seq.MenuPos, "Source", seq.Source, false)
	}
	out.Fill(mediainfo.StreamMenu, seq.MenuPos, "List", joinID(idBase, p.Get(kind, from, "ID")), false)
	out.Fill(mediainfo.StreamMenu, seq.MenuPos, "List/String", joinID(idBase, p.Get(kind, from, "ID/String")), false)
}

// replaceSource points Source at the reference, keeping the source the
// sequence report named as Source_Original.
func (c *Compositor) replaceSource(seq *Sequence, kind mediainfo.StreamKind, to int) {
	out := c.out
	if source := out.Retrieve(kind, to, "Source"); source != "" {
		if out.Retrieve(kind, to, "Source_Original") == "" && source != seq.Source {
			out.Fill(kind, to, "Source_Original", source, false)
			out.Fill(kind, to, "Source_Original_Kind", out.Retrieve(kind, to, "Source_Kind"), false)
			out.Fill(kind, to, "Source_Original_Info", out.Retrieve(kind, to, "Source_Info"), false)
		}
		for _, name := range []string{"Source", "Source_Kind", "Source_Info"} {
			out.Clear(kind, to, name)
		}
	}
	out.Fill(kind, to, "Source", seq.Source, false)
}

// aggregateResources replaces the per-file totals with the sums over every
// resource. A resource without a value makes the total unknown.
func (c *Compositor) aggregateResources(seq *Sequence, kind mediainfo.StreamKind, from, to int) {
	out := c.out
	for _, name := range []string{"BitRate", "Duration", "FrameCount", "StreamSize"} {
		out.Clear(kind, to, name)
	}

	var bitRateBefore float64
	var duration, frames, streamSize, fileSize int64
	for _, res := range seq.Resources {
		p, ok := c.fastParse(res)
		if !ok {
			duration, frames, streamSize, fileSize = -1, -1, -1, -1
			break
		}
		bitRateBefore, _ = strconv.ParseFloat(p.Get(kind, from, "BitRate"), 64)
		duration = addKnown(duration, p.Get(kind, from, "Duration"))
		frames = addKnown(frames, p.Get(kind, from, "FrameCount"))
		streamSize = addKnown(streamSize, p.Get(kind, from, "StreamSize"))
		fileSize = addKnown(fileSize, p.Get(mediainfo.StreamGeneral, 0, "FileSize"))
		p.Close()
	}

	if duration != -1 {
		out.Fill(kind, to, "Duration", intString(duration), true)
	}
	if frames != -1 {
		out.Fill(kind, to, "FrameCount", intString(frames), true)
	}
	if streamSize != -1 {
		out.Fill(kind, to, "StreamSize", intString(streamSize), true)
	}
	if fileSize != -1 {
		seq.FileSize = fileSize
	}
	if bitRateBefore > 0 && duration > 0 && streamSize >= 0 {
		after := float64(streamSize) * 8000 / float64(duration)
		// A distant per-file rate describes only the last resource, so the
		// aggregate rate replaces it instead of leaving the field empty.
		rate := after
		if bitRateBefore > after*(1-bitRateTolerance) && bitRateBefore < after*(1+bitRateTolerance) {
			rate = bitRateBefore
		}
		out.Fill(kind, to, "BitRate", strconv.FormatFloat(rate, 'f', 0, 64), true)
	}
}

func addKnown(total int64, value string) int64 {
	if total == -1 || value == "" {
		return -1
	}
	return total + parseInt(value)
}

func joinID(base, id string) string {
	switch {
	case base == "":
		return id
	case id == "":
		return base
	}
	return base + "-" + id
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, " / ")
}
