package references

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// sideCarParser tags sub-file IDs of files attached next to a main file.
const sideCarParser = 0x20

var encryptionFields = []string{"Format", "Method", "Mode", "Padding", "InitializationVector"}

// openSequence creates the parsers of seq and opens them. It reports whether
// the sequence can be read further in the same call; in packet mode opening
// is a step of its own.
func (c *Compositor) openSequence(seq *Sequence) bool {
	seq.parser = c.createParser(seq)
	c.computeOffsets(seq)
	for i, res := range seq.Resources {
		if i == 0 {
			c.configureResource(seq.parser, res)
			continue
		}
		res.parser = c.createParser(seq)
		c.configureResource(res.parser, res)
	}

	c.subFileStart(seq)
	if !seq.parser.Open(seq.FileNames) {
		c.markMissing(seq)
		c.problem("open", seq, ErrOpen)
		if !c.cfg.KeepInfo {
			if c.sess.pending > 0 {
				c.sess.pending--
			}
			seq.StreamKind = mediainfo.StreamNone
			seq.StreamPos = -1
			seq.FileSize = seq.parser.FileSize()
			seq.release()
		}
		seq.Finished = true
	} else {
		for _, res := range seq.Resources[min(1, len(seq.Resources)):] {
			if !res.parser.Open(res.FileNames) {
				c.log.Warn("resource could not be opened", zap.Strings("files", res.FileNames))
			}
		}
	}

	return !c.cfg.NextPacket
}

// createParser configures a parser for one file of seq.
func (c *Compositor) createParser(seq *Sequence) Parser {
	p := c.newParser()
	set := func(name, value string) {
		if msg := p.Option(name, value); msg != "" {
			c.log.Debug("parser option rejected", zap.String("option", name), zap.String("reason", msg))
		}
	}

	set("File_IsReferenced", "1")
	set("File_KeepInfo", "1")
	set("ParseSpeed", strconv.FormatFloat(c.cfg.ParseSpeed, 'f', -1, 64))
	set("File_ID_OnlyRoot", boolOption(c.cfg.IDOnlyRoot))
	if (len(c.sequences) > 1 || c.cfg.MpegTsForceMenu) && !seq.IsMain && !c.hasMainFile {
		set("File_MpegTs_ForceMenu", "1")
	}
	for _, field := range encryptionFields {
		if value := c.out.Retrieve(mediainfo.StreamGeneral, 0, "Encryption_"+field); value != "" {
			set("File_Encryption_"+field, value)
		}
	}
	if c.cfg.EncryptionKey != "" {
		set("File_Encryption_Key", base64.StdEncoding.EncodeToString([]byte(c.cfg.EncryptionKey)))
	}
	if c.cfg.NextPacket {
		set("File_NextPacket", "1")
	}
	if c.cfg.IgnoreSequenceFileSize {
		set("File_IgnoreSequenceFileSize", "1")
	}
	if c.cfg.IgnoreSequenceFilesCount {
		set("File_IgnoreSequenceFilesCount", "1")
	}
	if c.cfg.SourceList {
		set("File_Source_List", "1")
	}
	if c.cfg.MD5 {
		set("File_MD5", "1")
	}
	if len(seq.FileNames) > 1 || !c.cfg.TestContinuousFileNames {
		set("File_TestContinuousFileNames", "0")
	}

	if seq.IsMain {
		c.hasMainFile = true
	}
	if ids := c.subFileIDs(seq); ids != "" {
		set("File_SubFile_IDs_Set", ids)
	}

	if c.cfg.DemuxUnpacketize {
		set("File_Demux_Unpacketize", "1")
	}
	switch {
	case c.frameRate > 0:
		set("File_Demux_Rate", strconv.FormatFloat(c.frameRate, 'f', -1, 64))
	case len(seq.Resources) > 0 && seq.Resources[0].EditRate > 0:
		set("File_Demux_Rate", strconv.FormatFloat(seq.Resources[0].EditRate, 'f', -1, 64))
	}
	if c.cfg.DemuxInitData != "" {
		set("File_Demux_InitData", c.cfg.DemuxInitData)
	}
	return p
}

// subFileIDs builds the "id,width,parser" lines placing the streams of seq in
// the ID space of the analyzed file.
func (c *Compositor) subFileIDs(seq *Sequence) string {
	if seq.IsMain {
		return ""
	}
	if c.hasMainFile {
		id := uint64(sideCarParser)<<56 | (seq.StreamID - 1)
		return fmt.Sprintf("%d,%d,%d", id, 16, sideCarParser)
	}
	lines := make([]string, 0, len(c.streamIDs))
	for i, parent := range c.streamIDs {
		id := parent.ID
		switch {
		case parent.Width == 0:
			id = NoID
		case i+1 == len(c.streamIDs):
			id = seq.StreamID
		}
		lines = append(lines, fmt.Sprintf("%d,%d,%d", id, parent.Width, parent.Parser))
	}
	return strings.Join(lines, "\n")
}

func (c *Compositor) configureResource(p Parser, res *Resource) {
	applyEdits(p, res)
	p.Option("File_Demux_Offset_DTS", intString(res.DemuxOffsetDTS))
	p.Option("File_Demux_Offset_Frame", intString(res.DemuxOffsetFrame))
}

// subFileStart logs the start of a new sub-file once per stream.
func (c *Compositor) subFileStart(seq *Sequence) {
	if c.sess.previousID == seq.StreamID && c.sess.hasPrevious {
		return
	}
	name := seq.Source
	if len(seq.FileNames) > 0 {
		name = seq.FileNames[0]
	}
	c.log.Debug("sub-file start", zap.String("file", name), zap.Uint64("stream_id", seq.StreamID))
	c.sess.previousID = seq.StreamID
	c.sess.hasPrevious = true
}

func boolOption(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
