package references

import (
	"math"

	"go.uber.org/zap"
)

// computeFileSize sums the analyzed file and every referenced file.
func (c *Compositor) computeFileSize() {
	total := c.analyzedSize
	for _, seq := range c.sequences {
		switch {
		case seq.FileSize != -1:
			total += seq.FileSize
		case seq.parser != nil && seq.parser.FileSize() != -1:
			total += seq.parser.FileSize()
			if !c.cfg.IgnoreSequenceFileSize {
				for _, res := range seq.Resources[min(1, len(seq.Resources)):] {
					total += c.sizeOf(res.FileNames)
				}
			}
		case !c.cfg.IgnoreSequenceFileSize:
			if len(seq.Resources) == 0 {
				total += c.sizeOf(seq.FileNames)
			}
			for _, res := range seq.Resources {
				total += c.sizeOf(res.FileNames)
			}
		}
	}
	c.totalSize = total
}

func (c *Compositor) sizeOf(names []string) int64 {
	var total int64
	for _, name := range names {
		if size := c.fs.Size(name); size > 0 {
			total += size
		}
	}
	return total
}

// markFileSizePresent counts the sequences with a known size. Once all are
// known the read buffer is shared out.
func (c *Compositor) markFileSizePresent(seq *Sequence) {
	if seq.fileSizePresent || c.sess.readSizePending == 0 {
		return
	}
	seq.fileSizePresent = true
	c.sess.readSizePending--
	if c.sess.readSizePending == 0 {
		c.distributeReadSize()
	}
}

// distributeReadSize gives each parser a share of the read buffer
// proportional to its file size, rounded up to a power of two.
func (c *Compositor) distributeReadSize() {
	var total int64
	for _, seq := range c.sequences {
		if seq.parser != nil && seq.parser.FileSize() > 0 {
			total += seq.parser.FileSize()
		}
	}
	if total == 0 {
		return
	}
	for _, seq := range c.sequences {
		if seq.parser == nil {
			continue
		}
		share := int64(math.Round(float64(max(seq.parser.FileSize(), 0)) / float64(total) * float64(c.cfg.BufferReadSize)))
		size := int64(1)
		for size < share {
			size <<= 1
		}
		seq.parser.Option("File_Buffer_Read_Size", intString(size))
		c.log.Debug("read buffer assigned", zap.String("source", seq.Source), zap.Int64("bytes", size))
	}
}
