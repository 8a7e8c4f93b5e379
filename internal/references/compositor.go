package references

import (
	"errors"

	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// PacketHandler receives every packet pumped from a sequence. Returning false
// stops ParseReferences until it is called again.
type PacketHandler func(seq *Sequence, packet mediainfo.Packet) bool

// Compositor merges the sequences referenced by an analyzed file into one
// report. It is not safe for concurrent use.
type Compositor struct {
	out          Output
	analyzedPath string
	analyzedSize int64
	cfg          Config
	log          *zap.Logger
	newParser    ParserFactory
	fs           FileSystem
	onPacket     PacketHandler
	streamIDs    []mediainfo.SubFileID

	sequences []*Sequence
	sess      session
	initDone  bool

	containerHasNoID  bool
	hasMainFile       bool
	hasMainFileFilled bool
	idMax             uint64
	frameRate         float64
	offsetVideoDTS    int64
	// totalSize is the analyzed file plus every referenced file.
	totalSize int64
	// duration is the composite duration in seconds, filled on demand by
	// percentage seeks.
	duration float64

	problems []error
}

type Option func(*Compositor)

func WithLogger(log *zap.Logger) Option {
	return func(c *Compositor) {
		if log != nil {
			c.log = log
		}
	}
}

func WithParserFactory(factory ParserFactory) Option {
	return func(c *Compositor) {
		if factory != nil {
			c.newParser = factory
		}
	}
}

func WithPacketHandler(handler PacketHandler) Option {
	return func(c *Compositor) {
		c.onPacket = handler
	}
}

func WithFileSystem(fs FileSystem) Option {
	return func(c *Compositor) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithStreamIDs sets the ID chain of the analyzed file. Sequences of a file
// without a main sequence inherit it as their sub-file IDs.
func WithStreamIDs(ids []mediainfo.SubFileID) Option {
	return func(c *Compositor) {
		c.streamIDs = append([]mediainfo.SubFileID(nil), ids...)
	}
}

// New creates a compositor writing into out. analyzedPath and analyzedSize
// describe the file holding the references.
func New(out Output, analyzedPath string, analyzedSize int64, cfg Config, opts ...Option) *Compositor {
	cfg.Normalize()
	c := &Compositor{
		out:          out,
		analyzedPath: analyzedPath,
		analyzedSize: analyzedSize,
		cfg:          cfg,
		log:          zap.NewNop(),
		newParser:    newInstance,
		fs:           osFileSystem{},
		totalSize:    analyzedSize,
		sess:         newSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compositor) AddSequence(seq *Sequence) {
	if seq.Infos == nil {
		seq.Infos = make(map[string]string)
	}
	c.sequences = append(c.sequences, seq)
}

func (c *Compositor) Sequences() []*Sequence {
	return c.sequences
}

// UpdateFileName renames a file in every sequence and resource.
func (c *Compositor) UpdateFileName(oldName, newName string) {
	for _, seq := range c.sequences {
		seq.updateFileName(oldName, newName)
	}
}

// Done reports whether every sequence has been read.
func (c *Compositor) Done() bool {
	return c.initDone && c.sess.current >= len(c.sequences)
}

// Problems lists the sequences that could not contribute, as *SequenceError.
func (c *Compositor) Problems() []error {
	return c.problems
}

// FileSize is the analyzed file size plus the size of every referenced file
// known so far.
func (c *Compositor) FileSize() int64 {
	return c.totalSize
}

// Close releases every parser.
func (c *Compositor) Close() error {
	var errs []error
	for _, seq := range c.sequences {
		if err := seq.release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Compositor) problem(op string, seq *Sequence, err error) {
	source := seq.Source
	if source == "" && len(seq.FileNames) > 0 {
		source = seq.FileNames[0]
	}
	c.problems = append(c.problems, &SequenceError{Op: op, Source: source, Err: err})
	c.log.Warn("sequence skipped",
		zap.String("op", op),
		zap.String("source", source),
		zap.Uint64("stream_id", seq.StreamID),
		zap.Error(err),
	)
}

// prepare reserves an output slot and shifts the positions held by other
// sequences.
func (c *Compositor) prepare(kind mediainfo.StreamKind, pos int) int {
	at := c.out.Prepare(kind, pos)
	for _, seq := range c.sequences {
		if seq.StreamKind == kind && seq.StreamPos != -1 && seq.StreamPos >= at {
			seq.StreamPos++
		}
		if kind == mediainfo.StreamMenu && seq.MenuPos != -1 && seq.MenuPos >= at {
			seq.MenuPos++
		}
	}
	return at
}

func (c *Compositor) erase(kind mediainfo.StreamKind, pos int) {
	c.out.Erase(kind, pos)
	for _, seq := range c.sequences {
		if seq.StreamKind == kind && seq.StreamPos != -1 && seq.StreamPos > pos {
			seq.StreamPos--
		}
		if kind == mediainfo.StreamMenu && seq.MenuPos != -1 && seq.MenuPos > pos {
			seq.MenuPos--
		}
	}
}
