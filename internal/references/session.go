package references

const noDTS = -1

// session is the driver state carried between ParseReferences calls.
type session struct {
	// current indexes the sequence being read.
	current int
	// dtsMinimal is the smallest next timestamp over unfinished sequences,
	// noDTS when unknown.
	dtsMinimal int64
	// interval bounds how far a sequence may run ahead of dtsMinimal, noDTS
	// when sequences are not interleaved.
	interval   int64
	interleave bool
	// pending counts the sequences left to read in packet mode.
	pending int
	// readSizePending counts the sequences whose size is still unknown
	// before read buffers are distributed.
	readSizePending int
	eventSent       bool

	previousID  uint64
	hasPrevious bool
}

func newSession() session {
	return session{dtsMinimal: noDTS, interval: noDTS}
}
