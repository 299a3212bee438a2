package minim

import (
	"bytes"
	"io"
	"unicode/utf8"
)

const runeError = utf8.RuneError

func decodeRune(p []byte) (rune, int) { return utf8.DecodeRune(p) }

// ChunkSource supplies the lazy sequence of byte chunks a ChunkBuffer
// turns into one addressable window. NextChunk returns io.EOF, with a
// nil chunk, exactly once, when no further chunk exists; any other
// non-nil error is treated as unrecoverable and propagated unchanged by
// every ChunkBuffer method that encounters it, per section 7.1.
type ChunkSource interface {
	NextChunk() ([]byte, error)
}

// ChunkSourceFunc adapts a function to a ChunkSource.
type ChunkSourceFunc func() ([]byte, error)

// NextChunk implements ChunkSource.
func (f ChunkSourceFunc) NextChunk() ([]byte, error) { return f() }

// readerChunkSource adapts an io.Reader into a ChunkSource by reading
// fixed-size chunks, the concrete collaborator the teacher's ReadCIF
// plays against an io.Reader, generalized to lazy chunk delivery.
type readerChunkSource struct {
	r    io.Reader
	size int
}

// NewReaderChunkSource returns a ChunkSource that pulls size-byte chunks
// from r. This is the adapter cmd/minimcount uses to drive a Scanner from
// an os.File (optionally wrapped in a gzip.Reader).
func NewReaderChunkSource(r io.Reader, size int) ChunkSource {
	if size <= 0 {
		size = 4096
	}
	return &readerChunkSource{r: r, size: size}
}

func (s *readerChunkSource) NextChunk() ([]byte, error) {
	buf := make([]byte, s.size)
	n, err := s.r.Read(buf)
	if n > 0 {
		if err == io.EOF {
			// The underlying Reader is allowed to return data and EOF
			// together; ChunkSource is not, so split it: hand back this
			// chunk now and surface EOF on the next call.
			return buf[:n], nil
		}
		return buf[:n], err
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// ChunkBuffer presents a lazy sequence of byte chunks as one addressable
// window with a cursor, the way the teacher's lexer presents its whole
// input string through pos/start/width, except the window here grows
// lazily and compacts as it is consumed.
//
// start marks the beginning of the most recent extract region; cursor is
// the position the next read operates from. Both are offsets into
// window, which holds only the bytes between the oldest unconsumed
// start and the chunks read so far.
type ChunkBuffer struct {
	source ChunkSource
	window []byte
	start  int
	cursor int
	eof    bool

	line int
	col  int
}

// NewChunkBuffer returns a ChunkBuffer reading chunks from source.
func NewChunkBuffer(source ChunkSource) *ChunkBuffer {
	return &ChunkBuffer{source: source, line: 1}
}

// Line returns the 1-based line of the cursor, for error reporting.
func (b *ChunkBuffer) Line() int { return b.line }

// compact drops bytes before start, the moral equivalent of the
// teacher's lexer discarding consumed input -- except here we must keep
// from start, not from cursor, because Extract can still be called for
// the current run after further Ensure calls have grown the window.
func (b *ChunkBuffer) compact() {
	if b.start == 0 {
		return
	}
	fresh := make([]byte, len(b.window)-b.start)
	copy(fresh, b.window[b.start:])
	b.window = fresh
	b.cursor -= b.start
	b.start = 0
}

// Ensure makes sure at least n bytes are available at or after cursor,
// pulling chunks from source as needed. ok is false if the source was
// exhausted before n bytes became available; err is non-nil only for an
// unrecoverable upstream error, propagated unchanged.
func (b *ChunkBuffer) Ensure(n int) (ok bool, err error) {
	if len(b.window)-b.cursor >= n {
		return true, nil
	}
	b.compact()
	for len(b.window)-b.cursor < n {
		if b.eof {
			return false, nil
		}
		chunk, err := b.source.NextChunk()
		if err != nil {
			if err == io.EOF {
				b.eof = true
				break
			}
			return false, err
		}
		b.window = append(b.window, chunk...)
	}
	return len(b.window)-b.cursor >= n, nil
}

// Get returns the byte at cursor without consuming it. err is io.EOF at
// true end of stream, or an unrecoverable upstream error.
func (b *ChunkBuffer) Get() (byte, error) {
	ok, err := b.Ensure(1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}
	return b.window[b.cursor], nil
}

// peek returns the n bytes at cursor without consuming them. The caller
// must have already confirmed n bytes are available via Ensure.
func (b *ChunkBuffer) peek(n int) []byte {
	return b.window[b.cursor : b.cursor+n]
}

// Advance moves cursor forward by n bytes and sets start to the old
// cursor, updating line/col bookkeeping. The caller guarantees a prior
// Ensure(n) succeeded; Advance does not itself ensure availability.
func (b *ChunkBuffer) Advance(n int) {
	end := b.cursor + n
	if end > len(b.window) {
		end = len(b.window)
	}
	for _, ch := range b.window[b.cursor:end] {
		if ch == '\n' {
			b.line++
			b.col = 0
		} else {
			b.col++
		}
	}
	b.start = b.cursor
	b.cursor += n
}

// Next advances by one byte and returns Get: the byte that is now
// current, i.e. the byte following the one just consumed.
func (b *ChunkBuffer) Next() (byte, error) {
	b.Advance(1)
	return b.Get()
}

// Extract returns the bytes from start to cursor: the region most
// recently consumed by Advance, Next, Matching, MatchToSentinel or
// StartsWith. The returned slice aliases the window and is only valid
// until the next ChunkBuffer call that may compact or regrow the
// window; callers that need to retain it must copy.
func (b *ChunkBuffer) Extract() []byte {
	return b.window[b.start:b.cursor]
}

// RunePredicate classifies a decoded rune, used by Matching to test the
// first code point of a run separately from the rest, since XML name
// syntax distinguishes name-start characters from name characters.
type RunePredicate func(r rune) bool

// decodeStatus is the outcome of decodeBuffered: a rune decoded purely
// from bytes already in the window, without pulling a new chunk.
type decodeStatus int

const (
	decodeOK decodeStatus = iota
	// decodeNeedMore means the window ran out, or ended in a UTF-8
	// sequence that isn't complete yet, and the source has not reached
	// true end of stream: a new chunk might change the answer.
	decodeNeedMore
	// decodeEOF means true end of stream, with nothing more a new
	// chunk could supply: either the window is fully exhausted, or its
	// trailing bytes are an incomplete/invalid sequence that the
	// exhausted source can never complete.
	decodeEOF
)

// decodeBuffered decodes the rune at cursor using only bytes already
// buffered, never pulling a new chunk. This is what lets Matching and
// MatchToSentinel stop exactly at a chunk boundary instead of reading
// arbitrarily far ahead.
func (b *ChunkBuffer) decodeBuffered() (r rune, size int, status decodeStatus) {
	avail := len(b.window) - b.cursor
	if avail == 0 {
		if b.eof {
			return 0, 0, decodeEOF
		}
		return 0, 0, decodeNeedMore
	}
	r, size = decodeRune(b.window[b.cursor:])
	if r == runeError && size <= 1 {
		if avail < utf8.UTFMax && !b.eof {
			return 0, 0, decodeNeedMore
		}
		return 0, 0, decodeEOF
	}
	return r, size, decodeOK
}

// fillOnce pulls exactly one more chunk from source, so that a single
// piece of a multi-piece run corresponds to a single chunk delivered by
// the source. ok is false once source is exhausted (b.eof becomes
// true); err is an unrecoverable upstream error, propagated unchanged.
func (b *ChunkBuffer) fillOnce() (ok bool, err error) {
	if b.eof {
		return false, nil
	}
	b.compact()
	chunk, err := b.source.NextChunk()
	if err != nil {
		if err == io.EOF {
			b.eof = true
			return false, nil
		}
		return false, err
	}
	b.window = append(b.window, chunk...)
	return true, nil
}

// Matching attempts to match first once, then rest zero or more times,
// anchored at cursor. It returns a signed length: the magnitude is the
// number of bytes matched, and the sign tells the caller whether the
// match might extend given more input (positive: the currently
// buffered window ran out before a disqualifying rune was found) or is
// definitely complete (negative: it stopped at a rune that failed
// rest, or at true end of stream). Zero means first failed immediately;
// no bytes are consumed and start is set to cursor.
//
// Matching pulls new chunks from source only to test first, while no
// complete rune is buffered at cursor (so empty chunks are skipped);
// once under way it never reads past the currently buffered window, so
// a run spanning N chunks is reported as N separate pieces, one
// Matching call per chunk.
//
// Matching tracks its anchor through b.start rather than a cached local
// offset, because fillOnce can compact the window (re-slicing it and
// shifting cursor and start together) partway through a call; start
// and cursor move in lockstep under compact, so b.cursor-b.start stays
// correct across it while a snapshot taken before the compaction would
// not.
func (b *ChunkBuffer) Matching(first, rest RunePredicate) (int, error) {
	b.start = b.cursor

	r, size, status := b.decodeBuffered()
	for status == decodeNeedMore {
		if _, err := b.fillOnce(); err != nil {
			return 0, err
		}
		r, size, status = b.decodeBuffered()
	}
	if status != decodeOK || !first(r) {
		b.cursor = b.start
		return 0, nil
	}
	b.cursor += size

	for {
		r, size, status := b.decodeBuffered()
		switch status {
		case decodeNeedMore:
			return b.cursor - b.start, nil
		case decodeEOF:
			return -(b.cursor - b.start), nil
		}
		if !rest(r) {
			return -(b.cursor - b.start), nil
		}
		b.cursor += size
	}
}

// decodeAtCursor decodes the rune at cursor, pulling as many chunks as
// needed to do so. Unlike Matching, this is a single non-consuming
// lookahead test (used by lexMarkupStart to classify what follows a
// bare '<'), not a multi-rune run, so there is no piece boundary to
// respect here.
func (b *ChunkBuffer) decodeAtCursor() (r rune, size int, ok bool, err error) {
	if _, err := b.Ensure(utf8.UTFMax); err != nil {
		return 0, 0, false, err
	}
	if b.cursor >= len(b.window) {
		return 0, 0, false, nil
	}
	r, size = decodeRune(b.window[b.cursor:])
	if r == runeError && size <= 1 {
		return 0, 0, false, nil
	}
	return r, size, true, nil
}

// MatchToSentinel scans forward from cursor looking for sentinel within
// the currently buffered window, pulling at most one new chunk if
// nothing found yet. It returns a signed length with the same
// convention as Matching: positive means the buffered window ran out
// without finding sentinel (it may appear once more input arrives);
// negative means sentinel (or true end of stream) was located at a
// definite offset; zero means sentinel (or end of stream) is
// immediately at cursor. Zero is also returned, with nothing consumed,
// when after its one chunk pull everything buffered from cursor is
// still only a partial prefix of sentinel; a zero result therefore does
// not by itself tell these cases apart. Either way sentinel itself is
// never consumed: Extract covers only the content before it.
//
// When sentinel is not found within the window, any trailing suffix of
// the window that is itself a prefix of sentinel is excluded from the
// match, so a sentinel split across chunk boundaries is never missed.
func (b *ChunkBuffer) MatchToSentinel(sentinel []byte) (int, error) {
	b.start = b.cursor

	if n, done := b.scanToSentinel(sentinel); done {
		return n, nil
	}
	if _, err := b.fillOnce(); err != nil {
		return 0, err
	}
	if n, done := b.scanToSentinel(sentinel); done {
		return n, nil
	}
	// Still ambiguous after pulling one chunk (the whole buffered tail
	// remains a candidate prefix of sentinel): report no progress yet
	// without pulling further, so a piece never spans more than one
	// chunk's worth of work.
	return 0, nil
}

// scanToSentinel looks for sentinel in the window from b.start onward
// using only already-buffered bytes. done is false when the answer is
// still ambiguous (the buffered tail could be an incomplete sentinel
// prefix) and the source has not reached true end of stream.
//
// Like Matching, this reads its anchor from b.start rather than a
// parameter, since fillOnce may have compacted (and reindexed) the
// window between the two calls MatchToSentinel makes.
func (b *ChunkBuffer) scanToSentinel(sentinel []byte) (n int, done bool) {
	region := b.window[b.start:]
	if loc := bytes.Index(region, sentinel); loc >= 0 {
		b.cursor = b.start + loc
		n = b.cursor - b.start
		if n == 0 {
			return 0, true
		}
		return -n, true
	}
	if b.eof {
		b.cursor = len(b.window)
		n = b.cursor - b.start
		if n == 0 {
			return 0, true
		}
		return -n, true
	}
	trim := trailingPrefixOverlap(region, sentinel)
	safe := len(region) - trim
	if safe <= 0 {
		return 0, false
	}
	b.cursor = b.start + safe
	n = b.cursor - b.start
	if n == 0 {
		return 0, true
	}
	return n, true
}

// trailingPrefixOverlap returns the length of the longest suffix of
// region that is also a prefix of sentinel (and shorter than sentinel
// itself, since a full match would already have been found by
// bytes.Index).
func trailingPrefixOverlap(region, sentinel []byte) int {
	max := len(sentinel) - 1
	if max > len(region) {
		max = len(region)
	}
	for k := max; k > 0; k-- {
		if bytes.Equal(region[len(region)-k:], sentinel[:k]) {
			return k
		}
	}
	return 0
}

// StartsWith reports whether the next len(s) bytes at cursor equal s.
// On a match it consumes them (Extract returns s); on a mismatch,
// cursor and start are left untouched.
func (b *ChunkBuffer) StartsWith(s []byte) (bool, error) {
	ok, err := b.Ensure(len(s))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if !bytes.Equal(b.peek(len(s)), s) {
		return false, nil
	}
	b.start = b.cursor
	b.cursor += len(s)
	return true, nil
}
