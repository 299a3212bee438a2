package minim

import "fmt"

// ErrorKind classifies a LexError the way spec section 7 does: a small
// closed set of failure categories, not an open string taxonomy. This is
// a distinct type from Kind (a Token's lexical category) even though
// both are surfaced to callers as "Kind" fields -- a LexError's Kind and
// a Token's Kind classify different things and are never compared
// against each other.
type ErrorKind int

const (
	// KindStructural marks input that can never be valid markup at the
	// point the scanner is at (for example, an attribute name with no
	// whitespace before it, or an attribute value that isn't quoted). It
	// is fatal; input the grammar recovers from locally (a bare '&' or
	// '<' in content) is reported with a BadlyFormed* token instead.
	KindStructural ErrorKind = iota
	// KindTruncation classifies a chunk source that ended mid-construct.
	// The scanner reports most truncations with a BadlyFormedEndOfStream
	// token; end of stream directly after "</", "<?" or an attribute name
	// raises a KindStructural error. Nothing in this package raises an
	// error of this kind.
	KindTruncation
	// KindNotImplemented marks constructs explicitly out of scope: DTD
	// declarations and their subset.
	KindNotImplemented
	// KindLimit marks an xmlns name or URI exceeding the configured
	// length limit.
	KindLimit
	// KindUpstream wraps an error surfaced from a ChunkSource. Upstream
	// errors are never wrapped in practice -- see LexError doc -- this
	// constant exists so callers can still discriminate by Kind if a
	// wrapped error somehow reaches them.
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindTruncation:
		return "truncation"
	case KindNotImplemented:
		return "not implemented"
	case KindLimit:
		return "limit exceeded"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// LexError is a fatal scanning error: malformed markup the grammar has no
// recovery token for, an unimplemented construct, or a limit exceeded.
// A LexError is always constructed with a line, mirroring the teacher's
// item.line convention, so callers can report where scanning gave up.
//
// Errors surfaced directly from a ChunkSource are never wrapped in a
// LexError; they propagate unchanged, per section 7.1.
type LexError struct {
	Kind ErrorKind
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("minim: line %d: %s: %s", e.Line, e.Kind, e.Msg)
}

// newLexError builds a LexError for panic/recover use inside the
// state machine, the same shape as the teacher's lexer.errf.
func newLexError(kind ErrorKind, line int, format string, v ...interface{}) *LexError {
	return &LexError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, v...)}
}

// errf panics with a *LexError built from the scanner's current line.
// Every state function that hits unrecoverable input calls this instead
// of returning an error directly; Scanner.Next recovers it once per call.
func (s *Scanner) errf(kind ErrorKind, format string, v ...interface{}) {
	panic(newLexError(kind, s.buf.line, format, v...))
}
