package minim

import "github.com/smasher164/xid"

// materializer is implemented by every sub-parser: it can turn the most
// recently advertised piece into a Text, the Phase B half of the
// two-phase pull protocol (section 4.2).
type materializer interface {
	Materialize(holder *Text) *Text
}

// stringMaterializer materializes a fixed string as a Text. It exists
// for the one case where BadlyFormedEndOfStream carries a non-empty
// partial literal (a lone '/' consumed just before end of stream, per
// section 4.3's tag-close disambiguation) rather than the empty text
// every other truncation site emits via a nil materializer.
type stringMaterializer string

func (m stringMaterializer) Materialize(holder *Text) *Text {
	if holder == nil {
		holder = new(Text)
	}
	holder.setLiteral(string(m))
	return holder
}

// piece tracks the bookkeeping shared by every sub-parser: which piece
// number is about to be advertised, and the outcome once the run ends.
type piece struct {
	nextIsInitial bool
	pendingFinal  bool
	done          bool
	found         bool
}

func newPiece() piece { return piece{nextIsInitial: true} }

// PatternParser implements the two-phase pull protocol for a run
// recognised by a pair of RunePredicates: WhitespaceParser and
// NmTokenParser are both this same engine, configured with different
// predicates, mirroring the way the Python source's PatternParser is
// parametrized by a compiled regular expression and reused for both
// (lex.py's WhitespaceParserXML10 and NameParser). A Go regexp cannot
// report "might still match with more input", which MatchToSentinel-
// style sub-parsers need, so this engine drives ChunkBuffer.Matching
// with explicit rune predicates instead of a compiled pattern.
type PatternParser struct {
	piece
	buf         *ChunkBuffer
	first, rest RunePredicate
}

// NewPatternParser returns a restartable PatternParser bound to buf.
// Reset must be called before first use to select predicates for a
// run.
func NewPatternParser(buf *ChunkBuffer) *PatternParser {
	return &PatternParser{buf: buf}
}

// Reset restarts the parser for a new run recognised by first
// (tested against the run's first rune only) and rest (tested against
// every subsequent rune).
func (p *PatternParser) Reset(first, rest RunePredicate) {
	p.piece = newPiece()
	p.first, p.rest = first, rest
}

// Advance performs Phase A: it advances the match by one piece. ok is
// true if a piece is ready (call Materialize); ok is false once the run
// has ended, at which point Found reports whether anything matched.
//
// A continuation piece (resuming a run whose previous piece already
// matched at least once) tests its first rune against rest, not first:
// the name-start-vs-name-char distinction only applies at the true
// start of the overall run, not at an arbitrary chunk boundary in the
// middle of it.
func (p *PatternParser) Advance() (bool, error) {
	if p.done {
		return false, nil
	}
	first := p.first
	if !p.nextIsInitial {
		first = p.rest
	}
	n, err := p.buf.Matching(first, p.rest)
	if err != nil {
		return false, err
	}
	if n == 0 {
		p.done = true
		if !p.nextIsInitial {
			// A prior piece left the run open (the chunk it was pulled
			// from happened to end exactly where the run does); close
			// it with an empty final piece so IsFinal is still the
			// caller's only signal that the run has ended.
			p.pendingFinal = true
			return true, nil
		}
		p.found = false
		return false, nil
	}
	p.found = true
	p.pendingFinal = n < 0
	if p.pendingFinal {
		p.done = true
	}
	return true, nil
}

// Materialize performs Phase B for the piece just advertised by
// Advance.
func (p *PatternParser) Materialize(holder *Text) *Text {
	if holder == nil {
		holder = new(Text)
	}
	holder.setPiece(p.buf.Extract(), p.nextIsInitial, p.pendingFinal)
	p.nextIsInitial = false
	return holder
}

// Found reports, once Advance has returned false, whether the run
// matched at least one code unit.
func (p *PatternParser) Found() bool { return p.found }

// SentinelParser implements the two-phase pull protocol for a run of
// content terminated by a fixed sentinel byte string: comment data
// (terminated by "-->"), CDATA section data (terminated by "]]>") and
// processing instruction data (terminated by "?>") are all this same
// engine with a different sentinel, mirroring lex.py's
// parse_to_sentinel helper.
type SentinelParser struct {
	piece
	buf      *ChunkBuffer
	sentinel []byte
}

// NewSentinelParser returns a restartable SentinelParser bound to buf.
func NewSentinelParser(buf *ChunkBuffer) *SentinelParser {
	return &SentinelParser{buf: buf}
}

// Reset restarts the parser for a new run terminated by sentinel.
func (p *SentinelParser) Reset(sentinel []byte) {
	p.piece = newPiece()
	p.sentinel = sentinel
}

// Advance performs Phase A. Semantics match PatternParser.Advance; see
// its doc comment. Found, once the run ends, reports whether sentinel
// was actually located (as opposed to the run having been cut short by
// end of stream).
func (p *SentinelParser) Advance() (bool, error) {
	if p.done {
		return false, nil
	}
	n, err := p.resolve()
	if err != nil {
		return false, err
	}
	if n == 0 {
		p.found = p.sentinelAtCursor()
		p.done = true
		if !p.nextIsInitial {
			// Same rationale as PatternParser.Advance: a prior piece
			// left the run open exactly at a chunk boundary, so close
			// it with an empty final piece.
			p.pendingFinal = true
			return true, nil
		}
		return false, nil
	}
	p.pendingFinal = n < 0
	if p.pendingFinal {
		p.found = p.sentinelAtCursor()
		p.done = true
	}
	return true, nil
}

// resolve advances the match by one piece's worth of content, the same
// contract ChunkBuffer.MatchToSentinel documents, except it does not
// give up after a single chunk pull: it keeps pulling chunks and
// re-running the sentinel search (scanToSentinel) until the buffer can
// answer unambiguously. A buffered tail that merely resembles a
// sentinel prefix -- the "--" in content "a--x" ahead of a "-->"
// sentinel, say, delivered one byte per chunk -- can still be ambiguous
// after one extra chunk; only once it is disproved (a disqualifying
// byte arrives), the sentinel completes, or the source truly ends does
// scanToSentinel stop reporting ambiguous. Stopping after exactly one
// pull, the way a direct MatchToSentinel call does, can report a false
// "not found" for content that is genuinely still arriving (spec.md
// section 8's chunk-boundary-invariance property depends on not doing
// that).
func (p *SentinelParser) resolve() (int, error) {
	b := p.buf
	b.start = b.cursor
	for {
		if n, done := b.scanToSentinel(p.sentinel); done {
			return n, nil
		}
		ok, err := b.fillOnce()
		if err != nil {
			return 0, err
		}
		if !ok {
			// No further chunk will ever arrive; scanToSentinel's own
			// end-of-stream branch resolves the remaining ambiguity.
			n, _ := b.scanToSentinel(p.sentinel)
			return n, nil
		}
	}
}

// sentinelAtCursor reports whether the sentinel literally sits at
// cursor, without consuming it. It is only ever called once resolve has
// already driven the buffer to an unambiguous state, so unlike the
// literal comparison this replaces, it never needs to pull further
// input to answer: either the sentinel is already buffered (resolve's
// scanToSentinel located it there), or the source is genuinely
// exhausted with fewer than len(sentinel) bytes left at cursor.
func (p *SentinelParser) sentinelAtCursor() bool {
	tail := p.buf.window[p.buf.cursor:]
	if len(tail) < len(p.sentinel) {
		return false
	}
	return bytesEqual(tail[:len(p.sentinel)], p.sentinel)
}

// Materialize performs Phase B for the piece just advertised by
// Advance.
func (p *SentinelParser) Materialize(holder *Text) *Text {
	if holder == nil {
		holder = new(Text)
	}
	holder.setPiece(p.buf.Extract(), p.nextIsInitial, p.pendingFinal)
	p.nextIsInitial = false
	return holder
}

// Found reports, once Advance has returned false, whether sentinel was
// located (false means the run was cut short by end of stream).
func (p *SentinelParser) Found() bool { return p.found }

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isXMLWhitespace tests the XML 1.0 S production: #x20 | #x9 | #xD |
// #xA. WhitespaceParser uses this predicate for both the first and
// subsequent code units, since whitespace has no distinct start
// character.
func isXMLWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// NewWhitespaceParser configures p to recognise a run of XML
// whitespace.
func NewWhitespaceParser(p *PatternParser) {
	p.Reset(isXMLWhitespace, isXMLWhitespace)
}

// isNameStartChar and isNameChar implement the strict Unicode name
// syntax noted in section 9's design notes: initial = Unicode letter,
// '_' or ':'; continuation = initial union digit, '.' and '-'. Letter
// classification is delegated to xid.Start/xid.Continue (UAX #31
// identifier syntax), the same dependency vippsas-sqlcode's T-SQL
// identifier scanner uses for the same purpose, rather than hand-rolled
// unicode.IsLetter tables that don't distinguish start from
// continuation characters.
func isNameStartChar(r rune) bool {
	switch r {
	case '_', ':':
		return true
	default:
		return xid.Start(r)
	}
}

func isNameChar(r rune) bool {
	switch r {
	case '.', '-':
		return true
	default:
		return isNameStartChar(r) || xid.Continue(r) || isDigit(r)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// MatchesNameStart reports whether r would begin a valid NmToken,
// without consuming anything. LexScanner uses this for the
// non-consuming lookahead after a bare '<': a name-start character
// there opens a start or empty tag.
func MatchesNameStart(r rune) bool { return isNameStartChar(r) }

// NewNmTokenParser configures p to recognise a run forming a single
// XML name token (a tag name, attribute name, or processing
// instruction target).
func NewNmTokenParser(p *PatternParser) {
	p.Reset(isNameStartChar, isNameChar)
}
