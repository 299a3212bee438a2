package minim

// Scanner is the tokenized stream facade (section 4.5): it drives the
// state machine defined in lexer.go over a ChunkBuffer and exposes the
// two-phase pull protocol to callers. A Scanner is single-threaded and
// stateful between calls, like the teacher's lexer: callers must not
// call Next concurrently, and must not retain a Text past the next
// call to Next.
type Scanner struct {
	buf      *ChunkBuffer
	pattern  *PatternParser
	sentinel *SentinelParser
	quote    byte

	// sawAttrWhitespace records whether the whitespace run immediately
	// before the current attribute-loop decision actually matched
	// anything, so lexAttributeDecision can reject an attribute name
	// that runs directly into the previous token with no separator.
	sawAttrWhitespace bool

	state   stateFn
	err     error
	finished bool

	pendingKind Kind
	pendingMat  materializer
	pendingSet  bool
}

// NewScanner returns a Scanner reading chunks from source.
func NewScanner(source ChunkSource) *Scanner {
	buf := NewChunkBuffer(source)
	s := &Scanner{buf: buf}
	s.pattern = NewPatternParser(buf)
	s.sentinel = NewSentinelParser(buf)
	s.state = lexContent
	return s
}

// Line reports the 1-based line of the scanner's current position, for
// error reporting alongside a LexError.
func (s *Scanner) Line() int { return s.buf.Line() }

// emit is Phase A: it advertises kind as the next token, to be
// materialized by a following call to Text. mat is nil for a
// fixed-literal Kind, whose Text.Literal is always the same constant.
func (s *Scanner) emit(kind Kind, mat materializer) {
	s.pendingKind = kind
	s.pendingMat = mat
	s.pendingSet = true
}

// Next performs Phase A of the two-phase pull protocol: it advances the
// scanner to the next token and returns its Kind. ok is false once the
// stream is exhausted (check err for the reason, nil meaning a clean
// end of document); once ok is false or err is non-nil, every further
// call returns the same result.
//
// Tokens already returned by a prior Next/Text pair remain valid after
// a fatal error, per section 7: scanning stops at the point a LexError
// is raised, and every later call returns that same error.
func (s *Scanner) Next() (Kind, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	if s.finished {
		return 0, false, nil
	}

	s.pendingSet = false
	perr := s.run()
	if perr != nil {
		s.err = perr
		s.finished = true
		return 0, false, perr
	}
	if !s.pendingSet {
		s.finished = true
		return 0, false, nil
	}
	return s.pendingKind, true, nil
}

// run drives the state machine until a token is emitted or the state
// machine ends, recovering a panicked *LexError exactly once, the way
// the teacher's nextItem recovers around a single lex() call.
func (s *Scanner) run() (perr error) {
	defer func() {
		if r := recover(); r != nil {
			le, ok := r.(*LexError)
			if !ok {
				panic(r)
			}
			perr = le
		}
	}()
	for !s.pendingSet && s.state != nil {
		next, err := s.state(s)
		if err != nil {
			s.state = nil
			return err
		}
		s.state = next
	}
	return nil
}

// Text performs Phase B: it materializes the token most recently
// advertised by Next into holder (or a freshly allocated Text if holder
// is nil) and returns it. Calling Text is optional; a caller that only
// needs the Kind can skip it entirely, which is the allocation this
// protocol exists to avoid.
//
// The returned Text aliases the ChunkBuffer's internal window for
// buffer-backed tokens; it is only valid until the next call to Next.
func (s *Scanner) Text(holder *Text) *Text {
	if holder == nil {
		holder = new(Text)
	}
	if s.pendingMat == nil {
		lit, _ := s.pendingKind.Literal()
		holder.setLiteral(lit)
		return holder
	}
	return s.pendingMat.Materialize(holder)
}

// All drains the scanner into a slice of fully materialized Tokens,
// copying each Text so the result outlives further scanning. This is
// the convenience, always-materializing shape the two-phase Next/Text
// pair is split out of: the direct analogue of TokenReader layered over
// Reader in the implementation this scanner was distilled from.
func (s *Scanner) All() ([]Token, error) {
	var tokens []Token
	for {
		kind, ok, err := s.Next()
		if err != nil {
			return tokens, err
		}
		if !ok {
			return tokens, nil
		}
		var tok Token
		tok.Kind = kind
		txt := s.Text(&tok.Text)
		data := make([]byte, len(txt.data))
		copy(data, txt.data)
		txt.data = data
		tokens = append(tokens, tok)
	}
}
