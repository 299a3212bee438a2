package minim

import "io"

// stateFn is one step of the scanning state machine, the same shape as
// the teacher's lexer: a function that does a little work and returns
// the state to run next. Unlike the teacher, a stateFn here sometimes
// emits a token (by calling Scanner.emit) and sometimes just transitions
// silently; Scanner.Next keeps calling stateFns until one of them emits
// or the state machine reaches nil (end of document).
type stateFn func(s *Scanner) (stateFn, error)

// pieceSource is satisfied by PatternParser and SentinelParser: the two
// sub-parsers that can advertise more than one piece per logical token
// when a run spans a chunk boundary.
type pieceSource interface {
	materializer
	Advance() (bool, error)
}

// drivePieces runs one step of src's two-phase protocol. If src has a
// piece ready, it is emitted as kind and drivePieces returns a
// continuation that will drive src again on the next engine step. Once
// src is exhausted, control passes to then, which decides the next
// state based on whether src ever matched anything.
func drivePieces(s *Scanner, src pieceSource, kind Kind, then func(s *Scanner, found bool) (stateFn, error)) (stateFn, error) {
	ok, err := src.Advance()
	if err != nil {
		return nil, err
	}
	if ok {
		s.emit(kind, src)
		return func(s *Scanner) (stateFn, error) {
			return drivePieces(s, src, kind, then)
		}, nil
	}
	return then(s, src.Found())
}

// isContentChar is the predicate for a run of PCDATA: everything except
// the two characters that can introduce markup or a recovery token.
func isContentChar(r rune) bool { return r != '<' && r != '&' }

// lexContent is the top-level state: it is re-entered after every
// complete construct (a closed tag, a comment, a recovered badly-formed
// token) and tries, in order, a whitespace-only run and then a general
// PCDATA run before inspecting whatever stopped both.
func lexContent(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindWhitespaceContent, afterContentWhitespace)
}

func afterContentWhitespace(s *Scanner, found bool) (stateFn, error) {
	return lexPCData, nil
}

func lexPCData(s *Scanner) (stateFn, error) {
	s.pattern.Reset(isContentChar, isContentChar)
	return drivePieces(s, s.pattern, KindPCData, afterPCData)
}

func afterPCData(s *Scanner, found bool) (stateFn, error) {
	return lexAfterContent, nil
}

// lexAfterContent looks at whatever character stopped both the
// whitespace and PCDATA runs: '<' starts markup, '&' is a bare
// ampersand (entity references are out of scope, so every one is a
// recovery token), and end of stream ends the document cleanly.
func lexAfterContent(s *Scanner) (stateFn, error) {
	ch, err := s.buf.Get()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch ch {
	case '<':
		return lexMarkupStart, nil
	case '&':
		if _, err := s.buf.StartsWith([]byte("&")); err != nil {
			return nil, err
		}
		s.emit(KindBadlyFormedAmpersand, nil)
		return lexContent, nil
	default:
		s.errf(KindStructural, "unexpected byte %q while scanning content", ch)
		panic("unreachable")
	}
}

// lexMarkupStart dispatches on what follows '<': the three constructs
// this scanner implements fully (comment, CDATA section, processing
// instruction), end and start/empty tags, a declaration it does not
// implement, or a '<' that introduces none of these.
func lexMarkupStart(s *Scanner) (stateFn, error) {
	b := s.buf
	if ok, err := b.StartsWith([]byte("<![CDATA[")); err != nil {
		return nil, err
	} else if ok {
		s.emit(KindCDataOpen, nil)
		return lexCDataData, nil
	}
	if ok, err := b.StartsWith([]byte("<!--")); err != nil {
		return nil, err
	} else if ok {
		s.emit(KindCommentOpen, nil)
		return lexCommentData, nil
	}
	if ok, err := b.StartsWith([]byte("<?")); err != nil {
		return nil, err
	} else if ok {
		s.emit(KindProcessingInstructionOpen, nil)
		return lexPITarget, nil
	}
	if ok, err := b.StartsWith([]byte("</")); err != nil {
		return nil, err
	} else if ok {
		s.emit(KindEndTagOpen, nil)
		return lexEndTagName, nil
	}

	if ok, err := b.StartsWith([]byte("<")); err != nil {
		return nil, err
	} else if !ok {
		panic("unreachable: lexMarkupStart entered without '<' at cursor")
	}
	r, _, ok, err := b.decodeAtCursor()
	if err != nil {
		return nil, err
	}
	switch {
	case ok && MatchesNameStart(r):
		s.emit(KindStartOrEmptyTagOpen, nil)
		return lexTagName, nil
	case ok && r == '!':
		s.errf(KindNotImplemented, "markup declarations are not implemented")
		panic("unreachable")
	default:
		s.emit(KindBadlyFormedLessThan, nil)
		return lexContent, nil
	}
}

func lexTagName(s *Scanner) (stateFn, error) {
	NewNmTokenParser(s.pattern)
	return drivePieces(s, s.pattern, KindTagName, afterTagName)
}

func afterTagName(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.errf(KindStructural, "expected a name after '<'")
	}
	return lexAttributes, nil
}

// lexAttributes is the attribute loop's re-entry point: scan optional
// whitespace, then decide whether the tag closes, opens an attribute,
// or has been truncated.
func lexAttributes(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindMarkupWhitespace, afterAttributeWhitespace)
}

func afterAttributeWhitespace(s *Scanner, found bool) (stateFn, error) {
	s.sawAttrWhitespace = found
	return lexAttributeDecision, nil
}

// lexAttributeDecision looks at the character that follows the optional
// whitespace lexAttributes just consumed. A name-start character here
// without preceding whitespace means two attributes (or an attribute and
// the tag name) ran together with no separator, which the grammar cannot
// recover from as content: it is a structural error, not a badly-formed
// token.
func lexAttributeDecision(s *Scanner) (stateFn, error) {
	b := s.buf
	ch, err := b.Get()
	if err == io.EOF {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch ch {
	case '>':
		if _, err := b.StartsWith([]byte(">")); err != nil {
			return nil, err
		}
		s.emit(KindStartTagClose, nil)
		return lexContent, nil
	case '/':
		if _, err := b.StartsWith([]byte("/")); err != nil {
			return nil, err
		}
		ch2, err := b.Get()
		if err == io.EOF {
			s.emit(KindBadlyFormedEndOfStream, stringMaterializer("/"))
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if ch2 != '>' {
			s.errf(KindStructural, "expected '/>' to close an empty tag")
		}
		if _, err := b.StartsWith([]byte(">")); err != nil {
			return nil, err
		}
		s.emit(KindEmptyTagClose, nil)
		return lexContent, nil
	default:
		if !s.sawAttrWhitespace {
			s.errf(KindStructural, "expected whitespace before attribute name")
		}
		NewNmTokenParser(s.pattern)
		return drivePieces(s, s.pattern, KindAttributeName, afterAttributeName)
	}
}

func afterAttributeName(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.errf(KindStructural, "expected an attribute name")
	}
	return lexAttributeEqualsWhitespace, nil
}

func lexAttributeEqualsWhitespace(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindMarkupWhitespace, afterAttributeEqualsWhitespace)
}

func afterAttributeEqualsWhitespace(s *Scanner, found bool) (stateFn, error) {
	return lexAttributeEquals, nil
}

func lexAttributeEquals(s *Scanner) (stateFn, error) {
	ok, err := s.buf.StartsWith([]byte("="))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.errf(KindStructural, "expected '=' after attribute name")
	}
	s.emit(KindAttributeEquals, nil)
	return lexAttributeValueWhitespace, nil
}

func lexAttributeValueWhitespace(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindMarkupWhitespace, afterAttributeValueWhitespace)
}

func afterAttributeValueWhitespace(s *Scanner, found bool) (stateFn, error) {
	return lexAttributeValueOpen, nil
}

// lexAttributeValueOpen expects a quote character. Unquoted HTML-style
// attribute values are rejected rather than accepted, per the decision
// recorded for this scanner's handling of the construct.
func lexAttributeValueOpen(s *Scanner) (stateFn, error) {
	ch, err := s.buf.Get()
	if err == io.EOF {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch ch {
	case '"':
		if _, err := s.buf.StartsWith([]byte(`"`)); err != nil {
			return nil, err
		}
		s.emit(KindAttributeValueDoubleOpen, nil)
		s.quote = '"'
		return lexAttributeValueData, nil
	case '\'':
		if _, err := s.buf.StartsWith([]byte("'")); err != nil {
			return nil, err
		}
		s.emit(KindAttributeValueSingleOpen, nil)
		s.quote = '\''
		return lexAttributeValueData, nil
	default:
		s.errf(KindStructural, "attribute value must be quoted")
		panic("unreachable")
	}
}

func lexAttributeValueData(s *Scanner) (stateFn, error) {
	s.sentinel.Reset([]byte{s.quote})
	return drivePieces(s, s.sentinel, KindAttributeValue, afterAttributeValueData)
}

func afterAttributeValueData(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	return lexAttributeValueClose, nil
}

func lexAttributeValueClose(s *Scanner) (stateFn, error) {
	q := s.quote
	ok, err := s.buf.StartsWith([]byte{q})
	if err != nil {
		return nil, err
	}
	if !ok {
		panic("unreachable: sentinel scan guaranteed the quote at cursor")
	}
	if q == '"' {
		s.emit(KindAttributeValueDoubleClose, nil)
	} else {
		s.emit(KindAttributeValueSingleClose, nil)
	}
	return lexAttributes, nil
}

func lexEndTagName(s *Scanner) (stateFn, error) {
	NewNmTokenParser(s.pattern)
	return drivePieces(s, s.pattern, KindTagName, afterEndTagName)
}

func afterEndTagName(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.errf(KindStructural, "expected a name after '</'")
	}
	return lexEndTagWhitespace, nil
}

func lexEndTagWhitespace(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindMarkupWhitespace, afterEndTagWhitespace)
}

func afterEndTagWhitespace(s *Scanner, found bool) (stateFn, error) {
	return lexEndTagClose, nil
}

func lexEndTagClose(s *Scanner) (stateFn, error) {
	ch, err := s.buf.Get()
	if err == io.EOF {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ch != '>' {
		s.errf(KindStructural, "expected '>' to close an end tag")
	}
	if _, err := s.buf.StartsWith([]byte(">")); err != nil {
		return nil, err
	}
	s.emit(KindEndTagClose, nil)
	return lexContent, nil
}

func lexPITarget(s *Scanner) (stateFn, error) {
	NewNmTokenParser(s.pattern)
	return drivePieces(s, s.pattern, KindProcessingInstructionTarget, afterPITarget)
}

func afterPITarget(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.errf(KindStructural, "expected a target name after '<?'")
	}
	return lexPIWhitespace, nil
}

func lexPIWhitespace(s *Scanner) (stateFn, error) {
	NewWhitespaceParser(s.pattern)
	return drivePieces(s, s.pattern, KindMarkupWhitespace, afterPIWhitespace)
}

func afterPIWhitespace(s *Scanner, found bool) (stateFn, error) {
	return lexPIData, nil
}

func lexPIData(s *Scanner) (stateFn, error) {
	s.sentinel.Reset([]byte("?>"))
	return drivePieces(s, s.sentinel, KindProcessingInstructionData, afterPIData)
}

func afterPIData(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	return lexPIClose, nil
}

func lexPIClose(s *Scanner) (stateFn, error) {
	ok, err := s.buf.StartsWith([]byte("?>"))
	if err != nil {
		return nil, err
	}
	if !ok {
		panic("unreachable: sentinel scan guaranteed '?>' at cursor")
	}
	s.emit(KindProcessingInstructionClose, nil)
	return lexContent, nil
}

func lexCommentData(s *Scanner) (stateFn, error) {
	s.sentinel.Reset([]byte("-->"))
	return drivePieces(s, s.sentinel, KindCommentData, afterCommentData)
}

func afterCommentData(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	return lexCommentClose, nil
}

func lexCommentClose(s *Scanner) (stateFn, error) {
	ok, err := s.buf.StartsWith([]byte("-->"))
	if err != nil {
		return nil, err
	}
	if !ok {
		panic("unreachable: sentinel scan guaranteed '-->' at cursor")
	}
	s.emit(KindCommentClose, nil)
	return lexContent, nil
}

func lexCDataData(s *Scanner) (stateFn, error) {
	s.sentinel.Reset([]byte("]]>"))
	return drivePieces(s, s.sentinel, KindCDataData, afterCDataData)
}

func afterCDataData(s *Scanner, found bool) (stateFn, error) {
	if !found {
		s.emit(KindBadlyFormedEndOfStream, nil)
		return nil, nil
	}
	return lexCDataClose, nil
}

func lexCDataClose(s *Scanner) (stateFn, error) {
	ok, err := s.buf.StartsWith([]byte("]]>"))
	if err != nil {
		return nil, err
	}
	if !ok {
		panic("unreachable: sentinel scan guaranteed ']]>' at cursor")
	}
	s.emit(KindCDataClose, nil)
	return lexContent, nil
}
