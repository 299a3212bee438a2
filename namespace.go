package minim

import "strings"

// DefaultXMLNSNameLimit bounds the length of a namespace prefix lifted
// from an xmlns:prefix attribute. Exceeding it is a KindLimit error.
const DefaultXMLNSNameLimit = 512

// DefaultXMLNSURILimit bounds the length of a namespace URI lifted from
// an xmlns or xmlns:prefix attribute's value. Exceeding it is a
// KindLimit error.
const DefaultXMLNSURILimit = 2048

// TokenSource is the two-phase pull interface NamespaceScanner wraps.
// Scanner implements it; NamespaceScanner implements it too, so the two
// can be composed (a second NamespaceScanner over another one lifts
// each binding a second time, so its output repeats every namespace
// event).
type TokenSource interface {
	Next() (Kind, bool, error)
	Text(holder *Text) *Text
	Line() int
}

// NamespaceScanner filters a TokenSource, recognising xmlns and
// xmlns:prefix attributes on a start or empty tag and lifting them into
// NamespaceDefault/NamespacePrefix/NamespaceURI events emitted
// immediately before the tag that declares them. It does this by
// caching the whole tag's tokens (from StartOrEmptyTagOpen through its
// closing punctuation) before replaying anything, the same algorithm as
// insert_namespace_tokens in the implementation this scanner was
// distilled from.
//
// A NamespaceScanner is single-threaded and stateful between calls,
// like Scanner.
type NamespaceScanner struct {
	src       TokenSource
	nameLimit int
	uriLimit  int

	pending   []Token
	current   Token
	fromQueue bool
}

// NewNamespaceScanner returns a NamespaceScanner wrapping src, using the
// default length limits.
func NewNamespaceScanner(src TokenSource) *NamespaceScanner {
	return &NamespaceScanner{
		src:       src,
		nameLimit: DefaultXMLNSNameLimit,
		uriLimit:  DefaultXMLNSURILimit,
	}
}

// Line reports the 1-based line of the scanner's current position.
func (n *NamespaceScanner) Line() int { return n.src.Line() }

// Next performs Phase A. Every token is passed through unchanged except
// a start or empty tag's opening "<", which triggers caching the whole
// tag and, if it carries any xmlns[:prefix] attributes, replaying
// synthesized namespace events ahead of it (section 4.4's namespace
// lift invariant: after this returns found, Text for the very first
// queued token is never a namespace event unless the tag actually
// declared one).
func (n *NamespaceScanner) Next() (Kind, bool, error) {
	if len(n.pending) > 0 {
		n.current = n.pending[0]
		n.pending = n.pending[1:]
		n.fromQueue = true
		return n.current.Kind, true, nil
	}

	kind, ok, err := n.src.Next()
	if err != nil || !ok {
		n.fromQueue = false
		return kind, ok, err
	}
	if kind != KindStartOrEmptyTagOpen {
		n.fromQueue = false
		n.current.Kind = kind
		return kind, true, nil
	}

	cached, events, err := n.cacheTag(kind)
	if err != nil {
		return 0, false, err
	}
	n.pending = append(events, cached...)
	n.current = n.pending[0]
	n.pending = n.pending[1:]
	n.fromQueue = true
	return n.current.Kind, true, nil
}

// Text performs Phase B. For a passed-through token it delegates to the
// wrapped source (preserving the underlying Scanner's buffer-aliasing
// rules); for a cached or synthesized token it returns an independent
// copy, since those must survive across several further Next calls.
func (n *NamespaceScanner) Text(holder *Text) *Text {
	if holder == nil {
		holder = new(Text)
	}
	if n.fromQueue {
		*holder = n.current.Text
		return holder
	}
	return n.src.Text(holder)
}

// materializeCurrent copies the token src just advertised (kind plus an
// independent copy of its Text) so it can be held across the rest of
// the tag's caching.
func (n *NamespaceScanner) materializeCurrent(kind Kind) Token {
	var t Token
	t.Kind = kind
	txt := n.src.Text(&t.Text)
	data := make([]byte, len(txt.data))
	copy(data, txt.data)
	txt.data = data
	return t
}

// cacheTag drains src from the already-advertised StartOrEmptyTagOpen
// token through the tag's closing punctuation (or a truncation
// recovery token, or clean end of stream), materializing every token it
// sees and, along the way, reconstructing each attribute's full name
// and value across however many two-phase pieces they were advertised
// in, to detect xmlns[:prefix] bindings.
func (n *NamespaceScanner) cacheTag(openKind Kind) (cached []Token, events []Token, err error) {
	cached = append(cached, n.materializeCurrent(openKind))

	var name, value []byte
	var attrName string

	for {
		kind, ok, nerr := n.src.Next()
		if nerr != nil {
			return nil, nil, nerr
		}
		if !ok {
			return cached, events, nil
		}
		tok := n.materializeCurrent(kind)
		cached = append(cached, tok)

		switch kind {
		case KindAttributeName:
			if tok.Text.IsInitial() {
				name = name[:0]
			}
			name = append(name, tok.Text.data...)
			if tok.Text.IsFinal() {
				attrName = string(name)
			}
		case KindAttributeValue:
			if tok.Text.IsInitial() {
				value = value[:0]
			}
			value = append(value, tok.Text.data...)
			if tok.Text.IsFinal() {
				ev, everr := n.namespaceEvents(attrName, string(value))
				if everr != nil {
					return nil, nil, everr
				}
				events = append(events, ev...)
			}
		case KindStartTagClose, KindEmptyTagClose, KindBadlyFormedEndOfStream:
			return cached, events, nil
		}
	}
}

// namespaceEvents recognises name as an xmlns or xmlns:prefix
// attribute and, if it is, returns the namespace events it lifts.
// Multiple bindings on one tag are returned in source discovery order,
// the same single left-to-right scan the distilled implementation
// performs.
func (n *NamespaceScanner) namespaceEvents(name, value string) ([]Token, error) {
	switch {
	case name == "xmlns":
		if len(value) > n.uriLimit {
			return nil, n.limitError("default namespace URI exceeds %d bytes", n.uriLimit)
		}
		t := Token{Kind: KindNamespaceDefault}
		t.Text.setSynthesized(value)
		return []Token{t}, nil
	case strings.HasPrefix(name, "xmlns:"):
		prefix := name[len("xmlns:"):]
		if len(prefix) > n.nameLimit {
			return nil, n.limitError("namespace prefix exceeds %d bytes", n.nameLimit)
		}
		if len(value) > n.uriLimit {
			return nil, n.limitError("namespace URI exceeds %d bytes", n.uriLimit)
		}
		tPrefix := Token{Kind: KindNamespacePrefix}
		tPrefix.Text.setSynthesized(prefix)
		tURI := Token{Kind: KindNamespaceURI}
		tURI.Text.setSynthesized(value)
		return []Token{tPrefix, tURI}, nil
	default:
		return nil, nil
	}
}

func (n *NamespaceScanner) limitError(format string, v ...interface{}) *LexError {
	return newLexError(KindLimit, n.src.Line(), format, v...)
}
