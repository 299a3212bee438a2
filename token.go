package minim

import "fmt"

// Category is a bitset classifying a Kind, replacing the is_content /
// is_markup / is_structure / is_name / is_data / is_invalid flags the
// Python source hung off a class hierarchy (tokens.py). A Go Kind is a
// closed enum, not a class tree, so Category is computed once per Kind
// in the table below rather than carried per-instance.
type Category uint

const (
	// CategoryContent marks tokens that are part of the document's
	// character data (PCDATA, CDATA section data, whitespace content).
	CategoryContent Category = 1 << iota
	// CategoryMarkup marks tokens that are markup delimiters or markup
	// data (tag punctuation, comment/PI delimiters and data).
	CategoryMarkup
	// CategoryStructure marks tokens that open or close a structural
	// construct (tag open/close punctuation, PI/comment/CDATA open and
	// close).
	CategoryStructure
	// CategoryName marks tokens that are a name (a tag name, attribute
	// name or PI target).
	CategoryName
	// CategoryData marks tokens that carry literal text content rather
	// than being fixed-literal singletons (attribute values, PCDATA,
	// CDATA data, comment data, PI data, names).
	CategoryData
	// CategoryInvalid marks badly-formed recovery tokens.
	CategoryInvalid
)

// Kind identifies the lexical category of a Token. It is a closed,
// tagged-variant enum: every Kind in the grammar corresponds to exactly
// one constant here, replacing the Python source's class hierarchy
// (tokens.py's Token/Content/Markup/SingletonMarkup/SingletonContent).
type Kind int

const (
	// KindPCData is a run of character data outside any markup.
	KindPCData Kind = iota
	// KindWhitespaceContent is a run of whitespace-only character data.
	KindWhitespaceContent
	// KindCDataData is the literal text inside a CDATA section.
	KindCDataData
	// KindCommentData is the literal text inside a comment.
	KindCommentData
	// KindProcessingInstructionData is the literal text inside a
	// processing instruction, after its target.
	KindProcessingInstructionData
	// KindTagName is a start, empty, or end tag's name.
	KindTagName
	// KindAttributeName is an attribute's name.
	KindAttributeName
	// KindAttributeValue is the literal text inside an attribute
	// value's quotes.
	KindAttributeValue
	// KindProcessingInstructionTarget is a processing instruction's
	// target name.
	KindProcessingInstructionTarget
	// KindMarkupWhitespace is whitespace inside markup (between an
	// attribute and the next, or before a tag's closing punctuation).
	KindMarkupWhitespace

	// KindStartOrEmptyTagOpen is the literal "<" that opens a start tag
	// or an empty (self-closing) tag. Which one it turns out to be is
	// only known once KindStartTagClose or KindEmptyTagClose follows.
	KindStartOrEmptyTagOpen
	// KindEndTagOpen is the literal "</".
	KindEndTagOpen
	// KindStartTagClose is the literal ">" that closes a start tag.
	KindStartTagClose
	// KindEmptyTagClose is the literal "/>" that closes an empty tag.
	KindEmptyTagClose
	// KindEndTagClose is the literal ">" that closes an end tag.
	KindEndTagClose
	// KindAttributeEquals is the literal "=" between an attribute name
	// and its value.
	KindAttributeEquals
	// KindAttributeValueDoubleOpen is the literal '"' opening a
	// double-quoted attribute value.
	KindAttributeValueDoubleOpen
	// KindAttributeValueSingleOpen is the literal '\'' opening a
	// single-quoted attribute value.
	KindAttributeValueSingleOpen
	// KindAttributeValueDoubleClose is the literal '"' closing a
	// double-quoted attribute value.
	KindAttributeValueDoubleClose
	// KindAttributeValueSingleClose is the literal '\'' closing a
	// single-quoted attribute value.
	KindAttributeValueSingleClose
	// KindProcessingInstructionOpen is the literal "<?".
	KindProcessingInstructionOpen
	// KindProcessingInstructionClose is the literal "?>".
	KindProcessingInstructionClose
	// KindCommentOpen is the literal "<!--".
	KindCommentOpen
	// KindCommentClose is the literal "-->".
	KindCommentClose
	// KindCDataOpen is the literal "<![CDATA[".
	KindCDataOpen
	// KindCDataClose is the literal "]]>".
	KindCDataClose

	// KindBadlyFormedLessThan is a bare '<' in content that did not
	// introduce valid markup; a local structural-recovery token.
	KindBadlyFormedLessThan
	// KindBadlyFormedAmpersand is a bare '&' in content; entity and
	// character references are out of scope, so every '&' is reported
	// this way rather than resolved.
	KindBadlyFormedAmpersand
	// KindBadlyFormedEndOfStream marks a construct truncated by end of
	// stream where the grammar defines a recovery token instead of a
	// fatal error (see section 7.2).
	KindBadlyFormedEndOfStream

	// KindNamespaceDefault is synthesized by NamespaceScanner for an
	// xmlns="..." attribute: its Text carries the default namespace
	// URI.
	KindNamespaceDefault
	// KindNamespacePrefix is synthesized by NamespaceScanner for an
	// xmlns:prefix="..." attribute: its Text carries the prefix.
	KindNamespacePrefix
	// KindNamespaceURI is synthesized by NamespaceScanner immediately
	// after KindNamespacePrefix: its Text carries the bound URI.
	KindNamespaceURI
)

var kindNames = [...]string{
	KindPCData:                      "PCData",
	KindWhitespaceContent:           "WhitespaceContent",
	KindCDataData:                   "CDataData",
	KindCommentData:                 "CommentData",
	KindProcessingInstructionData:   "ProcessingInstructionData",
	KindTagName:                     "TagName",
	KindAttributeName:               "AttributeName",
	KindAttributeValue:              "AttributeValue",
	KindProcessingInstructionTarget: "ProcessingInstructionTarget",
	KindMarkupWhitespace:            "MarkupWhitespace",
	KindStartOrEmptyTagOpen:         "StartOrEmptyTagOpen",
	KindEndTagOpen:                  "EndTagOpen",
	KindStartTagClose:               "StartTagClose",
	KindEmptyTagClose:               "EmptyTagClose",
	KindEndTagClose:                 "EndTagClose",
	KindAttributeEquals:             "AttributeEquals",
	KindAttributeValueDoubleOpen:    "AttributeValueDoubleOpen",
	KindAttributeValueSingleOpen:    "AttributeValueSingleOpen",
	KindAttributeValueDoubleClose:   "AttributeValueDoubleClose",
	KindAttributeValueSingleClose:   "AttributeValueSingleClose",
	KindProcessingInstructionOpen:   "ProcessingInstructionOpen",
	KindProcessingInstructionClose:  "ProcessingInstructionClose",
	KindCommentOpen:                 "CommentOpen",
	KindCommentClose:                "CommentClose",
	KindCDataOpen:                   "CDataOpen",
	KindCDataClose:                  "CDataClose",
	KindBadlyFormedLessThan:         "BadlyFormedLessThan",
	KindBadlyFormedAmpersand:        "BadlyFormedAmpersand",
	KindBadlyFormedEndOfStream:      "BadlyFormedEndOfStream",
	KindNamespaceDefault:            "NamespaceDefault",
	KindNamespacePrefix:             "NamespacePrefix",
	KindNamespaceURI:                "NamespaceURI",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// singletonLiteral holds the fixed literal for Kinds whose text never
// varies, the Go equivalent of the Python source's SingletonMarkup /
// SingletonContent subclasses. A Kind absent from this table is
// variable-text and is always materialized from the buffer or a
// synthesized Text instead.
var singletonLiteral = map[Kind]string{
	KindStartOrEmptyTagOpen:       "<",
	KindEndTagOpen:                "</",
	KindStartTagClose:             ">",
	KindEmptyTagClose:             "/>",
	KindEndTagClose:               ">",
	KindAttributeEquals:           "=",
	KindAttributeValueDoubleOpen:  `"`,
	KindAttributeValueSingleOpen:  "'",
	KindAttributeValueDoubleClose: `"`,
	KindAttributeValueSingleClose: "'",
	KindProcessingInstructionOpen: "<?",
	KindProcessingInstructionClose: "?>",
	KindCommentOpen:               "<!--",
	KindCommentClose:              "-->",
	KindCDataOpen:                 "<![CDATA[",
	KindCDataClose:                "]]>",
	KindBadlyFormedLessThan:       "<",
	KindBadlyFormedAmpersand:      "&",
}

// Literal returns the Kind's fixed text and true if k is a singleton
// (fixed-literal) kind; otherwise "", false.
func (k Kind) Literal() (string, bool) {
	lit, ok := singletonLiteral[k]
	return lit, ok
}

// IsWellFormed reports whether a token of this Kind represents
// well-formed input. The three BadlyFormed* kinds are the only ones
// that do not.
func (k Kind) IsWellFormed() bool {
	switch k {
	case KindBadlyFormedLessThan, KindBadlyFormedAmpersand, KindBadlyFormedEndOfStream:
		return false
	default:
		return true
	}
}

// Category returns the bitset classifying k, the replacement for the
// Python source's per-instance is_a flags.
func (k Kind) Category() Category {
	switch k {
	case KindPCData, KindWhitespaceContent, KindCDataData:
		return CategoryContent | CategoryData
	case KindCommentData, KindProcessingInstructionData:
		return CategoryMarkup | CategoryData
	case KindTagName, KindAttributeName, KindProcessingInstructionTarget:
		return CategoryMarkup | CategoryName | CategoryData
	case KindAttributeValue:
		return CategoryMarkup | CategoryData
	case KindMarkupWhitespace:
		return CategoryMarkup
	case KindStartOrEmptyTagOpen, KindEndTagOpen, KindStartTagClose,
		KindEmptyTagClose, KindEndTagClose, KindAttributeEquals,
		KindAttributeValueDoubleOpen, KindAttributeValueSingleOpen,
		KindAttributeValueDoubleClose, KindAttributeValueSingleClose,
		KindProcessingInstructionOpen, KindProcessingInstructionClose,
		KindCommentOpen, KindCommentClose, KindCDataOpen, KindCDataClose:
		return CategoryMarkup | CategoryStructure
	case KindBadlyFormedLessThan, KindBadlyFormedAmpersand, KindBadlyFormedEndOfStream:
		return CategoryInvalid
	case KindNamespaceDefault, KindNamespacePrefix, KindNamespaceURI:
		return CategoryData
	default:
		return 0
	}
}

// Has reports whether c includes category test.
func (c Category) Has(test Category) bool { return c&test != 0 }

// Text is the materialized payload of a token: the literal bytes that
// appeared in the source (for a fixed-literal Kind, its constant text;
// otherwise bytes extracted from the buffer, or synthesized text for a
// namespace-lift token), plus the piece flags from the two-phase
// sub-parser protocol.
//
// A Text returned by Scanner.Text aliases the ChunkBuffer's window when
// it comes from buffer content; it is only valid until the next call to
// Scanner.Next. Callers that need to retain it must copy Literal()'s
// bytes.
type Text struct {
	data      []byte
	content   []byte
	isInitial bool
	isFinal   bool
}

func (t *Text) setLiteral(s string) {
	t.data = []byte(s)
	t.content = nil
	t.isInitial, t.isFinal = true, true
}

func (t *Text) setPiece(data []byte, isInitial, isFinal bool) {
	t.data = data
	t.content = nil
	t.isInitial, t.isFinal = isInitial, isFinal
}

func (t *Text) setSynthesized(content string) {
	t.data = []byte(content)
	t.content = t.data
	t.isInitial, t.isFinal = true, true
}

// Literal returns the exact source bytes of this token piece.
func (t *Text) Literal() string { return string(t.data) }

// Content returns the token's logical content. For every token this
// equals Literal except where the grammar defines the two to differ;
// in this scanner no construct normalizes content away from its
// literal, so Content and Literal always agree; for synthesized
// namespace tokens both return the synthesized value.
func (t *Text) Content() string {
	if t.content != nil {
		return string(t.content)
	}
	return string(t.data)
}

// LiteralBytes returns the token's literal re-encoded in encoding. Only
// "utf-8" and "" (meaning utf-8, the scanner's native code unit) are
// supported, since character-set conversion and the XML declaration's
// encoding pseudo-attribute are out of scope (section 1, Non-goals).
func (t *Text) LiteralBytes(encoding string) ([]byte, error) {
	switch encoding {
	case "", "utf-8", "UTF-8":
		return t.data, nil
	default:
		return nil, fmt.Errorf("minim: unsupported encoding %q", encoding)
	}
}

// IsInitial reports whether this piece is the first piece of a
// multi-piece run (see the two-phase sub-parser protocol, section 4.2).
func (t *Text) IsInitial() bool { return t.isInitial }

// IsFinal reports whether this piece is the last piece of a run. A
// single-piece run has both IsInitial and IsFinal true.
func (t *Text) IsFinal() bool { return t.isFinal }

// Token is a fully materialized lexical token: a Kind plus its Text.
// Scanner.Next/Text keep these as two separate calls to avoid
// allocating a Text the caller doesn't need; Token exists for callers
// (Scanner.All, tests) that want the combined, always-materialized
// shape, the same role TokenReader plays over Reader in the Python
// source.
type Token struct {
	Kind Kind
	Text Text
}
