package minim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tok is the flattened shape lexer_test.go compares with cmp.Diff: just
// enough of a Token to make a mismatching test failure point straight at
// which token in the sequence is wrong and how.
type tok struct {
	Kind    Kind
	Literal string
}

func scanAll(t *testing.T, doc string) []tok {
	t.Helper()
	s := NewScanner(&chunkList{chunks: [][]byte{[]byte(doc)}})
	var got []tok
	for {
		kind, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next() after %d tokens: %v", len(got), err)
		}
		if !ok {
			return got
		}
		txt := s.Text(nil)
		got = append(got, tok{kind, txt.Literal()})
	}
}

func TestScannerEmptyTag(t *testing.T) {
	got := scanAll(t, `<br/>`)
	want := []tok{
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "br"},
		{KindEmptyTagClose, "/>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll(%q) mismatch (-want +got):\n%s", `<br/>`, diff)
	}
}

func TestScannerStartAndEndTagWithAttribute(t *testing.T) {
	got := scanAll(t, `<a href="x">text</a>`)
	want := []tok{
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "a"},
		{KindMarkupWhitespace, " "},
		{KindAttributeName, "href"},
		{KindAttributeEquals, "="},
		{KindAttributeValueDoubleOpen, `"`},
		{KindAttributeValue, "x"},
		{KindAttributeValueDoubleClose, `"`},
		{KindStartTagClose, ">"},
		{KindPCData, "text"},
		{KindEndTagOpen, "</"},
		{KindTagName, "a"},
		{KindEndTagClose, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerComment(t *testing.T) {
	got := scanAll(t, `<!-- a -- b -->`)
	want := []tok{
		{KindCommentOpen, "<!--"},
		{KindCommentData, " a -- b "},
		{KindCommentClose, "-->"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerCData(t *testing.T) {
	got := scanAll(t, `<![CDATA[<not a tag>]]>`)
	want := []tok{
		{KindCDataOpen, "<![CDATA["},
		{KindCDataData, "<not a tag>"},
		{KindCDataClose, "]]>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerProcessingInstruction(t *testing.T) {
	got := scanAll(t, `<?xml-stylesheet href="x"?>`)
	want := []tok{
		{KindProcessingInstructionOpen, "<?"},
		{KindProcessingInstructionTarget, "xml-stylesheet"},
		{KindMarkupWhitespace, " "},
		{KindProcessingInstructionData, `href="x"`},
		{KindProcessingInstructionClose, "?>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerBareAmpersandRecovers(t *testing.T) {
	got := scanAll(t, `a & b<x/>`)
	want := []tok{
		{KindPCData, "a "},
		{KindBadlyFormedAmpersand, "&"},
		{KindWhitespaceContent, " "},
		{KindPCData, "b"},
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "x"},
		{KindEmptyTagClose, "/>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerBareLessThanRecovers(t *testing.T) {
	got := scanAll(t, `1 < 2`)
	want := []tok{
		{KindPCData, "1 "},
		{KindBadlyFormedLessThan, "<"},
		{KindWhitespaceContent, " "},
		{KindPCData, "2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerTruncatedCommentRecovers(t *testing.T) {
	got := scanAll(t, `<!-- never closed`)
	want := []tok{
		{KindCommentOpen, "<!--"},
		{KindCommentData, " never closed"},
		// End of stream is only seen on the following call, which
		// closes the run with an empty final piece.
		{KindCommentData, ""},
		{KindBadlyFormedEndOfStream, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerNotImplementedDeclarationIsFatal(t *testing.T) {
	s := NewScanner(&chunkList{chunks: [][]byte{[]byte(`<!DOCTYPE x>`)}})
	var lastErr error
	for {
		_, ok, err := s.Next()
		if err != nil {
			lastErr = err
			break
		}
		if !ok {
			break
		}
	}
	le, ok := lastErr.(*LexError)
	if !ok || le.Kind != KindNotImplemented {
		t.Fatalf("error = %v; want a *LexError with Kind == KindNotImplemented", lastErr)
	}
}

func TestScannerAttributeWithoutSeparatorIsStructuralError(t *testing.T) {
	s := NewScanner(&chunkList{chunks: [][]byte{[]byte(`<a foo="x"bar="y">`)}})
	var lastErr error
	for {
		_, ok, err := s.Next()
		if err != nil {
			lastErr = err
			break
		}
		if !ok {
			break
		}
	}
	le, ok := lastErr.(*LexError)
	if !ok || le.Kind != KindStructural {
		t.Fatalf("error = %v; want a *LexError with Kind == KindStructural", lastErr)
	}
}

func TestScannerCommentSurvivesByteAtATimeFalseSentinelPrefix(t *testing.T) {
	// Content "a--x" looks like it might be starting the "-->" sentinel
	// after the first "--", but the "x" disproves it; delivered one byte
	// per chunk, the scanner must not give up at that chunk boundary.
	chunks := [][]byte{
		[]byte(`<!--`), []byte("a"), []byte("-"), []byte("-"), []byte("x"),
		[]byte("-"), []byte("-"), []byte(">"),
	}
	s := NewScanner(&chunkList{chunks: chunks})
	var got []tok
	var data string
	for {
		kind, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next() after %d tokens: %v", len(got), err)
		}
		if !ok {
			break
		}
		lit := s.Text(nil).Literal()
		if kind == KindCommentData {
			data += lit
			continue
		}
		got = append(got, tok{kind, lit})
	}
	if data != "a--x" {
		t.Errorf("comment data = %q; want %q", data, "a--x")
	}
	want := []tok{
		{KindCommentOpen, "<!--"},
		{KindCommentClose, "-->"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerEmptyTagSlashThenEndOfStreamRecovers(t *testing.T) {
	got := scanAll(t, `<a/`)
	want := []tok{
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "a"},
		{KindBadlyFormedEndOfStream, "/"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerEmptyTagSlashThenOtherCharIsStructuralError(t *testing.T) {
	s := NewScanner(&chunkList{chunks: [][]byte{[]byte(`<a/x>`)}})
	var lastErr error
	for {
		_, ok, err := s.Next()
		if err != nil {
			lastErr = err
			break
		}
		if !ok {
			break
		}
	}
	le, ok := lastErr.(*LexError)
	if !ok || le.Kind != KindStructural {
		t.Fatalf("error = %v; want a *LexError with Kind == KindStructural", lastErr)
	}
}

func TestScannerWhitespaceVsPCData(t *testing.T) {
	got := scanAll(t, "  \t<x/>")
	want := []tok{
		{KindWhitespaceContent, "  \t"},
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "x"},
		{KindEmptyTagClose, "/>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanAll mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerSpansChunkBoundary(t *testing.T) {
	s := NewScanner(&chunkList{chunks: [][]byte{
		[]byte(`<gree`),
		[]byte(`ting>hel`),
		[]byte(`lo</greeting>`),
	}})
	var got []tok
	for {
		kind, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next(): %v", err)
		}
		if !ok {
			break
		}
		got = append(got, tok{kind, s.Text(nil).Literal()})
	}
	want := []tok{
		{KindStartOrEmptyTagOpen, "<"},
		{KindTagName, "greeting"},
		{KindStartTagClose, ">"},
		{KindPCData, "hel"},
		{KindPCData, "lo"},
		{KindEndTagOpen, "</"},
		{KindTagName, "greeting"},
		{KindEndTagClose, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan across chunk boundaries mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerSpansChunkBoundaryPieceFlags(t *testing.T) {
	s := NewScanner(&chunkList{chunks: [][]byte{
		[]byte(`<gree`),
		[]byte(`ting>hel`),
		[]byte(`lo</greeting>`),
	}})
	var pieces []Text
	for {
		kind, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next(): %v", err)
		}
		if !ok {
			break
		}
		if kind != KindPCData {
			continue
		}
		pieces = append(pieces, *s.Text(nil))
	}
	if len(pieces) != 2 {
		t.Fatalf("got %d PCData pieces; want 2 (one per chunk split)", len(pieces))
	}
	if !pieces[0].IsInitial() || pieces[0].IsFinal() {
		t.Errorf("piece 1 flags: initial=%v final=%v; want true, false", pieces[0].IsInitial(), pieces[0].IsFinal())
	}
	if pieces[1].IsInitial() || !pieces[1].IsFinal() {
		t.Errorf("piece 2 flags: initial=%v final=%v; want false, true", pieces[1].IsInitial(), pieces[1].IsFinal())
	}
	if pieces[0].Literal()+pieces[1].Literal() != "hello" {
		t.Errorf("pieces concatenate to %q; want %q", pieces[0].Literal()+pieces[1].Literal(), "hello")
	}
}
