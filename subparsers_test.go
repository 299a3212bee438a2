package minim

import "testing"

type foundPieceSource interface {
	pieceSource
	Found() bool
}

func collectPieces(t *testing.T, src foundPieceSource) (string, bool) {
	t.Helper()
	var out []byte
	for {
		ok, err := src.Advance()
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if !ok {
			return string(out), src.Found()
		}
		txt := src.Materialize(nil)
		out = append(out, []byte(txt.Literal())...)
	}
}

func TestWhitespaceParserSinglePiece(t *testing.T) {
	b := newTestBuffer("   <x")
	p := NewPatternParser(b)
	NewWhitespaceParser(p)
	got, found := collectPieces(t, p)
	if !found || got != "   " {
		t.Fatalf("collectPieces = %q, %v; want %q, true", got, found, "   ")
	}
	ch, _ := b.Get()
	if ch != '<' {
		t.Fatalf("Get() after whitespace run = %q; want '<'", ch)
	}
}

func TestWhitespaceParserNotFound(t *testing.T) {
	b := newTestBuffer("<x")
	p := NewPatternParser(b)
	NewWhitespaceParser(p)
	got, found := collectPieces(t, p)
	if found || got != "" {
		t.Fatalf("collectPieces = %q, %v; want %q, false", got, found, "")
	}
}

func TestWhitespaceParserMultiPieceAcrossChunks(t *testing.T) {
	b := newTestBuffer("  ", " x")
	p := NewPatternParser(b)
	NewWhitespaceParser(p)

	ok, err := p.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance (piece 1) = %v, %v", ok, err)
	}
	txt := p.Materialize(nil)
	if !txt.IsInitial() || txt.IsFinal() {
		t.Fatalf("piece 1 flags: initial=%v final=%v; want true, false", txt.IsInitial(), txt.IsFinal())
	}

	ok, err = p.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance (piece 2) = %v, %v", ok, err)
	}
	txt = p.Materialize(nil)
	if txt.IsInitial() || !txt.IsFinal() {
		t.Fatalf("piece 2 flags: initial=%v final=%v; want false, true", txt.IsInitial(), txt.IsFinal())
	}

	ok, err = p.Advance()
	if err != nil {
		t.Fatalf("Advance (end): %v", err)
	}
	if ok {
		t.Fatalf("Advance after final piece returned a third piece")
	}
	if !p.Found() {
		t.Fatalf("Found() = false; want true")
	}
}

func TestNmTokenParserUnicodeName(t *testing.T) {
	b := newTestBuffer("naïve-ID_1 ")
	p := NewPatternParser(b)
	NewNmTokenParser(p)
	got, found := collectPieces(t, p)
	if !found || got != "naïve-ID_1" {
		t.Fatalf("collectPieces = %q, %v; want %q, true", got, found, "naïve-ID_1")
	}
}

func TestNmTokenParserRejectsDigitStart(t *testing.T) {
	b := newTestBuffer("1abc")
	p := NewPatternParser(b)
	NewNmTokenParser(p)
	got, found := collectPieces(t, p)
	if found || got != "" {
		t.Fatalf("collectPieces = %q, %v; want %q, false (a digit cannot start a name)", got, found, "")
	}
}

func TestSentinelParserSinglePiece(t *testing.T) {
	b := newTestBuffer("a comment-->after")
	p := NewSentinelParser(b)
	p.Reset([]byte("-->"))
	got, found := collectPieces(t, p)
	if !found || got != "a comment" {
		t.Fatalf("collectPieces = %q, %v; want %q, true", got, found, "a comment")
	}
	ok, err := b.StartsWith([]byte("-->"))
	if err != nil || !ok {
		t.Fatalf("sentinel left unconsumed after SentinelParser: %v, %v", ok, err)
	}
}

func TestSentinelParserEmptyRun(t *testing.T) {
	b := newTestBuffer("-->after")
	p := NewSentinelParser(b)
	p.Reset([]byte("-->"))
	got, found := collectPieces(t, p)
	if !found || got != "" {
		t.Fatalf("collectPieces = %q, %v; want %q, true (zero-length content still found)", got, found, "")
	}
}

func TestSentinelParserTruncated(t *testing.T) {
	b := newTestBuffer("no closing marker")
	p := NewSentinelParser(b)
	p.Reset([]byte("-->"))
	_, found := collectPieces(t, p)
	if found {
		t.Fatalf("Found() = true for a truncated run; want false")
	}
}
