package lexer

import "testing"

func TestPosition_LineAndColumn(t *testing.T) {
	l := New("let\nx = 1;")

	tok := l.NextToken() // "let"
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Fatalf("expected 1:1, got %s", tok.Pos)
	}

	tok = l.NextToken() // "x"
	if tok.Pos.Line != 2 || tok.Pos.Column != 1 {
		t.Fatalf("expected 2:1, got %s", tok.Pos)
	}
}

func TestPosition_Unicode(t *testing.T) {
	// "Δ" is one rune; column counting must not be thrown off by its
	// multi-byte UTF-8 encoding.
	l := New("Δ + 1")
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "Δ" {
		t.Fatalf("expected IDENT Δ, got %s %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken() // "+"
	if tok.Pos.Column != 3 {
		t.Fatalf("expected '+' at column 3, got %d", tok.Pos.Column)
	}
}

func TestPeek_DoesNotConsume(t *testing.T) {
	l := New("1 + 2")
	peeked := l.Peek(0)
	if peeked.Type != NUMBER || peeked.Literal != "1" {
		t.Fatalf("expected peek to see NUMBER 1, got %s %q", peeked.Type, peeked.Literal)
	}
	next := l.NextToken()
	if next.Type != NUMBER || next.Literal != "1" {
		t.Fatalf("expected NextToken to still return NUMBER 1, got %s %q", next.Type, next.Literal)
	}
}

func TestPeek_Lookahead(t *testing.T) {
	l := New("1 + 2")
	if tok := l.Peek(2); tok.Type != NUMBER || tok.Literal != "2" {
		t.Fatalf("expected Peek(2) to see NUMBER 2, got %s %q", tok.Type, tok.Literal)
	}
	// Draining in order must still produce 1, +, 2.
	want := []TokenType{NUMBER, PLUS, NUMBER, EOF}
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, tok.Type)
		}
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := New("1 + 2")
	l.NextToken() // consume "1"
	saved := l.SaveState()

	l.NextToken() // consume "+"
	l.RestoreState(saved)

	tok := l.NextToken()
	if tok.Type != PLUS {
		t.Fatalf("expected restored state to re-read PLUS, got %s", tok.Type)
	}
}

func TestNew_StripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFlet"
	l := New(input)
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected LET after BOM strip, got %s %q", tok.Type, tok.Literal)
	}
}
