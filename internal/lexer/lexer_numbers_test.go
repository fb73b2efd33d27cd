package lexer

import "testing"

func TestNextToken_Numbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123", "123"},
		{"0", "0"},
		{"123.45", "123.45"},
		{"1.5e10", "1.5e10"},
		{"1e5", "1e5"},
		{"1E+5", "1E+5"},
		{"1e-5", "1e-5"},
		{"1.0", "1.0"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != NUMBER || tok.Literal != tt.want {
			t.Errorf("input %q: expected NUMBER %q, got %s %q", tt.input, tt.want, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_NumberThenDot(t *testing.T) {
	// "1..toString" style chains are out of scope; confirm a plain member
	// access after a number still tokenizes the dot separately.
	l := New("1 .x")
	if tok := l.NextToken(); tok.Type != NUMBER || tok.Literal != "1" {
		t.Fatalf("expected NUMBER 1, got %s %q", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != DOT {
		t.Fatalf("expected DOT, got %s", tok.Type)
	}
}

func TestNextToken_LeadingDotNumber(t *testing.T) {
	l := New(".5")
	tok := l.NextToken()
	if tok.Type != NUMBER || tok.Literal != ".5" {
		t.Fatalf("expected NUMBER .5, got %s %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_ExponentWithoutDigitsFallsBackToIdent(t *testing.T) {
	// "1e" with no following digits: only "1" is a number, "e" is a
	// separate identifier token.
	l := New("1e")
	if tok := l.NextToken(); tok.Type != NUMBER || tok.Literal != "1" {
		t.Fatalf("expected NUMBER 1, got %s %q", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != IDENT || tok.Literal != "e" {
		t.Fatalf("expected IDENT e, got %s %q", tok.Type, tok.Literal)
	}
}
