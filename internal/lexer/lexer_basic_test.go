package lexer

import "testing"

func TestNextToken_Punctuation(t *testing.T) {
	input := `(){}[];,.: ?`
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		SEMICOLON, COMMA, DOT, COLON, QUESTION, EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_Spread(t *testing.T) {
	l := New("...")
	tok := l.NextToken()
	if tok.Type != DOTDOTDOT || tok.Literal != "..." {
		t.Fatalf("expected DOTDOTDOT, got %s (%q)", tok.Type, tok.Literal)
	}
	if l.NextToken().Type != EOF {
		t.Fatalf("expected EOF after spread")
	}
}

func TestNextToken_DotVsSpread(t *testing.T) {
	l := New("a.b")
	types := []TokenType{IDENT, DOT, IDENT, EOF}
	for i, want := range types {
		if tok := l.NextToken(); tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestTokenize_ReproducesSource(t *testing.T) {
	// Property 1 (§8): concatenating lexemes reproduces the source minus
	// whitespace and comments.
	input := `let x=1+2;`
	l := New(input)
	tokens := l.Tokenize()

	var reconstructed string
	for _, tok := range tokens {
		if tok.Type == EOF {
			continue
		}
		reconstructed += tok.Literal
	}
	if reconstructed != "letx=1+2;" {
		t.Fatalf("expected %q, got %q", "letx=1+2;", reconstructed)
	}
}

func TestSimpleToken_Position(t *testing.T) {
	l := New("let")
	tok := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Fatalf("expected 1:1, got %s", tok.Pos)
	}
}
