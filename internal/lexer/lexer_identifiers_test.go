package lexer

import "testing"

func TestNextToken_Identifiers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x", "x"},
		{"myVar", "myVar"},
		{"_private", "_private"},
		{"$el", "$el"},
		{"a1b2", "a1b2"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != IDENT || tok.Literal != tt.want {
			t.Errorf("input %q: expected IDENT %q, got %s %q", tt.input, tt.want, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"var", VAR},
		{"let", LET},
		{"const", CONST},
		{"function", FUNCTION},
		{"if", IF},
		{"else", ELSE},
		{"while", WHILE},
		{"for", FOR},
		{"return", RETURN},
		{"break", BREAK},
		{"continue", CONTINUE},
		{"throw", THROW},
		{"try", TRY},
		{"catch", CATCH},
		{"finally", FINALLY},
		{"typeof", TYPEOF},
		{"true", TRUE},
		{"false", FALSE},
		{"null", NULL},
		{"undefined", UNDEFINED},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.want {
			t.Errorf("input %q: expected %s, got %s", tt.input, tt.want, tok.Type)
		}
	}
}

func TestNextToken_KeywordPrefixIsIdentifier(t *testing.T) {
	// "letter" must not be lexed as LET + "ter".
	l := New("letter")
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "letter" {
		t.Fatalf("expected IDENT \"letter\", got %s %q", tok.Type, tok.Literal)
	}
}
