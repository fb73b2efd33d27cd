package lexer

import "testing"

func TestNextToken_LineCommentSkipped(t *testing.T) {
	l := New("1 // comment\n2")
	types := []TokenType{NUMBER, NUMBER, EOF}
	for i, want := range types {
		if tok := l.NextToken(); tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestNextToken_BlockCommentSkipped(t *testing.T) {
	l := New("1 /* comment\nspanning lines */ 2")
	if tok := l.NextToken(); tok.Type != NUMBER || tok.Literal != "1" {
		t.Fatalf("expected NUMBER 1, got %s %q", tok.Type, tok.Literal)
	}
	tok := l.NextToken()
	if tok.Type != NUMBER || tok.Literal != "2" {
		t.Fatalf("expected NUMBER 2, got %s %q", tok.Type, tok.Literal)
	}
	if tok.Pos.Line != 2 {
		t.Fatalf("expected line 2 after multi-line comment, got %d", tok.Pos.Line)
	}
}

func TestNextToken_UnterminatedBlockComment(t *testing.T) {
	l := New("1 /* never closes")
	l.NextToken()
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected a lexical error for unterminated block comment")
	}
}

func TestNextToken_PreserveComments(t *testing.T) {
	l := New("// hi\n1", WithPreserveComments(true))
	tok := l.NextToken()
	if tok.Type != COMMENT {
		t.Fatalf("expected COMMENT, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != NUMBER {
		t.Fatalf("expected NUMBER after comment, got %s", tok.Type)
	}
}
