package ast

import (
	"testing"

	"github.com/lumenjs/lumen/internal/lexer"
)

func ident(name string) *Identifier {
	return &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func number(lit string, val float64) *NumberLiteral {
	return &NumberLiteral{Token: lexer.Token{Type: lexer.NUMBER, Literal: lit}, Value: val}
}

func TestProgram_String(t *testing.T) {
	program := &Program{
		Statements: []Statement{
			&ExpressionStatement{Token: lexer.Token{Literal: "x"}, Expression: ident("x")},
		},
	}
	if got := program.String(); got != "x;\n" {
		t.Fatalf("unexpected program string: %q", got)
	}
}

func TestProgram_TokenLiteral_Empty(t *testing.T) {
	program := &Program{}
	if got := program.TokenLiteral(); got != "" {
		t.Fatalf("expected empty token literal, got %q", got)
	}
}

func TestBinaryExpression_String(t *testing.T) {
	be := &BinaryExpression{Left: ident("a"), Operator: "+", Right: ident("b")}
	if got := be.String(); got != "(a + b)" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestUnaryExpression_String(t *testing.T) {
	tests := []struct {
		operator string
		want     string
	}{
		{"-", "(-a)"},
		{"!", "(!a)"},
		{"typeof", "(typeof a)"},
		{"void", "(void a)"},
	}
	for _, tt := range tests {
		ue := &UnaryExpression{Operator: tt.operator, Operand: ident("a")}
		if got := ue.String(); got != tt.want {
			t.Errorf("operator %q: expected %q, got %q", tt.operator, tt.want, got)
		}
	}
}

func TestUpdateExpression_String(t *testing.T) {
	prefix := &UpdateExpression{Operator: "++", Operand: ident("x"), Prefix: true}
	if got := prefix.String(); got != "++x" {
		t.Fatalf("expected ++x, got %q", got)
	}
	postfix := &UpdateExpression{Operator: "--", Operand: ident("x"), Prefix: false}
	if got := postfix.String(); got != "x--" {
		t.Fatalf("expected x--, got %q", got)
	}
}

func TestAssignmentExpression_String(t *testing.T) {
	ae := &AssignmentExpression{Target: ident("x"), Operator: "+=", Value: number("1", 1)}
	if got := ae.String(); got != "x += 1" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestConditionalExpression_String(t *testing.T) {
	ce := &ConditionalExpression{Test: ident("a"), Consequent: number("1", 1), Alternate: number("2", 2)}
	if got := ce.String(); got != "a ? 1 : 2" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestCallExpression_String(t *testing.T) {
	ce := &CallExpression{Callee: ident("f"), Arguments: []Expression{ident("a"), number("1", 1)}}
	if got := ce.String(); got != "f(a, 1)" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestMemberExpression_String(t *testing.T) {
	dotted := &MemberExpression{Object: ident("obj"), Property: ident("key"), Computed: false}
	if got := dotted.String(); got != "obj.key" {
		t.Fatalf("unexpected dotted member string: %q", got)
	}
	computed := &MemberExpression{Object: ident("arr"), Property: number("0", 0), Computed: true}
	if got := computed.String(); got != "arr[0]" {
		t.Fatalf("unexpected computed member string: %q", got)
	}
}

func TestArrayLiteral_String_WithHoles(t *testing.T) {
	al := &ArrayLiteral{Elements: []Expression{number("1", 1), nil, number("3", 3)}}
	if got := al.String(); got != "[1, , 3]" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestObjectLiteral_String(t *testing.T) {
	ol := &ObjectLiteral{Properties: []*Property{
		{Key: ident("a"), Value: number("1", 1)},
		{Key: &StringLiteral{Value: "b"}, Value: number("2", 2)},
	}}
	if got := ol.String(); got != "{a: 1, \"b\": 2}" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestObjectLiteral_ComputedProperty_String(t *testing.T) {
	ol := &ObjectLiteral{Properties: []*Property{
		{Key: ident("k"), Value: number("1", 1), Computed: true},
	}}
	if got := ol.String(); got != "{[k]: 1}" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestFunctionExpression_String(t *testing.T) {
	fe := &FunctionExpression{
		Name:   ident("add"),
		Params: []*Identifier{ident("a"), ident("b")},
		Body: &BlockStatement{Statements: []Statement{
			&ReturnStatement{Value: ident("a")},
		}},
	}
	got := fe.String()
	want := "function add(a, b) {\n  return a;\n}"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTemplateLiteral_String(t *testing.T) {
	tl := &TemplateLiteral{Value: "hello world"}
	if got := tl.String(); got != "`hello world`" {
		t.Fatalf("unexpected string: %q", got)
	}
}
