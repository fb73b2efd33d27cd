package ast

import (
	"bytes"

	"github.com/lumenjs/lumen/internal/lexer"
)

// BinaryExpression represents a binary operator application, e.g. a + b,
// x === y, p && q. Logical-and/logical-or are represented here too; the
// compiler evaluates both operands and emits a LogicalAnd/LogicalOr opcode,
// which selects the result, rather than emitting jumps.
type BinaryExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() lexer.Position  { return be.Token.Pos }
func (be *BinaryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(be.Left.String())
	out.WriteString(" " + be.Operator + " ")
	out.WriteString(be.Right.String())
	out.WriteString(")")
	return out.String()
}

// UnaryExpression represents a prefix operator application: +x, -x, !x,
// ~x, typeof x, void x, delete x.
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Pos() lexer.Position  { return ue.Token.Pos }
func (ue *UnaryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(ue.Operator)
	if c := ue.Operator[len(ue.Operator)-1]; c >= 'a' && c <= 'z' {
		out.WriteString(" ")
	}
	out.WriteString(ue.Operand.String())
	out.WriteString(")")
	return out.String()
}

// UpdateExpression represents ++ or -- applied to an assignable target,
// either as a prefix (++x) or postfix (x++) operator.
type UpdateExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
	Prefix   bool
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) Pos() lexer.Position  { return ue.Token.Pos }
func (ue *UpdateExpression) String() string {
	if ue.Prefix {
		return ue.Operator + ue.Operand.String()
	}
	return ue.Operand.String() + ue.Operator
}

// AssignmentExpression represents a plain (=) or compound (+=, -=, ...)
// assignment to an identifier or member target.
type AssignmentExpression struct {
	Token    lexer.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) Pos() lexer.Position  { return ae.Token.Pos }
func (ae *AssignmentExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ae.Target.String())
	out.WriteString(" " + ae.Operator + " ")
	out.WriteString(ae.Value.String())
	return out.String()
}

// ConditionalExpression represents the ternary test ? consequent : alternate.
type ConditionalExpression struct {
	Token      lexer.Token
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConditionalExpression) Pos() lexer.Position  { return ce.Token.Pos }
func (ce *ConditionalExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ce.Test.String())
	out.WriteString(" ? ")
	out.WriteString(ce.Consequent.String())
	out.WriteString(" : ")
	out.WriteString(ce.Alternate.String())
	return out.String()
}

// CallExpression represents a function call: callee(args...).
type CallExpression struct {
	Token     lexer.Token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() lexer.Position  { return ce.Token.Pos }
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ce.Callee.String())
	out.WriteString("(")
	out.WriteString(joinExpressions(ce.Arguments))
	out.WriteString(")")
	return out.String()
}

// MemberExpression represents property access, either dotted (obj.key) or
// computed (obj[expr]). For dotted access Property is an *Identifier;
// for computed access it is an arbitrary expression.
type MemberExpression struct {
	Token    lexer.Token
	Object   Expression
	Property Expression
	Computed bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Pos() lexer.Position  { return me.Token.Pos }
func (me *MemberExpression) String() string {
	var out bytes.Buffer
	out.WriteString(me.Object.String())
	if me.Computed {
		out.WriteString("[")
		out.WriteString(me.Property.String())
		out.WriteString("]")
	} else {
		out.WriteString(".")
		out.WriteString(me.Property.String())
	}
	return out.String()
}

// ArrayLiteral represents an array literal. A nil entry in Elements
// represents an elision (hole) between commas, e.g. [1, , 3].
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() lexer.Position  { return al.Token.Pos }
func (al *ArrayLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	out.WriteString(joinExpressions(al.Elements))
	out.WriteString("]")
	return out.String()
}

// Property is a single key: value entry of an object literal. Key is an
// *Identifier, *StringLiteral, *NumberLiteral, or (when Computed) an
// arbitrary expression.
type Property struct {
	Token    lexer.Token
	Key      Expression
	Value    Expression
	Computed bool
}

func (p *Property) TokenLiteral() string { return p.Token.Literal }
func (p *Property) Pos() lexer.Position  { return p.Token.Pos }
func (p *Property) String() string {
	var out bytes.Buffer
	if p.Computed {
		out.WriteString("[")
		out.WriteString(p.Key.String())
		out.WriteString("]")
	} else {
		out.WriteString(p.Key.String())
	}
	out.WriteString(": ")
	out.WriteString(p.Value.String())
	return out.String()
}

// ObjectLiteral represents an object literal with key:value properties.
// Shorthand properties and methods are not modeled.
type ObjectLiteral struct {
	Token      lexer.Token
	Properties []*Property
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) Pos() lexer.Position  { return ol.Token.Pos }
func (ol *ObjectLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, p := range ol.Properties {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString("}")
	return out.String()
}

// FunctionExpression represents a function literal used as an expression.
// Name is nil for anonymous function expressions. Async/Generator are
// carried through the tree but ignored by the compiler.
type FunctionExpression struct {
	Token     lexer.Token
	Name      *Identifier
	Params    []*Identifier
	Body      *BlockStatement
	Async     bool
	Generator bool
}

func (fe *FunctionExpression) expressionNode()      {}
func (fe *FunctionExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *FunctionExpression) Pos() lexer.Position  { return fe.Token.Pos }
func (fe *FunctionExpression) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if fe.Name != nil {
		out.WriteString(" " + fe.Name.Value)
	}
	out.WriteString("(")
	for i, p := range fe.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Value)
	}
	out.WriteString(") ")
	out.WriteString(fe.Body.String())
	return out.String()
}
