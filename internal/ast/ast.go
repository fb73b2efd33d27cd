// Package ast defines the Abstract Syntax Tree node types produced by the
// parser: a tagged variant over statements and expressions, plus the
// support nodes (variable declarators, object properties, catch clauses)
// referenced by them.
package ast

import (
	"bytes"
	"strings"

	"github.com/lumenjs/lumen/internal/lexer"
)

// Node is the base interface implemented by every tree node.
type Node interface {
	// TokenLiteral returns the literal text of the token the node starts with.
	TokenLiteral() string

	// String renders the node back to source-like text for debugging.
	String() string

	// Pos returns the node's source position for diagnostics.
	Pos() lexer.Position
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action without producing a value.
type Statement interface {
	Node
	statementNode()
}

// SourceType distinguishes a top-level program parsed as a plain script
// from one parsed as a module. The compiler and module loader consult it;
// the grammar accepted is identical either way.
type SourceType int

const (
	ScriptSource SourceType = iota
	ModuleSource
)

// Program is the root of the syntax tree: an ordered list of top-level
// statements plus the source type under which they were parsed.
type Program struct {
	Statements []Statement
	SourceType SourceType
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, stmt := range p.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1, Offset: 0}
}

// Identifier represents a bare name reference, either as an expression
// (a load) or as the name half of a declarator/parameter/property.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }

// NumberLiteral represents a numeric literal. The lexer's NUMBER lexeme is
// parsed to a double eagerly so later stages never re-parse source text.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }
func (nl *NumberLiteral) Pos() lexer.Position  { return nl.Token.Pos }

// StringLiteral represents a single- or double-quoted string literal.
// Value holds the text after escape processing.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }
func (sl *StringLiteral) Pos() lexer.Position  { return sl.Token.Pos }

// TemplateLiteral represents a backtick-delimited template literal.
// Substitutions are not modeled; Value is the verbatim body text.
type TemplateLiteral struct {
	Token lexer.Token
	Value string
}

func (tl *TemplateLiteral) expressionNode()      {}
func (tl *TemplateLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TemplateLiteral) String() string       { return "`" + tl.Value + "`" }
func (tl *TemplateLiteral) Pos() lexer.Position  { return tl.Token.Pos }

// RegexpLiteral represents a regular-expression literal. It is carried
// through the tree as its source text (pattern and flags); no regex engine
// backs it.
type RegexpLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
}

func (rl *RegexpLiteral) expressionNode()      {}
func (rl *RegexpLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexpLiteral) String() string       { return "/" + rl.Pattern + "/" + rl.Flags }
func (rl *RegexpLiteral) Pos() lexer.Position  { return rl.Token.Pos }

// BooleanLiteral represents the true/false literals.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() lexer.Position  { return bl.Token.Pos }

// NullLiteral represents the null literal.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }
func (nl *NullLiteral) Pos() lexer.Position  { return nl.Token.Pos }

// UndefinedLiteral represents the undefined literal.
type UndefinedLiteral struct {
	Token lexer.Token
}

func (ul *UndefinedLiteral) expressionNode()      {}
func (ul *UndefinedLiteral) TokenLiteral() string { return ul.Token.Literal }
func (ul *UndefinedLiteral) String() string       { return "undefined" }
func (ul *UndefinedLiteral) Pos() lexer.Position  { return ul.Token.Pos }

// joinExpressions renders a comma-separated expression list, skipping nil
// entries (array holes) as an empty slot.
func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e == nil {
			parts[i] = ""
			continue
		}
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
