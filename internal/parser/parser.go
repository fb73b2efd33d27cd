// Package parser implements a recursive-descent parser with Pratt-style
// operator precedence, turning a token stream into an *ast.Program.
package parser

import (
	"fmt"

	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/lexer"
)

// Precedence levels, lowest to highest, per the language's expression
// grammar: assignment, conditional, logical-or/nullish, logical-and,
// equality, relational, additive, multiplicative (exponentiation shares
// this level), unary, postfix update, call/member.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT
	CONDITIONAL
	LOGICAL_OR
	LOGICAL_AND
	EQUALITY
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	POSTFIX
	CALL
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:                   ASSIGNMENT,
	lexer.PLUS_ASSIGN:              ASSIGNMENT,
	lexer.MINUS_ASSIGN:             ASSIGNMENT,
	lexer.STAR_ASSIGN:              ASSIGNMENT,
	lexer.SLASH_ASSIGN:             ASSIGNMENT,
	lexer.PERCENT_ASSIGN:           ASSIGNMENT,
	lexer.STAR_STAR_ASSIGN:         ASSIGNMENT,
	lexer.AMP_ASSIGN:               ASSIGNMENT,
	lexer.PIPE_ASSIGN:              ASSIGNMENT,
	lexer.CARET_ASSIGN:             ASSIGNMENT,
	lexer.LESS_LESS_ASSIGN:         ASSIGNMENT,
	lexer.GREATER_GREATER_ASSIGN:   ASSIGNMENT,
	lexer.AMP_AMP_ASSIGN:           ASSIGNMENT,
	lexer.PIPE_PIPE_ASSIGN:         ASSIGNMENT,
	lexer.QUESTION_QUESTION_ASSIGN: ASSIGNMENT,
	lexer.QUESTION:                 CONDITIONAL,
	lexer.PIPE_PIPE:                LOGICAL_OR,
	lexer.QUESTION_QUESTION:        LOGICAL_OR,
	lexer.AMP_AMP:                  LOGICAL_AND,
	lexer.EQ_EQ_EQ:                 EQUALITY,
	lexer.NOT_EQ_EQ:                EQUALITY,
	lexer.EQ:                       EQUALITY,
	lexer.NOT_EQ:                   EQUALITY,
	lexer.LESS:                     RELATIONAL,
	lexer.LESS_EQ:                  RELATIONAL,
	lexer.GREATER:                  RELATIONAL,
	lexer.GREATER_EQ:               RELATIONAL,
	lexer.IN:                       RELATIONAL,
	lexer.INSTANCEOF:               RELATIONAL,
	lexer.PLUS:                     ADDITIVE,
	lexer.MINUS:                    ADDITIVE,
	lexer.STAR:                     MULTIPLICATIVE,
	lexer.SLASH:                    MULTIPLICATIVE,
	lexer.PERCENT:                  MULTIPLICATIVE,
	lexer.STAR_STAR:                MULTIPLICATIVE,
	lexer.AMP:                      MULTIPLICATIVE,
	lexer.PIPE:                     MULTIPLICATIVE,
	lexer.CARET:                    MULTIPLICATIVE,
	lexer.LESS_LESS:                MULTIPLICATIVE,
	lexer.GREATER_GREATER:          MULTIPLICATIVE,
	lexer.GREATER_GREATER_GREATER:  MULTIPLICATIVE,
	lexer.PLUS_PLUS:                POSTFIX,
	lexer.MINUS_MINUS:              POSTFIX,
	lexer.LPAREN:                   CALL,
	lexer.LBRACKET:                 CALL,
	lexer.DOT:                      CALL,
	lexer.QUESTION_DOT:             CALL,
}

// assignmentOperators holds every token type that is a valid right-hand
// side of an assignment target (plain "=" plus every compound form).
var assignmentOperators = map[lexer.TokenType]bool{
	lexer.ASSIGN: true, lexer.PLUS_ASSIGN: true, lexer.MINUS_ASSIGN: true,
	lexer.STAR_ASSIGN: true, lexer.SLASH_ASSIGN: true, lexer.PERCENT_ASSIGN: true,
	lexer.STAR_STAR_ASSIGN: true, lexer.AMP_ASSIGN: true, lexer.PIPE_ASSIGN: true,
	lexer.CARET_ASSIGN: true, lexer.LESS_LESS_ASSIGN: true, lexer.GREATER_GREATER_ASSIGN: true,
	lexer.AMP_AMP_ASSIGN: true, lexer.PIPE_PIPE_ASSIGN: true, lexer.QUESTION_QUESTION_ASSIGN: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser builds an *ast.Program from a *lexer.Lexer via a classic
// two-token (current/peek) recursive-descent/Pratt design.
type Parser struct {
	l      *lexer.Lexer
	source string

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*errors.ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	loopDepth int
}

// New creates a Parser reading tokens from l. source is retained only for
// error-context rendering.
func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{l: l, source: source}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:           p.parseIdentifier,
		lexer.NUMBER:          p.parseNumberLiteral,
		lexer.STRING:          p.parseStringLiteral,
		lexer.TEMPLATE_STRING: p.parseTemplateLiteral,
		lexer.REGEXP:          p.parseRegexpLiteral,
		lexer.TRUE:            p.parseBooleanLiteral,
		lexer.FALSE:           p.parseBooleanLiteral,
		lexer.NULL:            p.parseNullLiteral,
		lexer.UNDEFINED:       p.parseUndefinedLiteral,
		lexer.LPAREN:          p.parseGroupedExpression,
		lexer.LBRACKET:        p.parseArrayLiteral,
		lexer.LBRACE:          p.parseObjectLiteral,
		lexer.FUNCTION:        p.parseFunctionExpression,
		lexer.BANG:            p.parseUnaryExpression,
		lexer.MINUS:           p.parseUnaryExpression,
		lexer.PLUS:            p.parseUnaryExpression,
		lexer.TILDE:           p.parseUnaryExpression,
		lexer.TYPEOF:          p.parseUnaryExpression,
		lexer.VOID:            p.parseUnaryExpression,
		lexer.DELETE:          p.parseUnaryExpression,
		lexer.PLUS_PLUS:       p.parsePrefixUpdateExpression,
		lexer.MINUS_MINUS:     p.parsePrefixUpdateExpression,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinaryExpression, lexer.MINUS: p.parseBinaryExpression,
		lexer.STAR: p.parseBinaryExpression, lexer.SLASH: p.parseBinaryExpression,
		lexer.PERCENT: p.parseBinaryExpression, lexer.STAR_STAR: p.parseBinaryExpression,
		lexer.EQ: p.parseBinaryExpression, lexer.NOT_EQ: p.parseBinaryExpression,
		lexer.EQ_EQ_EQ: p.parseBinaryExpression, lexer.NOT_EQ_EQ: p.parseBinaryExpression,
		lexer.LESS: p.parseBinaryExpression, lexer.LESS_EQ: p.parseBinaryExpression,
		lexer.GREATER: p.parseBinaryExpression, lexer.GREATER_EQ: p.parseBinaryExpression,
		lexer.AMP: p.parseBinaryExpression, lexer.PIPE: p.parseBinaryExpression,
		lexer.CARET: p.parseBinaryExpression, lexer.LESS_LESS: p.parseBinaryExpression,
		lexer.GREATER_GREATER: p.parseBinaryExpression, lexer.GREATER_GREATER_GREATER: p.parseBinaryExpression,
		lexer.AMP_AMP: p.parseBinaryExpression, lexer.PIPE_PIPE: p.parseBinaryExpression,
		lexer.QUESTION_QUESTION: p.parseBinaryExpression,
		lexer.IN:                p.parseBinaryExpression, lexer.INSTANCEOF: p.parseBinaryExpression,
		lexer.QUESTION:    p.parseConditionalExpression,
		lexer.LPAREN:      p.parseCallExpression,
		lexer.DOT:         p.parseMemberExpression,
		lexer.LBRACKET:    p.parseComputedMemberExpression,
		lexer.PLUS_PLUS:   p.parsePostfixUpdateExpression,
		lexer.MINUS_MINUS: p.parsePostfixUpdateExpression,

		lexer.ASSIGN: p.parseAssignmentExpression, lexer.PLUS_ASSIGN: p.parseAssignmentExpression,
		lexer.MINUS_ASSIGN: p.parseAssignmentExpression, lexer.STAR_ASSIGN: p.parseAssignmentExpression,
		lexer.SLASH_ASSIGN: p.parseAssignmentExpression, lexer.PERCENT_ASSIGN: p.parseAssignmentExpression,
		lexer.STAR_STAR_ASSIGN: p.parseAssignmentExpression, lexer.AMP_ASSIGN: p.parseAssignmentExpression,
		lexer.PIPE_ASSIGN: p.parseAssignmentExpression, lexer.CARET_ASSIGN: p.parseAssignmentExpression,
		lexer.LESS_LESS_ASSIGN: p.parseAssignmentExpression, lexer.GREATER_GREATER_ASSIGN: p.parseAssignmentExpression,
		lexer.AMP_AMP_ASSIGN: p.parseAssignmentExpression, lexer.PIPE_PIPE_ASSIGN: p.parseAssignmentExpression,
		lexer.QUESTION_QUESTION_ASSIGN: p.parseAssignmentExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every parse error accumulated while parsing, including
// lexical errors surfaced by the underlying lexer.
func (p *Parser) Errors() []*errors.ParseError {
	all := make([]*errors.ParseError, 0, len(p.errors)+len(p.l.Errors()))
	for _, le := range p.l.Errors() {
		all = append(all, errors.NewParseError(errors.LexicalError, le.Message, p.source, le.Pos))
	}
	all = append(all, p.errors...)
	return all
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances past the peek token if it matches t, recording an
// UnexpectedToken error and leaving the cursor in place otherwise.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	p.errors = append(p.errors, errors.NewParseError(errors.UnexpectedToken, msg, p.source, p.peekToken.Pos))
}

func (p *Parser) syntaxError(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, errors.NewParseError(errors.SyntaxError, fmt.Sprintf(format, args...), p.source, pos))
}

func (p *Parser) noPrefixParseFnError(t lexer.Token) {
	msg := fmt.Sprintf("no prefix parse function for %s found", t.Type)
	p.errors = append(p.errors, errors.NewParseError(errors.UnexpectedToken, msg, p.source, t.Pos))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program. Recovery on
// a top-level statement error skips one token and continues so multiple
// errors can be collected in one pass.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}, SourceType: ast.ScriptSource}

	for !p.curTokenIs(lexer.EOF) {
		errsBefore := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.errors) > errsBefore && stmt == nil {
			p.nextToken()
			continue
		}
		p.nextToken()
	}

	return program
}
