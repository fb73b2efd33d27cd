package parser

import (
	"strconv"
	"strings"

	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/lexer"
)

// parseExpression is the Pratt loop: parse one prefix production, then
// keep folding infix operators whose precedence exceeds the caller's
// floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.syntaxError(tok.Pos, "could not parse %q as a number", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: tok, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	return &ast.TemplateLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseRegexpLiteral() ast.Expression {
	tok := p.curToken
	body := strings.TrimPrefix(tok.Literal, "/")
	lastSlash := strings.LastIndex(body, "/")
	if lastSlash < 0 {
		p.syntaxError(tok.Pos, "malformed regular expression literal %q", tok.Literal)
		return &ast.RegexpLiteral{Token: tok, Pattern: body}
	}
	return &ast.RegexpLiteral{Token: tok, Pattern: body[:lastSlash], Flags: body[lastSlash+1:]}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Operand: operand}
}

func (p *Parser) parsePrefixUpdateExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(UNARY)
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: operand, Prefix: true}
}

func (p *Parser) parsePostfixUpdateExpression(left ast.Expression) ast.Expression {
	return &ast.UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Operand: left, Prefix: false}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	consequent := p.parseExpression(ASSIGNMENT)
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	alternate := p.parseExpression(ASSIGNMENT)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !isAssignableTarget(left) {
		p.syntaxError(tok.Pos, "invalid assignment target")
	}
	p.nextToken()
	// Assignment is right-associative: parse the value one precedence
	// level below ASSIGNMENT so a chain like "a = b = c" recurses into
	// the value instead of folding back into this call's target.
	value := p.parseExpression(ASSIGNMENT - 1)
	return &ast.AssignmentExpression{Token: tok, Target: left, Operator: tok.Literal, Value: value}
}

func isAssignableTarget(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseExpressionList(lexer.RPAREN)
	return &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(ASSIGNMENT))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(ASSIGNMENT))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	property := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return &ast.MemberExpression{Token: tok, Object: object, Property: property, Computed: false}
}

func (p *Parser) parseComputedMemberExpression(object ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	property := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.MemberExpression{Token: tok, Object: object, Property: property, Computed: true}
}

// parseArrayLiteral parses "[" elements "]", where a pair of adjacent
// commas (or a leading/trailing comma) represents an elision hole.
func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	var elements []ast.Expression

	for !p.peekTokenIs(lexer.RBRACKET) {
		if p.peekTokenIs(lexer.COMMA) {
			elements = append(elements, nil)
			p.nextToken()
			continue
		}
		p.nextToken()
		elements = append(elements, p.parseExpression(ASSIGNMENT))
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.ArrayLiteral{Token: tok, Elements: elements}
}

// parseObjectLiteral parses "{" key ":" value ("," key ":" value)* "}".
// Keys are restricted to identifier, string, number, or a computed
// "[" expr "]" form; shorthand and methods are not accepted.
func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	obj := &ast.ObjectLiteral{Token: tok}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		prop := p.parseObjectProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseObjectProperty() *ast.Property {
	propTok := p.curToken
	var key ast.Expression
	computed := false

	switch p.curToken.Type {
	case lexer.IDENT:
		key = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.STRING:
		key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.NUMBER:
		key = p.parseNumberLiteral()
	case lexer.LBRACKET:
		computed = true
		p.nextToken()
		key = p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
	default:
		p.syntaxError(p.curToken.Pos, "invalid object literal key %q", p.curToken.Literal)
		return nil
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(ASSIGNMENT)

	return &ast.Property{Token: propTok, Key: key, Value: value, Computed: computed}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	tok := p.curToken
	fe := &ast.FunctionExpression{Token: tok}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fe.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fe.Params = p.parseParameterList()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fe.Body = p.parseBlockStatement()

	return fe
}

func (p *Parser) parseParameterList() []*ast.Identifier {
	var params []*ast.Identifier

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}
