package parser

import (
	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVariableDeclaration()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	stmt := &ast.ExpressionStatement{Token: tok, Expression: expr}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

func declarationKind(t lexer.TokenType) ast.DeclarationKind {
	switch t {
	case lexer.LET:
		return ast.DeclarationLet
	case lexer.CONST:
		return ast.DeclarationConst
	default:
		return ast.DeclarationVar
	}
}

// parseVariableDeclaration parses "var|let|const" name [= init] ("," name
// [= init])* [;]. The trailing semicolon is optional, matching the
// parser-wide policy of treating statement terminators as optional.
func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{Token: p.curToken, Kind: declarationKind(p.curToken.Type)}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return decl
		}
		declarator := &ast.VariableDeclarator{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			declarator.Init = p.parseExpression(ASSIGNMENT)
		}

		decl.Declarations = append(decl.Declarations, declarator)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	fd := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return fd
	}
	fd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.LPAREN) {
		return fd
	}
	fd.Params = p.parseParameterList()

	if !p.expectPeek(lexer.LBRACE) {
		return fd
	}
	fd.Body = p.parseBlockStatement()

	return fd
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	rs := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		return rs
	}

	p.nextToken()
	rs.Value = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return rs
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	is := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return is
	}
	p.nextToken()
	is.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return is
	}

	p.nextToken()
	is.Consequent = p.parseStatement()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		is.Alternate = p.parseStatement()
	}

	return is
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	ws := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return ws
	}
	p.nextToken()
	ws.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return ws
	}

	p.nextToken()
	p.loopDepth++
	ws.Body = p.parseStatement()
	p.loopDepth--

	return ws
}

// parseForStatement parses the C-style "for (init; test; update) body"
// form, the only for-loop shape the grammar accepts. Any of the three
// clauses may be empty.
func (p *Parser) parseForStatement() *ast.ForStatement {
	fs := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return fs
	}

	if p.peekTokenIs(lexer.VAR) || p.peekTokenIs(lexer.LET) || p.peekTokenIs(lexer.CONST) {
		p.nextToken()
		fs.Init = p.parseVariableDeclaration()
	} else if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		tok := p.curToken
		expr := p.parseExpression(LOWEST)
		fs.Init = &ast.ExpressionStatement{Token: tok, Expression: expr}
		if !p.expectPeek(lexer.SEMICOLON) {
			return fs
		}
	} else {
		p.nextToken() // consume the leading semicolon
	}

	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		fs.Test = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return fs
	}

	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		fs.Update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return fs
	}

	p.nextToken()
	p.loopDepth++
	fs.Body = p.parseStatement()
	p.loopDepth--

	return fs
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	bs := &ast.BreakStatement{Token: p.curToken}
	if p.loopDepth == 0 {
		p.syntaxError(bs.Token.Pos, "'break' outside of a loop")
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return bs
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	cs := &ast.ContinueStatement{Token: p.curToken}
	if p.loopDepth == 0 {
		p.syntaxError(cs.Token.Pos, "'continue' outside of a loop")
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return cs
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	ts := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	ts.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return ts
}

// parseTryStatement parses "try" block ["catch" ["(" ident ")"] block]
// ["finally" block]. At least one of catch/finally must be present; the
// grammar note in §4.2 treats this as the parser's responsibility, so an
// absence of both is reported as a syntax error rather than silently
// accepted.
func (p *Parser) parseTryStatement() *ast.TryStatement {
	ts := &ast.TryStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LBRACE) {
		return ts
	}
	ts.Block = p.parseBlockStatement()

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		cc := &ast.CatchClause{Token: p.curToken}

		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return ts
			}
			cc.Param = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
			if !p.expectPeek(lexer.RPAREN) {
				return ts
			}
		}

		if !p.expectPeek(lexer.LBRACE) {
			return ts
		}
		cc.Body = p.parseBlockStatement()
		ts.Catch = cc
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return ts
		}
		ts.Finally = p.parseBlockStatement()
	}

	if ts.Catch == nil && ts.Finally == nil {
		p.syntaxError(ts.Token.Pos, "missing catch or finally after try block")
	}

	return ts
}
