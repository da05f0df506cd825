package parser

import (
	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/lexer"
)

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// parseStatementList parses statements up to, but not including, the
// closing brace.
func (p *Parser) parseStatementList() *ast.StatementList {
	list := &ast.StatementList{}
	start := p.current().Start
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		before := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			list.Statements = append(list.Statements, stmt)
		}
		if p.pos == before {
			p.advance()
		}
	}
	return finish(p, list, start)
}

func (p *Parser) parseStatement() ast.Statement {
	start := p.current().Start

	var attrs []*ast.AttributeDeclaration
	if p.current().Kind == lexer.TokLBracket {
		attrs = p.parseAttributes()
	}

	switch p.current().Kind {
	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokSemicolon:
		p.advance()
		return finish(p, &ast.EmptyStatement{}, start)

	case lexer.TokReturn:
		p.advance()
		stmt := &ast.ReturnStatement{}
		if p.current().Kind != lexer.TokSemicolon {
			stmt.Value = p.parseExpressionList()
		}
		p.expect(lexer.TokSemicolon)
		return finish(p, stmt, start)

	case lexer.TokIf:
		return p.parseIf(attrs, start)

	case lexer.TokFor:
		return p.parseFor(attrs, start)

	case lexer.TokWhile:
		p.advance()
		stmt := &ast.WhileStatement{Attributes: attrs}
		stmt.Condition = p.parseCondition()
		stmt.Statement = p.parseStatement()
		return finish(p, stmt, start)

	case lexer.TokDo:
		p.advance()
		stmt := &ast.WhileStatement{Attributes: attrs, IsDoWhile: true}
		stmt.Statement = p.parseStatement()
		p.expect(lexer.TokWhile)
		stmt.Condition = p.parseCondition()
		p.expect(lexer.TokSemicolon)
		return finish(p, stmt, start)

	case lexer.TokSwitch:
		return p.parseSwitch(attrs, start)

	case lexer.TokBreak, lexer.TokContinue, lexer.TokDiscard:
		tok := p.advance()
		kw := &ast.KeywordExpression{Name: p.identifier(tok)}
		kw.Name.Text = tok.Kind.String()
		finish(p, kw, start)
		p.expect(lexer.TokSemicolon)
		return finish(p, &ast.ExpressionStatement{Expression: kw}, start)

	case lexer.TokStruct:
		if p.peek(2).Kind == lexer.TokLBrace {
			st := p.parseStructType()
			p.expect(lexer.TokSemicolon)
			return finish(p, &ast.DeclarationStatement{Content: st}, start)
		}
	}

	if p.looksLikeDeclaration() {
		return p.parseDeclarationStatement(attrs, start)
	}

	expr := p.parseExpressionList()
	if _, ok := p.expect(lexer.TokSemicolon); !ok {
		p.synchronize()
	}
	return finish(p, &ast.ExpressionStatement{Expression: expr}, start)
}

func (p *Parser) parseDeclarationStatement(attrs []*ast.AttributeDeclaration, start int) ast.Statement {
	quals := p.parseQualifiers()
	typePos := p.pos
	typ := p.parseType()
	if typ == nil {
		p.synchronize()
		return finish(p, &ast.EmptyStatement{}, start)
	}
	v := p.parseVariableDeclaration(attrs, quals, typ, typePos, start)
	return finish(p, &ast.DeclarationStatement{Content: v}, start)
}

func (p *Parser) parseBlock() *ast.BlockStatement {
	start := p.advance().Start
	block := &ast.BlockStatement{Statements: p.parseStatementList()}
	p.expect(lexer.TokRBrace)
	return finish(p, block, start)
}

// parseCondition parses a parenthesized condition.
func (p *Parser) parseCondition() ast.Expression {
	p.expect(lexer.TokLParen)
	cond := p.parseExpressionList()
	p.expect(lexer.TokRParen)
	return cond
}

func (p *Parser) parseIf(attrs []*ast.AttributeDeclaration, start int) ast.Statement {
	p.advance()
	stmt := &ast.IfStatement{Attributes: attrs}
	stmt.Condition = p.parseCondition()
	stmt.Then = p.parseStatement()
	if p.match(lexer.TokElse) {
		stmt.Else = p.parseStatement()
	}
	return finish(p, stmt, start)
}

func (p *Parser) parseFor(attrs []*ast.AttributeDeclaration, start int) ast.Statement {
	p.advance()
	stmt := &ast.ForStatement{Attributes: attrs}
	p.expect(lexer.TokLParen)

	initStart := p.current().Start
	switch {
	case p.current().Kind == lexer.TokSemicolon:
		p.advance()
		stmt.Start = finish(p, &ast.EmptyStatement{}, initStart)
	case p.looksLikeDeclaration():
		stmt.Start = p.parseDeclarationStatement(nil, initStart)
	default:
		expr := p.parseExpressionList()
		p.expect(lexer.TokSemicolon)
		stmt.Start = finish(p, &ast.ExpressionStatement{Expression: expr}, initStart)
	}

	if p.current().Kind != lexer.TokSemicolon {
		stmt.Condition = p.parseExpressionList()
	}
	p.expect(lexer.TokSemicolon)
	if p.current().Kind != lexer.TokRParen {
		stmt.Next = p.parseExpressionList()
	}
	p.expect(lexer.TokRParen)
	stmt.Body = p.parseStatement()
	return finish(p, stmt, start)
}

// parseSwitch groups consecutive case labels with the statements that
// follow them.
func (p *Parser) parseSwitch(attrs []*ast.AttributeDeclaration, start int) ast.Statement {
	p.advance()
	stmt := &ast.SwitchStatement{Attributes: attrs}
	stmt.Condition = p.parseCondition()
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return finish(p, stmt, start)
	}

	for p.current().Kind == lexer.TokCase || p.current().Kind == lexer.TokDefault {
		groupStart := p.current().Start
		group := &ast.SwitchCaseGroup{}
		for p.current().Kind == lexer.TokCase || p.current().Kind == lexer.TokDefault {
			caseStart := p.current().Start
			label := &ast.CaseStatement{}
			if p.advance().Kind == lexer.TokCase {
				label.Case = p.parseExpression()
			}
			p.expect(lexer.TokColon)
			group.Cases = append(group.Cases, finish(p, label, caseStart))
		}

		listStart := p.current().Start
		list := &ast.StatementList{}
		for !p.atCaseBoundary() {
			before := p.pos
			if s := p.parseStatement(); s != nil {
				list.Statements = append(list.Statements, s)
			}
			if p.pos == before {
				p.advance()
			}
		}
		group.Statements = finish(p, list, listStart)
		stmt.Groups = append(stmt.Groups, finish(p, group, groupStart))
	}

	if p.current().Kind != lexer.TokRBrace {
		p.error("expected case or default")
		p.synchronize()
	}
	p.expect(lexer.TokRBrace)
	return finish(p, stmt, start)
}

func (p *Parser) atCaseBoundary() bool {
	switch p.current().Kind {
	case lexer.TokCase, lexer.TokDefault, lexer.TokRBrace, lexer.TokEOF:
		return true
	}
	return false
}
