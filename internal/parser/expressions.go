package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/lexer"
)

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// parseExpressionList parses a comma expression. A single expression is
// returned as is.
func (p *Parser) parseExpressionList() ast.Expression {
	start := p.current().Start
	first := p.parseAssignment()
	if p.current().Kind != lexer.TokComma {
		return first
	}
	list := &ast.ExpressionList{Expressions: []ast.Expression{first}}
	for p.match(lexer.TokComma) {
		list.Expressions = append(list.Expressions, p.parseAssignment())
	}
	return finish(p, list, start)
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	start := p.current().Start
	target := p.parseConditional()

	tok := p.current()
	if !tok.Kind.IsAssignment() {
		return target
	}
	p.advance()
	op, _ := ast.ParseAssignmentOperator(tok.Kind.String())
	value := p.parseAssignment()
	return finish(p, &ast.AssignmentExpression{Operator: op, Target: target, Value: value}, start)
}

func (p *Parser) parseConditional() ast.Expression {
	start := p.current().Start
	cond := p.parseLogicalOr()
	if !p.match(lexer.TokQuestion) {
		return cond
	}
	expr := &ast.ConditionalExpression{Condition: cond}
	expr.Left = p.parseAssignment()
	p.expect(lexer.TokColon)
	expr.Right = p.parseAssignment()
	return finish(p, expr, start)
}

// parseBinary parses a left-associative chain of the given operators over
// operands produced by next.
func (p *Parser) parseBinary(next func() ast.Expression, kinds ...lexer.TokenKind) ast.Expression {
	start := p.current().Start
	left := next()
	for {
		tok := p.current()
		if !containsKind(kinds, tok.Kind) {
			return left
		}
		p.advance()
		op, _ := ast.ParseBinaryOperator(tok.Kind.String())
		right := next()
		left = finish(p, &ast.BinaryExpression{Operator: op, Left: left, Right: right}, start)
	}
}

func containsKind(kinds []lexer.TokenKind, kind lexer.TokenKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (p *Parser) parseLogicalOr() ast.Expression {
	return p.parseBinary(p.parseLogicalAnd, lexer.TokPipePipe)
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	return p.parseBinary(p.parseBitwiseOr, lexer.TokAmpAmp)
}

func (p *Parser) parseBitwiseOr() ast.Expression {
	return p.parseBinary(p.parseBitwiseXor, lexer.TokPipe)
}

func (p *Parser) parseBitwiseXor() ast.Expression {
	return p.parseBinary(p.parseBitwiseAnd, lexer.TokCaret)
}

func (p *Parser) parseBitwiseAnd() ast.Expression {
	return p.parseBinary(p.parseEquality, lexer.TokAmp)
}

func (p *Parser) parseEquality() ast.Expression {
	return p.parseBinary(p.parseRelational, lexer.TokEqEq, lexer.TokBangEq)
}

func (p *Parser) parseRelational() ast.Expression {
	return p.parseBinary(p.parseShift, lexer.TokLt, lexer.TokGt, lexer.TokLtEq, lexer.TokGtEq)
}

func (p *Parser) parseShift() ast.Expression {
	return p.parseBinary(p.parseAdditive, lexer.TokLtLt, lexer.TokGtGt)
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.parseBinary(p.parseMultiplicative, lexer.TokPlus, lexer.TokMinus)
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.parseBinary(p.parseUnary, lexer.TokStar, lexer.TokSlash, lexer.TokPercent)
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.current().Start
	tok := p.current()

	switch tok.Kind {
	case lexer.TokMinus, lexer.TokPlus, lexer.TokBang, lexer.TokTilde,
		lexer.TokPlusPlus, lexer.TokMinusMinus:
		p.advance()
		op, _ := ast.ParseUnaryOperator(tok.Kind.String())
		operand := p.parseUnary()
		return finish(p, &ast.UnaryExpression{Operator: op, Operand: operand}, start)

	case lexer.TokLParen:
		if p.isCast() {
			p.advance()
			target := p.parseType()
			p.expect(lexer.TokRParen)
			from := p.parseUnary()
			return finish(p, &ast.CastExpression{Target: target, From: from}, start)
		}
	}

	return p.parsePostfix()
}

// isCast reports whether the '(' at the current position opens a C-style
// cast: a parenthesized type followed by ')'.
func (p *Parser) isCast() bool {
	if !p.isTypeStart(1) || p.peek(1).Kind == lexer.TokStruct {
		return false
	}
	saved, savedErrors := p.pos, len(p.errors)
	p.advance()
	typ := p.parseType()
	ok := typ != nil && p.current().Kind == lexer.TokRParen
	p.pos = saved
	p.errors = p.errors[:savedErrors]
	return ok
}

func (p *Parser) parsePostfix() ast.Expression {
	start := p.current().Start
	expr := p.parsePrimary()

	for {
		switch p.current().Kind {
		case lexer.TokDot:
			p.advance()
			member := p.expectIdentifier()
			if member == nil {
				return expr
			}
			expr = finish(p, &ast.MemberReferenceExpression{Target: expr, Member: member}, start)

		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpressionList()
			p.expect(lexer.TokRBracket)
			expr = finish(p, &ast.IndexerExpression{Target: expr, Index: index}, start)

		case lexer.TokLParen:
			p.advance()
			args := p.parseArguments()
			expr = finish(p, &ast.MethodInvocationExpression{Target: expr, Arguments: args}, start)

		case lexer.TokPlusPlus:
			p.advance()
			expr = finish(p, &ast.UnaryExpression{Operator: ast.UnaryPostIncrement, Operand: expr}, start)

		case lexer.TokMinusMinus:
			p.advance()
			expr = finish(p, &ast.UnaryExpression{Operator: ast.UnaryPostDecrement, Operand: expr}, start)

		default:
			return expr
		}
	}
}

// parseArguments parses a call argument list after the opening '(' and
// consumes the closing ')'.
func (p *Parser) parseArguments() []ast.Expression {
	var args []ast.Expression
	if p.match(lexer.TokRParen) {
		return args
	}
	for {
		args = append(args, p.parseAssignment())
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()
	start := tok.Start

	switch tok.Kind {
	case lexer.TokIntLiteral, lexer.TokFloatLiteral, lexer.TokStringLiteral, lexer.TokTrue, lexer.TokFalse:
		p.advance()
		lit := p.literal(tok)
		return finish(p, &ast.LiteralExpression{Literal: lit}, start)

	case lexer.TokLParen:
		p.advance()
		content := p.parseExpressionList()
		p.expect(lexer.TokRParen)
		return finish(p, &ast.ParenthesizedExpression{Content: content}, start)

	case lexer.TokLBrace:
		return p.parseInitializer()

	case lexer.TokIdent:
		if p.isTypeStart(0) {
			// Constructors and functional casts: float3(1, 2, 3), int(x).
			typ := p.parseType()
			ref := finish(p, &ast.TypeReferenceExpression{Type: typ}, start)
			if _, ok := p.expect(lexer.TokLParen); !ok {
				return ref
			}
			args := p.parseArguments()
			return finish(p, &ast.MethodInvocationExpression{Target: ref, Arguments: args}, start)
		}
		p.advance()
		return finish(p, &ast.VariableReferenceExpression{Name: p.identifier(tok)}, start)
	}

	p.error(fmt.Sprintf("expected expression, got %s", p.describe(tok)))
	return finish(p, &ast.EmptyExpression{}, start)
}

// literal converts a literal token. Integer literals become int64, or
// uint64 when suffixed with u or too large for int64; floats become
// float64.
func (p *Parser) literal(tok lexer.Token) *ast.Literal {
	lit := &ast.Literal{Text: tok.Value}
	lit.SetSpan(ast.Span{Start: int32(tok.Start), End: int32(tok.End)})

	switch tok.Kind {
	case lexer.TokTrue:
		lit.Value = true
	case lexer.TokFalse:
		lit.Value = false
	case lexer.TokStringLiteral:
		if s, err := strconv.Unquote(tok.Value); err == nil {
			lit.Value = s
		} else {
			lit.Value = strings.Trim(tok.Value, `"`)
		}
	case lexer.TokIntLiteral:
		digits := strings.TrimRight(tok.Value, "uUlL")
		unsigned := strings.ContainsAny(tok.Value[len(digits):], "uU")
		n, err := strconv.ParseUint(digits, 0, 64)
		switch {
		case err != nil:
			p.errorAt(tok.Start, fmt.Sprintf("invalid integer literal %s", tok.Value))
			lit.Value = int64(0)
		case unsigned || n > math.MaxInt64:
			lit.Value = n
		default:
			lit.Value = int64(n)
		}
	case lexer.TokFloatLiteral:
		digits := strings.TrimRight(tok.Value, "fFhHlL")
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			p.errorAt(tok.Start, fmt.Sprintf("invalid float literal %s", tok.Value))
		}
		lit.Value = f
	}
	return lit
}
