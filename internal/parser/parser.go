// Package parser provides HLSL parsing into the shared shader tree.
//
// The parser is a hand-written recursive descent over the token slice
// produced by the lexer. It covers the declaration and statement forms
// used by compute and pixel shaders: globals with qualifiers, semantics
// and registers, structs, cbuffer/tbuffer blocks, typedefs, functions and
// the full C-style expression grammar. Effect-framework blocks
// (techniques, passes, state objects) are not parsed.
//
// Errors do not stop the parse: the parser records a ParseError, skips to
// the next statement boundary and continues, so callers always get a tree.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/builtins"
	"github.com/HugoDaniel/shadertree/internal/lexer"
	"github.com/HugoDaniel/shadertree/internal/location"
)

// Parser parses HLSL source into a tree.
type Parser struct {
	source string
	tokens []lexer.Token
	pos    int
	index  *location.Index

	// Names introduced by struct and typedef; they parse as types.
	typeNames map[string]bool

	errors []ParseError
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Pos     int
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// New creates a new parser for the given source.
func New(source string) *Parser {
	p := &Parser{
		source:    source,
		tokens:    lexer.New(source).Tokenize(),
		index:     location.NewIndex(source),
		typeNames: make(map[string]bool),
	}

	// A lexical error ends the token stream; report it and treat it as
	// end of input.
	if last := len(p.tokens) - 1; last >= 0 && p.tokens[last].Kind == lexer.TokError {
		bad := p.tokens[last]
		p.errorAt(bad.Start, bad.Value)
		p.tokens[last] = lexer.Token{Kind: lexer.TokEOF, Start: bad.Start, End: bad.Start}
	}
	return p
}

// Parse parses a whole translation unit.
func (p *Parser) Parse() (*ast.Shader, []ParseError) {
	shader := &ast.Shader{}
	for p.current().Kind != lexer.TokEOF {
		before := p.pos
		if decl := p.parseTopLevel(); decl != nil {
			shader.Declarations = append(shader.Declarations, decl)
		}
		if p.pos == before {
			p.advance()
		}
	}
	shader.SetSpan(ast.Span{Start: 0, End: int32(len(p.source))})
	return shader, p.errors
}

// ParseExpression parses the whole input as a single expression.
func (p *Parser) ParseExpression() (ast.Expression, []ParseError) {
	expr := p.parseExpression()
	if p.current().Kind != lexer.TokEOF {
		p.error(fmt.Sprintf("unexpected %s after expression", p.describe(p.current())))
	}
	return expr, p.errors
}

// Parse is shorthand for New(source).Parse().
func Parse(source string) (*ast.Shader, []ParseError) {
	return New(source).Parse()
}

// ParseExpression is shorthand for New(source).ParseExpression().
func ParseExpression(source string) (ast.Expression, []ParseError) {
	return New(source).ParseExpression()
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != kind {
		p.error(fmt.Sprintf("expected %s, got %s", kind, p.describe(tok)))
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

// isWord reports whether the current token is the identifier word.
func (p *Parser) isWord(word string) bool {
	tok := p.current()
	return tok.Kind == lexer.TokIdent && tok.Value == word
}

func (p *Parser) describe(tok lexer.Token) string {
	if tok.Kind == lexer.TokIdent {
		return fmt.Sprintf("identifier %q", tok.Value)
	}
	return tok.Kind.String()
}

func (p *Parser) error(msg string) {
	p.errorAt(p.current().Start, msg)
}

func (p *Parser) errorAt(offset int, msg string) {
	pos := p.index.Position(offset)
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Pos:     offset,
		Line:    pos.Line,
		Column:  pos.Column,
	})
}

// synchronize skips to just past the next ';' or to the next '}' at the
// current nesting level.
func (p *Parser) synchronize() {
	depth := 0
	for {
		switch p.current().Kind {
		case lexer.TokEOF:
			return
		case lexer.TokSemicolon:
			p.advance()
			if depth == 0 {
				return
			}
		case lexer.TokLBrace:
			depth++
			p.advance()
		case lexer.TokRBrace:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		default:
			p.advance()
		}
	}
}

// prevEnd is the end offset of the last consumed token.
func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].End
}

// finish stamps n with the span from start to the last consumed token.
func finish[T ast.Node](p *Parser, n T, start int) T {
	end := p.prevEnd()
	if end < start {
		end = start
	}
	n.SetSpan(ast.Span{Start: int32(start), End: int32(end)})
	return n
}

func (p *Parser) identifier(tok lexer.Token) *ast.Identifier {
	id := &ast.Identifier{Text: tok.Value}
	id.SetSpan(ast.Span{Start: int32(tok.Start), End: int32(tok.End)})
	return id
}

func (p *Parser) expectIdentifier() *ast.Identifier {
	tok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	return p.identifier(tok)
}

// ----------------------------------------------------------------------------
// Top Level
// ----------------------------------------------------------------------------

func (p *Parser) parseTopLevel() ast.Node {
	start := p.current().Start

	switch p.current().Kind {
	case lexer.TokSemicolon:
		p.advance()
		return nil
	case lexer.TokStruct:
		return p.parseStructDeclaration(nil)
	case lexer.TokCbuffer, lexer.TokTbuffer:
		return p.parseConstantBuffer()
	case lexer.TokTypedef:
		return p.parseTypedef()
	}

	attrs := p.parseAttributes()
	if p.current().Kind == lexer.TokStruct {
		return p.parseStructDeclaration(attrs)
	}

	quals := p.parseQualifiers()
	typePos := p.pos
	typ := p.parseType()
	if typ == nil {
		p.synchronize()
		return nil
	}
	if p.current().Kind == lexer.TokIdent && p.peek(1).Kind == lexer.TokLParen {
		return p.parseMethod(attrs, quals, typ, start)
	}
	return p.parseVariableDeclaration(attrs, quals, typ, typePos, start)
}

// parseAttributes parses zero or more [name(args)] attributes.
func (p *Parser) parseAttributes() []*ast.AttributeDeclaration {
	var attrs []*ast.AttributeDeclaration
	for p.current().Kind == lexer.TokLBracket {
		start := p.advance().Start
		attr := &ast.AttributeDeclaration{Name: p.expectIdentifier()}
		if p.match(lexer.TokLParen) {
			attr.Parameters = p.parseArguments()
		}
		p.expect(lexer.TokRBracket)
		attrs = append(attrs, finish(p, attr, start))
	}
	return attrs
}

// parseQualifiers collects storage and interpolation keywords. It returns
// nil when there are none.
func (p *Parser) parseQualifiers() *ast.Qualifier {
	tok := p.current()
	if tok.Kind != lexer.TokIdent || !builtins.IsQualifier(tok.Value) {
		return nil
	}
	q := &ast.Qualifier{}
	for p.current().Kind == lexer.TokIdent && builtins.IsQualifier(p.current().Value) {
		q.Keywords = append(q.Keywords, p.advance().Value)
	}
	return finish(p, q, tok.Start)
}

// parseSuffixes parses the : semantic, : register(...) and
// : packoffset(...) suffixes of a declarator into q, allocating it when
// needed.
func (p *Parser) parseSuffixes(q *ast.Qualifier) *ast.Qualifier {
	for p.current().Kind == lexer.TokColon {
		p.advance()
		var spec ast.Node
		switch p.current().Kind {
		case lexer.TokRegister:
			spec = p.parseRegister()
		case lexer.TokPackoffset:
			spec = p.parsePackOffset()
		case lexer.TokIdent:
			tok := p.advance()
			spec = finish(p, &ast.Semantic{Name: p.identifier(tok)}, tok.Start)
		default:
			p.error(fmt.Sprintf("expected semantic, got %s", p.describe(p.current())))
			return q
		}
		if q == nil {
			q = &ast.Qualifier{}
			q.SetSpan(spec.Span())
		}
		q.Specifiers = append(q.Specifiers, spec)
		q.SetSpan(ast.Join(q.Span(), spec.Span()))
	}
	return q
}

// parseRegister parses register(t0) or register(ps_5_0, t0).
func (p *Parser) parseRegister() *ast.RegisterLocation {
	start := p.advance().Start
	reg := &ast.RegisterLocation{}
	p.expect(lexer.TokLParen)
	first := p.expectIdentifier()
	if p.match(lexer.TokComma) {
		reg.Profile = first
		reg.Register = p.expectIdentifier()
	} else {
		reg.Register = first
	}
	p.expect(lexer.TokRParen)
	return finish(p, reg, start)
}

// parsePackOffset parses packoffset(c0) and packoffset(c0.x). The
// component is folded into the identifier text.
func (p *Parser) parsePackOffset() *ast.PackOffset {
	start := p.advance().Start
	p.expect(lexer.TokLParen)
	value := p.expectIdentifier()
	if value != nil && p.match(lexer.TokDot) {
		if comp := p.expectIdentifier(); comp != nil {
			value.Text += "." + comp.Text
			value.SetSpan(ast.Join(value.Span(), comp.Span()))
		}
	}
	p.expect(lexer.TokRParen)
	return finish(p, &ast.PackOffset{Value: value}, start)
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseStructDeclaration(attrs []*ast.AttributeDeclaration) ast.Node {
	start := p.current().Start
	if len(attrs) > 0 {
		start = int(attrs[0].Span().Start)
	}
	st := p.parseStructType()
	st.Attributes = attrs
	finish(p, st, start)
	p.expect(lexer.TokSemicolon)
	return st
}

func (p *Parser) parseStructType() *ast.StructType {
	start := p.advance().Start
	st := &ast.StructType{Name: p.expectIdentifier()}
	if st.Name != nil {
		p.typeNames[st.Name.Text] = true
	}
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return finish(p, st, start)
	}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		before := p.pos
		if p.match(lexer.TokSemicolon) {
			continue
		}
		fieldStart := p.current().Start
		quals := p.parseQualifiers()
		typePos := p.pos
		if typ := p.parseType(); typ != nil {
			st.Fields = append(st.Fields, p.parseVariableDeclaration(nil, quals, typ, typePos, fieldStart))
		} else {
			p.synchronize()
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(lexer.TokRBrace)
	return finish(p, st, start)
}

func (p *Parser) parseConstantBuffer() ast.Node {
	tok := p.advance()
	cb := &ast.ConstantBuffer{Kind: tok.Kind.String()}
	cb.Name = p.expectIdentifier()
	if p.current().Kind == lexer.TokColon && p.peek(1).Kind == lexer.TokRegister {
		p.advance()
		cb.Register = p.parseRegister()
	}
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		p.synchronize()
		return finish(p, cb, tok.Start)
	}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		before := p.pos
		if p.match(lexer.TokSemicolon) {
			continue
		}
		memberStart := p.current().Start
		quals := p.parseQualifiers()
		typePos := p.pos
		if typ := p.parseType(); typ != nil {
			cb.Members = append(cb.Members, p.parseVariableDeclaration(nil, quals, typ, typePos, memberStart))
		} else {
			p.synchronize()
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(lexer.TokRBrace)
	p.match(lexer.TokSemicolon)
	return finish(p, cb, tok.Start)
}

// parseTypedef parses typedef T a; and typedef T a, b[2];. Several names
// produce a nameless Typedef holding one SubDeclarator per name.
func (p *Parser) parseTypedef() ast.Node {
	start := p.advance().Start
	quals := p.parseQualifiers()
	typePos := p.pos
	typ := p.parseType()
	if typ == nil {
		p.synchronize()
		return nil
	}

	var decls []*ast.Typedef
	for {
		declStart := p.current().Start
		name := p.expectIdentifier()
		if name == nil {
			p.synchronize()
			break
		}
		p.typeNames[name.Text] = true
		declType := typ
		if len(decls) > 0 {
			declType = p.reparseType(typePos)
		}
		declType = p.parseArrayDimensions(declType)
		decls = append(decls, finish(p, &ast.Typedef{Type: declType, Name: name}, declStart))
		if !p.match(lexer.TokComma) {
			p.expect(lexer.TokSemicolon)
			break
		}
	}

	if len(decls) == 1 {
		decls[0].Qualifiers = quals
		return finish(p, decls[0], start)
	}
	group := &ast.Typedef{Qualifiers: quals, Type: p.reparseType(typePos), SubDeclarators: decls}
	return finish(p, group, start)
}

// parseVariableDeclaration parses the declarators following a type and
// the terminating semicolon. A single declarator yields a plain Variable;
// several yield a group whose SubVariables each own a copy of the type.
func (p *Parser) parseVariableDeclaration(attrs []*ast.AttributeDeclaration, quals *ast.Qualifier, typ ast.TypeBase, typePos int, start int) *ast.Variable {
	var vars []*ast.Variable
	for {
		declStart := p.current().Start
		name := p.expectIdentifier()
		if name == nil {
			p.synchronize()
			break
		}
		declType := typ
		if len(vars) > 0 {
			declType = p.reparseType(typePos)
		}
		v := &ast.Variable{Name: name, Type: p.parseArrayDimensions(declType)}
		v.Qualifiers = p.parseSuffixes(nil)
		if p.match(lexer.TokEq) {
			v.InitialValue = p.parseInitializer()
		}
		vars = append(vars, finish(p, v, declStart))
		if !p.match(lexer.TokComma) {
			p.expect(lexer.TokSemicolon)
			break
		}
	}

	switch len(vars) {
	case 0:
		return finish(p, &ast.Variable{Attributes: attrs, Qualifiers: quals, Type: typ}, start)
	case 1:
		v := vars[0]
		v.Attributes = attrs
		v.Qualifiers = mergeQualifiers(quals, v.Qualifiers)
		return finish(p, v, start)
	}
	group := &ast.Variable{
		Attributes:   attrs,
		Qualifiers:   quals,
		Type:         p.reparseType(typePos),
		SubVariables: vars,
	}
	return finish(p, group, start)
}

// mergeQualifiers folds the declarator suffixes of b into the leading
// keywords of a.
func mergeQualifiers(a, b *ast.Qualifier) *ast.Qualifier {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	a.Specifiers = append(a.Specifiers, b.Specifiers...)
	a.SetSpan(ast.Join(a.Span(), b.Span()))
	return a
}

// parseArrayDimensions wraps typ in an ArrayType when array declarators
// follow. An empty pair of brackets records a nil dimension.
func (p *Parser) parseArrayDimensions(typ ast.TypeBase) ast.TypeBase {
	if p.current().Kind != lexer.TokLBracket {
		return typ
	}
	arr := &ast.ArrayType{Type: typ}
	for p.match(lexer.TokLBracket) {
		var dim ast.Expression
		if p.current().Kind != lexer.TokRBracket {
			dim = p.parseExpression()
		}
		arr.Dimensions = append(arr.Dimensions, dim)
		p.expect(lexer.TokRBracket)
	}
	return finish(p, arr, int(typ.Span().Start))
}

// parseInitializer parses either an expression or a brace list.
func (p *Parser) parseInitializer() ast.Expression {
	if p.current().Kind != lexer.TokLBrace {
		return p.parseAssignment()
	}
	start := p.advance().Start
	init := &ast.ArrayInitializerExpression{}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		init.Items = append(init.Items, p.parseInitializer())
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return finish(p, init, start)
}

func (p *Parser) parseMethod(attrs []*ast.AttributeDeclaration, quals *ast.Qualifier, ret ast.TypeBase, start int) ast.Node {
	decl := ast.MethodDeclaration{
		Attributes: attrs,
		Qualifiers: quals,
		ReturnType: ret,
		Name:       p.expectIdentifier(),
	}
	p.expect(lexer.TokLParen)
	decl.Parameters = p.parseParameters()
	p.expect(lexer.TokRParen)
	decl.Qualifiers = p.parseSuffixes(decl.Qualifiers)

	if p.current().Kind != lexer.TokLBrace {
		p.expect(lexer.TokSemicolon)
		return finish(p, &decl, start)
	}
	def := &ast.MethodDefinition{MethodDeclaration: decl}
	bodyStart := p.advance().Start
	body := p.parseStatementList()
	p.expect(lexer.TokRBrace)
	def.Body = finish(p, body, bodyStart)
	return finish(p, def, start)
}

func (p *Parser) parseParameters() []*ast.Parameter {
	var params []*ast.Parameter
	if p.current().Kind == lexer.TokRParen {
		return params
	}
	// f(void)
	if p.isWord("void") && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
		return params
	}
	for {
		start := p.current().Start
		param := &ast.Parameter{}
		param.Attributes = p.parseAttributes()
		param.Qualifiers = p.parseQualifiers()
		typ := p.parseType()
		if typ == nil {
			return params
		}
		param.Name = p.expectIdentifier()
		param.Type = p.parseArrayDimensions(typ)
		param.Qualifiers = mergeQualifiers(param.Qualifiers, p.parseSuffixes(nil))
		if p.match(lexer.TokEq) {
			param.InitialValue = p.parseAssignment()
		}
		params = append(params, finish(p, param, start))
		if !p.match(lexer.TokComma) {
			return params
		}
	}
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// isTypeStart reports whether the token at offset begins a type.
func (p *Parser) isTypeStart(offset int) bool {
	tok := p.peek(offset)
	switch tok.Kind {
	case lexer.TokStruct:
		return true
	case lexer.TokIdent:
		return builtins.IsTypeName(tok.Value) || p.typeNames[tok.Value]
	}
	return false
}

// parseType parses a type reference. It reports an error and returns nil
// when the current token does not name a type.
func (p *Parser) parseType() ast.TypeBase {
	tok := p.current()
	if tok.Kind == lexer.TokStruct {
		// struct S x; refers to an existing struct.
		if p.peek(1).Kind == lexer.TokIdent && p.peek(2).Kind != lexer.TokLBrace {
			p.advance()
			name := p.identifier(p.advance())
			return finish(p, &ast.TypeName{Name: name}, tok.Start)
		}
		return p.parseStructType()
	}
	if tok.Kind != lexer.TokIdent || !(builtins.IsTypeName(tok.Value) || p.typeNames[tok.Value]) {
		p.error(fmt.Sprintf("expected type, got %s", p.describe(tok)))
		return nil
	}
	p.advance()
	name := p.identifier(tok)

	if _, ok := builtins.LookupScalar(tok.Value); ok {
		return finish(p, &ast.ScalarType{Name: name}, tok.Start)
	}
	if scalar, dim, ok := builtins.ParseVector(tok.Value); ok {
		vec := &ast.VectorType{Name: name, Type: p.syntheticScalar(scalar.Name, tok), Dimension: dim}
		return finish(p, vec, tok.Start)
	}
	if scalar, rows, cols, ok := builtins.ParseMatrix(tok.Value); ok {
		mat := &ast.MatrixType{Name: name, Type: p.syntheticScalar(scalar.Name, tok), RowCount: rows, ColumnCount: cols}
		return finish(p, mat, tok.Start)
	}

	switch {
	case tok.Value == "vector":
		return p.parseGenericVector(name, tok.Start)
	case tok.Value == "matrix":
		return p.parseGenericMatrix(name, tok.Start)
	case builtins.IsTextureType(tok.Value):
		tex := &ast.TextureType{ObjectType: ast.ObjectType{Name: name}}
		if p.match(lexer.TokLt) {
			tex.Type = p.parseType()
			// Sample counts such as Texture2DMS<float4, 8> are accepted
			// and dropped.
			for p.match(lexer.TokComma) {
				p.parseShift()
			}
			p.expect(lexer.TokGt)
		}
		return finish(p, tex, tok.Start)
	case builtins.IsObjectType(tok.Value):
		return finish(p, &ast.ObjectType{Name: name}, tok.Start)
	}
	return finish(p, &ast.TypeName{Name: name}, tok.Start)
}

// syntheticScalar builds the element type of a vector or matrix keyword,
// spanning the keyword itself.
func (p *Parser) syntheticScalar(name string, tok lexer.Token) *ast.ScalarType {
	st := ast.NewScalarType(name)
	span := ast.Span{Start: int32(tok.Start), End: int32(tok.End)}
	st.SetSpan(span)
	st.Name.SetSpan(span)
	return st
}

// parseGenericVector parses vector or vector<T, N>. A bare vector is a
// float4.
func (p *Parser) parseGenericVector(name *ast.Identifier, start int) ast.TypeBase {
	vec := &ast.VectorType{Name: name, Dimension: 4}
	if !p.match(lexer.TokLt) {
		vec.Type = ast.NewScalarType("float")
		return finish(p, vec, start)
	}
	vec.Type = p.parseType()
	p.expect(lexer.TokComma)
	vec.Dimension = p.parseDimension()
	p.expect(lexer.TokGt)
	return finish(p, vec, start)
}

// parseGenericMatrix parses matrix or matrix<T, R, C>. A bare matrix is a
// float4x4.
func (p *Parser) parseGenericMatrix(name *ast.Identifier, start int) ast.TypeBase {
	mat := &ast.MatrixType{Name: name, RowCount: 4, ColumnCount: 4}
	if !p.match(lexer.TokLt) {
		mat.Type = ast.NewScalarType("float")
		return finish(p, mat, start)
	}
	mat.Type = p.parseType()
	p.expect(lexer.TokComma)
	mat.RowCount = p.parseDimension()
	p.expect(lexer.TokComma)
	mat.ColumnCount = p.parseDimension()
	p.expect(lexer.TokGt)
	return finish(p, mat, start)
}

func (p *Parser) parseDimension() int {
	tok, ok := p.expect(lexer.TokIntLiteral)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimRight(tok.Value, "uUlL"))
	if err != nil || n < 1 || n > 4 {
		p.errorAt(tok.Start, fmt.Sprintf("invalid dimension %s", tok.Value))
		return 0
	}
	return n
}

// reparseType parses the type starting at token position pos again,
// yielding fresh nodes, and restores the current position.
func (p *Parser) reparseType(pos int) ast.TypeBase {
	saved, savedErrors := p.pos, len(p.errors)
	p.pos = pos
	typ := p.parseType()
	p.pos = saved
	p.errors = p.errors[:savedErrors]
	return typ
}

// looksLikeDeclaration reports whether a declaration starts at the
// current token: optional qualifiers, a type, then a name.
func (p *Parser) looksLikeDeclaration() bool {
	offset := 0
	for p.peek(offset).Kind == lexer.TokIdent && builtins.IsQualifier(p.peek(offset).Value) {
		offset++
	}
	if offset > 0 && p.isTypeStart(offset) {
		return true
	}
	if !p.isTypeStart(offset) {
		return false
	}
	if p.peek(offset).Kind == lexer.TokStruct {
		return true
	}

	saved, savedErrors := p.pos, len(p.errors)
	p.pos += offset
	typ := p.parseType()
	ok := typ != nil && p.current().Kind == lexer.TokIdent
	p.pos = saved
	p.errors = p.errors[:savedErrors]
	return ok
}
