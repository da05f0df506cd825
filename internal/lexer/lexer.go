// Package lexer tokenizes HLSL-family shader source.
//
// Tokens carry byte offsets into the source so later stages can build
// spans and diagnostics without re-scanning. Preprocessor lines are
// skipped; sources are expected to be preprocessed already.
package lexer

// ----------------------------------------------------------------------------
// Token Kinds
// ----------------------------------------------------------------------------

// TokenKind identifies the type of a token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokError

	// Literals and names
	TokIdent
	TokIntLiteral
	TokFloatLiteral
	TokStringLiteral

	// Keywords
	TokBreak
	TokCase
	TokCbuffer
	TokContinue
	TokDefault
	TokDiscard
	TokDo
	TokElse
	TokFalse
	TokFor
	TokIf
	TokPackoffset
	TokRegister
	TokReturn
	TokStruct
	TokSwitch
	TokTbuffer
	TokTrue
	TokTypedef
	TokWhile

	// Operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokEq
	TokLt
	TokGt
	TokQuestion
	TokPlusPlus
	TokMinusMinus
	TokAmpAmp
	TokPipePipe
	TokEqEq
	TokBangEq
	TokLtEq
	TokGtEq
	TokLtLt
	TokGtGt
	TokPlusEq
	TokMinusEq
	TokStarEq
	TokSlashEq
	TokPercentEq
	TokAmpEq
	TokPipeEq
	TokCaretEq
	TokLtLtEq
	TokGtGtEq

	// Punctuation
	TokDot
	TokComma
	TokColon
	TokColonColon
	TokSemicolon
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
)

var tokenNames = [...]string{
	TokEOF:           "end of file",
	TokError:         "error",
	TokIdent:         "identifier",
	TokIntLiteral:    "integer literal",
	TokFloatLiteral:  "float literal",
	TokStringLiteral: "string literal",
	TokBreak:         "break",
	TokCase:          "case",
	TokCbuffer:       "cbuffer",
	TokContinue:      "continue",
	TokDefault:       "default",
	TokDiscard:       "discard",
	TokDo:            "do",
	TokElse:          "else",
	TokFalse:         "false",
	TokFor:           "for",
	TokIf:            "if",
	TokPackoffset:    "packoffset",
	TokRegister:      "register",
	TokReturn:        "return",
	TokStruct:        "struct",
	TokSwitch:        "switch",
	TokTbuffer:       "tbuffer",
	TokTrue:          "true",
	TokTypedef:       "typedef",
	TokWhile:         "while",
	TokPlus:          "+",
	TokMinus:         "-",
	TokStar:          "*",
	TokSlash:         "/",
	TokPercent:       "%",
	TokAmp:           "&",
	TokPipe:          "|",
	TokCaret:         "^",
	TokTilde:         "~",
	TokBang:          "!",
	TokEq:            "=",
	TokLt:            "<",
	TokGt:            ">",
	TokQuestion:      "?",
	TokPlusPlus:      "++",
	TokMinusMinus:    "--",
	TokAmpAmp:        "&&",
	TokPipePipe:      "||",
	TokEqEq:          "==",
	TokBangEq:        "!=",
	TokLtEq:          "<=",
	TokGtEq:          ">=",
	TokLtLt:          "<<",
	TokGtGt:          ">>",
	TokPlusEq:        "+=",
	TokMinusEq:       "-=",
	TokStarEq:        "*=",
	TokSlashEq:       "/=",
	TokPercentEq:     "%=",
	TokAmpEq:         "&=",
	TokPipeEq:        "|=",
	TokCaretEq:       "^=",
	TokLtLtEq:        "<<=",
	TokGtGtEq:        ">>=",
	TokDot:           ".",
	TokComma:         ",",
	TokColon:         ":",
	TokColonColon:    "::",
	TokSemicolon:     ";",
	TokLParen:        "(",
	TokRParen:        ")",
	TokLBrace:        "{",
	TokRBrace:        "}",
	TokLBracket:      "[",
	TokRBracket:      "]",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

// IsAssignment reports whether k is = or a compound assignment.
func (k TokenKind) IsAssignment() bool {
	return k == TokEq || (k >= TokPlusEq && k <= TokGtGtEq)
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Start int    // Byte offset in source
	End   int    // Byte offset of end (exclusive)
	Value string // Identifier text, literal spelling or error message
}

// Text returns the source text of the token.
func (t Token) Text(source string) string {
	if t.Start >= 0 && t.End <= len(source) && t.Start <= t.End {
		return source[t.Start:t.End]
	}
	return ""
}

// Keywords maps keyword strings to their token kinds. Type names and
// qualifiers are ordinary identifiers; the parser classifies them.
var Keywords = map[string]TokenKind{
	"break":      TokBreak,
	"case":       TokCase,
	"cbuffer":    TokCbuffer,
	"continue":   TokContinue,
	"default":    TokDefault,
	"discard":    TokDiscard,
	"do":         TokDo,
	"else":       TokElse,
	"false":      TokFalse,
	"for":        TokFor,
	"if":         TokIf,
	"packoffset": TokPackoffset,
	"register":   TokRegister,
	"return":     TokReturn,
	"struct":     TokStruct,
	"switch":     TokSwitch,
	"tbuffer":    TokTbuffer,
	"true":       TokTrue,
	"typedef":    TokTypedef,
	"while":      TokWhile,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes shader source.
type Lexer struct {
	source string
	pos    int
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

// Tokenize returns all tokens in the source, ending with TokEOF or the
// first TokError.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.source)/4)
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF || tok.Kind == TokError {
			return tokens
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	if tok, ok := l.skipTrivia(); !ok {
		return tok
	}
	if l.pos >= len(l.source) {
		return Token{Kind: TokEOF, Start: l.pos, End: l.pos}
	}

	ch := l.source[l.pos]
	switch {
	case isIdentStart(ch):
		return l.scanIdentOrKeyword()
	case isDigit(ch) || (ch == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])):
		return l.scanNumber()
	case ch == '"':
		return l.scanString()
	}
	return l.scanOperator()
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

// skipTrivia skips whitespace, comments and preprocessor lines. It returns
// false with an error token for an unterminated block comment.
func (l *Lexer) skipTrivia() (Token, bool) {
	lineStart := l.pos == 0
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		switch {
		case ch == '\n':
			l.pos++
			lineStart = true
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f':
			l.pos++
		case ch == '#' && lineStart:
			// Preprocessor directive, honoring backslash continuations.
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				if l.source[l.pos] == '\\' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '\n' {
					l.pos++
				}
				l.pos++
			}
		case ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*':
			start := l.pos
			l.pos += 2
			for {
				if l.pos+1 >= len(l.source) {
					l.pos = len(l.source)
					return Token{Kind: TokError, Start: start, End: l.pos, Value: "unterminated block comment"}, false
				}
				if l.source[l.pos] == '*' && l.source[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		l.pos++
	}
	text := l.source[start:l.pos]
	if kind, ok := Keywords[text]; ok {
		return Token{Kind: kind, Start: start, End: l.pos, Value: text}
	}
	return Token{Kind: TokIdent, Start: start, End: l.pos, Value: text}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	kind := TokIntLiteral
	hex := false

	if l.pos+1 < len(l.source) && l.source[l.pos] == '0' &&
		(l.source[l.pos+1] == 'x' || l.source[l.pos+1] == 'X') {
		hex = true
		l.pos += 2
		digits := l.pos
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.pos++
		}
		if l.pos == digits {
			return Token{Kind: TokError, Start: start, End: l.pos, Value: "malformed hex literal"}
		}
	} else {
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
		// "1.xx" is a swizzle on an integer; "1.", "1.5" and "1.f" are floats.
		if l.pos < len(l.source) && l.source[l.pos] == '.' && !l.swizzleAfterDot() {
			kind = TokFloatLiteral
			l.pos++
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.pos++
			}
		}
		if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
			exp := l.pos
			l.pos++
			if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
				l.pos++
			}
			if l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				kind = TokFloatLiteral
				for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
					l.pos++
				}
			} else {
				l.pos = exp
			}
		}
	}

	// Type suffix
	if l.pos < len(l.source) {
		switch l.source[l.pos] {
		case 'u', 'U', 'l', 'L':
			l.pos++
		case 'f', 'F', 'h', 'H':
			if !hex {
				kind = TokFloatLiteral
				l.pos++
			}
		}
	}

	if l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokError, Start: start, End: l.pos, Value: "invalid numeric literal"}
	}

	return Token{Kind: kind, Start: start, End: l.pos, Value: l.source[start:l.pos]}
}

// swizzleAfterDot reports whether the '.' at the current position starts
// a member access rather than a fraction.
func (l *Lexer) swizzleAfterDot() bool {
	if l.pos+1 >= len(l.source) {
		return false
	}
	switch next := l.source[l.pos+1]; next {
	case 'e', 'E', 'f', 'F', 'h', 'H', 'l', 'L':
		// "1.e5" and "1.f" are floats, "1.eye" is a member.
		return l.pos+2 < len(l.source) && isIdentStart(l.source[l.pos+2])
	default:
		return isIdentStart(next)
	}
}

func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			return Token{Kind: TokStringLiteral, Start: start, End: l.pos, Value: l.source[start:l.pos]}
		case '\n':
			return Token{Kind: TokError, Start: start, End: l.pos, Value: "unterminated string literal"}
		}
		l.pos++
	}
	l.pos = len(l.source)
	return Token{Kind: TokError, Start: start, End: l.pos, Value: "unterminated string literal"}
}

// operators lists multi-character operators longest first so the first
// match wins.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"<<=", TokLtLtEq}, {">>=", TokGtGtEq},
	{"++", TokPlusPlus}, {"--", TokMinusMinus}, {"&&", TokAmpAmp}, {"||", TokPipePipe},
	{"==", TokEqEq}, {"!=", TokBangEq}, {"<=", TokLtEq}, {">=", TokGtEq},
	{"<<", TokLtLt}, {">>", TokGtGt}, {"+=", TokPlusEq}, {"-=", TokMinusEq},
	{"*=", TokStarEq}, {"/=", TokSlashEq}, {"%=", TokPercentEq}, {"&=", TokAmpEq},
	{"|=", TokPipeEq}, {"^=", TokCaretEq}, {"::", TokColonColon},
}

var singleCharOperators = map[byte]TokenKind{
	'+': TokPlus, '-': TokMinus, '*': TokStar, '/': TokSlash, '%': TokPercent,
	'&': TokAmp, '|': TokPipe, '^': TokCaret, '~': TokTilde, '!': TokBang,
	'=': TokEq, '<': TokLt, '>': TokGt, '?': TokQuestion, '.': TokDot,
	',': TokComma, ':': TokColon, ';': TokSemicolon, '(': TokLParen,
	')': TokRParen, '{': TokLBrace, '}': TokRBrace, '[': TokLBracket,
	']': TokRBracket,
}

func (l *Lexer) scanOperator() Token {
	start := l.pos
	rest := l.source[l.pos:]
	for _, op := range operators {
		if len(rest) >= len(op.text) && rest[:len(op.text)] == op.text {
			l.pos += len(op.text)
			return Token{Kind: op.kind, Start: start, End: l.pos}
		}
	}
	l.pos++
	if kind, ok := singleCharOperators[rest[0]]; ok {
		return Token{Kind: kind, Start: start, End: l.pos}
	}
	return Token{Kind: TokError, Start: start, End: l.pos, Value: "unexpected character"}
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
