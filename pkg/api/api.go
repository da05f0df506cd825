// Package api provides the public API for shadertree.
//
// It wraps parsing, constant evaluation and the tree transforms behind
// plain result types, so that programs outside this module never touch
// the AST packages directly. For CLI usage, see cmd/shadertree.
package api

import (
	"io"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/diagnostic"
	"github.com/HugoDaniel/shadertree/internal/evaluator"
	"github.com/HugoDaniel/shadertree/internal/parser"
	"github.com/HugoDaniel/shadertree/internal/printer"
	"github.com/HugoDaniel/shadertree/internal/transform"
	"github.com/HugoDaniel/shadertree/internal/visitor"
)

// EvalOptions controls constant evaluation.
type EvalOptions struct {
	// DisableCycleDetection turns off the recursive constant check.
	// Self-referencing initializers are then only stopped by MaxDepth.
	DisableCycleDetection bool

	// MaxDepth bounds how many variable references deep an initializer
	// chain is followed. Zero selects the default of 64; a negative value
	// removes the bound.
	MaxDepth int

	// Logger receives debug records for every evaluation. Nil discards.
	Logger *slog.Logger

	// OnEvaluate, if set, is called after every top-level constant
	// evaluation, including the ones run by ResolveArraySizes and Fold.
	// The Expression field of its argument is left empty.
	OnEvaluate func(EvalResult)
}

func (o EvalOptions) evaluatorOptions(formatter *diagnostic.Formatter) []evaluator.Option {
	opts := []evaluator.Option{
		evaluator.WithCycleDetection(!o.DisableCycleDetection),
		evaluator.WithLogger(o.Logger),
	}
	if o.OnEvaluate != nil {
		opts = append(opts, evaluator.WithObserver(evalObserver{fn: o.OnEvaluate, formatter: formatter}))
	}
	switch {
	case o.MaxDepth > 0:
		opts = append(opts, evaluator.WithMaxDepth(o.MaxDepth))
	case o.MaxDepth < 0:
		opts = append(opts, evaluator.WithMaxDepth(0))
	}
	return opts
}

// FoldOptions controls Fold.
type FoldOptions struct {
	EvalOptions

	// KeepArraySizes leaves array dimensions as written instead of
	// replacing constant expressions with their value.
	KeepArraySizes bool

	// KeepEmptyStatements leaves stray ';' statements in place.
	KeepEmptyStatements bool
}

// Diagnostic is a problem found in the input. Line and Column are
// 1-based; Start and End are byte offsets.
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Shader is a parsed translation unit.
type Shader struct {
	source string
	root   *ast.Shader
}

// Source returns the text the shader was parsed from.
func (s *Shader) Source() string {
	return s.source
}

// Dump renders the shader tree as an indented outline, one node per line.
func (s *Shader) Dump() string {
	return printer.Dump(s.root)
}

// Declarations returns the number of top-level declarations.
func (s *Shader) Declarations() int {
	return len(s.root.Declarations)
}

// ParseResult contains the parse output.
type ParseResult struct {
	// Shader is the parsed tree. It is nil only if the parser could not
	// produce any tree at all.
	Shader *Shader `json:"-"`

	// Errors contains syntax errors. If non-empty, Shader may be
	// incomplete.
	Errors []Diagnostic `json:"errors,omitempty"`
}

// EvalResult contains the evaluation output.
type EvalResult struct {
	// Expression is the expression as printed back from the tree.
	Expression string `json:"expression"`

	// Value is the folded value. It is meaningless unless OK is true.
	Value float64 `json:"value"`

	// Int is Value truncated toward zero.
	Int int64 `json:"int"`

	// OK reports whether no error diagnostic was recorded.
	OK bool `json:"ok"`

	// Diagnostics contains every error and warning, in the order found.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// FoldResult contains the Fold output.
type FoldResult struct {
	// Tree is the folded shader rendered as by Shader.Dump.
	Tree string `json:"tree"`

	// ResolvedArraySizes counts array dimensions replaced by a literal.
	ResolvedArraySizes int `json:"resolvedArraySizes"`

	// PrunedStatements counts removed empty statements.
	PrunedStatements int `json:"prunedStatements"`

	// Diagnostics contains problems found while folding array sizes.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// HasErrors reports whether any diagnostic is an error.
func (r FoldResult) HasErrors() bool {
	return hasErrors(r.Diagnostics)
}

// Parse parses source as a translation unit.
func Parse(source string) ParseResult {
	root, errs := parser.Parse(source)
	result := ParseResult{Errors: convertParseErrors(errs)}
	if root != nil {
		result.Shader = &Shader{source: source, root: root}
	}
	return result
}

// Evaluate folds a standalone constant expression. Variable references
// cannot be resolved and are reported as unknown.
func Evaluate(expression string, opts EvalOptions) EvalResult {
	e, errs := parser.ParseExpression(expression)
	if len(errs) > 0 || e == nil {
		return EvalResult{Diagnostics: convertParseErrors(errs)}
	}

	formatter := diagnostic.NewFormatter("", expression)
	r := evaluator.Evaluate(e, opts.evaluatorOptions(formatter)...)
	return newEvalResult(e, r, formatter)
}

// EvaluateIn folds expression with the top-level declarations of s in
// scope, so that it may refer to the shader's constants. Diagnostic
// positions refer to s's source followed by a newline and the
// expression.
func EvaluateIn(s *Shader, expression string, opts EvalOptions) EvalResult {
	combined := s.source + "\n" + expression
	formatter := diagnostic.NewFormatter("", combined)

	e, errs := parser.ParseExpression(expression)
	if len(errs) > 0 || e == nil {
		shifted := make([]parser.ParseError, len(errs))
		for i, err := range errs {
			err.Pos += len(s.source) + 1
			shifted[i] = err
		}
		return EvalResult{Diagnostics: convertDiagnostics(parseErrorList(shifted), formatter)}
	}
	shiftSpans(e, int32(len(s.source)+1))

	evalOpts := append(opts.evaluatorOptions(formatter), evaluator.WithScopes(globalScopes(s.root)...))
	r := evaluator.Evaluate(e, evalOpts...)
	return newEvalResult(e, r, formatter)
}

// Clone returns a deep copy of s that shares no node with it.
func Clone(s *Shader) *Shader {
	return &Shader{source: s.source, root: visitor.CloneOf(s.root)}
}

// ResolveArraySizes replaces constant array dimensions in s with their
// value. It returns the number of replaced dimensions and every problem
// found. s is modified in place; Clone it first to keep the original.
func ResolveArraySizes(s *Shader, opts EvalOptions) (int, []Diagnostic) {
	formatter := diagnostic.NewFormatter("", s.source)
	n, diags := transform.ResolveArraySizes(s.root, opts.evaluatorOptions(formatter)...)
	return n, convertDiagnostics(diags, formatter)
}

// Fold runs the tree transforms on a copy of s and renders the result.
// s itself is left unchanged.
func Fold(s *Shader, opts FoldOptions) FoldResult {
	clone := Clone(s)

	var result FoldResult
	if !opts.KeepArraySizes {
		result.ResolvedArraySizes, result.Diagnostics = ResolveArraySizes(clone, opts.EvalOptions)
	}
	if !opts.KeepEmptyStatements {
		result.PrunedStatements = transform.PruneEmptyStatements(clone.root)
	}
	result.Tree = clone.Dump()
	return result
}

// Encode writes v to w as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// globalScopes returns the scope chain visible at shader level: the root
// scope and the shader scope, holding every top-level declaration and
// every constant buffer member.
func globalScopes(root *ast.Shader) []*visitor.Scope {
	var scopes []*visitor.Scope
	visitor.Walk(root, func(t *visitor.Traversal, n ast.Node) bool {
		if n == ast.Node(root) {
			scopes = t.Scopes()
			return true
		}
		_, nested := n.(ast.ScopeContainer)
		return !nested
	})
	return scopes
}

func shiftSpans(root ast.Node, offset int32) {
	visitor.Walk(root, func(_ *visitor.Traversal, n ast.Node) bool {
		span := n.Span()
		if !span.IsZero() {
			n.SetSpan(ast.Span{Start: span.Start + offset, End: span.End + offset})
		}
		return true
	})
}

type evalObserver struct {
	fn        func(EvalResult)
	formatter *diagnostic.Formatter
}

func (o evalObserver) Evaluated(r *evaluator.Result) {
	o.fn(EvalResult{
		Value:       r.Value,
		Int:         r.Int(),
		OK:          r.OK(),
		Diagnostics: convertDiagnostics(&r.Diagnostics, o.formatter),
	})
}

func newEvalResult(e ast.Expression, r *evaluator.Result, formatter *diagnostic.Formatter) EvalResult {
	return EvalResult{
		Expression:  printer.Expression(e),
		Value:       r.Value,
		Int:         r.Int(),
		OK:          r.OK(),
		Diagnostics: convertDiagnostics(&r.Diagnostics, formatter),
	}
}

func parseErrorList(errs []parser.ParseError) *diagnostic.List {
	var l diagnostic.List
	for _, err := range errs {
		span := ast.Span{Start: int32(err.Pos), End: int32(err.Pos)}
		l.Errorf(span, diagnostic.CodeSyntax, "%s", err.Message)
	}
	return &l
}

func convertParseErrors(errs []parser.ParseError) []Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	result := make([]Diagnostic, len(errs))
	for i, err := range errs {
		result[i] = Diagnostic{
			Severity: diagnostic.Error.String(),
			Code:     string(diagnostic.CodeSyntax),
			Message:  err.Message,
			Line:     err.Line,
			Column:   err.Column,
			Start:    err.Pos,
			End:      err.Pos,
		}
	}
	return result
}

func convertDiagnostics(l *diagnostic.List, formatter *diagnostic.Formatter) []Diagnostic {
	if l == nil || l.Len() == 0 {
		return nil
	}
	result := make([]Diagnostic, 0, l.Len())
	for _, d := range l.All() {
		pos := formatter.Position(d)
		result = append(result, Diagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Line:     pos.Line,
			Column:   pos.Column,
			Start:    int(d.Span.Start),
			End:      int(d.Span.End),
		})
	}
	return result
}

func hasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diagnostic.Error.String() {
			return true
		}
	}
	return false
}
