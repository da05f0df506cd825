// Package evaluator folds constant expressions to a single number.
//
// Evaluation walks the expression bottom-up with a value stack held as
// float64. Content problems never stop the walk: they are recorded as
// diagnostics and a 0 placeholder stands in for the failed operand, so
// every problem in the expression is reported in one pass. Callers must
// check Result.OK before trusting Result.Value.
package evaluator

import (
	"context"
	"log/slog"
	"math"

	"github.com/spf13/cast"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/builtins"
	"github.com/HugoDaniel/shadertree/internal/diagnostic"
	"github.com/HugoDaniel/shadertree/internal/dispatch"
	"github.com/HugoDaniel/shadertree/internal/printer"
	"github.com/HugoDaniel/shadertree/internal/visitor"
)

// Result is the outcome of one evaluation.
type Result struct {
	Diagnostics diagnostic.List
	Value       float64
}

// HasErrors reports whether any error diagnostic was recorded.
func (r *Result) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}

// OK reports whether Value can be trusted.
func (r *Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// Int returns Value truncated toward zero.
func (r *Result) Int() int64 {
	return builtins.ToInt64(r.Value)
}

// Observer is told about every finished top-level evaluation.
type Observer interface {
	Evaluated(r *Result)
}

// DefaultMaxDepth bounds how many variable references deep an
// initializer chain is followed.
const DefaultMaxDepth = 64

type options struct {
	scopes       []*visitor.Scope
	detectCycles bool
	maxDepth     int
	logger       *slog.Logger
	observer     Observer
}

// Option configures an Evaluator.
type Option func(*options)

// WithScopes seeds the scope chain, outermost first, used to resolve
// variable references.
func WithScopes(scopes ...*visitor.Scope) Option {
	return func(o *options) { o.scopes = scopes }
}

// WithCycleDetection turns the recursive constant reference check on or
// off. It is on by default.
func WithCycleDetection(enabled bool) Option {
	return func(o *options) { o.detectCycles = enabled }
}

// WithMaxDepth bounds variable reference chains. Zero or less removes the
// bound.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) { o.observer = observer }
}

// Evaluator reduces expressions to numbers. An Evaluator may be reused
// but not shared between goroutines.
type Evaluator struct {
	visitor.Walker

	options options
	result  *Result
	values  []float64

	// resolving holds the declarations whose initializers are being
	// evaluated along the current reference chain. Nested evaluators
	// share it.
	resolving map[ast.Declaration]bool
	depth     int
}

// New returns an evaluator configured by opts.
func New(opts ...Option) *Evaluator {
	o := options{
		detectCycles: true,
		maxDepth:     DefaultMaxDepth,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Evaluator{options: o}
	e.Init(e)
	return e
}

// Evaluate folds expr with a fresh evaluator.
func Evaluate(expr ast.Expression, opts ...Option) *Result {
	return New(opts...).Evaluate(expr)
}

func (e *Evaluator) RegisterHandlers(h *dispatch.Handlers) {
	dispatch.Handle(h, (*Evaluator).visitLiteral)
	dispatch.Handle(h, (*Evaluator).visitParenthesized)
	dispatch.Handle(h, (*Evaluator).visitBinary)
	dispatch.Handle(h, (*Evaluator).visitUnary)
	dispatch.Handle(h, (*Evaluator).visitConditional)
	dispatch.Handle(h, (*Evaluator).visitVariableReference)
	dispatch.Handle(h, (*Evaluator).visitInvocation)
	dispatch.Handle(h, (*Evaluator).visitCast)
	dispatch.Handle(h, (*Evaluator).visitUnsupported)
}

// Evaluate folds expr. The returned result is owned by the caller.
func (e *Evaluator) Evaluate(expr ast.Expression) *Result {
	if e.resolving == nil {
		e.resolving = make(map[ast.Declaration]bool)
	}
	result := e.evaluate(expr)

	if e.options.observer != nil {
		e.options.observer.Evaluated(result)
	}
	if logger := e.options.logger; logger.Enabled(context.Background(), slog.LevelDebug) {
		logger.Debug("constant evaluated",
			"expression", render(expr),
			"value", result.Value,
			"diagnostics", result.Diagnostics.Len(),
			"ok", result.OK())
	}
	return result
}

func (e *Evaluator) evaluate(expr ast.Expression) *Result {
	e.result = &Result{}
	e.values = e.values[:0]
	e.UseScopes(e.options.scopes)

	switch n := expr.(type) {
	case *ast.LiteralExpression:
		e.visitLiteral(n)
	default:
		if !ast.IsNil(expr) {
			e.VisitDynamic(expr)
		}
	}

	result := e.result
	if len(e.values) == 1 {
		result.Value = e.values[0]
	} else {
		result.Diagnostics.Errorf(spanOf(expr), diagnostic.CodeCannotEvaluate,
			"cannot evaluate expression [%s]", render(expr))
	}
	e.result = nil
	return result
}

// ----------------------------------------------------------------------------
// Value Stack
// ----------------------------------------------------------------------------

func (e *Evaluator) push(v float64) {
	e.values = append(e.values, v)
}

// operand evaluates n and pops the single value it produced. When n
// produced no value, or more than one, the stack is restored and the
// failure is recorded against n.
func (e *Evaluator) operand(n ast.Expression) (float64, bool) {
	base := len(e.values)
	e.VisitDynamic(n)
	if len(e.values) == base+1 {
		v := e.values[base]
		e.values = e.values[:base]
		return v, true
	}
	e.values = e.values[:base]
	e.result.Diagnostics.Errorf(spanOf(n), diagnostic.CodeCannotEvaluate,
		"cannot evaluate expression [%s]", render(n))
	return 0, false
}

// ----------------------------------------------------------------------------
// Handlers
// ----------------------------------------------------------------------------

func (e *Evaluator) visitLiteral(n *ast.LiteralExpression) ast.Node {
	if n.Literal == nil {
		e.result.Diagnostics.Errorf(n.Span(), diagnostic.CodeInvalidLiteral, "invalid literal []")
		e.push(0)
		return n
	}
	v, err := literalValue(n.Literal.Value)
	if err != nil {
		e.result.Diagnostics.Errorf(n.Span(), diagnostic.CodeInvalidLiteral,
			"invalid literal [%s]: %v", n.Literal.Text, err)
		e.push(0)
		return n
	}
	e.push(v)
	return n
}

func literalValue(value any) (float64, error) {
	if b, ok := value.(bool); ok {
		return boolValue(b), nil
	}
	return cast.ToFloat64E(value)
}

func (e *Evaluator) visitParenthesized(n *ast.ParenthesizedExpression) ast.Node {
	e.VisitDynamic(n.Content)
	return n
}

func (e *Evaluator) visitBinary(n *ast.BinaryExpression) ast.Node {
	if !isFoldable(n.Operator) {
		e.result.Diagnostics.Errorf(n.Span(), diagnostic.CodeUnsupportedOperator,
			"unsupported operator [%s]", n.Operator)
		return n
	}
	left, _ := e.operand(n.Left)
	right, _ := e.operand(n.Right)
	e.push(binary(n.Operator, left, right))
	return n
}

func isFoldable(op ast.BinaryOperator) bool {
	return op != ast.BinaryNone && op.String() != "?"
}

func binary(op ast.BinaryOperator, left, right float64) float64 {
	switch op {
	case ast.BinaryPlus:
		return left + right
	case ast.BinaryMinus:
		return left - right
	case ast.BinaryMultiply:
		return left * right
	case ast.BinaryDivide:
		return left / right
	case ast.BinaryModulo:
		return math.Mod(left, right)

	case ast.BinaryLeftShift:
		return float64(builtins.ToInt32(left) << (uint32(builtins.ToInt32(right)) & 31))
	case ast.BinaryRightShift:
		return float64(builtins.ToInt32(left) >> (uint32(builtins.ToInt32(right)) & 31))
	case ast.BinaryBitwiseAnd:
		return float64(builtins.ToInt32(left) & builtins.ToInt32(right))
	case ast.BinaryBitwiseOr:
		return float64(builtins.ToInt32(left) | builtins.ToInt32(right))
	case ast.BinaryBitwiseXor:
		return float64(builtins.ToInt32(left) ^ builtins.ToInt32(right))

	case ast.BinaryLogicalAnd:
		return boolValue(left != 0 && right != 0)
	case ast.BinaryLogicalOr:
		return boolValue(left != 0 || right != 0)
	case ast.BinaryLess:
		return boolValue(left < right)
	case ast.BinaryLessEqual:
		return boolValue(left <= right)
	case ast.BinaryGreater:
		return boolValue(left > right)
	case ast.BinaryGreaterEqual:
		return boolValue(left >= right)
	case ast.BinaryEquality:
		return boolValue(left == right)
	case ast.BinaryInequality:
		return boolValue(left != right)
	}
	panic("evaluator: unhandled operator " + op.String())
}

// visitUnary folds prefix and postfix forms alike: increment and
// decrement yield the operand plus or minus one.
func (e *Evaluator) visitUnary(n *ast.UnaryExpression) ast.Node {
	v, _ := e.operand(n.Operand)
	switch n.Operator {
	case ast.UnaryPlus:
	case ast.UnaryMinus:
		v = -v
	case ast.UnaryPreIncrement, ast.UnaryPostIncrement:
		v++
	case ast.UnaryPreDecrement, ast.UnaryPostDecrement:
		v--
	case ast.UnaryLogicalNot:
		v = boolValue(v == 0)
	case ast.UnaryBitwiseNot:
		v = float64(^builtins.ToInt32(v))
	default:
		e.result.Diagnostics.Errorf(n.Span(), diagnostic.CodeUnsupportedOperator,
			"unsupported operator [%s]", n.Operator)
		v = 0
	}
	e.push(v)
	return n
}

func (e *Evaluator) visitConditional(n *ast.ConditionalExpression) ast.Node {
	cond, _ := e.operand(n.Condition)
	left, _ := e.operand(n.Left)
	right, _ := e.operand(n.Right)
	if cond != 0 {
		e.push(left)
	} else {
		e.push(right)
	}
	return n
}

func (e *Evaluator) visitVariableReference(n *ast.VariableReferenceExpression) ast.Node {
	e.push(e.resolve(n, n.Name.Text))
	return n
}

// resolve folds the initializer of the variable named name. The name is
// looked up in the current scope chain; the initializer is evaluated in
// the chain that ends at the scope declaring it.
func (e *Evaluator) resolve(ref ast.Node, name string) float64 {
	decl, scope := e.FindDeclarationScope(name)
	if decl == nil {
		e.result.Diagnostics.Errorf(ref.Span(), diagnostic.CodeUnknownVariable,
			"unable to find variable [%s]", name)
		return 0
	}

	var init ast.Expression
	switch d := decl.(type) {
	case *ast.Variable:
		init = d.InitialValue
	case *ast.Parameter:
		init = d.InitialValue
	}
	if init == nil {
		e.result.Diagnostics.Errorf(ref.Span(), diagnostic.CodeNotConstant,
			"variable [%s] is not constant", name)
		return 0
	}

	if e.options.detectCycles && e.resolving[decl] {
		e.result.Diagnostics.Errorf(ref.Span(), diagnostic.CodeRecursiveConstant,
			"recursive constant reference [%s]", name)
		return 0
	}
	if e.options.maxDepth > 0 && e.depth >= e.options.maxDepth {
		e.result.Diagnostics.Errorf(ref.Span(), diagnostic.CodeDepthExceeded,
			"constant reference chain too deep at [%s]", name)
		return 0
	}

	nested := e.nested(scope)
	e.resolving[decl] = true
	sub := nested.evaluate(init)
	delete(e.resolving, decl)

	e.result.Diagnostics.Merge(&sub.Diagnostics)
	return sub.Value
}

// nested returns an evaluator for an initializer declared in the scope at
// index scope, sharing the outer part of the scope chain and the
// reference chain.
func (e *Evaluator) nested(scope int) *Evaluator {
	o := e.options
	o.scopes = e.Scopes()[:scope+1]
	n := &Evaluator{options: o, resolving: e.resolving, depth: e.depth + 1}
	n.Init(n)
	return n
}

// visitInvocation folds scalar constructors such as float(3) as casts.
// Any other call is unsupported.
func (e *Evaluator) visitInvocation(n *ast.MethodInvocationExpression) ast.Node {
	scalar, ok := castTarget(n.Target)
	if !ok {
		return e.visitUnsupported(n)
	}
	if len(n.Arguments) != 1 {
		e.result.Diagnostics.Errorf(n.Span(), diagnostic.CodeInvalidCast,
			"cast to [%s] takes one argument, got %d", scalar.Name, len(n.Arguments))
		e.push(0)
		return n
	}
	v, _ := e.operand(n.Arguments[0])
	e.push(scalar.Convert(v))
	return n
}

func (e *Evaluator) visitCast(n *ast.CastExpression) ast.Node {
	scalar, ok := scalarOf(n.Target)
	if !ok {
		return e.visitUnsupported(n)
	}
	v, _ := e.operand(n.From)
	e.push(scalar.Convert(v))
	return n
}

func castTarget(target ast.Expression) (builtins.Scalar, bool) {
	switch t := target.(type) {
	case *ast.TypeReferenceExpression:
		return scalarOf(t.Type)
	case *ast.VariableReferenceExpression:
		return builtins.LookupScalar(t.Name.Text)
	}
	return builtins.Scalar{}, false
}

func scalarOf(t ast.TypeBase) (builtins.Scalar, bool) {
	switch t := t.(type) {
	case *ast.ScalarType:
		if t.Name != nil {
			return builtins.LookupScalar(t.Name.Text)
		}
	case *ast.TypeName:
		if t.Name != nil {
			return builtins.LookupScalar(t.Name.Text)
		}
	}
	return builtins.Scalar{}, false
}

// visitUnsupported records a warning and leaves the stack unchanged. The
// enclosing operand, or the final stack check, turns the missing value
// into an error.
func (e *Evaluator) visitUnsupported(n ast.Expression) ast.Node {
	e.result.Diagnostics.Warningf(n.Span(), diagnostic.CodeUnsupportedExpression,
		"expression evaluation [%s] is not supported", render(n))
	return n
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func render(n ast.Expression) string {
	if ast.IsNil(n) {
		return ""
	}
	return printer.Expression(n)
}

func spanOf(n ast.Node) ast.Span {
	if ast.IsNil(n) {
		return ast.Span{}
	}
	return n.Span()
}
