package evaluator

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/diagnostic"
	"github.com/HugoDaniel/shadertree/internal/parser"
	"github.com/HugoDaniel/shadertree/internal/test"
	"github.com/HugoDaniel/shadertree/internal/visitor"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func eval(t *testing.T, source string, opts ...Option) *Result {
	t.Helper()
	return Evaluate(test.MustParseExpression(t, source), opts...)
}

// globals returns a scope holding the top-level declarations of source.
func globals(t *testing.T, source string) *visitor.Scope {
	t.Helper()
	shader := test.MustParse(t, source)
	scope := visitor.NewScope()
	for _, n := range shader.Declarations {
		if d, ok := n.(ast.Declaration); ok {
			scope.Declare(d)
		}
	}
	return scope
}

func messages(list []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Message)
	}
	return out
}

func expectValue(t *testing.T, source string, expected float64, opts ...Option) {
	t.Helper()
	t.Run(source, func(t *testing.T) {
		r := eval(t, source, opts...)
		assert.Empty(t, messages(r.Diagnostics.All()))
		assert.True(t, r.OK())
		assert.Equal(t, expected, r.Value)
	})
}

const constants = `
static const int N = 1 << 3;
static const int M = N * 2;
static const float Scale = 0.5;
int x;
static const int A = B + 1;
static const int B = A;
static const int C = C;
`

// ----------------------------------------------------------------------------
// Operators
// ----------------------------------------------------------------------------

func TestArithmetic(t *testing.T) {
	expectValue(t, "2 + 3 * 4", 14)
	expectValue(t, "7 % 3", 1)
	expectValue(t, "-7 % 3", -1)
	expectValue(t, "7.5 % 2", 1.5)
	expectValue(t, "10 / 4", 2.5)
	expectValue(t, "1 - 2 - 3", -4)
	expectValue(t, "-(-5)", 5)
	expectValue(t, "+2", 2)
	expectValue(t, "((4))", 4)
}

func TestBitwise(t *testing.T) {
	expectValue(t, "(1 << 3) | 1", 9)
	expectValue(t, "0xF0 >> 4", 15)
	expectValue(t, "6 & 3", 2)
	expectValue(t, "6 ^ 3", 5)
	expectValue(t, "~0", -1)
	expectValue(t, "1 << 33", 2)
	expectValue(t, "-8 >> 1", -4)
	expectValue(t, "2.9 | 0", 2)
	expectValue(t, "1 << 31", math.MinInt32)
}

func TestLogicalAndRelational(t *testing.T) {
	expectValue(t, "1 == 1 && 0 != 1", 1)
	expectValue(t, "2 < 1 || 3 >= 3", 1)
	expectValue(t, "2 <= 1", 0)
	expectValue(t, "2 > 1", 1)
	expectValue(t, "!0", 1)
	expectValue(t, "!3", 0)
	expectValue(t, "0.5 && 2", 1)
}

func TestLogicalOperatorsDoNotShortCircuit(t *testing.T) {
	r := eval(t, "0 && missing")
	assert.Equal(t, 0.0, r.Value)
	assert.Equal(t, []string{"unable to find variable [missing]"}, messages(r.Diagnostics.Errors()))
}

func TestIncrementAndDecrement(t *testing.T) {
	four := func() ast.Expression { return ast.NewLiteralExpression(4) }

	for _, c := range []struct {
		op       ast.UnaryOperator
		expected float64
	}{
		{ast.UnaryPreIncrement, 5},
		{ast.UnaryPostIncrement, 5},
		{ast.UnaryPreDecrement, 3},
		{ast.UnaryPostDecrement, 3},
	} {
		r := Evaluate(ast.NewUnary(c.op, four()))
		assert.True(t, r.OK())
		assert.Equal(t, c.expected, r.Value, "operator %v postfix=%v", c.op, c.op.IsPostfix())
	}
}

func TestConditional(t *testing.T) {
	expectValue(t, "1 > 2 ? 10 : 20", 20)
	expectValue(t, "3 ? 10 : 20", 10)
}

func TestUnsupportedBinaryOperator(t *testing.T) {
	r := Evaluate(ast.NewBinary(ast.BinaryNone, ast.NewLiteralExpression(1), ast.NewLiteralExpression(2)))
	require.True(t, r.HasErrors())
	errs := r.Diagnostics.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, diagnostic.CodeUnsupportedOperator, errs[0].Code)
	assert.Equal(t, diagnostic.CodeCannotEvaluate, errs[1].Code)
}

func TestUnsupportedUnaryOperator(t *testing.T) {
	r := Evaluate(ast.NewBinary(ast.BinaryPlus,
		ast.NewUnary(ast.UnaryNone, ast.NewLiteralExpression(7)),
		ast.NewLiteralExpression(2)))
	errs := r.Diagnostics.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.CodeUnsupportedOperator, errs[0].Code)
	assert.Equal(t, 2.0, r.Value)
}

// ----------------------------------------------------------------------------
// Literals
// ----------------------------------------------------------------------------

func TestLiterals(t *testing.T) {
	for _, c := range []struct {
		value    any
		expected float64
	}{
		{true, 1},
		{false, 0},
		{int64(42), 42},
		{uint64(4294967295), 4294967295},
		{1.25, 1.25},
	} {
		r := Evaluate(ast.NewLiteralExpression(c.value))
		assert.True(t, r.OK())
		assert.Equal(t, c.expected, r.Value, "%v", c.value)
	}
}

func TestInvalidLiteral(t *testing.T) {
	r := Evaluate(ast.NewLiteralExpression("abc"))
	require.Len(t, r.Diagnostics.Errors(), 1)
	assert.Equal(t, diagnostic.CodeInvalidLiteral, r.Diagnostics.Errors()[0].Code)
	assert.Equal(t, 0.0, r.Value)

	r = Evaluate(&ast.LiteralExpression{})
	assert.True(t, r.HasErrors())
}

// ----------------------------------------------------------------------------
// Casts
// ----------------------------------------------------------------------------

func TestCasts(t *testing.T) {
	expectValue(t, "float(3)", 3)
	expectValue(t, "int(3.7)", 3)
	expectValue(t, "int(-3.7)", -3)
	expectValue(t, "bool(5)", 1)
	expectValue(t, "uint(-1)", 4294967295)
	expectValue(t, "(int)2.5 + 1", 3)
	expectValue(t, "float(0.1)", float64(float32(0.1)))
	expectValue(t, "double(0.1)", 0.1)
	expectValue(t, "min16int(70000)", 70000)
}

func TestCastArgumentCount(t *testing.T) {
	r := eval(t, "float(1, 2)")
	require.Len(t, r.Diagnostics.Errors(), 1)
	assert.Equal(t, diagnostic.CodeInvalidCast, r.Diagnostics.Errors()[0].Code)
	assert.Equal(t, "cast to [float] takes one argument, got 2", r.Diagnostics.Errors()[0].Message)
}

func TestVectorConstructorIsUnsupported(t *testing.T) {
	r := eval(t, "float2(1, 2)")
	assert.Equal(t, []string{"expression evaluation [float2(1, 2)] is not supported"},
		messages(r.Diagnostics.Warnings()))
	assert.True(t, r.HasErrors())
}

// ----------------------------------------------------------------------------
// Unsupported Expressions
// ----------------------------------------------------------------------------

func TestIndexerAsWholeInput(t *testing.T) {
	r := eval(t, "a[0]")
	assert.Equal(t, []string{"cannot evaluate expression [a[0]]"}, messages(r.Diagnostics.Errors()))
	assert.Equal(t, []string{"expression evaluation [a[0]] is not supported"}, messages(r.Diagnostics.Warnings()))
	assert.Equal(t, 0.0, r.Value)
}

func TestUnsupportedOperandKeepsEvaluating(t *testing.T) {
	r := eval(t, "a[0] + max(1, y)")
	assert.Equal(t, []string{
		"cannot evaluate expression [a[0]]",
		"cannot evaluate expression [max(1, y)]",
	}, messages(r.Diagnostics.Errors()))
	assert.Len(t, r.Diagnostics.Warnings(), 2)
	assert.Equal(t, 0.0, r.Value)
}

func TestMemberAccessIsUnsupported(t *testing.T) {
	r := eval(t, "v.x * 2")
	assert.Equal(t, []string{"expression evaluation [v.x] is not supported"}, messages(r.Diagnostics.Warnings()))
	assert.Equal(t, []string{"cannot evaluate expression [v.x]"}, messages(r.Diagnostics.Errors()))
}

func TestNilExpression(t *testing.T) {
	r := Evaluate(nil)
	assert.Equal(t, []string{"cannot evaluate expression []"}, messages(r.Diagnostics.All()))
}

// ----------------------------------------------------------------------------
// Variables
// ----------------------------------------------------------------------------

func TestConstantChain(t *testing.T) {
	scope := globals(t, constants)
	expectValue(t, "M + 1", 17, WithScopes(scope))
	expectValue(t, "N * Scale", 4, WithScopes(scope))
}

func TestNonConstantVariable(t *testing.T) {
	r := eval(t, "x", WithScopes(globals(t, constants)))
	assert.Equal(t, 0.0, r.Value)
	assert.Equal(t, []string{"variable [x] is not constant"}, messages(r.Diagnostics.All()))
}

func TestUnknownVariable(t *testing.T) {
	r := eval(t, "y + 1")
	assert.Equal(t, 1.0, r.Value)
	assert.Equal(t, []string{"unable to find variable [y]"}, messages(r.Diagnostics.All()))
}

func TestNestedDiagnosticsAreMerged(t *testing.T) {
	scope := globals(t, "static const int Bad = x * 2; int x;")
	r := eval(t, "Bad + 1", WithScopes(scope))
	assert.Equal(t, []string{"variable [x] is not constant"}, messages(r.Diagnostics.All()))
	assert.Equal(t, 1.0, r.Value)
}

func TestRecursiveConstant(t *testing.T) {
	scope := globals(t, constants)

	r := eval(t, "A", WithScopes(scope))
	assert.Equal(t, []string{"recursive constant reference [A]"}, messages(r.Diagnostics.All()))
	assert.Equal(t, 1.0, r.Value)

	r = eval(t, "C", WithScopes(scope))
	assert.Equal(t, []string{"recursive constant reference [C]"}, messages(r.Diagnostics.All()))
}

func TestDepthLimitWithoutCycleDetection(t *testing.T) {
	scope := globals(t, constants)

	r := eval(t, "C", WithScopes(scope), WithCycleDetection(false), WithMaxDepth(8))
	errs := r.Diagnostics.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.CodeDepthExceeded, errs[0].Code)
	assert.Equal(t, "constant reference chain too deep at [C]", errs[0].Message)
}

func TestRepeatedReferenceIsNotACycle(t *testing.T) {
	expectValue(t, "N + N * N", 72, WithScopes(globals(t, constants)))
}

func TestScopesFromTraversal(t *testing.T) {
	shader, errs := parser.Parse(`
static const int Size = 4;
void f() {
	static const int Size = 2;
	float local[Size * 3];
}
float global[Size];
`)
	require.Empty(t, errs)

	var sizes []float64
	visitor.Walk(shader, func(tr *visitor.Traversal, n ast.Node) bool {
		if array, ok := n.(*ast.ArrayType); ok {
			r := Evaluate(array.Dimensions[0], WithScopes(tr.Scopes()...))
			require.True(t, r.OK())
			sizes = append(sizes, r.Value)
		}
		return true
	})
	assert.Equal(t, []float64{6, 4}, sizes)
}

func TestInitializerUsesDeclaringScope(t *testing.T) {
	shader, errs := parser.Parse(`
static const int Size = 4;
static const int Twice = Size * 2;
void f() {
	static const int Size = 100;
	static const int Local = Size + 1;
	float a[Twice];
	float b[Local];
}
`)
	require.Empty(t, errs)

	var sizes []float64
	visitor.Walk(shader, func(tr *visitor.Traversal, n ast.Node) bool {
		if array, ok := n.(*ast.ArrayType); ok {
			r := Evaluate(array.Dimensions[0], WithScopes(tr.Scopes()...))
			require.True(t, r.OK())
			sizes = append(sizes, r.Value)
		}
		return true
	})
	assert.Equal(t, []float64{8, 101}, sizes)
}

// ----------------------------------------------------------------------------
// Options
// ----------------------------------------------------------------------------

type countingObserver struct {
	results []*Result
}

func (o *countingObserver) Evaluated(r *Result) {
	o.results = append(o.results, r)
}

func TestObserverSeesTopLevelEvaluations(t *testing.T) {
	o := &countingObserver{}
	r := eval(t, "M + 1", WithScopes(globals(t, constants)), WithObserver(o))
	require.Len(t, o.results, 1)
	assert.Same(t, r, o.results[0])
}

func TestLoggerReceivesDebugRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eval(t, "1 + 2", WithLogger(logger))
	assert.Contains(t, buf.String(), "constant evaluated")
	assert.Contains(t, buf.String(), "expression=\"1 + 2\"")
	assert.Contains(t, buf.String(), "value=3")
}

func TestEvaluatorReuse(t *testing.T) {
	e := New()
	first := e.Evaluate(test.MustParseExpression(t, "missing"))
	second := e.Evaluate(test.MustParseExpression(t, "2 * 21"))

	assert.True(t, first.HasErrors())
	assert.True(t, second.OK())
	assert.Equal(t, 42.0, second.Value)
	assert.Equal(t, int64(42), second.Int())
}

// ----------------------------------------------------------------------------
// Oracle
// ----------------------------------------------------------------------------

// The shared subset of both grammars must fold to the value expr computes.
func TestMatchesExprOracle(t *testing.T) {
	env := map[string]any{"a": 3.0, "b": 4.0}
	scope := visitor.NewScope()
	for name, v := range env {
		scope.Declare(ast.NewVariable(ast.NewScalarType("float"), name, ast.NewLiteralExpression(v)))
	}

	for _, source := range []string{
		"2 + 3 * 4",
		"(1 + 2) * (3 - 4) / 5",
		"10 / 4",
		"7 % 3",
		"2.5 * 4 - 0.5",
		"-(-5) + 2",
		"1 == 1 && 0 != 1",
		"!(1 > 2) || 0 == 1",
		"1 < 2 && 3 >= 3",
		"a * b - a / b",
		"(a + b) * 2 > 13",
		"a - b - 1 <= -2",
	} {
		t.Run(source, func(t *testing.T) {
			program, err := expr.Compile(source, expr.Env(env))
			require.NoError(t, err)
			output, err := expr.Run(program, env)
			require.NoError(t, err)

			var expected float64
			if b, ok := output.(bool); ok {
				expected = boolValue(b)
			} else {
				expected, err = cast.ToFloat64E(output)
				require.NoError(t, err)
			}

			r := eval(t, source, WithScopes(scope))
			require.True(t, r.OK(), "%v", messages(r.Diagnostics.All()))
			assert.InDelta(t, expected, r.Value, 1e-12)
		})
	}
}
