package visitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/dispatch"
	"github.com/HugoDaniel/shadertree/internal/parser"
	"github.com/HugoDaniel/shadertree/internal/printer"
	"github.com/HugoDaniel/shadertree/internal/test"
)

func countNodes(n ast.Node) int {
	total := 1
	for _, c := range ast.Children(n) {
		total += countNodes(c)
	}
	return total
}

func collectNodes(n ast.Node, into map[ast.Node]bool) {
	into[n] = true
	for _, c := range ast.Children(n) {
		collectNodes(c, into)
	}
}

const sampleShader = `
static const int N = 1 << 3;
struct Light { float3 dir; float4 color; };
cbuffer Frame : register(b0) { float4x4 view; float time; };
float4 shade(Light l, float2 uv : TEXCOORD0) : SV_Target {
	float acc[N];
	for (int i = 0; i < N; i++) { acc[i] = (float)i * time; }
	if (uv.x > 0.5) return l.color; else return float4(l.dir, 1);
}
`

// ----------------------------------------------------------------------------
// Walker
// ----------------------------------------------------------------------------

type literalCounter struct {
	Walker
	literals int
}

func (c *literalCounter) RegisterHandlers(h *dispatch.Handlers) {
	dispatch.Handle(h, func(c *literalCounter, n *ast.LiteralExpression) ast.Node {
		c.literals++
		return n
	})
}

func TestWalkerVisitsEveryNode(t *testing.T) {
	shader := test.MustParse(t, sampleShader)

	visited := 0
	Walk(shader, func(_ *Traversal, n ast.Node) bool {
		visited++
		return true
	})
	assert.Equal(t, countNodes(shader), visited)
}

func TestWalkSkipsChildren(t *testing.T) {
	shader := test.MustParse(t, sampleShader)

	var methods, variables int
	Walk(shader, func(_ *Traversal, n ast.Node) bool {
		switch n.(type) {
		case *ast.MethodDefinition:
			methods++
			return false
		case *ast.Variable:
			variables++
		}
		return true
	})
	assert.Equal(t, 1, methods)
	// N and the two struct fields and the two cbuffer members; the locals
	// inside shade are skipped.
	assert.Equal(t, 5, variables)
}

func TestCustomHandlerStopsDescent(t *testing.T) {
	shader := test.MustParse(t, "static const int N = (1 + 2) * 3;")

	c := &literalCounter{}
	c.Init(c)
	out := c.VisitDynamic(shader)
	assert.Same(t, shader, out)
	assert.Equal(t, 3, c.literals)
}

func TestParentAndStack(t *testing.T) {
	shader := test.MustParse(t, "static const int N = 1 + 2;")

	var parents []string
	var depth int
	Walk(shader, func(tr *Traversal, n ast.Node) bool {
		if _, ok := n.(*ast.LiteralExpression); ok {
			parents = append(parents, fmt.Sprintf("%T", tr.Parent()))
			depth = len(tr.Stack())
			assert.Same(t, n, tr.Current())
			assert.Same(t, shader, tr.Stack()[0])
		}
		return true
	})
	assert.Equal(t, []string{"*ast.BinaryExpression", "*ast.BinaryExpression"}, parents)
	// Shader, Variable, BinaryExpression, LiteralExpression
	assert.Equal(t, 4, depth)
}

func TestParentOfRootIsNil(t *testing.T) {
	shader := test.MustParse(t, "int x;")
	Walk(shader, func(tr *Traversal, n ast.Node) bool {
		if n == ast.Node(shader) {
			assert.Nil(t, tr.Parent())
		}
		return true
	})
}

// ----------------------------------------------------------------------------
// Scopes
// ----------------------------------------------------------------------------

func describeDeclaration(d ast.Declaration) string {
	switch d := d.(type) {
	case nil:
		return "none"
	case *ast.Parameter:
		return "param " + d.Name.Text
	case *ast.Variable:
		if d.InitialValue != nil {
			return d.Name.Text + " = " + printer.Expression(d.InitialValue)
		}
		return d.Name.Text
	}
	return fmt.Sprintf("%T", d)
}

func resolveReferences(t *testing.T, source string) []string {
	t.Helper()
	var out []string
	Walk(test.MustParse(t, source), func(tr *Traversal, n ast.Node) bool {
		if ref, ok := n.(*ast.VariableReferenceExpression); ok {
			out = append(out, ref.Name.Text+" -> "+describeDeclaration(tr.FindDeclaration(ref.Name.Text)))
		}
		return true
	})
	return out
}

func TestScopeShadowing(t *testing.T) {
	refs := resolveReferences(t, `
static const int N = 1;
int f(int N) {
	int a = N;
	{ int N = 3; a = N; }
	return N;
}
static const int M = N;
`)
	assert.Equal(t, []string{
		"N -> param N",
		"a -> a = N",
		"N -> N = 3",
		"N -> param N",
		"N -> N = 1",
	}, refs)
}

func TestForStatementScope(t *testing.T) {
	refs := resolveReferences(t, `
static const int i = 7;
void f() {
	for (int i = 0; i < 4; i++) {}
	int j = i;
}
`)
	assert.Equal(t, []string{
		"i -> i = 0",
		"i -> i = 0",
		"i -> i = 7",
	}, refs)
}

func TestConstantBufferMembersInEnclosingScope(t *testing.T) {
	shader := test.MustParse(t, `
cbuffer Frame { float4 tint; };
float4 g() { return tint; }
`)

	found := false
	Walk(shader, func(tr *Traversal, n ast.Node) bool {
		if ref, ok := n.(*ast.VariableReferenceExpression); ok && ref.Name.Text == "tint" {
			found = true
			scopes := tr.Scopes()
			// root, shader, method
			require.Len(t, scopes, 3)
			assert.Len(t, scopes[1].Lookup("tint"), 1)
			assert.Empty(t, scopes[2].Lookup("tint"))
		}
		return true
	})
	assert.True(t, found)
}

func TestMethodNameDeclaredOutsideItsScope(t *testing.T) {
	shader := test.MustParse(t, "float f(float x) { return x; }")

	Walk(shader, func(tr *Traversal, n ast.Node) bool {
		if _, ok := n.(*ast.ReturnStatement); ok {
			scopes := tr.Scopes()
			require.Len(t, scopes, 3)
			assert.Len(t, scopes[1].Lookup("f"), 1)
			assert.Len(t, scopes[2].Lookup("x"), 1)
			assert.Empty(t, scopes[2].Lookup("f"))
		}
		return true
	})
}

func TestScopeStackIsRestored(t *testing.T) {
	shader := test.MustParse(t, sampleShader)

	w := &Walker{}
	w.Init(w)
	w.VisitDynamic(shader)
	assert.Len(t, w.Scopes(), 1)
	assert.Empty(t, w.Stack())
	assert.Nil(t, w.Current())
}

func TestFindDeclarationsOverloads(t *testing.T) {
	w := &Walker{}
	w.Init(w)

	outer := ast.NewVariable(ast.NewScalarType("float"), "f", nil)
	first := &ast.MethodDeclaration{Name: ast.NewIdentifier("f")}
	second := &ast.MethodDeclaration{Name: ast.NewIdentifier("f")}
	w.Declare(outer)
	w.PushScope()
	w.Declare(first)
	w.Declare(second)
	w.Declare(&ast.Variable{SubVariables: []*ast.Variable{outer}})

	assert.Same(t, first, w.FindDeclaration("f"))
	found := w.FindDeclarations("f")
	require.Len(t, found, 3)
	assert.Same(t, first, found[0])
	assert.Same(t, second, found[1])
	assert.Same(t, outer, found[2])
	assert.Equal(t, 2, w.Scopes()[1].Len())
	assert.Nil(t, w.FindDeclaration("g"))

	d, i := w.FindDeclarationScope("f")
	assert.Same(t, first, d)
	assert.Equal(t, 1, i)
	d, i = w.FindDeclarationScope("g")
	assert.Nil(t, d)
	assert.Equal(t, -1, i)

	w.PopScope()
	d, i = w.FindDeclarationScope("f")
	assert.Same(t, outer, d)
	assert.Equal(t, 0, i)
	assert.Panics(t, w.PopScope)
}

func TestUseScopesSharesDeclarations(t *testing.T) {
	seed := NewScope()
	n := ast.NewVariable(ast.NewScalarType("int"), "N", ast.NewLiteralExpression(4))
	seed.Declare(n)

	w := &Walker{}
	w.Init(w)
	w.UseScopes([]*Scope{seed})
	assert.Same(t, n, w.FindDeclaration("N"))

	w.UseScopes(nil)
	assert.Nil(t, w.FindDeclaration("N"))
	assert.Len(t, w.Scopes(), 1)
}

// ----------------------------------------------------------------------------
// Static Dispatch
// ----------------------------------------------------------------------------

type variableKinds struct {
	Walker
	seen []string
}

func (v *variableKinds) RegisterHandlers(h *dispatch.Handlers) {
	dispatch.Handle(h, func(v *variableKinds, n *ast.Variable) ast.Node {
		v.seen = append(v.seen, "variable")
		return n
	})
	dispatch.Handle(h, func(v *variableKinds, n *ast.Parameter) ast.Node {
		v.seen = append(v.seen, "parameter")
		return n
	})
}

func TestVisitAsUsesStaticType(t *testing.T) {
	param := &ast.Parameter{Variable: *ast.NewVariable(ast.NewScalarType("int"), "p", nil)}

	v := &variableKinds{}
	v.Init(v)
	assert.Same(t, param, v.VisitDynamic(param))
	assert.Same(t, param, VisitAs[*ast.Variable](&v.Traversal, param))
	assert.Equal(t, []string{"parameter", "variable"}, v.seen)

	// Both visits declared the parameter in the root scope.
	assert.Len(t, v.Scopes()[0].Lookup("p"), 2)
}

// ----------------------------------------------------------------------------
// Re-entrancy
// ----------------------------------------------------------------------------

func TestReentrancyPanics(t *testing.T) {
	bin := ast.NewBinary(ast.BinaryPlus, ast.NewLiteralExpression(1), nil)
	bin.Right = ast.NewParenthesized(bin)

	w := &Walker{}
	w.Init(w)
	assert.PanicsWithError(t, "visitor: *ast.BinaryExpression is already being visited", func() {
		w.VisitDynamic(bin)
	})
}

func TestSharedSiblingIsNotReentrant(t *testing.T) {
	shared := ast.NewLiteralExpression(2)
	bin := ast.NewBinary(ast.BinaryMultiply, shared, shared)

	visits := 0
	assert.NotPanics(t, func() {
		Walk(bin, func(_ *Traversal, n ast.Node) bool {
			if n == ast.Node(shared) {
				visits++
			}
			return true
		})
	})
	assert.Equal(t, 2, visits)
}

func TestUseBeforeInitPanics(t *testing.T) {
	var w Walker
	assert.Panics(t, func() { w.VisitDynamic(ast.NewLiteralExpression(1)) })
}

// ----------------------------------------------------------------------------
// Rewriter
// ----------------------------------------------------------------------------

func TestRewriteReplacesAndRemoves(t *testing.T) {
	shader := test.MustParse(t, "void f() { ; x = N; ; }")

	out := RewriteTree(shader, func(_ *Traversal, n ast.Node) ast.Node {
		switch n := n.(type) {
		case *ast.EmptyStatement:
			return nil
		case *ast.VariableReferenceExpression:
			if n.Name.Text == "N" {
				return ast.NewLiteralExpression(8)
			}
		}
		return n
	})
	assert.Same(t, shader, out)

	method := shader.Declarations[0].(*ast.MethodDefinition)
	require.Len(t, method.Body.Statements, 1)
	stmt := method.Body.Statements[0].(*ast.ExpressionStatement)
	assert.Equal(t, "x = 8", printer.Expression(stmt.Expression))
}

func TestRewriteIdentityIsStable(t *testing.T) {
	shader := test.MustParse(t, sampleShader)
	before := printer.Dump(shader)

	identity := func(_ *Traversal, n ast.Node) ast.Node { return n }
	assert.Same(t, shader, RewriteTree(shader, identity))
	assert.Same(t, shader, RewriteTree(shader, identity))
	test.AssertEqualWithDiff(t, printer.Dump(shader), before)
}

func TestRewriteCanReplaceRoot(t *testing.T) {
	expr, errs := parser.ParseExpression("(1 + 2)")
	require.Empty(t, errs)

	out := RewriteTree(expr, func(_ *Traversal, n ast.Node) ast.Node {
		if p, ok := n.(*ast.ParenthesizedExpression); ok {
			return p.Content
		}
		return n
	})
	assert.Equal(t, "1 + 2", printer.Expression(out.(ast.Expression)))
}

func TestRewriteWrongCategoryPanics(t *testing.T) {
	expr, errs := parser.ParseExpression("a + 1")
	require.Empty(t, errs)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*ast.ReplaceError)
		assert.True(t, ok, "unexpected panic %v", r)
	}()
	RewriteTree(expr, func(_ *Traversal, n ast.Node) ast.Node {
		if _, ok := n.(*ast.LiteralExpression); ok {
			return &ast.ReturnStatement{}
		}
		return n
	})
}

// ----------------------------------------------------------------------------
// Cloner
// ----------------------------------------------------------------------------

func TestCloneSharesNoNode(t *testing.T) {
	shader := test.MustParse(t, sampleShader)

	clone := CloneOf(shader)
	require.NotNil(t, clone)
	assert.NotSame(t, shader, clone)
	test.AssertEqualWithDiff(t, printer.Dump(clone), printer.Dump(shader))

	original := make(map[ast.Node]bool)
	collectNodes(shader, original)
	copied := make(map[ast.Node]bool)
	collectNodes(clone, copied)
	assert.Equal(t, len(original), len(copied))
	for n := range copied {
		assert.False(t, original[n], "clone shares %T", n)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	shader := test.MustParse(t, "static const int N = 1 + 2; int M;")
	before := printer.Dump(shader)

	clone := CloneOf(shader)
	clone.Declarations = clone.Declarations[:1]
	v := clone.Declarations[0].(*ast.Variable)
	v.Name.Text = "K"
	v.InitialValue.(*ast.BinaryExpression).Operator = ast.BinaryMinus

	test.AssertEqualWithDiff(t, printer.Dump(shader), before)
	assert.Len(t, shader.Declarations, 2)
}

func TestCloneNil(t *testing.T) {
	assert.Nil(t, Clone(nil))
	var bin *ast.BinaryExpression
	assert.Nil(t, CloneOf(bin))
}
