package dispatch

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/HugoDaniel/shadertree/internal/ast"
)

// ----------------------------------------------------------------------------
// Test Visitors
// ----------------------------------------------------------------------------

// recorder notes which handler ran.
type recorder struct {
	seen []string
}

func (r *recorder) DefaultVisit(n ast.Node) ast.Node {
	r.seen = append(r.seen, "node")
	return n
}

func (r *recorder) RegisterHandlers(h *Handlers) {
	Handle(h, func(r *recorder, n *ast.BinaryExpression) ast.Node {
		r.seen = append(r.seen, "binary")
		return n
	})
	Handle(h, func(r *recorder, n ast.Expression) ast.Node {
		r.seen = append(r.seen, "expression")
		return n
	})
	Handle(h, func(r *recorder, n *ast.Variable) ast.Node {
		r.seen = append(r.seen, "variable")
		return n
	})
	Handle(h, func(r *recorder, n *ast.Identifier) ast.Node {
		r.seen = append(r.seen, "identifier:"+n.Text)
		return n
	})
}

func (r *recorder) last() string {
	if len(r.seen) == 0 {
		return ""
	}
	return r.seen[len(r.seen)-1]
}

// declarations prefers the Declaration category over the Variable base.
type declarations struct{ recorder }

func (d *declarations) RegisterHandlers(h *Handlers) {
	Handle(h, func(d *declarations, n ast.Declaration) ast.Node {
		d.seen = append(d.seen, "declaration")
		return n
	})
	Handle(h, func(d *declarations, n *ast.Variable) ast.Node {
		d.seen = append(d.seen, "variable")
		return n
	})
	Handle(h, func(d *declarations, n *ast.Parameter) ast.Node {
		d.seen = append(d.seen, "parameter")
		return n
	})
}

// methods registers through method expressions.
type methods struct{ recorder }

func (m *methods) RegisterHandlers(h *Handlers) {
	h.Func((*methods).VisitLiteral)
	h.Func((*methods).VisitStatement)
}

func (m *methods) VisitLiteral(n *ast.LiteralExpression) ast.Node {
	m.seen = append(m.seen, "literal")
	return ast.NewLiteralExpression(int64(0))
}

func (m *methods) VisitStatement(n ast.Statement) ast.Node {
	m.seen = append(m.seen, "statement")
	return nil
}

// replacer returns a fresh Variable when handed a base view.
type replacer struct{ recorder }

func (r *replacer) RegisterHandlers(h *Handlers) {
	Handle(h, func(r *replacer, n *ast.Variable) ast.Node {
		return ast.NewVariable(nil, "fresh", nil)
	})
}

// rootless has handlers but no root handler.
type rootless struct{}

func (rootless) RegisterHandlers(h *Handlers) {
	Handle(h, func(rootless, *ast.Literal) ast.Node { return nil })
}

type countingObserver struct {
	mu     sync.Mutex
	built  int
	hits   int
	misses int
}

func (o *countingObserver) TableBuilt(reflect.Type, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.built++
}

func (o *countingObserver) Resolved(_, _ reflect.Type, cached bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cached {
		o.hits++
	} else {
		o.misses++
	}
}

// ----------------------------------------------------------------------------
// Resolution
// ----------------------------------------------------------------------------

func TestExactMatchWins(t *testing.T) {
	r := &recorder{}
	table := For(r)
	bin := ast.NewBinary(ast.BinaryPlus, ast.NewLiteralExpression(int64(1)), ast.NewLiteralExpression(int64(2)))

	out := table.Dispatch(r, bin)
	assert.Same(t, bin, out)
	assert.Equal(t, "binary", r.last())
	assert.Equal(t, reflect.TypeFor[*ast.BinaryExpression](), table.HandlerType(reflect.TypeFor[*ast.BinaryExpression]()))
}

func TestCategoryFallback(t *testing.T) {
	r := &recorder{}
	table := For(r)

	table.Dispatch(r, ast.NewUnary(ast.UnaryMinus, ast.NewLiteralExpression(int64(1))))
	assert.Equal(t, "expression", r.last())

	table.Dispatch(r, &ast.EmptyStatement{})
	assert.Equal(t, "node", r.last())
}

func TestBaseChainFallback(t *testing.T) {
	r := &recorder{}
	table := For(r)

	param := &ast.Parameter{Variable: ast.Variable{Name: ast.NewIdentifier("p")}}
	out := table.Dispatch(r, param)
	assert.Equal(t, "variable", r.last())
	assert.Same(t, param, out, "returning the base view yields the original node")

	dot := &ast.IdentifierDot{Identifier: ast.Identifier{Text: "a.b"}}
	table.Dispatch(r, dot)
	assert.Equal(t, "identifier:a.b", r.last())
	assert.Equal(t, reflect.TypeFor[*ast.Identifier](), table.HandlerType(reflect.TypeOf(dot)))
}

func TestReplacementThroughBaseView(t *testing.T) {
	r := &replacer{}
	param := &ast.Parameter{Variable: ast.Variable{Name: ast.NewIdentifier("p")}}
	out := For(r).Dispatch(r, param)
	v, ok := out.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "fresh", v.Name.Text)
}

func TestInterfacesBeforeBaseChain(t *testing.T) {
	d := &declarations{}
	table := For(d)

	table.Dispatch(d, &ast.Parameter{})
	assert.Equal(t, "parameter", d.last(), "exact type first")

	table.Dispatch(d, &ast.MethodDefinition{})
	assert.Equal(t, "declaration", d.last())

	ancestry := table.Ancestry(reflect.TypeFor[*ast.Parameter]())
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[ast.Declaration](),
		reflect.TypeFor[*ast.Variable](),
		reflect.TypeFor[ast.Node](),
	}, ancestry)
}

func TestAncestryOrder(t *testing.T) {
	table := For(&recorder{})
	got := table.Ancestry(reflect.TypeFor[*ast.ShaderRootClassType]())
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[ast.ScopeContainer](),
		reflect.TypeFor[ast.Declaration](),
		reflect.TypeFor[ast.TypeBase](),
		reflect.TypeFor[*ast.ShaderClassType](),
		reflect.TypeFor[*ast.ClassType](),
		reflect.TypeFor[*ast.ObjectType](),
		reflect.TypeFor[ast.Node](),
	}, got)
}

func TestEveryVariantResolves(t *testing.T) {
	r := &recorder{}
	table := For(r)
	for _, nt := range ast.NodeTypes() {
		n := ast.New(nt)
		assert.NotPanics(t, func() { table.Dispatch(r, n) }, nt.String())
		assert.NotNil(t, table.HandlerType(nt), nt.String())
	}
}

func TestMethodExpressionHandlers(t *testing.T) {
	m := &methods{}
	table := For(m)

	out := table.Dispatch(m, ast.NewLiteralExpression(int64(5)))
	assert.Equal(t, "literal", m.last())
	lit, ok := out.(*ast.LiteralExpression)
	require.True(t, ok)
	assert.Equal(t, int64(0), lit.Literal.Value)

	assert.Nil(t, table.Dispatch(m, &ast.ReturnStatement{}))
	assert.Equal(t, "statement", m.last())
}

func TestNilNode(t *testing.T) {
	r := &recorder{}
	var bin *ast.BinaryExpression
	out := For(r).Dispatch(r, bin)
	assert.True(t, ast.IsNil(out))
	assert.Empty(t, r.seen)
}

// ----------------------------------------------------------------------------
// Static Dispatch
// ----------------------------------------------------------------------------

func TestDispatchAsBaseVariant(t *testing.T) {
	d := &declarations{}
	table := For(d)
	param := &ast.Parameter{}

	out := table.DispatchAs(d, param, reflect.TypeFor[*ast.Variable]())
	assert.Equal(t, "variable", d.last())
	assert.Same(t, param, out)

	table.DispatchAs(d, param, reflect.TypeFor[*ast.Parameter]())
	assert.Equal(t, "parameter", d.last())
}

func TestDispatchAsInterface(t *testing.T) {
	r := &recorder{}
	table := For(r)
	bin := ast.NewBinary(ast.BinaryMinus, nil, nil)

	table.DispatchAs(r, bin, reflect.TypeFor[ast.Expression]())
	assert.Equal(t, "expression", r.last())

	table.DispatchAs(r, bin, reflect.TypeFor[ast.Node]())
	assert.Equal(t, "node", r.last())
}

func TestDispatchAsUnrelatedType(t *testing.T) {
	r := &recorder{}
	table := For(r)
	requireConfigError(t, func() {
		table.DispatchAs(r, &ast.Parameter{}, reflect.TypeFor[*ast.Identifier]())
	})
	requireConfigError(t, func() {
		table.DispatchAs(r, &ast.Parameter{}, reflect.TypeFor[ast.Expression]())
	})
}

// ----------------------------------------------------------------------------
// Caching
// ----------------------------------------------------------------------------

type cachedVisitor struct{ visits int }

func (c *cachedVisitor) DefaultVisit(n ast.Node) ast.Node {
	c.visits++
	return n
}

func TestResolutionIsMemoized(t *testing.T) {
	obs := &countingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	v := &cachedVisitor{}
	table := For(v)
	assert.Same(t, table, For(&cachedVisitor{}), "one table per visitor type")
	assert.Equal(t, 1, obs.built)

	n := &ast.EmptyStatement{}
	first := table.HandlerType(reflect.TypeOf(n))
	for range 10 {
		table.Dispatch(v, n)
	}
	assert.Equal(t, first, table.HandlerType(reflect.TypeOf(n)))
	assert.Equal(t, 10, v.visits)
	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 11, obs.hits)
}

type concurrentVisitor struct{ visits int }

func (c *concurrentVisitor) DefaultVisit(n ast.Node) ast.Node {
	c.visits++
	return n
}

func TestConcurrentDispatch(t *testing.T) {
	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			v := &concurrentVisitor{}
			table := For(v)
			for _, nt := range ast.NodeTypes() {
				table.Dispatch(v, ast.New(nt))
			}
			if v.visits != len(ast.NodeTypes()) {
				t.Errorf("saw %d dispatches", v.visits)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

// ----------------------------------------------------------------------------
// Configuration Errors
// ----------------------------------------------------------------------------

func requireConfigError(t *testing.T, fn func()) *ConfigError {
	t.Helper()
	var got *ConfigError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			err, ok := r.(*ConfigError)
			require.True(t, ok, "panic value %T: %v", r, r)
			got = err
		}()
		fn()
	}()
	return got
}

func newHandlers[V any]() *Handlers {
	return &Handlers{visitor: reflect.TypeFor[V](), byType: make(map[reflect.Type]handler)}
}

func TestMissingRootHandler(t *testing.T) {
	err := requireConfigError(t, func() { For(rootless{}) })
	assert.Contains(t, err.Error(), "no root handler")
}

func TestInvalidHandlerSignatures(t *testing.T) {
	h := newHandlers[*recorder]()

	err := requireConfigError(t, func() { h.Func(func(*recorder) ast.Node { return nil }) })
	assert.Contains(t, err.Reason, "exactly one node parameter")

	requireConfigError(t, func() {
		h.Func(func(*recorder, *ast.Literal, *ast.Literal) ast.Node { return nil })
	})
	requireConfigError(t, func() { h.Func(func(*recorder, *ast.Literal) {}) })
	requireConfigError(t, func() { h.Func(func(*recorder, *ast.Literal) *ast.Literal { return nil }) })
	requireConfigError(t, func() { h.Func("not a function") })

	err = requireConfigError(t, func() { h.Func(func(*recorder, string) ast.Node { return nil }) })
	assert.Contains(t, err.Reason, "neither a node type")

	err = requireConfigError(t, func() { h.Func(func(*recorder, interface{ Unrelated() }) ast.Node { return nil }) })
	assert.Contains(t, err.Reason, "neither a node type")

	err = requireConfigError(t, func() { h.Func(func(*methods, *ast.Literal) ast.Node { return nil }) })
	assert.Contains(t, err.Reason, "does not accept the visitor")
}

func TestDuplicateHandler(t *testing.T) {
	h := newHandlers[*recorder]()
	Handle(h, func(*recorder, *ast.Literal) ast.Node { return nil })
	err := requireConfigError(t, func() {
		Handle(h, func(*recorder, *ast.Literal) ast.Node { return nil })
	})
	assert.Contains(t, err.Reason, "duplicate")
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{
		Visitor: reflect.TypeFor[*recorder](),
		Node:    reflect.TypeFor[*ast.Literal](),
		Reason:  "no handler found",
	}
	assert.Equal(t, "dispatch: *dispatch.recorder: *ast.Literal: no handler found", err.Error())
	assert.Equal(t, "dispatch: nil visitor", (&ConfigError{Reason: "nil visitor"}).Error())
}
