// Package visitor implements scope-tracking depth-first traversal on top
// of the dispatch engine, and the three traversal strategies built from
// it: Walker observes, Rewriter edits in place and Cloner copies.
//
// A concrete visitor embeds one strategy, registers extra handlers
// through dispatch.Registrar and calls Init with itself:
//
//	type counter struct {
//		visitor.Walker
//		literals int
//	}
//
//	func (c *counter) RegisterHandlers(h *dispatch.Handlers) {
//		dispatch.Handle(h, func(c *counter, n *ast.LiteralExpression) ast.Node {
//			c.literals++
//			return n
//		})
//	}
//
//	c := &counter{}
//	c.Init(c)
//	c.VisitDynamic(root)
//
// Before a node is dispatched, a named declaration is added to the
// innermost scope, and a scope container pushes a fresh scope that is
// popped once its handler returns.
package visitor

import (
	"fmt"
	"reflect"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/dispatch"
)

// ReentrancyError reports a node dispatched while it is already on the
// traversal stack. It is raised with panic.
type ReentrancyError struct {
	Node ast.Node
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("visitor: %T is already being visited", e.Node)
}

// Traversal is the shared state of every strategy: the visitor itself,
// its dispatch table, the stack of nodes being visited and the scope
// chain.
type Traversal struct {
	self   any
	table  *dispatch.Table
	nodes  []ast.Node
	scopes []*Scope
}

// Init binds the traversal to self, the outermost visitor value, and
// resets its stacks to a single root scope.
func (t *Traversal) Init(self any) {
	t.self = self
	t.table = dispatch.For(self)
	t.nodes = t.nodes[:0]
	t.scopes = []*Scope{NewScope()}
}

// Table returns the dispatch table of the bound visitor.
func (t *Traversal) Table() *dispatch.Table {
	return t.table
}

// VisitDynamic dispatches n on its runtime type and returns the handler
// result. A nil node is returned unchanged.
func (t *Traversal) VisitDynamic(n ast.Node) ast.Node {
	if ast.IsNil(n) {
		return n
	}
	pushed := t.enter(n)
	defer t.leave(pushed)
	return t.table.Dispatch(t.self, n)
}

// VisitAs dispatches n as the static type T, ignoring more specific
// handlers for its runtime type.
func VisitAs[T ast.Node](t *Traversal, n ast.Node) ast.Node {
	if ast.IsNil(n) {
		return n
	}
	pushed := t.enter(n)
	defer t.leave(pushed)
	return t.table.DispatchAs(t.self, n, reflect.TypeFor[T]())
}

func (t *Traversal) enter(n ast.Node) bool {
	if t.table == nil {
		panic(&dispatch.ConfigError{Reason: "traversal used before Init"})
	}
	for _, active := range t.nodes {
		if active == n {
			panic(&ReentrancyError{Node: n})
		}
	}
	t.nodes = append(t.nodes, n)

	if d, ok := n.(ast.Declaration); ok {
		t.Declare(d)
	}
	if _, ok := n.(ast.ScopeContainer); ok {
		t.PushScope()
		return true
	}
	return false
}

func (t *Traversal) leave(pushedScope bool) {
	if pushedScope {
		t.PopScope()
	}
	t.nodes = t.nodes[:len(t.nodes)-1]
}

// Current returns the node being dispatched, or nil outside a visit.
func (t *Traversal) Current() ast.Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[len(t.nodes)-1]
}

// Parent returns the parent of the node being dispatched, or nil at the
// root.
func (t *Traversal) Parent() ast.Node {
	if len(t.nodes) < 2 {
		return nil
	}
	return t.nodes[len(t.nodes)-2]
}

// Stack returns the active nodes, outermost first.
func (t *Traversal) Stack() []ast.Node {
	return append([]ast.Node(nil), t.nodes...)
}

// ----------------------------------------------------------------------------
// Scopes
// ----------------------------------------------------------------------------

// Declare adds d to the innermost scope.
func (t *Traversal) Declare(d ast.Declaration) {
	t.scopes[len(t.scopes)-1].Declare(d)
}

// PushScope opens a new innermost scope.
func (t *Traversal) PushScope() *Scope {
	s := NewScope()
	t.scopes = append(t.scopes, s)
	return s
}

// PopScope closes the innermost scope. The root scope is never popped.
func (t *Traversal) PopScope() {
	if len(t.scopes) == 1 {
		panic("visitor: cannot pop the root scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Scopes returns the scope chain, outermost first.
func (t *Traversal) Scopes() []*Scope {
	return append([]*Scope(nil), t.scopes...)
}

// UseScopes replaces the scope chain with scopes, outermost first. The
// scopes are shared, not copied. An empty chain resets to a fresh root.
func (t *Traversal) UseScopes(scopes []*Scope) {
	if len(scopes) == 0 {
		t.scopes = []*Scope{NewScope()}
		return
	}
	t.scopes = append([]*Scope(nil), scopes...)
}

// FindDeclaration returns the innermost declaration named name, or nil.
func (t *Traversal) FindDeclaration(name string) ast.Declaration {
	d, _ := t.FindDeclarationScope(name)
	return d
}

// FindDeclarationScope is FindDeclaration that also returns the index in
// Scopes of the scope holding the declaration, or -1 if there is none.
// Scopes()[:i+1] is the chain visible where the declaration was made.
func (t *Traversal) FindDeclarationScope(name string) (ast.Declaration, int) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if found := t.scopes[i].Lookup(name); len(found) > 0 {
			return found[0], i
		}
	}
	return nil, -1
}

// FindDeclarations returns every declaration named name, innermost scope
// first.
func (t *Traversal) FindDeclarations(name string) []ast.Declaration {
	var out []ast.Declaration
	for i := len(t.scopes) - 1; i >= 0; i-- {
		out = append(out, t.scopes[i].Lookup(name)...)
	}
	return out
}
