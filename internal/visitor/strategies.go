package visitor

import "github.com/HugoDaniel/shadertree/internal/ast"

// ----------------------------------------------------------------------------
// Walker
// ----------------------------------------------------------------------------

// Walker visits every node without changing the tree.
type Walker struct {
	Traversal
}

// DefaultVisit visits the children of n and returns n.
func (w *Walker) DefaultVisit(n ast.Node) ast.Node {
	ast.WalkChildren(n, func(c ast.Node) { w.VisitDynamic(c) })
	return n
}

// ----------------------------------------------------------------------------
// Rewriter
// ----------------------------------------------------------------------------

// Rewriter stores each child's dispatch result back into its slot. A nil
// result removes a list entry or clears a single slot; a result of the
// wrong category panics with *ast.ReplaceError.
type Rewriter struct {
	Traversal
}

// DefaultVisit rewrites the children of n and returns n.
func (r *Rewriter) DefaultVisit(n ast.Node) ast.Node {
	ast.RewriteChildren(n, r.VisitDynamic)
	return n
}

// ----------------------------------------------------------------------------
// Cloner
// ----------------------------------------------------------------------------

// Cloner produces a structurally equal tree that shares no node with the
// source.
type Cloner struct {
	Traversal
}

// DefaultVisit returns a copy of n whose children are clones of the
// children of n.
func (c *Cloner) DefaultVisit(n ast.Node) ast.Node {
	dup := ast.ShallowCopy(n)
	ast.RewriteChildren(dup, c.VisitDynamic)
	return dup
}

// ----------------------------------------------------------------------------
// Closure Helpers
// ----------------------------------------------------------------------------

type funcWalker struct {
	Walker
	fn func(t *Traversal, n ast.Node) bool
}

func (w *funcWalker) DefaultVisit(n ast.Node) ast.Node {
	if w.fn(&w.Traversal, n) {
		w.Walker.DefaultVisit(n)
	}
	return n
}

// Walk calls fn for every node of the tree in depth-first pre-order.
// Returning false skips the children of n. The traversal gives fn access
// to the scope chain at n.
func Walk(root ast.Node, fn func(t *Traversal, n ast.Node) bool) {
	w := &funcWalker{fn: fn}
	w.Init(w)
	w.VisitDynamic(root)
}

type funcRewriter struct {
	Rewriter
	fn func(t *Traversal, n ast.Node) ast.Node
}

func (r *funcRewriter) DefaultVisit(n ast.Node) ast.Node {
	r.Rewriter.DefaultVisit(n)
	return r.fn(&r.Traversal, n)
}

// RewriteTree rewrites the tree bottom-up: the children of a node are
// rewritten before fn sees the node, and fn's result replaces it. The
// possibly new root is returned.
func RewriteTree(root ast.Node, fn func(t *Traversal, n ast.Node) ast.Node) ast.Node {
	r := &funcRewriter{fn: fn}
	r.Init(r)
	return r.VisitDynamic(root)
}

// Clone returns a deep copy of root.
func Clone(root ast.Node) ast.Node {
	c := &Cloner{}
	c.Init(c)
	return c.VisitDynamic(root)
}

// CloneOf is Clone for a statically known variant.
func CloneOf[T ast.Node](root T) T {
	out, _ := Clone(root).(T)
	return out
}
