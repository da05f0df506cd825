// Package transform holds whole-tree rewrites built on the visitor
// strategies.
package transform

import (
	"math"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/diagnostic"
	"github.com/HugoDaniel/shadertree/internal/dispatch"
	"github.com/HugoDaniel/shadertree/internal/evaluator"
	"github.com/HugoDaniel/shadertree/internal/printer"
	"github.com/HugoDaniel/shadertree/internal/visitor"
)

// ----------------------------------------------------------------------------
// Array Sizes
// ----------------------------------------------------------------------------

type arraySizes struct {
	visitor.Rewriter
	options     []evaluator.Option
	diagnostics diagnostic.List
	resolved    int
}

func (a *arraySizes) RegisterHandlers(h *dispatch.Handlers) {
	dispatch.Handle(h, func(a *arraySizes, n *ast.ArrayType) ast.Node {
		a.DefaultVisit(n)
		a.resolveAll(n.Dimensions)
		return n
	})
}

// DefaultVisit also folds the declarator sizes of identifiers. It runs on
// the whole node so that the extra children of the identifier kinds that
// embed Identifier are rewritten too.
func (a *arraySizes) DefaultVisit(n ast.Node) ast.Node {
	a.Rewriter.DefaultVisit(n)
	if id := identifierOf(n); id != nil {
		a.resolveAll(id.Indices)
	}
	return n
}

func identifierOf(n ast.Node) *ast.Identifier {
	switch n := n.(type) {
	case *ast.Identifier:
		return n
	case *ast.IdentifierDot:
		return &n.Identifier
	case *ast.IdentifierGeneric:
		return &n.Identifier
	case *ast.IdentifierNs:
		return &n.Identifier
	case *ast.ClassIdentifierGeneric:
		return &n.Identifier
	case *ast.LiteralIdentifier:
		return &n.Identifier
	case *ast.TypeIdentifier:
		return &n.Identifier
	}
	return nil
}

func (a *arraySizes) resolveAll(dims []ast.Expression) {
	for i, dim := range dims {
		if ast.IsNil(dim) {
			continue
		}
		if _, ok := dim.(*ast.LiteralExpression); ok {
			continue
		}
		if lit := a.resolve(dim); lit != nil {
			dims[i] = lit
		}
	}
}

func (a *arraySizes) resolve(dim ast.Expression) ast.Expression {
	opts := make([]evaluator.Option, 0, len(a.options)+1)
	opts = append(opts, a.options...)
	opts = append(opts, evaluator.WithScopes(a.Scopes()...))

	r := evaluator.Evaluate(dim, opts...)
	a.diagnostics.Merge(&r.Diagnostics)
	if !r.OK() {
		return nil
	}
	if r.Value < 0 || r.Value != math.Trunc(r.Value) || r.Value > math.MaxInt32 {
		a.diagnostics.Errorf(dim.Span(), diagnostic.CodeInvalidArraySize,
			"array size [%s] is not a valid size: %g", printer.Expression(dim), r.Value)
		return nil
	}

	lit := ast.NewLiteralExpression(r.Int())
	lit.SetSpan(dim.Span())
	lit.Literal.SetSpan(dim.Span())
	a.resolved++
	return lit
}

// ResolveArraySizes replaces every array dimension that is not already a
// literal with the integer it folds to, evaluated in the scope where the
// dimension appears. Dimensions that cannot be folded are left in place
// and reported. It returns the number of dimensions replaced.
func ResolveArraySizes(root ast.Node, opts ...evaluator.Option) (int, *diagnostic.List) {
	a := &arraySizes{options: opts}
	a.Init(a)
	a.VisitDynamic(root)
	return a.resolved, &a.diagnostics
}

// ----------------------------------------------------------------------------
// Substitution
// ----------------------------------------------------------------------------

// Substitute replaces each reference to a name in values with a fresh
// clone of its expression. A reference that resolves to a variable or
// parameter in scope is left alone, so locals shadow the substitution.
// It returns the possibly new root and the number of replacements.
func Substitute(root ast.Node, values map[string]ast.Expression) (ast.Node, int) {
	replaced := 0
	out := visitor.RewriteTree(root, func(t *visitor.Traversal, n ast.Node) ast.Node {
		ref, ok := n.(*ast.VariableReferenceExpression)
		if !ok || ref.Name == nil {
			return n
		}
		value, ok := values[ref.Name.Text]
		if !ok {
			return n
		}
		switch t.FindDeclaration(ref.Name.Text).(type) {
		case *ast.Variable, *ast.Parameter:
			return n
		}
		replaced++
		return visitor.Clone(value)
	})
	return out, replaced
}

// ----------------------------------------------------------------------------
// Empty Statements
// ----------------------------------------------------------------------------

// PruneEmptyStatements removes empty statements from statement lists.
// An empty statement that is the whole body of an if or a loop is kept.
// It returns the number of statements removed.
func PruneEmptyStatements(root ast.Node) int {
	removed := 0
	visitor.RewriteTree(root, func(t *visitor.Traversal, n ast.Node) ast.Node {
		if _, ok := n.(*ast.EmptyStatement); !ok {
			return n
		}
		if _, ok := t.Parent().(*ast.StatementList); !ok {
			return n
		}
		removed++
		return nil
	})
	return removed
}
