package visitor

import "github.com/HugoDaniel/shadertree/internal/ast"

// Scope holds the declarations made directly inside one scope container.
// A name may be declared more than once (function overloads); lookups
// return declarations in declaration order.
type Scope struct {
	byName map[string][]ast.Declaration
	order  []ast.Declaration
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{byName: make(map[string][]ast.Declaration)}
}

// Declare adds d under its declared name. Nameless declarations are
// ignored.
func (s *Scope) Declare(d ast.Declaration) {
	name := ast.NameOf(d)
	if name == "" {
		return
	}
	s.byName[name] = append(s.byName[name], d)
	s.order = append(s.order, d)
}

// Lookup returns the declarations named name.
func (s *Scope) Lookup(name string) []ast.Declaration {
	return s.byName[name]
}

// Declarations returns every declaration in declaration order.
func (s *Scope) Declarations() []ast.Declaration {
	return s.order
}

// Len returns the number of declarations.
func (s *Scope) Len() int {
	return len(s.order)
}
