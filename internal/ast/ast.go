// Package ast defines the shader syntax tree shared by the HLSL, GLSL and
// shader-class front ends.
//
// Every node is a pointer to a struct that embeds NodeBase. Node categories
// (expressions, statements, types, declarations, scope containers) are
// closed interfaces implemented through unexported marker methods. A node
// struct that embeds another node struct is a subtype of it: Parameter is a
// Variable, MethodDefinition is a MethodDeclaration, and so on.
//
// Children are owned: every field whose type is a node, or a slice of nodes,
// is a child slot, and a node appears in at most one slot of one parent.
package ast

import "fmt"

// ----------------------------------------------------------------------------
// Source Location
// ----------------------------------------------------------------------------

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int32
	End   int32
}

// Len returns the number of bytes covered.
func (s Span) Len() int32 {
	return s.End - s.Start
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	out := a
	if b.Start < out.Start {
		out.Start = b.Start
	}
	if b.End > out.End {
		out.End = b.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// ----------------------------------------------------------------------------
// Node Categories
// ----------------------------------------------------------------------------

// Node is implemented by every tree node.
type Node interface {
	Span() Span
	SetSpan(Span)
	isNode()
}

// NodeBase carries the source span. It is embedded by every node struct.
type NodeBase struct {
	Loc Span
}

func (b *NodeBase) Span() Span     { return b.Loc }
func (b *NodeBase) SetSpan(s Span) { b.Loc = s }
func (*NodeBase) isNode()          {}

// Expression is a node producing a value.
type Expression interface {
	Node
	isExpression()
}

// Statement is a node executed for effect.
type Statement interface {
	Node
	isStatement()
}

// TypeBase is a node naming or describing a type.
type TypeBase interface {
	Node
	isType()
}

// Declaration is a node introducing a name into the enclosing scope.
type Declaration interface {
	Node
	// DeclarationName returns the declared name, or nil for anonymous
	// declarations such as a variable group.
	DeclarationName() *Identifier
}

// ScopeContainer is a node that opens a lexical scope for the
// declarations beneath it.
type ScopeContainer interface {
	Node
	isScopeContainer()
}

// NameOf returns the declared name text of d, or "" when it has none.
func NameOf(d Declaration) string {
	if id := d.DeclarationName(); id != nil {
		return id.Text
	}
	return ""
}
