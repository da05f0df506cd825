package ast

import "slices"

// ----------------------------------------------------------------------------
// Declarations and Leaves
// ----------------------------------------------------------------------------

// AttributeDeclaration is a bracketed attribute: [numthreads(8, 8, 1)].
type AttributeDeclaration struct {
	NodeBase
	Name       *Identifier
	Parameters []Expression
}

// GenericDeclaration declares a generic argument of a shader class.
type GenericDeclaration struct {
	NodeBase
	Name        *Identifier
	Index       int
	IsUsingBase bool
}

// Identifier is a name. Indices carries declarator-style array sizes
// written after the name (float a[4]) when the front end keeps them there.
type Identifier struct {
	NodeBase
	Text               string
	IsSpecialReference bool
	Indices            []Expression
}

// Literal holds a constant value as parsed. Value is one of bool, int64,
// uint64, float64 or string; Text is the original spelling.
type Literal struct {
	NodeBase
	Value       any
	Text        string
	SubLiterals []*Literal
}

// MethodDeclaration is a function prototype. It opens a scope for its
// parameters.
type MethodDeclaration struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Qualifiers *Qualifier
	ReturnType TypeBase
	Name       *Identifier
	Parameters []*Parameter
}

// MethodDefinition is a function with a body. Parameters and the locals
// declared directly in Body share the method scope.
type MethodDefinition struct {
	MethodDeclaration
	Body *StatementList
}

// Variable declares a variable, struct field or constant. A variable group
// (float a, b;) has no name of its own and lists its members in
// SubVariables.
type Variable struct {
	NodeBase
	Attributes   []*AttributeDeclaration
	Qualifiers   *Qualifier
	Type         TypeBase
	InitialValue Expression
	Name         *Identifier
	SubVariables []*Variable
}

// Parameter is a method parameter.
type Parameter struct {
	Variable
}

// Qualifier collects storage and interpolation keywords together with
// structured specifiers (Semantic, RegisterLocation, PackOffset,
// LayoutQualifier).
type Qualifier struct {
	NodeBase
	Keywords   []string
	Specifiers []Node
}

// Shader is the root of a translation unit.
type Shader struct {
	NodeBase
	Declarations []Node
}

// IsGroup reports whether v only groups SubVariables.
func (v *Variable) IsGroup() bool {
	return len(v.SubVariables) > 0
}

// Has reports whether the keyword is present.
func (q *Qualifier) Has(keyword string) bool {
	return q != nil && slices.Contains(q.Keywords, keyword)
}

// IsConstant reports whether the qualifiers mark a compile-time constant.
func (q *Qualifier) IsConstant() bool {
	return q.Has("const")
}

func (m *MethodDeclaration) DeclarationName() *Identifier  { return m.Name }
func (v *Variable) DeclarationName() *Identifier           { return v.Name }
func (g *GenericDeclaration) DeclarationName() *Identifier { return g.Name }

func (*MethodDeclaration) isScopeContainer() {}
func (*Shader) isScopeContainer()            {}

func (i *Identifier) String() string {
	if i == nil {
		return ""
	}
	return i.Text
}
