package ast

// ----------------------------------------------------------------------------
// HLSL
// ----------------------------------------------------------------------------

// Annotations is an effect-framework annotation block: <float x = 1;>.
type Annotations struct {
	NodeBase
	Variables []*Variable
}

// AsmExpression holds an inline asm block verbatim.
type AsmExpression struct {
	NodeBase
	Text string
}

// CastExpression is a C-style cast: (float)x.
type CastExpression struct {
	NodeBase
	Target TypeBase
	From   Expression
}

// ClassType declares an HLSL class and opens a scope for its members.
type ClassType struct {
	ObjectType
	BaseClasses       []*TypeName
	GenericParameters []TypeBase
	GenericArguments  []TypeBase
	Members           []Node
}

// CompileExpression is compile profile function(...) in a technique pass.
type CompileExpression struct {
	NodeBase
	Profile  *Identifier
	Function Expression
}

// ConstantBuffer is a cbuffer or tbuffer block. Its members are declared
// in the enclosing scope, so it is not a scope container.
type ConstantBuffer struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Kind       string
	Name       *Identifier
	Register   *RegisterLocation
	Qualifiers *Qualifier
	Members    []Node
}

// IdentifierDot is a dotted name: a.b.c.
type IdentifierDot struct {
	Identifier
	Identifiers []*Identifier
}

// IdentifierGeneric is a name with generic arguments: name<a, b>.
type IdentifierGeneric struct {
	Identifier
	Identifiers []*Identifier
}

// IdentifierNs is a namespace-qualified name: a::b.
type IdentifierNs struct {
	Identifier
	Identifiers []*Identifier
}

// InterfaceType declares an HLSL interface.
type InterfaceType struct {
	ObjectType
	GenericParameters []TypeBase
	Methods           []*MethodDeclaration
}

// PackOffset is packoffset(c0.x).
type PackOffset struct {
	NodeBase
	Value *Identifier
}

// Pass is one pass of a technique.
type Pass struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Name       *Identifier
	Items      []Expression
}

// RegisterLocation is register(profile, t0).
type RegisterLocation struct {
	NodeBase
	Profile  *Identifier
	Register *Identifier
}

// Semantic is the : NAME suffix of a declaration.
type Semantic struct {
	NodeBase
	Name *Identifier
}

// StateExpression is an effect state object initializer:
// SamplerState s { Filter = LINEAR; }.
type StateExpression struct {
	NodeBase
	StateType   TypeBase
	Initializer *StateInitializer
}

type StateInitializer struct {
	NodeBase
	Items []Expression
}

type Technique struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Type       *Identifier
	Name       *Identifier
	Passes     []*Pass
}

// TextureType is a texture object with an optional element type:
// Texture2D<float4>.
type TextureType struct {
	ObjectType
	Type TypeBase
}

// Typedef declares one or more type aliases.
type Typedef struct {
	NodeBase
	Qualifiers     *Qualifier
	Type           TypeBase
	Name           *Identifier
	SubDeclarators []*Typedef
}

func (*AsmExpression) isExpression()     {}
func (*CastExpression) isExpression()    {}
func (*CompileExpression) isExpression() {}
func (*StateExpression) isExpression()   {}
func (*StateInitializer) isExpression()  {}

func (*Typedef) isType() {}

func (c *ClassType) DeclarationName() *Identifier     { return c.Name }
func (i *InterfaceType) DeclarationName() *Identifier { return i.Name }
func (t *Typedef) DeclarationName() *Identifier       { return t.Name }

func (*ClassType) isScopeContainer()     {}
func (*InterfaceType) isScopeContainer() {}
