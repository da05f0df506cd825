package ast

// ----------------------------------------------------------------------------
// Shader-Class Extensions
// ----------------------------------------------------------------------------

// ClassIdentifierGeneric names a shader class with generic values:
// ComputeColor<float4, 2>.
type ClassIdentifierGeneric struct {
	Identifier
	Generics []*Variable
}

// EnumType declares an enumeration and opens a scope for its values.
type EnumType struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Qualifiers *Qualifier
	Name       *Identifier
	Values     []Expression
}

// ForEachStatement iterates Collection binding Variable in Body.
type ForEachStatement struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Collection Expression
	Variable   *Variable
	Body       Statement
}

type ImportBlockStatement struct {
	NodeBase
	Statements *StatementList
}

// LinkType is the type of a link(...) parameter key.
type LinkType struct {
	NodeBase
	Name *Identifier
}

// LiteralIdentifier is an identifier spelled as a literal.
type LiteralIdentifier struct {
	Identifier
	Value *Literal
}

// MemberName is the type of a member-name generic argument.
type MemberName struct {
	NodeBase
	Name *Identifier
}

// MixinKind selects the form of a mixin statement.
type MixinKind uint8

const (
	MixinDefault MixinKind = iota
	MixinChild
	MixinClone
	MixinRemove
	MixinMacro
	MixinComposeSet
	MixinComposeAdd
)

var mixinKindText = [...]string{
	MixinDefault:    "",
	MixinChild:      "child",
	MixinClone:      "clone",
	MixinRemove:     "remove",
	MixinMacro:      "macro",
	MixinComposeSet: "compose",
	MixinComposeAdd: "compose+",
}

func (k MixinKind) String() string {
	if int(k) < len(mixinKindText) {
		return mixinKindText[k]
	}
	return "?"
}

type MixinStatement struct {
	NodeBase
	Kind  MixinKind
	Value Expression
}

// NamespaceBlock declares a namespace and opens a scope for its body.
type NamespaceBlock struct {
	NodeBase
	Name *Identifier
	Body []Node
}

// ParametersBlock is an effect "params" block.
type ParametersBlock struct {
	NodeBase
	Name *Identifier
	Body *BlockStatement
}

// SemanticType is the type of a semantic generic argument.
type SemanticType struct {
	NodeBase
	Name *Identifier
}

// ShaderBlock is an effect shader block; it declares its name and opens
// a scope.
type ShaderBlock struct {
	NodeBase
	Name      *Identifier
	IsPartial bool
	Body      *BlockStatement
}

// ShaderClassType is a shader class with generic declarations.
type ShaderClassType struct {
	ClassType
	ShaderGenerics []*Variable
}

// ShaderRootClassType is the outermost class of a shader source file.
type ShaderRootClassType struct {
	ShaderClassType
}

// ShaderTypeName refers to a shader class by name.
type ShaderTypeName struct {
	TypeName
}

// TypeIdentifier is an identifier that denotes a type.
type TypeIdentifier struct {
	Identifier
	Type TypeBase
}

type UsingParametersStatement struct {
	NodeBase
	Name Expression
	Body *BlockStatement
}

type UsingStatement struct {
	NodeBase
	Name *Identifier
}

// VarType is the inferred "var" type.
type VarType struct {
	NodeBase
	Name *Identifier
}

func (*EnumType) isType()     {}
func (*LinkType) isType()     {}
func (*MemberName) isType()   {}
func (*SemanticType) isType() {}
func (*VarType) isType()      {}

func (*ForEachStatement) isStatement()         {}
func (*ImportBlockStatement) isStatement()     {}
func (*MixinStatement) isStatement()           {}
func (*UsingParametersStatement) isStatement() {}
func (*UsingStatement) isStatement()           {}

func (e *EnumType) DeclarationName() *Identifier       { return e.Name }
func (n *NamespaceBlock) DeclarationName() *Identifier { return n.Name }
func (s *ShaderBlock) DeclarationName() *Identifier    { return s.Name }

func (*EnumType) isScopeContainer()         {}
func (*ForEachStatement) isScopeContainer() {}
func (*NamespaceBlock) isScopeContainer()   {}
func (*ShaderBlock) isScopeContainer()      {}
