package ast

// ----------------------------------------------------------------------------
// GLSL
// ----------------------------------------------------------------------------

// InterfaceBlockType is a GLSL uniform/in/out block. Its fields are
// visible in the enclosing scope unless the block has an instance name.
type InterfaceBlockType struct {
	NodeBase
	Qualifiers *Qualifier
	Name       *Identifier
	Fields     []*Variable
}

// LayoutKeyValue is one entry of a layout qualifier: binding = 0.
type LayoutKeyValue struct {
	NodeBase
	Name  *Identifier
	Value *LiteralExpression
}

// LayoutQualifier is layout(...).
type LayoutQualifier struct {
	NodeBase
	Layouts []*LayoutKeyValue
}

func (*InterfaceBlockType) isType() {}

func (t *InterfaceBlockType) DeclarationName() *Identifier { return t.Name }
