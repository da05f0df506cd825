package ast

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// ArrayType is an element type with one or more dimensions. A nil
// dimension stands for an unsized array.
type ArrayType struct {
	NodeBase
	Dimensions []Expression
	Type       TypeBase
}

// GenericType is a named type with template arguments, such as
// vector<float, 4> or a user template. Parameters hold types or literal
// expressions.
type GenericType struct {
	NodeBase
	Name       *Identifier
	Parameters []Node
}

// GenericParameterType declares a template parameter.
type GenericParameterType struct {
	NodeBase
	Name *Identifier
}

// MatrixType is a scalar element type with row and column counts.
type MatrixType struct {
	NodeBase
	Name        *Identifier
	Type        TypeBase
	RowCount    int
	ColumnCount int
}

// ObjectType is an opaque built-in object such as SamplerState. Class,
// interface and texture types extend it.
type ObjectType struct {
	NodeBase
	Name *Identifier
}

// ScalarType is one of the built-in scalar types.
type ScalarType struct {
	NodeBase
	Name *Identifier
}

// StructType declares a struct and opens a scope for its fields.
type StructType struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Name       *Identifier
	Fields     []*Variable
}

// TypeName refers to a type by name.
type TypeName struct {
	NodeBase
	Name *Identifier
}

// VectorType is a scalar element type with a component count.
type VectorType struct {
	NodeBase
	Name      *Identifier
	Type      TypeBase
	Dimension int
}

func (*ArrayType) isType()            {}
func (*GenericType) isType()          {}
func (*GenericParameterType) isType() {}
func (*MatrixType) isType()           {}
func (*ObjectType) isType()           {}
func (*ScalarType) isType()           {}
func (*StructType) isType()           {}
func (*TypeName) isType()             {}
func (*VectorType) isType()           {}

func (t *GenericParameterType) DeclarationName() *Identifier { return t.Name }
func (t *StructType) DeclarationName() *Identifier           { return t.Name }

func (*StructType) isScopeContainer() {}
