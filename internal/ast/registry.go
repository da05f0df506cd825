package ast

import "reflect"

var nodeTypes = []Node{
	// Expressions
	(*ArrayInitializerExpression)(nil),
	(*AssignmentExpression)(nil),
	(*BinaryExpression)(nil),
	(*ConditionalExpression)(nil),
	(*EmptyExpression)(nil),
	(*ExpressionList)(nil),
	(*IndexerExpression)(nil),
	(*KeywordExpression)(nil),
	(*LiteralExpression)(nil),
	(*MemberReferenceExpression)(nil),
	(*MethodInvocationExpression)(nil),
	(*ParenthesizedExpression)(nil),
	(*TypeReferenceExpression)(nil),
	(*UnaryExpression)(nil),
	(*VariableReferenceExpression)(nil),

	// Statements
	(*BlockStatement)(nil),
	(*CaseStatement)(nil),
	(*DeclarationStatement)(nil),
	(*EmptyStatement)(nil),
	(*ExpressionStatement)(nil),
	(*ForStatement)(nil),
	(*IfStatement)(nil),
	(*ReturnStatement)(nil),
	(*StatementList)(nil),
	(*SwitchCaseGroup)(nil),
	(*SwitchStatement)(nil),
	(*WhileStatement)(nil),

	// Types
	(*ArrayType)(nil),
	(*GenericType)(nil),
	(*GenericParameterType)(nil),
	(*MatrixType)(nil),
	(*ObjectType)(nil),
	(*ScalarType)(nil),
	(*StructType)(nil),
	(*TypeName)(nil),
	(*VectorType)(nil),

	// Declarations and leaves
	(*AttributeDeclaration)(nil),
	(*GenericDeclaration)(nil),
	(*Identifier)(nil),
	(*Literal)(nil),
	(*MethodDeclaration)(nil),
	(*MethodDefinition)(nil),
	(*Parameter)(nil),
	(*Qualifier)(nil),
	(*Shader)(nil),
	(*Variable)(nil),

	// HLSL
	(*Annotations)(nil),
	(*AsmExpression)(nil),
	(*CastExpression)(nil),
	(*ClassType)(nil),
	(*CompileExpression)(nil),
	(*ConstantBuffer)(nil),
	(*IdentifierDot)(nil),
	(*IdentifierGeneric)(nil),
	(*IdentifierNs)(nil),
	(*InterfaceType)(nil),
	(*PackOffset)(nil),
	(*Pass)(nil),
	(*RegisterLocation)(nil),
	(*Semantic)(nil),
	(*StateExpression)(nil),
	(*StateInitializer)(nil),
	(*Technique)(nil),
	(*TextureType)(nil),
	(*Typedef)(nil),

	// GLSL
	(*InterfaceBlockType)(nil),
	(*LayoutKeyValue)(nil),
	(*LayoutQualifier)(nil),

	// Shader-class extensions
	(*ClassIdentifierGeneric)(nil),
	(*EnumType)(nil),
	(*ForEachStatement)(nil),
	(*ImportBlockStatement)(nil),
	(*LinkType)(nil),
	(*LiteralIdentifier)(nil),
	(*MemberName)(nil),
	(*MixinStatement)(nil),
	(*NamespaceBlock)(nil),
	(*ParametersBlock)(nil),
	(*SemanticType)(nil),
	(*ShaderBlock)(nil),
	(*ShaderClassType)(nil),
	(*ShaderRootClassType)(nil),
	(*ShaderTypeName)(nil),
	(*TypeIdentifier)(nil),
	(*UsingParametersStatement)(nil),
	(*UsingStatement)(nil),
	(*VarType)(nil),
}

var (
	nodeInterface = reflect.TypeFor[Node]()
	nodeBaseType  = reflect.TypeFor[NodeBase]()
)

// NodeTypes returns the pointer type of every node variant.
func NodeTypes() []reflect.Type {
	out := make([]reflect.Type, len(nodeTypes))
	for i, n := range nodeTypes {
		out[i] = reflect.TypeOf(n)
	}
	return out
}

// New allocates a zero node of the given variant.
func New(t reflect.Type) Node {
	return reflect.New(t.Elem()).Interface().(Node)
}

// BaseOf returns the node variant that t extends by embedding, along with
// the index of the embedded field. ok is false for root variants and for
// non-node types.
func BaseOf(t reflect.Type) (base reflect.Type, field int, ok bool) {
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, 0, false
	}
	st := t.Elem()
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.Anonymous || f.Type == nodeBaseType || f.Type.Kind() != reflect.Struct {
			continue
		}
		if pt := reflect.PointerTo(f.Type); pt.Implements(nodeInterface) {
			return pt, i, true
		}
	}
	return nil, 0, false
}

// BaseChain returns the variants t extends, nearest first.
func BaseChain(t reflect.Type) []reflect.Type {
	var chain []reflect.Type
	for {
		base, _, ok := BaseOf(t)
		if !ok {
			return chain
		}
		chain = append(chain, base)
		t = base
	}
}
