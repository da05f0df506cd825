package ast

import (
	"fmt"
	"reflect"
)

// ----------------------------------------------------------------------------
// Child Slots
// ----------------------------------------------------------------------------

// WalkChildren calls visit for each non-nil direct child of n, in slot
// order. It never modifies n.
func WalkChildren(n Node, visit func(Node)) {
	e := &editor{parent: n, visit: func(c Node) Node {
		visit(c)
		return c
	}}
	e.node(n)
}

// RewriteChildren replaces every non-nil direct child of n with the result
// of visit. A nil result clears a single-node slot and removes the entry
// from a list slot. A result that does not fit the slot's category panics
// with a *ReplaceError.
func RewriteChildren(n Node, visit func(Node) Node) {
	e := &editor{parent: n, rewrite: true, visit: visit}
	e.node(n)
}

// Children returns the non-nil direct children of n in slot order.
func Children(n Node) []Node {
	var out []Node
	WalkChildren(n, func(c Node) { out = append(out, c) })
	return out
}

// ReplaceError reports a rewrite result that cannot be stored in the slot
// it replaces.
type ReplaceError struct {
	Parent Node
	Result Node
	Slot   reflect.Type
}

func (e *ReplaceError) Error() string {
	return fmt.Sprintf("ast: cannot store %T in %s slot of %T", e.Result, e.Slot, e.Parent)
}

type editor struct {
	parent  Node
	rewrite bool
	visit   func(Node) Node
}

func slot[T Node](e *editor, p *T) {
	if IsNil(*p) {
		return
	}
	r := e.visit(*p)
	if !e.rewrite {
		return
	}
	if IsNil(r) {
		var zero T
		*p = zero
		return
	}
	t, ok := r.(T)
	if !ok {
		panic(&ReplaceError{Parent: e.parent, Result: r, Slot: reflect.TypeFor[T]()})
	}
	*p = t
}

func list[T Node](e *editor, p *[]T) {
	items := *p
	if !e.rewrite {
		for _, item := range items {
			if !IsNil(item) {
				e.visit(item)
			}
		}
		return
	}
	out := items[:0]
	for _, item := range items {
		if IsNil(item) {
			out = append(out, item)
			continue
		}
		r := e.visit(item)
		if IsNil(r) {
			continue
		}
		t, ok := r.(T)
		if !ok {
			panic(&ReplaceError{Parent: e.parent, Result: r, Slot: reflect.TypeFor[T]()})
		}
		out = append(out, t)
	}
	clear(items[len(out):])
	*p = out
}

func (e *editor) node(n Node) {
	switch n := n.(type) {
	// Expressions
	case *ArrayInitializerExpression:
		list(e, &n.Items)
	case *AssignmentExpression:
		slot(e, &n.Target)
		slot(e, &n.Value)
	case *BinaryExpression:
		slot(e, &n.Left)
		slot(e, &n.Right)
	case *ConditionalExpression:
		slot(e, &n.Condition)
		slot(e, &n.Left)
		slot(e, &n.Right)
	case *EmptyExpression:
	case *ExpressionList:
		list(e, &n.Expressions)
	case *IndexerExpression:
		slot(e, &n.Target)
		slot(e, &n.Index)
	case *KeywordExpression:
		slot(e, &n.Name)
	case *LiteralExpression:
		slot(e, &n.Literal)
	case *MemberReferenceExpression:
		slot(e, &n.Target)
		slot(e, &n.Member)
	case *MethodInvocationExpression:
		slot(e, &n.Target)
		list(e, &n.Arguments)
	case *ParenthesizedExpression:
		slot(e, &n.Content)
	case *TypeReferenceExpression:
		slot(e, &n.Type)
	case *UnaryExpression:
		slot(e, &n.Operand)
	case *VariableReferenceExpression:
		slot(e, &n.Name)

	// Statements
	case *BlockStatement:
		slot(e, &n.Statements)
	case *CaseStatement:
		slot(e, &n.Case)
	case *DeclarationStatement:
		slot(e, &n.Content)
	case *EmptyStatement:
	case *ExpressionStatement:
		slot(e, &n.Expression)
	case *ForStatement:
		list(e, &n.Attributes)
		slot(e, &n.Start)
		slot(e, &n.Condition)
		slot(e, &n.Next)
		slot(e, &n.Body)
	case *IfStatement:
		list(e, &n.Attributes)
		slot(e, &n.Condition)
		slot(e, &n.Then)
		slot(e, &n.Else)
	case *ReturnStatement:
		slot(e, &n.Value)
	case *StatementList:
		list(e, &n.Statements)
	case *SwitchCaseGroup:
		list(e, &n.Cases)
		slot(e, &n.Statements)
	case *SwitchStatement:
		list(e, &n.Attributes)
		slot(e, &n.Condition)
		list(e, &n.Groups)
	case *WhileStatement:
		list(e, &n.Attributes)
		slot(e, &n.Condition)
		slot(e, &n.Statement)

	// Types
	case *ArrayType:
		list(e, &n.Dimensions)
		slot(e, &n.Type)
	case *GenericType:
		slot(e, &n.Name)
		list(e, &n.Parameters)
	case *GenericParameterType:
		slot(e, &n.Name)
	case *MatrixType:
		slot(e, &n.Name)
		slot(e, &n.Type)
	case *ObjectType:
		e.objectType(n)
	case *ScalarType:
		slot(e, &n.Name)
	case *StructType:
		list(e, &n.Attributes)
		slot(e, &n.Name)
		list(e, &n.Fields)
	case *TypeName:
		slot(e, &n.Name)
	case *VectorType:
		slot(e, &n.Name)
		slot(e, &n.Type)

	// Declarations and leaves
	case *AttributeDeclaration:
		slot(e, &n.Name)
		list(e, &n.Parameters)
	case *GenericDeclaration:
		slot(e, &n.Name)
	case *Identifier:
		e.identifier(n)
	case *Literal:
		list(e, &n.SubLiterals)
	case *MethodDeclaration:
		e.methodDeclaration(n)
	case *MethodDefinition:
		e.methodDeclaration(&n.MethodDeclaration)
		slot(e, &n.Body)
	case *Parameter:
		e.variable(&n.Variable)
	case *Qualifier:
		list(e, &n.Specifiers)
	case *Shader:
		list(e, &n.Declarations)
	case *Variable:
		e.variable(n)

	// HLSL
	case *Annotations:
		list(e, &n.Variables)
	case *AsmExpression:
	case *CastExpression:
		slot(e, &n.Target)
		slot(e, &n.From)
	case *ClassType:
		e.classType(n)
	case *CompileExpression:
		slot(e, &n.Profile)
		slot(e, &n.Function)
	case *ConstantBuffer:
		list(e, &n.Attributes)
		slot(e, &n.Name)
		slot(e, &n.Register)
		slot(e, &n.Qualifiers)
		list(e, &n.Members)
	case *IdentifierDot:
		e.identifier(&n.Identifier)
		list(e, &n.Identifiers)
	case *IdentifierGeneric:
		e.identifier(&n.Identifier)
		list(e, &n.Identifiers)
	case *IdentifierNs:
		e.identifier(&n.Identifier)
		list(e, &n.Identifiers)
	case *InterfaceType:
		e.objectType(&n.ObjectType)
		list(e, &n.GenericParameters)
		list(e, &n.Methods)
	case *PackOffset:
		slot(e, &n.Value)
	case *Pass:
		list(e, &n.Attributes)
		slot(e, &n.Name)
		list(e, &n.Items)
	case *RegisterLocation:
		slot(e, &n.Profile)
		slot(e, &n.Register)
	case *Semantic:
		slot(e, &n.Name)
	case *StateExpression:
		slot(e, &n.StateType)
		slot(e, &n.Initializer)
	case *StateInitializer:
		list(e, &n.Items)
	case *Technique:
		list(e, &n.Attributes)
		slot(e, &n.Type)
		slot(e, &n.Name)
		list(e, &n.Passes)
	case *TextureType:
		e.objectType(&n.ObjectType)
		slot(e, &n.Type)
	case *Typedef:
		slot(e, &n.Qualifiers)
		slot(e, &n.Type)
		slot(e, &n.Name)
		list(e, &n.SubDeclarators)

	// GLSL
	case *InterfaceBlockType:
		slot(e, &n.Qualifiers)
		slot(e, &n.Name)
		list(e, &n.Fields)
	case *LayoutKeyValue:
		slot(e, &n.Name)
		slot(e, &n.Value)
	case *LayoutQualifier:
		list(e, &n.Layouts)

	// Shader-class extensions
	case *ClassIdentifierGeneric:
		e.identifier(&n.Identifier)
		list(e, &n.Generics)
	case *EnumType:
		list(e, &n.Attributes)
		slot(e, &n.Qualifiers)
		slot(e, &n.Name)
		list(e, &n.Values)
	case *ForEachStatement:
		list(e, &n.Attributes)
		slot(e, &n.Collection)
		slot(e, &n.Variable)
		slot(e, &n.Body)
	case *ImportBlockStatement:
		slot(e, &n.Statements)
	case *LinkType:
		slot(e, &n.Name)
	case *LiteralIdentifier:
		e.identifier(&n.Identifier)
		slot(e, &n.Value)
	case *MemberName:
		slot(e, &n.Name)
	case *MixinStatement:
		slot(e, &n.Value)
	case *NamespaceBlock:
		slot(e, &n.Name)
		list(e, &n.Body)
	case *ParametersBlock:
		slot(e, &n.Name)
		slot(e, &n.Body)
	case *SemanticType:
		slot(e, &n.Name)
	case *ShaderBlock:
		slot(e, &n.Name)
		slot(e, &n.Body)
	case *ShaderClassType:
		e.shaderClassType(n)
	case *ShaderRootClassType:
		e.shaderClassType(&n.ShaderClassType)
	case *ShaderTypeName:
		slot(e, &n.Name)
	case *TypeIdentifier:
		e.identifier(&n.Identifier)
		slot(e, &n.Type)
	case *UsingParametersStatement:
		slot(e, &n.Name)
		slot(e, &n.Body)
	case *UsingStatement:
		slot(e, &n.Name)
	case *VarType:
		slot(e, &n.Name)

	default:
		panic(fmt.Sprintf("ast: unhandled node type %T", n))
	}
}

func (e *editor) identifier(n *Identifier) {
	list(e, &n.Indices)
}

func (e *editor) objectType(n *ObjectType) {
	slot(e, &n.Name)
}

func (e *editor) classType(n *ClassType) {
	e.objectType(&n.ObjectType)
	list(e, &n.BaseClasses)
	list(e, &n.GenericParameters)
	list(e, &n.GenericArguments)
	list(e, &n.Members)
}

func (e *editor) shaderClassType(n *ShaderClassType) {
	e.classType(&n.ClassType)
	list(e, &n.ShaderGenerics)
}

func (e *editor) methodDeclaration(n *MethodDeclaration) {
	list(e, &n.Attributes)
	slot(e, &n.Qualifiers)
	slot(e, &n.ReturnType)
	slot(e, &n.Name)
	list(e, &n.Parameters)
}

func (e *editor) variable(n *Variable) {
	list(e, &n.Attributes)
	slot(e, &n.Qualifiers)
	slot(e, &n.Type)
	slot(e, &n.InitialValue)
	slot(e, &n.Name)
	list(e, &n.SubVariables)
}
