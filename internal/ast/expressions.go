package ast

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// ArrayInitializerExpression is a brace list: {1, 2, 3}.
type ArrayInitializerExpression struct {
	NodeBase
	Items []Expression
}

// AssignmentExpression is target op= value.
type AssignmentExpression struct {
	NodeBase
	Operator AssignmentOperator
	Target   Expression
	Value    Expression
}

// BinaryExpression is left op right.
type BinaryExpression struct {
	NodeBase
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

// ConditionalExpression is condition ? left : right.
type ConditionalExpression struct {
	NodeBase
	Condition Expression
	Left      Expression
	Right     Expression
}

// EmptyExpression stands in for an omitted expression.
type EmptyExpression struct {
	NodeBase
}

// ExpressionList is a comma-separated sequence.
type ExpressionList struct {
	NodeBase
	Expressions []Expression
}

// IndexerExpression is target[index].
type IndexerExpression struct {
	NodeBase
	Target Expression
	Index  Expression
}

// KeywordExpression wraps a bare keyword used as an expression, such as
// break, continue or discard inside an ExpressionStatement.
type KeywordExpression struct {
	NodeBase
	Name *Identifier
}

// LiteralExpression wraps a Literal.
type LiteralExpression struct {
	NodeBase
	Literal *Literal
}

// MemberReferenceExpression is target.member.
type MemberReferenceExpression struct {
	NodeBase
	Target Expression
	Member *Identifier
}

// MethodInvocationExpression is target(arguments...). Constructors and
// scalar casts such as float(3) are invocations whose target is a
// TypeReferenceExpression.
type MethodInvocationExpression struct {
	NodeBase
	Target    Expression
	Arguments []Expression
}

type ParenthesizedExpression struct {
	NodeBase
	Content Expression
}

// TypeReferenceExpression uses a type in expression position.
type TypeReferenceExpression struct {
	NodeBase
	Type TypeBase
}

type UnaryExpression struct {
	NodeBase
	Operator UnaryOperator
	Operand  Expression
}

type VariableReferenceExpression struct {
	NodeBase
	Name *Identifier
}

func (*ArrayInitializerExpression) isExpression()  {}
func (*AssignmentExpression) isExpression()        {}
func (*BinaryExpression) isExpression()            {}
func (*ConditionalExpression) isExpression()       {}
func (*EmptyExpression) isExpression()             {}
func (*ExpressionList) isExpression()              {}
func (*IndexerExpression) isExpression()           {}
func (*KeywordExpression) isExpression()           {}
func (*LiteralExpression) isExpression()           {}
func (*MemberReferenceExpression) isExpression()   {}
func (*MethodInvocationExpression) isExpression()  {}
func (*ParenthesizedExpression) isExpression()     {}
func (*TypeReferenceExpression) isExpression()     {}
func (*UnaryExpression) isExpression()             {}
func (*VariableReferenceExpression) isExpression() {}
