package ast

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// BlockStatement is a braced statement list and opens a scope.
type BlockStatement struct {
	NodeBase
	Statements *StatementList
}

// CaseStatement is one label of a switch group. A nil Case is the
// default label.
type CaseStatement struct {
	NodeBase
	Case Expression
}

// DeclarationStatement puts a declaration (usually a Variable) in
// statement position.
type DeclarationStatement struct {
	NodeBase
	Content Node
}

type EmptyStatement struct {
	NodeBase
}

type ExpressionStatement struct {
	NodeBase
	Expression Expression
}

// ForStatement opens a scope so that the loop variable declared in Start
// is visible in Condition, Next and Body only.
type ForStatement struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Start      Statement
	Condition  Expression
	Next       Expression
	Body       Statement
}

type IfStatement struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Condition  Expression
	Then       Statement
	Else       Statement
}

type ReturnStatement struct {
	NodeBase
	Value Expression
}

// StatementList is an ordered sequence of statements. It does not open a
// scope on its own; the owning block, method or group does.
type StatementList struct {
	NodeBase
	Statements []Statement
}

// SwitchCaseGroup is a run of case labels sharing one statement list.
type SwitchCaseGroup struct {
	NodeBase
	Cases      []*CaseStatement
	Statements *StatementList
}

type SwitchStatement struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Condition  Expression
	Groups     []*SwitchCaseGroup
}

// WhileStatement covers both while and do-while loops.
type WhileStatement struct {
	NodeBase
	Attributes []*AttributeDeclaration
	Condition  Expression
	Statement  Statement
	IsDoWhile  bool
}

func (*BlockStatement) isStatement()       {}
func (*CaseStatement) isStatement()        {}
func (*DeclarationStatement) isStatement() {}
func (*EmptyStatement) isStatement()       {}
func (*ExpressionStatement) isStatement()  {}
func (*ForStatement) isStatement()         {}
func (*IfStatement) isStatement()          {}
func (*ReturnStatement) isStatement()      {}
func (*StatementList) isStatement()        {}
func (*SwitchStatement) isStatement()      {}
func (*WhileStatement) isStatement()       {}

func (*BlockStatement) isScopeContainer() {}
func (*ForStatement) isScopeContainer()   {}
