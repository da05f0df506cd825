// Package printer renders shader trees as text for messages and
// debugging.
//
// Expression renders an expression in source form, keeping exactly the
// parentheses present in the tree. Dump renders any subtree as an
// indented outline, one node per line.
package printer

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/HugoDaniel/shadertree/internal/ast"
)

// Options controls printer output.
type Options struct {
	// Compact drops the spaces around binary and assignment operators
	// and after commas.
	Compact bool

	// Spans appends each node's byte span to its Dump line.
	Spans bool

	// Indent is the Dump indentation unit; two spaces when empty.
	Indent string
}

// Printer renders trees as text.
type Printer struct {
	options Options
	buf     strings.Builder
	indent  int
}

// New creates a new printer.
func New(options Options) *Printer {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &Printer{options: options}
}

// Expression renders e with default options.
func Expression(e ast.Expression) string {
	return New(Options{}).Expression(e)
}

// Type renders t with default options.
func Type(t ast.TypeBase) string {
	return New(Options{}).Type(t)
}

// Dump renders n as an outline with default options.
func Dump(n ast.Node) string {
	return New(Options{}).Dump(n)
}

// Expression renders e in source form.
func (p *Printer) Expression(e ast.Expression) string {
	p.buf.Reset()
	p.printExpr(e)
	return p.buf.String()
}

// Type renders t in source form.
func (p *Printer) Type(t ast.TypeBase) string {
	p.buf.Reset()
	p.printType(t)
	return p.buf.String()
}

// Dump renders n as an indented outline.
func (p *Printer) Dump(n ast.Node) string {
	p.buf.Reset()
	p.indent = 0
	p.dumpNode(n)
	return p.buf.String()
}

// ----------------------------------------------------------------------------
// Output Helpers
// ----------------------------------------------------------------------------

func (p *Printer) print(s string) {
	p.buf.WriteString(s)
}

// printOperator prints a binary or assignment operator with the
// configured spacing.
func (p *Printer) printOperator(op string) {
	if p.options.Compact {
		p.print(op)
		return
	}
	p.print(" " + op + " ")
}

func (p *Printer) printComma() {
	if p.options.Compact {
		p.print(",")
		return
	}
	p.print(", ")
}

func (p *Printer) printIdentifier(id *ast.Identifier) {
	if id == nil {
		return
	}
	p.print(id.Text)
	for _, index := range id.Indices {
		p.print("[")
		p.printExpr(index)
		p.print("]")
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Printer) printExpr(e ast.Expression) {
	if ast.IsNil(e) {
		return
	}

	switch e := e.(type) {
	case *ast.LiteralExpression:
		p.printLiteral(e.Literal)

	case *ast.VariableReferenceExpression:
		p.printIdentifier(e.Name)

	case *ast.TypeReferenceExpression:
		p.printType(e.Type)

	case *ast.BinaryExpression:
		p.printExpr(e.Left)
		p.printOperator(e.Operator.String())
		p.printExpr(e.Right)

	case *ast.UnaryExpression:
		if e.Operator.IsPostfix() {
			p.printExpr(e.Operand)
			p.print(e.Operator.String())
		} else {
			p.print(e.Operator.String())
			p.printExpr(e.Operand)
		}

	case *ast.ParenthesizedExpression:
		p.print("(")
		p.printExpr(e.Content)
		p.print(")")

	case *ast.MethodInvocationExpression:
		p.printExpr(e.Target)
		p.print("(")
		p.printExprList(e.Arguments)
		p.print(")")

	case *ast.IndexerExpression:
		p.printExpr(e.Target)
		p.print("[")
		p.printExpr(e.Index)
		p.print("]")

	case *ast.MemberReferenceExpression:
		p.printExpr(e.Target)
		p.print(".")
		p.printIdentifier(e.Member)

	case *ast.ConditionalExpression:
		p.printExpr(e.Condition)
		p.printOperator("?")
		p.printExpr(e.Left)
		p.printOperator(":")
		p.printExpr(e.Right)

	case *ast.AssignmentExpression:
		p.printExpr(e.Target)
		p.printOperator(e.Operator.String())
		p.printExpr(e.Value)

	case *ast.ArrayInitializerExpression:
		p.print("{")
		p.printExprList(e.Items)
		p.print("}")

	case *ast.ExpressionList:
		p.printExprList(e.Expressions)

	case *ast.KeywordExpression:
		p.printIdentifier(e.Name)

	case *ast.CastExpression:
		p.print("(")
		p.printType(e.Target)
		p.print(")")
		p.printExpr(e.From)

	case *ast.EmptyExpression:

	case *ast.AsmExpression:
		p.print("asm {" + e.Text + "}")

	case *ast.CompileExpression:
		p.print("compile ")
		p.printIdentifier(e.Profile)
		p.print(" ")
		p.printExpr(e.Function)

	case *ast.StateInitializer:
		p.print("{")
		p.printExprList(e.Items)
		p.print("}")

	case *ast.StateExpression:
		p.printType(e.StateType)
		p.print(" ")
		p.printExpr(e.Initializer)

	default:
		p.print(nodeName(e))
	}
}

func (p *Printer) printExprList(items []ast.Expression) {
	for i, item := range items {
		if i > 0 {
			p.printComma()
		}
		p.printExpr(item)
	}
}

func (p *Printer) printLiteral(lit *ast.Literal) {
	if lit == nil {
		return
	}
	if lit.Text != "" {
		p.print(lit.Text)
		return
	}
	p.print(ast.FormatLiteral(lit.Value))
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

func (p *Printer) printType(t ast.TypeBase) {
	if ast.IsNil(t) {
		return
	}

	switch t := t.(type) {
	case *ast.ScalarType:
		p.printIdentifier(t.Name)
	case *ast.VectorType:
		p.printIdentifier(t.Name)
		if t.Name != nil && t.Name.Text == "vector" {
			p.print("<")
			p.printType(t.Type)
			p.printComma()
			p.print(strconv.Itoa(t.Dimension))
			p.print(">")
		}
	case *ast.MatrixType:
		p.printIdentifier(t.Name)
		if t.Name != nil && t.Name.Text == "matrix" {
			p.print("<")
			p.printType(t.Type)
			p.printComma()
			p.print(strconv.Itoa(t.RowCount))
			p.printComma()
			p.print(strconv.Itoa(t.ColumnCount))
			p.print(">")
		}
	case *ast.ArrayType:
		p.printType(t.Type)
		for _, dim := range t.Dimensions {
			p.print("[")
			p.printExpr(dim)
			p.print("]")
		}
	case *ast.TextureType:
		p.printIdentifier(t.Name)
		if !ast.IsNil(t.Type) {
			p.print("<")
			p.printType(t.Type)
			p.print(">")
		}
	case *ast.GenericType:
		p.printIdentifier(t.Name)
		p.print("<")
		for i, param := range t.Parameters {
			if i > 0 {
				p.printComma()
			}
			switch param := param.(type) {
			case ast.TypeBase:
				p.printType(param)
			case ast.Expression:
				p.printExpr(param)
			}
		}
		p.print(">")
	case *ast.StructType:
		p.print("struct ")
		p.printIdentifier(t.Name)
	case *ast.Typedef:
		p.printIdentifier(t.Name)
	default:
		// Every remaining type names itself through an embedded or direct
		// Name identifier.
		if id := typeName(t); id != nil {
			p.printIdentifier(id)
			return
		}
		p.print(nodeName(t))
	}
}

func typeName(t ast.TypeBase) *ast.Identifier {
	switch t := t.(type) {
	case *ast.TypeName:
		return t.Name
	case *ast.ShaderTypeName:
		return t.Name
	case *ast.ObjectType:
		return t.Name
	case *ast.ClassType:
		return t.Name
	case *ast.ShaderClassType:
		return t.Name
	case *ast.ShaderRootClassType:
		return t.Name
	case *ast.InterfaceType:
		return t.Name
	case *ast.GenericParameterType:
		return t.Name
	case *ast.InterfaceBlockType:
		return t.Name
	case *ast.EnumType:
		return t.Name
	case *ast.LinkType:
		return t.Name
	case *ast.MemberName:
		return t.Name
	case *ast.SemanticType:
		return t.Name
	case *ast.VarType:
		return t.Name
	}
	return nil
}

// ----------------------------------------------------------------------------
// Outline
// ----------------------------------------------------------------------------

func (p *Printer) dumpNode(n ast.Node) {
	for i := 0; i < p.indent; i++ {
		p.print(p.options.Indent)
	}
	p.print(nodeName(n))
	if detail := label(n); detail != "" {
		p.print(" ")
		p.print(detail)
	}
	if p.options.Spans {
		p.print(" ")
		p.print(n.Span().String())
	}
	p.print("\n")

	p.indent++
	ast.WalkChildren(n, p.dumpNode)
	p.indent--
}

func nodeName(n ast.Node) string {
	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// label returns the scalar details of n that are not visible through its
// children.
func label(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Identifier:
		return n.Text
	case *ast.IdentifierDot:
		return n.Text
	case *ast.IdentifierGeneric:
		return n.Text
	case *ast.IdentifierNs:
		return n.Text
	case *ast.ClassIdentifierGeneric:
		return n.Text
	case *ast.LiteralIdentifier:
		return n.Text
	case *ast.TypeIdentifier:
		return n.Text
	case *ast.Literal:
		if n.Text != "" {
			return n.Text
		}
		return ast.FormatLiteral(n.Value)
	case *ast.BinaryExpression:
		return n.Operator.String()
	case *ast.UnaryExpression:
		if n.Operator.IsPostfix() {
			return "postfix " + n.Operator.String()
		}
		return n.Operator.String()
	case *ast.AssignmentExpression:
		return n.Operator.String()
	case *ast.Qualifier:
		return strings.Join(n.Keywords, " ")
	case *ast.ConstantBuffer:
		return n.Kind
	case *ast.VectorType:
		return strconv.Itoa(n.Dimension)
	case *ast.MatrixType:
		return strconv.Itoa(n.RowCount) + "x" + strconv.Itoa(n.ColumnCount)
	case *ast.WhileStatement:
		if n.IsDoWhile {
			return "do"
		}
	case *ast.AsmExpression:
		return strconv.Quote(n.Text)
	case *ast.GenericDeclaration:
		return strconv.Itoa(n.Index)
	case *ast.MixinStatement:
		return n.Kind.String()
	case *ast.ShaderBlock:
		if n.IsPartial {
			return "partial"
		}
	}
	return ""
}
