package ast

import (
	"fmt"
	"strconv"
)

// Constructors for synthesized nodes. Spans are left zero.

func NewIdentifier(text string) *Identifier {
	return &Identifier{Text: text}
}

// NewLiteral wraps a bool, integer, float or string value.
func NewLiteral(value any) *Literal {
	return &Literal{Value: normalizeLiteral(value), Text: FormatLiteral(value)}
}

func NewLiteralExpression(value any) *LiteralExpression {
	return &LiteralExpression{Literal: NewLiteral(value)}
}

func NewVariableReference(name string) *VariableReferenceExpression {
	return &VariableReferenceExpression{Name: NewIdentifier(name)}
}

func NewBinary(op BinaryOperator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func NewUnary(op UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{Operator: op, Operand: operand}
}

func NewParenthesized(content Expression) *ParenthesizedExpression {
	return &ParenthesizedExpression{Content: content}
}

func NewScalarType(name string) *ScalarType {
	return &ScalarType{Name: NewIdentifier(name)}
}

// NewInvocation builds target(args...) where target names a type or a
// function.
func NewInvocation(target Expression, args ...Expression) *MethodInvocationExpression {
	return &MethodInvocationExpression{Target: target, Arguments: args}
}

func NewVariable(typ TypeBase, name string, initial Expression) *Variable {
	return &Variable{Type: typ, Name: NewIdentifier(name), InitialValue: initial}
}

// FormatLiteral renders a literal value the way the front end spells it.
func FormatLiteral(value any) string {
	switch v := normalizeLiteral(value).(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10) + "u"
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeLiteral(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return uint64(v)
	case uint32:
		return uint64(v)
	case float32:
		return float64(v)
	}
	return value
}
