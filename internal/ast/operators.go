package ast

// ----------------------------------------------------------------------------
// Binary Operators
// ----------------------------------------------------------------------------

// BinaryOperator identifies the operator of a BinaryExpression.
type BinaryOperator uint8

const (
	BinaryNone BinaryOperator = iota
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryBitwiseAnd
	BinaryBitwiseOr
	BinaryBitwiseXor
	BinaryLeftShift
	BinaryRightShift
	BinaryMinus
	BinaryPlus
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryEquality
	BinaryInequality
)

var binaryOperatorText = [...]string{
	BinaryNone:         "",
	BinaryLogicalAnd:   "&&",
	BinaryLogicalOr:    "||",
	BinaryBitwiseAnd:   "&",
	BinaryBitwiseOr:    "|",
	BinaryBitwiseXor:   "^",
	BinaryLeftShift:    "<<",
	BinaryRightShift:   ">>",
	BinaryMinus:        "-",
	BinaryPlus:         "+",
	BinaryMultiply:     "*",
	BinaryDivide:       "/",
	BinaryModulo:       "%",
	BinaryLess:         "<",
	BinaryLessEqual:    "<=",
	BinaryGreater:      ">",
	BinaryGreaterEqual: ">=",
	BinaryEquality:     "==",
	BinaryInequality:   "!=",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryOperatorText) {
		return binaryOperatorText[op]
	}
	return "?"
}

// ParseBinaryOperator maps an operator token to its BinaryOperator.
func ParseBinaryOperator(text string) (BinaryOperator, bool) {
	for op, s := range binaryOperatorText {
		if s != "" && s == text {
			return BinaryOperator(op), true
		}
	}
	return BinaryNone, false
}

// IsComparison reports whether op yields a boolean from two operands.
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case BinaryLess, BinaryLessEqual, BinaryGreater, BinaryGreaterEqual,
		BinaryEquality, BinaryInequality, BinaryLogicalAnd, BinaryLogicalOr:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Unary Operators
// ----------------------------------------------------------------------------

// UnaryOperator identifies the operator of a UnaryExpression.
type UnaryOperator uint8

const (
	UnaryNone UnaryOperator = iota
	UnaryLogicalNot
	UnaryBitwiseNot
	UnaryMinus
	UnaryPlus
	UnaryPreDecrement
	UnaryPreIncrement
	UnaryPostDecrement
	UnaryPostIncrement
)

var unaryOperatorText = [...]string{
	UnaryNone:          "",
	UnaryLogicalNot:    "!",
	UnaryBitwiseNot:    "~",
	UnaryMinus:         "-",
	UnaryPlus:          "+",
	UnaryPreDecrement:  "--",
	UnaryPreIncrement:  "++",
	UnaryPostDecrement: "--",
	UnaryPostIncrement: "++",
}

func (op UnaryOperator) String() string {
	if int(op) < len(unaryOperatorText) {
		return unaryOperatorText[op]
	}
	return "?"
}

// IsPostfix reports whether the operator is written after its operand.
func (op UnaryOperator) IsPostfix() bool {
	return op == UnaryPostDecrement || op == UnaryPostIncrement
}

// ParseUnaryOperator maps a prefix operator token to its UnaryOperator.
// Use the Post variants directly for postfix forms.
func ParseUnaryOperator(text string) (UnaryOperator, bool) {
	switch text {
	case "!":
		return UnaryLogicalNot, true
	case "~":
		return UnaryBitwiseNot, true
	case "-":
		return UnaryMinus, true
	case "+":
		return UnaryPlus, true
	case "--":
		return UnaryPreDecrement, true
	case "++":
		return UnaryPreIncrement, true
	}
	return UnaryNone, false
}

// ----------------------------------------------------------------------------
// Assignment Operators
// ----------------------------------------------------------------------------

// AssignmentOperator identifies the operator of an AssignmentExpression.
type AssignmentOperator uint8

const (
	AssignDefault AssignmentOperator = iota
	AssignAddition
	AssignSubtraction
	AssignMultiplication
	AssignDivision
	AssignModulo
	AssignBitwiseAnd
	AssignBitwiseOr
	AssignBitwiseXor
	AssignShiftLeft
	AssignShiftRight
)

var assignmentOperatorText = [...]string{
	AssignDefault:        "=",
	AssignAddition:       "+=",
	AssignSubtraction:    "-=",
	AssignMultiplication: "*=",
	AssignDivision:       "/=",
	AssignModulo:         "%=",
	AssignBitwiseAnd:     "&=",
	AssignBitwiseOr:      "|=",
	AssignBitwiseXor:     "^=",
	AssignShiftLeft:      "<<=",
	AssignShiftRight:     ">>=",
}

func (op AssignmentOperator) String() string {
	if int(op) < len(assignmentOperatorText) {
		return assignmentOperatorText[op]
	}
	return "?"
}

// ParseAssignmentOperator maps an assignment token to its operator.
func ParseAssignmentOperator(text string) (AssignmentOperator, bool) {
	for op, s := range assignmentOperatorText {
		if s == text {
			return AssignmentOperator(op), true
		}
	}
	return AssignDefault, false
}
