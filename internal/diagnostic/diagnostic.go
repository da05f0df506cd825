// Package diagnostic collects content problems found while processing a
// shader tree. Diagnostics are data: producers append to a List and keep
// going, and callers decide what to do once processing has finished.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/location"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error means the result the diagnostic belongs to cannot be trusted.
	Error Severity = iota
	// Warning is a non-blocking issue.
	Warning
	// Info is an informational message.
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = Error
	case "warning":
		*s = Warning
	case "info":
		*s = Info
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Code identifies the kind of problem.
type Code string

const (
	// Front end
	CodeSyntax Code = "E0001"

	// Constant evaluation
	CodeUnsupportedExpression Code = "E0100"
	CodeUnsupportedOperator   Code = "E0101"
	CodeUnknownVariable       Code = "E0102"
	CodeNotConstant           Code = "E0103"
	CodeRecursiveConstant     Code = "E0104"
	CodeCannotEvaluate        Code = "E0105"
	CodeInvalidLiteral        Code = "E0106"
	CodeInvalidCast           Code = "E0107"
	CodeDepthExceeded         Code = "E0108"

	// Transforms
	CodeInvalidArraySize Code = "E0200"
)

// Diagnostic is one problem tied to a source span.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code,omitempty"`
	Message  string   `json:"message"`
	Span     ast.Span `json:"span"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// List is an ordered log of diagnostics. The zero value is ready to use.
type List struct {
	items     []Diagnostic
	hasErrors bool
}

// Add appends d.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
	if d.Severity == Error {
		l.hasErrors = true
	}
}

// Errorf appends an error diagnostic.
func (l *List) Errorf(span ast.Span, code Code, format string, args ...any) {
	l.Add(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warningf appends a warning diagnostic.
func (l *List) Warningf(span ast.Span, code Code, format string, args ...any) {
	l.Add(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Merge appends every diagnostic of other, preserving order.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		l.Add(d)
	}
}

// HasErrors returns true if there are any error-level diagnostics.
func (l *List) HasErrors() bool {
	return l.hasErrors
}

// All returns the diagnostics in the order they were added.
func (l *List) All() []Diagnostic {
	return l.items
}

// Len returns the total number of diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// Errors returns only error-level diagnostics.
func (l *List) Errors() []Diagnostic {
	return l.filter(Error)
}

// Warnings returns only warning-level diagnostics.
func (l *List) Warnings() []Diagnostic {
	return l.filter(Warning)
}

// Count returns the number of diagnostics with the given severity.
func (l *List) Count(s Severity) int {
	return len(l.filter(s))
}

func (l *List) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Clear removes all diagnostics.
func (l *List) Clear() {
	l.items = l.items[:0]
	l.hasErrors = false
}

// ----------------------------------------------------------------------------
// Formatting
// ----------------------------------------------------------------------------

// Formatter renders diagnostics against the source they refer to.
type Formatter struct {
	Filename string
	index    *location.Index
}

// NewFormatter indexes source for line/column lookups.
func NewFormatter(filename, source string) *Formatter {
	return &Formatter{Filename: filename, index: location.NewIndex(source)}
}

// Position returns the 1-based start position of d.
func (f *Formatter) Position(d Diagnostic) location.Position {
	return f.index.Position(int(d.Span.Start))
}

// Format renders every diagnostic in l, one block per diagnostic.
func (f *Formatter) Format(l *List) string {
	var sb strings.Builder
	for _, d := range l.All() {
		sb.WriteString(f.FormatDiagnostic(d))
	}
	return sb.String()
}

// FormatDiagnostic renders d with the offending source line and a caret
// under the span.
func (f *Formatter) FormatDiagnostic(d Diagnostic) string {
	var sb strings.Builder

	start := f.index.Position(int(d.Span.Start))
	if f.Filename != "" {
		sb.WriteString(f.Filename)
		sb.WriteByte(':')
	}
	fmt.Fprintf(&sb, "%s: %s: %s", start, d.Severity, d.Message)
	if d.Code != "" {
		fmt.Fprintf(&sb, " [%s]", d.Code)
	}
	sb.WriteByte('\n')

	line := f.index.Line(start.Line)
	if line == "" {
		return sb.String()
	}
	fmt.Fprintf(&sb, "    %s\n", line)
	caret := strings.Repeat(" ", start.Column-1+4) + "^"
	end := f.index.Position(int(d.Span.End))
	if end.Line == start.Line && end.Column > start.Column+1 {
		caret += strings.Repeat("~", end.Column-start.Column-1)
	}
	sb.WriteString(caret)
	sb.WriteByte('\n')
	return sb.String()
}
