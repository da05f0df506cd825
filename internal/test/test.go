// Package test provides testing utilities shared by the shadertree
// packages: parsing helpers that fail the test on syntax errors, and
// string comparison with a line diff.
package test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/HugoDaniel/shadertree/internal/ast"
	"github.com/HugoDaniel/shadertree/internal/parser"
)

// MustParse parses source as a translation unit and fails the test on any
// parse error.
func MustParse(t testing.TB, source string) *ast.Shader {
	t.Helper()
	shader, errs := parser.Parse(source)
	if len(errs) > 0 {
		t.Fatalf("parse errors in %q: %v", source, errs)
	}
	return shader
}

// MustParseExpression parses source as a single expression and fails the
// test on any parse error.
func MustParseExpression(t testing.TB, source string) ast.Expression {
	t.Helper()
	e, errs := parser.ParseExpression(source)
	if len(errs) > 0 {
		t.Fatalf("parse errors in %q: %v", source, errs)
	}
	return e
}

// AssertEqual checks if two values are equal and reports a test error if not.
func AssertEqual[T comparable](t testing.TB, actual, expected T) {
	t.Helper()
	if actual != expected {
		t.Errorf("\nexpected: %v\nactual:   %v", expected, actual)
	}
}

// AssertEqualWithDiff checks if two strings are equal and shows a diff if not.
func AssertEqualWithDiff(t testing.TB, actual, expected string) {
	t.Helper()
	if actual != expected {
		t.Errorf("\n%s", Diff(expected, actual))
	}
}

// Diff produces a line-by-line diff between two strings.
// Shows context around differences with +/- prefixes.
func Diff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var result strings.Builder
	result.WriteString("--- expected\n+++ actual\n")

	maxLines := max(len(expectedLines), len(actualLines))
	for i := range maxLines {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}

		if expLine == actLine {
			fmt.Fprintf(&result, " %s\n", expLine)
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&result, "-%s\n", expLine)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&result, "+%s\n", actLine)
		}
	}

	return result.String()
}
