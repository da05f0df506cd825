// Package builtins describes the built-in types of the shader languages:
// scalar types and their numeric conversions, vector and matrix spellings,
// object types and declaration keywords.
package builtins

import (
	"math"
	"strconv"
	"strings"
)

// ScalarKind identifies the numeric representation of a scalar type.
type ScalarKind uint8

const (
	KindBool ScalarKind = iota
	KindInt
	KindUint
	KindFloat
	KindDouble
)

func (k ScalarKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	}
	return "unknown"
}

// Scalar is a built-in scalar type. Bits is the storage precision; the
// minimum-precision variants (min16float and friends) compute at full
// precision, so Convert treats them as their base kind.
type Scalar struct {
	Name string
	Kind ScalarKind
	Bits int
}

var scalars = map[string]Scalar{
	"bool":       {"bool", KindBool, 32},
	"int":        {"int", KindInt, 32},
	"uint":       {"uint", KindUint, 32},
	"dword":      {"dword", KindUint, 32},
	"half":       {"half", KindFloat, 16},
	"float":      {"float", KindFloat, 32},
	"double":     {"double", KindDouble, 64},
	"min16float": {"min16float", KindFloat, 16},
	"min10float": {"min10float", KindFloat, 10},
	"min16int":   {"min16int", KindInt, 16},
	"min12int":   {"min12int", KindInt, 12},
	"min16uint":  {"min16uint", KindUint, 16},
}

// LookupScalar returns the scalar type spelled name.
func LookupScalar(name string) (Scalar, bool) {
	s, ok := scalars[name]
	return s, ok
}

// ScalarNames returns every scalar spelling.
func ScalarNames() []string {
	names := make([]string, 0, len(scalars))
	for name := range scalars {
		names = append(names, name)
	}
	return names
}

// Convert reinterprets v, held as a float64, in the representation of s.
func (s Scalar) Convert(v float64) float64 {
	switch s.Kind {
	case KindBool:
		if v != 0 {
			return 1
		}
		return 0
	case KindInt:
		return float64(ToInt32(v))
	case KindUint:
		return float64(uint32(ToInt64(v)))
	case KindFloat:
		return float64(float32(v))
	}
	return v
}

// ToInt64 truncates toward zero. NaN and values outside the int64 range
// become 0.
func ToInt64(v float64) int64 {
	if math.IsNaN(v) || v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0
	}
	return int64(v)
}

// ToInt32 truncates toward zero and wraps to 32 bits.
func ToInt32(v float64) int32 {
	return int32(ToInt64(v))
}

// ----------------------------------------------------------------------------
// Vectors and Matrices
// ----------------------------------------------------------------------------

// ParseVector recognizes float4-style spellings.
func ParseVector(name string) (Scalar, int, bool) {
	base, rest, ok := splitScalarPrefix(name)
	if !ok || len(rest) != 1 {
		return Scalar{}, 0, false
	}
	n, ok := dimension(rest)
	return base, n, ok
}

// ParseMatrix recognizes float4x3-style spellings.
func ParseMatrix(name string) (Scalar, int, int, bool) {
	base, rest, ok := splitScalarPrefix(name)
	if !ok || len(rest) != 3 || rest[1] != 'x' {
		return Scalar{}, 0, 0, false
	}
	rows, ok1 := dimension(rest[:1])
	cols, ok2 := dimension(rest[2:])
	return base, rows, cols, ok1 && ok2
}

// splitScalarPrefix finds the longest scalar spelling that prefixes name.
func splitScalarPrefix(name string) (Scalar, string, bool) {
	var best Scalar
	found := false
	for prefix, s := range scalars {
		if len(prefix) < len(name) && strings.HasPrefix(name, prefix) && (!found || len(prefix) > len(best.Name)) {
			best, found = s, true
		}
	}
	if !found {
		return Scalar{}, "", false
	}
	return best, name[len(best.Name):], true
}

func dimension(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 1 && n <= 4
}

// ----------------------------------------------------------------------------
// Object Types and Keywords
// ----------------------------------------------------------------------------

var textureTypes = map[string]bool{
	"texture": true, "Texture1D": true, "Texture1DArray": true,
	"Texture2D": true, "Texture2DArray": true, "Texture2DMS": true,
	"Texture2DMSArray": true, "Texture3D": true, "TextureCube": true,
	"TextureCubeArray": true, "RWTexture1D": true, "RWTexture1DArray": true,
	"RWTexture2D": true, "RWTexture2DArray": true, "RWTexture3D": true,
	"Buffer": true, "RWBuffer": true, "StructuredBuffer": true,
	"RWStructuredBuffer": true, "AppendStructuredBuffer": true,
	"ConsumeStructuredBuffer": true, "ByteAddressBuffer": true,
	"RWByteAddressBuffer": true,
}

var objectTypes = map[string]bool{
	"sampler": true, "sampler1D": true, "sampler2D": true, "sampler3D": true,
	"samplerCUBE": true, "SamplerState": true, "SamplerComparisonState": true,
	"string": true, "void": true,
}

// IsTextureType reports whether name is a texture or buffer object that
// may take an element type argument.
func IsTextureType(name string) bool {
	return textureTypes[name]
}

// IsObjectType reports whether name is an opaque built-in object type.
func IsObjectType(name string) bool {
	return objectTypes[name]
}

// IsTypeName reports whether name spells any built-in type.
func IsTypeName(name string) bool {
	if _, ok := scalars[name]; ok {
		return true
	}
	if _, _, ok := ParseVector(name); ok {
		return true
	}
	if _, _, _, ok := ParseMatrix(name); ok {
		return true
	}
	return name == "vector" || name == "matrix" || IsTextureType(name) || IsObjectType(name)
}

var qualifiers = map[string]bool{
	"static": true, "const": true, "uniform": true, "extern": true,
	"volatile": true, "shared": true, "groupshared": true, "inline": true,
	"in": true, "out": true, "inout": true, "precise": true,
	"row_major": true, "column_major": true, "linear": true,
	"centroid": true, "nointerpolation": true, "noperspective": true,
	"sample": true, "snorm": true, "unorm": true, "point": true,
	"line": true, "triangle": true, "lineadj": true, "triangleadj": true,
}

// IsQualifier reports whether word is a storage, parameter or
// interpolation keyword.
func IsQualifier(word string) bool {
	return qualifiers[word]
}
