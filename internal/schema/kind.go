package schema

import (
	"fmt"
	"strings"

	"tagmerge/internal/common"
)

// Kind represents the kind of an attribute value.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool         // bool
	KindInt          // int64
	KindFloat        // float64
	KindString       // string
	KindType         // type reference (TypeRef)
	KindEnum         // enum reference (EnumValue)
	KindTag          // nested tag application
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindType:
		return "type"
	case KindEnum:
		return "enum"
	case KindTag:
		return "tag"
	default:
		return common.UnknownStr
	}
}

// ValueType describes the declared or requested type of an attribute value.
type ValueType struct {
	Kind  Kind
	Array bool
	// Ref names the enum type for KindEnum or the nested schema for KindTag.
	// An empty Ref in a requested type accepts any enum type or schema.
	Ref string
}

// Common value types.
var (
	Bool        = ValueType{Kind: KindBool}
	Int         = ValueType{Kind: KindInt}
	Float       = ValueType{Kind: KindFloat}
	String      = ValueType{Kind: KindString}
	Type        = ValueType{Kind: KindType}
	BoolArray   = ValueType{Kind: KindBool, Array: true}
	IntArray    = ValueType{Kind: KindInt, Array: true}
	FloatArray  = ValueType{Kind: KindFloat, Array: true}
	StringArray = ValueType{Kind: KindString, Array: true}
	TypeArray   = ValueType{Kind: KindType, Array: true}
)

// Enum returns the value type of a reference to enum type name.
func Enum(name string) ValueType {
	return ValueType{Kind: KindEnum, Ref: name}
}

// Tag returns the value type of a nested application of schema name.
func Tag(name string) ValueType {
	return ValueType{Kind: KindTag, Ref: name}
}

// ArrayOf returns the array form of t.
func ArrayOf(t ValueType) ValueType {
	t.Array = true
	return t
}

// Elem returns the element type of an array type, or t itself.
func (t ValueType) Elem() ValueType {
	t.Array = false
	return t
}

// IsValid reports whether t names a usable type.
func (t ValueType) IsValid() bool {
	return t.Kind > KindInvalid && t.Kind <= KindTag
}

// String returns the textual form used by declaration files, e.g. "[]tag(Inner)".
func (t ValueType) String() string {
	s := t.Kind.String()
	if (t.Kind == KindEnum || t.Kind == KindTag) && t.Ref != "" {
		s += "(" + t.Ref + ")"
	}

	if t.Array {
		s = "[]" + s
	}

	return s
}

// ParseValueType parses the textual form produced by ValueType.String.
func ParseValueType(s string) (ValueType, error) {
	var t ValueType

	rest := strings.TrimSpace(s)
	if strings.HasPrefix(rest, "[]") {
		t.Array = true
		rest = rest[2:]
	}

	name := rest
	if open := strings.IndexByte(rest, '('); open >= 0 {
		if !strings.HasSuffix(rest, ")") {
			return ValueType{}, fmt.Errorf("invalid value type %q: unbalanced parenthesis", s)
		}

		name = rest[:open]
		t.Ref = strings.TrimSpace(rest[open+1 : len(rest)-1])
	}

	switch name {
	case "bool":
		t.Kind = KindBool
	case "int":
		t.Kind = KindInt
	case "float":
		t.Kind = KindFloat
	case "string":
		t.Kind = KindString
	case "type":
		t.Kind = KindType
	case "enum":
		t.Kind = KindEnum
	case "tag":
		t.Kind = KindTag
	default:
		return ValueType{}, fmt.Errorf("invalid value type %q: unknown kind %q", s, name)
	}

	if t.Ref != "" && t.Kind != KindEnum && t.Kind != KindTag {
		return ValueType{}, fmt.Errorf("invalid value type %q: %s takes no reference", s, t.Kind)
	}

	if t.Kind == KindTag && t.Ref == "" {
		return ValueType{}, fmt.Errorf("invalid value type %q: tag requires a schema name", s)
	}

	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(text []byte) error {
	parsed, err := ParseValueType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
