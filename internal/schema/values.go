package schema

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ErrIncompatibleType reports a value that cannot be represented as the
// declared or requested type.
var ErrIncompatibleType = errors.New("incompatible type")

// TypeRef is a reference to a program type by qualified name.
type TypeRef struct {
	Name string
}

// String returns the qualified type name.
func (r TypeRef) String() string {
	return r.Name
}

// EnumValue is a reference to a constant of an enum type.
type EnumValue struct {
	Type string
	Name string
}

// String returns "Type.Name", or Name when the type is unknown.
func (e EnumValue) String() string {
	if e.Type == "" {
		return e.Name
	}

	return e.Type + "." + e.Name
}

// TagValue is an already resolved nested tag value usable as a literal.
type TagValue interface {
	SchemaName() string
	Attributes() *Attributes
}

// Normalize converts a literal value to the canonical representation of t:
// integers become int64, floats float64, strings become TypeRef or EnumValue
// where t asks for them, nested tag values become *Attributes and arrays
// become []any. A single value for an array type is wrapped.
func Normalize(v any, t ValueType) (any, error) {
	if !t.Array {
		if isSlice(v) {
			return nil, fmt.Errorf("%w: array value for %s", ErrIncompatibleType, t)
		}

		return normalizeScalar(v, t)
	}

	elem := t.Elem()

	if !isSlice(v) {
		n, err := normalizeScalar(v, elem)
		if err != nil {
			return nil, err
		}

		return []any{n}, nil
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())

	for i := range rv.Len() {
		n, err := normalizeScalar(rv.Index(i).Interface(), elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = n
	}

	return out, nil
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}

	return reflect.TypeOf(v).Kind() == reflect.Slice
}

func normalizeScalar(v any, t ValueType) (any, error) {
	mismatch := func() (any, error) {
		return nil, fmt.Errorf("%w: %T value for %s", ErrIncompatibleType, v, t)
	}

	switch t.Kind {
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		if i, ok := toInt64(v); ok {
			return i, nil
		}
	case KindFloat:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}

		if i, ok := toInt64(v); ok {
			return float64(i), nil
		}
	case KindString:
		switch s := v.(type) {
		case string:
			return s, nil
		case TypeRef:
			return s.Name, nil
		}
	case KindType:
		switch r := v.(type) {
		case TypeRef:
			return r, nil
		case string:
			return TypeRef{Name: r}, nil
		}
	case KindEnum:
		switch e := v.(type) {
		case EnumValue:
			if e.Type == "" {
				e.Type = t.Ref
			}

			if t.Ref != "" && e.Type != t.Ref {
				return nil, fmt.Errorf("%w: enum %s is not of type %s", ErrIncompatibleType, e, t.Ref)
			}

			return e, nil
		case string:
			return EnumValue{Type: t.Ref, Name: e}, nil
		}
	case KindTag:
		switch n := v.(type) {
		case *Attributes:
			return n, nil
		case TagValue:
			if t.Ref != "" && n.SchemaName() != t.Ref {
				return nil, fmt.Errorf("%w: tag %s is not of schema %s", ErrIncompatibleType, n.SchemaName(), t.Ref)
			}

			return n.Attributes(), nil
		}
	}

	return mismatch()
}

func toInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int:
		return int64(i), true
	case int8:
		return int64(i), true
	case int16:
		return int64(i), true
	case int32:
		return int64(i), true
	case int64:
		return i, true
	case uint8:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint:
		if uint64(i) > math.MaxInt64 {
			return 0, false
		}

		return int64(i), true
	case uint64:
		if i > math.MaxInt64 {
			return 0, false
		}

		return int64(i), true
	}

	return 0, false
}

// Equal reports whether two normalized values are equal. Slices compare
// element-wise and nested attributes by name.
func Equal(a, b any) bool {
	if isSlice(a) || isSlice(b) {
		if !isSlice(a) || !isSlice(b) {
			return false
		}

		ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ra.Len() != rb.Len() {
			return false
		}

		for i := range ra.Len() {
			if !Equal(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}

		return true
	}

	switch x := a.(type) {
	case *Attributes:
		switch y := b.(type) {
		case *Attributes:
			return x.Equal(y)
		case TagValue:
			return x.Equal(y.Attributes())
		}

		return false
	case TagValue:
		switch y := b.(type) {
		case *Attributes:
			return x.Attributes().Equal(y)
		case TagValue:
			return x.SchemaName() == y.SchemaName() && x.Attributes().Equal(y.Attributes())
		}

		return false
	}

	if ia, ok := toInt64(a); ok {
		ib, ok := toInt64(b)
		return ok && ia == ib
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}

	return a == b
}

// AppendCanonical appends an encoding of v to buf such that values reported
// equal by Equal encode identically. Nested attributes are encoded by sorted
// name and tag values by their attributes only, as Equal compares them.
func AppendCanonical(buf []byte, v any) []byte {
	if isSlice(v) {
		rv := reflect.ValueOf(v)
		buf = binary.AppendUvarint(append(buf, 'a'), uint64(rv.Len()))

		for i := range rv.Len() {
			buf = AppendCanonical(buf, rv.Index(i).Interface())
		}

		return buf
	}

	switch x := v.(type) {
	case nil:
		return append(buf, 'n')
	case TagValue:
		return AppendCanonical(buf, x.Attributes())
	case *Attributes:
		names := x.Names()
		slices.Sort(names)

		buf = binary.AppendUvarint(append(buf, 'm'), uint64(len(names)))

		for _, name := range names {
			value, _ := x.Get(name)
			buf = AppendCanonical(appendString(buf, 'k', name), value)
		}

		return buf
	case bool:
		if x {
			return append(buf, 'b', 1)
		}

		return append(buf, 'b', 0)
	case float64:
		return appendFloat(buf, x)
	case float32:
		return appendFloat(buf, float64(x))
	case string:
		return appendString(buf, 's', x)
	case TypeRef:
		return appendString(buf, 't', x.Name)
	case EnumValue:
		return appendString(appendString(buf, 'e', x.Type), 'e', x.Name)
	}

	if i, ok := toInt64(v); ok {
		return binary.BigEndian.AppendUint64(append(buf, 'i'), uint64(i))
	}

	return appendString(buf, 'x', fmt.Sprintf("%T:%#v", v, v))
}

func appendFloat(buf []byte, f float64) []byte {
	// Equal treats -0 and 0 as the same value.
	if f == 0 {
		f = 0
	}

	return binary.BigEndian.AppendUint64(append(buf, 'f'), math.Float64bits(f))
}

func appendString(buf []byte, kind byte, s string) []byte {
	buf = binary.AppendUvarint(append(buf, kind), uint64(len(s)))
	return append(buf, s...)
}

// FormatValue renders a value the way tag display forms show it: strings
// quoted, arrays in brackets, type references by name.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(x)
	case fmt.Stringer:
		return x.String()
	}

	if isSlice(v) {
		rv := reflect.ValueOf(v)
		parts := make([]string, rv.Len())

		for i := range rv.Len() {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}

		return "[" + strings.Join(parts, ", ") + "]"
	}

	return fmt.Sprint(v)
}
