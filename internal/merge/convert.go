package merge

import (
	"tagmerge/internal/common"
	"tagmerge/internal/schema"
)

// convert adapts a value stored in its declared type have to the requested
// type want. Arrays convert element by element and a scalar is wrapped when
// an array is requested.
func (v *View) convert(name string, value any, have, want schema.ValueType) (any, error) {
	if !want.Array {
		if have.Array {
			return nil, incompatible(name, have, want)
		}

		return v.convertScalar(name, value, have, want)
	}

	items, ok := value.([]any)
	if !have.Array || !ok {
		items = []any{value}
	}

	elemHave, elemWant := have.Elem(), want.Elem()
	conv := func(item any) (any, error) {
		return v.convertScalar(name, item, elemHave, elemWant)
	}

	switch elemWant.Kind {
	case schema.KindBool:
		return collect[bool](items, conv)
	case schema.KindInt:
		return collect[int64](items, conv)
	case schema.KindFloat:
		return collect[float64](items, conv)
	case schema.KindString:
		return collect[string](items, conv)
	case schema.KindType:
		return collect[schema.TypeRef](items, conv)
	case schema.KindEnum:
		return collect[schema.EnumValue](items, conv)
	case schema.KindTag:
		return collect[*View](items, conv)
	default:
		return nil, incompatible(name, have, want)
	}
}

func collect[T any](items []any, conv func(any) (any, error)) ([]T, error) {
	out := make([]T, 0, len(items))

	for _, item := range items {
		c, err := conv(item)
		if err != nil {
			return nil, err
		}

		out = append(out, c.(T))
	}

	return out, nil
}

func (v *View) convertScalar(name string, value any, have, want schema.ValueType) (any, error) {
	switch want.Kind {
	case schema.KindString:
		switch x := value.(type) {
		case string:
			return x, nil
		case schema.TypeRef:
			return x.Name, nil
		case schema.EnumValue:
			return x.Name, nil
		}
	case schema.KindType:
		switch x := value.(type) {
		case schema.TypeRef:
			return x, nil
		case string:
			return schema.TypeRef{Name: x}, nil
		}
	case schema.KindEnum:
		if x, ok := value.(schema.EnumValue); ok && sameName(x.Type, want.Ref) {
			return x, nil
		}
	case schema.KindTag:
		if have.Kind == schema.KindTag && v.sameSchema(have.Ref, want.Ref) {
			return v.nested(name, value, have)
		}
	case schema.KindBool, schema.KindInt, schema.KindFloat:
		if have.Kind == want.Kind {
			return value, nil
		}
	}

	return nil, incompatible(name, have, want)
}

// nested returns the view of a nested tag value.
func (v *View) nested(name string, value any, have schema.ValueType) (*View, error) {
	switch x := value.(type) {
	case *Tag:
		return x.View(), nil
	case *schema.Attributes:
		nested, err := Of(v.builder, have.Ref, x)
		if err != nil {
			return nil, err
		}

		nested.origin = v.origin

		return nested, nil
	}

	return nil, incompatible(name, have, schema.Tag(have.Ref))
}

func sameName(have, want string) bool {
	return want == "" || have == "" || common.MatchesName(have, want) || common.MatchesName(want, have)
}

// sameSchema reports whether two schema names resolve to the same schema.
func (v *View) sameSchema(have, want string) bool {
	if want == "" || have == want {
		return true
	}

	a, err := v.builder.Registry().Resolve(have)
	if err != nil {
		return false
	}

	b, err := v.builder.Registry().Resolve(want)

	return err == nil && a == b
}
