package merge

import (
	"tagmerge/internal/schema"
)

type mapOptions struct {
	typesAsStrings bool
	tagsAsMaps     bool
}

// MapOption configures AsMap.
type MapOption func(*mapOptions)

// TypesAsStrings renders type references as their qualified names.
func TypesAsStrings() MapOption {
	return func(o *mapOptions) {
		o.typesAsStrings = true
	}
}

// TagsAsMaps renders nested tags as nested maps instead of *Tag values.
func TagsAsMaps() MapOption {
	return func(o *mapOptions) {
		o.tagsAsMaps = true
	}
}

// AsMap resolves every visible attribute. Values use the typed forms of Get;
// nested tags are synthesized unless TagsAsMaps is given.
func (v *View) AsMap(opts ...MapOption) (map[string]any, error) {
	if v.node == nil {
		return nil, ErrNotPresent
	}

	var o mapOptions
	for _, opt := range opts {
		opt(&o)
	}

	return v.asMap(&o)
}

func (v *View) asMap(o *mapOptions) (map[string]any, error) {
	out := make(map[string]any)

	for _, name := range v.Names() {
		spec, _ := v.node.Schema().Attribute(name)

		want := spec.Type
		if o.typesAsStrings && want.Kind == schema.KindType {
			want.Kind = schema.KindString
		}

		value, err := v.Get(name, want)
		if err != nil {
			return nil, err
		}

		switch x := value.(type) {
		case *View:
			value, err = x.mapNested(o)
		case []*View:
			items := make([]any, len(x))
			for i, nested := range x {
				if items[i], err = nested.mapNested(o); err != nil {
					break
				}
			}

			value = items
		}

		if err != nil {
			return nil, err
		}

		out[name] = value
	}

	return out, nil
}

func (v *View) mapNested(o *mapOptions) (any, error) {
	if o.tagsAsMaps {
		return v.asMap(o)
	}

	return v.Synthesize()
}
