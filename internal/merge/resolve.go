package merge

import (
	"fmt"

	"tagmerge/internal/alias"
	"tagmerge/internal/schema"
)

// Get resolves the named attribute and converts it to want. A zero want
// returns the value in its declared type.
func (v *View) Get(name string, want schema.ValueType) (any, error) {
	spec, idx, err := v.lookup(name)
	if err != nil {
		return nil, err
	}

	value, err := v.value(idx)
	if err != nil {
		return nil, err
	}

	if want.Kind == schema.KindInvalid {
		want = spec.Type
	}

	return v.convert(name, value, spec.Type, want)
}

// Value resolves the named attribute in its declared type.
func (v *View) Value(name string) (any, error) {
	return v.Get(name, schema.ValueType{})
}

// HasDefaultValue reports whether the named attribute resolves to the
// default of its mirror set.
func (v *View) HasDefaultValue(name string) (bool, error) {
	_, idx, err := v.lookup(name)
	if err != nil {
		return false, err
	}

	value, err := v.value(idx)
	if err != nil {
		return false, err
	}

	def, ok, err := v.defaultValue(idx)
	if err != nil || !ok {
		return false, err
	}

	return schema.Equal(value, def), nil
}

// HasNonDefaultValue is the negation of HasDefaultValue.
func (v *View) HasNonDefaultValue(name string) (bool, error) {
	def, err := v.HasDefaultValue(name)
	if err != nil {
		return false, err
	}

	return !def, nil
}

func (v *View) lookup(name string) (*schema.AttributeSpec, int, error) {
	if v.node == nil {
		return nil, -1, fmt.Errorf("%w: attribute %q", ErrNotPresent, name)
	}

	s := v.node.Schema()

	idx := s.Index(name)
	if idx < 0 || !v.visible(name) {
		return nil, -1, noSuchAttribute(s, name)
	}

	return &s.Attributes[idx], idx, nil
}

// value returns the resolved value of attribute idx in its declared type.
func (v *View) value(idx int) (any, error) {
	if v.synth != nil {
		return v.synth.values[idx], nil
	}

	return v.resolve(idx)
}

type candidate struct {
	ref   alias.Ref
	value any
}

// resolve walks the attribute's mirror set level by level from the root
// application down to this node. The first level that sets a member to a
// non-default value decides; members on one level must agree.
func (v *View) resolve(idx int) (any, error) {
	table := v.node.Table()
	self := alias.Ref{Depth: v.node.Depth(), Attribute: idx}
	spec := table.Spec(self)
	members := table.Mirrors(self)
	path := v.node.Path()

	for level := range path {
		literals := v.attrs
		if level > 0 {
			literals = path[level].Declared()
		}

		var found *candidate

		for _, m := range members {
			if m.Depth != level {
				continue
			}

			value, ok, err := v.literal(table, m, literals, spec)
			if err != nil {
				return nil, err
			}

			if !ok {
				continue
			}

			if found != nil && !schema.Equal(found.value, value) {
				return nil, v.conflict(table, found, &candidate{ref: m, value: value})
			}

			if found == nil {
				found = &candidate{ref: m, value: value}
			}
		}

		if found != nil {
			return found.value, nil
		}
	}

	def, ok, err := v.defaultValue(idx)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrRequired, spec.Name, v.SchemaName())
	}

	return def, nil
}

// literal returns the value member m is explicitly set to in literals,
// converted to the type of spec. Values equal to the member's default count
// as unset.
func (v *View) literal(table *alias.Table, m alias.Ref, literals *schema.Attributes, spec *schema.AttributeSpec) (any, bool, error) {
	ms := table.Spec(m)

	raw, ok := literals.Get(ms.Name)
	if !ok || raw == nil {
		return nil, false, nil
	}

	value, err := schema.Normalize(raw, ms.Type)
	if err != nil {
		return nil, false, fmt.Errorf("attribute %q in %s: %w", ms.Name, table.Schema(m.Depth).Name, err)
	}

	if !ms.Required() && schema.Equal(value, ms.Default) {
		return nil, false, nil
	}

	if ms.Type != spec.Type {
		value, err = schema.Normalize(value, spec.Type)
		if err != nil {
			return nil, false, fmt.Errorf("attribute %q in %s: %w", ms.Name, table.Schema(m.Depth).Name, err)
		}
	}

	return value, true, nil
}

// defaultValue returns the default of the first member of the mirror set
// that declares one.
func (v *View) defaultValue(idx int) (any, bool, error) {
	if v.synth != nil {
		spec := &v.node.Schema().Attributes[idx]
		return spec.Default, !spec.Required(), nil
	}

	table := v.node.Table()
	self := alias.Ref{Depth: v.node.Depth(), Attribute: idx}
	spec := table.Spec(self)

	for _, m := range table.Mirrors(self) {
		ms := table.Spec(m)
		if ms.Required() {
			continue
		}

		def, err := schema.Normalize(ms.Default, spec.Type)
		if err != nil {
			return nil, false, fmt.Errorf("default of %q in %s: %w", ms.Name, table.Schema(m.Depth).Name, err)
		}

		return def, true, nil
	}

	return nil, false, nil
}

func (v *View) conflict(table *alias.Table, a, b *candidate) *ConflictError {
	return &ConflictError{
		Attribute:       table.Spec(a.ref).Name,
		Schema:          table.Schema(a.ref.Depth).Name,
		Value:           a.value,
		OtherAttribute:  table.Spec(b.ref).Name,
		OtherSchema:     table.Schema(b.ref.Depth).Name,
		OtherValue:      b.value,
		DirectlyPresent: a.ref.Depth == 0,
	}
}
