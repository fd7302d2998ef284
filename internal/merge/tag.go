package merge

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"tagmerge/internal/alias"
	"tagmerge/internal/schema"
)

// Tag is a synthesized tag: an immutable value holding every resolved
// attribute of one schema. Two tags are equal when their schema names and
// all attribute values are equal, wherever they were declared.
type Tag struct {
	builder *alias.Builder
	node    *alias.Node
	// values are in declaration order and declared type; nested tags are
	// *Tag values.
	values []any
	attrs  *schema.Attributes
}

// Synthesize resolves every attribute of the view into a Tag. Attribute
// filters do not apply. Synthesizing the view of a Tag returns that Tag.
func (v *View) Synthesize() (*Tag, error) {
	if v.synth != nil {
		return v.synth, nil
	}

	if v.node == nil {
		return nil, ErrNotPresent
	}

	s := v.node.Schema()

	// The tag reads as a root application of its own schema.
	m, err := v.builder.Build(s.Name)
	if err != nil {
		return nil, err
	}

	t := &Tag{
		builder: v.builder,
		node:    m.Root(),
		values:  make([]any, len(s.Attributes)),
	}

	list := make([]schema.Attribute, len(s.Attributes))

	for i := range s.Attributes {
		spec := &s.Attributes[i]

		value, err := v.resolve(i)
		if err != nil {
			return nil, err
		}

		value, err = v.synthesizeNested(spec, value)
		if err != nil {
			return nil, err
		}

		t.values[i] = value
		list[i] = schema.Attr(spec.Name, value)
	}

	t.attrs = schema.NewAttributes(list...)

	return t, nil
}

func (v *View) synthesizeNested(spec *schema.AttributeSpec, value any) (any, error) {
	if spec.Type.Kind != schema.KindTag {
		return value, nil
	}

	one := func(item any) (any, error) {
		nested, err := v.nested(spec.Name, item, spec.Type.Elem())
		if err != nil {
			return nil, err
		}

		return nested.Synthesize()
	}

	if !spec.Type.Array {
		return one(value)
	}

	items := value.([]any)
	out := make([]any, len(items))

	for i, item := range items {
		t, err := one(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", spec.Name, i, err)
		}

		out[i] = t
	}

	return out, nil
}

// SchemaName returns the tag's schema name.
func (t *Tag) SchemaName() string {
	return t.node.Schema().Name
}

// Attributes returns every attribute value in declaration order.
func (t *Tag) Attributes() *schema.Attributes {
	return t.attrs
}

// Attribute returns the resolved value of the named attribute.
func (t *Tag) Attribute(name string) (any, bool) {
	return t.attrs.Get(name)
}

// Names returns attribute names in declaration order.
func (t *Tag) Names() []string {
	return t.attrs.Names()
}

// Synthesize returns t.
func (t *Tag) Synthesize() (*Tag, error) {
	return t, nil
}

// View returns a view reading the tag's values.
func (t *Tag) View() *View {
	return &View{
		builder: t.builder,
		node:    t.node,
		attrs:   t.attrs,
		synth:   t,
	}
}

// Equal reports whether other is a *Tag or a present *View with the same
// schema name and attribute values.
func (t *Tag) Equal(other any) bool {
	var o *Tag

	switch x := other.(type) {
	case *Tag:
		o = x
	case *View:
		synth, err := x.Synthesize()
		if err != nil {
			return false
		}

		o = synth
	default:
		return false
	}

	if t == o {
		return true
	}

	if o == nil || t.SchemaName() != o.SchemaName() || len(t.values) != len(o.values) {
		return false
	}

	for i := range t.values {
		if !schema.Equal(t.values[i], o.values[i]) {
			return false
		}
	}

	return true
}

// Hash returns a hash consistent with Equal: it covers the schema name and
// the canonical encoding of every value.
func (t *Tag) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(t.SchemaName())

	var buf []byte
	for _, v := range t.values {
		buf = schema.AppendCanonical(buf[:0], v)
		_, _ = d.Write(buf)
	}

	return d.Sum64()
}

// String renders the tag as @Name(a=..., b=...) listing every attribute in
// declaration order.
func (t *Tag) String() string {
	var sb strings.Builder

	sb.WriteString("@")
	sb.WriteString(t.SchemaName())
	sb.WriteString("(")

	for i, spec := range t.node.Schema().Attributes {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(spec.Name)
		sb.WriteString("=")
		sb.WriteString(schema.FormatValue(t.values[i]))
	}

	sb.WriteString(")")

	return sb.String()
}
