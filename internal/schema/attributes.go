package schema

import (
	"iter"
	"strings"
)

// Attribute is one named literal value.
type Attribute struct {
	Name  string
	Value any
}

// Attr is shorthand for constructing an Attribute.
func Attr(name string, value any) Attribute {
	return Attribute{Name: name, Value: value}
}

// Attributes is an immutable, ordered map of attribute name to literal value
// for one concrete application of a schema. A nil *Attributes is empty.
type Attributes struct {
	list  []Attribute
	index map[string]int
}

// NewAttributes builds Attributes in the given order. A repeated name keeps
// its first position and takes the last value.
func NewAttributes(attrs ...Attribute) *Attributes {
	a := &Attributes{
		list:  make([]Attribute, 0, len(attrs)),
		index: make(map[string]int, len(attrs)),
	}

	for _, attr := range attrs {
		if i, ok := a.index[attr.Name]; ok {
			a.list[i].Value = attr.Value
			continue
		}

		a.index[attr.Name] = len(a.list)
		a.list = append(a.list, attr)
	}

	return a
}

// Get returns the literal value for name.
func (a *Attributes) Get(name string) (any, bool) {
	if a == nil {
		return nil, false
	}

	i, ok := a.index[name]
	if !ok {
		return nil, false
	}

	return a.list[i].Value, true
}

// Has reports whether name carries a literal value.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}

	return len(a.list)
}

// Names returns attribute names in declaration order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}

	names := make([]string, len(a.list))
	for i, attr := range a.list {
		names[i] = attr.Name
	}

	return names
}

// All iterates attributes in declaration order.
func (a *Attributes) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if a == nil {
			return
		}

		for _, attr := range a.list {
			if !yield(attr.Name, attr.Value) {
				return
			}
		}
	}
}

// With returns a copy of a with name set to value.
func (a *Attributes) With(name string, value any) *Attributes {
	attrs := make([]Attribute, 0, a.Len()+1)
	if a != nil {
		attrs = append(attrs, a.list...)
	}

	return NewAttributes(append(attrs, Attr(name, value))...)
}

// Equal reports whether a and b hold equal values for the same names.
// Order is not significant.
func (a *Attributes) Equal(b *Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}

	for name, v := range a.All() {
		w, ok := b.Get(name)
		if !ok || !Equal(v, w) {
			return false
		}
	}

	return true
}

// String renders the attributes as {name=value, ...}.
func (a *Attributes) String() string {
	if a == nil {
		return "{}"
	}

	var b strings.Builder

	b.WriteByte('{')

	for i, attr := range a.list {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(attr.Name)
		b.WriteByte('=')
		b.WriteString(FormatValue(attr.Value))
	}

	b.WriteByte('}')

	return b.String()
}
