package declfile

import (
	"errors"
	"fmt"

	"tagmerge/internal/repeat"
	"tagmerge/internal/schema"
	"tagmerge/internal/traverse"
)

// ErrUnknownElement is returned for elements the file does not declare.
var ErrUnknownElement = errors.New("unknown element")

// Model serves a declaration file as a schema.Loader and a traverse.Source.
type Model struct {
	schemas  *nameIndex[*schema.TypeSchema]
	elements *nameIndex[*element]
}

type element struct {
	decl *ElementDecl
	kind traverse.ElementKind
	tags []repeat.Declared
}

// NewModel converts the declarations of f. It fails on declarations that
// cannot be represented at all, such as unparsable attribute types; Validate
// reports everything else.
func NewModel(f *File) (*Model, error) {
	m := &Model{
		schemas:  newNameIndex[*schema.TypeSchema](),
		elements: newNameIndex[*element](),
	}

	for i := range f.Schemas {
		s, err := convertSchema(&f.Schemas[i])
		if err != nil {
			return nil, err
		}

		if !m.schemas.add(s.Name, s) {
			return nil, fmt.Errorf("duplicate schema %q", s.Name)
		}
	}

	for i := range f.Elements {
		decl := &f.Elements[i]

		el := &element{decl: decl, kind: parseKind(decl.Kind)}
		for _, tag := range decl.Tags {
			el.tags = append(el.tags, repeat.Declared{Schema: tag.Schema, Attributes: tag.Values.Attributes})
		}

		if !m.elements.add(decl.Name, el) {
			return nil, fmt.Errorf("duplicate element %q", decl.Name)
		}
	}

	return m, nil
}

func convertSchema(decl *SchemaDecl) (*schema.TypeSchema, error) {
	s := &schema.TypeSchema{
		Name:       decl.Name,
		Inherited:  decl.Inherited,
		Repeatable: decl.Repeatable,
		Attributes: make([]schema.AttributeSpec, 0, len(decl.Attributes)),
	}

	for _, a := range decl.Attributes {
		t, err := schema.ParseValueType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("schema %s attribute %s: %w", decl.Name, a.Name, err)
		}

		spec := schema.AttributeSpec{Name: a.Name, Type: t}
		if a.Default != nil {
			spec.Default = a.Default.Value
		}

		for _, alias := range a.Aliases {
			spec.Aliases = append(spec.Aliases, schema.AliasDecl{
				Attribute: alias.Attribute,
				Value:     alias.Value,
				Schema:    alias.Schema,
			})
		}

		s.Attributes = append(s.Attributes, spec)
	}

	for _, meta := range decl.Meta {
		s.Meta = append(s.Meta, schema.MetaTag{Schema: meta.Schema, Values: meta.Values.Attributes})
	}

	return s, nil
}

func parseKind(kind string) traverse.ElementKind {
	switch kind {
	case "", "class":
		return traverse.KindClass
	case "method":
		return traverse.KindMethod
	default:
		return traverse.KindOther
	}
}

// Load returns the schema declared under name or a suffix of it.
func (m *Model) Load(name string) (*schema.TypeSchema, error) {
	s, ok := m.schemas.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrNotFound, name)
	}

	return s, nil
}

// Schemas returns the declared schema names in file order.
func (m *Model) Schemas() []string {
	return m.schemas.names
}

// Elements returns the declared element names in file order.
func (m *Model) Elements() []string {
	return m.elements.names
}

// Declarations returns the tags declared on element.
func (m *Model) Declarations(name string) ([]repeat.Declared, error) {
	el, ok := m.elements.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, name)
	}

	return el.tags, nil
}

// Kind returns the element kind; unknown elements are KindOther.
func (m *Model) Kind(name string) traverse.ElementKind {
	el, ok := m.elements.find(name)
	if !ok {
		return traverse.KindOther
	}

	return el.kind
}

// Superclass returns the declared superclass of element. Hierarchy
// references to undeclared elements are dropped.
func (m *Model) Superclass(name string) (string, bool) {
	el, ok := m.elements.find(name)
	if !ok || el.decl.Superclass == "" {
		return "", false
	}

	return m.declared(el.decl.Superclass)
}

// Interfaces returns the declared interfaces of element.
func (m *Model) Interfaces(name string) []string {
	el, ok := m.elements.find(name)
	if !ok {
		return nil
	}

	var out []string

	for _, iface := range el.decl.Interfaces {
		if full, ok := m.declared(iface); ok {
			out = append(out, full)
		}
	}

	return out
}

// Bridged returns the method a bridge method element was generated for.
func (m *Model) Bridged(name string) (string, bool) {
	el, ok := m.elements.find(name)
	if !ok || el.decl.Bridged == "" {
		return "", false
	}

	return m.declared(el.decl.Bridged)
}

// declared returns the full name of a declared element.
func (m *Model) declared(name string) (string, bool) {
	el, ok := m.elements.find(name)
	if !ok {
		return "", false
	}

	return el.decl.Name, true
}
