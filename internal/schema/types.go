package schema

// AliasDecl declares that an attribute is equivalent to another attribute.
//
// Attribute and Value are interchangeable spellings of the target attribute
// name; declaring both with different names is ambiguous. An empty target
// name means "the same name as the declaring attribute". An empty Schema
// declares a mirror within the declaring schema; a non-empty Schema declares
// an alias for an attribute of a meta-tag.
type AliasDecl struct {
	Attribute string
	Value     string
	Schema    string
}

// TargetName returns the target attribute name for an alias declared on
// attribute own. It returns false when Attribute and Value disagree.
func (d AliasDecl) TargetName(own string) (string, bool) {
	switch {
	case d.Attribute != "" && d.Value != "" && d.Attribute != d.Value:
		return "", false
	case d.Attribute != "":
		return d.Attribute, true
	case d.Value != "":
		return d.Value, true
	default:
		return own, true
	}
}

// TargetSchema returns the schema the alias points into, given the name of
// the declaring schema.
func (d AliasDecl) TargetSchema(declaring string) string {
	if d.Schema == "" {
		return declaring
	}

	return d.Schema
}

// AttributeSpec describes one attribute of a schema.
type AttributeSpec struct {
	Name string
	Type ValueType
	// Default is the value used when no application sets the attribute.
	// A nil Default marks the attribute as required.
	Default any
	Aliases []AliasDecl
}

// Required reports whether the attribute has no default value.
func (a *AttributeSpec) Required() bool {
	return a.Default == nil
}

// MetaTag is a tag application declared on a schema itself.
type MetaTag struct {
	Schema string
	Values *Attributes
}

// TypeSchema describes a tag type.
type TypeSchema struct {
	// Name is the globally unique schema name, e.g. "com.acme.Service".
	Name string
	// Attributes in declaration order.
	Attributes []AttributeSpec
	// Meta lists the tags declared on this schema, in declaration order.
	Meta []MetaTag
	// Inherited marks tags that subclasses inherit from their superclass.
	Inherited bool
	// Repeatable names the container schema when the tag may repeat.
	Repeatable string
}

// Index returns the position of the named attribute, or -1.
func (s *TypeSchema) Index(name string) int {
	for i := range s.Attributes {
		if s.Attributes[i].Name == name {
			return i
		}
	}

	return -1
}

// Attribute returns the named attribute.
func (s *TypeSchema) Attribute(name string) (*AttributeSpec, bool) {
	i := s.Index(name)
	if i < 0 {
		return nil, false
	}

	return &s.Attributes[i], true
}

// AttributeNames returns attribute names in declaration order.
func (s *TypeSchema) AttributeNames() []string {
	names := make([]string, len(s.Attributes))
	for i := range s.Attributes {
		names[i] = s.Attributes[i].Name
	}

	return names
}
