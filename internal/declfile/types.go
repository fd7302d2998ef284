package declfile

import (
	"tagmerge/internal/schema"
)

// File represents the root of a declaration file.
type File struct {
	// Version of the file format (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Schemas declares tag types.
	Schemas []SchemaDecl `yaml:"schemas" validate:"dive"`

	// Elements declares program elements and the tags on them.
	Elements []ElementDecl `yaml:"elements,omitempty" validate:"dive"`
}

// SchemaDecl declares one tag type.
type SchemaDecl struct {
	// Name is the globally unique schema name (e.g., "com.acme.Service").
	Name string `yaml:"name" validate:"required"`

	// Inherited marks tags that subclasses inherit.
	Inherited bool `yaml:"inherited,omitempty"`

	// Repeatable names the container schema of a repeatable tag.
	Repeatable string `yaml:"repeatable,omitempty"`

	Attributes []AttributeDecl `yaml:"attributes,omitempty" validate:"dive"`

	// Meta lists the tags declared on the schema itself.
	Meta []TagDecl `yaml:"meta,omitempty" validate:"dive"`
}

// AttributeDecl declares one attribute of a schema.
type AttributeDecl struct {
	Name string `yaml:"name" validate:"required"`

	// Type in textual form, e.g. "string", "[]tag(Inner)".
	Type string `yaml:"type" validate:"required"`

	// Default is the default value; absent means required.
	Default *Literal `yaml:"default,omitempty"`

	Aliases []AliasDecl `yaml:"aliases,omitempty"`
}

// AliasDecl declares an attribute equivalence. Attribute and Value are
// interchangeable spellings of the target attribute name.
type AliasDecl struct {
	Attribute string `yaml:"attribute,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
}

// TagDecl is one tag application.
type TagDecl struct {
	Schema string `yaml:"schema" validate:"required"`
	Values Values `yaml:"values,omitempty"`
}

// ElementDecl declares one program element.
type ElementDecl struct {
	Name string `yaml:"name" validate:"required"`

	// Kind is class, method or other; class when empty.
	Kind string `yaml:"kind,omitempty" validate:"omitempty,oneof=class method other"`

	// Superclass names the superclass, or the overridden method for a method.
	Superclass string `yaml:"superclass,omitempty"`

	// Interfaces names implemented interfaces, or interface methods for a
	// method.
	Interfaces []string `yaml:"interfaces,omitempty"`

	// Bridged names the method a bridge method was generated for.
	Bridged string `yaml:"bridged,omitempty"`

	Tags []TagDecl `yaml:"tags,omitempty" validate:"dive"`
}

// Literal is a literal attribute value.
type Literal struct {
	Value any
}

// Values is an ordered set of literal attribute values.
type Values struct {
	Attributes *schema.Attributes
}
