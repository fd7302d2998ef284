package traverse

import (
	"tagmerge/internal/repeat"
)

// ElementKind distinguishes the elements a Source describes.
type ElementKind int

const (
	KindOther ElementKind = iota
	KindClass
	KindMethod
)

// String returns the kind name.
func (k ElementKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	default:
		return "other"
	}
}

// Source supplies the tags declared on program elements and the hierarchy
// between elements. For a method, Superclass and Interfaces name the methods
// it overrides.
type Source interface {
	// Declarations returns the tags declared directly on element, in
	// declaration order.
	Declarations(element string) ([]repeat.Declared, error)
	Kind(element string) ElementKind
	Superclass(element string) (string, bool)
	Interfaces(element string) []string
	// Bridged returns the method a bridge method was generated for.
	Bridged(element string) (string, bool)
}
