package merge

import (
	"errors"
	"fmt"

	"tagmerge/internal/match"
	"tagmerge/internal/schema"
)

var (
	// ErrNoSuchAttribute reports an attribute the schema does not declare.
	ErrNoSuchAttribute = errors.New("no such attribute")
	// ErrIncompatibleType reports a requested type the stored value cannot
	// be converted to.
	ErrIncompatibleType = schema.ErrIncompatibleType
	// ErrRequired reports a required attribute that no application sets.
	ErrRequired = errors.New("required attribute has no value")
	// ErrNotPresent is returned when reading from a missing view.
	ErrNotPresent = errors.New("tag is not present")
	// ErrConflict matches every *ConflictError with errors.Is.
	ErrConflict = errors.New("conflicting attribute values")
)

// ConflictError reports two attributes of one mirror set that were set to
// different values on the same tag application.
type ConflictError struct {
	Attribute       string
	Schema          string
	Value           any
	OtherAttribute  string
	OtherSchema     string
	OtherValue      any
	DirectlyPresent bool
}

func (e *ConflictError) Error() string {
	where := "declared on a meta-tag"
	if e.DirectlyPresent {
		where = "declared on the tag"
	}

	return fmt.Sprintf("attribute %q in %s and its alias %q in %s are %s with different values %s and %s",
		e.Attribute, e.Schema, e.OtherAttribute, e.OtherSchema, where,
		schema.FormatValue(e.Value), schema.FormatValue(e.OtherValue))
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func noSuchAttribute(s *schema.TypeSchema, name string) error {
	if hint := match.Suggest(name, s.AttributeNames(), 1); len(hint) > 0 {
		return fmt.Errorf("%w: %q in %s (did you mean %q?)", ErrNoSuchAttribute, name, s.Name, hint[0])
	}

	return fmt.Errorf("%w: %q in %s", ErrNoSuchAttribute, name, s.Name)
}

func incompatible(name string, have, want schema.ValueType) error {
	return fmt.Errorf("%w: attribute %q is %s, requested %s", ErrIncompatibleType, name, have, want)
}
