package alias

import (
	"errors"
	"fmt"

	"tagmerge/internal/common"
	"tagmerge/internal/schema"
)

// ErrConfiguration matches every *ConfigError with errors.Is.
var ErrConfiguration = errors.New("alias configuration error")

// Reason classifies a configuration error.
type Reason int

const (
	ReasonMissingTarget Reason = iota + 1
	ReasonMismatchedKind
	ReasonMismatchedDefault
	ReasonNotMetaPresent
	ReasonSelfReference
	ReasonAmbiguous
)

// String returns the diagnostic code of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonMissingTarget:
		return "missing_alias_target"
	case ReasonMismatchedKind:
		return "mismatched_kind"
	case ReasonMismatchedDefault:
		return "mismatched_default"
	case ReasonNotMetaPresent:
		return "alias_target_not_meta_present"
	case ReasonSelfReference:
		return "alias_self_reference"
	case ReasonAmbiguous:
		return "ambiguous_alias"
	default:
		return common.UnknownStr
	}
}

// ConfigError is a declaration-time error found while building the alias
// graph of Root. It names the offending attribute and its alias target.
type ConfigError struct {
	Root            string
	Schema          string
	Attribute       string
	TargetSchema    string
	TargetAttribute string
	Reason          Reason
	// Detail carries the mismatching values, e.g. both types or defaults.
	Detail string
}

// Error describes the misconfiguration precisely enough to fix the declaration.
func (e *ConfigError) Error() string {
	attr := fmt.Sprintf("attribute %q in schema %q", e.Attribute, e.Schema)
	target := fmt.Sprintf("attribute %q in schema %q", e.TargetAttribute, e.TargetSchema)

	var msg string

	switch e.Reason {
	case ReasonMissingTarget:
		msg = fmt.Sprintf("%s declares an alias for %s, which is not present", attr, target)
	case ReasonMismatchedKind:
		msg = fmt.Sprintf("%s and %s must declare the same type", attr, target)
	case ReasonMismatchedDefault:
		msg = fmt.Sprintf("%s and %s must declare the same default value", attr, target)
	case ReasonNotMetaPresent:
		msg = fmt.Sprintf("%s declares an alias for %s, which is not meta-present", attr, target)
	case ReasonSelfReference:
		msg = fmt.Sprintf("%s declares an alias that points to itself; "+
			"name a meta-tag schema to alias a same-named attribute there", attr)
	case ReasonAmbiguous:
		msg = fmt.Sprintf("%s declares more than one alias target name", attr)
	default:
		msg = attr + " is misconfigured"
	}

	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}

	if e.Root != "" && e.Root != e.Schema {
		msg += fmt.Sprintf(" while building %q", e.Root)
	}

	return "misconfigured alias: " + msg
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(reason Reason, s *schema.TypeSchema, attr, targetSchema, targetAttr string) *ConfigError {
	return &ConfigError{
		Schema:          s.Name,
		Attribute:       attr,
		TargetSchema:    targetSchema,
		TargetAttribute: targetAttr,
		Reason:          reason,
	}
}

func (e *ConfigError) withDetail(format string, args ...any) *ConfigError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}
