package traverse

import (
	"fmt"
	"strings"

	"tagmerge/internal/common"
)

// Strategy selects which elements of a hierarchy contribute tags.
type Strategy int

const (
	// Direct collects only tags declared on the element.
	Direct Strategy = iota
	// Inherited adds, for classes, inheritable tags of the nearest
	// superclass that declares them.
	Inherited
	// SuperClass collects tags of every class up the superclass chain.
	SuperClass
	// Exhaustive walks interfaces and superclasses, resolving bridge
	// methods to the methods they bridge.
	Exhaustive
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Inherited:
		return "inherited"
	case SuperClass:
		return "superclass"
	case Exhaustive:
		return "exhaustive"
	default:
		return common.UnknownStr
	}
}

// ParseStrategy parses a strategy name, case-insensitively. Underscores and
// dashes are ignored, so "SUPER_CLASS" parses.
func ParseStrategy(s string) (Strategy, error) {
	name := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))

	switch name {
	case "direct":
		return Direct, nil
	case "inherited", "inheritedannotations":
		return Inherited, nil
	case "superclass":
		return SuperClass, nil
	case "exhaustive":
		return Exhaustive, nil
	default:
		return Direct, fmt.Errorf("unknown search strategy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
