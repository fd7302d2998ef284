package declfile

import (
	"tagmerge/internal/common"
)

// nameIndex finds declarations by name:
// - "com.acme.Service" (full)
// - "acme.Service" (dot-separated suffix)
// - "Service" (name only).
// The first declaration in file order wins when a suffix is ambiguous.
type nameIndex[T any] struct {
	names []string
	items map[string]T
}

func newNameIndex[T any]() *nameIndex[T] {
	return &nameIndex[T]{items: make(map[string]T)}
}

// add registers item under name unless the name is taken.
func (x *nameIndex[T]) add(name string, item T) bool {
	if _, dup := x.items[name]; dup {
		return false
	}

	x.names = append(x.names, name)
	x.items[name] = item

	return true
}

func (x *nameIndex[T]) find(name string) (T, bool) {
	// 1) exact match
	if item, ok := x.items[name]; ok {
		return item, true
	}

	// 2) suffix match
	for _, n := range x.names {
		if common.MatchesName(n, name) {
			return x.items[n], true
		}
	}

	var zero T

	return zero, false
}
