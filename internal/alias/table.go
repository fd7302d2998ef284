package alias

import (
	"tagmerge/internal/schema"
)

// Ref addresses one attribute on a mapping path: the depth of its schema on
// the path and the attribute's declaration index in that schema.
type Ref struct {
	Depth     int
	Attribute int
}

// Table is the alias table of one path. Elements are created in (depth,
// declaration) order and unions keep the smaller element as root, so the
// root of every set is its canonical member. A Table is read-only once its
// node is published.
type Table struct {
	schemas []*schema.TypeSchema
	offsets []int
	refs    []Ref
	parent  []int
}

func (t *Table) clone() *Table {
	if t == nil {
		return &Table{}
	}

	return &Table{
		schemas: append([]*schema.TypeSchema(nil), t.schemas...),
		offsets: append([]int(nil), t.offsets...),
		refs:    append([]Ref(nil), t.refs...),
		parent:  append([]int(nil), t.parent...),
	}
}

// push appends the attributes of s as the next depth.
func (t *Table) push(s *schema.TypeSchema) int {
	depth := len(t.schemas)
	t.schemas = append(t.schemas, s)
	t.offsets = append(t.offsets, len(t.refs))

	for i := range s.Attributes {
		t.parent = append(t.parent, len(t.refs))
		t.refs = append(t.refs, Ref{Depth: depth, Attribute: i})
	}

	return depth
}

func (t *Table) id(r Ref) int {
	return t.offsets[r.Depth] + r.Attribute
}

func (t *Table) find(x int) int {
	for t.parent[x] != x {
		t.parent[x] = t.parent[t.parent[x]]
		x = t.parent[x]
	}

	return x
}

func (t *Table) union(a, b Ref) bool {
	ra, rb := t.find(t.id(a)), t.find(t.id(b))

	switch {
	case ra < rb:
		t.parent[rb] = ra
	case rb < ra:
		t.parent[ra] = rb
	default:
		return false
	}

	return true
}

// sets groups every element by its root, in creation order.
func (t *Table) sets() [][]Ref {
	index := make(map[int]int)

	var out [][]Ref

	for i := range t.parent {
		root := t.find(i)

		j, ok := index[root]
		if !ok {
			j = len(out)
			index[root] = j
			out = append(out, nil)
		}

		out[j] = append(out[j], t.refs[i])
	}

	return out
}

// freeze points every element directly at its root so that reads never
// mutate the table.
func (t *Table) freeze() {
	for i := range t.parent {
		t.parent[i] = t.find(i)
	}
}

// Depth returns the depth of the deepest schema on the path.
func (t *Table) Depth() int {
	return len(t.schemas) - 1
}

// Schema returns the schema at depth on the path.
func (t *Table) Schema(depth int) *schema.TypeSchema {
	return t.schemas[depth]
}

// Spec returns the attribute declaration addressed by r.
func (t *Table) Spec(r Ref) *schema.AttributeSpec {
	return &t.schemas[r.Depth].Attributes[r.Attribute]
}

// Canonical returns the canonical member of r's mirror set.
func (t *Table) Canonical(r Ref) Ref {
	return t.refs[t.parent[t.id(r)]]
}

// Mirrors returns every member of r's mirror set in creation order,
// canonical member first. A set always contains r itself.
func (t *Table) Mirrors(r Ref) []Ref {
	root := t.parent[t.id(r)]

	var out []Ref

	for i, p := range t.parent {
		if p == root {
			out = append(out, t.refs[i])
		}
	}

	return out
}

// IsAliased reports whether r shares its mirror set with another attribute.
func (t *Table) IsAliased(r Ref) bool {
	return len(t.Mirrors(r)) > 1
}
