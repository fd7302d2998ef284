package alias

import (
	"iter"
	"sort"

	"tagmerge/internal/schema"
)

// Mappings is the meta-tag tree of one root schema, stored as an arena of
// nodes in depth-first traversal order. Index 0 is the root.
type Mappings struct {
	root    string
	nodes   []Node
	byDepth []int
}

// Node is one schema occurrence in the tree (a MappingNode).
type Node struct {
	owner    *Mappings
	index    int
	parent   int
	depth    int
	schema   *schema.TypeSchema
	declared *schema.Attributes
	table    *Table
}

// RootName returns the name of the root schema.
func (m *Mappings) RootName() string {
	return m.root
}

// Root returns the depth-0 node.
func (m *Mappings) Root() *Node {
	return &m.nodes[0]
}

// Len returns the number of nodes.
func (m *Mappings) Len() int {
	return len(m.nodes)
}

// Node returns the node at index i.
func (m *Mappings) Node(i int) *Node {
	return &m.nodes[i]
}

// All iterates nodes in depth-first traversal order.
func (m *Mappings) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for i := range m.nodes {
			if !yield(&m.nodes[i]) {
				return
			}
		}
	}
}

// ByDepth iterates nodes by increasing depth, keeping traversal order within
// one depth.
func (m *Mappings) ByDepth() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, i := range m.byDepth {
			if !yield(&m.nodes[i]) {
				return
			}
		}
	}
}

// Find returns the nearest node for the named schema, or nil.
func (m *Mappings) Find(name string) *Node {
	for n := range m.ByDepth() {
		if n.schema.Name == name {
			return n
		}
	}

	return nil
}

func (m *Mappings) seal() {
	m.byDepth = make([]int, len(m.nodes))
	for i := range m.nodes {
		m.nodes[i].owner = m
		m.byDepth[i] = i
	}

	sort.SliceStable(m.byDepth, func(a, b int) bool {
		return m.nodes[m.byDepth[a]].depth < m.nodes[m.byDepth[b]].depth
	})
}

// Index returns the node's position in its arena.
func (n *Node) Index() int {
	return n.index
}

// Depth returns the distance from the root schema; 0 for the root.
func (n *Node) Depth() int {
	return n.depth
}

// Schema returns the node's schema.
func (n *Node) Schema() *schema.TypeSchema {
	return n.schema
}

// Declared returns the literal values the schema was declared with on its
// parent schema; nil for the root.
func (n *Node) Declared() *schema.Attributes {
	return n.declared
}

// Table returns the alias table of the path ending at this node.
func (n *Node) Table() *Table {
	return n.table
}

// Mappings returns the arena the node belongs to.
func (n *Node) Mappings() *Mappings {
	return n.owner
}

// Parent returns the node this schema was declared on, or nil for the root.
func (n *Node) Parent() *Node {
	if n.parent < 0 {
		return nil
	}

	return &n.owner.nodes[n.parent]
}

// Path returns the nodes from the root to n, indexed by depth.
func (n *Node) Path() []*Node {
	path := make([]*Node, n.depth+1)
	for cur := n; cur != nil; cur = cur.Parent() {
		path[cur.depth] = cur
	}

	return path
}

// MetaTypes returns the schema names from the root to n.
func (n *Node) MetaTypes() []string {
	path := n.Path()

	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.schema.Name
	}

	return names
}
