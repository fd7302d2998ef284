package alias

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tagmerge/internal/repeat"
	"tagmerge/internal/schema"
)

type buildResult struct {
	mappings *Mappings
	err      error
}

// Builder builds and memoizes Mappings per root schema. It owns the schema
// registry it resolves against, so Reset clears both caches together.
type Builder struct {
	registry   *schema.Registry
	containers *repeat.Containers
	logger     *zap.Logger

	mu      sync.RWMutex
	results map[string]buildResult
	reach   map[string]map[string]struct{}
	group   singleflight.Group
}

// Option configures a Builder.
type Option func(*Builder)

// WithContainers sets the repeatable containers expanded among meta-tags.
func WithContainers(c *repeat.Containers) Option {
	return func(b *Builder) {
		if c != nil {
			b.containers = c
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder over registry. Standard repeatable containers
// are expanded among meta-tags unless WithContainers says otherwise.
func NewBuilder(registry *schema.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry:   registry,
		containers: repeat.Standard(),
		logger:     registry.Logger(),
		results:    make(map[string]buildResult),
		reach:      make(map[string]map[string]struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Registry returns the schema registry.
func (b *Builder) Registry() *schema.Registry {
	return b.registry
}

// Containers returns the repeatable container policy.
func (b *Builder) Containers() *repeat.Containers {
	return b.containers
}

// Logger returns the builder logger.
func (b *Builder) Logger() *zap.Logger {
	return b.logger
}

// Build returns the Mappings of the named root schema. Successful builds and
// configuration errors are cached; schema resolution failures are not.
func (b *Builder) Build(name string) (*Mappings, error) {
	root, err := b.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	res, ok := b.results[root.Name]
	b.mu.RUnlock()

	if ok {
		return res.mappings, res.err
	}

	v, err, _ := b.group.Do(root.Name, func() (any, error) {
		m, err := b.build(root)

		var cfg *ConfigError
		if err != nil && !errors.As(err, &cfg) {
			return nil, err
		}

		if cfg != nil {
			cfg.Root = root.Name
			b.logger.Debug("alias graph rejected", zap.String("schema", root.Name), zap.Error(cfg))
		}

		return b.publish(root.Name, buildResult{mappings: m, err: err}), nil
	})
	if err != nil {
		return nil, err
	}

	res = v.(buildResult)

	return res.mappings, res.err
}

func (b *Builder) publish(name string, res buildResult) buildResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.results[name]; ok {
		return existing
	}

	b.results[name] = res

	return res
}

// Reset clears all built mappings and the schema registry.
func (b *Builder) Reset() {
	b.mu.Lock()
	b.results = make(map[string]buildResult)
	b.reach = make(map[string]map[string]struct{})
	b.mu.Unlock()

	b.registry.Reset()
}

// buildState carries one depth-first walk.
type buildState struct {
	b         *Builder
	m         *Mappings
	onPath    map[*schema.TypeSchema]bool
	validated map[*schema.TypeSchema]bool
}

func (b *Builder) build(root *schema.TypeSchema) (*Mappings, error) {
	st := &buildState{
		b:         b,
		m:         &Mappings{root: root.Name},
		onPath:    make(map[*schema.TypeSchema]bool),
		validated: make(map[*schema.TypeSchema]bool),
	}

	if err := st.visit(root, -1, nil); err != nil {
		return nil, err
	}

	if err := st.propagate(); err != nil {
		return nil, err
	}

	st.m.seal()

	b.logger.Debug("alias graph built", zap.String("schema", root.Name), zap.Int("nodes", st.m.Len()))

	return st.m, nil
}

func (st *buildState) visit(s *schema.TypeSchema, parent int, declared *schema.Attributes) error {
	if err := st.validate(s); err != nil {
		return err
	}

	var (
		base  *Table
		depth int
	)

	if parent >= 0 {
		base = st.m.nodes[parent].table
		depth = st.m.nodes[parent].depth + 1
	}

	table, err := st.extend(base, s)
	if err != nil {
		return err
	}

	index := len(st.m.nodes)
	st.m.nodes = append(st.m.nodes, Node{
		index:    index,
		parent:   parent,
		depth:    depth,
		schema:   s,
		declared: declared,
		table:    table,
	})

	st.onPath[s] = true
	defer delete(st.onPath, s)

	metas, err := st.b.metaTags(s)
	if err != nil {
		return err
	}

	for _, meta := range metas {
		if st.onPath[meta.schema] {
			st.b.logger.Debug("meta-tag cycle skipped",
				zap.String("schema", s.Name), zap.String("meta", meta.schema.Name))

			continue
		}

		if err := st.visit(meta.schema, index, meta.values); err != nil {
			return err
		}
	}

	return nil
}

type metaTag struct {
	schema *schema.TypeSchema
	values *schema.Attributes
}

// metaTags resolves the meta-tags declared on s, expanding containers into
// their elements. Meta-tags of unknown schemas are skipped.
func (b *Builder) metaTags(s *schema.TypeSchema) ([]metaTag, error) {
	out := make([]metaTag, 0, len(s.Meta))

	for _, meta := range s.Meta {
		elems, ok, err := b.containers.Expand(b.registry, meta.Schema, meta.Values)
		if err != nil {
			return nil, err
		}

		decls := []repeat.Declared{{Schema: meta.Schema, Attributes: meta.Values}}
		if ok {
			decls = elems
		}

		for _, d := range decls {
			ms, err := b.registry.Resolve(d.Schema)
			if errors.Is(err, schema.ErrNotFound) {
				b.logger.Debug("unknown meta-tag skipped",
					zap.String("schema", s.Name), zap.String("meta", d.Schema))

				continue
			}

			if err != nil {
				return nil, err
			}

			out = append(out, metaTag{schema: ms, values: d.Attributes})
		}
	}

	return out, nil
}

// extend returns a copy of base with s pushed as the next depth and every
// alias edge that ends on s applied.
func (st *buildState) extend(base *Table, s *schema.TypeSchema) (*Table, error) {
	t := base.clone()
	depth := t.push(s)

	for i := 0; i <= depth; i++ {
		declaring := t.schemas[i]

		for ai := range declaring.Attributes {
			for _, d := range declaring.Attributes[ai].Aliases {
				target, name, err := st.b.aliasTarget(declaring, ai, d)
				if err != nil {
					return nil, err
				}

				if target != s {
					continue
				}

				t.union(Ref{Depth: i, Attribute: ai}, Ref{Depth: depth, Attribute: s.Index(name)})
			}
		}
	}

	t.freeze()

	if err := checkMirrorSets(t); err != nil {
		return nil, err
	}

	return t, nil
}

// propagate carries mirror sets discovered below a node up to it: two
// attributes that alias the same meta-tag attribute mirror each other on
// every path that contains both of them. It repeats until no table changes.
func (st *buildState) propagate() error {
	nodes := st.m.nodes

	for changed := true; changed; {
		changed = false

		for i := range nodes {
			n := &nodes[i]

			for _, set := range n.table.sets() {
				if len(set) < 2 {
					continue
				}

				for a := n; a != nil; a = st.parentOf(a) {
					members := upTo(set, a.depth)
					if len(members) < 2 {
						continue
					}

					for _, x := range st.subtree(a.index) {
						for _, m := range members[1:] {
							if nodes[x].table.union(members[0], m) {
								changed = true
							}
						}
					}
				}
			}
		}
	}

	for i := range nodes {
		nodes[i].table.freeze()

		if err := checkMirrorSets(nodes[i].table); err != nil {
			return err
		}
	}

	return nil
}

func (st *buildState) parentOf(n *Node) *Node {
	if n.parent < 0 {
		return nil
	}

	return &st.m.nodes[n.parent]
}

// subtree returns the arena indexes of node i and its descendants, which are
// contiguous in depth-first order.
func (st *buildState) subtree(i int) []int {
	out := []int{i}

	for j := i + 1; j < len(st.m.nodes) && st.m.nodes[j].depth > st.m.nodes[i].depth; j++ {
		out = append(out, j)
	}

	return out
}

func upTo(set []Ref, depth int) []Ref {
	var out []Ref

	for _, r := range set {
		if r.Depth <= depth {
			out = append(out, r)
		}
	}

	return out
}

// aliasTarget resolves the schema and attribute name an alias points to.
// It is only called for declarations that already passed validation.
func (b *Builder) aliasTarget(declaring *schema.TypeSchema, ai int, d schema.AliasDecl) (*schema.TypeSchema, string, error) {
	name, _ := d.TargetName(declaring.Attributes[ai].Name)

	targetName := d.TargetSchema(declaring.Name)
	if targetName == declaring.Name {
		return declaring, name, nil
	}

	target, err := b.registry.Resolve(targetName)
	if err != nil {
		return nil, "", err
	}

	return target, name, nil
}

// checkMirrorSets verifies that attributes of one schema that ended up in
// the same mirror set share their type and default.
func checkMirrorSets(t *Table) error {
	for depth, s := range t.schemas {
		for ai := range s.Attributes {
			r := Ref{Depth: depth, Attribute: ai}

			first, ok := firstAtDepth(t.Mirrors(r), depth)
			if !ok || first == r {
				continue
			}

			a, b := t.Spec(first), t.Spec(r)
			if a.Type != b.Type {
				return configError(ReasonMismatchedKind, s, b.Name, s.Name, a.Name).
					withDetail("%s vs %s", b.Type, a.Type)
			}

			if !sameDefault(a, b) {
				return configError(ReasonMismatchedDefault, s, b.Name, s.Name, a.Name).
					withDetail("%s vs %s", formatDefault(b), formatDefault(a))
			}
		}
	}

	return nil
}

func firstAtDepth(refs []Ref, depth int) (Ref, bool) {
	for _, r := range refs {
		if r.Depth == depth {
			return r, true
		}
	}

	return Ref{}, false
}

func sameDefault(a, b *schema.AttributeSpec) bool {
	if a.Required() || b.Required() {
		return a.Required() == b.Required()
	}

	return schema.Equal(a.Default, b.Default)
}

func formatDefault(a *schema.AttributeSpec) string {
	if a.Required() {
		return "required"
	}

	return schema.FormatValue(a.Default)
}
