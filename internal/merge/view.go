package merge

import (
	"tagmerge/internal/alias"
	"tagmerge/internal/schema"
)

// Origin records where a root tag application was found.
type Origin struct {
	// Source names the element the tag was declared on.
	Source string
	// Aggregate counts hierarchy levels above the queried element; 0 for
	// the element itself.
	Aggregate int
}

// View is the merged view of one schema occurrence (a MergedView): a node of
// the root schema's meta-tag tree read against the literal values of one
// root tag application.
type View struct {
	builder *alias.Builder
	node    *alias.Node
	attrs   *schema.Attributes
	origin  Origin
	synth   *Tag
	filter  func(string) bool
}

var missing = &View{origin: Origin{Aggregate: -1}}

// Missing returns the absent view: depth -1, no source, no attributes.
func Missing() *View {
	return missing
}

// Of returns the root view of the named schema applied with attrs.
func Of(b *alias.Builder, name string, attrs *schema.Attributes) (*View, error) {
	views, err := Expand(b, name, attrs, Origin{})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// Expand returns one view per node of the named schema's meta-tag tree, in
// depth-first traversal order, all reading the same root application.
func Expand(b *alias.Builder, name string, attrs *schema.Attributes, origin Origin) ([]*View, error) {
	m, err := b.Build(name)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, m.Len())
	for n := range m.All() {
		views = append(views, &View{builder: b, node: n, attrs: attrs, origin: origin})
	}

	return views, nil
}

func (v *View) withNode(n *alias.Node) *View {
	out := *v
	out.node = n
	out.filter = nil

	return &out
}

// SchemaName returns the name of the view's schema, or "" when missing.
func (v *View) SchemaName() string {
	if v.node == nil {
		return ""
	}

	return v.node.Schema().Name
}

// Schema returns the view's schema, or nil when missing.
func (v *View) Schema() *schema.TypeSchema {
	if v.node == nil {
		return nil
	}

	return v.node.Schema()
}

// IsPresent reports whether the view stands for an actual tag.
func (v *View) IsPresent() bool {
	return v.node != nil
}

// IsDirectlyPresent reports whether the tag was declared on its source.
func (v *View) IsDirectlyPresent() bool {
	return v.node != nil && v.node.Depth() == 0
}

// IsMetaPresent reports whether the tag was reached through meta-tags.
func (v *View) IsMetaPresent() bool {
	return v.node != nil && v.node.Depth() > 0
}

// Depth returns the meta-tag distance from the root application; -1 when
// missing.
func (v *View) Depth() int {
	if v.node == nil {
		return -1
	}

	return v.node.Depth()
}

// AggregateIndex returns the hierarchy level the root application was found
// at; -1 when missing.
func (v *View) AggregateIndex() int {
	return v.origin.Aggregate
}

// Source returns the element the root application was declared on.
func (v *View) Source() string {
	return v.origin.Source
}

// MetaTypes returns the schema names from the root application to this one.
func (v *View) MetaTypes() []string {
	if v.node == nil {
		return nil
	}

	return v.node.MetaTypes()
}

// Root returns the view of the root application.
func (v *View) Root() *View {
	if v.node == nil || v.node.Depth() == 0 {
		return v
	}

	return v.withNode(v.node.Path()[0])
}

// MetaSource returns the view this meta-tag was declared on, or Missing for
// a root view.
func (v *View) MetaSource() *View {
	if v.node == nil || v.node.Parent() == nil {
		return Missing()
	}

	return v.withNode(v.node.Parent())
}

// FilterAttributes returns a view that only exposes attributes accepted by
// pred. Filters compose.
func (v *View) FilterAttributes(pred func(name string) bool) *View {
	if v.node == nil {
		return v
	}

	out := *v

	prev := v.filter
	out.filter = func(name string) bool {
		return (prev == nil || prev(name)) && pred(name)
	}

	return &out
}

// FilterDefaultValues returns a view without attributes that resolve to
// their default value. Attributes that fail to resolve stay visible so that
// reading them still reports the failure.
func (v *View) FilterDefaultValues() *View {
	return v.FilterAttributes(func(name string) bool {
		def, err := v.HasDefaultValue(name)
		return err != nil || !def
	})
}

func (v *View) visible(name string) bool {
	return v.filter == nil || v.filter(name)
}

// Names returns the visible attribute names in declaration order.
func (v *View) Names() []string {
	if v.node == nil {
		return nil
	}

	var names []string

	for _, name := range v.node.Schema().AttributeNames() {
		if v.visible(name) {
			names = append(names, name)
		}
	}

	return names
}

// String renders the view the way its synthesized tag does, or a marker
// when the view is missing or fails to resolve.
func (v *View) String() string {
	if v.node == nil {
		return "<missing>"
	}

	t, err := v.Synthesize()
	if err != nil {
		return "@" + v.SchemaName() + "(<" + err.Error() + ">)"
	}

	return t.String()
}
