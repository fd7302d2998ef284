package alias

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tagmerge/internal/repeat"
	"tagmerge/internal/schema"
)

func stereotypes() []*schema.TypeSchema {
	return []*schema.TypeSchema{
		{
			Name:       "Indexed",
			Attributes: []schema.AttributeSpec{},
		},
		{
			Name:       "Component",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String, Default: ""}},
			Meta:       []schema.MetaTag{{Schema: "Indexed"}},
		},
		{
			Name: "Service",
			Attributes: []schema.AttributeSpec{
				{Name: "value", Type: schema.String, Default: ""},
				{
					Name: "name", Type: schema.String, Default: "",
					Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}},
				},
			},
			Meta: []schema.MetaTag{{Schema: "Component"}},
		},
		{
			Name: "ContextConfiguration",
			Attributes: []schema.AttributeSpec{
				{
					Name: "value", Type: schema.StringArray, Default: []any{},
					Aliases: []schema.AliasDecl{{Attribute: "locations"}},
				},
				{
					Name: "locations", Type: schema.StringArray, Default: []any{},
					Aliases: []schema.AliasDecl{{Attribute: "value"}},
				},
				{Name: "inheritLocations", Type: schema.Bool, Default: true},
			},
		},
	}
}

func newBuilder(t *testing.T, schemas ...*schema.TypeSchema) *Builder {
	t.Helper()

	reg := schema.NewRegistry(schema.NewMapLoader(schemas...), schema.WithLogger(zap.NewNop()))

	return NewBuilder(reg)
}

func TestBuildMirrors(t *testing.T) {
	b := newBuilder(t, stereotypes()...)

	m, err := b.Build("ContextConfiguration")
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	table := m.Root().Table()
	assert.Equal(t, []Ref{{0, 0}, {0, 1}}, table.Mirrors(Ref{0, 1}))
	assert.Equal(t, Ref{0, 0}, table.Canonical(Ref{0, 1}))
	assert.True(t, table.IsAliased(Ref{0, 0}))
	assert.False(t, table.IsAliased(Ref{0, 2}))
}

func TestBuildMetaTree(t *testing.T) {
	b := newBuilder(t, stereotypes()...)

	m, err := b.Build("Service")
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())

	assert.Equal(t, "Service", m.RootName())

	component := m.Find("Component")
	require.NotNil(t, component)
	assert.Equal(t, 1, component.Depth())
	assert.Equal(t, []string{"Service", "Component"}, component.MetaTypes())
	assert.Same(t, m.Root(), component.Parent())

	indexed := m.Find("Indexed")
	require.NotNil(t, indexed)
	assert.Equal(t, 2, indexed.Depth())
	assert.Equal(t, []string{"Service", "Component", "Indexed"}, indexed.MetaTypes())

	table := component.Table()
	assert.Equal(t, []Ref{{0, 1}, {1, 0}}, table.Mirrors(Ref{1, 0}))
	assert.Equal(t, Ref{0, 1}, table.Canonical(Ref{1, 0}))
	assert.False(t, table.IsAliased(Ref{0, 0}))

	// One alias alone mirrors nothing on the root path.
	assert.False(t, m.Root().Table().IsAliased(Ref{0, 1}))

	var depths []int
	for n := range m.ByDepth() {
		depths = append(depths, n.Depth())
	}

	assert.Equal(t, []int{0, 1, 2}, depths)
	assert.Nil(t, m.Find("Missing"))
}

func TestBuildImplicitMirrors(t *testing.T) {
	schemas := append(stereotypes(), &schema.TypeSchema{
		Name: "Repository",
		Attributes: []schema.AttributeSpec{
			{
				Name: "name", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}},
			},
			{
				Name: "id", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Value: "value"}},
			},
		},
		Meta: []schema.MetaTag{{Schema: "Component"}},
	})

	b := newBuilder(t, schemas...)

	m, err := b.Build("Repository")
	require.NoError(t, err)

	table := m.Find("Component").Table()
	assert.Equal(t, []Ref{{0, 0}, {0, 1}, {1, 0}}, table.Mirrors(Ref{0, 1}))
	assert.Equal(t, Ref{0, 0}, table.Canonical(Ref{1, 0}))

	// Both attributes alias Component.value, so they mirror each other on
	// the root path as well.
	assert.Equal(t, []Ref{{0, 0}, {0, 1}}, m.Root().Table().Mirrors(Ref{0, 1}))
}

func TestBuildSkipsCycles(t *testing.T) {
	b := newBuilder(t,
		&schema.TypeSchema{Name: "A", Meta: []schema.MetaTag{{Schema: "B"}}},
		&schema.TypeSchema{Name: "B", Meta: []schema.MetaTag{{Schema: "A"}, {Schema: "B"}}},
	)

	m, err := b.Build("A")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"A", "B"}, m.Node(1).MetaTypes())
}

func TestBuildSkipsUnknownMetaTags(t *testing.T) {
	b := newBuilder(t, &schema.TypeSchema{
		Name: "Documented",
		Meta: []schema.MetaTag{{Schema: "com.example.Missing"}, {Schema: "Indexed"}},
	}, &schema.TypeSchema{Name: "Indexed"})

	m, err := b.Build("Documented")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.NotNil(t, m.Find("Indexed"))
}

func TestBuildExpandsContainerMetaTags(t *testing.T) {
	schemas := []*schema.TypeSchema{
		{
			Name:       "Profile",
			Repeatable: "Profiles",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String}},
		},
		{
			Name:       "Profiles",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.ArrayOf(schema.Tag("Profile"))}},
		},
		{
			Name: "Staged",
			Meta: []schema.MetaTag{{
				Schema: "Profiles",
				Values: schema.NewAttributes(schema.Attr("value", []any{
					schema.NewAttributes(schema.Attr("value", "dev")),
					schema.NewAttributes(schema.Attr("value", "qa")),
				})),
			}},
		},
	}

	m, err := newBuilder(t, schemas...).Build("Staged")
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())

	for _, i := range []int{1, 2} {
		assert.Equal(t, "Profile", m.Node(i).Schema().Name)
	}

	v, _ := m.Node(2).Declared().Get("value")
	assert.Equal(t, "qa", v)

	reg := schema.NewRegistry(schema.NewMapLoader(schemas...))

	m, err = NewBuilder(reg, WithContainers(repeat.None())).Build("Staged")
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	assert.Equal(t, "Profiles", m.Node(1).Schema().Name)
}

func TestBuildConfigErrors(t *testing.T) {
	component := &schema.TypeSchema{
		Name: "Component",
		Attributes: []schema.AttributeSpec{
			{Name: "value", Type: schema.String, Default: ""},
			{Name: "order", Type: schema.Int, Default: 0},
			{Name: "names", Type: schema.StringArray, Default: []any{}},
		},
	}

	stray := &schema.TypeSchema{
		Name:       "Stray",
		Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String, Default: ""}},
	}

	withAlias := func(specs ...schema.AttributeSpec) *schema.TypeSchema {
		return &schema.TypeSchema{
			Name:       "Broken",
			Attributes: specs,
			Meta:       []schema.MetaTag{{Schema: "Component"}},
		}
	}

	tests := []struct {
		name   string
		broken *schema.TypeSchema
		reason Reason
		attr   string
		target string
	}{
		{
			name: "missing mirror target",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Attribute: "path"}},
			}),
			reason: ReasonMissingTarget,
			attr:   "value",
			target: "path",
		},
		{
			name: "missing target schema",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Nowhere"}},
			}),
			reason: ReasonMissingTarget,
			attr:   "value",
			target: "value",
		},
		{
			name: "missing meta attribute",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "label"}},
			}),
			reason: ReasonMissingTarget,
			attr:   "value",
			target: "label",
		},
		{
			name: "self reference",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Attribute: "value"}},
			}),
			reason: ReasonSelfReference,
			attr:   "value",
			target: "value",
		},
		{
			name: "ambiguous target name",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value", Value: "names"}},
			}),
			reason: ReasonAmbiguous,
			attr:   "value",
			target: "value",
		},
		{
			name: "target not meta-present",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Stray"}},
			}),
			reason: ReasonNotMetaPresent,
			attr:   "value",
			target: "value",
		},
		{
			name: "mismatched meta kind",
			broken: withAlias(schema.AttributeSpec{
				Name: "value", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "order"}},
			}),
			reason: ReasonMismatchedKind,
			attr:   "value",
			target: "order",
		},
		{
			name: "mismatched mirror kind",
			broken: withAlias(
				schema.AttributeSpec{
					Name: "value", Type: schema.String, Default: "",
					Aliases: []schema.AliasDecl{{Attribute: "count"}},
				},
				schema.AttributeSpec{Name: "count", Type: schema.Int, Default: 0},
			),
			reason: ReasonMismatchedKind,
			attr:   "value",
			target: "count",
		},
		{
			name: "mismatched mirror default",
			broken: withAlias(
				schema.AttributeSpec{
					Name: "value", Type: schema.String, Default: "",
					Aliases: []schema.AliasDecl{{Attribute: "path"}},
				},
				schema.AttributeSpec{
					Name: "path", Type: schema.String, Default: "/",
					Aliases: []schema.AliasDecl{{Attribute: "value"}},
				},
			),
			reason: ReasonMismatchedDefault,
			attr:   "value",
			target: "path",
		},
		{
			name: "mismatched implicit mirror default",
			broken: withAlias(
				schema.AttributeSpec{
					Name: "a", Type: schema.String, Default: "",
					Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}},
				},
				schema.AttributeSpec{
					Name: "b", Type: schema.String, Default: "x",
					Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}},
				},
			),
			reason: ReasonMismatchedDefault,
			attr:   "b",
			target: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, component, stray, tt.broken)

			_, err := b.Build("Broken")
			require.Error(t, err)
			require.ErrorIs(t, err, ErrConfiguration)

			var cfg *ConfigError
			require.True(t, errors.As(err, &cfg))
			assert.Equal(t, tt.reason, cfg.Reason, cfg.Error())
			assert.Equal(t, "Broken", cfg.Schema)
			assert.Equal(t, "Broken", cfg.Root)
			assert.Equal(t, tt.attr, cfg.Attribute)
			assert.Equal(t, tt.target, cfg.TargetAttribute)
			assert.Contains(t, err.Error(), "misconfigured alias")
		})
	}
}

func TestBuildScalarAliasForArray(t *testing.T) {
	b := newBuilder(t,
		&schema.TypeSchema{
			Name:       "Component",
			Attributes: []schema.AttributeSpec{{Name: "names", Type: schema.StringArray, Default: []any{}}},
		},
		&schema.TypeSchema{
			Name: "Named",
			Attributes: []schema.AttributeSpec{{
				Name: "name", Type: schema.String, Default: "",
				Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "names"}},
			}},
			Meta: []schema.MetaTag{{Schema: "Component"}},
		},
	)

	_, err := b.Build("Named")
	require.NoError(t, err)
}

func TestBuildErrorsAreCached(t *testing.T) {
	broken := &schema.TypeSchema{
		Name: "Broken",
		Attributes: []schema.AttributeSpec{{
			Name: "value", Type: schema.String, Default: "",
			Aliases: []schema.AliasDecl{{Attribute: "value"}},
		}},
	}

	b := newBuilder(t, broken)

	_, first := b.Build("Broken")
	_, second := b.Build("Broken")

	require.Error(t, first)
	assert.Same(t, first, second)

	// A misconfigured meta-tag fails every root that reaches it.
	b = newBuilder(t, broken, &schema.TypeSchema{Name: "User", Meta: []schema.MetaTag{{Schema: "Broken"}}})

	_, err := b.Build("User")

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "User", cfg.Root)
	assert.Equal(t, "Broken", cfg.Schema)
	assert.Contains(t, err.Error(), `while building "User"`)
}

func TestBuildUnknownRoot(t *testing.T) {
	b := newBuilder(t, stereotypes()...)

	_, err := b.Build("Unknown")
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func TestBuildMemoizes(t *testing.T) {
	b := newBuilder(t, stereotypes()...)

	first, err := b.Build("Service")
	require.NoError(t, err)

	second, err := b.Build("Service")
	require.NoError(t, err)
	assert.Same(t, first, second)

	b.Reset()

	third, err := b.Build("Service")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.NotSame(t, first.Root().Schema(), third.Root().Schema())
}

func TestBuildConcurrent(t *testing.T) {
	b := newBuilder(t, stereotypes()...)

	const workers = 16

	results := make([]*Mappings, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			m, err := b.Build("Service")
			assert.NoError(t, err)

			results[i] = m
		}()
	}

	wg.Wait()

	for _, m := range results {
		assert.Same(t, results[0], m)
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "missing_alias_target", ReasonMissingTarget.String())
	assert.Equal(t, "alias_target_not_meta_present", ReasonNotMetaPresent.String())
	assert.Equal(t, "unknown", Reason(0).String())
}
