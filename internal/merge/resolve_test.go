package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagmerge/internal/schema"
)

func TestMirrorResolution(t *testing.T) {
	b := newBuilder(t)

	tests := []struct {
		name  string
		attrs *schema.Attributes
		one   string
		two   string
	}{
		{name: "unset", attrs: attrs(), one: "", two: ""},
		{name: "only one", attrs: attrs("one", "1"), one: "1", two: "1"},
		{name: "only two", attrs: attrs("two", "2"), one: "2", two: "2"},
		{name: "both equal", attrs: attrs("one", "x", "two", "x"), one: "x", two: "x"},
		{name: "one explicit default", attrs: attrs("one", "", "two", "2"), one: "2", two: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rootView(t, b, "Alpha", tt.attrs)

			one, err := v.GetString("one")
			require.NoError(t, err)
			assert.Equal(t, tt.one, one)

			two, err := v.GetString("two")
			require.NoError(t, err)
			assert.Equal(t, tt.two, two)
		})
	}
}

func TestMirrorConflict(t *testing.T) {
	v := rootView(t, newBuilder(t), "Alpha", attrs("one", "1", "two", "2"))

	_, err := v.GetString("two")
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "one", conflict.Attribute)
	assert.Equal(t, "two", conflict.OtherAttribute)
	assert.Equal(t, "Alpha", conflict.Schema)
	assert.Equal(t, "Alpha", conflict.OtherSchema)
	assert.Equal(t, "1", conflict.Value)
	assert.Equal(t, "2", conflict.OtherValue)
	assert.True(t, conflict.DirectlyPresent)
	assert.Contains(t, err.Error(), `"1"`)
	assert.Contains(t, err.Error(), `"2"`)

	// Synthesis resolves every attribute and fails the same way.
	_, err = v.Synthesize()
	require.ErrorIs(t, err, ErrConflict)
}

func TestNestedTag(t *testing.T) {
	b := newBuilder(t)

	v := rootView(t, b, "Wrapper", attrs("value", attrs("value", "test")))

	inner, err := v.GetTag("value", "Inner")
	require.NoError(t, err)
	assert.Equal(t, "Inner", inner.SchemaName())
	assert.True(t, inner.IsDirectlyPresent())

	value, err := inner.GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "test", value)

	_, err = v.GetTag("value", "Wrapper")
	require.ErrorIs(t, err, ErrIncompatibleType)

	_, err = v.GetString("value")
	require.ErrorIs(t, err, ErrIncompatibleType)
}

func TestMetaLevelResolution(t *testing.T) {
	b := newBuilder(t)

	tests := []struct {
		name  string
		attrs *schema.Attributes
		want  string
	}{
		{name: "meta-tag literal", attrs: attrs(), want: "meta"},
		{name: "alias on root wins", attrs: attrs("name", "svc"), want: "svc"},
		{name: "root default does not override", attrs: attrs("name", ""), want: "meta"},
		{name: "unrelated attribute", attrs: attrs("value", "other"), want: "meta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := metaView(t, b, "Service", "Component", tt.attrs)
			assert.True(t, v.IsMetaPresent())

			got, err := v.GetString("value")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImplicitMirrors(t *testing.T) {
	b := newBuilder(t)

	root := rootView(t, b, "Pair", attrs("a", "x"))

	got, err := root.GetString("b")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = metaView(t, b, "Pair", "Component", attrs("b", "y")).GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "y", got)

	_, err = metaView(t, b, "Pair", "Component", attrs("a", "x", "b", "y")).GetString("value")

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "a", conflict.Attribute)
	assert.Equal(t, "b", conflict.OtherAttribute)
}

func TestCycleStopsSilently(t *testing.T) {
	b := newBuilder(t)

	views, err := Expand(b, "Loop", attrs(), Origin{})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, []string{"Loop", "Back"}, views[1].MetaTypes())

	got, err := views[1].GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "back", got)
}

func TestConversions(t *testing.T) {
	b := newBuilder(t)
	v := rootView(t, b, "Config", attrs(
		"name", "com.acme.Foo",
		"count", 3,
		"tags", "solo",
		"classes", []string{"a.B", "c.D"},
	))

	typ, err := v.GetType("type")
	require.NoError(t, err)
	assert.Equal(t, schema.TypeRef{Name: "java.lang.Object"}, typ)

	name, err := v.GetString("type")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Object", name)

	typ, err = v.GetType("name")
	require.NoError(t, err)
	assert.Equal(t, schema.TypeRef{Name: "com.acme.Foo"}, typ)

	mode, err := v.GetEnum("mode", "Mode")
	require.NoError(t, err)
	assert.Equal(t, schema.EnumValue{Type: "Mode", Name: "AUTO"}, mode)

	modeName, err := v.GetString("mode")
	require.NoError(t, err)
	assert.Equal(t, "AUTO", modeName)

	count, err := v.GetInt("count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	ratio, err := v.GetFloat("ratio")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, ratio, 1e-9)

	enabled, err := v.GetBool("enabled")
	require.NoError(t, err)
	assert.True(t, enabled)

	tags, err := v.GetStringArray("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, tags)

	wrapped, err := v.GetStringArray("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.acme.Foo"}, wrapped)

	classes, err := v.GetTypeArray("classes")
	require.NoError(t, err)
	assert.Equal(t, []schema.TypeRef{{Name: "a.B"}, {Name: "c.D"}}, classes)

	classNames, err := v.GetStringArray("classes")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.B", "c.D"}, classNames)

	inner, err := v.GetTag("inner", "Inner")
	require.NoError(t, err)

	innerValue, err := inner.GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "d", innerValue)

	value, err := v.Value("count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)

	incompatible := []struct {
		name string
		get  func() error
	}{
		{"enum of another type", func() error { _, err := v.GetEnum("mode", "Other"); return err }},
		{"float from int", func() error { _, err := v.GetFloat("count"); return err }},
		{"bool from int", func() error { _, err := v.GetBool("count"); return err }},
		{"scalar from array", func() error { _, err := v.GetString("classes"); return err }},
		{"int array from strings", func() error { _, err := v.GetIntArray("tags"); return err }},
	}

	for _, tt := range incompatible {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.get(), ErrIncompatibleType)
		})
	}
}

func TestEmptyArrayConvertsToAnyArray(t *testing.T) {
	v := rootView(t, newBuilder(t), "Config", attrs())

	ints, err := v.GetIntArray("classes")
	require.NoError(t, err)
	assert.Equal(t, []int64{}, ints)

	views, err := v.GetTagArray("tags", "Inner")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestValueErrors(t *testing.T) {
	b := newBuilder(t)

	_, err := rootView(t, b, "Config", attrs()).GetString("nmae")
	require.ErrorIs(t, err, ErrNoSuchAttribute)
	assert.Contains(t, err.Error(), `did you mean "name"?`)

	_, err = rootView(t, b, "Inner", attrs()).GetString("value")
	require.ErrorIs(t, err, ErrRequired)

	_, err = rootView(t, b, "Config", attrs("count", "three")).GetInt("count")
	require.ErrorIs(t, err, ErrIncompatibleType)

	_, err = Missing().GetString("value")
	require.ErrorIs(t, err, ErrNotPresent)

	_, err = Of(b, "Unknown", attrs())
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func TestDefaultValues(t *testing.T) {
	v := rootView(t, newBuilder(t), "Config", attrs("name", "n", "count", 0, "tags", []string{"t"}))

	def, err := v.HasDefaultValue("count")
	require.NoError(t, err)
	assert.True(t, def, "explicit default is still the default")

	nonDef, err := v.HasNonDefaultValue("name")
	require.NoError(t, err)
	assert.True(t, nonDef)

	assert.Equal(t, []string{"name", "tags"}, v.FilterDefaultValues().Names())

	filtered := v.FilterAttributes(func(name string) bool { return name != "name" })
	_, err = filtered.GetString("name")
	require.ErrorIs(t, err, ErrNoSuchAttribute)

	tags, err := filtered.GetStringArray("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tags)

	both := filtered.FilterAttributes(func(name string) bool { return name == "name" || name == "count" })
	assert.Equal(t, []string{"count"}, both.Names())

	_, err = rootView(t, newBuilder(t), "Inner", attrs()).HasDefaultValue("value")
	require.ErrorIs(t, err, ErrRequired)
}

func TestNavigation(t *testing.T) {
	b := newBuilder(t)

	views, err := Expand(b, "Service", attrs("name", "svc"), Origin{Source: "com.acme.Repo", Aggregate: 2})
	require.NoError(t, err)
	require.Len(t, views, 2)

	root, meta := views[0], views[1]

	assert.True(t, root.IsDirectlyPresent())
	assert.False(t, root.IsMetaPresent())
	assert.Equal(t, 0, root.Depth())
	assert.Same(t, root, root.Root())
	assert.False(t, root.MetaSource().IsPresent())

	assert.True(t, meta.IsMetaPresent())
	assert.Equal(t, 1, meta.Depth())
	assert.Equal(t, 2, meta.AggregateIndex())
	assert.Equal(t, "com.acme.Repo", meta.Source())
	assert.Equal(t, []string{"Service", "Component"}, meta.MetaTypes())
	assert.Equal(t, "Service", meta.Root().SchemaName())
	assert.Equal(t, "Service", meta.MetaSource().SchemaName())

	name, err := meta.Root().GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "svc", name)

	missing := Missing()
	assert.False(t, missing.IsPresent())
	assert.Equal(t, -1, missing.Depth())
	assert.Equal(t, -1, missing.AggregateIndex())
	assert.Empty(t, missing.Source())
	assert.Empty(t, missing.SchemaName())
	assert.Equal(t, "<missing>", missing.String())
}
