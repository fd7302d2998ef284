package merge

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tagmerge/internal/alias"
	"tagmerge/internal/schema"
)

func fixtures() []*schema.TypeSchema {
	return []*schema.TypeSchema{
		{
			Name: "Alpha",
			Attributes: []schema.AttributeSpec{
				{Name: "one", Type: schema.String, Default: "", Aliases: []schema.AliasDecl{{Attribute: "two"}}},
				{Name: "two", Type: schema.String, Default: "", Aliases: []schema.AliasDecl{{Attribute: "one"}}},
			},
		},
		{
			Name:       "Inner",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String}},
		},
		{
			Name:       "Wrapper",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.Tag("Inner")}},
		},
		{
			Name:       "Component",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String, Default: ""}},
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
			Meta: []schema.MetaTag{{
				Schema: "Component",
				Values: schema.NewAttributes(schema.Attr("value", "meta")),
			}},
		},
		{
			Name: "Pair",
			Attributes: []schema.AttributeSpec{
				{Name: "a", Type: schema.String, Default: "", Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}}},
				{Name: "b", Type: schema.String, Default: "", Aliases: []schema.AliasDecl{{Schema: "Component", Attribute: "value"}}},
			},
			Meta: []schema.MetaTag{{Schema: "Component"}},
		},
		{
			Name: "Config",
			Attributes: []schema.AttributeSpec{
				{Name: "name", Type: schema.String, Default: ""},
				{Name: "type", Type: schema.Type, Default: "java.lang.Object"},
				{Name: "mode", Type: schema.Enum("Mode"), Default: "AUTO"},
				{Name: "count", Type: schema.Int, Default: 0},
				{Name: "ratio", Type: schema.Float, Default: 1.5},
				{Name: "enabled", Type: schema.Bool, Default: true},
				{Name: "tags", Type: schema.StringArray, Default: []string{}},
				{Name: "classes", Type: schema.TypeArray, Default: []any{}},
				{
					Name: "inner", Type: schema.Tag("Inner"),
					Default: schema.NewAttributes(schema.Attr("value", "d")),
				},
				{Name: "inners", Type: schema.ArrayOf(schema.Tag("Inner")), Default: []any{}},
			},
		},
		{Name: "Loop", Meta: []schema.MetaTag{{Schema: "Back"}}},
		{
			Name:       "Back",
			Attributes: []schema.AttributeSpec{{Name: "value", Type: schema.String, Default: "back"}},
			Meta:       []schema.MetaTag{{Schema: "Loop"}},
		},
	}
}

func newBuilder(t *testing.T) *alias.Builder {
	t.Helper()

	reg := schema.NewRegistry(schema.NewMapLoader(fixtures()...), schema.WithLogger(zap.NewNop()))

	return alias.NewBuilder(reg)
}

func attrs(kv ...any) *schema.Attributes {
	list := make([]schema.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		list = append(list, schema.Attr(kv[i].(string), kv[i+1]))
	}

	return schema.NewAttributes(list...)
}

func rootView(t *testing.T, b *alias.Builder, name string, a *schema.Attributes) *View {
	t.Helper()

	v, err := Of(b, name, a)
	require.NoError(t, err)

	return v
}

func metaView(t *testing.T, b *alias.Builder, root, meta string, a *schema.Attributes) *View {
	t.Helper()

	views, err := Expand(b, root, a, Origin{Source: "com.acme.Element"})
	require.NoError(t, err)

	for _, v := range views {
		if v.SchemaName() == meta {
			return v
		}
	}

	require.FailNow(t, "meta-tag not found", meta)

	return nil
}
